package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/khoahotran/cpd-tracker/internal/domain/tracker"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cpd_buckets (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
)`

// SQLiteStore keeps the buckets in a single local database file.
type SQLiteStore struct {
	db     *sql.DB
	prefix string
	logger logger.Logger
}

var sqliteBuilder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func NewSQLiteStore(ctx context.Context, path, prefix string, log logger.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	// One writer; the pure-Go driver serialises access per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	log.Info("Open SQLite store successfully.", zap.String("path", path))
	return &SQLiteStore{db: db, prefix: prefix, logger: log}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, b tracker.Bucket) ([]byte, error) {
	query, args, err := sqliteBuilder.Select("value").From("cpd_buckets").
		Where(sq.Eq{"key": keyOf(s.prefix, b)}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var value string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tracker.ErrBucketNotFound
		}
		return nil, fmt.Errorf("read bucket %s: %w", b, err)
	}
	return []byte(value), nil
}

func (s *SQLiteStore) Put(ctx context.Context, b tracker.Bucket, value []byte) error {
	return s.PutMany(ctx, map[tracker.Bucket][]byte{b: value})
}

// PutMany upserts every bucket in one transaction.
func (s *SQLiteStore) PutMany(ctx context.Context, values map[tracker.Bucket][]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for b, v := range values {
		query, args, err := sqliteBuilder.Insert("cpd_buckets").
			Columns("key", "value", "updated_at").
			Values(keyOf(s.prefix, b), string(v), now).
			Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("build upsert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("write bucket %s: %w", b, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Delete(ctx context.Context, b tracker.Bucket) error {
	query, args, err := sqliteBuilder.Delete("cpd_buckets").Where(sq.Eq{"key": keyOf(s.prefix, b)}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete bucket %s: %w", b, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
