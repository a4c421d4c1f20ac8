package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/cpd-tracker/internal/domain/tracker"
	"github.com/khoahotran/cpd-tracker/migrations"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

func NewPostgresPool(ctx context.Context, dsn string, log logger.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("do not create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database failed: %w", err)
	}

	log.Info("Connect PostgreSQL successfully.")
	return pool, nil
}

// MigratePostgres applies the embedded migrations. An up-to-date schema is
// not an error.
func MigratePostgres(dsn string, log logger.Logger) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("Database migrations applied.")
	return nil
}

// PostgresStore keeps each bucket as one JSONB row of cpd_buckets.
type PostgresStore struct {
	db     *pgxpool.Pool
	prefix string
	logger logger.Logger
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func NewPostgresStore(db *pgxpool.Pool, prefix string, log logger.Logger) *PostgresStore {
	return &PostgresStore{db: db, prefix: prefix, logger: log}
}

func (s *PostgresStore) Get(ctx context.Context, b tracker.Bucket) ([]byte, error) {
	query, args, err := psql.Select("value").From("cpd_buckets").
		Where(sq.Eq{"key": keyOf(s.prefix, b)}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var value []byte
	if err := s.db.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tracker.ErrBucketNotFound
		}
		return nil, fmt.Errorf("read bucket %s: %w", b, err)
	}
	return value, nil
}

func (s *PostgresStore) Put(ctx context.Context, b tracker.Bucket, value []byte) error {
	return s.PutMany(ctx, map[tracker.Bucket][]byte{b: value})
}

func (s *PostgresStore) PutMany(ctx context.Context, values map[tracker.Bucket][]byte) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	for b, v := range values {
		query, args, err := psql.Insert("cpd_buckets").
			Columns("key", "value", "updated_at").
			Values(keyOf(s.prefix, b), string(v), now).
			Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("build upsert: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("write bucket %s: %w", b, err)
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Delete(ctx context.Context, b tracker.Bucket) error {
	query, args, err := psql.Delete("cpd_buckets").Where(sq.Eq{"key": keyOf(s.prefix, b)}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete bucket %s: %w", b, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
