package persistence

import (
	"context"
	"fmt"

	"github.com/khoahotran/cpd-tracker/internal/config"
	"github.com/khoahotran/cpd-tracker/internal/domain/tracker"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

// BatchStore writes several buckets in one transaction. Stores that cannot
// do that only implement tracker.Store and are written bucket by bucket.
type BatchStore interface {
	PutMany(ctx context.Context, values map[tracker.Bucket][]byte) error
}

// NewStore opens the bucket store named by cfg.Store.Driver.
func NewStore(ctx context.Context, cfg config.Config, log logger.Logger) (tracker.Store, error) {
	prefix := cfg.Store.KeyPrefix
	switch cfg.Store.Driver {
	case config.StoreMemory:
		log.Info("Using in-memory store; data is lost on exit.")
		return NewMemoryStore(prefix), nil
	case config.StoreSQLite, "":
		return NewSQLiteStore(ctx, cfg.SQLite.Path, prefix, log)
	case config.StorePostgres:
		if err := MigratePostgres(cfg.DB.DSN, log); err != nil {
			return nil, err
		}
		pool, err := NewPostgresPool(ctx, cfg.DB.DSN, log)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(pool, prefix, log), nil
	case config.StoreRedis:
		rdb, err := NewRedisClient(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(rdb, prefix, log), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func keyOf(prefix string, b tracker.Bucket) string {
	return prefix + string(b)
}
