package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/khoahotran/cpd-tracker/internal/config"
	"github.com/khoahotran/cpd-tracker/internal/domain/tracker"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

func NewRedisClient(ctx context.Context, cfg config.Config, log logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("can not connect Redis: %w", err)
	}

	log.Info("Connect Redis successfully.")
	return rdb, nil
}

// RedisStore keeps each bucket under its own string key.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	logger logger.Logger
}

func NewRedisStore(rdb *redis.Client, prefix string, log logger.Logger) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix, logger: log}
}

func (s *RedisStore) Get(ctx context.Context, b tracker.Bucket) ([]byte, error) {
	v, err := s.rdb.Get(ctx, keyOf(s.prefix, b)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, tracker.ErrBucketNotFound
		}
		return nil, fmt.Errorf("read bucket %s: %w", b, err)
	}
	return v, nil
}

func (s *RedisStore) Put(ctx context.Context, b tracker.Bucket, value []byte) error {
	if err := s.rdb.Set(ctx, keyOf(s.prefix, b), value, 0).Err(); err != nil {
		return fmt.Errorf("write bucket %s: %w", b, err)
	}
	return nil
}

// PutMany sets every key inside MULTI/EXEC.
func (s *RedisStore) PutMany(ctx context.Context, values map[tracker.Bucket][]byte) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for b, v := range values {
			pipe.Set(ctx, keyOf(s.prefix, b), v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write buckets: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, b tracker.Bucket) error {
	if err := s.rdb.Del(ctx, keyOf(s.prefix, b)).Err(); err != nil {
		return fmt.Errorf("delete bucket %s: %w", b, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
