package persistence

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/khoahotran/cpd-tracker/internal/domain/tracker"
	"github.com/khoahotran/cpd-tracker/pkg/apperror"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

// BucketRepository maps the typed tracker data onto raw store buckets.
type BucketRepository struct {
	store  tracker.Store
	prefix string
	logger logger.Logger
}

func NewBucketRepository(store tracker.Store, prefix string, log logger.Logger) *BucketRepository {
	return &BucketRepository{store: store, prefix: prefix, logger: log}
}

// Load reads every bucket. A missing bucket is an empty collection; one that
// cannot be decoded is a persistence error so corrupt data is never
// silently replaced.
func (r *BucketRepository) Load(ctx context.Context) (tracker.Data, error) {
	var data tracker.Data
	for _, b := range tracker.AllBuckets {
		raw, err := r.store.Get(ctx, b)
		if err != nil {
			if errors.Is(err, tracker.ErrBucketNotFound) {
				continue
			}
			return tracker.Data{}, apperror.NewPersistence(fmt.Sprintf("failed to read %s", b), err)
		}
		if err := data.Decode(b, raw); err != nil {
			r.logger.Error("Stored bucket is corrupt", err, zap.String("bucket", string(b)))
			return tracker.Data{}, apperror.NewPersistence(fmt.Sprintf("stored %s is not valid", b), err)
		}
	}
	return data, nil
}

// Save writes the listed buckets, or all of them when none are named.
func (r *BucketRepository) Save(ctx context.Context, data tracker.Data, buckets ...tracker.Bucket) error {
	if len(buckets) == 0 {
		buckets = tracker.AllBuckets
	}
	values := make(map[tracker.Bucket][]byte, len(buckets))
	for _, b := range buckets {
		raw, err := data.Encode(b)
		if err != nil {
			return apperror.NewInternal(fmt.Sprintf("failed to encode %s", b), err)
		}
		values[b] = raw
	}

	if batch, ok := r.store.(BatchStore); ok {
		if err := batch.PutMany(ctx, values); err != nil {
			return apperror.NewPersistence("failed to save data", err)
		}
		return nil
	}
	for _, b := range buckets {
		if err := r.store.Put(ctx, b, values[b]); err != nil {
			return apperror.NewPersistence(fmt.Sprintf("failed to save %s", b), err)
		}
	}
	return nil
}

// Usage reports bytes used per bucket, counting key and value.
func (r *BucketRepository) Usage(ctx context.Context) (map[tracker.Bucket]int, error) {
	out := make(map[tracker.Bucket]int, len(tracker.AllBuckets))
	for _, b := range tracker.AllBuckets {
		raw, err := r.store.Get(ctx, b)
		if err != nil {
			if errors.Is(err, tracker.ErrBucketNotFound) {
				continue
			}
			return nil, apperror.NewPersistence(fmt.Sprintf("failed to read %s", b), err)
		}
		out[b] = len(keyOf(r.prefix, b)) + len(raw)
	}
	return out, nil
}

func (r *BucketRepository) Clear(ctx context.Context) error {
	for _, b := range tracker.AllBuckets {
		if err := r.store.Delete(ctx, b); err != nil {
			return apperror.NewPersistence(fmt.Sprintf("failed to clear %s", b), err)
		}
	}
	return nil
}
