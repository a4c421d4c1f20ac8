package workspace

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/cpd-tracker/internal/domain/tracker"
	"github.com/khoahotran/cpd-tracker/pkg/apperror"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

var tracer = otel.Tracer("workspace_usecase")

// Workspace owns the tracker state. It is loaded from the repository once
// and every mutation saves the buckets it touched before it becomes
// visible; a failed save leaves the previous state in place.
type Workspace struct {
	mu     sync.Mutex
	repo   tracker.Repository
	logger logger.Logger
	data   tracker.Data
	loaded bool
}

func NewWorkspace(repo tracker.Repository, log logger.Logger) *Workspace {
	return &Workspace{
		repo:   repo,
		logger: log,
	}
}

func (w *Workspace) ensureLoaded(ctx context.Context) error {
	if w.loaded {
		return nil
	}
	data, err := w.repo.Load(ctx)
	if err != nil {
		w.logger.Error("Failed to load tracker data", err)
		return apperror.NewPersistence("could not read saved data", err)
	}
	w.data = data
	w.loaded = true
	return nil
}

// Snapshot returns a copy of the current state.
func (w *Workspace) Snapshot(ctx context.Context) (tracker.Data, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureLoaded(ctx); err != nil {
		return tracker.Data{}, err
	}
	return w.data.Clone(), nil
}

// Mutate runs fn against a working copy and persists the listed buckets.
// An error from fn discards the copy. The returned data is the new state.
func (w *Workspace) Mutate(ctx context.Context, buckets []tracker.Bucket, fn func(d *tracker.Data) error) (tracker.Data, error) {
	ctx, span := tracer.Start(ctx, "Mutate")
	defer span.End()

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureLoaded(ctx); err != nil {
		span.RecordError(err)
		return tracker.Data{}, err
	}

	work := w.data.Clone()
	if err := fn(&work); err != nil {
		return tracker.Data{}, err
	}

	names := make([]string, len(buckets))
	for i, b := range buckets {
		names[i] = string(b)
	}
	span.SetAttributes(attribute.StringSlice("buckets", names))

	if err := w.repo.Save(ctx, work, buckets...); err != nil {
		span.RecordError(err)
		w.logger.Error("Failed to save tracker data", err, zap.Strings("buckets", names))
		// Some buckets may already hold the new value; put the old ones back.
		if rbErr := w.repo.Save(ctx, w.data, buckets...); rbErr != nil {
			w.logger.Error("Failed to restore previous tracker data", rbErr, zap.Strings("buckets", names))
		}
		return tracker.Data{}, apperror.NewPersistence("the change was not saved", err)
	}

	w.data = work
	return work.Clone(), nil
}

// Usage reports how many bytes each bucket occupies in the store.
func (w *Workspace) Usage(ctx context.Context) (map[tracker.Bucket]int, error) {
	usage, err := w.repo.Usage(ctx)
	if err != nil {
		return nil, apperror.NewPersistence("could not read storage usage", err)
	}
	return usage, nil
}

// Clear deletes every bucket and resets the in-memory state.
func (w *Workspace) Clear(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.repo.Clear(ctx); err != nil {
		w.logger.Error("Failed to clear tracker data", err)
		return apperror.NewPersistence("could not clear saved data", err)
	}
	w.data = tracker.Data{}
	w.loaded = true
	w.logger.Info("Tracker data cleared")
	return nil
}
