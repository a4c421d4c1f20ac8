package activity

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/khoahotran/cpd-tracker/internal/application/service"
	"github.com/khoahotran/cpd-tracker/internal/application/usecase/workspace"
	"github.com/khoahotran/cpd-tracker/internal/domain/activity"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

var tracer = otel.Tracer("activity_usecase")

const publishTimeout = 5 * time.Second

// ActivityUseCase covers the planned and completed activity lists, the
// promotion between them, reflections and evidence.
type ActivityUseCase struct {
	ws        *workspace.Workspace
	publisher activity.Publisher
	uploader  service.Uploader
	logger    logger.Logger
	now       func() time.Time
}

// NewActivityUseCase accepts a nil publisher or uploader. Without an uploader
// evidence is kept inline as data URLs.
func NewActivityUseCase(ws *workspace.Workspace, pub activity.Publisher, uploader service.Uploader, log logger.Logger) *ActivityUseCase {
	return &ActivityUseCase{
		ws:        ws,
		publisher: pub,
		uploader:  uploader,
		logger:    log,
		now:       time.Now,
	}
}

// publish reports a change that is already saved. Failures are logged only.
func (uc *ActivityUseCase) publish(ctx context.Context, typ activity.EventType, id string, hours float64) {
	if uc.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	err := uc.publisher.PublishActivityEvent(ctx, activity.EventPayload{
		EventType:  typ,
		ActivityID: id,
		Hours:      hours,
		OccurredAt: uc.now().UTC(),
	})
	if err != nil {
		uc.logger.Error("Failed to publish activity event", err, zap.String("event_type", string(typ)), zap.String("activity_id", id))
	}
}
