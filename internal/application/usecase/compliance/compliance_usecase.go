package compliance

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/cpd-tracker/internal/application/usecase/workspace"
	"github.com/khoahotran/cpd-tracker/internal/domain/compliance"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

var tracer = otel.Tracer("compliance_usecase")

type ComplianceUseCase struct {
	ws     *workspace.Workspace
	req    compliance.Requirements
	logger logger.Logger
	now    func() time.Time
}

func NewComplianceUseCase(ws *workspace.Workspace, req compliance.Requirements, log logger.Logger) *ComplianceUseCase {
	return &ComplianceUseCase{ws: ws, req: req, logger: log, now: time.Now}
}

func (uc *ComplianceUseCase) Requirements() compliance.Requirements {
	return uc.req
}

// ExecuteSnapshot measures every completed activity, or only those dated in
// year when year is not zero.
func (uc *ComplianceUseCase) ExecuteSnapshot(ctx context.Context, year int) (*compliance.Snapshot, error) {
	ctx, span := tracer.Start(ctx, "ExecuteSnapshot")
	defer span.End()

	d, err := uc.ws.Snapshot(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	acts := d.CompletedActivities
	if year != 0 {
		acts = compliance.InYear(acts, year)
	}
	snap := compliance.Calculate(acts, uc.req)
	span.SetAttributes(
		attribute.Int("year", year),
		attribute.Int("activities", snap.Activities),
		attribute.Bool("compliant", snap.Compliant),
	)
	uc.logger.Debug("Compliance calculated", zap.Int("year", year), zap.Float64("total", snap.Total.Hours), zap.Bool("compliant", snap.Compliant))
	return &snap, nil
}

func (uc *ComplianceUseCase) ExecuteWarnings(ctx context.Context) ([]compliance.Warning, error) {
	d, err := uc.ws.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	w := compliance.Warnings(d.CompletedActivities, uc.now())
	if w == nil {
		w = []compliance.Warning{}
	}
	return w, nil
}

func (uc *ComplianceUseCase) ExecuteAnalytics(ctx context.Context) (*compliance.Analytics, error) {
	d, err := uc.ws.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	a := compliance.Analyze(d.CompletedActivities, d.PlannedActivities, uc.req, uc.now())
	return &a, nil
}
