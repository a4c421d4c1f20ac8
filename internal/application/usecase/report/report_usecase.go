package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/cpd-tracker/internal/application/usecase/workspace"
	"github.com/khoahotran/cpd-tracker/internal/domain/competency"
	"github.com/khoahotran/cpd-tracker/internal/report"
	"github.com/khoahotran/cpd-tracker/pkg/apperror"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

var tracer = otel.Tracer("report_usecase")

type ReportUseCase struct {
	ws       *workspace.Workspace
	taxonomy *competency.Taxonomy
	measurer report.Measurer
	logger   logger.Logger
	now      func() time.Time
}

func NewReportUseCase(ws *workspace.Workspace, tax *competency.Taxonomy, log logger.Logger) *ReportUseCase {
	return &ReportUseCase{ws: ws, taxonomy: tax, logger: log, now: time.Now}
}

type RenderOutput struct {
	FileName string
	PDF      []byte
	Pages    int
}

// ExecuteRender renders the current data as a PDF report.
func (uc *ReportUseCase) ExecuteRender(ctx context.Context) (*RenderOutput, error) {
	ctx, span := tracer.Start(ctx, "ExecuteRender")
	defer span.End()

	data, err := uc.ws.Snapshot(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	now := uc.now()
	opts := report.Options{Now: now, Taxonomy: uc.taxonomy, Measurer: uc.measurer}
	out := &RenderOutput{FileName: FileName(now)}
	var buf bytes.Buffer
	doc, err := report.Render(&buf, data, opts)
	if err != nil {
		span.RecordError(err)
		uc.logger.Error("Failed to render report", err)
		return nil, apperror.NewInternal("failed to render report", err)
	}
	out.PDF = buf.Bytes()
	out.Pages = len(doc.Pages)

	span.SetAttributes(attribute.Int("pages", out.Pages), attribute.Int("bytes", len(out.PDF)))
	uc.logger.Info("Report rendered", zap.Int("pages", out.Pages), zap.Int("bytes", len(out.PDF)))
	return out, nil
}

// FileName is the download name for a report produced at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("CPD_Report_%s.pdf", t.Format("2006-01-02"))
}
