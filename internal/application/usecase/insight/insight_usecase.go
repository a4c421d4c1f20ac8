package insight

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/cpd-tracker/internal/application/service"
	"github.com/khoahotran/cpd-tracker/pkg/apperror"
	"github.com/khoahotran/cpd-tracker/pkg/llmjson"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

var tracer = otel.Tracer("insight_usecase")

// RawResponseKey carries the model's full reply when no JSON object could
// be read from it.
const RawResponseKey = "rawResponse"

const extractionPrompt = `Analyze this CPD (Continuing Professional Development) document for compliance. Extract:
1. Activity name or title
2. Activity type (Formal, Informal, Compulsory, Webinar, Conference, Reading, Other)
3. CPD hours earned
4. Provider/Organization name
5. Competency areas addressed
6. Brief description of the activity
7. Learning outcome
8. Date the activity was completed (YYYY-MM-DD)

Return as JSON with fields: activity, activityType, cpdHours, provider, competencyAreas (array), description, outcome, date`

var acceptedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// CanonicalMimeType maps a declared type onto one the vision model accepts.
// image/jpg becomes image/jpeg and other image types default to image/jpeg;
// anything that is not an image is rejected.
func CanonicalMimeType(declared string) (string, error) {
	m := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	switch {
	case m == "image/jpg":
		return "image/jpeg", nil
	case acceptedImageTypes[m]:
		return m, nil
	case strings.HasPrefix(m, "image/"):
		return "image/jpeg", nil
	}
	return "", apperror.NewUnsupportedInput(fmt.Sprintf(
		"Unsupported file format: %s. Please upload an image file (JPG, PNG, GIF, or WebP).", declared))
}

type InsightUseCase struct {
	vision service.VisionService
	logger logger.Logger
	now    func() time.Time
}

func NewInsightUseCase(vision service.VisionService, log logger.Logger) *InsightUseCase {
	return &InsightUseCase{vision: vision, logger: log, now: time.Now}
}

type AnalyzeInput struct {
	FileName string
	MimeType string
	Content  []byte
}

// Result is the decoded object from the reply, or {"rawResponse": text}.
type Result map[string]any

func (r Result) IsRaw() bool {
	_, ok := r[RawResponseKey]
	return ok && len(r) == 1
}

// ExecuteAnalyze sends the document image to the vision model. Type checks
// happen before any call is made.
func (uc *InsightUseCase) ExecuteAnalyze(ctx context.Context, in AnalyzeInput) (Result, error) {
	ctx, span := tracer.Start(ctx, "ExecuteAnalyze")
	defer span.End()

	mime, err := CanonicalMimeType(in.MimeType)
	if err != nil {
		return nil, err
	}
	if len(in.Content) == 0 {
		return nil, apperror.NewInvalidInput("Invalid or empty fileContent", nil)
	}
	if uc.vision == nil {
		return nil, apperror.NewExternalService("document analysis is not configured", nil)
	}

	l := uc.logger.With(zap.String("file_name", in.FileName), zap.String("mime_type", mime), zap.Int("bytes", len(in.Content)))
	l.Info("Analyzing document")
	span.SetAttributes(attribute.String("mime_type", mime), attribute.Int("bytes", len(in.Content)))

	reply, err := uc.vision.AnalyzeImage(ctx, extractionPrompt, in.Content, mime)
	if err != nil {
		span.RecordError(err)
		l.Error("Vision model call failed", err)
		return nil, apperror.NewExternalService("failed to analyze document", err)
	}

	if obj, ok := llmjson.DecodeObject(reply); ok {
		return Result(obj), nil
	}
	l.Warn("Vision reply carried no JSON object")
	return Result{RawResponseKey: reply}, nil
}
