package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/khoahotran/cpd-tracker/internal/application/service"
	"github.com/khoahotran/cpd-tracker/internal/application/usecase/workspace"
	"github.com/khoahotran/cpd-tracker/internal/domain/activity"
	"github.com/khoahotran/cpd-tracker/internal/domain/learning"
	"github.com/khoahotran/cpd-tracker/internal/domain/tracker"
	"github.com/khoahotran/cpd-tracker/pkg/apperror"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

var tracer = otel.Tracer("backup_usecase")

const (
	Version      = "1.0"
	backupFolder = "cpd-tracker/backups"
)

var (
	ErrMalformedBackup    = errors.New("backup is not valid JSON")
	ErrUnsupportedVersion = errors.New("unsupported backup version")
	ErrInvalidBackup      = errors.New("backup content is invalid")
)

// Backup is the downloadable snapshot of every collection.
type Backup struct {
	Version    string       `json:"version"`
	ExportDate time.Time    `json:"exportDate"`
	Data       tracker.Data `json:"data"`
}

// sections maps the keys under "data" to the bucket each one replaces.
var sections = []struct {
	key    string
	bucket tracker.Bucket
}{
	{"userInfo", tracker.BucketUserInfo},
	{"careerData", tracker.BucketCareerData},
	{"learningNeeds", tracker.BucketLearningNeeds},
	{"plannedActivities", tracker.BucketPlannedActivities},
	{"completedActivities", tracker.BucketCompletedActivities},
}

type BackupUseCase struct {
	ws        *workspace.Workspace
	uploader  service.Uploader
	publisher activity.Publisher
	logger    logger.Logger
	now       func() time.Time
}

// NewBackupUseCase accepts a nil uploader (no remote snapshots) and a nil
// publisher.
func NewBackupUseCase(ws *workspace.Workspace, uploader service.Uploader, pub activity.Publisher, log logger.Logger) *BackupUseCase {
	return &BackupUseCase{
		ws:        ws,
		uploader:  uploader,
		publisher: pub,
		logger:    log,
		now:       time.Now,
	}
}

type ExportOutput struct {
	FileName string
	Content  []byte
}

func (uc *BackupUseCase) ExecuteExport(ctx context.Context) (*ExportOutput, error) {
	d, err := uc.ws.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	b := Backup{Version: Version, ExportDate: now, Data: normalize(d)}
	content, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, apperror.NewInternal("failed to encode backup", err)
	}
	return &ExportOutput{
		FileName: fmt.Sprintf("CPD_Tracker_Backup_%s.json", now.Format("2006-01-02")),
		Content:  content,
	}, nil
}

// ExecuteUpload stores a fresh export with the media uploader and returns
// its URL.
func (uc *BackupUseCase) ExecuteUpload(ctx context.Context) (string, error) {
	ctx, span := tracer.Start(ctx, "ExecuteUpload")
	defer span.End()

	if uc.uploader == nil {
		return "", apperror.NewUnsupportedInput("remote backup storage is not configured")
	}
	out, err := uc.ExecuteExport(ctx)
	if err != nil {
		return "", err
	}
	publicID := fmt.Sprintf("backup-%s", uc.now().UTC().Format("2006-01-02_15-04-05"))
	url, err := uc.uploader.Upload(ctx, bytes.NewReader(out.Content), backupFolder, publicID)
	if err != nil {
		span.RecordError(err)
		uc.logger.Error("Failed to upload backup", err)
		return "", apperror.NewExternalService("failed to upload backup", err)
	}
	uc.logger.Info("Backup uploaded successfully", zap.String("url", url), zap.String("public_id", publicID))
	return url, nil
}

type ImportOutput struct {
	Replaced []tracker.Bucket
}

// ExecuteImport checks the whole file before touching anything. Present keys
// replace the live collections; absent keys leave them alone.
func (uc *BackupUseCase) ExecuteImport(ctx context.Context, raw []byte) (*ImportOutput, error) {
	ctx, span := tracer.Start(ctx, "ExecuteImport")
	defer span.End()

	incoming, buckets, err := Parse(raw)
	if err != nil {
		span.RecordError(err)
		uc.logger.Warn("Backup import rejected", zap.Error(err))
		return nil, err
	}

	if len(buckets) > 0 {
		_, err = uc.ws.Mutate(ctx, buckets, func(d *tracker.Data) error {
			for _, b := range buckets {
				switch b {
				case tracker.BucketUserInfo:
					d.UserInfo = incoming.UserInfo
				case tracker.BucketCareerData:
					d.CareerData = incoming.CareerData
				case tracker.BucketLearningNeeds:
					d.LearningNeeds = incoming.LearningNeeds
				case tracker.BucketPlannedActivities:
					d.PlannedActivities = incoming.PlannedActivities
				case tracker.BucketCompletedActivities:
					d.CompletedActivities = incoming.CompletedActivities
				}
			}
			return nil
		})
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	uc.logger.Info("Backup imported", zap.Int("buckets", len(buckets)))
	if uc.publisher != nil {
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := uc.publisher.PublishActivityEvent(pubCtx, activity.EventPayload{
			EventType:  activity.EventBackupImported,
			OccurredAt: uc.now().UTC(),
		}); err != nil {
			uc.logger.Error("Failed to publish import event", err)
		}
	}
	return &ImportOutput{Replaced: buckets}, nil
}

// Parse decodes and validates a backup file. It returns the decoded data and
// the buckets the file carries, in bucket order.
func Parse(raw []byte) (tracker.Data, []tracker.Bucket, error) {
	var envelope struct {
		Version json.RawMessage `json:"version"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return tracker.Data{}, nil, apperror.NewImport("Invalid backup file format", errors.Join(ErrMalformedBackup, err))
	}

	var version string
	if err := json.Unmarshal(envelope.Version, &version); err != nil || version != Version {
		return tracker.Data{}, nil, apperror.NewImport("Invalid backup version", ErrUnsupportedVersion)
	}

	var present map[string]json.RawMessage
	if err := json.Unmarshal(envelope.Data, &present); err != nil || present == nil {
		return tracker.Data{}, nil, apperror.NewImport("backup has no data object", ErrInvalidBackup)
	}

	var (
		out     tracker.Data
		buckets []tracker.Bucket
	)
	for _, s := range sections {
		v, ok := present[s.key]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			continue
		}
		if err := out.Decode(s.bucket, v); err != nil {
			return tracker.Data{}, nil, apperror.NewImport(fmt.Sprintf("%s: %v", s.key, err), ErrInvalidBackup)
		}
		buckets = append(buckets, s.bucket)
	}
	if problem := validate(out); problem != "" {
		return tracker.Data{}, nil, apperror.NewImport(problem, ErrInvalidBackup)
	}
	return out, buckets, nil
}

func validate(d tracker.Data) string {
	seen := map[string]bool{}
	for i, n := range d.LearningNeeds {
		if p := checkID("learningNeeds", i, n.ID.String(), seen); p != "" {
			return p
		}
	}

	seen = map[string]bool{}
	for i, p := range d.PlannedActivities {
		if msg := checkID("plannedActivities", i, p.ID.String(), seen); msg != "" {
			return msg
		}
		switch {
		case p.ActivityType != "" && !p.ActivityType.IsValid():
			return fmt.Sprintf("plannedActivities[%d]: unknown activityType %q", i, p.ActivityType)
		case p.Status != "" && !p.Status.IsValid():
			return fmt.Sprintf("plannedActivities[%d]: unknown status %q", i, p.Status)
		case !p.Certification.IsValid():
			return fmt.Sprintf("plannedActivities[%d]: unknown certification %q", i, p.Certification)
		}
	}

	seen = map[string]bool{}
	for i, c := range d.CompletedActivities {
		if msg := checkID("completedActivities", i, c.ID.String(), seen); msg != "" {
			return msg
		}
		switch {
		case c.ActivityType != "" && !c.ActivityType.IsValid():
			return fmt.Sprintf("completedActivities[%d]: unknown activityType %q", i, c.ActivityType)
		case c.Status != "" && !c.Status.IsValid():
			return fmt.Sprintf("completedActivities[%d]: unknown status %q", i, c.Status)
		}
	}
	return ""
}

func checkID(list string, i int, id string, seen map[string]bool) string {
	switch {
	case id == "":
		return fmt.Sprintf("%s[%d]: id is missing", list, i)
	case seen[id]:
		return fmt.Sprintf("%s[%d]: duplicate id %q", list, i, id)
	}
	seen[id] = true
	return ""
}

// normalize writes empty collections as [] so the file always has every key.
func normalize(d tracker.Data) tracker.Data {
	if d.LearningNeeds == nil {
		d.LearningNeeds = []learning.Need{}
	}
	if d.PlannedActivities == nil {
		d.PlannedActivities = []activity.Planned{}
	}
	if d.CompletedActivities == nil {
		d.CompletedActivities = []activity.Completed{}
	}
	return d
}

type UsageOutput struct {
	Buckets map[tracker.Bucket]int `json:"buckets"`
	Bytes   int                    `json:"bytes"`
	MB      float64                `json:"mb"`
}

// ExecuteUsage reports the stored size of every bucket.
func (uc *BackupUseCase) ExecuteUsage(ctx context.Context) (*UsageOutput, error) {
	usage, err := uc.ws.Usage(ctx)
	if err != nil {
		return nil, err
	}
	out := &UsageOutput{Buckets: make(map[tracker.Bucket]int, len(tracker.AllBuckets))}
	for _, b := range tracker.AllBuckets {
		out.Buckets[b] = usage[b]
		out.Bytes += usage[b]
	}
	out.MB = math.Round(float64(out.Bytes)/1024/1024*100) / 100
	return out, nil
}

// ExecuteClear deletes every collection. There is no undo.
func (uc *BackupUseCase) ExecuteClear(ctx context.Context) error {
	return uc.ws.Clear(ctx)
}
