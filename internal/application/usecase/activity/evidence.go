package activity

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/khoahotran/cpd-tracker/internal/domain/activity"
	"github.com/khoahotran/cpd-tracker/internal/domain/ids"
	"github.com/khoahotran/cpd-tracker/internal/domain/tracker"
	"github.com/khoahotran/cpd-tracker/pkg/apperror"
)

const evidenceFolder = "cpd-tracker/evidence"

type EvidenceFile struct {
	Name    string
	Type    string
	Content []byte
}

// ExecuteAddEvidence validates the whole batch, stores every file and then
// attaches them in one save. Files already uploaded are removed again when a
// later step fails.
func (uc *ActivityUseCase) ExecuteAddEvidence(ctx context.Context, id ids.ID, files []EvidenceFile) (*activity.Completed, error) {
	ctx, span := tracer.Start(ctx, "ExecuteAddEvidence")
	defer span.End()

	if len(files) == 0 {
		return nil, apperror.NewInvalidInput("no evidence files given", nil)
	}
	now := uc.now().UTC()
	batch := make([]activity.Attachment, len(files))
	for i, f := range files {
		batch[i] = activity.Attachment{
			Name:      strings.TrimSpace(f.Name),
			Size:      int64(len(f.Content)),
			Type:      f.Type,
			DateAdded: now,
		}
	}
	if problems := activity.ValidateEvidence(batch); len(problems) > 0 {
		return nil, apperror.NewInvalidInput(strings.Join(problems, " "), nil)
	}

	if _, err := uc.ExecuteGetCompleted(ctx, id); err != nil {
		return nil, err
	}

	for i, f := range files {
		if err := uc.store(ctx, id, &batch[i], f.Content); err != nil {
			span.RecordError(err)
			for _, done := range batch[:i] {
				uc.deleteStored(ctx, done)
			}
			return nil, err
		}
	}

	var updated activity.Completed
	_, err := uc.ws.Mutate(ctx, completedBuckets, func(d *tracker.Data) error {
		i := indexCompleted(d.CompletedActivities, id)
		if i < 0 {
			return apperror.NewNotFound("completed activity", id.String())
		}
		d.CompletedActivities[i].Attachments = append(d.CompletedActivities[i].Attachments, batch...)
		updated = d.CompletedActivities[i]
		return nil
	})
	if err != nil {
		span.RecordError(err)
		for _, done := range batch {
			uc.deleteStored(ctx, done)
		}
		return nil, err
	}
	uc.logger.Info("Evidence attached", zap.String("id", id.String()), zap.Int("files", len(batch)))
	return &updated, nil
}

// ExecuteRemoveEvidence drops the attachment at index.
func (uc *ActivityUseCase) ExecuteRemoveEvidence(ctx context.Context, id ids.ID, index int) (*activity.Completed, error) {
	var (
		updated activity.Completed
		removed activity.Attachment
	)
	_, err := uc.ws.Mutate(ctx, completedBuckets, func(d *tracker.Data) error {
		i := indexCompleted(d.CompletedActivities, id)
		if i < 0 {
			return apperror.NewNotFound("completed activity", id.String())
		}
		c := &d.CompletedActivities[i]
		if index < 0 || index >= len(c.Attachments) {
			return apperror.NewNotFound("evidence file", fmt.Sprintf("%s#%d", id, index))
		}
		removed = c.Attachments[index]
		c.Attachments = append(c.Attachments[:index], c.Attachments[index+1:]...)
		updated = *c
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.deleteStored(ctx, removed)
	return &updated, nil
}

func (uc *ActivityUseCase) store(ctx context.Context, id ids.ID, a *activity.Attachment, content []byte) error {
	if uc.uploader == nil {
		a.DataURL = "data:" + a.Type + ";base64," + base64.StdEncoding.EncodeToString(content)
		return nil
	}
	folder := path.Join(evidenceFolder, id.String())
	publicID := ids.New().String()
	url, err := uc.uploader.Upload(ctx, bytes.NewReader(content), folder, publicID)
	if err != nil {
		return apperror.NewExternalService(fmt.Sprintf("failed to upload evidence %q", a.Name), err)
	}
	a.URL = url
	a.PublicID = path.Join(folder, publicID)
	return nil
}

func (uc *ActivityUseCase) deleteStored(ctx context.Context, a activity.Attachment) {
	if uc.uploader == nil || a.PublicID == "" {
		return
	}
	if err := uc.uploader.Delete(ctx, a.PublicID); err != nil {
		uc.logger.Warn("Failed to delete stored evidence", zap.String("public_id", a.PublicID), zap.Error(err))
	}
}
