package learning

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/cpd-tracker/internal/application/usecase/workspace"
	"github.com/khoahotran/cpd-tracker/internal/domain/ids"
	"github.com/khoahotran/cpd-tracker/internal/domain/learning"
	"github.com/khoahotran/cpd-tracker/internal/domain/tracker"
	"github.com/khoahotran/cpd-tracker/pkg/apperror"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

var buckets = []tracker.Bucket{tracker.BucketLearningNeeds}

type LearningUseCase struct {
	ws     *workspace.Workspace
	logger logger.Logger
	now    func() time.Time
}

func NewLearningUseCase(ws *workspace.Workspace, log logger.Logger) *LearningUseCase {
	return &LearningUseCase{ws: ws, logger: log, now: time.Now}
}

type NeedInput struct {
	CourseName   string
	CompetencyID string
	NeedPrompt   string
}

func (in NeedInput) apply(n *learning.Need) {
	n.CourseName = strings.TrimSpace(in.CourseName)
	n.CompetencyID = strings.TrimSpace(in.CompetencyID)
	n.NeedPrompt = strings.TrimSpace(in.NeedPrompt)
}

func (uc *LearningUseCase) ExecuteList(ctx context.Context) ([]learning.Need, error) {
	d, err := uc.ws.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return d.LearningNeeds, nil
}

func (uc *LearningUseCase) ExecuteAdd(ctx context.Context, in NeedInput) (*learning.Need, error) {
	n := learning.Need{ID: ids.New(), DateAdded: uc.now().UTC()}
	in.apply(&n)
	if errs := n.Validate(); len(errs) > 0 {
		return nil, apperror.NewValidation("learning need is incomplete", errs)
	}
	if _, err := uc.ws.Mutate(ctx, buckets, func(d *tracker.Data) error {
		d.LearningNeeds = append(d.LearningNeeds, n)
		return nil
	}); err != nil {
		return nil, err
	}
	uc.logger.Info("Learning need added", zap.String("id", n.ID.String()))
	return &n, nil
}

// ExecuteUpdate edits a need in place, keeping its id, date and position.
func (uc *LearningUseCase) ExecuteUpdate(ctx context.Context, id ids.ID, in NeedInput) (*learning.Need, error) {
	var updated learning.Need
	_, err := uc.ws.Mutate(ctx, buckets, func(d *tracker.Data) error {
		for i := range d.LearningNeeds {
			if d.LearningNeeds[i].ID != id {
				continue
			}
			n := d.LearningNeeds[i]
			in.apply(&n)
			if errs := n.Validate(); len(errs) > 0 {
				return apperror.NewValidation("learning need is incomplete", errs)
			}
			d.LearningNeeds[i] = n
			updated = n
			return nil
		}
		return apperror.NewNotFound("learning need", id.String())
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (uc *LearningUseCase) ExecuteDelete(ctx context.Context, id ids.ID) error {
	_, err := uc.ws.Mutate(ctx, buckets, func(d *tracker.Data) error {
		for i := range d.LearningNeeds {
			if d.LearningNeeds[i].ID == id {
				d.LearningNeeds = append(d.LearningNeeds[:i], d.LearningNeeds[i+1:]...)
				return nil
			}
		}
		return apperror.NewNotFound("learning need", id.String())
	})
	if err == nil {
		uc.logger.Info("Learning need deleted", zap.String("id", id.String()))
	}
	return err
}
