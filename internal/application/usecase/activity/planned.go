package activity

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/khoahotran/cpd-tracker/internal/domain/activity"
	"github.com/khoahotran/cpd-tracker/internal/domain/ids"
	"github.com/khoahotran/cpd-tracker/internal/domain/tracker"
	"github.com/khoahotran/cpd-tracker/pkg/apperror"
)

type PlannedInput struct {
	CourseName     string
	CompetencyName string
	ActivityType   activity.Type
	CPDHours       activity.Hours
	PlannedDate    activity.Date
	Status         activity.Status
	Certification  activity.Certification
	IsVerifiable   bool
	IsEthics       bool
	Notes          string
}

func (in PlannedInput) apply(p *activity.Planned) {
	p.CourseName = strings.TrimSpace(in.CourseName)
	p.CompetencyName = strings.TrimSpace(in.CompetencyName)
	p.ActivityType = in.ActivityType
	p.CPDHours = activity.Hours(strings.TrimSpace(string(in.CPDHours)))
	p.PlannedDate = in.PlannedDate
	p.Status = in.Status
	if p.Status == "" {
		p.Status = activity.StatusPlanned
	}
	p.Certification = in.Certification
	p.IsVerifiable = in.IsVerifiable
	p.IsEthics = in.IsEthics
	p.Notes = in.Notes
}

var plannedBuckets = []tracker.Bucket{tracker.BucketPlannedActivities}

func (uc *ActivityUseCase) ExecuteListPlanned(ctx context.Context) ([]activity.Planned, error) {
	d, err := uc.ws.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return d.PlannedActivities, nil
}

func (uc *ActivityUseCase) ExecuteCreatePlanned(ctx context.Context, in PlannedInput) (*activity.Planned, error) {
	p := activity.Planned{ID: ids.New(), DateAdded: uc.now().UTC()}
	in.apply(&p)
	if errs := p.Validate(); len(errs) > 0 {
		return nil, apperror.NewValidation("planned activity is invalid", errs)
	}
	if _, err := uc.ws.Mutate(ctx, plannedBuckets, func(d *tracker.Data) error {
		d.PlannedActivities = append(d.PlannedActivities, p)
		return nil
	}); err != nil {
		return nil, err
	}
	uc.logger.Info("Planned activity created", zap.String("id", p.ID.String()))
	uc.publish(ctx, activity.EventPlannedCreated, p.ID.String(), p.CPDHours.Value())
	return &p, nil
}

// ExecuteUpdatePlanned replaces the editable fields; id and dateAdded stay.
func (uc *ActivityUseCase) ExecuteUpdatePlanned(ctx context.Context, id ids.ID, in PlannedInput) (*activity.Planned, error) {
	var updated activity.Planned
	_, err := uc.ws.Mutate(ctx, plannedBuckets, func(d *tracker.Data) error {
		i := indexPlanned(d.PlannedActivities, id)
		if i < 0 {
			return apperror.NewNotFound("planned activity", id.String())
		}
		p := d.PlannedActivities[i]
		in.apply(&p)
		if errs := p.Validate(); len(errs) > 0 {
			return apperror.NewValidation("planned activity is invalid", errs)
		}
		d.PlannedActivities[i] = p
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, activity.EventPlannedUpdated, id.String(), updated.CPDHours.Value())
	return &updated, nil
}

func (uc *ActivityUseCase) ExecuteDeletePlanned(ctx context.Context, id ids.ID) error {
	_, err := uc.ws.Mutate(ctx, plannedBuckets, func(d *tracker.Data) error {
		i := indexPlanned(d.PlannedActivities, id)
		if i < 0 {
			return apperror.NewNotFound("planned activity", id.String())
		}
		d.PlannedActivities = append(d.PlannedActivities[:i], d.PlannedActivities[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	uc.publish(ctx, activity.EventPlannedDeleted, id.String(), 0)
	return nil
}

// ExecutePromote moves a planned activity to the completed list dated today.
// Both lists are saved together; if either save fails neither changes.
func (uc *ActivityUseCase) ExecutePromote(ctx context.Context, id ids.ID) (*activity.Completed, error) {
	ctx, span := tracer.Start(ctx, "ExecutePromote")
	defer span.End()

	var promoted activity.Completed
	buckets := []tracker.Bucket{tracker.BucketPlannedActivities, tracker.BucketCompletedActivities}
	_, err := uc.ws.Mutate(ctx, buckets, func(d *tracker.Data) error {
		i := indexPlanned(d.PlannedActivities, id)
		if i < 0 {
			return apperror.NewNotFound("planned activity", id.String())
		}
		promoted = d.PlannedActivities[i].Promote(uc.now())
		if promoted.ID.IsZero() || indexCompleted(d.CompletedActivities, promoted.ID) >= 0 {
			promoted.ID = ids.New()
		}
		d.PlannedActivities = append(d.PlannedActivities[:i], d.PlannedActivities[i+1:]...)
		d.CompletedActivities = append(d.CompletedActivities, promoted)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	uc.logger.Info("Planned activity promoted", zap.String("planned_id", id.String()), zap.String("completed_id", promoted.ID.String()))
	uc.publish(ctx, activity.EventPlannedPromoted, promoted.ID.String(), promoted.EffectiveHours())
	return &promoted, nil
}

func indexPlanned(list []activity.Planned, id ids.ID) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func indexCompleted(list []activity.Completed, id ids.ID) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
