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

// CompletedInput holds the fields of the completed-activity form. Evidence
// and reflection have their own operations.
type CompletedInput struct {
	Date            activity.Date
	Activity        string
	ActivityType    activity.Type
	DevelopmentArea string
	Outcome         string
	Provider        string
	Description     string
	CPDHours        activity.Hours
	IsVerifiable    bool
	IsEthics        bool
}

func (in CompletedInput) apply(c *activity.Completed) {
	c.Date = activity.Date(strings.TrimSpace(string(in.Date)))
	c.Activity = strings.TrimSpace(in.Activity)
	c.ActivityType = in.ActivityType
	c.DevelopmentArea = strings.TrimSpace(in.DevelopmentArea)
	c.Outcome = strings.TrimSpace(in.Outcome)
	c.Provider = strings.TrimSpace(in.Provider)
	c.Description = strings.TrimSpace(in.Description)
	c.CPDHours = activity.Hours(strings.TrimSpace(string(in.CPDHours)))
	c.IsVerifiable = in.IsVerifiable
	c.IsEthics = in.IsEthics
}

var completedBuckets = []tracker.Bucket{tracker.BucketCompletedActivities}

func (uc *ActivityUseCase) ExecuteListCompleted(ctx context.Context) ([]activity.Completed, error) {
	d, err := uc.ws.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return d.CompletedActivities, nil
}

func (uc *ActivityUseCase) ExecuteGetCompleted(ctx context.Context, id ids.ID) (*activity.Completed, error) {
	d, err := uc.ws.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	i := indexCompleted(d.CompletedActivities, id)
	if i < 0 {
		return nil, apperror.NewNotFound("completed activity", id.String())
	}
	return &d.CompletedActivities[i], nil
}

func (uc *ActivityUseCase) ExecuteCreateCompleted(ctx context.Context, in CompletedInput) (*activity.Completed, error) {
	ctx, span := tracer.Start(ctx, "ExecuteCreateCompleted")
	defer span.End()

	now := uc.now()
	c := activity.Completed{ID: ids.New(), DateAdded: now.UTC()}
	in.apply(&c)
	if errs := c.Validate(now); len(errs) > 0 {
		return nil, apperror.NewValidation("completed activity is invalid", errs)
	}
	if _, err := uc.ws.Mutate(ctx, completedBuckets, func(d *tracker.Data) error {
		d.CompletedActivities = append(d.CompletedActivities, c)
		return nil
	}); err != nil {
		span.RecordError(err)
		return nil, err
	}
	uc.logger.Info("Completed activity created", zap.String("id", c.ID.String()), zap.Float64("hours", c.EffectiveHours()))
	uc.publish(ctx, activity.EventCompletedCreated, c.ID.String(), c.EffectiveHours())
	return &c, nil
}

// ExecuteUpdateCompleted rewrites the form fields. A record that still only
// has the legacy hours field keeps it until cpdHours is given.
func (uc *ActivityUseCase) ExecuteUpdateCompleted(ctx context.Context, id ids.ID, in CompletedInput) (*activity.Completed, error) {
	now := uc.now()
	var updated activity.Completed
	_, err := uc.ws.Mutate(ctx, completedBuckets, func(d *tracker.Data) error {
		i := indexCompleted(d.CompletedActivities, id)
		if i < 0 {
			return apperror.NewNotFound("completed activity", id.String())
		}
		c := d.CompletedActivities[i]
		in.apply(&c)
		if c.CPDHours.IsSet() {
			c.LegacyHours = ""
		}
		if errs := c.Validate(now); len(errs) > 0 {
			return apperror.NewValidation("completed activity is invalid", errs)
		}
		d.CompletedActivities[i] = c
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, activity.EventCompletedUpdated, id.String(), updated.EffectiveHours())
	return &updated, nil
}

// ExecuteDeleteCompleted removes the record and then, best-effort, its
// uploaded evidence.
func (uc *ActivityUseCase) ExecuteDeleteCompleted(ctx context.Context, id ids.ID) error {
	var removed activity.Completed
	_, err := uc.ws.Mutate(ctx, completedBuckets, func(d *tracker.Data) error {
		i := indexCompleted(d.CompletedActivities, id)
		if i < 0 {
			return apperror.NewNotFound("completed activity", id.String())
		}
		removed = d.CompletedActivities[i]
		d.CompletedActivities = append(d.CompletedActivities[:i], d.CompletedActivities[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	for _, a := range removed.Attachments {
		uc.deleteStored(ctx, a)
	}
	uc.publish(ctx, activity.EventCompletedDeleted, id.String(), removed.EffectiveHours())
	return nil
}

type ReflectionInput struct {
	Reflection     string
	FutureLearning string
}

func (uc *ActivityUseCase) ExecuteUpdateReflection(ctx context.Context, id ids.ID, in ReflectionInput) (*activity.Completed, error) {
	var updated activity.Completed
	_, err := uc.ws.Mutate(ctx, completedBuckets, func(d *tracker.Data) error {
		i := indexCompleted(d.CompletedActivities, id)
		if i < 0 {
			return apperror.NewNotFound("completed activity", id.String())
		}
		d.CompletedActivities[i].Reflection = strings.TrimSpace(in.Reflection)
		d.CompletedActivities[i].FutureLearning = strings.TrimSpace(in.FutureLearning)
		updated = d.CompletedActivities[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.publish(ctx, activity.EventReflectionUpdated, id.String(), updated.EffectiveHours())
	return &updated, nil
}
