package profile

import (
	"context"

	"go.uber.org/zap"

	"github.com/khoahotran/cpd-tracker/internal/application/usecase/workspace"
	"github.com/khoahotran/cpd-tracker/internal/domain/career"
	"github.com/khoahotran/cpd-tracker/internal/domain/member"
	"github.com/khoahotran/cpd-tracker/internal/domain/tracker"
	"github.com/khoahotran/cpd-tracker/pkg/apperror"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

type ProfileUseCase struct {
	ws     *workspace.Workspace
	logger logger.Logger
}

func NewProfileUseCase(ws *workspace.Workspace, log logger.Logger) *ProfileUseCase {
	return &ProfileUseCase{
		ws:     ws,
		logger: log,
	}
}

type GetProfileOutput struct {
	Member member.Profile `json:"userInfo"`
	Career career.Profile `json:"careerData"`
}

func (uc *ProfileUseCase) ExecuteGetProfile(ctx context.Context) (*GetProfileOutput, error) {
	d, err := uc.ws.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &GetProfileOutput{Member: d.UserInfo, Career: d.CareerData}, nil
}

// ExecuteSaveMember replaces the member profile after validation.
func (uc *ProfileUseCase) ExecuteSaveMember(ctx context.Context, p member.Profile) (*member.Profile, error) {
	if errs := p.Validate(); len(errs) > 0 {
		return nil, apperror.NewValidation("member profile is incomplete", errs)
	}
	d, err := uc.ws.Mutate(ctx, []tracker.Bucket{tracker.BucketUserInfo}, func(d *tracker.Data) error {
		d.UserInfo = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("Member profile saved", zap.String("membership_number", p.MembershipNumber))
	return &d.UserInfo, nil
}

// ExecuteSaveCareer replaces the career profile. Expected competencies are
// stored without blanks or duplicates.
func (uc *ProfileUseCase) ExecuteSaveCareer(ctx context.Context, p career.Profile) (*career.Profile, error) {
	p.CompetenciesExpected = p.Competencies()
	d, err := uc.ws.Mutate(ctx, []tracker.Bucket{tracker.BucketCareerData}, func(d *tracker.Data) error {
		d.CareerData = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.logger.Info("Career profile saved", zap.Int("competencies", len(p.CompetenciesExpected)))
	return &d.CareerData, nil
}
