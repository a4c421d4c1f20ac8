package workspace

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/cpd-tracker/internal/domain/activity"
	"github.com/khoahotran/cpd-tracker/internal/domain/tracker"
	"github.com/khoahotran/cpd-tracker/pkg/apperror"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

type fakeRepo struct {
	stored  tracker.Data
	loads   int
	saves   [][]tracker.Bucket
	failOn  int // fail the nth Save call (1-based), 0 never
	loadErr error
}

func (f *fakeRepo) Load(context.Context) (tracker.Data, error) {
	f.loads++
	if f.loadErr != nil {
		return tracker.Data{}, f.loadErr
	}
	return f.stored.Clone(), nil
}

func (f *fakeRepo) Save(_ context.Context, d tracker.Data, buckets ...tracker.Bucket) error {
	f.saves = append(f.saves, buckets)
	if f.failOn == len(f.saves) {
		return errors.New("quota exceeded")
	}
	f.stored = d.Clone()
	return nil
}

func (f *fakeRepo) Usage(context.Context) (map[tracker.Bucket]int, error) {
	return map[tracker.Bucket]int{tracker.BucketUserInfo: 2}, nil
}

func (f *fakeRepo) Clear(context.Context) error {
	f.stored = tracker.Data{}
	return nil
}

type WorkspaceTestSuite struct {
	suite.Suite
	repo *fakeRepo
	ws   *Workspace
	ctx  context.Context
}

func (s *WorkspaceTestSuite) SetupTest() {
	s.repo = &fakeRepo{stored: tracker.Data{
		CompletedActivities: []activity.Completed{{ID: "a1", Activity: "Seed"}},
	}}
	s.ws = NewWorkspace(s.repo, logger.NewNop())
	s.ctx = context.Background()
}

func (s *WorkspaceTestSuite) TestLoadsOnce() {
	_, err := s.ws.Snapshot(s.ctx)
	s.Require().NoError(err)
	_, err = s.ws.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, s.repo.loads)
}

func (s *WorkspaceTestSuite) TestSnapshotIsACopy() {
	d, err := s.ws.Snapshot(s.ctx)
	s.Require().NoError(err)
	d.CompletedActivities[0].Activity = "changed"

	again, err := s.ws.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Equal("Seed", again.CompletedActivities[0].Activity)
}

func (s *WorkspaceTestSuite) TestMutateSavesTouchedBuckets() {
	out, err := s.ws.Mutate(s.ctx, []tracker.Bucket{tracker.BucketPlannedActivities}, func(d *tracker.Data) error {
		d.PlannedActivities = append(d.PlannedActivities, activity.Planned{ID: "p1"})
		return nil
	})
	s.Require().NoError(err)
	s.Len(out.PlannedActivities, 1)
	s.Equal([][]tracker.Bucket{{tracker.BucketPlannedActivities}}, s.repo.saves)
	s.Len(s.repo.stored.PlannedActivities, 1)
}

func (s *WorkspaceTestSuite) TestFailedSaveKeepsPreviousState() {
	s.repo.failOn = 1
	_, err := s.ws.Mutate(s.ctx, []tracker.Bucket{tracker.BucketCompletedActivities}, func(d *tracker.Data) error {
		d.CompletedActivities = nil
		return nil
	})
	s.Require().Error(err)
	s.ErrorIs(err, apperror.ErrPersistence)

	d, err := s.ws.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Len(d.CompletedActivities, 1)
	// The second save restores the old value.
	s.Len(s.repo.saves, 2)
	s.Len(s.repo.stored.CompletedActivities, 1)
}

func (s *WorkspaceTestSuite) TestCallbackErrorDiscardsChanges() {
	boom := errors.New("boom")
	_, err := s.ws.Mutate(s.ctx, []tracker.Bucket{tracker.BucketCompletedActivities}, func(d *tracker.Data) error {
		d.CompletedActivities = nil
		return boom
	})
	s.ErrorIs(err, boom)
	s.Empty(s.repo.saves)

	d, _ := s.ws.Snapshot(s.ctx)
	s.Len(d.CompletedActivities, 1)
}

func (s *WorkspaceTestSuite) TestLoadFailureIsPersistenceError() {
	s.repo.loadErr = errors.New("disk gone")
	_, err := s.ws.Snapshot(s.ctx)
	s.ErrorIs(err, apperror.ErrPersistence)
}

func (s *WorkspaceTestSuite) TestClear() {
	s.Require().NoError(s.ws.Clear(s.ctx))
	d, err := s.ws.Snapshot(s.ctx)
	s.Require().NoError(err)
	s.Empty(d.CompletedActivities)
	s.Equal(0, s.repo.loads)
}

func TestWorkspaceTestSuite(t *testing.T) {
	suite.Run(t, new(WorkspaceTestSuite))
}
