package persistence

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/cpd-tracker/internal/domain/activity"
	"github.com/khoahotran/cpd-tracker/internal/domain/member"
	"github.com/khoahotran/cpd-tracker/internal/domain/tracker"
	"github.com/khoahotran/cpd-tracker/pkg/apperror"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

// repositorySuite runs the same checks against every local store.
type repositorySuite struct {
	suite.Suite
	newStore func() tracker.Store
	store    tracker.Store
	repo     *BucketRepository
}

func (s *repositorySuite) SetupTest() {
	s.store = s.newStore()
	s.repo = NewBucketRepository(s.store, "test:", logger.NewNop())
}

func (s *repositorySuite) TearDownTest() {
	s.NoError(s.store.Close())
}

func (s *repositorySuite) sample() tracker.Data {
	return tracker.Data{
		UserInfo: member.Profile{FirstName: "Thandi", MembershipNumber: "SA123"},
		PlannedActivities: []activity.Planned{
			{ID: "p1", CourseName: "IFRS 17", CompetencyName: "Reporting", PlannedDate: "2026-11-01", Status: activity.StatusPlanned},
		},
		CompletedActivities: []activity.Completed{
			{ID: "c1", Date: "2026-03-02", Activity: "Ethics webinar", CPDHours: "2", IsEthics: true},
		},
	}
}

func (s *repositorySuite) TestEmptyStoreLoadsEmpty() {
	data, err := s.repo.Load(context.Background())
	s.Require().NoError(err)
	s.Empty(data.PlannedActivities)
	s.Empty(data.CompletedActivities)
	s.Empty(data.UserInfo.FirstName)
}

func (s *repositorySuite) TestSaveAndLoad() {
	ctx := context.Background()
	want := s.sample()
	s.Require().NoError(s.repo.Save(ctx, want))

	got, err := s.repo.Load(ctx)
	s.Require().NoError(err)
	s.Equal(want.UserInfo, got.UserInfo)
	s.Equal(want.PlannedActivities, got.PlannedActivities)
	s.Equal(want.CompletedActivities, got.CompletedActivities)
	s.Empty(got.LearningNeeds)
}

func (s *repositorySuite) TestSaveOnlyNamedBuckets() {
	ctx := context.Background()
	data := s.sample()
	s.Require().NoError(s.repo.Save(ctx, data, tracker.BucketPlannedActivities))

	got, err := s.repo.Load(ctx)
	s.Require().NoError(err)
	s.Len(got.PlannedActivities, 1)
	s.Empty(got.CompletedActivities)
	s.Empty(got.UserInfo.FirstName)
}

func (s *repositorySuite) TestCorruptBucketIsPersistenceError() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, tracker.BucketCompletedActivities, []byte(`{"not":"a list"}`)))

	_, err := s.repo.Load(ctx)
	s.Require().Error(err)
	s.True(errors.Is(err, apperror.ErrPersistence))
}

func (s *repositorySuite) TestUsageAndClear() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Save(ctx, s.sample()))

	usage, err := s.repo.Usage(ctx)
	s.Require().NoError(err)
	s.Len(usage, len(tracker.AllBuckets))
	raw, err := s.store.Get(ctx, tracker.BucketPlannedActivities)
	s.Require().NoError(err)
	s.Equal(len("test:cpdPlannedActivities")+len(raw), usage[tracker.BucketPlannedActivities])

	s.Require().NoError(s.repo.Clear(ctx))
	usage, err = s.repo.Usage(ctx)
	s.Require().NoError(err)
	s.Empty(usage)
	_, err = s.store.Get(ctx, tracker.BucketUserInfo)
	s.ErrorIs(err, tracker.ErrBucketNotFound)
}

func TestMemoryRepository(t *testing.T) {
	suite.Run(t, &repositorySuite{newStore: func() tracker.Store { return NewMemoryStore("test:") }})
}

func TestSQLiteRepository(t *testing.T) {
	dir := t.TempDir()
	n := 0
	suite.Run(t, &repositorySuite{newStore: func() tracker.Store {
		n++
		path := filepath.Join(dir, fmt.Sprintf("cpd-%d.db", n))
		st, err := NewSQLiteStore(context.Background(), path, "test:", logger.NewNop())
		require.NoError(t, err)
		return st
	}})
}

func TestSaveFailureIsPersistenceError(t *testing.T) {
	st := NewMemoryStore("")
	st.FailPut = func(b tracker.Bucket) error {
		if b == tracker.BucketCompletedActivities {
			return errors.New("disk full")
		}
		return nil
	}
	repo := NewBucketRepository(st, "", logger.NewNop())

	err := repo.Save(context.Background(), tracker.Data{}, tracker.BucketPlannedActivities, tracker.BucketCompletedActivities)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrPersistence)
}

func TestSQLiteKeepsDataAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cpd.db")

	st, err := NewSQLiteStore(ctx, path, "", logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, NewBucketRepository(st, "", logger.NewNop()).Save(ctx, tracker.Data{
		UserInfo: member.Profile{FirstName: "Sipho"},
	}))
	require.NoError(t, st.Close())

	st, err = NewSQLiteStore(ctx, path, "", logger.NewNop())
	require.NoError(t, err)
	defer st.Close()
	data, err := NewBucketRepository(st, "", logger.NewNop()).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sipho", data.UserInfo.FirstName)
}
