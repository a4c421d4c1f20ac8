package backup

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/cpd-tracker/internal/application/usecase/workspace"
	"github.com/khoahotran/cpd-tracker/internal/domain/activity"
	"github.com/khoahotran/cpd-tracker/internal/domain/career"
	"github.com/khoahotran/cpd-tracker/internal/domain/learning"
	"github.com/khoahotran/cpd-tracker/internal/domain/member"
	"github.com/khoahotran/cpd-tracker/internal/domain/tracker"
	"github.com/khoahotran/cpd-tracker/pkg/apperror"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

type memRepo struct {
	data    tracker.Data
	saves   int
	usage   map[tracker.Bucket]int
	cleared bool
}

func (r *memRepo) Load(context.Context) (tracker.Data, error) { return r.data.Clone(), nil }

func (r *memRepo) Save(_ context.Context, d tracker.Data, _ ...tracker.Bucket) error {
	r.saves++
	r.data = d.Clone()
	return nil
}

func (r *memRepo) Usage(context.Context) (map[tracker.Bucket]int, error) { return r.usage, nil }

func (r *memRepo) Clear(context.Context) error {
	r.cleared = true
	r.data = tracker.Data{}
	return nil
}

type captureUploader struct {
	folder, publicID string
	body             []byte
	err              error
}

func (u *captureUploader) Upload(_ context.Context, r io.Reader, folder, publicID string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.folder, u.publicID = folder, publicID
	u.body, _ = io.ReadAll(r)
	return "https://media.example/" + folder + "/" + publicID, nil
}

func (u *captureUploader) Delete(context.Context, string) error { return nil }

var backupNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func fullData() tracker.Data {
	added := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return tracker.Data{
		UserInfo: member.Profile{FirstName: "Thandi", Surname: "Nkosi", MembershipNumber: "SA12345", FirmName: "Nkosi Inc"},
		CareerData: career.Profile{
			CareerPath: "Audit", CurrentPosition: "Manager", YearsInRole: "3",
			CompetenciesExpected: []string{"Judgement", "Ethics"},
		},
		LearningNeeds: []learning.Need{{ID: "n1", CourseName: "IFRS 17", CompetencyID: "Reporting", DateAdded: added}},
		PlannedActivities: []activity.Planned{{
			ID: "p1", CourseName: "Ethics refresher", CompetencyName: "Ethics", ActivityType: activity.TypeWebinar,
			CPDHours: "1.5", PlannedDate: "2026-12-01", Status: activity.StatusPlanned, Certification: activity.CertificationNo,
			IsEthics: true, DateAdded: added,
		}},
		CompletedActivities: []activity.Completed{{
			ID: "1700000000000", Date: "2026-05-01", Activity: "Tax seminar", ActivityType: activity.TypeFormal,
			Outcome: "Learnt the new rules", CPDHours: "3", IsVerifiable: true, Reflection: "useful",
			Attachments: []activity.Attachment{{Name: "cert.pdf", Size: 10, Type: "application/pdf", URL: "https://x/y", DateAdded: added}},
			DateAdded:   added,
		}},
	}
}

type BackupUseCaseTestSuite struct {
	suite.Suite
	repo     *memRepo
	uploader *captureUploader
	uc       *BackupUseCase
	ctx      context.Context
}

func (s *BackupUseCaseTestSuite) SetupTest() {
	s.repo = &memRepo{data: fullData()}
	s.uploader = &captureUploader{}
	s.uc = NewBackupUseCase(workspace.NewWorkspace(s.repo, logger.NewNop()), s.uploader, nil, logger.NewNop())
	s.uc.now = func() time.Time { return backupNow }
	s.ctx = context.Background()
}

func (s *BackupUseCaseTestSuite) TestExportImportRoundTrip() {
	out, err := s.uc.ExecuteExport(s.ctx)
	s.Require().NoError(err)
	s.Equal("CPD_Tracker_Backup_2026-10-17.json", out.FileName)

	var b Backup
	s.Require().NoError(json.Unmarshal(out.Content, &b))
	s.Equal(Version, b.Version)
	s.True(backupNow.Equal(b.ExportDate))

	s.repo.data = tracker.Data{}
	fresh := NewBackupUseCase(workspace.NewWorkspace(s.repo, logger.NewNop()), nil, nil, logger.NewNop())
	res, err := fresh.ExecuteImport(s.ctx, out.Content)
	s.Require().NoError(err)
	s.Len(res.Replaced, len(tracker.AllBuckets))

	if diff := cmp.Diff(fullData(), s.repo.data, cmpopts.EquateEmpty()); diff != "" {
		s.Failf("round trip changed data", "(-want +got):\n%s", diff)
	}
}

func (s *BackupUseCaseTestSuite) TestImportReplacesOnlyPresentKeys() {
	raw := []byte(`{"version":"1.0","data":{"completedActivities":[{"id":5,"date":"2026-01-01","activity":"Old","activityType":"verifiable","hours":"2"}]}}`)
	res, err := s.uc.ExecuteImport(s.ctx, raw)
	s.Require().NoError(err)
	s.Equal([]tracker.Bucket{tracker.BucketCompletedActivities}, res.Replaced)

	s.Equal("Thandi", s.repo.data.UserInfo.FirstName)
	s.Len(s.repo.data.PlannedActivities, 1)
	s.Require().Len(s.repo.data.CompletedActivities, 1)
	got := s.repo.data.CompletedActivities[0]
	s.Equal("5", got.ID.String())
	s.InDelta(2.0, got.EffectiveHours(), 1e-9)
}

func (s *BackupUseCaseTestSuite) TestImportRejections() {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"not json", `{nope`, ErrMalformedBackup},
		{"wrong version", `{"version":"2.0","data":{}}`, ErrUnsupportedVersion},
		{"numeric version", `{"version":1.0,"data":{}}`, ErrUnsupportedVersion},
		{"missing data", `{"version":"1.0"}`, ErrInvalidBackup},
		{"list is object", `{"version":"1.0","data":{"plannedActivities":{}}}`, ErrInvalidBackup},
		{"hours object", `{"version":"1.0","data":{"completedActivities":[{"id":"a","cpdHours":{"v":1}}]}}`, ErrInvalidBackup},
		{"missing id", `{"version":"1.0","data":{"learningNeeds":[{"courseName":"x"}]}}`, ErrInvalidBackup},
		{"duplicate id", `{"version":"1.0","data":{"completedActivities":[{"id":"a"},{"id":"a"}]}}`, ErrInvalidBackup},
		{"bad status", `{"version":"1.0","data":{"plannedActivities":[{"id":"a","status":"done"}]}}`, ErrInvalidBackup},
		{"bad type", `{"version":"1.0","data":{"userInfo":{"firstName":"New"},"completedActivities":[{"id":"a","activityType":"party"}]}}`, ErrInvalidBackup},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			before := s.repo.saves
			_, err := s.uc.ExecuteImport(s.ctx, []byte(tc.raw))
			s.Require().Error(err)
			s.True(errors.Is(err, tc.want), "got %v", err)
			s.ErrorIs(err, apperror.ErrImport)
			s.Equal(before, s.repo.saves)
			s.Equal("Thandi", s.repo.data.UserInfo.FirstName)
		})
	}
}

func (s *BackupUseCaseTestSuite) TestUpload() {
	url, err := s.uc.ExecuteUpload(s.ctx)
	s.Require().NoError(err)
	s.Equal("cpd-tracker/backups", s.uploader.folder)
	s.Equal("backup-2026-10-17_12-00-00", s.uploader.publicID)
	s.Contains(url, s.uploader.publicID)

	_, _, err = Parse(s.uploader.body)
	s.NoError(err)

	s.uploader.err = errors.New("quota")
	_, err = s.uc.ExecuteUpload(s.ctx)
	s.ErrorIs(err, apperror.ErrExternalService)
}

func TestBackupUseCaseTestSuite(t *testing.T) {
	suite.Run(t, new(BackupUseCaseTestSuite))
}

func (s *BackupUseCaseTestSuite) TestUsageAndClear() {
	s.repo.usage = map[tracker.Bucket]int{tracker.BucketUserInfo: 100, tracker.BucketCompletedActivities: 2 << 20}
	u, err := s.uc.ExecuteUsage(s.ctx)
	s.Require().NoError(err)
	s.Equal(100+(2<<20), u.Bytes)
	s.Equal(0, u.Buckets[tracker.BucketLearningNeeds])
	s.InDelta(2.0, u.MB, 1e-9)

	s.Require().NoError(s.uc.ExecuteClear(s.ctx))
	s.True(s.repo.cleared)
	out, err := s.uc.ExecuteExport(s.ctx)
	s.Require().NoError(err)
	s.Contains(string(out.Content), `"completedActivities": []`)
}
