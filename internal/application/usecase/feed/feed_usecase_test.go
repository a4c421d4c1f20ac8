package feed

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/cpd-tracker/internal/application/usecase/workspace"
	"github.com/khoahotran/cpd-tracker/internal/domain/activity"
	"github.com/khoahotran/cpd-tracker/internal/domain/ids"
	"github.com/khoahotran/cpd-tracker/internal/domain/member"
	"github.com/khoahotran/cpd-tracker/internal/domain/tracker"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

type staticRepo struct{ data tracker.Data }

func (r *staticRepo) Load(context.Context) (tracker.Data, error)                 { return r.data.Clone(), nil }
func (r *staticRepo) Save(context.Context, tracker.Data, ...tracker.Bucket) error { return nil }
func (r *staticRepo) Usage(context.Context) (map[tracker.Bucket]int, error)      { return nil, nil }
func (r *staticRepo) Clear(context.Context) error                               { return nil }

func TestExecuteOrdersNewestFirst(t *testing.T) {
	var acts []activity.Completed
	for i := 1; i <= 25; i++ {
		acts = append(acts, activity.Completed{
			ID: ids.ID(fmt.Sprint(i)), Date: activity.Date(fmt.Sprintf("2026-01-%02d", i)),
			Activity: fmt.Sprintf("Act %d", i), ActivityType: activity.TypeWebinar, CPDHours: "1.5",
		})
	}
	repo := &staticRepo{data: tracker.Data{
		UserInfo:            member.Profile{FirstName: "Thandi", Surname: "Nkosi"},
		CompletedActivities: acts,
	}}
	uc := NewFeedUseCase(workspace.NewWorkspace(repo, logger.NewNop()), "http://cpd.local/", logger.NewNop())
	uc.now = func() time.Time { return time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC) }

	feed, err := uc.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, feed.Items, maxItems)
	assert.Equal(t, "Act 25", feed.Items[0].Title)
	assert.Equal(t, "http://cpd.local/api/activities/completed/25", feed.Items[0].Link.Href)
	assert.Equal(t, "Webinar | 1.5 hours", feed.Items[0].Description)
	assert.Equal(t, "Thandi Nkosi", feed.Author.Name)

	rss, err := feed.ToRss()
	require.NoError(t, err)
	assert.True(t, strings.Contains(rss, "<title>Act 25</title>"))
}
