package feed

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"go.uber.org/zap"

	"github.com/khoahotran/cpd-tracker/internal/application/usecase/workspace"
	"github.com/khoahotran/cpd-tracker/internal/domain/activity"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

const maxItems = 20

// FeedUseCase publishes the most recent completed activities as a feed.
type FeedUseCase struct {
	ws      *workspace.Workspace
	baseURL string
	logger  logger.Logger
	now     func() time.Time
}

func NewFeedUseCase(ws *workspace.Workspace, baseURL string, log logger.Logger) *FeedUseCase {
	return &FeedUseCase{
		ws:      ws,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log,
		now:     time.Now,
	}
}

func (uc *FeedUseCase) Execute(ctx context.Context) (*feeds.Feed, error) {
	uc.logger.Info("Generating activity feed...")

	d, err := uc.ws.Snapshot(ctx)
	if err != nil {
		uc.logger.Error("Failed to load activities for feed", err)
		return nil, err
	}

	author := d.UserInfo.FullName()
	if author == "" {
		author = "CPD Tracker"
	}
	feed := &feeds.Feed{
		Title:       "CPD Tracker - Completed Activities",
		Link:        &feeds.Link{Href: uc.baseURL + "/api/activities/completed"},
		Description: "Continuing professional development activities as they are completed.",
		Author:      &feeds.Author{Name: author},
		Created:     uc.now(),
	}

	acts := append([]activity.Completed(nil), d.CompletedActivities...)
	sort.SliceStable(acts, func(i, j int) bool {
		return completedAt(acts[i]).After(completedAt(acts[j]))
	})
	if len(acts) > maxItems {
		acts = acts[:maxItems]
	}

	for _, a := range acts {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          a.ID.String(),
			Title:       a.Name(),
			Link:        &feeds.Link{Href: fmt.Sprintf("%s/api/activities/completed/%s", uc.baseURL, a.ID)},
			Description: describe(a),
			Created:     completedAt(a),
		})
	}

	uc.logger.Info("Activity feed generated successfully", zap.Int("item_count", len(feed.Items)))
	return feed, nil
}

func completedAt(a activity.Completed) time.Time {
	if t, ok := a.Date.Time(); ok {
		return t
	}
	return a.DateAdded
}

func describe(a activity.Completed) string {
	parts := []string{a.ActivityType.Label()}
	if h, ok := a.DisplayHours(); ok {
		parts = append(parts, fmt.Sprintf("%g hours", h))
	}
	if area := a.Area(); area != "" {
		parts = append(parts, area)
	}
	if p := strings.TrimSpace(a.Provider); p != "" {
		parts = append(parts, p)
	}
	desc := strings.Join(parts, " | ")
	if o := strings.TrimSpace(a.Outcome); o != "" {
		desc += ". " + o
	}
	return desc
}
