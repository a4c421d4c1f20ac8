package compliance

import (
	"strings"
	"time"

	"github.com/khoahotran/cpd-tracker/internal/domain/activity"
)

type PlannedStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	InProgress int `json:"inProgress"`
	Overdue    int `json:"overdue"`
}

type Analytics struct {
	Year            int                   `json:"year"`
	TotalActivities int                   `json:"totalActivities"`
	TotalHours      float64               `json:"totalHours"`
	AverageHours    float64               `json:"averageHoursPerActivity"`
	EthicsHours     float64               `json:"ethicsHours"`
	TotalProgress   float64               `json:"totalProgress"`
	EthicsProgress  float64               `json:"ethicsProgress"`
	ByType          map[activity.Type]int `json:"byType"`
	HoursByArea     map[string]float64    `json:"hoursByArea"`
	HoursByMonth    [12]float64           `json:"hoursByMonth"`
	Planned         PlannedStats          `json:"planned"`
}

// Analyze summarises the current year's completed activities and the state
// of the plan. Progress figures use the same requirements as Calculate.
func Analyze(completed []activity.Completed, planned []activity.Planned, req Requirements, now time.Time) Analytics {
	a := Analytics{
		Year:        now.Year(),
		ByType:      make(map[activity.Type]int, len(activity.AllTypes)),
		HoursByArea: make(map[string]float64),
	}
	for _, t := range activity.AllTypes {
		a.ByType[t] = 0
	}

	var total, ethics float64
	for _, c := range InYear(completed, a.Year) {
		h := c.EffectiveHours()
		a.TotalActivities++
		total += h
		if c.CountsAsEthics() {
			ethics += h
		}
		if c.ActivityType.IsValid() && c.ActivityType != activity.TypeVerifiable {
			a.ByType[c.ActivityType]++
		} else {
			a.ByType[activity.TypeOther]++
		}

		area := strings.TrimSpace(c.DevelopmentArea)
		if area == "" {
			area = "Other"
		}
		a.HoursByArea[area] = Round1(a.HoursByArea[area] + h)

		d, _ := c.Date.Time()
		a.HoursByMonth[d.Month()-1] = Round1(a.HoursByMonth[d.Month()-1] + h)
	}

	a.TotalHours = Round1(total)
	a.EthicsHours = Round1(ethics)
	if a.TotalActivities > 0 {
		a.AverageHours = Round1(total / float64(a.TotalActivities))
	}
	a.TotalProgress = Percent(a.TotalHours, req.TotalHours)
	a.EthicsProgress = Percent(a.EthicsHours, req.EthicsHours)

	for _, p := range planned {
		a.Planned.Total++
		switch p.Status {
		case activity.StatusCompleted:
			a.Planned.Completed++
		case activity.StatusInProgress:
			a.Planned.InProgress++
		}
		if p.IsOverdue(now) {
			a.Planned.Overdue++
		}
	}
	return a
}
