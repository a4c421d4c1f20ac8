package compliance

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/khoahotran/cpd-tracker/internal/domain/activity"
)

type Warning struct {
	Level   string `json:"type"`
	Message string `json:"message"`
}

const minActivitiesPerYear = 5

// Warnings lists advisories for the activities dated in now's year.
func Warnings(activities []activity.Completed, now time.Time) []Warning {
	year := now.Year()
	current := InYear(activities, year)
	var out []Warning

	if len(current) < minActivitiesPerYear {
		out = append(out, Warning{
			Level:   "warning",
			Message: fmt.Sprintf("You have only %d CPD activities recorded for %d. Regular ongoing professional development is recommended.", len(current), year),
		})
	}

	formal := 0
	thinOutcome := 0
	noEvidence := 0
	for _, a := range current {
		if a.ActivityType == activity.TypeFormal {
			formal++
		}
		if utf8.RuneCountInString(strings.TrimSpace(a.Outcome)) < 10 {
			thinOutcome++
		}
		if len(a.Attachments) == 0 {
			noEvidence++
		}
	}

	if formal == 0 {
		out = append(out, Warning{
			Level:   "info",
			Message: "Consider adding some formal learning activities (courses, qualifications) to your CPD plan.",
		})
	}
	if thinOutcome > 0 {
		out = append(out, Warning{
			Level:   "warning",
			Message: fmt.Sprintf("%d activities lack detailed learning outcomes. Output-based CPD measurement relies on them.", thinOutcome),
		})
	}
	if float64(noEvidence) > float64(len(current))*0.5 {
		out = append(out, Warning{
			Level:   "info",
			Message: "Consider adding evidence (certificates, materials) to support your CPD activities for compliance purposes.",
		})
	}
	return out
}
