package insight

import (
	"strconv"
	"strings"
	"time"

	"github.com/khoahotran/cpd-tracker/internal/domain/activity"
)

// Draft pre-fills a completed activity from an analysis result. Fields the
// model did not supply stay empty for the user to complete.
func Draft(r Result, now time.Time) activity.Completed {
	d := activity.Completed{
		Activity:    str(r, "activity"),
		Provider:    str(r, "provider"),
		Description: str(r, "description"),
		Outcome:     str(r, "outcome"),
		CPDHours:    hours(r["cpdHours"]),
	}
	if d.Activity == "" {
		d.Activity = str(r, "title")
	}
	if t := str(r, "activityType"); t != "" {
		d.ActivityType = activity.ParseType(t)
		if d.ActivityType == activity.TypeVerifiable {
			d.ActivityType = activity.TypeFormal
		}
	}

	areas := competencyAreas(r["competencyAreas"])
	if len(areas) > 0 {
		d.DevelopmentArea = areas[0]
	}
	for _, a := range areas {
		if strings.Contains(strings.ToLower(a), "ethic") {
			d.IsEthics = true
		}
	}

	if date := activity.Date(str(r, "date")); date != "" {
		if t, ok := date.Time(); ok {
			d.Date = activity.DateOf(t)
		}
	}
	if d.Date == "" {
		d.Date = activity.DateOf(now)
	}
	return d
}

func str(r Result, key string) string {
	if s, ok := r[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// hours keeps numbers and strings. Strings such as "2 hours" keep their
// leading number.
func hours(v any) activity.Hours {
	switch h := v.(type) {
	case float64:
		return activity.HoursOf(h)
	case string:
		h = strings.TrimSpace(h)
		if _, err := strconv.ParseFloat(h, 64); err == nil {
			return activity.Hours(h)
		}
		if f := strings.Fields(h); len(f) > 0 {
			if _, err := strconv.ParseFloat(f[0], 64); err == nil {
				return activity.Hours(f[0])
			}
		}
		return activity.Hours(h)
	}
	return ""
}

func competencyAreas(v any) []string {
	var out []string
	switch a := v.(type) {
	case []any:
		for _, item := range a {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		for _, s := range strings.Split(a, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
