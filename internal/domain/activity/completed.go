package activity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/khoahotran/cpd-tracker/internal/domain/ids"
)

// Completed is a finished CPD activity. The block after Attachments is
// only populated when the record was promoted from a plan.
type Completed struct {
	ID              ids.ID       `json:"id"`
	Date            Date         `json:"date"`
	Activity        string       `json:"activity"`
	ActivityType    Type         `json:"activityType"`
	DevelopmentArea string       `json:"developmentArea,omitempty"`
	Outcome         string       `json:"outcome,omitempty"`
	Provider        string       `json:"provider,omitempty"`
	Description     string       `json:"description,omitempty"`
	CPDHours        Hours        `json:"cpdHours,omitempty"`
	LegacyHours     Hours        `json:"hours,omitempty"`
	IsVerifiable    bool         `json:"isVerifiable"`
	IsEthics        bool         `json:"isEthics"`
	Attachments     []Attachment `json:"attachments,omitempty"`
	Reflection      string       `json:"reflection,omitempty"`
	FutureLearning  string       `json:"futureLearning,omitempty"`
	DateAdded       time.Time    `json:"dateAdded,omitzero"`

	CourseName     string        `json:"courseName,omitempty"`
	CompetencyName string        `json:"competencyName,omitempty"`
	PlannedDate    Date          `json:"plannedDate,omitempty"`
	Status         Status        `json:"status,omitempty"`
	Certification  Certification `json:"certification,omitempty"`
	Notes          string        `json:"notes,omitempty"`
}

// EffectiveHours prefers cpdHours, then the older "hours" field. Anything
// unusable is zero.
func (c Completed) EffectiveHours() float64 {
	if v, ok := c.CPDHours.Float(); ok && v > 0 {
		return v
	}
	return c.LegacyHours.Value()
}

// DisplayHours is the hour figure to print, if any.
func (c Completed) DisplayHours() (float64, bool) {
	if v, ok := c.CPDHours.Float(); ok {
		if v > 0 || !c.LegacyHours.IsSet() {
			return v, true
		}
	}
	return c.LegacyHours.Float()
}

func (c Completed) CountsAsVerifiable() bool {
	return c.IsVerifiable || c.ActivityType.CountsAsVerifiable()
}

func (c Completed) CountsAsEthics() bool {
	if c.IsEthics {
		return true
	}
	return containsFold(c.DevelopmentArea, "ethics") || containsFold(c.CompetencyName, "ethics")
}

func (c Completed) HasReflection() bool {
	return strings.TrimSpace(c.Reflection) != "" || strings.TrimSpace(c.FutureLearning) != ""
}

// Area is the competency the activity developed, falling back to the
// planned competency for promoted records.
func (c Completed) Area() string {
	if a := strings.TrimSpace(c.DevelopmentArea); a != "" {
		return a
	}
	return strings.TrimSpace(c.CompetencyName)
}

func (c Completed) Name() string {
	if a := strings.TrimSpace(c.Activity); a != "" {
		return a
	}
	return strings.TrimSpace(c.CourseName)
}

// Validate applies the entry form rules. now decides what counts as a
// future or stale date.
func (c Completed) Validate(now time.Time) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(string(c.Date)) == "" {
		errs["date"] = "Date is required"
	} else if d, ok := c.Date.Time(); !ok {
		errs["date"] = "Date must be a valid date"
	} else {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		switch {
		case d.After(today):
			errs["date"] = "CPD activity date cannot be in the future"
		case d.Before(today.AddDate(-5, 0, 0)):
			errs["date"] = "CPD activity date should not be more than 5 years old"
		}
	}

	name := strings.TrimSpace(c.Activity)
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		errs["activity"] = "Activity name is required"
	case n < 3:
		errs["activity"] = "Activity name must be at least 3 characters"
	case n > 100:
		errs["activity"] = "Activity name must be less than 100 characters"
	}

	if c.ActivityType == "" {
		errs["activityType"] = "Activity type is required"
	} else if !c.ActivityType.IsValid() {
		errs["activityType"] = "Unknown activity type"
	}

	if utf8.RuneCountInString(c.DevelopmentArea) > 50 {
		errs["developmentArea"] = "Development area must be less than 50 characters"
	}

	outcome := strings.TrimSpace(c.Outcome)
	switch n := utf8.RuneCountInString(outcome); {
	case n == 0:
		errs["outcome"] = "Learning outcome is required"
	case n < 10:
		errs["outcome"] = "Learning outcome should be at least 10 characters for meaningful reflection"
	case n > 1000:
		errs["outcome"] = "Learning outcome must be less than 1000 characters"
	}

	if utf8.RuneCountInString(c.Provider) > 100 {
		errs["provider"] = "Provider name must be less than 100 characters"
	}
	if utf8.RuneCountInString(c.Description) > 500 {
		errs["description"] = "Description must be less than 500 characters"
	}
	if c.CPDHours.IsSet() {
		if _, ok := c.CPDHours.Float(); !ok {
			errs["cpdHours"] = "CPD hours must be a number between 0 and 8760"
		}
	}
	return errs
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), sub)
}
