package activity

import (
	"strings"
	"time"

	"github.com/khoahotran/cpd-tracker/internal/domain/ids"
)

// Planned is an activity the member intends to do. It leaves the planned
// list only through Promote or deletion.
type Planned struct {
	ID             ids.ID        `json:"id"`
	CourseName     string        `json:"courseName"`
	CompetencyName string        `json:"competencyName"`
	ActivityType   Type          `json:"activityType"`
	CPDHours       Hours         `json:"cpdHours,omitempty"`
	PlannedDate    Date          `json:"plannedDate,omitempty"`
	Status         Status        `json:"status"`
	Certification  Certification `json:"certification,omitempty"`
	IsVerifiable   bool          `json:"isVerifiable"`
	IsEthics       bool          `json:"isEthics"`
	Notes          string        `json:"notes,omitempty"`
	DateAdded      time.Time     `json:"dateAdded,omitzero"`
}

func (p Planned) Validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(p.CourseName) == "" {
		errs["courseName"] = "Course/Activity name is required"
	}
	if strings.TrimSpace(p.CompetencyName) == "" {
		errs["competencyName"] = "Competency name is required"
	}
	if strings.TrimSpace(string(p.PlannedDate)) == "" {
		errs["plannedDate"] = "Planned date is required"
	} else if _, ok := p.PlannedDate.Time(); !ok {
		errs["plannedDate"] = "Planned date must be a valid date"
	}
	if p.ActivityType != "" && !p.ActivityType.IsValid() {
		errs["activityType"] = "Unknown activity type"
	}
	if p.Status != "" && !p.Status.IsValid() {
		errs["status"] = "Unknown status"
	}
	if !p.Certification.IsValid() {
		errs["certification"] = "Certification must be yes, no or unknown"
	}
	if p.CPDHours.IsSet() {
		if _, ok := p.CPDHours.Float(); !ok {
			errs["cpdHours"] = "CPD hours must be a number between 0 and 8760"
		}
	}
	return errs
}

// IsOverdue reports a still-planned activity whose date has passed.
func (p Planned) IsOverdue(now time.Time) bool {
	if p.Status != StatusPlanned {
		return false
	}
	d, ok := p.PlannedDate.Time()
	if !ok {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return d.Before(today)
}

// Promote turns the plan into a completed record dated today. Every planned
// field survives; the completion name and area default to the course and
// competency so the record is usable without further edits.
func (p Planned) Promote(now time.Time) Completed {
	return Completed{
		ID:              p.ID,
		Date:            DateOf(now),
		Activity:        p.CourseName,
		ActivityType:    p.ActivityType,
		DevelopmentArea: p.CompetencyName,
		CPDHours:        p.CPDHours,
		IsVerifiable:    p.IsVerifiable,
		IsEthics:        p.IsEthics,
		DateAdded:       p.DateAdded,
		CourseName:      p.CourseName,
		CompetencyName:  p.CompetencyName,
		PlannedDate:     p.PlannedDate,
		Status:          StatusCompleted,
		Certification:   p.Certification,
		Notes:           p.Notes,
	}
}
