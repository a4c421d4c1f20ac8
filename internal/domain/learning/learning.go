package learning

import (
	"strings"
	"time"

	"github.com/khoahotran/cpd-tracker/internal/domain/ids"
)

// Need is a development gap identified during planning.
type Need struct {
	ID           ids.ID    `json:"id"`
	CourseName   string    `json:"courseName"`
	CompetencyID string    `json:"competencyId"`
	NeedPrompt   string    `json:"needPrompt,omitempty"`
	DateAdded    time.Time `json:"dateAdded"`
}

// Competencies splits the comma joined CompetencyID into trimmed tags.
func (n Need) Competencies() []string {
	parts := strings.Split(n.CompetencyID, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (n Need) Validate() map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(n.CourseName) == "" {
		errs["courseName"] = "Course/activity name is required"
	}
	if strings.TrimSpace(n.CompetencyID) == "" {
		errs["competencyId"] = "Competency ID is required"
	}
	return errs
}
