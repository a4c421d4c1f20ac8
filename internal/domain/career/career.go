package career

import (
	"bytes"
	"encoding/json"
	"strings"
)

type Profile struct {
	CareerPath           string   `json:"careerPath,omitempty"`
	CurrentPosition      string   `json:"currentPosition,omitempty"`
	YearsInRole          FlexText `json:"yearsInRole,omitempty"`
	ShortTermGoals       string   `json:"shortTermGoals,omitempty"`
	LongTermGoals        string   `json:"longTermGoals,omitempty"`
	CompetenciesExpected []string `json:"competenciesExpected,omitempty"`
}

// Competencies returns the expected competency tags without blanks or
// duplicates, in the order they were selected.
func (p Profile) Competencies() []string {
	seen := make(map[string]bool, len(p.CompetenciesExpected))
	out := make([]string, 0, len(p.CompetenciesExpected))
	for _, c := range p.CompetenciesExpected {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// FlexText accepts either a JSON string or a number. Form inputs stored
// "yearsInRole" as text while hand-edited backups use numbers.
type FlexText string

func (f *FlexText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexText(n.String())
	return nil
}
