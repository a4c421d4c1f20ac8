package compliance

import (
	"math"

	"github.com/khoahotran/cpd-tracker/internal/domain/activity"
)

// Requirements are the hours a member must log. One set applies to every
// report, widget and export.
type Requirements struct {
	TotalHours      float64 `json:"totalHours"`
	VerifiableHours float64 `json:"verifiableHours"`
	EthicsHours     float64 `json:"ethicsHours"`
}

func DefaultRequirements() Requirements {
	return Requirements{TotalHours: 20, VerifiableHours: 10, EthicsHours: 2}
}

type Level string

const (
	LevelMet    Level = "met"
	LevelNear   Level = "near"
	LevelBehind Level = "behind"
)

type Metric struct {
	Hours    float64 `json:"hours"`
	Required float64 `json:"required"`
	Percent  float64 `json:"percent"`
	Met      bool    `json:"met"`
	Level    Level   `json:"level"`
}

type Snapshot struct {
	Total         Metric  `json:"total"`
	Verifiable    Metric  `json:"verifiable"`
	Ethics        Metric  `json:"ethics"`
	NonVerifiable float64 `json:"nonVerifiable"`
	Compliant     bool    `json:"compliant"`
	Activities    int     `json:"activities"`

	RawTotal      float64 `json:"-"`
	RawVerifiable float64 `json:"-"`
	RawEthics     float64 `json:"-"`
}

// Calculate aggregates the completed activities against req. Malformed hour
// values count as zero; it never fails.
func Calculate(activities []activity.Completed, req Requirements) Snapshot {
	var total, verifiable, ethics float64
	for _, a := range activities {
		h := a.EffectiveHours()
		total += h
		if a.CountsAsVerifiable() {
			verifiable += h
		}
		if a.CountsAsEthics() {
			ethics += h
		}
	}

	t := Round1(total)
	v := math.Min(Round1(verifiable), t)
	e := Round1(ethics)

	s := Snapshot{
		Total:         metric(t, req.TotalHours),
		Verifiable:    metric(v, req.VerifiableHours),
		Ethics:        metric(e, req.EthicsHours),
		NonVerifiable: math.Max(Round1(t-v), 0),
		Activities:    len(activities),
		RawTotal:      total,
		RawVerifiable: verifiable,
		RawEthics:     ethics,
	}
	s.Compliant = s.Total.Met && s.Verifiable.Met && s.Ethics.Met
	return s
}

func metric(hours, required float64) Metric {
	m := Metric{
		Hours:    hours,
		Required: required,
		Percent:  Percent(hours, required),
		Met:      hours >= required,
	}
	switch {
	case m.Percent >= 100:
		m.Level = LevelMet
	case m.Percent >= 75:
		m.Level = LevelNear
	default:
		m.Level = LevelBehind
	}
	return m
}

// Percent is current/required as a percentage clamped to [0, 100]. A
// non-positive requirement is always fully met.
func Percent(current, required float64) float64 {
	if required <= 0 {
		return 100
	}
	p := current / required * 100
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	return math.Min(p, 100)
}

// Round1 rounds half-up to one decimal place. The small bias absorbs binary
// representation error so 0.25 style values round up.
func Round1(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return math.Floor(x*10+0.5+1e-9) / 10
}

// InYear keeps the activities dated in year. Undated records are dropped.
func InYear(activities []activity.Completed, year int) []activity.Completed {
	var out []activity.Completed
	for _, a := range activities {
		if d, ok := a.Date.Time(); ok && d.Year() == year {
			out = append(out, a)
		}
	}
	return out
}
