package activity

import (
	"context"
	"errors"
	"strings"
	"time"
)

type Type string

const (
	TypeFormal     Type = "formal"
	TypeInformal   Type = "informal"
	TypeCompulsory Type = "compulsory"
	TypeWebinar    Type = "webinar"
	TypeConference Type = "conference"
	TypeReading    Type = "reading"
	TypeOther      Type = "other"

	// TypeVerifiable never comes from the forms but older records use it.
	TypeVerifiable Type = "verifiable"
)

var AllTypes = []Type{TypeFormal, TypeInformal, TypeCompulsory, TypeWebinar, TypeConference, TypeReading, TypeOther}

func (t Type) IsValid() bool {
	if t == TypeVerifiable {
		return true
	}
	for _, v := range AllTypes {
		if t == v {
			return true
		}
	}
	return false
}

// CountsAsVerifiable covers records created before the isVerifiable flag existed.
func (t Type) CountsAsVerifiable() bool {
	return t == TypeFormal || t == TypeVerifiable
}

var typeLabels = map[Type]string{
	TypeFormal:     "Formal Learning",
	TypeInformal:   "Informal Learning",
	TypeCompulsory: "Compulsory CPD",
	TypeWebinar:    "Webinar",
	TypeConference: "Conference",
	TypeReading:    "Reading",
	TypeOther:      "Other",
	TypeVerifiable: "Verifiable CPD",
}

func (t Type) Label() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	if t == "" {
		return "Not specified"
	}
	return string(t)
}

// ParseType maps free text (for example a model's "Webinar" or "Online
// Course") onto the closed set, falling back to TypeOther.
func ParseType(s string) Type {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	if t := Type(s); t.IsValid() {
		return t
	}
	switch {
	case strings.Contains(s, "webinar"):
		return TypeWebinar
	case strings.Contains(s, "conference"), strings.Contains(s, "seminar"):
		return TypeConference
	case strings.Contains(s, "reading"), strings.Contains(s, "self-study"), strings.Contains(s, "self study"):
		return TypeReading
	case strings.Contains(s, "compulsory"), strings.Contains(s, "mandatory"):
		return TypeCompulsory
	case strings.Contains(s, "formal"), strings.Contains(s, "course"), strings.Contains(s, "workshop"):
		if strings.Contains(s, "informal") {
			return TypeInformal
		}
		return TypeFormal
	}
	return TypeOther
}

type Status string

const (
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "inProgress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) Label() string {
	switch s {
	case StatusPlanned, "":
		return "Planned"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	}
	return string(s)
}

type Certification string

const (
	CertificationYes     Certification = "yes"
	CertificationNo      Certification = "no"
	CertificationUnknown Certification = "unknown"
)

func (c Certification) IsValid() bool {
	switch c {
	case CertificationYes, CertificationNo, CertificationUnknown, "":
		return true
	}
	return false
}

// Date is a calendar day kept as entered (normally YYYY-MM-DD).
type Date string

const dateLayout = "2006-01-02"

func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// Time parses the date; full RFC 3339 timestamps from older records are
// accepted too.
func (d Date) Time() (time.Time, bool) {
	s := strings.TrimSpace(string(d))
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if len(s) >= len(dateLayout) {
		if t, err := time.Parse(dateLayout, s[:len(dateLayout)]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

var (
	ErrPlannedNotFound   = errors.New("planned activity not found")
	ErrCompletedNotFound = errors.New("completed activity not found")
)

// Publisher receives lifecycle notifications after a change is durable.
type Publisher interface {
	PublishActivityEvent(ctx context.Context, payload EventPayload) error
}

type EventType string

const (
	EventPlannedCreated    EventType = "planned.created"
	EventPlannedUpdated    EventType = "planned.updated"
	EventPlannedDeleted    EventType = "planned.deleted"
	EventPlannedPromoted   EventType = "planned.promoted"
	EventCompletedCreated  EventType = "completed.created"
	EventCompletedUpdated  EventType = "completed.updated"
	EventCompletedDeleted  EventType = "completed.deleted"
	EventReflectionUpdated EventType = "completed.reflection_updated"
	EventBackupImported    EventType = "backup.imported"
)

type EventPayload struct {
	EventType  EventType `json:"event_type"`
	ActivityID string    `json:"activity_id,omitempty"`
	Hours      float64   `json:"hours,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
