package activity

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Hours is a CPD hour amount exactly as it was entered. Forms and document
// analysis both produce text, so the raw value is kept and interpreted on
// read: anything that is not a number between 0 and MaxHours counts as zero.
type Hours string

// MaxHours is the largest amount a single entry may claim, one calendar year.
const MaxHours = 8760

var errHoursNotScalar = errors.New("cpdHours must be a number or a string")

func HoursOf(v float64) Hours {
	return Hours(strconv.FormatFloat(v, 'f', -1, 64))
}

// Float returns the parsed value and whether it is a usable amount.
func (h Hours) Float() (float64, bool) {
	s := strings.TrimSpace(string(h))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v < 0 || v > MaxHours {
		return 0, false
	}
	return v, true
}

// Value is Float with the failure case collapsed to zero.
func (h Hours) Value() float64 {
	v, _ := h.Float()
	return v
}

func (h Hours) IsSet() bool {
	return strings.TrimSpace(string(h)) != ""
}

func (h Hours) MarshalJSON() ([]byte, error) {
	if !h.IsSet() {
		return []byte("null"), nil
	}
	if _, ok := h.Float(); ok && isJSONNumber(string(h)) {
		return []byte(h), nil
	}
	return json.Marshal(string(h))
}

// isJSONNumber reports whether s can be written as a bare JSON number and
// read back as the same text.
func isJSONNumber(s string) bool {
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	return json.Valid([]byte(s))
}

func (h *Hours) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*h = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*h = Hours(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return errHoursNotScalar
		}
		*h = Hours(n.String())
	}
	return nil
}
