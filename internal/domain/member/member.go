package member

import (
	"regexp"
	"strings"
)

// Profile is the member's identity as printed on reports and exports.
// Saving replaces the previous value; no history is kept.
type Profile struct {
	FirstName          string `json:"firstName"`
	Surname            string `json:"surname"`
	Email              string `json:"email,omitempty"`
	Phone              string `json:"phone,omitempty"`
	MembershipNumber   string `json:"membershipNumber"`
	RegistrationNumber string `json:"registrationNumber,omitempty"`
	FirmName           string `json:"firmName,omitempty"`
}

var membershipPattern = regexp.MustCompile(`^[A-Za-z0-9]{6,12}$`)

func (p Profile) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.Surname))
}

func (p Profile) IsEmpty() bool {
	return p == Profile{}
}

// Validate returns one message per failing field.
func (p Profile) Validate() map[string]string {
	errs := make(map[string]string)

	name := p.FullName()
	switch {
	case name == "":
		errs["firstName"] = "Full name is required"
	case len([]rune(name)) < 2:
		errs["firstName"] = "Name must be at least 2 characters"
	case len([]rune(name)) > 100:
		errs["firstName"] = "Name must be less than 100 characters"
	}

	number := strings.TrimSpace(p.MembershipNumber)
	if number == "" {
		errs["membershipNumber"] = "Membership number is required"
	} else if !membershipPattern.MatchString(number) {
		errs["membershipNumber"] = "Please enter a valid membership number (6-12 alphanumeric characters)"
	}

	return errs
}
