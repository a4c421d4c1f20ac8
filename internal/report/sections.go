package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/khoahotran/cpd-tracker/internal/domain/activity"
	"github.com/khoahotran/cpd-tracker/internal/domain/career"
	"github.com/khoahotran/cpd-tracker/internal/domain/competency"
	"github.com/khoahotran/cpd-tracker/internal/domain/learning"
	"github.com/khoahotran/cpd-tracker/internal/domain/member"
	"github.com/khoahotran/cpd-tracker/internal/domain/tracker"
)

const (
	notEntered       = "[Not entered]"
	noCompetencies   = "[No competencies selected]"
	noLearningNeeds  = "[No learning needs identified]"
	noPlanned        = "[No planned activities]"
	noCompleted      = "[No completed activities]"
	noReflections    = "[No reflections recorded yet]"
	placeholderName  = "[Member Name]"
	placeholderNo    = "[Membership Number]"
	placeholderTitle = "[Activity Name]"
	bullet           = "•"
)

var (
	titleFont    = Font{Bold, 26}
	subtitleFont = Font{Regular, 16}
	coverFont    = Font{Regular, 12}
	phaseFont    = Font{Bold, 18}
	headingFont  = Font{Bold, 13}
	itemFont     = Font{Bold, 11}
	subFont      = Font{BoldItalic, 11}
	bodyFont     = Font{Regular, 10}
	boldBody     = Font{Bold, 10}
	detailFont   = Font{Regular, 9}
	detailBold   = Font{Bold, 9}
	detailItalic = Font{Italic, 9}
	noteFont     = Font{Italic, 8}
)

// StatusColor is the colour a status label is printed in.
func StatusColor(s activity.Status) Color {
	switch s {
	case activity.StatusCompleted:
		return Color{0, 128, 0}
	case activity.StatusInProgress:
		return Color{255, 165, 0}
	case activity.StatusCancelled:
		return Color{255, 0, 0}
	}
	return Color{0, 0, 255}
}

type composer struct {
	m   Measurer
	tax *competency.Taxonomy
	now time.Time
	out []block
}

func (c *composer) add(b *builder) {
	c.out = append(c.out, b.done())
}

func (c *composer) nb() *builder { return newBuilder(c.m) }

func (c *composer) cover(p member.Profile) {
	name := p.FullName()
	if name == "" {
		name = placeholderName
	}
	number := strings.TrimSpace(p.MembershipNumber)
	if number == "" {
		number = placeholderNo
	}
	b := c.nb().gap(35).
		centered(titleFont, Navy, "CPD Tracker").
		gap(10).
		centered(subtitleFont, Grey, "Continuing Professional Development Report").
		gap(20).
		centered(coverFont, Black, "Member: "+name).gap(3).
		centered(coverFont, Black, "Membership #: "+number).gap(3)
	if firm := strings.TrimSpace(p.FirmName); firm != "" {
		b.centered(coverFont, Black, "Firm: "+firm).gap(3)
	}
	b.centered(coverFont, Black, "Report Date: "+c.now.Format("2 January 2006")).gap(3).
		centered(coverFont, Black, "Year: "+strconv.Itoa(c.now.Year()))
	c.add(b)
}

func (c *composer) phase(title string) {
	c.add(c.nb().breakBefore().keepWithNext().
		text(0, phaseFont, Navy, title).
		gap(2).rule(Navy, 2).gap(4))
}

func (c *composer) heading(title string) {
	c.add(c.nb().keepWithNext().gap(3).text(0, headingFont, Black, title).gap(1))
}

func (c *composer) placeholder(s string) {
	c.add(c.nb().text(2, bodyFont, Black, s).gap(2))
}

func orNotEntered(s string) string {
	if strings.TrimSpace(s) == "" {
		return notEntered
	}
	return s
}

func (c *composer) planning(cp career.Profile, needs []learning.Need) {
	c.phase("PHASE ONE: THE PLANNING PHASE")

	c.heading("Career Path & Industry Focus")
	c.add(c.nb().text(0, bodyFont, Black, orNotEntered(cp.CareerPath)).gap(2))

	c.heading("Current Position")
	c.add(c.nb().
		labelled(0, bodyFont, "Title/Role: ", bodyFont, Black, orNotEntered(cp.CurrentPosition)).gap(1).
		labelled(0, bodyFont, "Years in Role: ", bodyFont, Black, orNotEntered(string(cp.YearsInRole))).gap(2))

	c.heading("Career Goals")
	c.add(c.nb().
		text(0, subFont, Black, "Short-term (Next 12 months):").
		text(5, bodyFont, Black, orNotEntered(cp.ShortTermGoals)).gap(2))
	c.add(c.nb().
		text(0, subFont, Black, "Long-term (Beyond 12 months):").
		text(5, bodyFont, Black, orNotEntered(cp.LongTermGoals)).gap(2))

	c.heading("Competencies Expected in This Role")
	tags := cp.Competencies()
	if len(tags) == 0 {
		c.placeholder(noCompetencies)
	}
	for _, tag := range tags {
		b := c.nb().text(2, boldBody, Black, bullet+" "+tag)
		if def, ok := c.tax.Definition(tag); ok {
			b.text(6, detailItalic, Black, def)
		}
		c.add(b.gap(2))
	}

	c.heading("Competency Development Needs")
	if len(needs) == 0 {
		c.placeholder(noLearningNeeds)
	}
	for i, n := range needs {
		name := strings.TrimSpace(n.CourseName)
		if name == "" {
			name = "[Course/Activity]"
		}
		b := c.nb().text(2, boldBody, Black, fmt.Sprintf("%d. %s", i+1, name))
		if tags := n.Competencies(); len(tags) > 0 {
			b.labelled(5, detailFont, "Competencies: ", detailFont, Black, strings.Join(tags, ", "))
		}
		if prompt := strings.TrimSpace(n.NeedPrompt); prompt != "" {
			b.labelled(5, detailItalic, "Prompted by: ", detailItalic, Black, prompt)
		}
		c.add(b.gap(4))
	}
}

func formatDate(d activity.Date) string {
	if t, ok := d.Time(); ok {
		return t.Format("2006/01/02")
	}
	return strings.TrimSpace(string(d))
}

func formatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (c *composer) action(planned []activity.Planned, completed []activity.Completed) {
	c.phase("PHASE TWO: THE ACTION PHASE")

	c.heading("Planned CPD Activities")
	if len(planned) == 0 {
		c.placeholder(noPlanned)
	}
	for i, p := range planned {
		name := strings.TrimSpace(p.CourseName)
		if name == "" {
			name = placeholderTitle
		}
		b := c.nb().text(2, itemFont, Black, fmt.Sprintf("%d. %s", i+1, name)).gap(1)
		if comp := strings.TrimSpace(p.CompetencyName); comp != "" {
			b.labelled(5, detailFont, "Competency: ", detailFont, Black, comp)
		}
		b.labelled(5, detailFont, "Type: ", detailFont, Black, p.ActivityType.Label())
		if h, ok := p.CPDHours.Float(); ok {
			b.labelled(5, detailFont, "CPD Hours: ", detailFont, Black, formatHours(h))
		}
		if d := formatDate(p.PlannedDate); d != "" {
			b.labelled(5, detailFont, "Planned Date: ", detailFont, Black, d)
		}
		b.labelled(5, detailBold, "Status: ", detailFont, StatusColor(p.Status), p.Status.Label())
		if p.Certification == activity.CertificationYes {
			b.text(5, detailItalic, Black, "Certification obtained/expected")
		}
		if notes := strings.TrimSpace(p.Notes); notes != "" {
			b.labelled(5, noteFont, "Notes: ", noteFont, Black, notes)
		}
		c.add(b.gap(4))
	}

	c.heading("Completed CPD Activities")
	if len(completed) == 0 {
		c.placeholder(noCompleted)
	}
	for i, a := range completed {
		b := c.nb().text(2, itemFont, Black, fmt.Sprintf("%d. %s", i+1, completedName(a))).gap(1)
		if area := a.Area(); area != "" {
			b.labelled(5, detailFont, "Competency: ", detailFont, Black, area)
		}
		b.labelled(5, detailFont, "Type: ", detailFont, Black, a.ActivityType.Label())
		if h, ok := a.DisplayHours(); ok {
			b.labelled(5, detailFont, "CPD Hours: ", detailFont, Black, formatHours(h))
		}
		if d := formatDate(a.Date); d != "" {
			b.labelled(5, detailFont, "Completed Date: ", detailFont, Black, d)
		}
		if prov := strings.TrimSpace(a.Provider); prov != "" {
			b.labelled(5, detailFont, "Provider: ", detailFont, Black, prov)
		}
		b.labelled(5, detailBold, "Status: ", detailFont, StatusColor(activity.StatusCompleted), activity.StatusCompleted.Label())
		if outcome := strings.TrimSpace(a.Outcome); outcome != "" {
			b.labelled(5, detailFont, "Outcome: ", detailFont, Black, outcome)
		}
		if n := len(a.Attachments); n > 0 {
			b.labelled(5, detailFont, "Evidence: ", detailFont, Black, fmt.Sprintf("%d file(s)", n))
		}
		if a.Certification == activity.CertificationYes {
			b.text(5, detailItalic, Black, "Certification obtained")
		}
		if notes := strings.TrimSpace(a.Notes); notes != "" {
			b.labelled(5, noteFont, "Notes: ", noteFont, Black, notes)
		}
		c.add(b.gap(4))
	}
}

func completedName(a activity.Completed) string {
	if n := a.Name(); n != "" {
		return n
	}
	return placeholderTitle
}

func (c *composer) reflection(completed []activity.Completed) {
	c.phase("PHASE THREE: REFLECTION & FUTURE LEARNING")

	n := 0
	for _, a := range completed {
		if !a.HasReflection() {
			continue
		}
		n++
		b := c.nb().text(2, itemFont, Black, fmt.Sprintf("%d. %s", n, completedName(a))).gap(1)

		var meta []string
		if area := a.Area(); area != "" {
			meta = append(meta, area)
		}
		if h, ok := a.DisplayHours(); ok {
			meta = append(meta, formatHours(h)+" hours")
		}
		if len(meta) > 0 {
			b.text(5, detailFont, Dim, strings.Join(meta, " "+bullet+" ")).gap(3)
		}

		if r := strings.TrimSpace(a.Reflection); r != "" {
			b.text(5, boldBody, Black, "My Reflection of the Learning Intervention:").gap(1).
				text(7, detailFont, Black, r).gap(3)
		}
		if f := strings.TrimSpace(a.FutureLearning); f != "" {
			b.text(5, boldBody, Black, "Future Learning Related to This Area:").gap(1).
				text(7, detailFont, Black, f).gap(3)
		}
		c.add(b.gap(3))
	}
	if n == 0 {
		c.placeholder(noReflections)
	}
}

func compose(m Measurer, tax *competency.Taxonomy, now time.Time, data tracker.Data) []block {
	c := &composer{m: m, tax: tax, now: now}
	c.cover(data.UserInfo)
	c.planning(data.CareerData, data.LearningNeeds)
	c.action(data.PlannedActivities, data.CompletedActivities)
	c.reflection(data.CompletedActivities)
	return c.out
}
