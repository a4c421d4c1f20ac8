package report

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/cpd-tracker/internal/domain/activity"
	"github.com/khoahotran/cpd-tracker/internal/domain/career"
	"github.com/khoahotran/cpd-tracker/internal/domain/competency"
	"github.com/khoahotran/cpd-tracker/internal/domain/member"
	"github.com/khoahotran/cpd-tracker/internal/domain/tracker"
)

// fixedWidth makes every rune 0.2mm per point of font size.
type fixedWidth struct{}

func (fixedWidth) Width(s string, f Font) float64 {
	return float64(utf8.RuneCountInString(s)) * f.Size * 0.2
}

var reportNow = time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)

func testOptions() Options {
	return Options{Now: reportNow, Taxonomy: competency.Default(), Measurer: fixedWidth{}}
}

type placed struct {
	page int
	op   Op
}

func textOps(doc *Document) []placed {
	var out []placed
	for i, p := range doc.Pages {
		for _, op := range p.Ops {
			if op.Kind == OpText {
				out = append(out, placed{page: i, op: op})
			}
		}
	}
	return out
}

func allText(doc *Document) string {
	var sb strings.Builder
	for _, p := range textOps(doc) {
		sb.WriteString(p.op.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func assertWithinMargins(t *testing.T, doc *Document) {
	t.Helper()
	for i, p := range doc.Pages {
		for _, op := range p.Ops {
			assert.GreaterOrEqual(t, op.Y, Margin-epsilon, "page %d op %q above top margin", i, op.Text)
			bottom := op.Y + op.H
			if op.Kind == OpRule {
				bottom = op.Y
			}
			assert.LessOrEqual(t, bottom, PageHeight-Margin+epsilon, "page %d op %q below bottom margin", i, op.Text)
			if op.Kind == OpText && op.Align == AlignLeft {
				assert.LessOrEqual(t, op.X+op.W, PageWidth-Margin+epsilon, "page %d op %q past right margin", i, op.Text)
			}
		}
	}
}

func TestLayoutEmptyDataUsesPlaceholders(t *testing.T) {
	doc := Layout(tracker.Data{}, testOptions())

	require.GreaterOrEqual(t, len(doc.Pages), 2)
	text := allText(doc)
	for _, want := range []string{
		"Member: [Member Name]",
		"Membership #: [Membership Number]",
		"Report Date: 17 October 2026",
		"PHASE ONE: THE PLANNING PHASE",
		"[Not entered]",
		"[No competencies selected]",
		"[No learning needs identified]",
		"PHASE TWO: THE ACTION PHASE",
		"[No planned activities]",
		"[No completed activities]",
		"PHASE THREE: REFLECTION & FUTURE LEARNING",
		"[No reflections recorded yet]",
	} {
		assert.Contains(t, text, want)
	}
	assertWithinMargins(t, doc)

	// The cover stands alone.
	for _, p := range textOps(doc) {
		if p.op.Text == "PHASE ONE: THE PLANNING PHASE" {
			assert.Equal(t, 1, p.page)
		}
	}
}

func TestRenderEmptyDataProducesPDF(t *testing.T) {
	out, err := RenderBytes(tracker.Data{}, Options{Now: reportNow})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	again, err := RenderBytes(tracker.Data{}, Options{Now: reportNow})
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestItemsAreNotSplitAcrossPages(t *testing.T) {
	var data tracker.Data
	for i := 0; i < 40; i++ {
		data.PlannedActivities = append(data.PlannedActivities, activity.Planned{
			CourseName:     fmt.Sprintf("Course %02d", i),
			CompetencyName: "Analytical thinking",
			ActivityType:   activity.TypeFormal,
			CPDHours:       "2",
			PlannedDate:    "2026-11-01",
			Status:         activity.StatusPlanned,
			Notes:          strings.Repeat("prepare notes ", 20),
		})
	}
	doc := Layout(data, testOptions())
	assertWithinMargins(t, doc)

	ops := textOps(doc)
	for i := 0; i < 40; i++ {
		title := fmt.Sprintf("%d. Course %02d", i+1, i)
		start := -1
		for j, p := range ops {
			if p.op.Text == title {
				start = j
				break
			}
		}
		require.NotEqual(t, -1, start, title)

		// Every line up to the item's notes lives on the title's page.
		for j := start + 1; j < len(ops) && !strings.HasPrefix(ops[j].op.Text, fmt.Sprintf("%d. ", i+2)); j++ {
			if strings.HasPrefix(ops[j].op.Text, "Completed CPD") {
				break
			}
			assert.Equal(t, ops[start].page, ops[j].page, "item %d split at %q", i+1, ops[j].op.Text)
		}
	}
	assert.Greater(t, len(doc.Pages), 3)
}

func TestLongReflectionFlowsBetweenLines(t *testing.T) {
	var words []string
	for i := 0; i < 1500; i++ {
		words = append(words, fmt.Sprintf("w%d", i))
	}
	reflection := strings.Join(words, " ")
	data := tracker.Data{CompletedActivities: []activity.Completed{{
		ID: "1", Date: "2026-05-01", Activity: "Deep dive", ActivityType: activity.TypeReading,
		Outcome: "Understood the topic well", CPDHours: "3", Reflection: reflection,
	}}}

	doc := Layout(data, testOptions())
	assertWithinMargins(t, doc)

	var got []string
	pages := map[int]bool{}
	for _, p := range textOps(doc) {
		if p.op.Font == detailFont && strings.HasPrefix(p.op.Text, "w") {
			got = append(got, p.op.Text)
			pages[p.page] = true
		}
	}
	assert.Equal(t, reflection, strings.Join(got, " "))
	assert.GreaterOrEqual(t, len(pages), 2)
}

func TestWrapSplitsLongWords(t *testing.T) {
	lines := wrap(fixedWidth{}, strings.Repeat("x", 250), ContentWidth, bodyFont)
	require.Len(t, lines, 3)
	assert.Equal(t, 95, len(lines[0]))
	assert.Equal(t, strings.Repeat("x", 250), strings.Join(lines, ""))

	lines = wrap(fixedWidth{}, "first\n\nthird", ContentWidth, bodyFont)
	assert.Equal(t, []string{"first", "", "third"}, lines)
}

func TestStatusColor(t *testing.T) {
	assert.Equal(t, Color{0, 128, 0}, StatusColor(activity.StatusCompleted))
	assert.Equal(t, Color{255, 165, 0}, StatusColor(activity.StatusInProgress))
	assert.Equal(t, Color{255, 0, 0}, StatusColor(activity.StatusCancelled))
	assert.Equal(t, Color{0, 0, 255}, StatusColor(activity.StatusPlanned))
	assert.Equal(t, Color{0, 0, 255}, StatusColor("weird"))

	doc := Layout(tracker.Data{PlannedActivities: []activity.Planned{
		{CourseName: "A", Status: activity.StatusCancelled},
	}}, testOptions())
	for _, p := range textOps(doc) {
		if p.op.Text == "Cancelled" {
			assert.Equal(t, Color{255, 0, 0}, p.op.Color)
			return
		}
	}
	t.Fatal("status label not rendered")
}

func TestCompetencyDefinitionsAndHours(t *testing.T) {
	data := tracker.Data{
		UserInfo:   member.Profile{FirstName: "Thandi", Surname: "Nkosi", MembershipNumber: "SA12345"},
		CareerData: career.Profile{CompetenciesExpected: []string{"Judgement", "Basket weaving"}},
		PlannedActivities: []activity.Planned{
			{CourseName: "With hours", CPDHours: "3"},
		},
		CompletedActivities: []activity.Completed{
			{Activity: "Bad entry", CPDHours: "abc", Reflection: "Useful"},
		},
	}
	doc := Layout(data, testOptions())
	text := allText(doc)

	assert.Contains(t, text, "Member: Thandi Nkosi")
	assert.Contains(t, text, "• Judgement")
	assert.Contains(t, text, "Making well-reasoned professional assessments")
	assert.Contains(t, text, "• Basket weaving")

	definitions := 0
	for _, p := range textOps(doc) {
		if p.op.Font == detailItalic && p.op.Text != "" {
			definitions++
		}
	}
	assert.Equal(t, 1, definitions)

	assert.Equal(t, 1, strings.Count(text, "CPD Hours: "))
	assert.Contains(t, text, "\n3\n")
	assert.NotContains(t, text, "hours\n")
	assert.NotContains(t, text, "[No reflections recorded yet]")
}
