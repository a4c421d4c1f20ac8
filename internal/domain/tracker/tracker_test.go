package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/cpd-tracker/internal/domain/activity"
	"github.com/khoahotran/cpd-tracker/internal/domain/career"
)

func TestCloneDoesNotShare(t *testing.T) {
	d := Data{
		CareerData: career.Profile{CompetenciesExpected: []string{"Judgement"}},
		CompletedActivities: []activity.Completed{
			{ID: "1", Attachments: []activity.Attachment{{Name: "a.pdf"}}},
		},
	}
	c := d.Clone()
	c.CareerData.CompetenciesExpected[0] = "changed"
	c.CompletedActivities[0].Attachments[0].Name = "changed"
	c.CompletedActivities[0].Activity = "changed"

	assert.Equal(t, "Judgement", d.CareerData.CompetenciesExpected[0])
	assert.Equal(t, "a.pdf", d.CompletedActivities[0].Attachments[0].Name)
	assert.Empty(t, d.CompletedActivities[0].Activity)
}

func TestEncodeDecodeBuckets(t *testing.T) {
	d := Data{PlannedActivities: []activity.Planned{{ID: "p1", CourseName: "Audit", CPDHours: "2.5"}}}

	raw, err := d.Encode(BucketLearningNeeds)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))

	raw, err = d.Encode(BucketPlannedActivities)
	require.NoError(t, err)

	var back Data
	require.NoError(t, back.Decode(BucketPlannedActivities, raw))
	assert.Equal(t, d.PlannedActivities, back.PlannedActivities)

	_, err = d.Encode("nope")
	assert.Error(t, err)
}
