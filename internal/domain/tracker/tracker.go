package tracker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/khoahotran/cpd-tracker/internal/domain/activity"
	"github.com/khoahotran/cpd-tracker/internal/domain/career"
	"github.com/khoahotran/cpd-tracker/internal/domain/learning"
	"github.com/khoahotran/cpd-tracker/internal/domain/member"
)

type Bucket string

const (
	BucketUserInfo            Bucket = "cpdUserInfo"
	BucketCareerData          Bucket = "cpdCareerData"
	BucketLearningNeeds       Bucket = "cpdLearningNeeds"
	BucketPlannedActivities   Bucket = "cpdPlannedActivities"
	BucketCompletedActivities Bucket = "cpdCompletedActivities"
)

var AllBuckets = []Bucket{
	BucketUserInfo,
	BucketCareerData,
	BucketLearningNeeds,
	BucketPlannedActivities,
	BucketCompletedActivities,
}

// Data is everything the tracker persists, one field per bucket.
type Data struct {
	UserInfo            member.Profile       `json:"userInfo"`
	CareerData          career.Profile       `json:"careerData"`
	LearningNeeds       []learning.Need      `json:"learningNeeds"`
	PlannedActivities   []activity.Planned   `json:"plannedActivities"`
	CompletedActivities []activity.Completed `json:"completedActivities"`
}

var ErrBucketNotFound = errors.New("bucket not found")

// Store is a key-value store of raw bucket documents. Get returns
// ErrBucketNotFound for a bucket that was never written.
type Store interface {
	Get(ctx context.Context, bucket Bucket) ([]byte, error)
	Put(ctx context.Context, bucket Bucket, value []byte) error
	Delete(ctx context.Context, bucket Bucket) error
	Close() error
}

// Repository loads and saves the typed collections.
type Repository interface {
	Load(ctx context.Context) (Data, error)
	Save(ctx context.Context, data Data, buckets ...Bucket) error
	Usage(ctx context.Context) (map[Bucket]int, error)
	Clear(ctx context.Context) error
}

// Clone copies every collection so callers never share slices with the
// live state.
func (d Data) Clone() Data {
	out := d
	out.CareerData.CompetenciesExpected = cloneSlice(d.CareerData.CompetenciesExpected)
	out.LearningNeeds = cloneSlice(d.LearningNeeds)
	out.PlannedActivities = cloneSlice(d.PlannedActivities)
	out.CompletedActivities = cloneSlice(d.CompletedActivities)
	for i := range out.CompletedActivities {
		out.CompletedActivities[i].Attachments = cloneSlice(out.CompletedActivities[i].Attachments)
	}
	return out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// Encode serialises the value stored under b.
func (d Data) Encode(b Bucket) ([]byte, error) {
	switch b {
	case BucketUserInfo:
		return json.Marshal(d.UserInfo)
	case BucketCareerData:
		return json.Marshal(d.CareerData)
	case BucketLearningNeeds:
		return json.Marshal(nonNil(d.LearningNeeds))
	case BucketPlannedActivities:
		return json.Marshal(nonNil(d.PlannedActivities))
	case BucketCompletedActivities:
		return json.Marshal(nonNil(d.CompletedActivities))
	}
	return nil, errors.New("unknown bucket " + string(b))
}

// Decode fills the field for b from raw.
func (d *Data) Decode(b Bucket, raw []byte) error {
	switch b {
	case BucketUserInfo:
		return json.Unmarshal(raw, &d.UserInfo)
	case BucketCareerData:
		return json.Unmarshal(raw, &d.CareerData)
	case BucketLearningNeeds:
		return json.Unmarshal(raw, &d.LearningNeeds)
	case BucketPlannedActivities:
		return json.Unmarshal(raw, &d.PlannedActivities)
	case BucketCompletedActivities:
		return json.Unmarshal(raw, &d.CompletedActivities)
	}
	return errors.New("unknown bucket " + string(b))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
