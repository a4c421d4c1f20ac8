package http

import (
	"github.com/khoahotran/cpd-tracker/internal/application/usecase/activity"
	"github.com/khoahotran/cpd-tracker/internal/application/usecase/learning"
	domain "github.com/khoahotran/cpd-tracker/internal/domain/activity"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LearningNeedRequest struct {
	CourseName   string `json:"courseName"`
	CompetencyID string `json:"competencyId"`
	NeedPrompt   string `json:"needPrompt"`
}

func (r LearningNeedRequest) ToInput() learning.NeedInput {
	return learning.NeedInput{CourseName: r.CourseName, CompetencyID: r.CompetencyID, NeedPrompt: r.NeedPrompt}
}

type PlannedRequest struct {
	CourseName     string               `json:"courseName"`
	CompetencyName string               `json:"competencyName"`
	ActivityType   domain.Type          `json:"activityType"`
	CPDHours       domain.Hours         `json:"cpdHours"`
	PlannedDate    domain.Date          `json:"plannedDate"`
	Status         domain.Status        `json:"status"`
	Certification  domain.Certification `json:"certification"`
	IsVerifiable   bool                 `json:"isVerifiable"`
	IsEthics       bool                 `json:"isEthics"`
	Notes          string               `json:"notes"`
}

func (r PlannedRequest) ToInput() activity.PlannedInput {
	return activity.PlannedInput(r)
}

type CompletedRequest struct {
	Date            domain.Date  `json:"date"`
	Activity        string       `json:"activity"`
	ActivityType    domain.Type  `json:"activityType"`
	DevelopmentArea string       `json:"developmentArea"`
	Outcome         string       `json:"outcome"`
	Provider        string       `json:"provider"`
	Description     string       `json:"description"`
	CPDHours        domain.Hours `json:"cpdHours"`
	IsVerifiable    bool         `json:"isVerifiable"`
	IsEthics        bool         `json:"isEthics"`
}

func (r CompletedRequest) ToInput() activity.CompletedInput {
	return activity.CompletedInput(r)
}

type ReflectionRequest struct {
	Reflection     string `json:"reflection"`
	FutureLearning string `json:"futureLearning"`
}

type AnalyzeDocumentRequest struct {
	FileContentBase64 string `json:"fileContentBase64"`
	FileName          string `json:"fileName"`
	MimeType          string `json:"mimeType"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type SuggestRequest struct {
	CourseName string `json:"courseName"`
}

type EnhanceNeedRequest struct {
	CourseName   string `json:"courseName"`
	CompetencyID string `json:"competencyId"`
	NeedPrompt   string `json:"needPrompt"`
}

type DraftReflectionRequest struct {
	Current string `json:"current"`
}
