package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/khoahotran/cpd-tracker/internal/application/service"
	"github.com/khoahotran/cpd-tracker/internal/application/usecase/workspace"
	"github.com/khoahotran/cpd-tracker/internal/domain/activity"
	"github.com/khoahotran/cpd-tracker/internal/domain/career"
	"github.com/khoahotran/cpd-tracker/internal/domain/competency"
	"github.com/khoahotran/cpd-tracker/internal/domain/compliance"
	"github.com/khoahotran/cpd-tracker/internal/domain/ids"
	"github.com/khoahotran/cpd-tracker/pkg/apperror"
	"github.com/khoahotran/cpd-tracker/pkg/llmjson"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

var tracer = otel.Tracer("chat_usecase")

const notSpecified = "Not specified"

// ChatUseCase runs the free-text assistant and the prompts behind the
// planning and reflection helpers.
type ChatUseCase struct {
	llm      service.LLMService
	ws       *workspace.Workspace
	taxonomy *competency.Taxonomy
	req      compliance.Requirements
	logger   logger.Logger
}

func NewChatUseCase(
	llm service.LLMService,
	ws *workspace.Workspace,
	tax *competency.Taxonomy,
	req compliance.Requirements,
	log logger.Logger,
) *ChatUseCase {
	return &ChatUseCase{
		llm:      llm,
		ws:       ws,
		taxonomy: tax,
		req:      req,
		logger:   log,
	}
}

type ChatInput struct {
	Message string
}

type ChatOutput struct {
	Response string `json:"response"`
}

func (uc *ChatUseCase) Execute(ctx context.Context, input ChatInput) (*ChatOutput, error) {
	msg := strings.TrimSpace(input.Message)
	if msg == "" {
		return nil, apperror.NewInvalidInput("Message is required", nil)
	}
	resp, err := uc.generate(ctx, "Execute", msg)
	if err != nil {
		return nil, err
	}
	return &ChatOutput{Response: resp}, nil
}

func (uc *ChatUseCase) generate(ctx context.Context, op, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, op)
	defer span.End()

	if uc.llm == nil {
		return "", apperror.NewExternalService("language model is not configured", nil)
	}
	l := uc.logger.With(zap.String("operation", op))
	l.Info("Generating response from LLM...")
	resp, err := uc.llm.GenerateChatResponse(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		l.Error("LLM call failed", err)
		return "", apperror.NewExternalService("failed to generate LLM response", err)
	}
	l.Info("LLM response generated", zap.Int("chars", len(resp)))
	return strings.TrimSpace(resp), nil
}

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return notSpecified
	}
	return strings.TrimSpace(s)
}

// ExecuteSuggestForCourse proposes framework competencies for a course.
// Names the model invents are dropped.
func (uc *ChatUseCase) ExecuteSuggestForCourse(ctx context.Context, courseName string) ([]string, error) {
	if strings.TrimSpace(courseName) == "" {
		return nil, apperror.NewInvalidInput("courseName is required", nil)
	}
	prompt := fmt.Sprintf(`Based on this learning activity: %q, suggest 3-5 relevant professional competencies from this list that would be developed:

%s

Respond with ONLY a JSON array of competency names, no explanation. Example: ["Analytical thinking", "Leadership skills", "Communication skills"]`,
		strings.TrimSpace(courseName), strings.Join(uc.taxonomy.Sorted(), ", "))
	return uc.suggest(ctx, "ExecuteSuggestForCourse", prompt)
}

// ExecuteSuggestForRole proposes the competencies expected in the career
// profile's role.
func (uc *ChatUseCase) ExecuteSuggestForRole(ctx context.Context, p career.Profile) ([]string, error) {
	prompt := fmt.Sprintf(`You are a professional competency expert. Based on the following career information, suggest 5-8 key competencies from the competency framework that would typically be expected for this role.

Career Information:
- Current Position/Role: %s
- Years in Role: %s
- Career Path/Aspirations: %s

Choose only from this list:
%s

Respond with ONLY a JSON array of competency names, no explanation.`,
		orNotSpecified(p.CurrentPosition), orNotSpecified(string(p.YearsInRole)), orNotSpecified(p.CareerPath),
		strings.Join(uc.taxonomy.Sorted(), ", "))
	return uc.suggest(ctx, "ExecuteSuggestForRole", prompt)
}

func (uc *ChatUseCase) suggest(ctx context.Context, op, prompt string) ([]string, error) {
	resp, err := uc.generate(ctx, op, prompt)
	if err != nil {
		return nil, err
	}
	names, ok := llmjson.DecodeStrings(resp)
	if !ok {
		uc.logger.Warn("LLM reply carried no competency list", zap.String("operation", op))
		return nil, apperror.NewExternalService("the language model did not return a competency list", nil)
	}
	return uc.taxonomy.Filter(names), nil
}

type NeedInput struct {
	CourseName   string
	CompetencyID string
	NeedPrompt   string
}

// ExecuteEnhanceNeed rewrites a learning need's motivation text.
func (uc *ChatUseCase) ExecuteEnhanceNeed(ctx context.Context, in NeedInput) (string, error) {
	if strings.TrimSpace(in.NeedPrompt) == "" {
		return "", apperror.NewInvalidInput("needPrompt is required", nil)
	}
	prompt := fmt.Sprintf(`You are assisting a professional with their CPD (Continuing Professional Development) planning. They have identified a learning need and provided a brief description of what prompted it.

Course/Activity: %s
Competencies targeted: %s
Current description: %q

Please enhance this description by:
1. Making it more professional and clear
2. Highlighting the specific business/professional context that created this need
3. Explaining how this relates to their competency development
4. Keeping it concise (2-4 sentences)

Respond with ONLY the enhanced text, no explanations or labels.`,
		orNotSpecified(in.CourseName), orNotSpecified(in.CompetencyID), strings.TrimSpace(in.NeedPrompt))
	return uc.generate(ctx, "ExecuteEnhanceNeed", prompt)
}

func (uc *ChatUseCase) completed(ctx context.Context, id ids.ID) (activity.Completed, error) {
	d, err := uc.ws.Snapshot(ctx)
	if err != nil {
		return activity.Completed{}, err
	}
	for _, c := range d.CompletedActivities {
		if c.ID == id {
			return c, nil
		}
	}
	return activity.Completed{}, apperror.NewNotFound("completed activity", id.String())
}

// ExecuteDraftReflection drafts reflection text for a completed activity,
// starting from whatever the member already wrote.
func (uc *ChatUseCase) ExecuteDraftReflection(ctx context.Context, id ids.ID, current string) (string, error) {
	c, err := uc.completed(ctx, id)
	if err != nil {
		return "", err
	}
	seed := strings.TrimSpace(current)
	if seed == "" {
		seed = c.Reflection
	}
	if strings.TrimSpace(seed) == "" {
		seed = c.Outcome
	}
	prompt := fmt.Sprintf(`You are assisting a professional with their CPD reflection. Generate a professional reflection for this learning activity:

Completed Activity: %s
Competency Area: %s
Current Reflection: %s

Create a thoughtful reflection (3-4 sentences) that covers:
1. What was learned and how it applies to professional practice
2. How this learning enhances competency in the specific area
3. Future application of this knowledge
4. Alignment with professional development requirements

Respond with ONLY the reflection text, no labels or explanations.`,
		orNotSpecified(c.Name()), orNotSpecified(c.Area()), orNotSpecified(seed))
	return uc.generate(ctx, "ExecuteDraftReflection", prompt)
}

// ExecuteSummarize writes a learning-outcome summary for one activity.
func (uc *ChatUseCase) ExecuteSummarize(ctx context.Context, id ids.ID) (string, error) {
	c, err := uc.completed(ctx, id)
	if err != nil {
		return "", err
	}
	prompt := fmt.Sprintf(`You are a CPD compliance expert. Generate a professional, concise learning outcome summary for this CPD activity:

Activity: %s
Type: %s
Provider: %s
Hours: %s
Description: %s

Provide:
1. A clear learning outcome statement (2-3 sentences) explaining what was learned and how it applies to professional practice
2. Key competencies developed
3. Suggested reflection points for compliance

Format as a professional summary suitable for regulatory review.`,
		orNotSpecified(c.Name()), c.ActivityType.Label(), orNotSpecified(c.Provider),
		orNotSpecified(string(c.CPDHours)), orNotSpecified(c.Description))
	return uc.generate(ctx, "ExecuteSummarize", prompt)
}

// ExecuteComplianceReview asks for an audit-style review of the completed
// activities against the configured requirements.
func (uc *ChatUseCase) ExecuteComplianceReview(ctx context.Context) (string, error) {
	d, err := uc.ws.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	acts, err := json.MarshalIndent(d.CompletedActivities, "", "  ")
	if err != nil {
		return "", apperror.NewInternal("failed to encode activities", err)
	}
	snap := compliance.Calculate(d.CompletedActivities, uc.req)
	prompt := fmt.Sprintf(`You are a CPD compliance auditor. Analyze these CPD activities:

%s

The requirement is %.1f total hours, of which %.1f verifiable and %.1f ethics. Calculated so far: %.1f total, %.1f verifiable, %.1f ethics.

Provide:
1. Compliance status
2. Activity type breakdown assessment
3. Risk areas or non-compliant activities
4. Recommendations for improvement
5. Readiness for audit

Format as a compliance audit report.`,
		acts, uc.req.TotalHours, uc.req.VerifiableHours, uc.req.EthicsHours,
		snap.Total.Hours, snap.Verifiable.Hours, snap.Ethics.Hours)
	return uc.generate(ctx, "ExecuteComplianceReview", prompt)
}
