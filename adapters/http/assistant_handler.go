package http

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	chatUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/chat"
	insightUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/insight"
	"github.com/khoahotran/cpd-tracker/internal/domain/career"
	"github.com/khoahotran/cpd-tracker/pkg/apperror"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

// AssistantHandler exposes document analysis and the chat-model assists.
type AssistantHandler struct {
	insightUseCase *insightUC.InsightUseCase
	chatUseCase    *chatUC.ChatUseCase
	metrics        *Metrics
	logger         logger.Logger
	now            func() time.Time
}

func NewAssistantHandler(insight *insightUC.InsightUseCase, chat *chatUC.ChatUseCase, metrics *Metrics, log logger.Logger) *AssistantHandler {
	return &AssistantHandler{
		insightUseCase: insight,
		chatUseCase:    chat,
		metrics:        metrics,
		logger:         log,
		now:            time.Now,
	}
}

// decodeContent accepts plain base64 or a data URL.
func decodeContent(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ",")
		if i < 0 {
			return nil, errors.New("data URL has no payload")
		}
		s = s[i+1:]
	}
	return base64.StdEncoding.DecodeString(s)
}

// AnalyzeDocument runs the vision model over an uploaded certificate or
// agenda. With ?draft=true the reply also carries a completed-activity draft.
func (h *AssistantHandler) AnalyzeDocument(c *gin.Context) {
	var req AnalyzeDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body", err))
		return
	}
	if _, err := insightUC.CanonicalMimeType(req.MimeType); err != nil {
		h.metrics.ObserveInsight("error")
		c.Error(err)
		return
	}
	content, err := decodeContent(req.FileContentBase64)
	if err != nil || len(content) == 0 {
		h.metrics.ObserveInsight("error")
		c.Error(apperror.NewInvalidInput("Invalid or empty fileContent", err))
		return
	}

	result, err := h.insightUseCase.ExecuteAnalyze(c.Request.Context(), insightUC.AnalyzeInput{
		FileName: req.FileName,
		MimeType: req.MimeType,
		Content:  content,
	})
	if err != nil {
		h.metrics.ObserveInsight("error")
		c.Error(err)
		return
	}

	outcome := "parsed"
	if result.IsRaw() {
		outcome = "raw"
	}
	h.metrics.ObserveInsight(outcome)
	h.logger.Info("Document analysed", zap.String("file", req.FileName), zap.String("outcome", outcome))

	body := gin.H{"success": true, "data": result}
	if c.Query("draft") == "true" {
		body["draft"] = insightUC.Draft(result, h.now())
	}
	c.JSON(http.StatusOK, body)
}

func (h *AssistantHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body", err))
		return
	}
	out, err := h.chatUseCase.Execute(c.Request.Context(), chatUC.ChatInput{Message: req.Message})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "response": out.Response})
}

func (h *AssistantHandler) SuggestForCourse(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body", err))
		return
	}
	list, err := h.chatUseCase.ExecuteSuggestForCourse(c.Request.Context(), req.CourseName)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "competencies": list})
}

func (h *AssistantHandler) SuggestForRole(c *gin.Context) {
	var req career.Profile
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body", err))
		return
	}
	list, err := h.chatUseCase.ExecuteSuggestForRole(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "competencies": list})
}

func (h *AssistantHandler) EnhanceNeed(c *gin.Context) {
	var req EnhanceNeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body", err))
		return
	}
	text, err := h.chatUseCase.ExecuteEnhanceNeed(c.Request.Context(), chatUC.NeedInput(req))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "needPrompt": text})
}

func (h *AssistantHandler) DraftReflection(c *gin.Context) {
	var req DraftReflectionRequest
	// An empty body is fine; the stored reflection or outcome seeds the draft.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperror.NewInvalidInput("invalid JSON body", err))
			return
		}
	}
	text, err := h.chatUseCase.ExecuteDraftReflection(c.Request.Context(), idParam(c), req.Current)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reflection": text})
}

func (h *AssistantHandler) Summarize(c *gin.Context) {
	text, err := h.chatUseCase.ExecuteSummarize(c.Request.Context(), idParam(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "summary": text})
}

func (h *AssistantHandler) ComplianceReview(c *gin.Context) {
	text, err := h.chatUseCase.ExecuteComplianceReview(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "response": text})
}
