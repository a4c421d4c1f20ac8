package http

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	activityUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/activity"
	"github.com/khoahotran/cpd-tracker/internal/domain/ids"
	"github.com/khoahotran/cpd-tracker/pkg/apperror"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

// maxEvidenceForm bounds the multipart body; the batch limit itself is
// enforced by the use case.
const maxEvidenceForm = 64 << 20

type ActivityHandler struct {
	activityUseCase *activityUC.ActivityUseCase
	logger          logger.Logger
}

func NewActivityHandler(uc *activityUC.ActivityUseCase, log logger.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityUseCase: uc,
		logger:          log,
	}
}

func idParam(c *gin.Context) ids.ID {
	return ids.ID(c.Param("id"))
}

func (h *ActivityHandler) ListPlanned(c *gin.Context) {
	list, err := h.activityUseCase.ExecuteListPlanned(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ActivityHandler) CreatePlanned(c *gin.Context) {
	var req PlannedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for planned activity", err))
		return
	}
	p, err := h.activityUseCase.ExecuteCreatePlanned(c.Request.Context(), req.ToInput())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ActivityHandler) UpdatePlanned(c *gin.Context) {
	var req PlannedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for planned activity", err))
		return
	}
	p, err := h.activityUseCase.ExecuteUpdatePlanned(c.Request.Context(), idParam(c), req.ToInput())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ActivityHandler) DeletePlanned(c *gin.Context) {
	if err := h.activityUseCase.ExecuteDeletePlanned(c.Request.Context(), idParam(c)); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ActivityHandler) Promote(c *gin.Context) {
	done, err := h.activityUseCase.ExecutePromote(c.Request.Context(), idParam(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, done)
}

func (h *ActivityHandler) ListCompleted(c *gin.Context) {
	list, err := h.activityUseCase.ExecuteListCompleted(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ActivityHandler) GetCompleted(c *gin.Context) {
	a, err := h.activityUseCase.ExecuteGetCompleted(c.Request.Context(), idParam(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *ActivityHandler) CreateCompleted(c *gin.Context) {
	var req CompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for completed activity", err))
		return
	}
	a, err := h.activityUseCase.ExecuteCreateCompleted(c.Request.Context(), req.ToInput())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *ActivityHandler) UpdateCompleted(c *gin.Context) {
	var req CompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for completed activity", err))
		return
	}
	a, err := h.activityUseCase.ExecuteUpdateCompleted(c.Request.Context(), idParam(c), req.ToInput())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *ActivityHandler) DeleteCompleted(c *gin.Context) {
	if err := h.activityUseCase.ExecuteDeleteCompleted(c.Request.Context(), idParam(c)); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ActivityHandler) UpdateReflection(c *gin.Context) {
	var req ReflectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for reflection", err))
		return
	}
	a, err := h.activityUseCase.ExecuteUpdateReflection(c.Request.Context(), idParam(c), activityUC.ReflectionInput(req))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// AddEvidence accepts a multipart form with one or more "files" parts.
func (h *ActivityHandler) AddEvidence(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxEvidenceForm)
	form, err := c.MultipartForm()
	if err != nil {
		c.Error(apperror.NewInvalidInput("expected a multipart form with files", err))
		return
	}
	headers := form.File["files"]
	files := make([]activityUC.EvidenceFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			c.Error(apperror.NewInvalidInput(fmt.Sprintf("cannot read %s", fh.Filename), err))
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.Error(apperror.NewInvalidInput(fmt.Sprintf("cannot read %s", fh.Filename), err))
			return
		}
		files = append(files, activityUC.EvidenceFile{
			Name:    fh.Filename,
			Type:    fh.Header.Get("Content-Type"),
			Content: content,
		})
	}

	a, err := h.activityUseCase.ExecuteAddEvidence(c.Request.Context(), idParam(c), files)
	if err != nil {
		c.Error(err)
		return
	}
	h.logger.Info("Evidence added", zap.String("activity_id", a.ID.String()), zap.Int("files", len(files)))
	c.JSON(http.StatusOK, a)
}

func (h *ActivityHandler) RemoveEvidence(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("evidence index must be a number", err))
		return
	}
	a, err := h.activityUseCase.ExecuteRemoveEvidence(c.Request.Context(), idParam(c), index)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, a)
}

