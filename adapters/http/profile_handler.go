package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	learningUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/learning"
	profileUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/profile"
	"github.com/khoahotran/cpd-tracker/internal/domain/career"
	"github.com/khoahotran/cpd-tracker/internal/domain/ids"
	"github.com/khoahotran/cpd-tracker/internal/domain/member"
	"github.com/khoahotran/cpd-tracker/pkg/apperror"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

type ProfileHandler struct {
	profileUseCase  *profileUC.ProfileUseCase
	learningUseCase *learningUC.LearningUseCase
	logger          logger.Logger
}

func NewProfileHandler(uc *profileUC.ProfileUseCase, learning *learningUC.LearningUseCase, log logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase:  uc,
		learningUseCase: learning,
		logger:          log,
	}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	output, err := h.profileUseCase.ExecuteGetProfile(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, output)
}

func (h *ProfileHandler) SaveMember(c *gin.Context) {
	var req member.Profile
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for member profile", err))
		return
	}
	saved, err := h.profileUseCase.ExecuteSaveMember(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *ProfileHandler) SaveCareer(c *gin.Context) {
	var req career.Profile
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for career profile", err))
		return
	}
	saved, err := h.profileUseCase.ExecuteSaveCareer(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *ProfileHandler) ListNeeds(c *gin.Context) {
	needs, err := h.learningUseCase.ExecuteList(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, needs)
}

func (h *ProfileHandler) AddNeed(c *gin.Context) {
	var req LearningNeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for learning need", err))
		return
	}
	need, err := h.learningUseCase.ExecuteAdd(c.Request.Context(), req.ToInput())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, need)
}

func (h *ProfileHandler) UpdateNeed(c *gin.Context) {
	var req LearningNeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for learning need", err))
		return
	}
	need, err := h.learningUseCase.ExecuteUpdate(c.Request.Context(), ids.ID(c.Param("id")), req.ToInput())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, need)
}

func (h *ProfileHandler) DeleteNeed(c *gin.Context) {
	if err := h.learningUseCase.ExecuteDelete(c.Request.Context(), ids.ID(c.Param("id"))); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
