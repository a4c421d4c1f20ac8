package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	complianceUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/compliance"
	"github.com/khoahotran/cpd-tracker/pkg/apperror"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

type ComplianceHandler struct {
	complianceUseCase *complianceUC.ComplianceUseCase
	logger            logger.Logger
}

func NewComplianceHandler(uc *complianceUC.ComplianceUseCase, log logger.Logger) *ComplianceHandler {
	return &ComplianceHandler{complianceUseCase: uc, logger: log}
}

// Snapshot computes totals over every completed activity, or over one
// calendar year when ?year= is given.
func (h *ComplianceHandler) Snapshot(c *gin.Context) {
	year := 0
	if s := c.Query("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y < 1 {
			c.Error(apperror.NewInvalidInput("year must be a positive number", err))
			return
		}
		year = y
	}
	snap, err := h.complianceUseCase.ExecuteSnapshot(c.Request.Context(), year)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"requirements": h.complianceUseCase.Requirements(),
		"snapshot":     snap,
	})
}

func (h *ComplianceHandler) Warnings(c *gin.Context) {
	warnings, err := h.complianceUseCase.ExecuteWarnings(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, warnings)
}

func (h *ComplianceHandler) Analytics(c *gin.Context) {
	a, err := h.complianceUseCase.ExecuteAnalytics(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, a)
}
