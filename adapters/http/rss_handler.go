package http

import (
	"github.com/gin-gonic/gin"

	feedUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/feed"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

type RSSHandler struct {
	feedUseCase *feedUC.FeedUseCase
	logger      logger.Logger
}

func NewRSSHandler(uc *feedUC.FeedUseCase, log logger.Logger) *RSSHandler {
	return &RSSHandler{
		feedUseCase: uc,
		logger:      log,
	}
}

// GenerateRSS lists the latest completed activities as an RSS 2.0 feed.
func (h *RSSHandler) GenerateRSS(c *gin.Context) {
	feed, err := h.feedUseCase.Execute(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	if err := feed.WriteRss(c.Writer); err != nil {
		h.logger.Error("Failed to write RSS feed to response", err)
	}
}
