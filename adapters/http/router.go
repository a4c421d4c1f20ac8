package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

// Handlers groups everything the router mounts. Auth may be nil, in which
// case the API is served without a login (single local user).
type Handlers struct {
	Auth       *AuthHandler
	Profile    *ProfileHandler
	Activity   *ActivityHandler
	Compliance *ComplianceHandler
	Transfer   *TransferHandler
	Assistant  *AssistantHandler
	RSS        *RSSHandler

	AuthMiddleware gin.HandlerFunc
	Metrics        *Metrics
}

func NewRouter(h Handlers, serviceName string, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(TracingMiddleware(serviceName))
	router.Use(h.Metrics.Middleware())
	router.Use(ErrorMiddleware(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	router.GET("/metrics", gin.WrapH(h.Metrics.Handler()))

	api := router.Group("/api")
	if h.Auth != nil {
		api.POST("/auth/login", h.Auth.Login)
	}

	private := api.Group("/")
	if h.AuthMiddleware != nil {
		private.Use(h.AuthMiddleware)
	}
	{
		private.GET("/profile", h.Profile.GetProfile)
		private.PUT("/profile/member", h.Profile.SaveMember)
		private.PUT("/profile/career", h.Profile.SaveCareer)

		private.GET("/learning-needs", h.Profile.ListNeeds)
		private.POST("/learning-needs", h.Profile.AddNeed)
		private.PUT("/learning-needs/:id", h.Profile.UpdateNeed)
		private.DELETE("/learning-needs/:id", h.Profile.DeleteNeed)

		private.GET("/activities/planned", h.Activity.ListPlanned)
		private.POST("/activities/planned", h.Activity.CreatePlanned)
		private.PUT("/activities/planned/:id", h.Activity.UpdatePlanned)
		private.DELETE("/activities/planned/:id", h.Activity.DeletePlanned)
		private.POST("/activities/planned/:id/promote", h.Activity.Promote)

		private.GET("/activities/completed", h.Activity.ListCompleted)
		private.POST("/activities/completed", h.Activity.CreateCompleted)
		private.GET("/activities/completed/:id", h.Activity.GetCompleted)
		private.PUT("/activities/completed/:id", h.Activity.UpdateCompleted)
		private.DELETE("/activities/completed/:id", h.Activity.DeleteCompleted)
		private.PUT("/activities/completed/:id/reflection", h.Activity.UpdateReflection)
		private.POST("/activities/completed/:id/evidence", h.Activity.AddEvidence)
		private.DELETE("/activities/completed/:id/evidence/:index", h.Activity.RemoveEvidence)
		private.POST("/activities/completed/:id/reflection/draft", h.Assistant.DraftReflection)
		private.GET("/activities/completed/:id/summary", h.Assistant.Summarize)

		private.GET("/compliance", h.Compliance.Snapshot)
		private.GET("/compliance/warnings", h.Compliance.Warnings)
		private.GET("/analytics", h.Compliance.Analytics)

		private.GET("/report.pdf", h.Transfer.Report)
		private.GET("/export/csv", h.Transfer.ExportCSV)
		private.GET("/export/evidence-manifest", h.Transfer.ExportEvidenceManifest)
		private.GET("/export/tax-submission", h.Transfer.ExportTaxSubmission)
		private.GET("/backup", h.Transfer.DownloadBackup)
		private.POST("/backup", h.Transfer.ImportBackup)
		private.POST("/backup/upload", h.Transfer.UploadBackup)
		private.GET("/storage/usage", h.Transfer.Usage)
		private.DELETE("/storage", h.Transfer.Clear)

		private.POST("/analyze-document", h.Assistant.AnalyzeDocument)
		private.POST("/chat", h.Assistant.Chat)
		private.POST("/assist/competencies/course", h.Assistant.SuggestForCourse)
		private.POST("/assist/competencies/role", h.Assistant.SuggestForRole)
		private.POST("/assist/learning-need", h.Assistant.EnhanceNeed)
		private.GET("/assist/compliance-review", h.Assistant.ComplianceReview)

		private.GET("/feed.rss", h.RSS.GenerateRSS)
	}

	return router
}
