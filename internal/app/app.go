// Package app wires configuration, adapters and use cases together for the
// server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/khoahotran/cpd-tracker/adapters/event"
	"github.com/khoahotran/cpd-tracker/adapters/llm"
	"github.com/khoahotran/cpd-tracker/adapters/media_storage"
	"github.com/khoahotran/cpd-tracker/adapters/persistence"
	"github.com/khoahotran/cpd-tracker/internal/application/service"
	activityUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/activity"
	authUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/auth"
	backupUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/backup"
	chatUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/chat"
	complianceUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/compliance"
	exportUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/export"
	feedUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/feed"
	insightUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/insight"
	learningUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/learning"
	profileUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/profile"
	reportUC "github.com/khoahotran/cpd-tracker/internal/application/usecase/report"
	"github.com/khoahotran/cpd-tracker/internal/application/usecase/workspace"
	"github.com/khoahotran/cpd-tracker/internal/config"
	"github.com/khoahotran/cpd-tracker/internal/domain/activity"
	"github.com/khoahotran/cpd-tracker/internal/domain/competency"
	"github.com/khoahotran/cpd-tracker/internal/domain/compliance"
	"github.com/khoahotran/cpd-tracker/pkg/auth"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

type App struct {
	Config   config.Config
	JWT      *auth.JWTService
	Taxonomy *competency.Taxonomy

	Login      *authUC.LoginUseCase
	Profile    *profileUC.ProfileUseCase
	Learning   *learningUC.LearningUseCase
	Activity   *activityUC.ActivityUseCase
	Compliance *complianceUC.ComplianceUseCase
	Report     *reportUC.ReportUseCase
	Export     *exportUC.ExportUseCase
	Backup     *backupUC.BackupUseCase
	Insight    *insightUC.InsightUseCase
	Chat       *chatUC.ChatUseCase
	Feed       *feedUC.FeedUseCase

	closers []func() error
}

// New opens the configured store and optional services. Kafka, Cloudinary
// and the model are optional: when unconfigured the app runs without them.
func New(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	a := &App{Config: cfg, Taxonomy: competency.Default()}

	store, err := persistence.NewStore(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.closers = append(a.closers, store.Close)
	ws := workspace.NewWorkspace(persistence.NewBucketRepository(store, cfg.Store.KeyPrefix, log), log)

	var publisher activity.Publisher = event.NewLogPublisher(log)
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := event.NewKafkaPublisher(cfg, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, kp.Close)
		publisher = kp
	}

	uploader, err := media_storage.NewCloudinaryAdapter(cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	model, err := llm.New(cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	var (
		chatModel   service.LLMService
		visionModel service.VisionService
	)
	if model != nil {
		chatModel, visionModel = model, model
	}

	req := compliance.Requirements{
		TotalHours:      cfg.Compliance.TotalHours,
		VerifiableHours: cfg.Compliance.VerifiableHours,
		EthicsHours:     cfg.Compliance.EthicsHours,
	}
	log.Info("Compliance thresholds",
		zap.Float64("total", req.TotalHours),
		zap.Float64("verifiable", req.VerifiableHours),
		zap.Float64("ethics", req.EthicsHours),
	)

	a.JWT = auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	a.Login = authUC.NewLoginUseCase(authUC.Owner{Email: cfg.Auth.OwnerEmail, PasswordHash: cfg.Auth.OwnerPasswordHash}, a.JWT, log)
	a.Profile = profileUC.NewProfileUseCase(ws, log)
	a.Learning = learningUC.NewLearningUseCase(ws, log)
	a.Activity = activityUC.NewActivityUseCase(ws, publisher, uploader, log)
	a.Compliance = complianceUC.NewComplianceUseCase(ws, req, log)
	a.Report = reportUC.NewReportUseCase(ws, a.Taxonomy, log)
	a.Export = exportUC.NewExportUseCase(ws, req, log)
	a.Backup = backupUC.NewBackupUseCase(ws, uploader, publisher, log)
	a.Insight = insightUC.NewInsightUseCase(visionModel, log)
	a.Chat = chatUC.NewChatUseCase(chatModel, ws, a.Taxonomy, req, log)
	a.Feed = feedUC.NewFeedUseCase(ws, cfg.App.BaseURL, log)
	return a, nil
}

// AuthEnabled reports whether an owner account is configured.
func (a *App) AuthEnabled() bool {
	return a.Config.Auth.OwnerEmail != "" && a.Config.Auth.OwnerPasswordHash != "" && a.Config.Auth.JWTSecret != ""
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
