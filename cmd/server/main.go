package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpAdapter "github.com/khoahotran/cpd-tracker/adapters/http"
	"github.com/khoahotran/cpd-tracker/internal/app"
	"github.com/khoahotran/cpd-tracker/internal/config"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
	"github.com/khoahotran/cpd-tracker/pkg/tracing"
)

const serviceName = "cpd-tracker-api"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env, cfg.App.LogLevel)
	defer appLogger.Sync()
	appLogger.Info("Start CPD Tracker API Server...", zap.String("env", cfg.App.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := tracing.NewTracerProvider(cfg, appLogger, serviceName)
	if err != nil {
		appLogger.Fatal("Cannot init tracing", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("Failed to shut down tracer provider", err)
		}
	}()

	a, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot initialise application", err)
	}
	defer a.Close()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := httpAdapter.NewMetrics()
	handlers := httpAdapter.Handlers{
		Profile:    httpAdapter.NewProfileHandler(a.Profile, a.Learning, appLogger),
		Activity:   httpAdapter.NewActivityHandler(a.Activity, appLogger),
		Compliance: httpAdapter.NewComplianceHandler(a.Compliance, appLogger),
		Transfer:   httpAdapter.NewTransferHandler(a.Report, a.Export, a.Backup, appLogger),
		Assistant:  httpAdapter.NewAssistantHandler(a.Insight, a.Chat, metrics, appLogger),
		RSS:        httpAdapter.NewRSSHandler(a.Feed, appLogger),
		Metrics:    metrics,
	}
	if a.AuthEnabled() {
		handlers.Auth = httpAdapter.NewAuthHandler(a.Login, appLogger)
		handlers.AuthMiddleware = httpAdapter.AuthMiddleware(a.JWT, appLogger)
	} else {
		appLogger.Warn("No owner account configured; the API is served without authentication")
	}
	router := httpAdapter.NewRouter(handlers, serviceName, appLogger)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
}
