package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shiftsense/timeclock-backend-go/internal/config"
	appHTTP "github.com/shiftsense/timeclock-backend-go/internal/handler/http"
	"github.com/shiftsense/timeclock-backend-go/internal/pkg/cron"
	"github.com/shiftsense/timeclock-backend-go/internal/pkg/database"
	"github.com/shiftsense/timeclock-backend-go/internal/pkg/metrics"
	"github.com/shiftsense/timeclock-backend-go/internal/pkg/push"
	"github.com/shiftsense/timeclock-backend-go/internal/repository/postgresql"
	notificationService "github.com/shiftsense/timeclock-backend-go/internal/service/notification"
	"github.com/shiftsense/timeclock-backend-go/internal/service/orchestrator"
	"github.com/shiftsense/timeclock-backend-go/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	setupLogger(cfg.App.LogLevel)

	dsn := cfg.DatabaseURL()
	if err := migrations.Up(dsn); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	sessionRepo := postgresql.NewSessionRepository(db, cfg.Orchestrator.StoreBatchLimit)
	scheduleRepo := postgresql.NewScheduleRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	jobSiteRepo := postgresql.NewJobSiteRepository(db)
	companyRepo := postgresql.NewCompanyRepository(db)
	locationRepo := postgresql.NewLocationRepository(db)
	consentRepo := postgresql.NewNotificationSettingsRepository(db)

	var sender push.Sender = push.NopSender{}
	if cfg.Push.GatewayURL != "" {
		sender = push.NewClient(push.Config{
			GatewayURL:   cfg.Push.GatewayURL,
			TokenURL:     cfg.Push.TokenURL,
			ClientID:     cfg.Push.ClientID,
			ClientSecret: cfg.Push.ClientSecret,
		})
	}
	notifier := notificationService.NewNotificationService(sender, notificationService.Config{})

	orch := orchestrator.NewOrchestrator(
		sessionRepo,
		scheduleRepo,
		employeeRepo,
		jobSiteRepo,
		companyRepo,
		locationRepo,
		consentRepo,
		notifier,
		nil,
		orchestrator.Config{
			SessionLookahead:    cfg.Orchestrator.SessionLookahead,
			HealthCheckInterval: cfg.Orchestrator.HealthCheckInterval,
			ArchiveRetention:    time.Duration(cfg.Orchestrator.ArchiveRetentionDays) * 24 * time.Hour,
			ArchiveBatchSize:    cfg.Orchestrator.StoreBatchLimit,
		},
	)

	metrics.Register()

	scheduler := cron.NewScheduler()
	orch.RegisterJobs(scheduler, cfg.Orchestrator.Interval)
	scheduler.Start()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: appHTTP.NewRouter(db, cfg.App.Env),
	}
	go func() {
		slog.Info("Ops server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Ops server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down")
	scheduler.Stop()
	notifier.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Ops server shutdown failed", "error", err)
	}
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
