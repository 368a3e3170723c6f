package main

import (
	"context"
	"time"

	"github.com/eedraws/draws-backend/config"
	"github.com/eedraws/draws-backend/handlers"
	"github.com/eedraws/draws-backend/jobs"
	"github.com/eedraws/draws-backend/services"
	"github.com/eedraws/draws-backend/shared"
	"github.com/eedraws/draws-backend/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.LoadConfig()
	logrus.SetLevel(cfg.GetLogLevel())

	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	store, err := storage.NewDrawStore(cfg.DataDir)
	if err != nil {
		logrus.Fatalf("Failed to initialize data directory: %v", err)
	}

	normalizer := services.NewTimeNormalizer(nil)
	feedService := services.NewFeedService(cfg.FeedURL, config.DefaultFeedConfig())
	syncService := services.NewDrawSyncService(store, feedService)
	statsService := services.NewStatsService(normalizer)
	reportService := services.NewReportService()

	var notifier *services.NotifierService
	if cfg.NotificationsEnabled() {
		notifier = services.NewNotifierService(cfg.SMTPServer, cfg.GetSMTPPort(), cfg.SMTPUser, cfg.SMTPPassword, cfg.FromEmail)
		logrus.Infof("Email notifications enabled for %s", cfg.ToEmail)
	} else {
		logrus.Info("Email notifications disabled (SMTP_TO_EMAIL not set)")
	}

	syncJob := jobs.NewDrawSyncJob(feedService, syncService, statsService, reportService, notifier, store, cfg.ToEmail)

	switch cfg.RunMode {
	case config.RunModeServe:
		runServer(cfg, syncJob, store, feedService, syncService, normalizer)
	case config.RunModeOnce:
		runOnce(syncJob)
	default:
		logrus.Warnf("Unknown RUN_MODE %q, defaulting to once", cfg.RunMode)
		runOnce(syncJob)
	}
}

// runOnce executes a single fetch-sync-analyze-notify pass. Exit code is
// zero whether or not an update occurred; only unrecoverable failures are
// fatal.
func runOnce(syncJob *jobs.DrawSyncJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	if err := syncJob.RunOnce(ctx); err != nil {
		logrus.Fatalf("Draw sync run failed: %v", err)
	}
}

// runServer starts the read-only API and schedules the sync job.
func runServer(
	cfg *config.Config,
	syncJob *jobs.DrawSyncJob,
	store *storage.DrawStore,
	feedService *services.FeedService,
	syncService *services.DrawSyncService,
	normalizer *services.TimeNormalizer,
) {
	// Run immediately on startup, then on the configured interval.
	go func() {
		syncJob.Run()

		ticker := time.NewTicker(cfg.GetSyncInterval())
		defer ticker.Stop()
		for range ticker.C {
			syncJob.Run()
		}
	}()

	drawHandler := handlers.NewDrawHandler(store)
	analysisHandler := handlers.NewAnalysisHandler(store)
	metricsHandler := handlers.NewMetricsHandler(map[string]*shared.ServiceMetrics{
		"feed_service":    feedService.Metrics(),
		"sync_service":    syncService.Metrics(),
		"time_normalizer": normalizer.Metrics(),
	})

	app := fiber.New()
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	api := app.Group("/api/v1")
	api.Get("/draws", drawHandler.GetDraws)
	api.Get("/draws/latest", drawHandler.GetLatestDraw)
	api.Get("/analysis", analysisHandler.GetAnalysis)
	api.Get("/analysis/time", analysisHandler.GetTimeAnalysis)
	api.Get("/metrics", metricsHandler.GetMetrics)

	logrus.Infof("Server starting on port %s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logrus.Fatalf("Server failed to start: %v", err)
	}
}
