package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"hotelperf/server/config"
	"hotelperf/server/internal/api"
	"hotelperf/server/internal/database"
	"hotelperf/server/internal/geocoding"
	"hotelperf/server/internal/metrics"
	"hotelperf/server/internal/processor"
	"hotelperf/server/internal/queue"
	"hotelperf/server/internal/scheduler"
	"hotelperf/server/internal/scraping"
	"hotelperf/server/internal/sentiment"
	"hotelperf/server/internal/service"
	"hotelperf/server/internal/telegram"
)

func serve(cfg *config.Config, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Infof("Using database at: %s", cfg.Database.Path)
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	lexicon, err := config.LoadLexicon(cfg.Lexicon.Path)
	if err != nil {
		return err
	}
	positive, negative := lexicon.Size()
	logger.WithFields(logrus.Fields{
		"positive_words": positive,
		"negative_words": negative,
	}).Info("Sentiment lexicon loaded")

	m, err := metrics.NewMetrics()
	if err != nil {
		return err
	}

	opts := service.Options{
		ReportCacheTTL: cfg.Report.CacheTTL,
		Metrics:        m,
		Logger:         logger,
	}
	if cfg.Geocoding.Enabled {
		opts.Geocoder = geocoding.NewGeocoder(logger, cfg.Geocoding.URL, cfg.Geocoding.CacheDir)
	}
	svc := service.NewService(db, sentiment.NewClassifier(lexicon), opts)

	if opts.Geocoder != nil {
		go func() {
			logger.Info("Starting initial geocoding of hotels without coordinates...")
			if _, err := svc.GeocodeMissing(ctx); err != nil {
				logger.WithError(err).Error("Failed to update coordinates")
			}
		}()
	}

	reviewQueue := queue.NewReviewQueue(cfg.BatchProcessing.QueueSize, logger)
	batchProcessor := processor.NewBatchProcessor(svc, reviewQueue, cfg, logger)
	batchProcessor.Start()

	scraper := scraping.NewScraperManager(cfg, reviewQueue, svc, m, logger)
	sched := scheduler.NewScheduler(db, scraper, cfg, logger)
	if notifier := telegram.NewNotifier(cfg.Telegram.APIURL, cfg.Telegram.BotToken, cfg.Telegram.ChatID, logger); notifier.Enabled() {
		sched.SetNotifier(notifier)
		logger.Info("Telegram scraping summaries enabled")
	}
	if cfg.Scraping.Enabled {
		if err := sched.Start(); err != nil {
			batchProcessor.Stop()
			return err
		}
	}

	if logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := api.NewHandler(svc, logger,
		api.WithScraper(sched),
		api.WithPipeline(reviewQueue, batchProcessor),
	)
	router := api.NewRouter(handler, m, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err = <-serverErr:
		if err != nil {
			logger.WithError(err).Error("Server failed")
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.WithError(shutdownErr).Error("Failed to shut down server cleanly")
	}

	// scrapers push into the queue, so they stop first
	sched.Stop()
	batchProcessor.Stop()

	logger.Info("Server stopped")
	return err
}
