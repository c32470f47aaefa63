package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/semerproje/newswire/app/api"
	"github.com/semerproje/newswire/app/cache"
	"github.com/semerproje/newswire/app/cfg"
	"github.com/semerproje/newswire/app/classify"
	"github.com/semerproje/newswire/app/database"
	"github.com/semerproje/newswire/app/dedup"
	"github.com/semerproje/newswire/app/enhance"
	"github.com/semerproje/newswire/app/ratelimit"
	"github.com/semerproje/newswire/app/schedule"
	"github.com/semerproje/newswire/app/tasks"
	"github.com/semerproje/newswire/app/upstream"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Newswire server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBHost, appCfg.DBPort, appCfg.DBUser,
		appCfg.DBPassword, appCfg.DBName)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "migration_version", version, "dirty", dirty)

	docRepo := database.NewDocumentRepository(db)
	scheduleRepo := database.NewScheduleRepository(db)

	configCache := schedule.NewConfigCache(appCfg.SchedulesDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load schedule configurations", "error", err)
		os.Exit(1)
	}
	slog.Info("Schedule configurations loaded", "count", configCache.GetConfigCount())

	limiter := ratelimit.NewLimiter(time.Duration(appCfg.MinRequestIntervalMs) * time.Millisecond)
	gateway := upstream.NewClient(appCfg.UpstreamURL, appCfg.UpstreamUser, appCfg.UpstreamPassword,
		appCfg.UserAgent, appCfg.ArchiveRetentionDays,
		&http.Client{Timeout: 30 * time.Second}, limiter)

	classifier := classify.NewClassifier()
	detector := dedup.NewDetector(appCfg.DedupThreshold, appCfg.DedupTitleWeight,
		appCfg.DedupContentWeight, appCfg.DedupMaxBatch)
	enhancer := enhance.NewClient(appCfg.EnhancerEndpoint, appCfg.EnhancerModel, appCfg.EnhancerAPIKey)
	if enhancer.Available() {
		slog.Info("Enhancer enabled", "model", appCfg.EnhancerModel)
	} else {
		slog.Info("Enhancer disabled (ENHANCER_API_KEY not set)")
	}

	guard := tasks.NewRunGuard()
	scheduler := tasks.NewScheduler(configCache, docRepo, scheduleRepo, gateway, classifier, detector, enhancer, guard)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)

	newsCache := cache.New[[]database.Document](nil)
	dedupWindow := time.Duration(appCfg.DedupWindowHours) * time.Hour
	ingestTaskFn := func(config *schedule.Config) tasks.TaskInterface {
		return tasks.NewIngestTask(config.Name, config, gateway, classifier, detector, dedupWindow, enhancer, docRepo, scheduleRepo, guard)
	}

	handler := api.NewHandler(configCache, docRepo, scheduleRepo, newsCache, gateway, scheduler, ingestTaskFn)
	router := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
