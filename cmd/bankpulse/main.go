package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/savegress/bankpulse/internal/api"
	"github.com/savegress/bankpulse/internal/cache"
	"github.com/savegress/bankpulse/internal/config"
	"github.com/savegress/bankpulse/internal/fraud"
	"github.com/savegress/bankpulse/internal/generator"
	"github.com/savegress/bankpulse/internal/logging"
	"github.com/savegress/bankpulse/internal/metrics"
	"github.com/savegress/bankpulse/internal/reporting"
	"github.com/savegress/bankpulse/internal/risk"
	"github.com/savegress/bankpulse/internal/store"
)

func main() {
	// Load configuration
	cfg, cfgErr := loadConfig()

	log := logging.New(cfg.Logging)
	if cfgErr != nil {
		log.WithError(cfgErr).Warn("Failed to load config file, using environment")
	}
	log.WithField("environment", cfg.Server.Environment).Info("Starting bankpulse...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize snapshot store
	loader, db, err := newLoader(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize snapshot loader")
	}
	if db != nil {
		defer db.Close()
	}

	st := store.New(loader, log)
	if _, err := st.Refresh(ctx); err != nil {
		log.WithError(err).Fatal("Failed to load initial snapshot")
	}

	var scheduler *store.Scheduler
	if cfg.Store.RefreshSchedule != "" {
		scheduler, err = store.NewScheduler(st, cfg.Store.RefreshSchedule, time.Minute, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to schedule snapshot refresh")
		}
		scheduler.Start()
	}

	// Initialize analytics engine
	classifier, err := risk.NewClassifierFromConfig(cfg.Analytics, log)
	if err != nil {
		log.WithError(err).Fatal("Invalid credit risk bands")
	}
	detector := fraud.NewDetector(fraud.ConfigFromAnalytics(cfg.Analytics), log)
	composer := metrics.NewComposer(cfg.Analytics, classifier, detector, log)

	// Initialize result cache
	resultCache, err := cache.New(cfg.Redis)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, caching in memory")
		resultCache = cache.NewMemory()
	}
	defer resultCache.Close()

	dashboard := reporting.NewDashboard(st, composer, detector, classifier, resultCache, cfg.Redis.TTL, log)

	// Create API server
	server := api.NewServer(cfg, dashboard, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("bankpulse API listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down bankpulse...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	}

	if scheduler != nil {
		scheduler.Stop()
	}

	log.Info("bankpulse stopped")
}

func loadConfig() (*config.Config, error) {
	configPath := os.Getenv("BANKPULSE_CONFIG")
	if configPath == "" {
		return config.LoadFromEnv(), nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.LoadFromEnv(), fmt.Errorf("load %s: %w", configPath, err)
	}
	return cfg, nil
}

// newLoader picks the snapshot source. The returned database handle is nil
// unless the source is postgres.
func newLoader(ctx context.Context, cfg *config.Config) (store.Loader, *sql.DB, error) {
	switch cfg.Store.Source {
	case "", "demo":
		gcfg := generator.DefaultConfig()
		gcfg.Seed = cfg.Store.DemoSeed
		return generator.New(gcfg), nil, nil
	case "file":
		return store.NewFileLoader(cfg.Store.FilePath), nil, nil
	case "postgres":
		db, err := store.OpenPostgres(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPostgresLoader(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown store source %q", cfg.Store.Source)
	}
}
