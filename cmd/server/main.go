// Package main is the entry point for the QuantRisk PFE estimation
// service. It wires configuration, logging, the runs archive database,
// the background scheduler and the HTTP API, then blocks until a
// shutdown signal arrives.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/quantrisk/internal/clients/qpu"
	"github.com/aristath/quantrisk/internal/config"
	"github.com/aristath/quantrisk/internal/database"
	"github.com/aristath/quantrisk/internal/modules/runs"
	"github.com/aristath/quantrisk/internal/reliability"
	"github.com/aristath/quantrisk/internal/scheduler"
	"github.com/aristath/quantrisk/internal/server"
	"github.com/aristath/quantrisk/internal/version"
	"github.com/aristath/quantrisk/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("version", version.Version).Msg("Starting QuantRisk")

	// Runs archive. Durable profile: archived results must survive
	// power loss between backups.
	runsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "runs.db"),
		Profile: database.ProfileDurable,
		Name:    "runs",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open runs database")
	}
	defer runsDB.Close()

	if err := runs.InitSchema(runsDB.Conn()); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize runs schema")
	}
	runsRepo := runs.NewRepository(runsDB.Conn())

	// Remote quantum backend is optional; without an endpoint every
	// request runs on the in-process simulator.
	var provider qpu.Provider
	if cfg.QPU.Enabled() {
		provider = qpu.NewHTTPClient(cfg.QPU.Endpoint, cfg.QPU.APIKey, log)
		log.Info().Str("endpoint", cfg.QPU.Endpoint).Msg("Remote quantum backend configured")
	}

	// Background maintenance: run retention cleanup, WAL checkpointing,
	// and (when a bucket is configured) nightly archive backups.
	sched := scheduler.New(log)

	cleanupJob := runs.NewCleanupJob(runsRepo, log)
	if err := sched.AddJob(cfg.CleanupSchedule, cleanupJob); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.CleanupSchedule).Msg("Failed to schedule cleanup job")
	}

	maintenanceJob := reliability.NewMaintenanceJob(runsDB, log)
	if err := sched.AddJob(cfg.MaintenanceSchedule, maintenanceJob); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.MaintenanceSchedule).Msg("Failed to schedule maintenance job")
	}

	if cfg.Backup.Enabled() {
		store, err := reliability.NewObjectStore(context.Background(), reliability.ObjectStoreConfig{
			Endpoint:  cfg.Backup.Endpoint,
			Region:    cfg.Backup.Region,
			Bucket:    cfg.Backup.Bucket,
			AccessKey: cfg.Backup.AccessKey,
			SecretKey: cfg.Backup.SecretKey,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize backup object store")
		}

		backupService := reliability.NewBackupService(runsDB, store, cfg.DataDir, log)
		backupJob := reliability.NewBackupJob(backupService, cfg.Backup.RetentionDays, log)
		if err := sched.AddJob(cfg.BackupSchedule, backupJob); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.BackupSchedule).Msg("Failed to schedule backup job")
		}
		log.Info().Str("bucket", cfg.Backup.Bucket).Msg("Nightly backups enabled")
	} else {
		log.Info().Msg("Backups disabled (no bucket configured)")
	}

	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:      log,
		DB:       runsDB,
		Runs:     runsRepo,
		Config:   cfg,
		Provider: provider,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
