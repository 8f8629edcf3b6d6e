// Package main is the entry point for the phase-space distribution service.
// It computes Wigner, Husimi Q and two-mode quadrature distributions over
// HTTP, stores them as snapshots and serves reductions and chart payloads.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/phasespace/internal/config"
	"github.com/aristath/phasespace/internal/database"
	"github.com/aristath/phasespace/internal/modules/compute"
	"github.com/aristath/phasespace/internal/modules/snapshots"
	"github.com/aristath/phasespace/internal/scheduler"
	"github.com/aristath/phasespace/internal/server"
	"github.com/aristath/phasespace/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting phase-space service")

	snapshotsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "snapshots.db"),
		Profile: database.ProfileCache,
		Name:    "snapshots",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open snapshots database")
	}
	defer snapshotsDB.Close()

	if err := snapshotsDB.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate snapshots database")
	}

	repo := snapshots.NewRepository(snapshotsDB.Conn(), log)
	service := compute.NewService(repo, compute.Limits{
		DefaultSteps:  cfg.DefaultSteps,
		MaxSteps:      cfg.MaxSteps,
		MaxTruncation: cfg.MaxTruncation,
		MaxHilbertDim: cfg.MaxHilbertDim,
		G:             cfg.WignerG,
		TTL:           cfg.SnapshotTTL,
	}, log)

	sched := scheduler.New(log)
	expireJob := scheduler.NewExpireSnapshotsJob(repo, log)
	if err := sched.RunNow(expireJob); err != nil {
		log.Warn().Err(err).Msg("Startup snapshot expiry failed")
	}
	if err := sched.AddJob(cfg.CleanupSchedule, expireJob); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.CleanupSchedule).Msg("Failed to register snapshot expiry job")
	}
	if err := sched.AddJob("0 0 * * * *", scheduler.NewCheckWALCheckpointsJob(log, snapshotsDB)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register WAL checkpoint job")
	}
	sched.Start()
	log.Info().Strs("jobs", sched.Jobs()).Msg("Background jobs scheduled")

	srv := server.New(server.Config{
		Log:         log,
		Port:        cfg.Port,
		DevMode:     cfg.DevMode,
		SnapshotsDB: snapshotsDB,
		Snapshots:   repo,
		Service:     service,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if err := snapshotsDB.WALCheckpoint("TRUNCATE"); err != nil {
		log.Warn().Err(err).Msg("Final WAL checkpoint failed")
	}
	log.Info().Msg("Server stopped")
}
