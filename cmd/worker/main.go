package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fanfie/fanfie-api/internal/config"
	"github.com/fanfie/fanfie-api/internal/pkg/database"
	"github.com/fanfie/fanfie-api/internal/pkg/logger"
	"github.com/fanfie/fanfie-api/internal/pkg/storage"
	pgrepo "github.com/fanfie/fanfie-api/internal/repository/postgres"
	"github.com/fanfie/fanfie-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Log

	log.Info("starting worker service")

	deps, cleanup, err := initWorkerDependencies(cfg)
	if err != nil {
		log.Fatal("failed to initialize dependencies", zap.Error(err))
	}
	defer cleanup()

	workerServer, err := worker.NewServer(log, cfg, deps)
	if err != nil {
		log.Fatal("failed to create worker server", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- workerServer.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("shutting down worker...")
		workerServer.Stop()
	case err := <-errCh:
		if err != nil {
			log.Error("worker server error", zap.Error(err))
		}
	}

	log.Info("worker stopped")
}

// initWorkerDependencies initializes dependencies for the worker
func initWorkerDependencies(cfg *config.Config) (*worker.Dependencies, func(), error) {
	ctx := context.Background()

	pgDB, err := database.NewPostgres(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}

	objects, err := storage.NewMinIOStore(ctx, cfg.MinIO)
	if err != nil {
		pgDB.Close()
		return nil, nil, fmt.Errorf("failed to initialize object store: %w", err)
	}

	deps := &worker.Dependencies{
		ImageRepo: pgrepo.NewImageRepository(pgDB),
		Objects:   objects,
	}

	cleanup := func() {
		pgDB.Close()
	}

	return deps, cleanup, nil
}
