package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/khoahotran/career-compass/adapters/event"
	"github.com/khoahotran/career-compass/adapters/media_storage"
	"github.com/khoahotran/career-compass/adapters/persistence"
	archiveUC "github.com/khoahotran/career-compass/internal/application/usecase/archive"
	"github.com/khoahotran/career-compass/internal/config"
	"github.com/khoahotran/career-compass/pkg/logger"
	"github.com/khoahotran/career-compass/pkg/tracing"
)

func main() {
	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	// Runs after every other deferred cleanup.
	var failed bool
	defer func() {
		if failed {
			os.Exit(1)
		}
	}()

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer func() { _ = appLogger.Sync() }()
	appLogger.Info("Starting Career Compass CV Archive Worker...")

	if len(cfg.Kafka.Brokers) == 0 {
		appLogger.Fatal("Kafka brokers are required for the worker", nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(cfg, appLogger, "career-compass-worker")
	if err != nil {
		appLogger.Fatal("Cannot init tracing", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	// Database
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	// Cloudinary Uploader
	uploader, err := media_storage.NewCloudinaryAdapter(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize uploader", err)
	}

	profileRepo := persistence.NewPostgresProfileRepo(dbPool, appLogger)
	archiveUseCase := archiveUC.NewArchiveCVUseCase(profileRepo, uploader, appLogger)

	// Kafka Consumer
	consumer := event.NewProfileEventConsumer(cfg, appLogger)
	defer func() {
		if err := consumer.Close(); err != nil {
			appLogger.Warn("Failed to close Kafka reader", zap.Error(err))
		}
	}()

	if err := consumer.Run(ctx, archiveUseCase.Execute); err != nil {
		appLogger.Error("Worker stopped; the failed message is redelivered on restart", err)
		failed = true
		return
	}
	appLogger.Info("Worker stopped")
}
