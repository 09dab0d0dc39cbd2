// Command sweeper deletes stored resume files that no database row references.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-review-backend/config"
	"resume-review-backend/internal/repository/postgres"
	"resume-review-backend/internal/usecase"
	"resume-review-backend/pkg/database"
	"resume-review-backend/pkg/logger"
	"resume-review-backend/pkg/storage"
)

func main() {
	grace := flag.Duration("grace", 24*time.Hour, "keep objects newer than this")
	dryRun := flag.Bool("dry-run", false, "report orphans without deleting them")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	store, err := storage.New(ctx, storage.Config{
		Provider:        storage.Provider(cfg.S3Provider),
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Region:          cfg.S3Region,
		Bucket:          cfg.S3Bucket,
		Endpoint:        cfg.S3Endpoint,
	})
	if err != nil {
		logger.Log.Error("Failed to configure object storage", "error", err)
		os.Exit(1)
	}

	sweeper := usecase.NewOrphanSweeper(store, postgres.NewResumeRepository(dbPool), cfg.StorageVisibility, *grace, *dryRun)
	report, err := sweeper.Run(ctx)
	if report != nil {
		_ = json.NewEncoder(os.Stdout).Encode(report)
	}
	if err != nil {
		logger.Log.Error("Sweep failed", "error", err)
		os.Exit(1)
	}
	if report.Failed > 0 {
		os.Exit(2)
	}
}
