package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-review-backend/config"
	_ "resume-review-backend/docs" // Important for Swagger
	v1 "resume-review-backend/internal/delivery/http/v1"
	"resume-review-backend/internal/domain"
	"resume-review-backend/internal/repository/postgres"
	"resume-review-backend/internal/usecase"
	"resume-review-backend/pkg/auth"
	"resume-review-backend/pkg/database"
	"resume-review-backend/pkg/email"
	"resume-review-backend/pkg/logger"
	"resume-review-backend/pkg/redis"
	"resume-review-backend/pkg/security"
	"resume-review-backend/pkg/security/antivirus"
	"resume-review-backend/pkg/storage"
	"resume-review-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// @title           Resume Review API
// @version         1.0
// @description     Backend for the resume review workflow: sign-in, uploads and reviewer decisions.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.LogLevel)
	secLog := security.InitSecurityLogger("resume-review-backend", security.Environment())
	defer func() { _ = secLog.Sync() }()
	logger.Log.Info("Starting resume review backend", "port", cfg.Port)

	ctx := context.Background()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if cfg.RunMigrations {
		if err := database.RunMigrations(ctx, dbPool); err != nil {
			logger.Log.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	// 4. Redis is optional; limiters fall back to memory without it
	if err := redis.Initialize(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
		if errors.Is(err, redis.ErrNotConfigured) {
			logger.Log.Warn("Redis not configured, rate limits are per instance")
		} else {
			logger.Log.Warn("Redis unavailable, rate limits are per instance", "error", err)
		}
	}
	defer func() { _ = redis.Close() }()

	// 5. Object storage
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

	// 6. Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	resumeRepo := postgres.NewResumeRepository(dbPool)

	// 7. Identity provider
	jwksURL := cfg.SupabaseUrl + "/auth/v1/.well-known/jwks.json"
	verifier := auth.NewVerifier(cfg.SupabaseJWTSecret, auth.NewKeySet(jwksURL))
	magicLinks := auth.NewOTPClient(cfg.SupabaseUrl, cfg.SupabaseKey)

	// 8. Email
	mailer := email.NewSMTPSender(email.SMTPConfig{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.SMTPUsername,
		Password:  cfg.SMTPPassword,
		FromEmail: cfg.SMTPFromEmail,
		FromName:  cfg.SMTPFromName,
	})
	if !mailer.IsConfigured() {
		logger.Log.Warn("SMTP not configured - review notifications will be skipped")
	}

	// 9. Upload safety
	var scanner antivirus.Scanner = antivirus.NewNoOpScanner()
	if cfg.ClamAVAddress != "" {
		scanner = antivirus.NewClamAVScanner(cfg.ClamAVAddress, 30*time.Second)
	}
	uploadLimiter := security.NewUploadLimiter(redis.Client(), cfg.UploadLimitPerMinute, cfg.UploadLimitPerDay)

	// 10. UseCases
	validate := validator.New()
	validation.RegisterValidators(validate)

	policy := domain.DefaultTransitionPolicy()
	if cfg.AllowReReview {
		policy = domain.ReReviewTransitionPolicy()
	}

	sessionUC := usecase.NewSessionUsecase(verifier, userRepo, magicLinks, cfg.FrontendURL, validate)
	profileUC := usecase.NewProfileUsecase(userRepo, validate)
	notifier := usecase.NewNotificationUsecase(mailer, time.Duration(cfg.NotifyTimeoutSeconds)*time.Second)
	resumeUC := usecase.NewResumeUsecase(resumeRepo, store, uploadLimiter, scanner, secLog, usecase.ResumeUsecaseConfig{
		Visibility:     cfg.StorageVisibility,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	reviewUC := usecase.NewReviewUsecase(resumeRepo, store, notifier, policy, time.Duration(cfg.SignedURLTTLSeconds)*time.Second)

	healthChecks := map[string]usecase.HealthCheck{
		"database": dbPool.Ping,
		"storage":  store.Ping,
	}
	if redis.Client() != nil {
		healthChecks["redis"] = redis.HealthCheck
	}
	healthUC := usecase.NewHealthUsecase(healthChecks)

	// 11. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		SessionUC: sessionUC,
		ProfileUC: profileUC,
		ResumeUC:  resumeUC,
		ReviewUC:  reviewUC,
		HealthUC:  healthUC,
		Config:    cfg,
		Redis:     redis.Client,
	})

	// 12. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
