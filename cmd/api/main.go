package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medxmentor-backend/config"
	_ "medxmentor-backend/docs" // registers the Swagger document
	v1 "medxmentor-backend/internal/delivery/http/v1"
	"medxmentor-backend/internal/repository/postgres"
	"medxmentor-backend/internal/usecase"
	"medxmentor-backend/migrations"
	"medxmentor-backend/pkg/auth"
	"medxmentor-backend/pkg/database"
	"medxmentor-backend/pkg/logger"
	"medxmentor-backend/pkg/openai"
	"medxmentor-backend/pkg/redis"
	"medxmentor-backend/pkg/security"
	"medxmentor-backend/pkg/validation"
)

// @title           MedXMentor API
// @version         1.0
// @description     Mentee progress tracking and the virtual mentor for MedXMentor.
// @host            localhost:5000
// @BasePath        /api
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
	logger.Log.Info("Starting medxmentor backend", "port", cfg.Port, "extraction_mode", cfg.MentorExtractionMode)

	env := "development"
	if cfg.IsProduction() {
		env = "production"
	}
	securityLogger := security.InitSecurityLogger("medxmentor-backend", env)

	// 3. Setup Database
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	dbPool, err := database.NewPostgresConnection(startCtx, cfg.DBUrl)
	cancelStart()
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if cfg.RunMigrations {
		if err := database.ApplyMigrations(cfg.DBUrl, migrations.FS); err != nil {
			logger.Log.Error("Failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	// 4. Setup Redis (optional)
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory rate limiting", "error", err)
		}
	}
	defer redis.Close()

	// 5. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	assessmentRepo := postgres.NewAssessmentRepository(dbPool)
	profileRepo := postgres.NewMentorProfileRepository(dbPool)
	conversationRepo := postgres.NewMentorConversationRepository(dbPool)

	// 6. Setup Services
	validate := validation.New()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpire)
	completer := openai.NewClient(openai.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: cfg.OpenAITimeout,
	})
	loginTracker := security.NewLoginTracker(security.LoginTrackerConfig{
		MaxAttempts:   cfg.FailedLoginMaxAttempts,
		AttemptWindow: time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute,
		BlockDuration: time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute,
		UseIPTracking: true,
	}, securityLogger)

	// 7. Setup UseCases
	authUC := usecase.NewAuthUsecase(userRepo, tokens, loginTracker, validate)
	assessmentUC := usecase.NewAssessmentUsecase(assessmentRepo, validate)
	mentorUC := usecase.NewMentorUsecase(profileRepo, conversationRepo, completer, validate, usecase.MentorOptions{
		SyncExtraction:    cfg.MentorExtractionMode == config.ExtractionModeSync,
		ExtractionTimeout: cfg.MentorExtractionTimeout,
	})
	healthChecks := map[string]usecase.HealthCheck{"database": dbPool.Ping}
	if cfg.RedisURL != "" {
		healthChecks["redis"] = redis.HealthCheck
	}
	healthUC := usecase.NewHealthUsecase(healthChecks)

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:       authUC,
		AssessmentUC: assessmentUC,
		MentorUC:     mentorUC,
		HealthUC:     healthUC,
		Tokens:       tokens,
		Config:       cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	// Let detached profile extractions finish before the pool closes
	mentorUC.Wait()
	_ = securityLogger.Sync()

	logger.Log.Info("Server exiting")
}
