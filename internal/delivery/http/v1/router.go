package v1

import (
	"time"

	"medxmentor-backend/config"
	"medxmentor-backend/internal/delivery/http/middleware"
	"medxmentor-backend/internal/domain"
	"medxmentor-backend/internal/usecase"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

type RouterDeps struct {
	AuthUC       domain.AuthUsecase
	AssessmentUC domain.AssessmentUsecase
	MentorUC     domain.MentorUsecase
	HealthUC     usecase.HealthUsecase
	Tokens       middleware.TokenParser
	Config       *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins(), cfg.IsProduction())) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CSRFMiddleware(cfg.IsProduction()))
	r.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window)))

	api := r.Group("/api")

	NewHealthHandler(api, deps.HealthUC)

	// Swagger, only when a doc is registered (cmd/api imports the docs package)
	if _, err := swag.ReadDoc(); err == nil {
		api.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authLimit := middleware.RateLimitMiddleware(middleware.AuthRateLimitConfig(cfg.RateLimitLoginThreshold, window))
	mentorLimit := middleware.RateLimitMiddleware(middleware.MentorRateLimitConfig(cfg.RateLimitMentorThreshold, window))

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Tokens, deps.AuthUC))
	{
		NewAuthHandler(api, protected, authLimit, deps.AuthUC, cfg)
		NewAssessmentHandler(protected, deps.AssessmentUC)
		NewMentorHandler(protected, mentorLimit, deps.MentorUC)
	}

	return r
}
