package v1

import (
	"strings"
	"time"

	"resume-review-backend/config"
	"resume-review-backend/internal/delivery/http/middleware"
	"resume-review-backend/internal/domain"
	"resume-review-backend/internal/usecase"
	"resume-review-backend/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	SessionUC domain.SessionUsecase
	ProfileUC domain.ProfileUsecase
	ResumeUC  domain.ResumeUsecase
	ReviewUC  domain.ReviewUsecase
	HealthUC  usecase.HealthUsecase
	Config    *config.Config
	// Redis backs the rate limiters; nil keeps them in memory
	Redis func() *goredis.Client
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterValidators(v)
	}

	cfg := deps.Config
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	globalLimit := middleware.GlobalRateLimitConfig(cfg.RateLimitGlobalThreshold, window)
	globalLimit.Redis = deps.Redis
	magicLinkLimit := middleware.MagicLinkRateLimitConfig(cfg.RateLimitLoginThreshold, window)
	magicLinkLimit.Redis = deps.Redis

	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(globalLimit))
	r.Use(middleware.CSRFMiddleware(strings.HasPrefix(cfg.FrontendURL, "https://")))

	v1 := r.Group("/v1")

	NewHealthHandler(v1, deps.HealthUC)

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	strict := v1.Group("")
	strict.Use(middleware.RateLimitMiddleware(magicLinkLimit))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.SessionUC))

	admin := protected.Group("/admin")
	admin.Use(middleware.RequireAdmin())

	NewAuthHandler(strict, protected, deps.SessionUC, deps.ProfileUC)
	NewProfileHandler(protected, deps.ProfileUC)
	NewResumeHandler(protected, deps.ResumeUC, cfg.MaxUploadBytes)
	NewAdminHandler(admin, deps.ResumeUC, deps.ReviewUC)

	return r
}
