package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/mlima-cursos/matricula-api/api/swagger"
	"github.com/mlima-cursos/matricula-api/internal/gateway"
	"github.com/mlima-cursos/matricula-api/internal/handler"
	"github.com/mlima-cursos/matricula-api/internal/middleware"
	"github.com/mlima-cursos/matricula-api/internal/models"
	"github.com/mlima-cursos/matricula-api/internal/repository"
	"github.com/mlima-cursos/matricula-api/internal/service"
	"github.com/mlima-cursos/matricula-api/internal/validation"
	"github.com/mlima-cursos/matricula-api/pkg/cache"
	"github.com/mlima-cursos/matricula-api/pkg/config"
	"github.com/mlima-cursos/matricula-api/pkg/database"
	"github.com/mlima-cursos/matricula-api/pkg/export"
	"github.com/mlima-cursos/matricula-api/pkg/logger"
	corsmiddleware "github.com/mlima-cursos/matricula-api/pkg/middleware/cors"
	"github.com/mlima-cursos/matricula-api/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/mlima-cursos/matricula-api/pkg/middleware/requestid"
)

// @title Matrícula API
// @version 1.0.0
// @description Checkout and back-office API for the math course enrollment
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.Database.MigrationsDir); err != nil {
		logr.Fatal("database migration failed", zap.Error(err))
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, paid-count cache disabled", zap.Error(err))
		redisClient = nil
	}

	mp, err := gateway.NewMercadoPago(cfg.MercadoPago)
	if err != nil {
		logr.Fatal("payment gateway init failed", zap.Error(err))
	}

	validate := validator.New()
	if err := validation.RegisterCPF(validate); err != nil {
		logr.Fatal("validator setup failed", zap.Error(err))
	}

	enrollmentRepo := repository.NewEnrollmentRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	pricingSvc := service.NewPricingService(enrollmentRepo, cacheRepo, cfg.Pricing, logr)
	notifierSvc := service.NewNotifierService(cfg.SMTP)
	checkoutSvc := service.NewCheckoutService(enrollmentRepo, mp, pricingSvc, notifierSvc, metricsSvc, logr)
	authSvc := service.NewAuthService(userRepo, cfg.Auth, logr)
	adminSvc := service.NewAdminService(enrollmentRepo, export.NewCSVExporter(), export.NewPDFExporter())

	checkoutHandler := handler.NewCheckoutHandler(checkoutSvc, validate, logr)
	authHandler := handler.NewAuthHandler(authSvc, validate)
	adminHandler := handler.NewAdminHandler(adminSvc)
	healthHandler := handler.NewHealthHandler(db, redisClient, cfg.Env)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	limiter := ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	public := api.Group("/enrollment", limiter.Handler())
	public.POST("/register", checkoutHandler.Register)
	public.GET("/status/:paymentId", checkoutHandler.Status)
	public.GET("/existing", checkoutHandler.Existing)

	api.POST("/auth/login", authHandler.Login)

	admin := api.Group("/admin", middleware.JWTAuth(authSvc), middleware.RequireRole(models.RoleAdmin))
	admin.GET("/enrollments", adminHandler.List)
	admin.GET("/enrollments/export", adminHandler.Export)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
