package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/career-compass/adapters/cache"
	"github.com/khoahotran/career-compass/adapters/event"
	httpAdapter "github.com/khoahotran/career-compass/adapters/http"
	"github.com/khoahotran/career-compass/adapters/llm"
	"github.com/khoahotran/career-compass/adapters/pdf"
	"github.com/khoahotran/career-compass/adapters/persistence"
	"github.com/khoahotran/career-compass/internal/application/service"
	authUC "github.com/khoahotran/career-compass/internal/application/usecase/auth"
	careerUC "github.com/khoahotran/career-compass/internal/application/usecase/career"
	profileUC "github.com/khoahotran/career-compass/internal/application/usecase/profile"
	"github.com/khoahotran/career-compass/internal/config"
	"github.com/khoahotran/career-compass/pkg/auth"
	"github.com/khoahotran/career-compass/pkg/logger"
	"github.com/khoahotran/career-compass/pkg/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer func() { _ = appLogger.Sync() }()
	appLogger.Info("Start Career Compass API Server...", zap.String("env", cfg.App.Env))

	if err := cfg.Validate(); err != nil {
		appLogger.Fatal("Invalid configuration", err)
	}

	shutdownTracing, err := tracing.Setup(cfg, appLogger, httpAdapter.ServiceName)
	if err != nil {
		appLogger.Fatal("Cannot init tracing", err)
	}

	// Initialize dependencies
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	var redisClient *redis.Client
	if rdb, err := persistence.NewRedisClient(cfg, appLogger); err != nil {
		appLogger.Warn("Redis unavailable, analyses history will not be cached", zap.Error(err))
	} else {
		redisClient = rdb
		defer redisClient.Close()
	}

	var publisher service.ProfileEventPublisher
	if kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger); err != nil {
		appLogger.Warn("Kafka disabled, uploaded CVs will not be archived", zap.Error(err))
	} else {
		publisher = kafkaClient
		defer kafkaClient.Close()
	}

	// Repositories
	userRepo := persistence.NewPostgresUserRepo(dbPool, appLogger)
	profileRepo := persistence.NewPostgresProfileRepo(dbPool, appLogger)
	analysisRepo := persistence.NewPostgresAnalysisRepo(dbPool, appLogger)

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	advisors, err := llm.NewGeminiAdvisorFactory(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize career advisor", err)
	}
	analysesCache := cache.NewRedisCache(redisClient, cfg.Redis.CacheTTL, appLogger)

	// Use Cases
	registerUseCase := authUC.NewRegisterUseCase(userRepo, jwtSvc, appLogger)
	loginUseCase := authUC.NewLoginUseCase(userRepo, jwtSvc, appLogger)
	authenticateUseCase := authUC.NewAuthenticateUseCase(userRepo, jwtSvc)
	profileUseCase := profileUC.NewProfileUseCase(profileRepo, pdf.NewParser(), publisher, appLogger)
	careerUseCase := careerUC.NewCareerUseCase(profileRepo, analysisRepo, advisors, analysesCache,
		careerUC.Options{AITimeout: cfg.Gemini.Timeout, CacheTTL: cfg.Redis.CacheTTL}, appLogger)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:    httpAdapter.NewAuthHandler(registerUseCase, loginUseCase, appLogger),
		ProfileHandler: httpAdapter.NewProfileHandler(profileUseCase, appLogger),
		CareerHandler:  httpAdapter.NewCareerHandler(careerUseCase, appLogger),
		AuthMiddleware: httpAdapter.AuthMiddleware(authenticateUseCase, appLogger),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Logger:         appLogger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		appLogger.Error("Failed to flush traces", err)
	}
}
