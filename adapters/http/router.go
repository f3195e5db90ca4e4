package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/khoahotran/career-compass/pkg/logger"
)

const ServiceName = "career-compass-api"

type RouterConfig struct {
	AuthHandler    *AuthHandler
	ProfileHandler *ProfileHandler
	CareerHandler  *CareerHandler
	AuthMiddleware gin.HandlerFunc
	AllowedOrigins []string
	Logger         logger.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		otelgin.Middleware(ServiceName),
		RequestLogger(cfg.Logger),
		MetricsMiddleware(),
		CORS(cfg.AllowedOrigins),
		ErrorMiddleware(cfg.Logger),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "healthy"}) })

		authGroup := api.Group("/auth")
		authGroup.POST("/register", cfg.AuthHandler.Register)
		authGroup.POST("/login", cfg.AuthHandler.Login)

		private := api.Group("")
		private.Use(cfg.AuthMiddleware)
		{
			private.GET("/profile", cfg.ProfileHandler.GetProfile)
			private.PUT("/profile", cfg.ProfileHandler.UpdateProfile)

			private.POST("/analyze-career", cfg.CareerHandler.AnalyzeCareer)
			private.POST("/search-career", cfg.CareerHandler.SearchCareer)
			private.GET("/analyses", cfg.CareerHandler.ListAnalyses)
		}
	}

	return router
}
