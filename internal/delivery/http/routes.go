package http

import (
	"github.com/gin-gonic/gin"

	"github.com/yumi/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, metrics *Metrics) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(metrics.Middleware())

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api")
	api.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		api.POST("/scan", handler.ScanProduct)

		api.GET("/profile", handler.GetProfile)
		api.POST("/profile", handler.SaveProfile)
		api.PUT("/profile", handler.SaveProfile)
		api.DELETE("/profile", handler.DeleteProfile)

		api.GET("/history", handler.GetHistory)

		cart := api.Group("/cart")
		{
			cart.GET("", handler.GetCart)
			cart.POST("", handler.AddToCart)
			cart.DELETE("/:id", handler.RemoveFromCart)
			cart.POST("/checkout", handler.Checkout)
		}
	}

	return router
}
