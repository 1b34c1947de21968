package http

import (
	"github.com/gin-gonic/gin"
	"github.com/solarchat/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/chat", handler.Chat)

		// The search endpoint keeps its historical GET form alongside the
		// JSON body form.
		v1.GET("/search", handler.SearchProducts)
		v1.POST("/search", handler.SearchProducts)

		products := v1.Group("/products")
		{
			products.GET("", handler.ListProducts)
			products.GET("/:artikelnummer", handler.GetProduct)
			products.GET("/:artikelnummer/pricing", handler.GetProductPricing)
		}

		v1.POST("/compare", handler.CompareProducts)
		v1.POST("/storage/recommendation", handler.StorageRecommendation)

		prompts := v1.Group("/prompts")
		{
			prompts.GET("", handler.ListPrompts)
			prompts.POST("/reload", handler.ReloadPrompts)
			prompts.GET("/:id", handler.GetPrompt)
			prompts.PUT("/:id", handler.UpdatePrompt)
		}
	}

	return router
}
