package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/productpicker/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *slog.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		rows := v1.Group("/rows")
		{
			rows.GET("", handler.ListRows)
			rows.POST("", handler.AddRow)
			rows.PUT("/order", handler.ReorderRows)
			rows.POST("/:id/move", handler.MoveRow)
			rows.PUT("/:id/discount", handler.SetDiscount)
			rows.DELETE("/:id/discount", handler.ClearDiscount)
		}

		// Dialog session of a row
		session := rows.Group("/:id/session")
		{
			session.POST("", handler.OpenSession)
			session.GET("", handler.GetSession)
			session.DELETE("", handler.DiscardSession)
			session.PUT("/query", handler.SetQuery)
			session.POST("/more", handler.FetchNext)
			session.PUT("/product", handler.ChooseProduct)
			session.PUT("/variant", handler.ToggleVariant)
			session.POST("/commit", handler.CommitSession)
		}
	}

	return router
}
