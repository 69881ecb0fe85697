package http

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.Use(RequestID(), CORS())

	api := router.Group("/api/v1")
	{
		api.GET("/search/:isin", handler.SearchByISIN)
		api.POST("/search/batch", handler.SearchBatch)

		api.GET("/quote/:symbol", handler.GetQuote)
		api.POST("/quote/batch", handler.QuoteBatch)
	}

	router.GET("/health", handler.Health)
	router.GET("/", handler.Root)
}

// RequestID tags every request with an id, propagated to the response so
// log lines and client reports can be correlated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// CORS allows cross-origin access; this is an internal aggregation service.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
