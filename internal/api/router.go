package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/hsi-patrimonio/inventory-api/internal/config"
	"github.com/hsi-patrimonio/inventory-api/internal/database"
	"github.com/hsi-patrimonio/inventory-api/internal/queue"
	"github.com/hsi-patrimonio/inventory-api/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, q *queue.ImportQueue, db *database.DB, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	importHandler := NewImportHandler(services, q, cfg, log)

	router.GET("/health", healthCheck(q, db))

	v1 := router.Group("/v1")
	{
		imports := v1.Group("/import")
		{
			imports.POST("/upload", importHandler.Upload)
			imports.POST("/detect", importHandler.Detect)
			imports.POST("/validate", importHandler.Validate)
			imports.POST("/commit", importHandler.Commit)
			imports.GET("/jobs/:id/status", importHandler.GetJobStatus)
			imports.GET("/jobs/:id/progress", importHandler.StreamProgress)
		}
	}

	return router
}

// healthCheck reports service, database and queue health
func healthCheck(q *queue.ImportQueue, db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		dbStatus := "healthy"
		if err := db.HealthCheck(ctx); err != nil {
			dbStatus = "unhealthy"
		}

		queueStatus := "healthy"
		pending, err := q.PendingCount(ctx)
		if err != nil {
			queueStatus = "unhealthy"
		}

		status := http.StatusOK
		overall := "healthy"
		if dbStatus != "healthy" || queueStatus != "healthy" {
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
		}

		c.JSON(status, gin.H{
			"status":       overall,
			"database":     dbStatus,
			"queue":        queueStatus,
			"pending_jobs": pending,
			"timestamp":    time.Now().Format(time.RFC3339),
			"service":      "inventory-api",
		})
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "erro interno",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
