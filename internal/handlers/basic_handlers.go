package handlers

import (
	"net/http"

	"zkdex-backend/internal/db"

	"github.com/gin-gonic/gin"
)

// HealthCheckHandler liveness probe
// GET /health
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "zkdex-backend",
		"version": "v1.0",
	})
}

// ReadinessHandler readiness probe, verifies the database connection
// GET /ready
func ReadinessHandler(c *gin.Context) {
	if db.DB == nil {
		// Memory driver, no database to probe.
		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
		})
		return
	}

	sqlDB, err := db.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database unreachable",
		})
		return
	}

	db.UpdateConnectionMetrics()

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}
