package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/productinfo/models"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Root returns a handler for GET /: a plain-text liveness message.
func Root() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "Amazon Affiliate Generator Backend is Running!")
	}
}

// Health returns a handler for GET /healthz.
func Health(startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: Version,
		})
	}
}
