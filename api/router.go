package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/productinfo/api/handler"
	"github.com/use-agent/productinfo/api/middleware"
	"github.com/use-agent/productinfo/config"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain (global): Recovery → Logger → CORS.
// The CORS policy is resolved here once and never re-read per request.
func NewRouter(ex handler.ProductExtractor, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	policy := cfg.CORS.Policy()
	slog.Info("cors policy", "mode", policy.Mode.String(), "origin", policy.Origin)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.CORS(policy))

	r.GET("/", handler.Root())
	r.GET("/healthz", handler.Health(startTime))
	r.GET("/api/amazon-info", handler.ProductInfo(ex))

	return r
}
