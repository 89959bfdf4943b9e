package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/use-agent/productinfo/config"
)

// CORS returns cross-origin middleware for the given policy.
//
// Requests without an Origin header pass through untouched. Under
// AllowOrigin, an origin that neither equals nor starts with the configured
// value is rejected with 403.
func CORS(policy config.CORSPolicy) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}

	if policy.Mode == config.CORSAllowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOriginFunc = policy.Allows
	}

	return cors.New(cfg)
}
