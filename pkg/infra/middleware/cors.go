package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	mwopts "github.com/kart-io/naughty-assistant/pkg/options/middleware"
)

// CORS builds a gin-contrib/cors middleware from options.
func CORS(opts *mwopts.CORSOptions) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     opts.AllowMethods,
		AllowHeaders:     opts.AllowHeaders,
		ExposeHeaders:    opts.ExposeHeaders,
		AllowCredentials: opts.AllowCredentials,
		MaxAge:           time.Duration(opts.MaxAge) * time.Second,
	}
	if len(opts.AllowOrigins) == 1 && opts.AllowOrigins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = opts.AllowOrigins
	}
	return cors.New(cfg)
}
