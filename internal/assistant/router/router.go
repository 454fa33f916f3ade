// Package router wires the assistant handlers into a gin engine.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kart-io/naughty-assistant/internal/assistant/handler"
	"github.com/kart-io/naughty-assistant/pkg/infra/middleware"
	mwopts "github.com/kart-io/naughty-assistant/pkg/options/middleware"
)

// Config configures the engine. A nil Registerer or Gatherer disables
// request metrics and /metrics respectively.
type Config struct {
	Mode       string
	Middleware *mwopts.Options
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
	Namespace  string
}

// New builds the engine and registers the assistant routes.
func New(h *handler.Handler, cfg Config) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	mw := cfg.Middleware
	if mw == nil {
		mw = mwopts.NewOptions()
	}

	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestID(), middleware.Logger(mw.Logger))
	r.Use(middleware.Tracing("/healthz", "/metrics"))
	if mw.CORS != nil && mw.CORS.Enabled {
		r.Use(middleware.CORS(mw.CORS))
	}
	if cfg.Registerer != nil {
		r.Use(middleware.NewHTTPMetrics(cfg.Registerer, cfg.Namespace).Middleware())
	}
	if mw.RateLimit != nil && mw.RateLimit.Enabled {
		r.Use(middleware.RateLimit(mw.RateLimit))
	}

	r.POST("/chat", h.Chat)
	r.POST("/upload", h.Upload)
	r.POST("/semantic_search", h.SemanticSearch)
	r.GET("/plugins", h.Plugins)
	r.GET("/uploads", h.Uploads)
	r.GET("/healthz", h.Healthz)

	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	logger.Info("HTTP routes registered")
	return r
}
