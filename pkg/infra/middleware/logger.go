package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/naughty-assistant/pkg/infra/tracing"
	mwopts "github.com/kart-io/naughty-assistant/pkg/options/middleware"
)

// Logger returns an access log middleware that emits one structured
// "HTTP Request" entry per request.
func Logger(opts *mwopts.LoggerOptions) gin.HandlerFunc {
	skip := make(map[string]struct{})
	if opts != nil {
		for _, p := range opts.SkipPaths {
			skip[p] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skip[path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := []interface{}{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"remote_addr", c.ClientIP(),
			"latency", latency.String(),
			"latency_ms", latency.Milliseconds(),
		}
		if id := GetRequestID(c.Request.Context()); id != "" {
			fields = append(fields, "request_id", id)
		}
		if tid := tracing.TraceIDFromContext(c.Request.Context()); tid != "" {
			fields = append(fields, "trace_id", tid)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.Errorw("HTTP Request", fields...)
		case c.Writer.Status() >= 400:
			logger.Warnw("HTTP Request", fields...)
		default:
			logger.Infow("HTTP Request", fields...)
		}
	}
}
