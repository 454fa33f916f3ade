package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/kart-io/naughty-assistant/pkg/infra/tracing"
)

// Tracing starts one server span per request, continuing any W3C trace
// context sent by the caller. Paths in skip are not traced.
func Tracing(skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}

	return func(c *gin.Context) {
		req := c.Request
		if _, ok := skipped[req.URL.Path]; ok {
			c.Next()
			return
		}

		ctx := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))
		route := c.FullPath()
		if route == "" {
			route = req.URL.Path
		}
		ctx, span := tracing.StartServerSpan(ctx, fmt.Sprintf("%s %s", req.Method, route),
			semconv.HTTPMethod(req.Method),
			semconv.HTTPRoute(route),
			semconv.HTTPTarget(req.URL.Path),
			semconv.ServerAddress(req.Host),
			semconv.UserAgentOriginal(req.UserAgent()),
			attribute.String(tracing.AttrRequestID, GetRequestID(req.Context())),
		)
		defer span.End()

		c.Request = req.WithContext(ctx)
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(semconv.HTTPStatusCode(status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
