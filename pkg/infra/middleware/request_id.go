package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

// HeaderXRequestID is the header name for request ID.
const HeaderXRequestID = "X-Request-ID"

// ContextKeyRequestID is the gin context key holding the request ID.
const ContextKeyRequestID = "request_id"

type requestIDKey struct{}

// RequestID returns a middleware that assigns each request an ID. An
// incoming X-Request-ID header is reused; otherwise a ULID is generated.
// The ID is echoed in the response header and stored in the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderXRequestID)
		if id == "" {
			id = ulid.Make().String()
		}

		c.Header(HeaderXRequestID, id)
		c.Set(ContextKeyRequestID, id)
		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), id))

		c.Next()
	}
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID returns the request ID from the context, or "".
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
