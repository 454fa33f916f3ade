package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/naughty-assistant/pkg/errors"
	"github.com/kart-io/naughty-assistant/pkg/utils/response"
)

// Recovery converts panics into an ErrPanic response. The full stack is
// logged; only the panic value reaches the client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			logger.Errorw("panic recovered",
				"panic", r,
				"stack_trace", string(debug.Stack()),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"request_id", GetRequestID(c.Request.Context()),
			)

			body, status := response.Err(errors.ErrPanic.WithMessage(fmt.Sprintf("panic: %v", r)))
			c.AbortWithStatusJSON(status, body)
		}()
		c.Next()
	}
}
