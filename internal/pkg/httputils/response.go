// Package httputils provides HTTP utility functions.
package httputils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/naughty-assistant/pkg/utils/response"
)

// WriteResponse writes the response to the client.
// Errors become {"response": "<message>"} with the errno's HTTP status;
// any data, including a *response.Response, is written as the 200 body.
func WriteResponse(c *gin.Context, err error, data interface{}) {
	if err != nil {
		resp, status := response.FromError(err)
		_ = c.Error(err)
		c.JSON(status, resp)
		return
	}

	if data == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, data)
}
