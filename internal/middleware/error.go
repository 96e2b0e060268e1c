package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-queue-api/pkg/httputil"
)

// ErrorResponse is the body sent for errors that reach the middleware
// instead of being handled inline.
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorHandler is the safety net for errors attached via c.Error that no
// handler turned into a response. Handlers normally respond through
// httputil; anything left over lands here.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			log.Error().
				Err(e.Err).
				Str("request_id", requestID).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Msg("unhandled request error")
		}

		if c.Writer.Written() {
			return
		}

		last := c.Errors.Last().Err
		status := httputil.StatusFor(last)
		c.JSON(status, ErrorResponse{
			Code:      status,
			Message:   last.Error(),
			RequestID: requestID,
		})
	}
}
