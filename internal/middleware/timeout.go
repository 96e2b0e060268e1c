package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type TimeoutConfig struct {
	Duration time.Duration
}

func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{Duration: 30 * time.Second}
}

// Timeout bounds each request with a deadline. Handlers pass the request
// context down to the database and broker, so a blown deadline cancels
// the slow call itself; this middleware only translates the result into
// a 504 when nothing was written.
func Timeout(config TimeoutConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), config.Duration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, ErrorResponse{
				Code:      http.StatusGatewayTimeout,
				Message:   "request timed out",
				RequestID: c.GetString(ContextRequestID),
			})
		}
	}
}
