package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Paths hit by probes and scrapers every few seconds. Logging them drowns
// out the lines that matter.
var quietPaths = map[string]bool{
	"/api/v1/health/live":  true,
	"/api/v1/health/ready": true,
	"/api/v1/metrics":      true,
}

// Logger emits one access-log line per request. Request and response
// bodies are never logged; they carry patient names and contact details.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		if quietPaths[path] {
			return
		}

		status := c.Writer.Status()
		event := log.Info()
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		}

		if query != "" {
			path = path + "?" + query
		}

		event.
			Str("request_id", c.GetString(ContextRequestID)).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
