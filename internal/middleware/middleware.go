package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Jeomhps/projet-IAC/reservations-api/internal/metrics"
)

const (
	// HeaderRequestID is read from the request when present and echoed on the response.
	HeaderRequestID = "X-Request-ID"
	// KeyRequestID is the gin context key holding the request id.
	KeyRequestID = "request_id"
	// KeyUser holds the userName of an accepted token. The reservation handler sets it.
	KeyUser = "user"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(KeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		user := c.GetString(KeyUser)
		if user == "" {
			user = "-"
		}
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString(KeyRequestID),
			"user", user,
		)
	}
}

// Metrics records request counts and latency labelled by route pattern.
func Metrics(m *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
