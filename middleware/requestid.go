package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/homehelp/homehelp-api/models"
)

const requestIDKey = "request_id"

// RequestID reuses an inbound X-Request-ID or generates one, and echoes it on
// the request and the response. Upstream services use it to keep the id the
// gateway assigned.
func RequestID() gin.HandlerFunc {
	return requestID(true)
}

// EdgeRequestID always assigns a fresh id, replacing whatever the client sent.
// The gateway mounts it so every inbound request gets exactly one id.
func EdgeRequestID() gin.HandlerFunc {
	return requestID(false)
}

func requestID(reuse bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id string
		if reuse {
			id = c.GetHeader(HeaderRequestID)
		}
		if id == "" {
			id = uuid.NewString()
		}
		c.Request.Header.Set(HeaderRequestID, id)
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Set(requestIDKey, id)
		c.Next()
	}
}

// GetRequestID returns the correlation id of the request
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogger logs one line per request with its correlation id
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			slog.String("request_id", GetRequestID(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		}
		switch caller := GetCaller(c).(type) {
		case models.VerifiedCaller:
			attrs = append(attrs, slog.Uint64("user_id", uint64(caller.ID)))
		case models.UnverifiedCaller:
			attrs = append(attrs, slog.String("caller_hint", caller.Subject))
		}

		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request", attrs...)
	}
}
