// Package middleware holds the Gin middleware chain of the chat API:
// correlation IDs, access logging, panic recovery, PII redaction,
// Prometheus metrics, per-user rate limiting, security headers, and
// idempotency-key handling for message sends.
//
// This file covers the observability trio. RequestID stamps every
// request with a correlation id, Logger emits one structured access log
// line per request and plants a request-scoped zerolog.Logger for
// handlers to enrich, and Recovery turns panics into the standard JSON
// 500 envelope. Mount them in that order so panic logs carry the id.
package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// requestIDKey is the Gin context key holding the correlation id.
	requestIDKey = "requestID"
	// requestIDHeader carries the correlation id on the wire.
	requestIDHeader = "X-Request-ID"
	// scopedLoggerKey is the Gin context key for the request logger.
	scopedLoggerKey = "logger"
	// maxQueryLogBytes caps how much of the raw query lands in a log line.
	maxQueryLogBytes = 2048
)

// RequestID reuses the client-supplied X-Request-ID or mints a UUIDv4,
// then stores it in the context and echoes it on the response so chat
// clients can quote it in bug reports.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// Logger emits one access log line per request and stores a
// request-scoped logger under the "logger" context key. The line carries
// the correlation id, the acting user, route, client metadata, and the
// response outcome. Level tracks the status: 5xx or collected Gin errors
// log at error, 4xx at warn, the rest at info.
//
// Mount after RequestID so the correlation id is populated.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rid, _ := c.Get(requestIDKey)
		uid, _ := c.Get("userID")
		route := c.FullPath()
		if route == "" {
			// Unmatched routes (404s) fall back to the raw path.
			route = c.Request.URL.Path
		}

		scoped := log.With().
			Str("request_id", ctxString(rid)).
			Str("user_id", ctxString(uid)).
			Str("method", c.Request.Method).
			Str("path", route).
			Str("remote_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Str("query", clip(c.Request.URL.RawQuery, maxQueryLogBytes)).
			Int64("bytes_in", c.Request.ContentLength).
			Logger()
		c.Set(scopedLoggerKey, &scoped)

		c.Next()

		status := c.Writer.Status()
		line := scoped.With().
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int("bytes_out", c.Writer.Size()).
			Logger()

		switch {
		case len(c.Errors) > 0:
			line.Error().Str("errors", c.Errors.String()).Msg("request")
		case status >= http.StatusInternalServerError:
			line.Error().Msg("request")
		case status >= http.StatusBadRequest:
			line.Warn().Msg("request")
		default:
			line.Info().Msg("request")
		}
	}
}

// Recovery logs the panic with its stack and answers with the standard
// error envelope, correlation id included. When a handler already wrote
// part of a response the body is left alone and only the status is
// forced to 500.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid, _ := c.Get(requestIDKey)
			log.Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("request_id", ctxString(rid)).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header("Content-Type", "application/json")
			c.Header(requestIDHeader, ctxString(rid))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": ctxString(rid),
				"code":       "internal_error",
				"message":    "internal server error",
			})
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger planted by Logger, or the
// global logger when none is attached. Never nil.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(scopedLoggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// ctxString unwraps a context value as a string, empty for any other type.
func ctxString(v any) string {
	s, _ := v.(string)
	return s
}

// clip bounds s to max bytes for logging, marking the cut with an
// ellipsis. max <= 0 disables clipping.
func clip(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
