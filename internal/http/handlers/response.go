// Package handlers implements the HTTP surface of the chat API: chat
// directory, messages, reactions, blocking, unread counts, and presence.
//
// This file holds the shared response shape. Every endpoint answers
// either a plain JSON body on success or an ErrorResponse on failure,
// so clients can branch on the stable `code` field and correlate with
// server logs through `request_id`:
//
//	HTTP/1.1 403 Forbidden
//	{
//	  "request_id": "4f6c...",
//	  "code": "blocked",
//	  "message": "messaging is blocked between these users"
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avelora/chat-core/internal/http/middleware"
)

// ErrorResponse is the error envelope shared by all endpoints. Code is
// one of the errors.go constants; Message is safe to surface to end
// users. RequestID echoes the X-Request-ID correlation header.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"not_found"`
	Message   string `json:"message" example:"resource not found"`
}

// fail aborts the request with the error envelope. Server-side failures
// (>= 500) additionally land in the request-scoped log; client errors
// are the caller's problem and stay out of the logs.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail exposes the envelope to packages outside handlers; the router
// uses it for its NoRoute and NoMethod fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
