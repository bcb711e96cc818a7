// Idempotency-key plumbing for message sends.
//
// POST /chats/:id/messages is the one unsafe endpoint where a client
// retry must not duplicate work: a resent message shows up twice in the
// conversation. Clients attach an Idempotency-Key header; this
// middleware validates it, stashes it in the request context, and asks a
// pluggable lookup whether the send already completed. On a hit it flags
// the request as a replay and exempts it from rate limiting. Serving the
// stored message stays with the handler; persistence stays behind the
// lookup. The middleware itself never touches storage.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header carrying the client's retry
// key. The value must be stable across retries of one logical send.
const HeaderIdempotencyKey = "Idempotency-Key"

// Context keys for idempotency state, read through the accessors below.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

// GetIdempotencyKey returns the key validated and stashed by
// IdempotencyValidator, with presence in the second value. Handlers
// should read the key through here rather than from the header.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether the lookup recognized this request as a retry
// of a completed send. Handlers may then return the stored message
// instead of appending a new one.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions bounds what the header may contain. Expiry is not
// handled here; the lookup owns the TTL window.
type IdempotencyOptions struct {
	// MaxLen caps the key length; <= 0 defaults to 200.
	MaxLen int
	// Pattern restricts the key alphabet. Nil defaults to an
	// RFC 7230-flavored token class: ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
}

// IdempotencyLookup reports whether a still-valid completed send exists
// for (userID, chatID, key) at now. Errors mean the lookup itself
// failed and must not block the request.
type IdempotencyLookup func(ctx context.Context, userID, chatID, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header when
// present, stashes the key, and consults the lookup for a prior
// completed send. Requests without the header pass through untouched; a
// malformed key is a 400; a lookup hit sets the replay and rate-bypass
// flags and continues into the handler.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "bad_idempotency_key",
				"message": "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			// The send route is POST /chats/:id/messages; :id is the chat.
			chatID := c.Param("id")
			exists, _ := lookup(c.Request.Context(), userIDFromCtx(c), chatID, key, time.Now().UTC())
			if exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}

// userIDFromCtx reads the authenticated identity planted by upstream
// auth middleware, with the demo fallback used across the API.
func userIDFromCtx(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "demo-user"
}
