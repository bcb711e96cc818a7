package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRedactingLogger_MasksIdentityAndScrubsPII(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogs(t)

	r := gin.New()
	// Simulate the upstream RequestID middleware.
	r.Use(func(c *gin.Context) {
		c.Header(requestIDHeader, "rid-resp")
		c.Next()
	})
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}}))
	r.GET("/chats/:id/messages", func(c *gin.Context) { c.String(http.StatusOK, "[]") })

	q := "email=a.b+tag@example.com&phone=+1-555-123-4567&reply_to=123e4567-e89b-12d3-a456-426614174000"
	req := httptest.NewRequest(http.MethodGet, "/chats/42/messages?"+q, nil)
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Cookie", "sid=topsecret")
	req.Header.Set("X-User-ID", "freelancer-77")
	req.Header.Set("X-Api-Key", "shhh")
	req.Header.Set("X-Custom", "contact a@b.com msg 123e4567-e89b-12d3-a456-426614174000 call 555-123-4567")
	req.Header.Set(requestIDHeader, "rid-req")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	logs := buf.String()
	if !strings.Contains(logs, `"level":"info"`) {
		t.Fatalf("expected an info line:\n%s", logs)
	}
	// The route pattern keeps chat ids out of the path field.
	if !strings.Contains(logs, `"path":"/chats/:id/messages"`) {
		t.Fatalf("expected route pattern as path:\n%s", logs)
	}
	// The response-side correlation id wins over the request one.
	if !strings.Contains(logs, `"request_id":"rid-resp"`) {
		t.Fatalf("expected response-header request id:\n%s", logs)
	}
	// Query PII is pattern-scrubbed.
	for _, marker := range []string{"[REDACTED:email]", "[REDACTED:phone]", "[REDACTED:id]"} {
		if !strings.Contains(logs, marker) {
			t.Fatalf("missing %s in query scrub:\n%s", marker, logs)
		}
	}
	// Identity and credential headers are fully masked. X-User-ID is
	// built in; X-Api-Key came through MaskHeaders.
	for _, hdr := range []string{"Authorization", "Cookie", "X-User-Id", "X-Api-Key"} {
		if !strings.Contains(logs, `"`+hdr+`":"[REDACTED]"`) {
			t.Fatalf("%s not masked:\n%s", hdr, logs)
		}
	}
	if strings.Contains(logs, "freelancer-77") {
		t.Fatalf("user id leaked into logs:\n%s", logs)
	}
	// Unmasked headers still get pattern scrubbing.
	if !strings.Contains(logs, `"X-Custom":"contact [REDACTED:email] msg [REDACTED:id] call [REDACTED:phone]"`) {
		t.Fatalf("X-Custom not scrubbed:\n%s", logs)
	}
}

func TestRedactingLogger_LevelsAndRequestIDFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogs(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/warn", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/error", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	// No response-side id set, so the logger falls back to the request
	// header.
	w1 := serve(r, http.MethodGet, "/warn", map[string]string{requestIDHeader: "rid-warn"})
	if w1.Code != http.StatusNotFound {
		t.Fatalf("/warn -> %d", w1.Code)
	}
	w2 := serve(r, http.MethodGet, "/error", map[string]string{requestIDHeader: "rid-err"})
	if w2.Code != http.StatusInternalServerError {
		t.Fatalf("/error -> %d", w2.Code)
	}

	logs := buf.String()
	if !strings.Contains(logs, `"level":"warn"`) || !strings.Contains(logs, `"request_id":"rid-warn"`) {
		t.Fatalf("warn line wrong:\n%s", logs)
	}
	if !strings.Contains(logs, `"level":"error"`) || !strings.Contains(logs, `"request_id":"rid-err"`) {
		t.Fatalf("error line wrong:\n%s", logs)
	}
}

func Test_scrub_KeepsUUIDsWhole(t *testing.T) {
	// The UUID must be consumed as one token before the looser phone
	// pattern gets a chance at its digit groups.
	in := "before 123e4567-e89b-12d3-a456-426614174000 after"
	if got := scrub(in); got != "before [REDACTED:id] after" {
		t.Fatalf("scrub(%q) = %q", in, got)
	}
	if scrub("") != "" {
		t.Fatalf("scrub of empty string must stay empty")
	}
}
