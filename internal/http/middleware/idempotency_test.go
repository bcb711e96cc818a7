package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestIdempotencyAccessors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	if k, ok := GetIdempotencyKey(c); k != "" || ok {
		t.Fatalf("key must be absent on a fresh context, got %q", k)
	}
	if IsReplay(c) {
		t.Fatalf("replay flag must default to false")
	}

	// A non-string stashed under the key reads as absent.
	c.Set(ctxKeyIdemKey, 123)
	if _, ok := GetIdempotencyKey(c); ok {
		t.Fatalf("non-string key value must read as absent")
	}

	c.Set(ctxKeyIdemReplay, true)
	if !IsReplay(c) {
		t.Fatalf("replay flag not read back")
	}
	c.Set(ctxKeyIdemReplay, "yes")
	if IsReplay(c) {
		t.Fatalf("non-bool replay flag must read false")
	}

	// Identity resolution: demo fallback, then the real id, then the
	// fallback again when the context holds garbage.
	if got := userIDFromCtx(c); got != "demo-user" {
		t.Fatalf("fallback identity = %q", got)
	}
	c.Set("userID", "u1")
	if got := userIDFromCtx(c); got != "u1" {
		t.Fatalf("context identity = %q", got)
	}
	c.Set("userID", 42)
	if got := userIDFromCtx(c); got != "demo-user" {
		t.Fatalf("wrong-type identity = %q", got)
	}
}

func TestIdempotencyValidator_NoHeaderPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	lookupCalled := false
	lookup := func(context.Context, string, string, string, time.Time) (bool, error) {
		lookupCalled = true
		return false, nil
	}

	r := gin.New()
	r.Use(IdempotencyValidator(IdempotencyOptions{}, lookup))
	r.GET("/ping", func(c *gin.Context) {
		if _, ok := GetIdempotencyKey(c); ok {
			t.Fatalf("no key must be stashed without the header")
		}
		c.Status(http.StatusNoContent)
	})

	if w := serve(r, http.MethodGet, "/ping", nil); w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	if lookupCalled {
		t.Fatalf("lookup must not run without the header")
	}
}

func TestIdempotencyValidator_RejectsMalformedKeys(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("over the length cap", func(t *testing.T) {
		r := gin.New()
		r.Use(IdempotencyValidator(IdempotencyOptions{MaxLen: 5}, nil))
		r.POST("/send", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := serve(r, http.MethodPost, "/send", map[string]string{HeaderIdempotencyKey: "abcdef"})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if body["code"] != "bad_idempotency_key" {
			t.Fatalf("unexpected body: %v", body)
		}
	})

	t.Run("outside a custom alphabet", func(t *testing.T) {
		r := gin.New()
		r.Use(IdempotencyValidator(IdempotencyOptions{Pattern: regexp.MustCompile(`^[0-9]+$`)}, nil))
		r.POST("/send", func(c *gin.Context) { c.Status(http.StatusOK) })

		if w := serve(r, http.MethodPost, "/send", map[string]string{HeaderIdempotencyKey: "abc123"}); w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
	})
}

func TestIdempotencyValidator_StashesKeyWithoutLookup(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	// Zero options exercise the defaults: 200-char cap, token alphabet.
	r.Use(IdempotencyValidator(IdempotencyOptions{}, nil))
	r.POST("/send", func(c *gin.Context) {
		key, ok := GetIdempotencyKey(c)
		if !ok || key != "abc-123" {
			t.Fatalf("stashed key = %q ok=%v", key, ok)
		}
		if IsReplay(c) || IsRateBypass(c) {
			t.Fatalf("no flags may be set without a lookup")
		}
		c.Status(http.StatusOK)
	})

	if w := serve(r, http.MethodPost, "/send", map[string]string{HeaderIdempotencyKey: "abc-123"}); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestIdempotencyValidator_LookupMissAndHit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("miss leaves the request untouched", func(t *testing.T) {
		r := gin.New()
		lookup := func(_ context.Context, userID, chatID, key string, now time.Time) (bool, error) {
			if userID != "demo-user" {
				t.Fatalf("anonymous lookup identity = %q", userID)
			}
			if chatID != "c42" || key != "key-1" || now.IsZero() {
				t.Fatalf("lookup args: chat=%q key=%q now=%v", chatID, key, now)
			}
			return false, nil
		}
		r.Use(IdempotencyValidator(IdempotencyOptions{}, lookup))
		r.POST("/chats/:id/messages", func(c *gin.Context) {
			if IsReplay(c) || IsRateBypass(c) {
				t.Fatalf("flags set on a miss")
			}
			c.Status(http.StatusOK)
		})

		if w := serve(r, http.MethodPost, "/chats/c42/messages", map[string]string{HeaderIdempotencyKey: "key-1"}); w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
	})

	t.Run("hit flags replay and rate bypass", func(t *testing.T) {
		r := gin.New()
		r.Use(func(c *gin.Context) { c.Set("userID", "u9"); c.Next() })
		lookup := func(_ context.Context, userID, chatID, key string, _ time.Time) (bool, error) {
			if userID != "u9" || chatID != "abc" || key != "k-9" {
				t.Fatalf("lookup args: user=%q chat=%q key=%q", userID, chatID, key)
			}
			return true, nil
		}
		r.Use(IdempotencyValidator(IdempotencyOptions{}, lookup))
		r.POST("/chats/:id/messages", func(c *gin.Context) {
			if !IsReplay(c) || !IsRateBypass(c) {
				t.Fatalf("replay hit must set both flags")
			}
			c.Status(http.StatusOK)
		})

		if w := serve(r, http.MethodPost, "/chats/abc/messages", map[string]string{HeaderIdempotencyKey: "k-9"}); w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
	})
}
