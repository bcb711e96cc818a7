package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avelora/chat-core/internal/services"
)

func TestSetPresence_Statuses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// missing online field -> 400 (binding requires the key)
	{
		h := newStubHandlers(nil, nil, nil, nil, nil)
		r := gin.New()
		r.PUT("/presence", h.SetPresence)
		if w := perform(r, http.MethodPut, "/presence", `{}`); w.Code != http.StatusBadRequest {
			t.Fatalf("missing online -> %d", w.Code)
		}
	}

	// success -> 204, args forwarded; "false" must bind, not 400
	{
		var gotUser string
		var gotOnline bool
		h := newStubHandlers(nil, nil, nil, nil, stubPresSvc{
			set: func(_ context.Context, u string, online bool) error {
				gotUser, gotOnline = u, online
				return nil
			},
		})
		r := gin.New()
		r.PUT("/presence", h.SetPresence)
		if w := perform(r, http.MethodPut, "/presence", `{"online":false}`); w.Code != http.StatusNoContent {
			t.Fatalf("set presence -> %d body=%s", w.Code, w.Body.String())
		}
		if gotUser != "u1" || gotOnline {
			t.Fatalf("service args mismatch: %q %v", gotUser, gotOnline)
		}
	}
}

func TestGetPresence_Payload(t *testing.T) {
	gin.SetMode(gin.TestMode)

	seen := time.Now().UTC().Truncate(time.Second)
	h := newStubHandlers(nil, nil, nil, nil, stubPresSvc{
		get: func(_ context.Context, u string) services.Presence {
			return services.Presence{UserID: u, Online: true, LastSeen: seen}
		},
	})
	r := gin.New()
	r.GET("/presence/:user_id", h.GetPresence)

	w := perform(r, http.MethodGet, "/presence/u2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get presence -> %d", w.Code)
	}
	var out services.Presence
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.UserID != "u2" || !out.Online || !out.LastSeen.Equal(seen) {
		t.Fatalf("payload mismatch: %+v", out)
	}
}

func TestListPresence_EmptyArray(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := newStubHandlers(nil, nil, nil, nil, nil)
	r := gin.New()
	r.GET("/presence", h.ListPresence)

	w := perform(r, http.MethodGet, "/presence", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list presence -> %d", w.Code)
	}
	var out ListPresenceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Chats == nil || len(out.Chats) != 0 {
		t.Fatalf("expected empty array: %s", w.Body.String())
	}
}
