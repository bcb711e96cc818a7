package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/avelora/chat-core/internal/domain"
	"github.com/avelora/chat-core/internal/services"
)

func TestBlockUser_Statuses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// missing user_id -> 400
	{
		h := newStubHandlers(nil, nil, nil, nil, nil)
		r := gin.New()
		r.POST("/blocks", h.BlockUser)
		if w := perform(r, http.MethodPost, "/blocks", `{"user_id":"  "}`); w.Code != http.StatusBadRequest {
			t.Fatalf("blank id -> %d", w.Code)
		}
	}

	// self block -> 400
	{
		h := newStubHandlers(nil, nil, stubBlockSvc{
			block: func(context.Context, string, string) (*domain.BlockedUser, error) {
				return nil, services.ErrSelfBlock
			},
		}, nil, nil)
		r := gin.New()
		r.POST("/blocks", h.BlockUser)
		if w := perform(r, http.MethodPost, "/blocks", `{"user_id":"u1"}`); w.Code != http.StatusBadRequest {
			t.Fatalf("self block -> %d", w.Code)
		}
	}

	// success -> 201, edge echoed back
	{
		h := newStubHandlers(nil, nil, nil, nil, nil)
		r := gin.New()
		r.POST("/blocks", h.BlockUser)
		w := perform(r, http.MethodPost, "/blocks", `{"user_id":" u2 "}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("block -> %d body=%s", w.Code, w.Body.String())
		}
		var out domain.BlockedUser
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		if out.BlockerID != "u1" || out.BlockedID != "u2" {
			t.Fatalf("edge mismatch: %+v", out)
		}
	}
}

func TestUnblockUser_Statuses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := newStubHandlers(nil, nil, nil, nil, nil)
	r := gin.New()
	r.DELETE("/blocks/:id", h.UnblockUser)
	if w := perform(r, http.MethodDelete, "/blocks/u2", ""); w.Code != http.StatusNoContent {
		t.Fatalf("unblock -> %d", w.Code)
	}

	// missing edge -> 404
	h = newStubHandlers(nil, nil, stubBlockSvc{
		unblock: func(context.Context, string, string) error { return services.ErrBlockNotFound },
	}, nil, nil)
	r = gin.New()
	r.DELETE("/blocks/:id", h.UnblockUser)
	if w := perform(r, http.MethodDelete, "/blocks/stranger", ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing edge -> %d", w.Code)
	}
}

func TestListBlocks_EmptyArray(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := newStubHandlers(nil, nil, nil, nil, nil)
	r := gin.New()
	r.GET("/blocks", h.ListBlocks)

	w := perform(r, http.MethodGet, "/blocks", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list -> %d", w.Code)
	}
	var out ListBlocksResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Blocks == nil || len(out.Blocks) != 0 {
		t.Fatalf("expected empty array: %s", w.Body.String())
	}
}
