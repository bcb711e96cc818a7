// Presence HTTP handlers.
//
// This file exposes REST endpoints for the presence tracker:
//   - PUT /presence            (set the caller online/offline)
//   - GET /presence/{user_id}  (read one user's presence)
//   - GET /presence            (per-chat presence for the caller's chats)
//
// Reads are advisory UI affordances. A user the store knows nothing about
// simply reads as offline; lookups never fail the request.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/avelora/chat-core/internal/services"
)

//
// DTOs
//

// SetPresenceRequest is the JSON payload for flipping the online flag.
type SetPresenceRequest struct {
	// Online is the new availability state.
	Online *bool `json:"online" binding:"required"`
}

// ListPresenceResponse wraps per-chat member presence.
type ListPresenceResponse struct {
	Chats []services.ChatPresence `json:"chats"`
}

//
// Handlers
//

// SetPresence godoc
// @ID          setPresence
// @Summary     Set presence
// @Description Marks the caller online or offline across all their chats and stamps last_seen.
// @Tags        Presence
// @Accept      json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.SetPresenceRequest  true  "Presence payload"
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /presence [put]
func (h *Handlers) SetPresence(c *gin.Context) {
	var req SetPresenceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Online == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "online (bool) required")
		return
	}
	if err := h.presSvc.Set(c.Request.Context(), userID(c), *req.Online); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		return
	}
	noContent(c)
}

// GetPresence godoc
// @ID          getPresence
// @Summary     Read a user's presence
// @Description Returns the online flag and last_seen for the given user. Unknown users read as offline.
// @Tags        Presence
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       user_id    path    string  true  "User ID"  example(user456)
//
// @Success     200  {object} services.Presence
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Router      /presence/{user_id} [get]
func (h *Handlers) GetPresence(c *gin.Context) {
	uid := strings.TrimSpace(c.Param("user_id"))
	if uid == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id required")
		return
	}
	ok(c, http.StatusOK, h.presSvc.Get(c.Request.Context(), uid))
}

// ListPresence godoc
// @ID          listPresence
// @Summary     Per-chat presence
// @Description Returns, for each of the caller's chats, the member rows with their online flags. Backs sidebar presence badges.
// @Tags        Presence
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object} handlers.ListPresenceResponse
// @Router      /presence [get]
func (h *Handlers) ListPresence(c *gin.Context) {
	chats := h.presSvc.ListChats(c.Request.Context(), userID(c))
	if chats == nil {
		chats = []services.ChatPresence{}
	}
	ok(c, http.StatusOK, ListPresenceResponse{Chats: chats})
}
