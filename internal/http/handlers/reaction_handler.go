// Reaction HTTP handlers.
//
// This file exposes REST endpoints for message reactions:
//   - POST   /messages/{id}/reactions  (toggle, the exclusive path)
//   - PUT    /messages/{id}/reactions  (add without the sweep)
//   - DELETE /messages/{id}/reactions  (remove, emoji via query param)
//
// Toggle is what interactive clients use: it enforces at most one active
// reaction per user per message. Add and Remove exist for sync-style clients
// that replay explicit state.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/avelora/chat-core/internal/domain"
)

// maxEmojiRunes bounds the reaction key. Real emoji sequences (ZWJ chains,
// skin tone modifiers) stay well under this.
const maxEmojiRunes = 16

//
// DTOs
//

// ReactionRequest is the JSON payload for toggling or adding a reaction.
type ReactionRequest struct {
	// Emoji is the reaction key, an emoji sequence or shortcode.
	Emoji string `json:"emoji" binding:"required" example:"👍"`
}

// ReactionsResponse carries the message's full reaction map after a change.
type ReactionsResponse struct {
	MessageID string             `json:"message_id"`
	Reactions domain.ReactionMap `json:"reactions"`
}

// validEmoji rejects blank and oversized reaction keys.
func validEmoji(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > maxEmojiRunes {
		return "", false
	}
	return s, true
}

//
// Handlers
//

// ToggleReaction godoc
// @ID          toggleReaction
// @Summary     Toggle a reaction
// @Description Flips the caller's reaction on the message. Repeating the same emoji removes it; a different emoji replaces the caller's previous one.
// @Tags        Reactions
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Message ID (UUID)"  format(uuid)
// @Param       body       body    handlers.ReactionRequest  true  "Reaction payload"
//
// @Success     200  {object} handlers.ReactionsResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Not a member"
// @Failure     404  {object} handlers.ErrorResponse "Message not found"
// @Failure     409  {object} handlers.ErrorResponse "Message deleted"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /messages/{id}/reactions [post]
func (h *Handlers) ToggleReaction(c *gin.Context) {
	h.reactionChange(c, h.reactSvc.Toggle)
}

// AddReaction godoc
// @ID          addReaction
// @Summary     Add a reaction
// @Description Inserts the reaction if absent. Unlike toggle, it does not displace the caller's other reactions.
// @Tags        Reactions
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Message ID (UUID)"  format(uuid)
// @Param       body       body    handlers.ReactionRequest  true  "Reaction payload"
//
// @Success     200  {object} handlers.ReactionsResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Not a member"
// @Failure     404  {object} handlers.ErrorResponse "Message not found"
// @Failure     409  {object} handlers.ErrorResponse "Message deleted"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /messages/{id}/reactions [put]
func (h *Handlers) AddReaction(c *gin.Context) {
	h.reactionChange(c, h.reactSvc.Add)
}

// reactionChange is the shared body of the toggle and add endpoints.
func (h *Handlers) reactionChange(c *gin.Context, apply func(ctx context.Context, messageID, userID, emoji string) (domain.ReactionMap, error)) {
	msgID, okID := requireUUID(c, "id", "message id")
	if !okID {
		return
	}

	var req ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	emoji, okEmoji := validEmoji(req.Emoji)
	if !okEmoji {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "emoji required")
		return
	}

	reactions, err := apply(c.Request.Context(), msgID, userID(c), emoji)
	if err != nil {
		failService(c, err, ErrCodeUpdateFailed)
		return
	}
	ok(c, http.StatusOK, ReactionsResponse{MessageID: msgID, Reactions: reactions})
}

// RemoveReaction godoc
// @ID          removeReaction
// @Summary     Remove a reaction
// @Description Deletes the caller's reaction with the given emoji, passed as the `emoji` query parameter. Removing an absent reaction is a no-op.
// @Tags        Reactions
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Message ID (UUID)"  format(uuid)
// @Param       emoji      query   string  true  "Reaction key"  example(👍)
//
// @Success     200  {object} handlers.ReactionsResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Not a member"
// @Failure     404  {object} handlers.ErrorResponse "Message not found"
// @Failure     409  {object} handlers.ErrorResponse "Message deleted"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /messages/{id}/reactions [delete]
func (h *Handlers) RemoveReaction(c *gin.Context) {
	msgID, okID := requireUUID(c, "id", "message id")
	if !okID {
		return
	}
	emoji, okEmoji := validEmoji(c.Query("emoji"))
	if !okEmoji {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "emoji query parameter required")
		return
	}

	reactions, err := h.reactSvc.Remove(c.Request.Context(), msgID, userID(c), emoji)
	if err != nil {
		failService(c, err, ErrCodeUpdateFailed)
		return
	}
	ok(c, http.StatusOK, ReactionsResponse{MessageID: msgID, Reactions: reactions})
}
