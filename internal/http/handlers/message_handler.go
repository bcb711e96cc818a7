// Message HTTP handlers.
//
// This file exposes REST endpoints for messages inside a chat:
//   - POST   /chats/{id}/messages  (send, optionally as a reply)
//   - GET    /chats/{id}/messages  (list, paginated backwards in time)
//   - GET    /chats/{id}/unread    (per-chat unread count)
//   - PUT    /messages/{id}        (edit own message)
//   - DELETE /messages/{id}        (soft-delete own message)
//   - POST   /read-receipts        (mark messages read)
//   - GET    /unread               (total unread across chats)
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avelora/chat-core/internal/http/middleware"
	"github.com/avelora/chat-core/internal/repo"
	"github.com/avelora/chat-core/internal/services"
	"github.com/avelora/chat-core/internal/utils"
)

//
// DTOs
//

// SendMessageRequest is the JSON payload for sending a message.
type SendMessageRequest struct {
	// Content is the message body (1..N runes, N configured server-side).
	Content string `json:"content" binding:"required" example:"Hi, is the logo gig still open?"`
	// ReplyToID optionally references a message in the same chat.
	ReplyToID *string `json:"reply_to_id,omitempty" format:"uuid"`
}

// EditMessageRequest is the JSON payload for editing a message.
type EditMessageRequest struct {
	// Content is the replacement body.
	Content string `json:"content" binding:"required" example:"Hi, is the gig still open?"`
}

// MarkReadRequest is the JSON payload for marking messages read.
type MarkReadRequest struct {
	// MessageIDs are the messages to flag as read.
	MessageIDs []string `json:"message_ids" binding:"required,min=1"`
}

// MarkReadResponse reports how many rows the read sweep touched.
type MarkReadResponse struct {
	Updated int64 `json:"updated"`
}

// ListMessagesResponse wraps a page of messages, oldest first.
type ListMessagesResponse struct {
	Messages []services.MessageView `json:"messages"`
}

// UnreadResponse carries an unread counter.
type UnreadResponse struct {
	ChatID string `json:"chat_id,omitempty"`
	Unread int64  `json:"unread"`
}

//
// Handlers
//

// SendMessage godoc
// @ID          sendMessage
// @Summary     Send a message
// @Description Appends a message to the chat. A reply_to_id must point at an existing message in the same chat. Notification batching runs asynchronously and never affects the response.
// @Description Supports idempotency via the Idempotency-Key header (same key → the original message is replayed, not re-sent).
// @Tags        Messages
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       id               path    string  true  "Chat ID (UUID)"  format(uuid)
// @Param       body             body    handlers.SendMessageRequest  true  "Message payload"
//
// @Success     200  {object} domain.Message "Replayed from a previous send"
// @Success     201  {object} domain.Message
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Not a member"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /chats/{id}/messages [post]
func (h *Handlers) SendMessage(c *gin.Context) {
	ctx := c.Request.Context()

	chatID, okID := requireUUID(c, "id", "chat id")
	if !okID {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.ReplyToID != nil {
		if _, err := uuid.Parse(*req.ReplyToID); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "reply_to_id must be a UUID")
			return
		}
	}

	currentUser := userID(c)

	// Idempotency (replay path): a stored record for this key means the send
	// already happened; return the original message instead of appending twice.
	idemKey, _ := idempotencyKey(c)
	if idemKey != "" {
		if svc, okSvc := h.msgSvc.(*services.MessageService); okSvc && svc.DB != nil {
			if rec, err := repo.GetIdempotency(ctx, svc.DB, currentUser, chatID, idemKey, time.Now().UTC()); err == nil && rec != nil {
				if prev, err2 := repo.GetMessage(ctx, svc.DB, rec.MessageID); err2 == nil {
					c.Header("Idempotency-Replayed", "true")
					ok(c, http.StatusOK, prev)
					return
				}
			}
		}
	}

	msg, err := h.msgSvc.Send(ctx, currentUser, chatID, req.Content, req.ReplyToID)
	if err != nil {
		failService(c, err, ErrCodeSendFailed)
		return
	}

	// Idempotency (store path), best effort: a write failure here must not
	// fail the send that already committed.
	if idemKey != "" {
		if svc, okSvc := h.msgSvc.(*services.MessageService); okSvc && svc.DB != nil {
			_, _ = repo.CreateIdempotency(ctx, svc.DB, currentUser, chatID, idemKey, msg.ID, http.StatusCreated, 24*time.Hour)
		}
	}

	ok(c, http.StatusCreated, msg)
}

// idempotencyKey prefers the key validated and stashed by the idempotency
// middleware, falling back to the raw Idempotency-Key header when the
// middleware is not mounted (e.g., bare handlers under test).
func idempotencyKey(c *gin.Context) (string, bool) {
	if v, okKey := middleware.GetIdempotencyKey(c); okKey {
		return v, true
	}
	if v := strings.TrimSpace(c.GetHeader(middleware.HeaderIdempotencyKey)); v != "" {
		return v, true
	}
	return "", false
}

// ListMessages godoc
// @ID          listMessages
// @Summary     List messages
// @Description Returns visible messages oldest-first. Pass `before` (RFC3339) to page backwards in time; `limit` caps the page size.
// @Tags        Messages
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Chat ID (UUID)"  format(uuid)
// @Param       limit      query   int     false "Page size"  minimum(1) maximum(100) default(20)
// @Param       before     query   string  false "Only messages created before this RFC3339 timestamp"
//
// @Success     200  {object} handlers.ListMessagesResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Not a member"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /chats/{id}/messages [get]
func (h *Handlers) ListMessages(c *gin.Context) {
	chatID, okID := requireUUID(c, "id", "chat id")
	if !okID {
		return
	}

	limit := utils.AtoiDefault(c.Query("limit"), 0)
	if limit < 0 {
		limit = 0
	}
	if limit > 100 {
		limit = 100
	}

	var before *time.Time
	if raw := strings.TrimSpace(c.Query("before")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "before must be an RFC3339 timestamp")
			return
		}
		before = &t
	}

	msgs, err := h.msgSvc.List(c.Request.Context(), chatID, userID(c), limit, before)
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	if msgs == nil {
		msgs = []services.MessageView{}
	}
	ok(c, http.StatusOK, ListMessagesResponse{Messages: msgs})
}

// EditMessage godoc
// @ID          editMessage
// @Summary     Edit a message
// @Description Replaces the content of the caller's own message and flags it as edited. Deleted messages cannot be edited.
// @Tags        Messages
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Message ID (UUID)"  format(uuid)
// @Param       body       body    handlers.EditMessageRequest  true  "New content"
//
// @Success     200  {object} domain.Message
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Not the author"
// @Failure     404  {object} handlers.ErrorResponse "Message not found"
// @Failure     409  {object} handlers.ErrorResponse "Message deleted"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /messages/{id} [put]
func (h *Handlers) EditMessage(c *gin.Context) {
	msgID, okID := requireUUID(c, "id", "message id")
	if !okID {
		return
	}

	var req EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	msg, err := h.msgSvc.Edit(c.Request.Context(), msgID, userID(c), req.Content)
	if err != nil {
		failService(c, err, ErrCodeUpdateFailed)
		return
	}
	ok(c, http.StatusOK, msg)
}

// DeleteMessage godoc
// @ID          deleteMessage
// @Summary     Delete a message
// @Description Soft-deletes the caller's own message. The row is kept for reply anchoring; listings and counters skip it.
// @Tags        Messages
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Message ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Not the author"
// @Failure     404  {object} handlers.ErrorResponse "Message not found"
// @Failure     409  {object} handlers.ErrorResponse "Already deleted"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /messages/{id} [delete]
func (h *Handlers) DeleteMessage(c *gin.Context) {
	msgID, okID := requireUUID(c, "id", "message id")
	if !okID {
		return
	}
	if err := h.msgSvc.Delete(c.Request.Context(), msgID, userID(c)); err != nil {
		failService(c, err, ErrCodeDeleteFailed)
		return
	}
	noContent(c)
}

// MarkRead godoc
// @ID          markRead
// @Summary     Mark messages read
// @Description Flags the listed messages as read. Messages authored by the caller are silently skipped, so the endpoint is safe to call with a whole viewport.
// @Tags        Messages
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.MarkReadRequest  true  "Message IDs"
//
// @Success     200  {object} handlers.MarkReadResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /read-receipts [post]
func (h *Handlers) MarkRead(c *gin.Context) {
	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.MessageIDs) == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message_ids required")
		return
	}

	n, err := h.msgSvc.MarkRead(c.Request.Context(), userID(c), req.MessageIDs)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, MarkReadResponse{Updated: n})
}

// ChatUnread godoc
// @ID          chatUnread
// @Summary     Per-chat unread count
// @Description Returns the caller's unread count for one chat. Advisory: store failures read as zero.
// @Tags        Messages
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Chat ID (UUID)"  format(uuid)
//
// @Success     200  {object} handlers.UnreadResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Router      /chats/{id}/unread [get]
func (h *Handlers) ChatUnread(c *gin.Context) {
	chatID, okID := requireUUID(c, "id", "chat id")
	if !okID {
		return
	}
	n := h.msgSvc.UnreadCount(c.Request.Context(), chatID, userID(c))
	ok(c, http.StatusOK, UnreadResponse{ChatID: chatID, Unread: n})
}

// TotalUnread godoc
// @ID          totalUnread
// @Summary     Total unread count
// @Description Returns the caller's unread count across all chats. Advisory: store failures read as zero.
// @Tags        Messages
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object} handlers.UnreadResponse
// @Router      /unread [get]
func (h *Handlers) TotalUnread(c *gin.Context) {
	n := h.msgSvc.TotalUnread(c.Request.Context(), userID(c))
	ok(c, http.StatusOK, UnreadResponse{Unread: n})
}
