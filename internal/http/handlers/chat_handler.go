// Chat HTTP handlers.
//
// This file exposes REST endpoints for chat resources:
//   - POST   /chats        (open or reuse the 1:1 chat with another user)
//   - GET    /chats        (list the caller's chats with previews)
//   - GET    /chats/{id}   (fetch one chat)
//   - DELETE /chats/{id}   (leave / delete a chat)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. It also hosts the service
// contracts and shared helpers used by the sibling handler files.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/avelora/chat-core/internal/domain"
	"github.com/avelora/chat-core/internal/services"
)

//
// Service contracts (context-aware)
//

// ChatService defines chat lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type ChatService interface {
	// GetOrCreate returns the 1:1 chat between userID and otherUserID,
	// creating it when absent. The bool reports whether it was created.
	GetOrCreate(ctx context.Context, userID, otherUserID string) (*domain.Chat, bool, error)
	// List returns the caller's chats with members, last message, and
	// unread count attached.
	List(ctx context.Context, userID string) ([]services.ChatSummary, error)
	// Get fetches one chat the caller is a member of.
	Get(ctx context.Context, chatID, userID string) (*domain.Chat, error)
	// Delete removes the caller from the chat, cascading into message
	// soft-deletion and, for emptied chats, row removal.
	Delete(ctx context.Context, chatID, userID string) error
}

// MessageService defines message operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type MessageService interface {
	// Send appends a message to a chat, optionally replying to another.
	Send(ctx context.Context, userID, chatID, content string, replyToID *string) (*domain.Message, error)
	// List returns visible messages oldest-first, paginated backwards
	// from the `before` timestamp when given.
	List(ctx context.Context, chatID, userID string, limit int, before *time.Time) ([]services.MessageView, error)
	// Edit replaces the content of the caller's own message.
	Edit(ctx context.Context, messageID, userID, content string) (*domain.Message, error)
	// Delete soft-deletes the caller's own message.
	Delete(ctx context.Context, messageID, userID string) error
	// MarkRead marks the given messages read, skipping the caller's own.
	MarkRead(ctx context.Context, userID string, messageIDs []string) (int64, error)
	// UnreadCount returns the caller's unread total for one chat.
	UnreadCount(ctx context.Context, chatID, userID string) int64
	// TotalUnread returns the caller's unread total across all chats.
	TotalUnread(ctx context.Context, userID string) int64
}

// BlockService defines blocking operations consumed by HTTP handlers.
type BlockService interface {
	// Block records a directed block edge from blockerID to blockedID.
	Block(ctx context.Context, blockerID, blockedID string) (*domain.BlockedUser, error)
	// Unblock removes the edge; missing edges are an error.
	Unblock(ctx context.Context, blockerID, blockedID string) error
	// ListBlocked returns the users blocked by userID, newest first.
	ListBlocked(ctx context.Context, userID string) ([]domain.BlockedUser, error)
}

// ReactionService defines reaction operations consumed by HTTP handlers.
type ReactionService interface {
	// Toggle flips the caller's reaction, enforcing one reaction per user.
	Toggle(ctx context.Context, messageID, userID, emoji string) (domain.ReactionMap, error)
	// Add inserts the reaction if absent.
	Add(ctx context.Context, messageID, userID, emoji string) (domain.ReactionMap, error)
	// Remove deletes the reaction if present.
	Remove(ctx context.Context, messageID, userID, emoji string) (domain.ReactionMap, error)
}

// PresenceService defines presence operations consumed by HTTP handlers.
type PresenceService interface {
	// Set flips the caller's global online flag.
	Set(ctx context.Context, userID string, online bool) error
	// Get reads a user's presence; unknown users read as offline.
	Get(ctx context.Context, userID string) services.Presence
	// ListChats returns per-chat member presence for the caller's chats.
	ListChats(ctx context.Context, userID string) []services.ChatPresence
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for chats, messages, blocks, reactions,
// and presence. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	chatSvc  ChatService
	msgSvc   MessageService
	blockSvc BlockService
	reactSvc ReactionService
	presSvc  PresenceService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(chatSvc ChatService, msgSvc MessageService, blockSvc BlockService, reactSvc ReactionService, presSvc PresenceService) *Handlers {
	return &Handlers{
		chatSvc:  chatSvc,
		msgSvc:   msgSvc,
		blockSvc: blockSvc,
		reactSvc: reactSvc,
		presSvc:  presSvc,
	}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// OpenChatRequest is the JSON payload for opening a 1:1 chat.
type OpenChatRequest struct {
	// UserID is the other participant.
	UserID string `json:"user_id" binding:"required" example:"user456"`
}

// ListChatsResponse wraps the caller's chat summaries.
type ListChatsResponse struct {
	Chats []services.ChatSummary `json:"chats"`
}

//
// Helpers
//

// failService maps the well-known service sentinels onto HTTP responses and
// falls back to a 500 with the given code for everything else.
func failService(c *gin.Context, err error, fallbackCode string) {
	switch {
	case errors.Is(err, services.ErrChatNotFound),
		errors.Is(err, services.ErrMessageNotFound),
		errors.Is(err, services.ErrBlockNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrBlockedRelationship):
		fail(c, http.StatusForbidden, ErrCodeBlocked, err.Error())
	case errors.Is(err, services.ErrNotMember),
		errors.Is(err, services.ErrNotAuthor):
		fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case errors.Is(err, services.ErrMessageDeleted):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, services.ErrTooLong),
		errors.Is(err, services.ErrInvalidReply),
		errors.Is(err, services.ErrSelfBlock):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	default:
		fail(c, http.StatusInternalServerError, fallbackCode, err.Error())
	}
}

// requireUUID validates a path parameter as a UUID and writes a 400 on
// failure. It returns the id and whether validation passed.
func requireUUID(c *gin.Context, param, what string) (string, bool) {
	id := c.Param(param)
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, what+" must be a UUID")
		return "", false
	}
	return id, true
}

//
// Handlers
//

// OpenChat godoc
// @ID          openChat
// @Summary     Open a 1:1 chat
// @Description Returns the existing chat with the given user or creates it. 201 on creation, 200 on reuse.
// @Tags        Chats
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.OpenChatRequest  true  "Open chat payload"
//
// @Success     200  {object}  domain.Chat
// @Success     201  {object}  domain.Chat
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Blocked relationship"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chats [post]
func (h *Handlers) OpenChat(c *gin.Context) {
	var req OpenChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.UserID) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id required")
		return
	}

	ch, created, err := h.chatSvc.GetOrCreate(c.Request.Context(), userID(c), strings.TrimSpace(req.UserID))
	if err != nil {
		failService(c, err, ErrCodeCreateFailed)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ok(c, status, ch)
}

// ListChats godoc
// @ID          listChats
// @Summary     List chats
// @Description Returns the caller's chats ordered by last activity, each with members, last message, and unread count. Chats without visible messages are omitted.
// @Tags        Chats
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object} handlers.ListChatsResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /chats [get]
func (h *Handlers) ListChats(c *gin.Context) {
	items, err := h.chatSvc.List(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if items == nil {
		items = []services.ChatSummary{}
	}
	ok(c, http.StatusOK, ListChatsResponse{Chats: items})
}

// GetChat godoc
// @ID          getChat
// @Summary     Fetch a chat
// @Description Returns one chat the caller is a member of.
// @Tags        Chats
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Chat ID (UUID)"  format(uuid)
//
// @Success     200  {object} domain.Chat
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Chat not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /chats/{id} [get]
func (h *Handlers) GetChat(c *gin.Context) {
	chatID, okID := requireUUID(c, "id", "chat id")
	if !okID {
		return
	}
	ch, err := h.chatSvc.Get(c.Request.Context(), chatID, userID(c))
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, ch)
}

// DeleteChat godoc
// @ID          deleteChat
// @Summary     Delete a chat
// @Description Removes the caller from the chat. In a 1:1 chat this soft-deletes all messages; once the last member leaves, the chat row is removed.
// @Tags        Chats
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Chat ID (UUID)"  format(uuid)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     403  {object} handlers.ErrorResponse "Not a member"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /chats/{id} [delete]
func (h *Handlers) DeleteChat(c *gin.Context) {
	chatID, okID := requireUUID(c, "id", "chat id")
	if !okID {
		return
	}
	if err := h.chatSvc.Delete(c.Request.Context(), chatID, userID(c)); err != nil {
		failService(c, err, ErrCodeDeleteFailed)
		return
	}
	noContent(c)
}
