// Package services – MessageService
//
// This file implements MessageService, the application-level component
// that owns the append-only message log: sending (with reply threading
// and the chat-preview update), cursor-paginated listing, author-gated
// edit and soft delete, read flags, and the unread counters derived from
// them.
//
// Sending also triggers the digest notification fan-out for the other
// chat members. That side effect is explicitly fire-and-forget: it runs
// on a detached goroutine, its failures are logged and swallowed, and it
// can neither fail nor roll back the send that triggered it.
//
// Observability: the send and list paths are OpenTelemetry-instrumented;
// spans include chat/user identifiers.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/avelora/chat-core/internal/domain"
	"github.com/avelora/chat-core/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// NotificationSink receives the post-send fan-out. Implementations must
// tolerate being called on a detached goroutine and must not panic their
// way back into the request path.
type NotificationSink interface {
	// RecordIncoming opens or extends the digest window of every chat
	// member other than senderID.
	RecordIncoming(ctx context.Context, chatID, senderID string)
}

// ReplyPreview is the projection attached to a message that replies to
// another: enough to render "replying to <author>" without leaking the
// target's full content.
type ReplyPreview struct {
	MessageID string `json:"message_id"`
	AuthorID  string `json:"author_id"`
}

// MessageView is a message plus its optional reply-target projection.
type MessageView struct {
	domain.Message
	ReplyTo *ReplyPreview `json:"reply_to,omitempty"`
}

// MessageService coordinates message persistence, visibility, and the
// unread accounting derived from read flags.
type MessageService struct {
	DB *gorm.DB

	// Notifier receives the fire-and-forget digest fan-out; nil disables it.
	Notifier NotificationSink

	// MaxContentRunes caps message content by rune length (0 = unlimited).
	MaxContentRunes int
	// PageSize is the default listing page size when the caller passes 0.
	PageSize int
	// NotifyTimeout bounds the detached notification call.
	NotifyTimeout time.Duration
}

// Send validates membership and the optional reply target, then persists
// the message and moves the chat's preview pointer in one transaction.
// After commit, the notification fan-out is launched detached.
func (s *MessageService) Send(ctx context.Context, userID, chatID, content string, replyToID *string) (*domain.Message, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Send",
		trace.WithAttributes(
			attribute.String("chat.id", chatID),
			attribute.String("user.id", userID),
		),
	)
	defer span.End()

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if s.MaxContentRunes > 0 && utf8.RuneCountInString(content) > s.MaxContentRunes {
		return nil, ErrTooLong
	}

	member, err := repo.IsMember(ctx, s.DB, chatID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotMember
	}

	if replyToID != nil {
		target, err := repo.GetMessage(ctx, s.DB, *replyToID)
		if err != nil || target.ChatID != chatID {
			return nil, ErrInvalidReply
		}
	}

	var msg *domain.Message
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := repo.CreateMessage(ctx, tx, chatID, userID, content, replyToID)
		if err != nil {
			return err
		}
		msg = m
		return repo.UpdateLastMessage(ctx, tx, chatID, m.ID, m.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	s.notifyAsync(chatID, userID)
	return msg, nil
}

// notifyAsync launches the digest fan-out on a detached goroutine. The
// request context is deliberately not propagated: the caller's response
// must not wait on, or be cancelled together with, this side effect.
func (s *MessageService) notifyAsync(chatID, senderID string) {
	if s.Notifier == nil {
		return
	}
	timeout := s.NotifyTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Str("chat_id", chatID).
					Msg("notification fan-out panicked")
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.Notifier.RecordIncoming(ctx, chatID, senderID)
	}()
}

// List returns up to limit visible messages of a chat strictly older than
// the before cursor (nil = newest page), ordered oldest→newest for
// append-at-bottom rendering. Non-members receive ErrNotMember. Messages
// that reply to another carry a ReplyPreview with the target's author.
func (s *MessageService) List(ctx context.Context, chatID, userID string, limit int, before *time.Time) ([]MessageView, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("chat.id", chatID),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	member, err := repo.IsMember(ctx, s.DB, chatID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotMember
	}

	if limit <= 0 {
		limit = s.PageSize
	}
	if limit <= 0 {
		limit = 20
	}

	msgs, err := repo.ListMessagesBefore(ctx, s.DB, chatID, before, limit)
	if err != nil {
		return nil, err
	}

	// Fetched newest-first for the cursor; reverse for display order.
	out := make([]MessageView, len(msgs))
	for i, m := range msgs {
		out[len(msgs)-1-i] = MessageView{Message: m}
	}
	for i := range out {
		if out[i].ReplyToID == nil {
			continue
		}
		if target, err := repo.GetMessage(ctx, s.DB, *out[i].ReplyToID); err == nil {
			out[i].ReplyTo = &ReplyPreview{MessageID: target.ID, AuthorID: target.AuthorID}
		}
	}
	return out, nil
}

// Edit rewrites a message's content. Only the original author may edit,
// and a soft-deleted message cannot be edited.
func (s *MessageService) Edit(ctx context.Context, messageID, userID, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if s.MaxContentRunes > 0 && utf8.RuneCountInString(content) > s.MaxContentRunes {
		return nil, ErrTooLong
	}

	m, err := repo.GetMessage(ctx, s.DB, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	if m.AuthorID != userID {
		return nil, ErrNotAuthor
	}
	if m.Deleted {
		return nil, ErrMessageDeleted
	}

	now := time.Now().UTC()
	if err := repo.UpdateMessageContent(ctx, s.DB, messageID, content, now); err != nil {
		return nil, err
	}
	m.Content = content
	m.Edited = true
	m.EditedAt = &now
	return m, nil
}

// Delete soft-deletes a single message. Only the original author may take
// this path; the delete-whole-chat cascade in ChatService soft-deletes
// regardless of author.
func (s *MessageService) Delete(ctx context.Context, messageID, userID string) error {
	m, err := repo.GetMessage(ctx, s.DB, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	if m.AuthorID != userID {
		return ErrNotAuthor
	}
	if m.Deleted {
		return ErrMessageDeleted
	}
	return repo.SoftDeleteMessage(ctx, s.DB, messageID, userID, time.Now().UTC())
}

// MarkRead flips read=true for the given ids on behalf of userID. Ids
// authored by the caller are filtered out in the store, so marking your
// own sent messages is a silent no-op. Returns the number of messages
// actually marked.
func (s *MessageService) MarkRead(ctx context.Context, userID string, messageIDs []string) (int64, error) {
	return repo.MarkMessagesRead(ctx, s.DB, messageIDs, userID)
}

// UnreadCount returns the caller's unread count for one chat. This is an
// advisory read path: store failures are logged and reported as zero.
func (s *MessageService) UnreadCount(ctx context.Context, chatID, userID string) int64 {
	n, err := repo.UnreadCount(ctx, s.DB, chatID, userID)
	if err != nil {
		log.Warn().Err(err).Str("chat_id", chatID).Msg("unread count lookup failed")
		return 0
	}
	return n
}

// TotalUnread returns the caller's unread count across all their chats.
// Advisory path: failures are logged and reported as zero.
func (s *MessageService) TotalUnread(ctx context.Context, userID string) int64 {
	n, err := repo.TotalUnreadCount(ctx, s.DB, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("total unread lookup failed")
		return 0
	}
	return n
}

// RecentUnread returns the caller's unread messages from the trailing
// window, oldest first. The digest dispatcher folds these into an email.
// Advisory path: failures are logged and reported as empty.
func (s *MessageService) RecentUnread(ctx context.Context, userID string, window time.Duration) []domain.Message {
	since := time.Now().UTC().Add(-window)
	msgs, err := repo.RecentUnread(ctx, s.DB, userID, since)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("recent unread lookup failed")
		return nil
	}
	return msgs
}
