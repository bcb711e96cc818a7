// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Message
// model: the append-only log, soft deletion, read flags, unread counting,
// and reaction persistence.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/avelora/chat-core/internal/domain"
)

// CreateMessage inserts a new message row.
func CreateMessage(ctx context.Context, db *gorm.DB, chatID, authorID, content string, replyToID *string) (*domain.Message, error) {
	m := &domain.Message{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		AuthorID:  authorID,
		ReplyToID: replyToID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	return m, db.WithContext(ctx).Create(m).Error
}

// GetMessage fetches a message by ID, deleted or not.
func GetMessage(ctx context.Context, db *gorm.DB, id string) (*domain.Message, error) {
	var m domain.Message
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMessagesBefore returns up to limit non-deleted messages of a chat
// strictly older than before (exclusive cursor; nil means "from the top"),
// newest first. Callers reverse the slice for oldest→newest display order.
func ListMessagesBefore(ctx context.Context, db *gorm.DB, chatID string, before *time.Time, limit int) ([]domain.Message, error) {
	q := db.WithContext(ctx).
		Where("chat_id = ? AND deleted = ?", chatID, false)
	if before != nil {
		q = q.Where("created_at < ?", *before)
	}
	var out []domain.Message
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&out).Error
	return out, err
}

// LastVisibleMessage returns the newest non-deleted message of a chat, or
// ErrNotFound when every message was soft-deleted (or none exist).
func LastVisibleMessage(ctx context.Context, db *gorm.DB, chatID string) (*domain.Message, error) {
	var m domain.Message
	err := db.WithContext(ctx).
		Where("chat_id = ? AND deleted = ?", chatID, false).
		Order("created_at DESC, id DESC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMessageContent rewrites the content and stamps the edited flags.
func UpdateMessageContent(ctx context.Context, db *gorm.DB, id, content string, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"content":   content,
			"edited":    true,
			"edited_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDeleteMessage marks one message deleted, recording the actor.
// Content is preserved.
func SoftDeleteMessage(ctx context.Context, db *gorm.DB, id, actorID string, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("id = ? AND deleted = ?", id, false).
		Updates(map[string]any{
			"deleted":    true,
			"deleted_at": at,
			"deleted_by": actorID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDeleteAllInChat marks every remaining visible message of a chat
// deleted on behalf of actorID (delete-for-everyone when a party leaves).
func SoftDeleteAllInChat(ctx context.Context, db *gorm.DB, chatID, actorID string, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("chat_id = ? AND deleted = ?", chatID, false).
		Updates(map[string]any{
			"deleted":    true,
			"deleted_at": at,
			"deleted_by": actorID,
		}).Error
}

// MarkMessagesRead bulk-flips read=true for the given ids, skipping any
// message authored by userID. Marking your own sent messages read from
// your own action is filtered out in SQL, not an error. Returns the number
// of rows actually flipped.
func MarkMessagesRead(ctx context.Context, db *gorm.DB, ids []string, userID string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("id IN ? AND author_id <> ?", ids, userID).
		Update("read", true)
	return res.RowsAffected, res.Error
}

// UnreadCount counts the non-deleted, unread messages of one chat that
// were not authored by userID.
func UnreadCount(ctx context.Context, db *gorm.DB, chatID, userID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("chat_id = ? AND deleted = ? AND read = ? AND author_id <> ?", chatID, false, false, userID).
		Count(&n).Error
	return n, err
}

// TotalUnreadCount aggregates UnreadCount across every chat userID is a
// member of.
func TotalUnreadCount(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("deleted = ? AND read = ? AND author_id <> ?", false, false, userID).
		Where("chat_id IN (SELECT chat_id FROM chat_members WHERE user_id = ?)", userID).
		Count(&n).Error
	return n, err
}

// RecentUnread returns unread, non-deleted, non-self-authored messages
// created after since, across every chat userID belongs to, oldest first.
// The digest dispatcher uses this as email context.
func RecentUnread(ctx context.Context, db *gorm.DB, userID string, since time.Time) ([]domain.Message, error) {
	var out []domain.Message
	err := db.WithContext(ctx).
		Where("deleted = ? AND read = ? AND author_id <> ?", false, false, userID).
		Where("chat_id IN (SELECT chat_id FROM chat_members WHERE user_id = ?)", userID).
		Where("created_at > ?", since).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// UpdateReactions persists a message's full reaction map.
func UpdateReactions(ctx context.Context, db *gorm.DB, id string, reactions domain.ReactionMap) error {
	res := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("id = ?", id).
		Update("reactions", datatypes.NewJSONType(reactions))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
