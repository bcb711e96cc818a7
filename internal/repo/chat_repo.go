// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Chat model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a chat is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Functions:
//
//   - CreateChatWithMembers(ctx, db, cid, creatorID, memberIDs) -> *domain.Chat, error
//     Inserts the Chat row plus one ChatMember row per party, atomically.
//
//   - FindDirectChat(ctx, db, userA, userB) -> *domain.Chat, error
//     Finds the thread whose member set is exactly {userA, userB}.
//
//   - CIDExists(ctx, db, cid) -> (bool, error)
//     Collision probe for short-ID generation.
//
//   - GetChatForMember(ctx, db, chatID, userID) -> *domain.Chat, error
//     Fetches a chat only when userID holds a membership row; a chat the
//     caller is not part of is indistinguishable from a missing one.
//
//   - ListMemberChats(ctx, db, userID) -> []domain.Chat, error
//     Active-membership chats with at least one visible message, ordered
//     by last activity descending.
//
//   - UpdateLastMessage(ctx, db, chatID, messageID, at) -> error
//     Moves the last-message pointer and bumps last_activity
//     (last-write-wins; no optimistic check).
//
// This repository is designed to be wrapped by a higher-level service
// (see services.ChatService) which enforces business rules such as block
// gating and the teardown cascade.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelora/chat-core/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateChatWithMembers inserts a new Chat row identified by cid together
// with a ChatMember row for every id in memberIDs, in one transaction.
func CreateChatWithMembers(ctx context.Context, db *gorm.DB, cid, name, creatorID string, memberIDs []string) (*domain.Chat, error) {
	now := time.Now().UTC()
	c := &domain.Chat{
		ID:           uuid.NewString(),
		CID:          cid,
		Name:         name,
		CreatorID:    creatorID,
		LastActivity: now,
		CreatedAt:    now,
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		for _, uid := range memberIDs {
			m := &domain.ChatMember{
				ChatID:    c.ID,
				UserID:    uid,
				LastSeen:  now,
				CreatedAt: now,
			}
			if err := tx.Create(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// FindDirectChat returns the chat whose membership set is exactly
// {userA, userB}. A group thread that merely contains both users does not
// match. Returns ErrNotFound when no such thread exists.
func FindDirectChat(ctx context.Context, db *gorm.DB, userA, userB string) (*domain.Chat, error) {
	var c domain.Chat
	err := db.WithContext(ctx).
		Where("EXISTS (SELECT 1 FROM chat_members m WHERE m.chat_id = chats.id AND m.user_id = ?)", userA).
		Where("EXISTS (SELECT 1 FROM chat_members m WHERE m.chat_id = chats.id AND m.user_id = ?)", userB).
		Where("(SELECT COUNT(*) FROM chat_members m WHERE m.chat_id = chats.id) = 2").
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CIDExists reports whether a chat already uses the given short id.
func CIDExists(ctx context.Context, db *gorm.DB, cid string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("cid = ?", cid).
		Count(&n).Error
	return n > 0, err
}

// GetChatForMember fetches a chat by id, but only when userID is an active
// member. A chat the caller is not part of yields ErrNotFound so that
// foreign threads never leak.
func GetChatForMember(ctx context.Context, db *gorm.DB, chatID, userID string) (*domain.Chat, error) {
	var c domain.Chat
	err := db.WithContext(ctx).
		Where("id = ?", chatID).
		Where("EXISTS (SELECT 1 FROM chat_members m WHERE m.chat_id = chats.id AND m.user_id = ?)", userID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListMemberChats returns the chats where userID holds a membership row and
// at least one non-deleted message exists, ordered by last activity
// descending. Threads whose messages were all soft-deleted drop out of the
// listing even though the rows persist.
func ListMemberChats(ctx context.Context, db *gorm.DB, userID string) ([]domain.Chat, error) {
	var out []domain.Chat
	err := db.WithContext(ctx).
		Where("EXISTS (SELECT 1 FROM chat_members m WHERE m.chat_id = chats.id AND m.user_id = ?)", userID).
		Where("EXISTS (SELECT 1 FROM messages msg WHERE msg.chat_id = chats.id AND msg.deleted = ?)", false).
		Order("last_activity desc").
		Find(&out).Error
	return out, err
}

// UpdateLastMessage moves the chat's preview pointer to messageID and bumps
// last_activity. Concurrent senders race here; the last write wins, which
// is the accepted behavior for the preview slot.
func UpdateLastMessage(ctx context.Context, db *gorm.DB, chatID, messageID string, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("id = ?", chatID).
		Updates(map[string]any{
			"last_message_id": messageID,
			"last_activity":   at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteChatRow hard-deletes the chat row plus all of its message rows.
// Only the teardown cascade calls this, inside a transaction, after the
// remaining membership rows were removed.
func DeleteChatRow(ctx context.Context, db *gorm.DB, chatID string) error {
	if err := db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Delete(&domain.Message{}).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).
		Where("id = ?", chatID).
		Delete(&domain.Chat{}).Error
}
