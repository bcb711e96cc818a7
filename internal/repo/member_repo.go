// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// ChatMember model, including the presence columns it carries.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/avelora/chat-core/internal/domain"
)

// IsMember reports whether userID holds a membership row in chatID.
func IsMember(ctx context.Context, db *gorm.DB, chatID, userID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.ChatMember{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&n).Error
	return n > 0, err
}

// ListMembers returns all membership rows of a chat.
func ListMembers(ctx context.Context, db *gorm.DB, chatID string) ([]domain.ChatMember, error) {
	var out []domain.ChatMember
	err := db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Find(&out).Error
	return out, err
}

// ListMemberIDs returns the user ids of a chat's members.
func ListMemberIDs(ctx context.Context, db *gorm.DB, chatID string) ([]string, error) {
	var out []string
	err := db.WithContext(ctx).
		Model(&domain.ChatMember{}).
		Where("chat_id = ?", chatID).
		Pluck("user_id", &out).Error
	return out, err
}

// CountMembers returns the number of membership rows in a chat.
func CountMembers(ctx context.Context, db *gorm.DB, chatID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.ChatMember{}).
		Where("chat_id = ?", chatID).
		Count(&n).Error
	return n, err
}

// DeleteMember removes userID's membership row from chatID. Missing rows
// are not an error: the delete-chat path tolerates a party that already
// left.
func DeleteMember(ctx context.Context, db *gorm.DB, chatID, userID string) error {
	return db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Delete(&domain.ChatMember{}).Error
}

// DeleteAllMembers removes every membership row of a chat (teardown).
func DeleteAllMembers(ctx context.Context, db *gorm.DB, chatID string) error {
	return db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Delete(&domain.ChatMember{}).Error
}

// SetPresenceAll flips the online flag and stamps last_seen on every
// membership row held by userID, in one statement. Presence is global to
// the user even though it is stored per membership.
func SetPresenceAll(ctx context.Context, db *gorm.DB, userID string, online bool, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.ChatMember{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"online":    online,
			"last_seen": at,
		}).Error
}

// GetAnyMembership returns an arbitrary membership row for userID.
// Presence is kept consistent across rows, so any row answers a presence
// lookup. Returns ErrNotFound when the user is in no chats.
func GetAnyMembership(ctx context.Context, db *gorm.DB, userID string) (*domain.ChatMember, error) {
	var m domain.ChatMember
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}
