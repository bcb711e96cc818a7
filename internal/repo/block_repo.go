// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// BlockedUser model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When an edge is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avelora/chat-core/internal/domain"
)

// UpsertBlock inserts the (blockerID, blockedID) edge or, when it already
// exists, refreshes its UpdatedAt timestamp. Re-blocking never errors and
// never duplicates the row.
func UpsertBlock(ctx context.Context, db *gorm.DB, blockerID, blockedID string) (*domain.BlockedUser, error) {
	now := time.Now().UTC()
	b := &domain.BlockedUser{
		ID:        uuid.NewString(),
		BlockerID: blockerID,
		BlockedID: blockedID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "blocker_id"}, {Name: "blocked_id"}},
			DoUpdates: clause.Assignments(map[string]any{"updated_at": now}),
		}).
		Create(b).Error
	if err != nil {
		return nil, err
	}
	return b, nil
}

// DeleteBlock removes the directional edge. It returns ErrNotFound when no
// such edge exists.
func DeleteBlock(ctx context.Context, db *gorm.DB, blockerID, blockedID string) error {
	res := db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&domain.BlockedUser{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// BlockExists reports whether a block edge exists between the two users in
// either direction. Storage is directional; the check is symmetric.
func BlockExists(ctx context.Context, db *gorm.DB, userA, userB string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.BlockedUser{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)",
			userA, userB, userB, userA).
		Count(&n).Error
	return n > 0, err
}

// ListBlocked returns every edge created by userID, newest first.
func ListBlocked(ctx context.Context, db *gorm.DB, userID string) ([]domain.BlockedUser, error) {
	var out []domain.BlockedUser
	err := db.WithContext(ctx).
		Where("blocker_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}
