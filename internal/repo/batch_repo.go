// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// EmailBatch model backing the digest notification windows.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelora/chat-core/internal/domain"
)

// GetOpenBatch returns userID's unprocessed batch, or ErrNotFound when the
// previous one was processed (or none was ever opened).
func GetOpenBatch(ctx context.Context, db *gorm.DB, userID string) (*domain.EmailBatch, error) {
	var b domain.EmailBatch
	err := db.WithContext(ctx).
		Where("user_id = ? AND processed = ?", userID, false).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBatch opens a new collection window for userID anchored at
// firstMessageAt, with an initial count of one. The partial unique index
// on open batches turns a concurrent second opener into ErrDuplicate;
// callers fold into the surviving batch instead.
func CreateBatch(ctx context.Context, db *gorm.DB, userID string, firstMessageAt time.Time) (*domain.EmailBatch, error) {
	b := &domain.EmailBatch{
		ID:             uuid.NewString(),
		UserID:         userID,
		FirstMessageAt: firstMessageAt,
		MessageCount:   1,
		CreatedAt:      time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(b).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return b, nil
}

// IncrementBatch bumps the message counter with a storage-native atomic
// increment, so concurrent sends for the same recipient cannot lose
// updates. FirstMessageAt is deliberately untouched: the window stays
// anchored to the first message.
func IncrementBatch(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.EmailBatch{}).
		Where("id = ? AND processed = ?", id, false).
		Updates(map[string]any{"message_count": gorm.Expr("message_count + 1")})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListDueBatches returns unprocessed batches whose window opened at or
// before cutoff, oldest window first.
func ListDueBatches(ctx context.Context, db *gorm.DB, cutoff time.Time) ([]domain.EmailBatch, error) {
	var out []domain.EmailBatch
	err := db.WithContext(ctx).
		Where("processed = ? AND first_message_at <= ?", false, cutoff).
		Order("first_message_at asc").
		Find(&out).Error
	return out, err
}

// MarkBatchProcessed closes a batch. The next qualifying message for the
// user opens a fresh window.
func MarkBatchProcessed(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.EmailBatch{}).
		Where("id = ? AND processed = ?", id, false).
		Update("processed", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
