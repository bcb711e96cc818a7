// Package services – BlockService
//
// This file implements the BlockService, the registry of directional block
// edges between users. Chat creation consults it before opening a thread,
// and the listing endpoint exposes a user's own block list. Edges are
// stored directionally but queried symmetrically: either direction of an
// edge suppresses contact.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/avelora/chat-core/internal/domain"
	"github.com/avelora/chat-core/internal/repo"
)

// BlockService implements the use-cases around user blocking. It is
// context-aware and safe for concurrent use; all state lives in the
// backing store.
type BlockService struct {
	// DB is the database handle used for all blocking operations.
	DB *gorm.DB
}

// Block records that blockerID blocks blockedID. Blocking yourself fails
// with ErrSelfBlock. The operation is an idempotent upsert: re-blocking
// refreshes the edge's timestamp and never errors or duplicates.
func (s *BlockService) Block(ctx context.Context, blockerID, blockedID string) (*domain.BlockedUser, error) {
	if blockerID == blockedID {
		return nil, ErrSelfBlock
	}
	return repo.UpsertBlock(ctx, s.DB, blockerID, blockedID)
}

// Unblock removes the blockerID→blockedID edge. Unblocking a user that was
// never blocked yields ErrBlockNotFound.
func (s *BlockService) Unblock(ctx context.Context, blockerID, blockedID string) error {
	err := repo.DeleteBlock(ctx, s.DB, blockerID, blockedID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrBlockNotFound
	}
	return err
}

// IsBlocked reports whether a block edge exists between the two users in
// either direction.
func (s *BlockService) IsBlocked(ctx context.Context, userA, userB string) (bool, error) {
	return repo.BlockExists(ctx, s.DB, userA, userB)
}

// ListBlocked returns every user userID has blocked, newest first.
func (s *BlockService) ListBlocked(ctx context.Context, userID string) ([]domain.BlockedUser, error) {
	return repo.ListBlocked(ctx, s.DB, userID)
}
