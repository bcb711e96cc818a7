// Package services – ReactionService
//
// This file implements the ReactionService, which governs the per-message
// emoji reaction map under the single rule "at most one active reaction
// per user per message". Toggle carries the cross-emoji exclusivity
// sweep; Add and Remove are the narrower primitives without it.
//
// Concurrency & atomicity:
//   - Every mutation is a read-modify-write of the serialized map, so it
//     runs inside a transaction; concurrent togglers on the same message
//     serialize at the store instead of losing updates.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/avelora/chat-core/internal/domain"
	"github.com/avelora/chat-core/internal/repo"
)

// ReactionService implements the use-cases around message reactions.
type ReactionService struct {
	// DB is the database handle used for all reaction operations.
	DB *gorm.DB
}

// Toggle flips userID's reaction on messageID. Reacting twice with the
// same emoji returns the map to its prior state; reacting with a new
// emoji first strips the user's other reaction. The resulting map is
// persisted and returned.
func (s *ReactionService) Toggle(ctx context.Context, messageID, userID, emoji string) (domain.ReactionMap, error) {
	return s.mutate(ctx, messageID, userID, func(m domain.ReactionMap) domain.ReactionMap {
		return m.Toggle(emoji, userID)
	})
}

// Add inserts the reaction if absent, without the exclusivity sweep.
func (s *ReactionService) Add(ctx context.Context, messageID, userID, emoji string) (domain.ReactionMap, error) {
	return s.mutate(ctx, messageID, userID, func(m domain.ReactionMap) domain.ReactionMap {
		return m.Add(emoji, userID)
	})
}

// Remove deletes the reaction if present, without the exclusivity sweep.
func (s *ReactionService) Remove(ctx context.Context, messageID, userID, emoji string) (domain.ReactionMap, error) {
	return s.mutate(ctx, messageID, userID, func(m domain.ReactionMap) domain.ReactionMap {
		return m.Remove(emoji, userID)
	})
}

// mutate loads the message inside a transaction, verifies the caller can
// see it (chat membership, not deleted), applies fn to the reaction map,
// and persists the result.
func (s *ReactionService) mutate(ctx context.Context, messageID, userID string, fn func(domain.ReactionMap) domain.ReactionMap) (domain.ReactionMap, error) {
	var result domain.ReactionMap
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := repo.GetMessage(ctx, tx, messageID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMessageNotFound
			}
			return err
		}
		if m.Deleted {
			return ErrMessageDeleted
		}
		member, err := repo.IsMember(ctx, tx, m.ChatID, userID)
		if err != nil {
			return err
		}
		if !member {
			return ErrNotMember
		}

		result = fn(m.Reactions.Data())
		return repo.UpdateReactions(ctx, tx, messageID, result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
