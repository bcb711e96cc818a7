// Package services – PresenceService
//
// This file implements the PresenceService. Presence is global to a user
// but stored on every membership row they hold; the setter sweeps all
// rows in one statement so reads from any row agree. Lookups are
// advisory UI affordances: store failures are logged and reported as
// offline/empty rather than propagated.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/avelora/chat-core/internal/domain"
	"github.com/avelora/chat-core/internal/repo"
)

// Presence is the read shape for a user's availability.
type Presence struct {
	UserID   string    `json:"user_id"`
	Online   bool      `json:"online"`
	LastSeen time.Time `json:"last_seen"`
}

// ChatPresence carries per-chat online badges for the conversation list.
type ChatPresence struct {
	ChatID  string              `json:"chat_id"`
	Members []domain.ChatMember `json:"members"`
}

// PresenceService implements presence updates and lookups.
type PresenceService struct {
	// DB is the database handle used for all presence operations.
	DB *gorm.DB
}

// Set flips the online flag and stamps last_seen on every membership row
// of userID.
func (s *PresenceService) Set(ctx context.Context, userID string, online bool) error {
	return repo.SetPresenceAll(ctx, s.DB, userID, online, time.Now().UTC())
}

// Get returns the user's presence, read from an arbitrary membership row
// (the setter keeps them in lockstep). A user in no chats, or a store
// failure, reads as offline.
func (s *PresenceService) Get(ctx context.Context, userID string) Presence {
	m, err := repo.GetAnyMembership(ctx, s.DB, userID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Warn().Err(err).Str("user_id", userID).Msg("presence lookup failed")
		}
		return Presence{UserID: userID}
	}
	return Presence{UserID: userID, Online: m.Online, LastSeen: m.LastSeen}
}

// ListChats returns, for each of the caller's chats, the membership rows
// with their online flags, the data behind sidebar presence badges.
// Advisory path: failures are logged and reported as empty.
func (s *PresenceService) ListChats(ctx context.Context, userID string) []ChatPresence {
	chats, err := repo.ListMemberChats(ctx, s.DB, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("presence chat listing failed")
		return nil
	}
	out := make([]ChatPresence, 0, len(chats))
	for _, c := range chats {
		members, err := repo.ListMembers(ctx, s.DB, c.ID)
		if err != nil {
			continue
		}
		out = append(out, ChatPresence{ChatID: c.ID, Members: members})
	}
	return out
}
