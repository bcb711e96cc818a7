// Package services – ChatService
//
// This file implements the ChatService, the chat directory of the
// messaging core. It opens (or dedupes) 1:1 threads behind the block
// gate, mints the short public-facing chat id, lists a user's threads
// with previews and unread counts, and runs the soft-delete cascade when
// a party leaves.
//
// Service-level errors (e.g., ErrChatNotFound, ErrBlockedRelationship)
// are returned for predictable cases so handlers can map them to HTTP
// results consistently.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/avelora/chat-core/internal/domain"
	"github.com/avelora/chat-core/internal/repo"
	"github.com/avelora/chat-core/internal/utils"
)

// ChatRepo defines the repository contract required by ChatService.
// Implementations are responsible for persistence of chat aggregates.
type ChatRepo interface {
	// FindDirectChat returns the thread whose member set is exactly the two users.
	FindDirectChat(ctx context.Context, db *gorm.DB, userA, userB string) (*domain.Chat, error)

	// CreateChatWithMembers atomically inserts a chat plus its membership rows.
	CreateChatWithMembers(ctx context.Context, db *gorm.DB, cid, name, creatorID string, memberIDs []string) (*domain.Chat, error)

	// CIDExists probes the short-id namespace for collisions.
	CIDExists(ctx context.Context, db *gorm.DB, cid string) (bool, error)

	// GetChatForMember fetches a chat only when the user is a member.
	GetChatForMember(ctx context.Context, db *gorm.DB, chatID, userID string) (*domain.Chat, error)

	// ListMemberChats returns the user's visible threads, newest activity first.
	ListMemberChats(ctx context.Context, db *gorm.DB, userID string) ([]domain.Chat, error)
}

// BlockChecker is the slice of the blocking registry the directory needs:
// the symmetric existence check consulted before opening a thread.
type BlockChecker interface {
	IsBlocked(ctx context.Context, userA, userB string) (bool, error)
}

// ChatSummary is the listing shape consumed by the conversation sidebar:
// the thread, its membership rows (presence included), the newest visible
// message, and the caller's unread count.
type ChatSummary struct {
	Chat        domain.Chat         `json:"chat"`
	Members     []domain.ChatMember `json:"members"`
	LastMessage *domain.Message     `json:"last_message,omitempty"`
	UnreadCount int64               `json:"unread_count"`
}

// ChatService provides thread lifecycle operations: dedup-or-create,
// listing, visibility-checked fetch, and the leave/teardown cascade.
type ChatService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the chat repository used by this service.
	Repo ChatRepo
	// Blocks gates thread creation.
	Blocks BlockChecker

	// CIDLength is the length of generated short ids.
	CIDLength int
	// CIDAttempts bounds collision retries during short-id generation.
	CIDAttempts int
}

// NewChatService constructs a ChatService with the conventional short-id
// parameters (10 characters, 10 attempts).
func NewChatService(db *gorm.DB, r ChatRepo, blocks BlockChecker) *ChatService {
	return &ChatService{
		DB:          db,
		Repo:        r,
		Blocks:      blocks,
		CIDLength:   10,
		CIDAttempts: 10,
	}
}

// GetOrCreate returns the 1:1 thread between userID and otherUserID,
// creating it when absent. The boolean reports whether a new thread was
// created. Creation is refused with ErrBlockedRelationship when a block
// edge exists in either direction, even if a thread already exists.
func (s *ChatService) GetOrCreate(ctx context.Context, userID, otherUserID string) (*domain.Chat, bool, error) {
	blocked, err := s.Blocks.IsBlocked(ctx, userID, otherUserID)
	if err != nil {
		return nil, false, err
	}
	if blocked {
		return nil, false, ErrBlockedRelationship
	}

	existing, err := s.Repo.FindDirectChat(ctx, s.DB, userID, otherUserID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	cid, err := s.freeCID(ctx)
	if err != nil {
		return nil, false, err
	}
	chat, err := s.Repo.CreateChatWithMembers(ctx, s.DB, cid, "", userID, []string{userID, otherUserID})
	if err != nil {
		return nil, false, err
	}
	return chat, true, nil
}

// freeCID draws short ids until one is unused, giving up after the
// configured number of attempts with ErrCIDExhausted.
func (s *ChatService) freeCID(ctx context.Context) (string, error) {
	attempts := s.CIDAttempts
	if attempts <= 0 {
		attempts = 10
	}
	length := s.CIDLength
	if length <= 0 {
		length = 10
	}
	for i := 0; i < attempts; i++ {
		cid, err := utils.NewCID(length)
		if err != nil {
			return "", err
		}
		taken, err := s.Repo.CIDExists(ctx, s.DB, cid)
		if err != nil {
			return "", err
		}
		if !taken {
			return cid, nil
		}
	}
	return "", ErrCIDExhausted
}

// List returns the caller's visible threads ordered by last activity,
// each with members, last visible message, and the caller's unread count.
// Threads whose messages were all soft-deleted are omitted.
func (s *ChatService) List(ctx context.Context, userID string) ([]ChatSummary, error) {
	chats, err := s.Repo.ListMemberChats(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	out := make([]ChatSummary, 0, len(chats))
	for _, c := range chats {
		sum := ChatSummary{Chat: c}
		if members, err := repo.ListMembers(ctx, s.DB, c.ID); err == nil {
			sum.Members = members
		}
		if last, err := repo.LastVisibleMessage(ctx, s.DB, c.ID); err == nil {
			sum.LastMessage = last
		}
		if n, err := repo.UnreadCount(ctx, s.DB, c.ID, userID); err == nil {
			sum.UnreadCount = n
		}
		out = append(out, sum)
	}
	return out, nil
}

// Get fetches a chat by id for a member. Non-members receive
// ErrChatNotFound: threads the caller is not part of never leak.
func (s *ChatService) Get(ctx context.Context, chatID, userID string) (*domain.Chat, error) {
	c, err := s.Repo.GetChatForMember(ctx, s.DB, chatID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, err
	}
	return c, nil
}

// Delete runs the leave cascade for userID on chatID, transactionally:
//
//  1. every remaining message is soft-deleted on behalf of the caller
//     (delete-for-everyone, regardless of original author);
//  2. when the thread has at most two members, the caller's own
//     membership row is removed;
//  3. when no membership remains afterwards, the chat row itself is
//     hard-deleted together with its message rows.
//
// Leaving a 1:1 thread therefore tears it down fully once both sides have
// left, or immediately if the other side already had no membership.
func (s *ChatService) Delete(ctx context.Context, chatID, userID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member, err := repo.IsMember(ctx, tx, chatID, userID)
		if err != nil {
			return err
		}
		if !member {
			return ErrNotMember
		}

		now := time.Now().UTC()
		if err := repo.SoftDeleteAllInChat(ctx, tx, chatID, userID, now); err != nil {
			return err
		}

		count, err := repo.CountMembers(ctx, tx, chatID)
		if err != nil {
			return err
		}
		if count <= 2 {
			if err := repo.DeleteMember(ctx, tx, chatID, userID); err != nil {
				return err
			}
			count--
		}
		if count <= 0 {
			if err := repo.DeleteAllMembers(ctx, tx, chatID); err != nil {
				return err
			}
			if err := repo.DeleteChatRow(ctx, tx, chatID); err != nil {
				return err
			}
		}
		return nil
	})
}
