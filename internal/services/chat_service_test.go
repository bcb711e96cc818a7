package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/avelora/chat-core/internal/domain"
	"github.com/avelora/chat-core/internal/repo"
)

// newServiceDB opens a throwaway SQLite database with the full schema.
func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("services_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := db.AutoMigrate(
		&domain.BlockedUser{},
		&domain.Chat{},
		&domain.ChatMember{},
		&domain.Message{},
		&domain.EmailBatch{},
		&domain.Idempotency{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// dbChatRepo implements ChatRepo on top of the real repository functions.
type dbChatRepo struct{}

func (dbChatRepo) FindDirectChat(ctx context.Context, db *gorm.DB, a, b string) (*domain.Chat, error) {
	return repo.FindDirectChat(ctx, db, a, b)
}
func (dbChatRepo) CreateChatWithMembers(ctx context.Context, db *gorm.DB, cid, name, creatorID string, memberIDs []string) (*domain.Chat, error) {
	return repo.CreateChatWithMembers(ctx, db, cid, name, creatorID, memberIDs)
}
func (dbChatRepo) CIDExists(ctx context.Context, db *gorm.DB, cid string) (bool, error) {
	return repo.CIDExists(ctx, db, cid)
}
func (dbChatRepo) GetChatForMember(ctx context.Context, db *gorm.DB, chatID, userID string) (*domain.Chat, error) {
	return repo.GetChatForMember(ctx, db, chatID, userID)
}
func (dbChatRepo) ListMemberChats(ctx context.Context, db *gorm.DB, userID string) ([]domain.Chat, error) {
	return repo.ListMemberChats(ctx, db, userID)
}

func newTestChatService(db *gorm.DB) *ChatService {
	return NewChatService(db, dbChatRepo{}, &BlockService{DB: db})
}

func TestGetOrCreate_CreatesThenDedups(t *testing.T) {
	db := newServiceDB(t)
	svc := newTestChatService(db)
	ctx := context.Background()

	chat, created, err := svc.GetOrCreate(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if !created {
		t.Fatalf("first call should create")
	}
	if len(chat.CID) != 10 {
		t.Fatalf("expected 10-char cid, got %q", chat.CID)
	}

	// Same pair, either order, returns the same thread.
	again, created, err := svc.GetOrCreate(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}
	if created || again.ID != chat.ID {
		t.Fatalf("expected dedup to the existing chat: created=%v id=%s", created, again.ID)
	}
}

func TestGetOrCreate_BlockedInEitherDirection(t *testing.T) {
	db := newServiceDB(t)
	svc := newTestChatService(db)
	ctx := context.Background()

	// Existing chat does not exempt a blocked pair.
	if _, _, err := svc.GetOrCreate(ctx, "alice", "bob"); err != nil {
		t.Fatalf("setup chat: %v", err)
	}
	if _, err := repo.UpsertBlock(ctx, db, "bob", "alice"); err != nil {
		t.Fatalf("block: %v", err)
	}

	_, _, err := svc.GetOrCreate(ctx, "alice", "bob")
	if !errors.Is(err, ErrBlockedRelationship) {
		t.Fatalf("expected ErrBlockedRelationship, got %v", err)
	}
}

// exhaustedRepo reports every candidate cid as taken.
type exhaustedRepo struct{ dbChatRepo }

func (exhaustedRepo) CIDExists(context.Context, *gorm.DB, string) (bool, error) {
	return true, nil
}

func TestGetOrCreate_CIDExhaustion(t *testing.T) {
	db := newServiceDB(t)
	svc := NewChatService(db, exhaustedRepo{}, &BlockService{DB: db})

	_, _, err := svc.GetOrCreate(context.Background(), "alice", "bob")
	if !errors.Is(err, ErrCIDExhausted) {
		t.Fatalf("expected ErrCIDExhausted, got %v", err)
	}
}

func TestGet_NonMemberReadsAsNotFound(t *testing.T) {
	db := newServiceDB(t)
	svc := newTestChatService(db)
	ctx := context.Background()

	chat, _, err := svc.GetOrCreate(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	if _, err := svc.Get(ctx, chat.ID, "alice"); err != nil {
		t.Fatalf("member get: %v", err)
	}
	if _, err := svc.Get(ctx, chat.ID, "mallory"); !errors.Is(err, ErrChatNotFound) {
		t.Fatalf("expected ErrChatNotFound for outsider, got %v", err)
	}
}

func TestList_ComposesSummaries(t *testing.T) {
	db := newServiceDB(t)
	svc := newTestChatService(db)
	msgSvc := &MessageService{DB: db}
	ctx := context.Background()

	chat, _, err := svc.GetOrCreate(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("setup chat: %v", err)
	}
	// A second chat with no messages must not be listed.
	if _, _, err := svc.GetOrCreate(ctx, "alice", "carol"); err != nil {
		t.Fatalf("setup empty chat: %v", err)
	}

	if _, err := msgSvc.Send(ctx, "bob", chat.ID, "hey alice", nil); err != nil {
		t.Fatalf("send: %v", err)
	}
	last, err := msgSvc.Send(ctx, "bob", chat.ID, "you there?", nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	sums, err := svc.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(sums) != 1 {
		t.Fatalf("expected 1 summary (empty chat omitted), got %d", len(sums))
	}
	s := sums[0]
	if s.Chat.ID != chat.ID || len(s.Members) != 2 {
		t.Fatalf("summary shape wrong: %+v", s)
	}
	if s.LastMessage == nil || s.LastMessage.ID != last.ID {
		t.Fatalf("wrong last message: %+v", s.LastMessage)
	}
	if s.UnreadCount != 2 {
		t.Fatalf("expected unread 2, got %d", s.UnreadCount)
	}
}

func TestDelete_NotMember(t *testing.T) {
	db := newServiceDB(t)
	svc := newTestChatService(db)
	ctx := context.Background()

	chat, _, err := svc.GetOrCreate(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := svc.Delete(ctx, chat.ID, "mallory"); !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
}

func TestDelete_CascadeTeardown(t *testing.T) {
	db := newServiceDB(t)
	svc := newTestChatService(db)
	msgSvc := &MessageService{DB: db}
	ctx := context.Background()

	chat, _, err := svc.GetOrCreate(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := msgSvc.Send(ctx, "alice", chat.ID, "hello", nil); err != nil {
		t.Fatalf("send: %v", err)
	}

	// First leave: messages soft-deleted, caller's membership gone, chat
	// row persists for the other side.
	if err := svc.Delete(ctx, chat.ID, "alice"); err != nil {
		t.Fatalf("alice delete: %v", err)
	}
	if in, _ := repo.IsMember(ctx, db, chat.ID, "alice"); in {
		t.Fatalf("alice membership should be gone")
	}
	if in, _ := repo.IsMember(ctx, db, chat.ID, "bob"); !in {
		t.Fatalf("bob membership must survive the first leave")
	}
	if _, err := repo.LastVisibleMessage(ctx, db, chat.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("messages should all be soft-deleted: %v", err)
	}
	var chats int64
	if err := db.Model(&domain.Chat{}).Where("id = ?", chat.ID).Count(&chats).Error; err != nil || chats != 1 {
		t.Fatalf("chat row must persist until both sides left: n=%d err=%v", chats, err)
	}

	// Second leave: full teardown.
	if err := svc.Delete(ctx, chat.ID, "bob"); err != nil {
		t.Fatalf("bob delete: %v", err)
	}
	if err := db.Model(&domain.Chat{}).Where("id = ?", chat.ID).Count(&chats).Error; err != nil || chats != 0 {
		t.Fatalf("chat row should be gone: n=%d err=%v", chats, err)
	}
	var members int64
	if err := db.Model(&domain.ChatMember{}).Where("chat_id = ?", chat.ID).Count(&members).Error; err != nil || members != 0 {
		t.Fatalf("membership rows should be gone: n=%d err=%v", members, err)
	}
}
