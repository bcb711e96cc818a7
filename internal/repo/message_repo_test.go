package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avelora/chat-core/internal/domain"
)

func TestCreateAndGetMessage(t *testing.T) {
	db := newChatRepoDB(t, chatTables()...)
	ctx := context.Background()

	chat, err := CreateChatWithMembers(ctx, db, "msgchat123", "", "u1", []string{"u1", "u2"})
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}

	m, err := CreateMessage(ctx, db, chat.ID, "u1", "hello there", nil)
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if m.ID == "" || m.Read || m.Deleted || m.Edited {
		t.Fatalf("fresh message has wrong flags: %+v", m)
	}

	got, err := GetMessage(ctx, db, m.ID)
	if err != nil {
		t.Fatalf("GetMessage: %v", err)
	}
	if got.Content != "hello there" || got.AuthorID != "u1" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestListMessagesBefore_PaginatesBackwards(t *testing.T) {
	db := newChatRepoDB(t, chatTables()...)
	ctx := context.Background()

	chat, err := CreateChatWithMembers(ctx, db, "pagechat12", "", "u1", []string{"u1", "u2"})
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}

	// Seed five messages with known timestamps.
	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 5; i++ {
		m, err := CreateMessage(ctx, db, chat.ID, "u2", "m", nil)
		if err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
		at := base.Add(time.Duration(i) * time.Minute)
		if err := db.Model(&domain.Message{}).Where("id = ?", m.ID).Update("created_at", at).Error; err != nil {
			t.Fatalf("stamp %d: %v", i, err)
		}
		ids = append(ids, m.ID)
	}

	// First page: newest two.
	page, err := ListMessagesBefore(ctx, db, chat.ID, nil, 2)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(page) != 2 || page[0].ID != ids[4] || page[1].ID != ids[3] {
		t.Fatalf("wrong first page: %+v", page)
	}

	// Second page: strictly older than the last item of page one.
	cursor := page[1].CreatedAt
	page, err = ListMessagesBefore(ctx, db, chat.ID, &cursor, 2)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(page) != 2 || page[0].ID != ids[2] || page[1].ID != ids[1] {
		t.Fatalf("wrong second page: %+v", page)
	}
}

func TestListMessagesBefore_SkipsDeleted(t *testing.T) {
	db := newChatRepoDB(t, chatTables()...)
	ctx := context.Background()

	chat, err := CreateChatWithMembers(ctx, db, "delchat123", "", "u1", []string{"u1", "u2"})
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}
	keep, err := CreateMessage(ctx, db, chat.ID, "u2", "keep", nil)
	if err != nil {
		t.Fatalf("keep: %v", err)
	}
	gone, err := CreateMessage(ctx, db, chat.ID, "u2", "gone", nil)
	if err != nil {
		t.Fatalf("gone: %v", err)
	}
	if err := SoftDeleteMessage(ctx, db, gone.ID, "u2", time.Now().UTC()); err != nil {
		t.Fatalf("SoftDeleteMessage: %v", err)
	}

	out, err := ListMessagesBefore(ctx, db, chat.ID, nil, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 1 || out[0].ID != keep.ID {
		t.Fatalf("expected only the surviving message: %+v", out)
	}

	// The deleted row still resolves by id for reply anchoring.
	if _, err := GetMessage(ctx, db, gone.ID); err != nil {
		t.Fatalf("deleted message should still load by id: %v", err)
	}
}

func TestSoftDeleteMessage_SecondDeleteFails(t *testing.T) {
	db := newChatRepoDB(t, chatTables()...)
	ctx := context.Background()

	chat, err := CreateChatWithMembers(ctx, db, "twicedel12", "", "u1", []string{"u1", "u2"})
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}
	m, err := CreateMessage(ctx, db, chat.ID, "u1", "once", nil)
	if err != nil {
		t.Fatalf("msg: %v", err)
	}

	if err := SoftDeleteMessage(ctx, db, m.ID, "u1", time.Now().UTC()); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := SoftDeleteMessage(ctx, db, m.ID, "u1", time.Now().UTC()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete should miss: %v", err)
	}
}

func TestMarkMessagesRead_SkipsOwnMessages(t *testing.T) {
	db := newChatRepoDB(t, chatTables()...)
	ctx := context.Background()

	chat, err := CreateChatWithMembers(ctx, db, "readchat12", "", "u1", []string{"u1", "u2"})
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}
	mine, err := CreateMessage(ctx, db, chat.ID, "u1", "mine", nil)
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	theirs, err := CreateMessage(ctx, db, chat.ID, "u2", "theirs", nil)
	if err != nil {
		t.Fatalf("theirs: %v", err)
	}

	n, err := MarkMessagesRead(ctx, db, []string{mine.ID, theirs.ID}, "u1")
	if err != nil {
		t.Fatalf("MarkMessagesRead: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly 1 row flipped, got %d", n)
	}

	got, _ := GetMessage(ctx, db, mine.ID)
	if got.Read {
		t.Fatalf("own message must stay unread-by-author: %+v", got)
	}
	got, _ = GetMessage(ctx, db, theirs.ID)
	if !got.Read {
		t.Fatalf("peer message should be read: %+v", got)
	}
}

func TestMarkMessagesRead_EmptyInput(t *testing.T) {
	db := newChatRepoDB(t, chatTables()...)
	n, err := MarkMessagesRead(context.Background(), db, nil, "u1")
	if err != nil || n != 0 {
		t.Fatalf("expected no-op: n=%d err=%v", n, err)
	}
}

func TestUnreadCounts(t *testing.T) {
	db := newChatRepoDB(t, chatTables()...)
	ctx := context.Background()

	c1, err := CreateChatWithMembers(ctx, db, "unreadcha1", "", "u1", []string{"u1", "u2"})
	if err != nil {
		t.Fatalf("create c1: %v", err)
	}
	c2, err := CreateChatWithMembers(ctx, db, "unreadcha2", "", "u1", []string{"u1", "u3"})
	if err != nil {
		t.Fatalf("create c2: %v", err)
	}

	// Two unread from u2, one unread from u3, one own message, one deleted.
	if _, err := CreateMessage(ctx, db, c1.ID, "u2", "a", nil); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := CreateMessage(ctx, db, c1.ID, "u2", "b", nil); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := CreateMessage(ctx, db, c1.ID, "u1", "own", nil); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := CreateMessage(ctx, db, c2.ID, "u3", "c", nil); err != nil {
		t.Fatalf("seed: %v", err)
	}
	dead, err := CreateMessage(ctx, db, c2.ID, "u3", "d", nil)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := SoftDeleteMessage(ctx, db, dead.ID, "u3", time.Now().UTC()); err != nil {
		t.Fatalf("del: %v", err)
	}

	n, err := UnreadCount(ctx, db, c1.ID, "u1")
	if err != nil || n != 2 {
		t.Fatalf("UnreadCount(c1) = %d, %v; want 2", n, err)
	}
	total, err := TotalUnreadCount(ctx, db, "u1")
	if err != nil || total != 3 {
		t.Fatalf("TotalUnreadCount = %d, %v; want 3", total, err)
	}

	// Reading drops the counters monotonically.
	msgs, err := ListMessagesBefore(ctx, db, c1.ID, nil, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	if _, err := MarkMessagesRead(ctx, db, ids, "u1"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	n, err = UnreadCount(ctx, db, c1.ID, "u1")
	if err != nil || n != 0 {
		t.Fatalf("UnreadCount(c1) after read = %d, %v; want 0", n, err)
	}
	total, err = TotalUnreadCount(ctx, db, "u1")
	if err != nil || total != 1 {
		t.Fatalf("TotalUnreadCount after read = %d, %v; want 1", total, err)
	}
}

func TestUpdateReactions_RoundTrip(t *testing.T) {
	db := newChatRepoDB(t, chatTables()...)
	ctx := context.Background()

	chat, err := CreateChatWithMembers(ctx, db, "reactchat1", "", "u1", []string{"u1", "u2"})
	if err != nil {
		t.Fatalf("create chat: %v", err)
	}
	m, err := CreateMessage(ctx, db, chat.ID, "u1", "react to me", nil)
	if err != nil {
		t.Fatalf("msg: %v", err)
	}

	want := domain.ReactionMap{"👍": {"u2"}}
	if err := UpdateReactions(ctx, db, m.ID, want); err != nil {
		t.Fatalf("UpdateReactions: %v", err)
	}

	got, err := GetMessage(ctx, db, m.ID)
	if err != nil {
		t.Fatalf("GetMessage: %v", err)
	}
	data := got.Reactions.Data()
	if len(data["👍"]) != 1 || data["👍"][0] != "u2" {
		t.Fatalf("reaction round-trip mismatch: %+v", data)
	}
}

func TestUpdateReactions_MissingMessage(t *testing.T) {
	db := newChatRepoDB(t, chatTables()...)
	err := UpdateReactions(context.Background(), db, "nope", domain.ReactionMap{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
