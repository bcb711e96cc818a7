package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/avelora/chat-core/internal/domain"
)

func TestUpsertBlock_InsertAndRefresh(t *testing.T) {
	db := newChatRepoDB(t, &domain.BlockedUser{})
	ctx := context.Background()

	first, err := UpsertBlock(ctx, db, "u1", "u2")
	if err != nil {
		t.Fatalf("UpsertBlock: %v", err)
	}
	if first.ID == "" || first.BlockerID != "u1" || first.BlockedID != "u2" {
		t.Fatalf("unexpected fields: %+v", first)
	}

	// Re-blocking must not error and must not duplicate the row.
	if _, err := UpsertBlock(ctx, db, "u1", "u2"); err != nil {
		t.Fatalf("re-block: %v", err)
	}
	var n int64
	if err := db.Model(&domain.BlockedUser{}).
		Where("blocker_id = ? AND blocked_id = ?", "u1", "u2").
		Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected a single edge row, got %d", n)
	}
}

func TestDeleteBlock_MissingEdge(t *testing.T) {
	db := newChatRepoDB(t, &domain.BlockedUser{})
	err := DeleteBlock(context.Background(), db, "u1", "u2")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteBlock_RemovesOnlyThatDirection(t *testing.T) {
	db := newChatRepoDB(t, &domain.BlockedUser{})
	ctx := context.Background()

	if _, err := UpsertBlock(ctx, db, "u1", "u2"); err != nil {
		t.Fatalf("block u1->u2: %v", err)
	}
	if _, err := UpsertBlock(ctx, db, "u2", "u1"); err != nil {
		t.Fatalf("block u2->u1: %v", err)
	}

	if err := DeleteBlock(ctx, db, "u1", "u2"); err != nil {
		t.Fatalf("DeleteBlock: %v", err)
	}

	// The reverse edge survives, so the symmetric check still fires.
	blocked, err := BlockExists(ctx, db, "u1", "u2")
	if err != nil || !blocked {
		t.Fatalf("expected reverse edge to keep pair blocked: blocked=%v err=%v", blocked, err)
	}
}

func TestBlockExists_SymmetricOverDirectionalStorage(t *testing.T) {
	db := newChatRepoDB(t, &domain.BlockedUser{})
	ctx := context.Background()

	if _, err := UpsertBlock(ctx, db, "u1", "u2"); err != nil {
		t.Fatalf("block: %v", err)
	}

	for _, pair := range [][2]string{{"u1", "u2"}, {"u2", "u1"}} {
		blocked, err := BlockExists(ctx, db, pair[0], pair[1])
		if err != nil {
			t.Fatalf("BlockExists(%s,%s): %v", pair[0], pair[1], err)
		}
		if !blocked {
			t.Fatalf("expected (%s,%s) to read as blocked", pair[0], pair[1])
		}
	}

	blocked, err := BlockExists(ctx, db, "u1", "u3")
	if err != nil || blocked {
		t.Fatalf("unrelated pair must be unblocked: blocked=%v err=%v", blocked, err)
	}
}

func TestListBlocked_OnlyOwnEdgesNewestFirst(t *testing.T) {
	db := newChatRepoDB(t, &domain.BlockedUser{})
	ctx := context.Background()

	if _, err := UpsertBlock(ctx, db, "u1", "u2"); err != nil {
		t.Fatalf("block u2: %v", err)
	}
	if _, err := UpsertBlock(ctx, db, "u1", "u3"); err != nil {
		t.Fatalf("block u3: %v", err)
	}
	if _, err := UpsertBlock(ctx, db, "u9", "u1"); err != nil {
		t.Fatalf("foreign block: %v", err)
	}

	out, err := ListBlocked(ctx, db, "u1")
	if err != nil {
		t.Fatalf("ListBlocked: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(out))
	}
	for _, b := range out {
		if b.BlockerID != "u1" {
			t.Fatalf("foreign edge leaked: %+v", b)
		}
	}
}
