package services

import (
	"context"
	"errors"
	"testing"
)

func TestBlock_SelfBlockRejected(t *testing.T) {
	db := newServiceDB(t)
	svc := &BlockService{DB: db}

	if _, err := svc.Block(context.Background(), "alice", "alice"); !errors.Is(err, ErrSelfBlock) {
		t.Fatalf("expected ErrSelfBlock, got %v", err)
	}
}

func TestBlock_RepeatIsNoOp(t *testing.T) {
	db := newServiceDB(t)
	svc := &BlockService{DB: db}
	ctx := context.Background()

	if _, err := svc.Block(ctx, "alice", "bob"); err != nil {
		t.Fatalf("first block: %v", err)
	}
	if _, err := svc.Block(ctx, "alice", "bob"); err != nil {
		t.Fatalf("repeat block must not error: %v", err)
	}

	out, err := svc.ListBlocked(ctx, "alice")
	if err != nil || len(out) != 1 {
		t.Fatalf("expected a single edge: %v / %d", err, len(out))
	}
}

func TestUnblock_MissingEdge(t *testing.T) {
	db := newServiceDB(t)
	svc := &BlockService{DB: db}

	if err := svc.Unblock(context.Background(), "alice", "bob"); !errors.Is(err, ErrBlockNotFound) {
		t.Fatalf("expected ErrBlockNotFound, got %v", err)
	}
}

func TestIsBlocked_Symmetric(t *testing.T) {
	db := newServiceDB(t)
	svc := &BlockService{DB: db}
	ctx := context.Background()

	if _, err := svc.Block(ctx, "alice", "bob"); err != nil {
		t.Fatalf("block: %v", err)
	}

	for _, pair := range [][2]string{{"alice", "bob"}, {"bob", "alice"}} {
		blocked, err := svc.IsBlocked(ctx, pair[0], pair[1])
		if err != nil || !blocked {
			t.Fatalf("IsBlocked(%s,%s) = %v, %v; want true", pair[0], pair[1], blocked, err)
		}
	}

	if err := svc.Unblock(ctx, "alice", "bob"); err != nil {
		t.Fatalf("Unblock: %v", err)
	}
	blocked, err := svc.IsBlocked(ctx, "alice", "bob")
	if err != nil || blocked {
		t.Fatalf("expected pair to be unblocked: %v, %v", blocked, err)
	}
}
