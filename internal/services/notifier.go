// Package services – Notifier
//
// This file implements the digest notification batcher. Per recipient the
// batch moves NoBatch → Open → Processed → NoBatch: the first qualifying
// message opens a window anchored at its own timestamp, later messages
// only increment the counter, and the periodic dispatcher (see
// internal/worker) closes windows whose 15 minutes have elapsed.
//
// Every error on this path is logged and swallowed. The batcher is only
// ever reached from the detached post-send hook and from the dispatcher;
// nothing here may fail a message send.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/avelora/chat-core/internal/domain"
	"github.com/avelora/chat-core/internal/repo"
)

// Notifier accumulates per-recipient digest windows.
type Notifier struct {
	// DB is the database handle used for all batch operations.
	DB *gorm.DB
	// Window is the collection window length (15 minutes by default).
	Window time.Duration
}

// NewNotifier constructs a Notifier with the conventional 15-minute window.
func NewNotifier(db *gorm.DB) *Notifier {
	return &Notifier{DB: db, Window: 15 * time.Minute}
}

// RecordIncoming opens or extends the digest window of every member of
// chatID other than senderID. Failures are logged per recipient and never
// returned; the send that triggered the fan-out has already committed.
func (n *Notifier) RecordIncoming(ctx context.Context, chatID, senderID string) {
	memberIDs, err := repo.ListMemberIDs(ctx, n.DB, chatID)
	if err != nil {
		log.Error().Err(err).Str("chat_id", chatID).Msg("notification fan-out: member listing failed")
		return
	}
	now := time.Now().UTC()
	for _, uid := range memberIDs {
		if uid == senderID {
			continue
		}
		if err := n.record(ctx, uid, now); err != nil {
			log.Error().Err(err).
				Str("chat_id", chatID).
				Str("user_id", uid).
				Msg("notification fan-out: batch update failed")
		}
	}
}

// record increments the recipient's open batch, or opens one when none
// exists. The window start is never moved by later messages. Two senders
// racing past the existence check cannot open two windows: the partial
// unique index rejects the loser, who folds into the surviving batch.
func (n *Notifier) record(ctx context.Context, userID string, now time.Time) error {
	batch, err := repo.GetOpenBatch(ctx, n.DB, userID)
	if err == nil {
		return repo.IncrementBatch(ctx, n.DB, batch.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if _, err := repo.CreateBatch(ctx, n.DB, userID, now); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			batch, err2 := repo.GetOpenBatch(ctx, n.DB, userID)
			if err2 != nil {
				return err2
			}
			return repo.IncrementBatch(ctx, n.DB, batch.ID)
		}
		return err
	}
	return nil
}

// windowOrDefault returns the configured window or the 15-minute default.
func (n *Notifier) windowOrDefault() time.Duration {
	if n.Window > 0 {
		return n.Window
	}
	return 15 * time.Minute
}

// DueBatches returns the open batches whose window has elapsed. The
// dispatcher consumes these, sends the digests, and closes them.
func (n *Notifier) DueBatches(ctx context.Context) ([]domain.EmailBatch, error) {
	cutoff := time.Now().UTC().Add(-n.windowOrDefault())
	return repo.ListDueBatches(ctx, n.DB, cutoff)
}

// MarkProcessed closes a batch after its digest was dispatched, allowing
// the recipient's next qualifying message to open a fresh window.
func (n *Notifier) MarkProcessed(ctx context.Context, batchID string) error {
	return repo.MarkBatchProcessed(ctx, n.DB, batchID)
}
