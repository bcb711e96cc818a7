// Package worker hosts the background digest dispatcher. It wakes on a
// cron schedule, drains the notification batches whose collection window
// has elapsed, and hands one digest mail per recipient to the email
// sender. Batches whose delivery fails stay open and are retried on the
// next tick.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/avelora/chat-core/internal/domain"
	"github.com/avelora/chat-core/internal/email"
)

var (
	digestsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_digests_sent_total",
		Help: "Digest emails handed to the sender successfully.",
	})
	digestsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_digests_failed_total",
		Help: "Digest emails whose delivery attempt failed.",
	})
)

// previewLimit caps how many unread messages are quoted per digest.
const previewLimit = 5

// BatchSource yields due notification batches and closes them. It is
// implemented by services.Notifier.
type BatchSource interface {
	DueBatches(ctx context.Context) ([]domain.EmailBatch, error)
	MarkProcessed(ctx context.Context, batchID string) error
}

// PreviewSource supplies the recipient's recent unread messages for the
// digest body. It is implemented by services.MessageService.
type PreviewSource interface {
	RecentUnread(ctx context.Context, userID string, window time.Duration) []domain.Message
}

// DigestSender delivers a rendered digest. It is implemented by
// email.Sender.
type DigestSender interface {
	SendDigest(to string, d email.Digest) error
}

// Dispatcher drains due batches on a cron schedule.
type Dispatcher struct {
	// Batches is the source of due notification windows.
	Batches BatchSource
	// Previews supplies unread message snippets for digest bodies.
	Previews PreviewSource
	// Sender delivers the rendered digests.
	Sender DigestSender
	// Resolve maps a user id to a mail address. When nil, a local
	// placeholder domain is used.
	Resolve func(userID string) string
	// Cron is the scan schedule. Empty means every minute.
	Cron string
	// Window is the batch collection window, used to bound previews.
	Window time.Duration
}

// resolveAddr applies the configured resolver or the placeholder default.
func (d *Dispatcher) resolveAddr(userID string) string {
	if d.Resolve != nil {
		return d.Resolve(userID)
	}
	return userID + "@users.local"
}

// Start validates the schedule and launches the scheduler goroutine.
// The returned cancel func stops it.
func (d *Dispatcher) Start(ctx context.Context) (context.CancelFunc, error) {
	cronExpr := d.Cron
	if cronExpr == "" {
		cronExpr = "* * * * *"
	}
	if !gronx.IsValid(cronExpr) {
		return nil, fmt.Errorf("invalid digest cron expression: %s", d.Cron)
	}

	ctx2, cancel := context.WithCancel(ctx)
	go d.runScheduler(ctx2, cronExpr)
	log.Info().Str("cron", cronExpr).Msg("digest dispatcher started")
	return cancel, nil
}

// runScheduler computes the next tick for the cron expression, sleeps
// until then, and runs one drain pass per tick.
func (d *Dispatcher) runScheduler(ctx context.Context, cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("digest dispatcher stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			log.Error().Err(err).Str("cron", cronExpr).Msg("digest next tick computation failed")
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
		case <-ctx.Done():
			log.Info().Msg("digest dispatcher stopping")
			return
		}

		if err := d.RunOnce(ctx); err != nil {
			log.Error().Err(err).Msg("digest drain pass failed")
		}
	}
}

// RunOnce drains every due batch: render, send, close. Batches whose
// delivery fails are left open for the next pass. Exported so tests and
// admin triggers can force a pass without waiting for the schedule.
func (d *Dispatcher) RunOnce(ctx context.Context) error {
	batches, err := d.Batches.DueBatches(ctx)
	if err != nil {
		return err
	}

	for _, b := range batches {
		if err := d.dispatch(ctx, b); err != nil {
			digestsFailed.Inc()
			log.Error().Err(err).
				Str("batch_id", b.ID).
				Str("user_id", b.UserID).
				Msg("digest delivery failed, batch left open")
			continue
		}
		digestsSent.Inc()
		if err := d.Batches.MarkProcessed(ctx, b.ID); err != nil {
			log.Error().Err(err).Str("batch_id", b.ID).Msg("digest batch close failed")
		}
	}
	return nil
}

// dispatch renders and sends the digest for one batch.
func (d *Dispatcher) dispatch(ctx context.Context, b domain.EmailBatch) error {
	dg := email.Digest{
		UserID:      b.UserID,
		Count:       b.MessageCount,
		WindowStart: b.FirstMessageAt,
	}

	if d.Previews != nil {
		window := d.Window
		if window <= 0 {
			window = 15 * time.Minute
		}
		for _, m := range d.Previews.RecentUnread(ctx, b.UserID, window) {
			if len(dg.Previews) == previewLimit {
				break
			}
			dg.Previews = append(dg.Previews, email.MessagePreview{
				AuthorID: m.AuthorID,
				Content:  m.Content,
				SentAt:   m.CreatedAt,
			})
		}
	}

	return d.Sender.SendDigest(d.resolveAddr(b.UserID), dg)
}
