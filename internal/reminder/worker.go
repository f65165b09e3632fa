// Package reminder periodically publishes payment reminders for unpaid
// split request participants.
package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/groupledger/internal/metrics"
	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/notify"
	"github.com/mmynk/groupledger/internal/splitrequest"
)

// Source yields due reminders and records delivered ones.
// *splitrequest.Engine satisfies it.
type Source interface {
	DueReminders(ctx context.Context, now time.Time, window time.Duration) ([]models.ReminderTarget, error)
	MarkReminded(ctx context.Context, requestID, userID string, at time.Time) error
}

var _ Source = (*splitrequest.Engine)(nil)

const defaultInterval = time.Hour

// Worker scans for due reminders on every tick.
type Worker struct {
	source   Source
	notifier notify.Notifier
	metrics  *metrics.Metrics
	interval time.Duration
	window   time.Duration
	now      func() time.Time
}

// Option configures a Worker.
type Option func(*Worker)

// WithMetrics counts sent and failed reminders in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(w *Worker) {
		w.now = now
	}
}

// New creates a worker that runs every interval and reminds participants
// not reminded within window.
func New(source Source, notifier notify.Notifier, interval, window time.Duration, opts ...Option) *Worker {
	if interval <= 0 {
		interval = defaultInterval
	}
	if window <= 0 {
		window = splitrequest.DefaultReminderWindow
	}
	w := &Worker{
		source:   source,
		notifier: notifier,
		interval: interval,
		window:   window,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run performs a pass immediately and then on every tick until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	slog.Info("Reminder worker started", "interval", w.interval, "window", w.window)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunOnce(ctx)
	for {
		select {
		case <-ticker.C:
			w.RunOnce(ctx)
		case <-ctx.Done():
			slog.Info("Reminder worker stopped")
			return nil
		}
	}
}

// Result summarizes one pass.
type Result struct {
	Sent   int
	Failed int
}

// RunOnce publishes every due reminder. A participant is stamped as reminded
// only after a successful publish; failures are retried on the next pass.
func (w *Worker) RunOnce(ctx context.Context) Result {
	var res Result
	now := w.now()

	targets, err := w.source.DueReminders(ctx, now, w.window)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to load due reminders", "error", err)
		return res
	}

	for _, t := range targets {
		if ctx.Err() != nil {
			break
		}
		msg := notify.NewReminderMessage(t, now)
		if err := w.notifier.PublishReminder(ctx, msg); err != nil {
			res.Failed++
			w.metrics.ReminderFailed()
			slog.WarnContext(ctx, "Failed to publish reminder",
				"split_request_id", t.SplitRequestID,
				"user_id", t.UserID,
				"error", err,
			)
			continue
		}
		if err := w.source.MarkReminded(ctx, t.SplitRequestID, t.UserID, now); err != nil {
			slog.ErrorContext(ctx, "Failed to mark reminder sent",
				"split_request_id", t.SplitRequestID,
				"user_id", t.UserID,
				"error", err,
			)
		}
		res.Sent++
		w.metrics.ReminderSent()
	}

	if len(targets) > 0 {
		slog.InfoContext(ctx, "Reminder pass complete", "due", len(targets), "sent", res.Sent, "failed", res.Failed)
	}
	return res
}
