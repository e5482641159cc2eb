package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/mtlprog/vault/internal/token"
)

// SnapshotCapturer stores the token view for a date.
type SnapshotCapturer interface {
	Capture(ctx context.Context, date time.Time) (token.View, error)
}

// AfterSnapshotHook is called after each successful snapshot capture.
type AfterSnapshotHook interface {
	Export(ctx context.Context, date time.Time, view token.View) error
}

// SnapshotWorker periodically captures token snapshots.
type SnapshotWorker struct {
	capturer SnapshotCapturer
	interval time.Duration
	hook     AfterSnapshotHook // optional
	now      func() time.Time
}

// NewSnapshotWorker creates a new SnapshotWorker with an optional post-capture hook.
func NewSnapshotWorker(capturer SnapshotCapturer, interval time.Duration, hook AfterSnapshotHook) *SnapshotWorker {
	if capturer == nil {
		panic("worker: NewSnapshotWorker called with nil capturer")
	}
	return &SnapshotWorker{
		capturer: capturer,
		interval: interval,
		hook:     hook,
		now:      time.Now,
	}
}

// runHook calls the post-capture hook if one is configured.
func (w *SnapshotWorker) runHook(ctx context.Context, date time.Time, view token.View) {
	if w.hook == nil {
		return
	}
	if err := w.hook.Export(ctx, date, view); err != nil {
		slog.Error("SnapshotWorker: export hook failed", "error", err)
	} else {
		slog.Info("SnapshotWorker: export hook completed")
	}
}

// UTCDate normalizes t to midnight UTC.
func UTCDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (w *SnapshotWorker) capture(ctx context.Context, label string) {
	date := UTCDate(w.now())
	view, err := w.capturer.Capture(ctx, date)
	if err != nil {
		slog.Error("SnapshotWorker: "+label+" failed", "date", date.Format(time.DateOnly), "error", err)
		return
	}
	slog.Info("SnapshotWorker: "+label+" completed", "date", date.Format(time.DateOnly))
	w.runHook(ctx, date, view)
}

// Run starts the snapshot worker loop. It blocks until the context is cancelled.
func (w *SnapshotWorker) Run(ctx context.Context) {
	slog.Info("SnapshotWorker: starting", "interval", w.interval)

	// Capture immediately on startup
	w.capture(ctx, "initial capture")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("SnapshotWorker: shutting down")
			return
		case <-ticker.C:
			w.capture(ctx, "capture")
		}
	}
}
