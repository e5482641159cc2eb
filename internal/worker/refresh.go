package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/mtlprog/vault/internal/token"
)

// Refresher re-runs the token view fetch with the last known identity.
type Refresher interface {
	Refetch(ctx context.Context) token.View
}

// RefreshWorker periodically refreshes the token view served by the API.
type RefreshWorker struct {
	refresher Refresher
	interval  time.Duration
}

// NewRefreshWorker creates a new RefreshWorker.
func NewRefreshWorker(refresher Refresher, interval time.Duration) *RefreshWorker {
	if refresher == nil {
		panic("worker: NewRefreshWorker called with nil refresher")
	}
	return &RefreshWorker{
		refresher: refresher,
		interval:  interval,
	}
}

func (w *RefreshWorker) refresh(ctx context.Context, label string) {
	view := w.refresher.Refetch(ctx)
	if view.Err != nil {
		slog.Error("RefreshWorker: "+label+" completed with error",
			"state", view.State, "kind", view.Err.Kind, "error", view.Err.Message)
		return
	}
	slog.Info("RefreshWorker: "+label+" completed", "state", view.State)
}

// Run starts the refresh loop. It blocks until the context is cancelled.
func (w *RefreshWorker) Run(ctx context.Context) {
	slog.Info("RefreshWorker: starting", "interval", w.interval)

	w.refresh(ctx, "initial refresh")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("RefreshWorker: shutting down")
			return
		case <-ticker.C:
			w.refresh(ctx, "refresh")
		}
	}
}
