package token

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mtlprog/vault/internal/domain"
	"github.com/mtlprog/vault/internal/observability"
)

// Aggregator owns the current View. Concurrent fetches are allowed; each builds a fresh
// View and whichever completes last overwrites the state. The aggregator imposes no
// timeouts and performs no retries.
type Aggregator struct {
	source Source

	mu       sync.RWMutex
	view     View
	identity string

	// publishMu serializes state writes with their notifications so subscribers
	// observe transitions in the order they were stored.
	publishMu   sync.Mutex
	subscribers map[uint64]func(View)
	nextSubID   uint64
}

// NewAggregator creates an Aggregator in the Idle state.
func NewAggregator(source Source) *Aggregator {
	if source == nil {
		panic("token: NewAggregator called with nil source")
	}
	return &Aggregator{
		source:      source,
		view:        View{State: StateIdle},
		subscribers: make(map[uint64]func(View)),
	}
}

// Snapshot returns the current view.
func (a *Aggregator) Snapshot() View {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.view
}

// Identity returns the identity used by the most recent Fetch.
func (a *Aggregator) Identity() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.identity
}

// Subscribe registers fn to receive every published view. Callbacks run synchronously
// on the fetching goroutine and must not call Fetch or Refetch.
func (a *Aggregator) Subscribe(fn func(View)) (cancel func()) {
	a.publishMu.Lock()
	id := a.nextSubID
	a.nextSubID++
	a.subscribers[id] = fn
	a.publishMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.publishMu.Lock()
			delete(a.subscribers, id)
			a.publishMu.Unlock()
		})
	}
}

// Fetch loads metadata and reward configuration concurrently and, when identity is
// non-empty, the identity's balance after both complete.
//
// A metadata or reward failure yields StateFailed with the classified error and no data.
// A balance failure yields StateReady with metadata and reward kept, HasBalance false
// and the classified error set.
func (a *Aggregator) Fetch(ctx context.Context, identity string) View {
	a.publish(func(current View) View {
		a.identity = identity
		return current.loading()
	})

	observability.FetchStarted()
	start := time.Now()

	next := a.load(ctx, identity)

	a.publish(func(View) View { return next })
	observability.RecordFetch(string(next.State), time.Since(start).Seconds(), time.Now().Unix())

	if next.Err != nil {
		slog.Warn("token fetch completed with error",
			"state", next.State, "kind", next.Err.Kind, "error", next.Err.Message)
	} else {
		slog.Debug("token fetch completed", "state", next.State, "has_balance", next.HasBalance)
	}

	return next
}

// Refetch repeats Fetch with the most recently used identity.
func (a *Aggregator) Refetch(ctx context.Context) View {
	return a.Fetch(ctx, a.Identity())
}

func (a *Aggregator) load(ctx context.Context, identity string) View {
	var (
		metadata domain.TokenMetadata
		reward   domain.RewardConfig
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := a.source.TokenMetadata(gctx)
		if err != nil {
			return err
		}
		metadata = m
		return nil
	})
	g.Go(func() error {
		r, err := a.source.RewardConfig(gctx)
		if err != nil {
			return err
		}
		reward = r
		return nil
	})

	if err := g.Wait(); err != nil {
		return View{State: StateFailed, Identity: identity, Err: domain.Classify(err)}
	}

	view := View{
		State:    StateReady,
		Identity: identity,
		HasData:  true,
		Metadata: metadata,
		Reward:   reward,
	}
	if identity == "" {
		return view
	}

	balance, err := a.source.Balance(ctx, identity)
	if err != nil {
		view.Err = domain.Classify(err)
		return view
	}
	view.Balance = balance
	view.HasBalance = true
	return view
}

func (a *Aggregator) publish(next func(current View) View) {
	a.publishMu.Lock()
	defer a.publishMu.Unlock()

	a.mu.Lock()
	a.view = next(a.view)
	view := a.view
	a.mu.Unlock()

	for _, fn := range a.subscribers {
		fn(view)
	}
}
