package source

import (
	"context"
	"sync"
	"time"

	"github.com/mtlprog/vault/internal/domain"
	"github.com/mtlprog/vault/internal/observability"
	"github.com/mtlprog/vault/internal/token"
)

type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
}

type ttlCache[T any] struct {
	mu    sync.RWMutex
	ttl   time.Duration
	entry *cacheEntry[T]
}

func (c *ttlCache[T]) get() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.entry == nil || time.Now().After(c.entry.expiresAt) {
		var zero T
		return zero, false
	}
	return c.entry.value, true
}

func (c *ttlCache[T]) set(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entry = &cacheEntry[T]{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

func (c *ttlCache[T]) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
}

// Cached wraps a token.Source and caches token metadata and reward configuration for ttl.
// Balances and errors are never cached.
type Cached struct {
	next     token.Source
	metadata *ttlCache[domain.TokenMetadata]
	reward   *ttlCache[domain.RewardConfig]
}

var _ token.Source = (*Cached)(nil)

// NewCached creates a caching decorator. A non-positive ttl disables caching.
func NewCached(next token.Source, ttl time.Duration) *Cached {
	if next == nil {
		panic("source: NewCached called with nil source")
	}
	return &Cached{
		next:     next,
		metadata: &ttlCache[domain.TokenMetadata]{ttl: ttl},
		reward:   &ttlCache[domain.RewardConfig]{ttl: ttl},
	}
}

func (c *Cached) TokenMetadata(ctx context.Context) (domain.TokenMetadata, error) {
	if meta, ok := c.metadata.get(); ok {
		observability.RecordCacheHit("metadata")
		return meta, nil
	}
	meta, err := c.next.TokenMetadata(ctx)
	if err != nil {
		return domain.TokenMetadata{}, err
	}
	if c.metadata.ttl > 0 {
		c.metadata.set(meta)
	}
	return meta, nil
}

func (c *Cached) RewardConfig(ctx context.Context) (domain.RewardConfig, error) {
	if cfg, ok := c.reward.get(); ok {
		observability.RecordCacheHit("reward")
		return cfg, nil
	}
	cfg, err := c.next.RewardConfig(ctx)
	if err != nil {
		return domain.RewardConfig{}, err
	}
	if c.reward.ttl > 0 {
		c.reward.set(cfg)
	}
	return cfg, nil
}

func (c *Cached) Balance(ctx context.Context, account string) (int64, error) {
	return c.next.Balance(ctx, account)
}

// Invalidate drops cached metadata and reward configuration.
func (c *Cached) Invalidate() {
	c.metadata.clear()
	c.reward.clear()
}
