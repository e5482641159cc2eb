package source

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mtlprog/vault/internal/domain"
)

type countingSource struct {
	metadataCalls atomic.Int32
	rewardCalls   atomic.Int32
	balanceCalls  atomic.Int32
	failReward    atomic.Bool
}

func (s *countingSource) TokenMetadata(context.Context) (domain.TokenMetadata, error) {
	n := s.metadataCalls.Add(1)
	return domain.TokenMetadata{Name: "Token", Symbol: "SVT", Decimals: 7, TotalSupply: int64(n)}, nil
}

func (s *countingSource) RewardConfig(context.Context) (domain.RewardConfig, error) {
	s.rewardCalls.Add(1)
	if s.failReward.Load() {
		return domain.RewardConfig{}, errors.New("unavailable")
	}
	return domain.RewardConfig{RewardToken: "CREWARD", RateBPS: 500}, nil
}

func (s *countingSource) Balance(context.Context, string) (int64, error) {
	s.balanceCalls.Add(1)
	return 42, nil
}

func TestCachedServesMetadataWithinTTL(t *testing.T) {
	next := &countingSource{}
	c := NewCached(next, time.Minute)
	ctx := context.Background()

	first, err := c.TokenMetadata(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := c.TokenMetadata(ctx)

	if first != second {
		t.Errorf("cached metadata differs: %+v vs %+v", first, second)
	}
	if got := next.metadataCalls.Load(); got != 1 {
		t.Errorf("metadata calls = %d, want 1", got)
	}
}

func TestCachedExpires(t *testing.T) {
	next := &countingSource{}
	c := NewCached(next, 20*time.Millisecond)
	ctx := context.Background()

	c.RewardConfig(ctx)
	c.RewardConfig(ctx)
	if got := next.rewardCalls.Load(); got != 1 {
		t.Fatalf("reward calls = %d, want 1", got)
	}

	time.Sleep(40 * time.Millisecond)
	c.RewardConfig(ctx)
	if got := next.rewardCalls.Load(); got != 2 {
		t.Errorf("reward calls after expiry = %d, want 2", got)
	}
}

func TestCachedDoesNotCacheErrors(t *testing.T) {
	next := &countingSource{}
	next.failReward.Store(true)
	c := NewCached(next, time.Minute)
	ctx := context.Background()

	if _, err := c.RewardConfig(ctx); err == nil {
		t.Fatal("expected error")
	}
	next.failReward.Store(false)
	cfg, err := c.RewardConfig(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RateBPS != 500 {
		t.Errorf("rate = %d, want 500", cfg.RateBPS)
	}
}

func TestCachedNeverCachesBalance(t *testing.T) {
	next := &countingSource{}
	c := NewCached(next, time.Minute)

	for range 3 {
		c.Balance(context.Background(), testAccount)
	}
	if got := next.balanceCalls.Load(); got != 3 {
		t.Errorf("balance calls = %d, want 3", got)
	}
}

func TestCachedZeroTTLDisablesCaching(t *testing.T) {
	next := &countingSource{}
	c := NewCached(next, 0)

	c.TokenMetadata(context.Background())
	c.TokenMetadata(context.Background())
	if got := next.metadataCalls.Load(); got != 2 {
		t.Errorf("metadata calls = %d, want 2", got)
	}
}

func TestCachedInvalidate(t *testing.T) {
	next := &countingSource{}
	c := NewCached(next, time.Minute)
	ctx := context.Background()

	c.TokenMetadata(ctx)
	c.Invalidate()
	meta, _ := c.TokenMetadata(ctx)

	if meta.TotalSupply != 2 {
		t.Errorf("supply = %d, want 2 (fresh read)", meta.TotalSupply)
	}
}
