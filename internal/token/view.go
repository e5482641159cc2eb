// Package token aggregates token metadata, reward configuration and balances
// from a Source into a single observable view.
package token

import (
	"context"

	"github.com/mtlprog/vault/internal/domain"
)

// Source supplies the reads the aggregator merges.
// Errors may carry a *domain.AppError; anything else is classified as NETWORK_ERROR.
type Source interface {
	TokenMetadata(ctx context.Context) (domain.TokenMetadata, error)
	RewardConfig(ctx context.Context) (domain.RewardConfig, error)
	Balance(ctx context.Context, account string) (int64, error)
}

// State is the aggregator lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// View is the merged snapshot exposed to consumers. It is replaced wholesale on every
// transition and never mutated in place after publication.
type View struct {
	State    State                `json:"state"`
	Loading  bool                 `json:"loading"`
	Identity string               `json:"identity,omitempty"`
	HasData  bool                 `json:"hasData"`
	Metadata domain.TokenMetadata `json:"metadata"`
	Reward   domain.RewardConfig  `json:"reward"`
	// HasBalance is false when no identity was given or the balance read failed.
	HasBalance bool             `json:"hasBalance"`
	Balance    int64            `json:"balance"`
	Err        *domain.AppError `json:"error,omitempty"`
}

// Ready reports whether metadata and reward configuration are available.
func (v View) Ready() bool {
	return v.State == StateReady && v.HasData
}

func (v View) loading() View {
	v.State = StateLoading
	v.Loading = true
	v.Err = nil
	return v
}
