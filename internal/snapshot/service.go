// Package snapshot stores daily token views in PostgreSQL.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mtlprog/vault/internal/observability"
	"github.com/mtlprog/vault/internal/token"
)

// ViewFetcher produces a fresh token view.
type ViewFetcher interface {
	Fetch(ctx context.Context, identity string) token.View
}

// Service manages snapshot capture and retrieval for one token.
type Service struct {
	fetcher   ViewFetcher
	repo      Repository
	tokenSlug string
}

// NewService creates a new snapshot Service for the token identified by tokenSlug.
// The fetcher should not be shared with interactive callers: Capture fetches without an identity.
func NewService(fetcher ViewFetcher, repo Repository, tokenSlug string) *Service {
	if fetcher == nil {
		panic("snapshot: NewService called with nil fetcher")
	}
	if repo == nil {
		panic("snapshot: NewService called with nil repository")
	}
	return &Service{fetcher: fetcher, repo: repo, tokenSlug: tokenSlug}
}

// TokenSlug returns the slug of the token this service stores snapshots for.
func (s *Service) TokenSlug() string {
	return s.tokenSlug
}

// Capture fetches the current token view and stores it for date. Views that are not
// Ready are not stored; the classified error is returned instead.
func (s *Service) Capture(ctx context.Context, date time.Time) (token.View, error) {
	tokenID, err := s.repo.GetTokenID(ctx, s.tokenSlug)
	if err != nil {
		return token.View{}, fmt.Errorf("getting token: %w", err)
	}

	view := s.fetcher.Fetch(ctx, "")
	if !view.Ready() {
		if view.Err != nil {
			return view, fmt.Errorf("fetching token view: %w", view.Err)
		}
		return view, fmt.Errorf("fetching token view: state %s", view.State)
	}

	data, err := json.Marshal(view)
	if err != nil {
		return token.View{}, fmt.Errorf("marshaling token view: %w", err)
	}

	if err := s.repo.Save(ctx, tokenID, date, data); err != nil {
		return token.View{}, fmt.Errorf("saving snapshot: %w", err)
	}
	observability.RecordSnapshotSaved()

	slog.Info("snapshot captured",
		"token", s.tokenSlug, "date", date.Format(time.DateOnly),
		"supply", view.Metadata.TotalSupply, "rate_bps", view.Reward.RateBPS)
	return view, nil
}

// GetLatest retrieves the most recent snapshot.
func (s *Service) GetLatest(ctx context.Context) (*Snapshot, error) {
	return s.repo.GetLatest(ctx, s.tokenSlug)
}

// GetByDate retrieves a snapshot for a specific date.
func (s *Service) GetByDate(ctx context.Context, date time.Time) (*Snapshot, error) {
	return s.repo.GetByDate(ctx, s.tokenSlug, date)
}

// List retrieves recent snapshots, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Snapshot, error) {
	return s.repo.List(ctx, s.tokenSlug, limit)
}
