// Package export writes the stored token history to spreadsheets.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/vault/internal/domain"
	"github.com/mtlprog/vault/internal/snapshot"
	"github.com/mtlprog/vault/internal/token"
)

// HistoryDays is how many stored snapshots an export covers.
const HistoryDays = 365

// sampleDeposit is the deposit used for the "reward per 100" column, in atomic units.
const sampleDeposit = 100 * domain.AtomicPerUnit

// Row is one exported day of token history.
type Row struct {
	Date         time.Time
	Name         string
	Symbol       string
	TotalSupply  int64 // atomic units
	RewardToken  string
	RateBPS      int64
	RewardPer100 int64            // atomic units
	SupplyChange *decimal.Decimal // relative to the previous row, nil if unavailable
}

// SupplyDisplay renders the total supply with two decimals.
func (r Row) SupplyDisplay() string {
	return domain.FormatAmount(r.TotalSupply)
}

// RatePercent renders the reward rate as a percentage.
func (r Row) RatePercent() string {
	return domain.BPSToPercent(r.RateBPS)
}

// SheetWriter writes rows to a spreadsheet destination.
type SheetWriter interface {
	Write(ctx context.Context, rows []Row) error
}

// SnapshotLister lists stored snapshots, newest first.
type SnapshotLister interface {
	List(ctx context.Context, limit int) ([]snapshot.Snapshot, error)
}

// Service builds rows from stored snapshots and delegates writing to a SheetWriter.
type Service struct {
	snapshots SnapshotLister
	writer    SheetWriter
}

// NewService creates a new export Service.
func NewService(snapshots SnapshotLister, writer SheetWriter) *Service {
	if snapshots == nil || writer == nil {
		panic("export: NewService called with nil dependency")
	}
	return &Service{
		snapshots: snapshots,
		writer:    writer,
	}
}

// Export rewrites the destination with the stored history, making sure the view captured
// for date is included even if the store lags behind. Implements worker.AfterSnapshotHook.
func (s *Service) Export(ctx context.Context, date time.Time, view token.View) error {
	rows, err := s.Rows(ctx)
	if err != nil {
		return err
	}

	if view.Ready() && !lo.ContainsBy(rows, func(r Row) bool { return r.Date.Equal(date) }) {
		rows = append(rows, rowFromView(date, view))
		sortRows(rows)
	}

	if err := s.writer.Write(ctx, rows); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	slog.Info("export: history written", "rows", len(rows))
	return nil
}

// Rows returns the stored history as rows, oldest first.
func (s *Service) Rows(ctx context.Context) ([]Row, error) {
	snaps, err := s.snapshots.List(ctx, HistoryDays)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	return BuildRows(snaps), nil
}

// BuildRows converts stored snapshots into rows, oldest first. Undecodable snapshots are skipped.
func BuildRows(snaps []snapshot.Snapshot) []Row {
	rows := make([]Row, 0, len(snaps))
	for _, snap := range snaps {
		view, err := snap.View()
		if err != nil {
			slog.Warn("export: skipping undecodable snapshot", "id", snap.ID, "error", err)
			continue
		}
		rows = append(rows, rowFromView(snap.SnapshotDate, view))
	}

	sortRows(rows)
	return rows
}

// sortRows orders rows oldest first and recomputes supply changes.
func sortRows(rows []Row) {
	slices.SortFunc(rows, func(a, b Row) int { return a.Date.Compare(b.Date) })
	fillChanges(rows)
}

func rowFromView(date time.Time, view token.View) Row {
	return Row{
		Date:         date,
		Name:         view.Metadata.Name,
		Symbol:       view.Metadata.Symbol,
		TotalSupply:  view.Metadata.TotalSupply,
		RewardToken:  view.Reward.RewardToken,
		RateBPS:      view.Reward.RateBPS,
		RewardPer100: domain.CalculateReward(sampleDeposit, view.Reward.RateBPS),
	}
}

// fillChanges sets SupplyChange on every row from its predecessor; rows must be sorted.
func fillChanges(rows []Row) {
	for i := range rows {
		rows[i].SupplyChange = nil
		if i == 0 || rows[i-1].TotalSupply == 0 {
			continue
		}
		prev := decimal.NewFromInt(rows[i-1].TotalSupply)
		change := decimal.NewFromInt(rows[i].TotalSupply).Sub(prev).Div(prev)
		rows[i].SupplyChange = &change
	}
}
