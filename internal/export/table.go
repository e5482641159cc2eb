package export

import (
	"github.com/shopspring/decimal"

	"github.com/mtlprog/vault/internal/domain"
)

// Sheet names written by every SheetWriter.
const (
	HistorySheet = "HISTORY"
	LatestSheet  = "LATEST"
)

var historyHeader = []any{
	"Date", "Name", "Symbol", "Total Supply", "Supply Change",
	"Reward Token", "Reward Rate %", "Reward per 100",
}

// buildHistory builds the HISTORY sheet data.
// Columns: Date | Name | Symbol | Total Supply | Supply Change | Reward Token | Reward Rate % | Reward per 100
func buildHistory(rows []Row) [][]any {
	data := make([][]any, 0, len(rows)+1)
	data = append(data, historyHeader)

	for _, row := range rows {
		data = append(data, []any{
			row.Date.UTC().Format("2006-01-02"),
			row.Name,
			row.Symbol,
			units(row.TotalSupply),
			ptrFloat(row.SupplyChange),
			row.RewardToken,
			percent(row.RateBPS),
			units(row.RewardPer100),
		})
	}

	return data
}

// buildLatest builds the LATEST sheet: a two-column key/value summary of the newest row.
func buildLatest(rows []Row) [][]any {
	data := [][]any{{"Metric", "Value"}}
	if len(rows) == 0 {
		return data
	}
	last := rows[len(rows)-1]
	return append(data,
		[]any{"Date", last.Date.UTC().Format("2006-01-02")},
		[]any{"Token", last.Name + " (" + last.Symbol + ")"},
		[]any{"Total Supply", last.SupplyDisplay()},
		[]any{"Reward Token", domain.TruncateAddress(last.RewardToken)},
		[]any{"Reward Rate", last.RatePercent() + "%"},
		[]any{"Reward per 100 " + last.Symbol, domain.FormatAmount(last.RewardPer100)},
	)
}

// units converts atomic units into a display-unit float for spreadsheet cells.
func units(atomic int64) float64 {
	f, _ := decimal.New(atomic, -domain.StellarDecimals).Float64()
	return f
}

func percent(bps int64) float64 {
	f, _ := decimal.New(bps, -2).Float64()
	return f
}

func ptrFloat(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	f, _ := d.Float64()
	return f
}
