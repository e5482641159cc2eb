package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mtlprog/vault/internal/config"
	"github.com/mtlprog/vault/internal/domain"
	"github.com/mtlprog/vault/internal/export"
	"github.com/mtlprog/vault/internal/snapshot"
	"github.com/mtlprog/vault/internal/token"
)

// TokenViews is the shared token state served by the API.
type TokenViews interface {
	Snapshot() token.View
	Refetch(ctx context.Context) token.View
	Subscribe(fn func(token.View)) (cancel func())
}

// SnapshotReader reads stored snapshots.
type SnapshotReader interface {
	GetLatest(ctx context.Context) (*snapshot.Snapshot, error)
	GetByDate(ctx context.Context, date time.Time) (*snapshot.Snapshot, error)
	List(ctx context.Context, limit int) ([]snapshot.Snapshot, error)
}

// Handler provides HTTP endpoints for the vault API.
type Handler struct {
	views     TokenViews
	source    token.Source
	snapshots SnapshotReader // nil when persistence is disabled
	profile   config.NetworkProfile
	clock     domain.Clock
}

// NewHandler creates a new API handler. Balance requests build a fresh aggregator over
// source so they never disturb the shared view. snapshots may be nil.
func NewHandler(views TokenViews, source token.Source, snapshots SnapshotReader, profile config.NetworkProfile) *Handler {
	if views == nil || source == nil {
		panic("api: NewHandler called with nil dependency")
	}
	return &Handler{
		views:     views,
		source:    source,
		snapshots: snapshots,
		profile:   profile,
		clock:     domain.SystemClock,
	}
}

// GetToken handles GET /api/v1/token.
func (h *Handler) GetToken(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NewTokenDTO(h.views.Snapshot()))
}

// GetBalance handles GET /api/v1/token/balance/{account}.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	account := r.PathValue("account")
	if !domain.IsAccountID(account) {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	view := token.NewAggregator(h.source).Fetch(r.Context(), account)
	status := http.StatusOK
	if view.Err != nil {
		status = view.Err.Kind.HTTPStatus()
	}
	writeJSON(w, status, NewTokenDTO(view))
}

// RefreshToken handles POST /api/v1/token/refresh. The refetch outlives the request so a
// client disconnect cannot fail the shared view.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	view := h.views.Refetch(context.WithoutCancel(r.Context()))
	writeJSON(w, http.StatusOK, NewTokenDTO(view))
}

// GetRewardQuote handles GET /api/v1/reward/quote?amount=12.5.
func (h *Handler) GetRewardQuote(w http.ResponseWriter, r *http.Request) {
	input := r.URL.Query().Get("amount")
	if !domain.IsValidPositiveAmount(input) {
		writeError(w, http.StatusBadRequest, "amount must be a positive number")
		return
	}
	amount := domain.ToAtomicUnits(input)
	if amount == 0 {
		writeError(w, http.StatusBadRequest, "amount is below the token precision or out of range")
		return
	}

	reward := domain.RewardConfig{RewardToken: h.profile.RewardTokenID, RateBPS: h.profile.DefaultRewardRate}
	rateSource := "default"
	if view := h.views.Snapshot(); view.HasData {
		reward = view.Reward
		rateSource = "live"
	}

	rewardAtomic := reward.RewardFor(amount)
	writeJSON(w, http.StatusOK, QuoteDTO{
		Amount:        domain.FormatAmount(amount),
		AmountAtomic:  amount,
		RewardRateBPS: reward.RateBPS,
		RewardRate:    reward.RatePercent(),
		Reward:        domain.FormatAmount(rewardAtomic),
		RewardAtomic:  rewardAtomic,
		RewardToken:   reward.RewardToken,
		RateSource:    rateSource,
	})
}

// GetTimelock handles GET /api/v1/timelock?unlock=<unix>[&balance=<atomic>&amount=<display>].
// With balance and amount it also checks whether the withdrawal would be accepted.
func (h *Handler) GetTimelock(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	unlock, err := strconv.ParseInt(q.Get("unlock"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unlock must be a UNIX timestamp in seconds")
		return
	}

	now := h.clock().Unix()
	resp := TimelockDTO{
		Unlock:    unlock,
		Now:       now,
		Unlocked:  domain.IsUnlocked(unlock, now),
		Remaining: domain.TimeUntilUnlock(unlock, now),
	}

	if q.Has("amount") {
		balance, err := strconv.ParseInt(q.Get("balance"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "balance must be an integer amount of atomic units")
			return
		}
		vault := domain.UserVault{Balance: balance, Timelock: unlock}
		withdrawErr := vault.CheckWithdraw(domain.ToAtomicUnits(q.Get("amount")), now)
		ok := withdrawErr == nil
		resp.CanWithdraw = &ok
		if appErr, isApp := domain.AsAppError(withdrawErr); isApp {
			resp.Withdraw = errorDTO(appErr)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetLatestSnapshot handles GET /api/v1/snapshots/latest.
func (h *Handler) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	if !h.requireSnapshots(w) {
		return
	}
	s, err := h.snapshots.GetLatest(r.Context())
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no snapshots found")
			return
		}
		slog.Error("failed to get latest snapshot", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// GetSnapshotByDate handles GET /api/v1/snapshots/{date}.
func (h *Handler) GetSnapshotByDate(w http.ResponseWriter, r *http.Request) {
	if !h.requireSnapshots(w) {
		return
	}
	dateStr := r.PathValue("date")
	date, err := time.Parse(time.DateOnly, dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD")
		return
	}

	s, err := h.snapshots.GetByDate(r.Context(), date)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			writeError(w, http.StatusNotFound, "snapshot not found for date")
			return
		}
		slog.Error("failed to get snapshot by date", "date", dateStr, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ListSnapshots handles GET /api/v1/snapshots.
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	if !h.requireSnapshots(w) {
		return
	}
	const maxLimit = 365
	limit := 30
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = min(n, maxLimit)
		}
	}

	snapshots, err := h.snapshots.List(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list snapshots", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if snapshots == nil {
		snapshots = []snapshot.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snapshots)
}

// ExportXLSX handles GET /api/v1/export.xlsx.
func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	if !h.requireSnapshots(w) {
		return
	}
	snaps, err := h.snapshots.List(r.Context(), export.HistoryDays)
	if err != nil {
		slog.Error("failed to list snapshots for export", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, export.BuildRows(snaps)); err != nil {
		slog.Error("failed to render workbook", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+h.profile.TokenCode+`-history.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Warn("failed to write workbook", "error", err)
	}
}

func (h *Handler) requireSnapshots(w http.ResponseWriter) bool {
	if h.snapshots == nil {
		writeError(w, http.StatusServiceUnavailable, "snapshots are disabled")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":{"message":"internal error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: ErrorDTO{Message: msg}})
}
