// Package source implements token.Source on top of the Horizon API.
package source

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mtlprog/vault/internal/config"
	"github.com/mtlprog/vault/internal/domain"
	"github.com/mtlprog/vault/internal/horizon"
	"github.com/mtlprog/vault/internal/observability"
	"github.com/mtlprog/vault/internal/token"
)

// DATA entry keys on the vault admin account holding the live reward configuration.
const (
	RewardTokenKey = "reward_token"
	RewardRateKey  = "reward_rate_bps"
)

// HorizonClient defines the subset of the Horizon API used by HorizonSource.
type HorizonClient interface {
	FetchAccount(ctx context.Context, accountID string) (horizon.HorizonAccount, error)
	FetchAsset(ctx context.Context, code, issuer string) (horizon.HorizonAsset, error)
}

// HorizonSource reads token data for the vault described by a network profile.
type HorizonSource struct {
	client  HorizonClient
	profile config.NetworkProfile
}

var _ token.Source = (*HorizonSource)(nil)

// NewHorizonSource creates a HorizonSource.
func NewHorizonSource(client HorizonClient, profile config.NetworkProfile) *HorizonSource {
	if client == nil {
		panic("source: NewHorizonSource called with nil client")
	}
	return &HorizonSource{client: client, profile: profile}
}

// TokenMetadata returns the vault token's metadata. Total supply is the sum of all
// balances Horizon reports for the asset.
func (s *HorizonSource) TokenMetadata(ctx context.Context) (meta domain.TokenMetadata, err error) {
	defer observe("metadata", time.Now(), &err)

	asset, err := s.client.FetchAsset(ctx, s.profile.TokenCode, s.profile.TokenIssuer)
	if err != nil {
		return domain.TokenMetadata{}, classify("fetching token metadata", err)
	}

	supply, err := asset.TotalSupply()
	if err != nil {
		return domain.TokenMetadata{}, domain.NewContractError("invalid token supply", err)
	}
	supplyAtomic, err := domain.DisplayToAtomic(supply.String(), domain.StellarDecimals)
	if err != nil {
		return domain.TokenMetadata{}, domain.NewContractError("invalid token supply", err)
	}

	name := s.profile.TokenName
	if name == "" {
		name = asset.AssetCode
	}

	return domain.TokenMetadata{
		Name:        name,
		Symbol:      asset.AssetCode,
		Decimals:    domain.StellarDecimals,
		TotalSupply: supplyAtomic,
	}, nil
}

// RewardConfig reads the reward token and rate from the vault admin account's DATA entries.
// Missing or malformed entries fall back to the profile defaults.
func (s *HorizonSource) RewardConfig(ctx context.Context) (cfg domain.RewardConfig, err error) {
	defer observe("reward", time.Now(), &err)

	account, err := s.client.FetchAccount(ctx, s.profile.VaultAdmin)
	if err != nil {
		return domain.RewardConfig{}, classify("fetching reward configuration", err)
	}

	cfg = domain.RewardConfig{
		RewardToken: s.profile.RewardTokenID,
		RateBPS:     s.profile.DefaultRewardRate,
	}

	if value, ok := decodeDataEntry(account, RewardTokenKey); ok && value != "" {
		cfg.RewardToken = value
	}
	if value, ok := decodeDataEntry(account, RewardRateKey); ok {
		rate, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || rate < 0 {
			slog.Warn("ignoring invalid reward rate DATA entry",
				"account", account.ID, "value", value, "error", err)
		} else {
			cfg.RateBPS = rate
		}
	}

	return cfg, nil
}

// Balance returns the account's vault token balance in atomic units.
// An account without a trustline holds zero.
func (s *HorizonSource) Balance(ctx context.Context, accountID string) (balance int64, err error) {
	defer observe("balance", time.Now(), &err)

	if !domain.IsAccountID(accountID) {
		return 0, domain.NewAppErrorWithDetails(domain.KindWalletNotFound,
			"invalid wallet address", domain.TruncateAddress(accountID))
	}

	account, err := s.client.FetchAccount(ctx, accountID)
	if err != nil {
		var statusErr *horizon.StatusError
		if errors.As(err, &statusErr) && statusErr.NotFound() {
			return 0, domain.NewAppErrorWithCause(domain.KindWalletNotFound,
				"wallet account not found", err)
		}
		return 0, classify("fetching balance", err)
	}

	amount, err := account.BalanceOf(s.profile.TokenCode, s.profile.TokenIssuer)
	if err != nil {
		return 0, domain.NewContractError("invalid balance", err)
	}
	atomic, err := domain.DisplayToAtomic(amount.String(), domain.StellarDecimals)
	if err != nil {
		return 0, domain.NewContractError("invalid balance", err)
	}
	return atomic, nil
}

func decodeDataEntry(account horizon.HorizonAccount, key string) (string, bool) {
	encoded, ok := account.Data[key]
	if !ok {
		return "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		slog.Warn("failed to decode DATA entry value",
			"account", account.ID, "key", key, "error", err)
		return "", false
	}
	return string(decoded), true
}

// classify maps Horizon client errors onto the error taxonomy. Client-side rejections
// become CONTRACT_ERROR; transport failures and server errors stay unclassified so the
// aggregator reports them as NETWORK_ERROR.
func classify(op string, err error) error {
	if errors.Is(err, horizon.ErrAssetNotFound) {
		return domain.NewContractError("token asset not found", err)
	}

	var statusErr *horizon.StatusError
	if errors.As(err, &statusErr) &&
		statusErr.Code >= http.StatusBadRequest &&
		statusErr.Code < http.StatusInternalServerError &&
		statusErr.Code != http.StatusTooManyRequests {
		return domain.NewContractError(fmt.Sprintf("%s: horizon rejected request (HTTP %d)", op, statusErr.Code), err)
	}

	return fmt.Errorf("%s: %w", op, err)
}

func observe(method string, start time.Time, errp *error) {
	kind := ""
	if *errp != nil {
		kind = string(domain.Classify(*errp).Kind)
	}
	observability.RecordSourceRequest(method, time.Since(start).Seconds(), kind)
}
