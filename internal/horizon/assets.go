package horizon

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// ErrAssetNotFound is returned when Horizon has no record of the requested asset.
var ErrAssetNotFound = errors.New("asset not found")

// FetchAsset returns the Horizon record of the credit asset code:issuer.
func (c *Client) FetchAsset(ctx context.Context, code, issuer string) (HorizonAsset, error) {
	params := url.Values{}
	params.Set("asset_code", code)
	params.Set("asset_issuer", issuer)
	params.Set("limit", "1")

	var resp HorizonAssetsResponse
	if err := c.getJSON(ctx, "/assets?"+params.Encode(), &resp); err != nil {
		return HorizonAsset{}, fmt.Errorf("fetching asset %s: %w", code, err)
	}

	if len(resp.Embedded.Records) == 0 {
		return HorizonAsset{}, fmt.Errorf("fetching asset %s: %w", code, ErrAssetNotFound)
	}

	return resp.Embedded.Records[0], nil
}

// TotalSupply sums every bucket Horizon reports for the asset: trustline balances in all
// authorization states plus amounts held by liquidity pools and contracts. Empty buckets count as zero.
func (a HorizonAsset) TotalSupply() (decimal.Decimal, error) {
	buckets := []string{
		a.Balances.Authorized,
		a.Balances.AuthorizedToMaintainLiabilities,
		a.Balances.Unauthorized,
		a.LiquidityPoolsAmount,
		a.ContractsAmount,
	}

	var parseErr error
	total := lo.Reduce(buckets, func(sum decimal.Decimal, s string, _ int) decimal.Decimal {
		if s == "" {
			return sum
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			parseErr = fmt.Errorf("parsing supply bucket %q: %w", s, err)
			return sum
		}
		return sum.Add(d)
	}, decimal.Zero)
	if parseErr != nil {
		return decimal.Zero, parseErr
	}
	return total, nil
}
