package horizon

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// FetchAccount retrieves a Stellar account's details including balances and data entries.
func (c *Client) FetchAccount(ctx context.Context, accountID string) (HorizonAccount, error) {
	var account HorizonAccount
	if err := c.getJSON(ctx, fmt.Sprintf("/accounts/%s", accountID), &account); err != nil {
		return HorizonAccount{}, fmt.Errorf("fetching account %s: %w", accountID, err)
	}
	return account, nil
}

// BalanceOf returns the account's balance of the credit asset code:issuer.
// Returns zero if the account holds no trustline for it.
func (a HorizonAccount) BalanceOf(code, issuer string) (decimal.Decimal, error) {
	balance, ok := lo.Find(a.Balances, func(b HorizonBalance) bool {
		return b.AssetCode == code && b.AssetIssuer == issuer
	})
	if !ok {
		return decimal.Zero, nil
	}
	amt, err := decimal.NewFromString(balance.Balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing balance for %s: %w", code, err)
	}
	return amt, nil
}
