package api

import (
	"github.com/mtlprog/vault/internal/domain"
	"github.com/mtlprog/vault/internal/token"
)

// ErrorDTO is the error payload of every API response.
type ErrorDTO struct {
	Kind    domain.ErrorKind `json:"kind,omitempty"`
	Message string           `json:"message"`
	Details string           `json:"details,omitempty"`
}

type errorResponse struct {
	Error ErrorDTO `json:"error"`
}

func errorDTO(err *domain.AppError) *ErrorDTO {
	if err == nil {
		return nil
	}
	return &ErrorDTO{Kind: err.Kind, Message: err.Message, Details: err.Details}
}

// TokenDTO is the presentation of a token.View: amounts formatted for display,
// identifiers truncated, the reward rate rendered as a percentage.
type TokenDTO struct {
	State             token.State `json:"state"`
	Loading           bool        `json:"loading"`
	Name              string      `json:"name,omitempty"`
	Symbol            string      `json:"symbol,omitempty"`
	Decimals          int32       `json:"decimals,omitempty"`
	TotalSupply       string      `json:"totalSupply,omitempty"`
	TotalSupplyAtomic int64       `json:"totalSupplyAtomic,omitempty"`
	RewardToken       string      `json:"rewardToken,omitempty"`
	RewardTokenShort  string      `json:"rewardTokenShort,omitempty"`
	RewardRateBPS     int64       `json:"rewardRateBps,omitempty"`
	RewardRate        string      `json:"rewardRate,omitempty"`
	Account           string      `json:"account,omitempty"`
	AccountShort      string      `json:"accountShort,omitempty"`
	Balance           *string     `json:"balance,omitempty"`
	BalanceAtomic     *int64      `json:"balanceAtomic,omitempty"`
	Error             *ErrorDTO   `json:"error,omitempty"`
}

// NewTokenDTO renders v for API consumers.
func NewTokenDTO(v token.View) TokenDTO {
	dto := TokenDTO{
		State:   v.State,
		Loading: v.Loading,
		Error:   errorDTO(v.Err),
	}

	if v.HasData {
		dto.Name = v.Metadata.Name
		dto.Symbol = v.Metadata.Symbol
		dto.Decimals = v.Metadata.Decimals
		dto.TotalSupply = domain.FormatUnits(v.Metadata.TotalSupply, v.Metadata.Decimals, 2)
		dto.TotalSupplyAtomic = v.Metadata.TotalSupply
		dto.RewardToken = v.Reward.RewardToken
		dto.RewardTokenShort = domain.TruncateAddress(v.Reward.RewardToken)
		dto.RewardRateBPS = v.Reward.RateBPS
		dto.RewardRate = v.Reward.RatePercent()
	}

	if v.Identity != "" {
		dto.Account = v.Identity
		dto.AccountShort = domain.TruncateAddress(v.Identity)
	}
	if v.HasBalance {
		balance := domain.FormatAmount(v.Balance)
		atomic := v.Balance
		dto.Balance = &balance
		dto.BalanceAtomic = &atomic
	}

	return dto
}

// QuoteDTO is the response of the reward quote endpoint.
type QuoteDTO struct {
	Amount        string `json:"amount"`
	AmountAtomic  int64  `json:"amountAtomic"`
	RewardRateBPS int64  `json:"rewardRateBps"`
	RewardRate    string `json:"rewardRate"`
	Reward        string `json:"reward"`
	RewardAtomic  int64  `json:"rewardAtomic"`
	RewardToken   string `json:"rewardToken"`
	// RateSource is "live" when the rate comes from the current token view, "default" otherwise.
	RateSource string `json:"rateSource"`
}

// TimelockDTO is the response of the timelock endpoint.
type TimelockDTO struct {
	Unlock    int64     `json:"unlock"`
	Now       int64     `json:"now"`
	Unlocked  bool      `json:"unlocked"`
	Remaining string    `json:"remaining"`
	Withdraw  *ErrorDTO `json:"withdrawError,omitempty"`
	// CanWithdraw is set only when a withdrawal amount was checked.
	CanWithdraw *bool `json:"canWithdraw,omitempty"`
}
