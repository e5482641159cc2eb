package domain

// TokenMetadata describes the reward token as reported by its source.
type TokenMetadata struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Decimals    int32  `json:"decimals"`
	TotalSupply int64  `json:"totalSupply"` // atomic units
}

// RewardConfig is the vault's reward configuration: which token is minted on deposit and at what rate.
type RewardConfig struct {
	RewardToken string `json:"rewardToken"`
	RateBPS     int64  `json:"rateBps"`
}

// RewardFor returns the reward minted for a deposit of depositAtomic stroops.
func (c RewardConfig) RewardFor(depositAtomic int64) int64 {
	return CalculateReward(depositAtomic, c.RateBPS)
}

// RatePercent returns the configured rate as a one-decimal percentage string.
func (c RewardConfig) RatePercent() string {
	return BPSToPercent(c.RateBPS)
}
