package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NetworkProfile holds the network endpoints and contract identifiers the sources talk to.
// It is passed explicitly to the components that need it.
type NetworkProfile struct {
	Name              string `yaml:"name"`
	HorizonURL        string `yaml:"horizon_url"`
	SorobanURL        string `yaml:"soroban_url"`
	FriendbotURL      string `yaml:"friendbot_url"`
	Passphrase        string `yaml:"passphrase"`
	VaultContractID   string `yaml:"vault_contract_id"`
	VaultAdmin        string `yaml:"vault_admin"`
	RewardTokenID     string `yaml:"reward_token_id"`
	TokenCode         string `yaml:"token_code"`
	TokenIssuer       string `yaml:"token_issuer"`
	TokenName         string `yaml:"token_name"`
	DefaultRewardRate int64  `yaml:"default_reward_rate_bps"`
}

// TestnetProfile returns the Stellar testnet deployment of the vault.
func TestnetProfile() NetworkProfile {
	return NetworkProfile{
		Name:              "Testnet",
		HorizonURL:        "https://horizon-testnet.stellar.org",
		SorobanURL:        "https://soroban-testnet.stellar.org",
		FriendbotURL:      "https://friendbot.stellar.org",
		Passphrase:        "Test SDF Network ; September 2015",
		VaultContractID:   "CB4WTU6F45BHCEQBBBS7P5RXEFWD5ELMO3XTWEGDRVV3NS5DDZF6QBSN",
		VaultAdmin:        "GDHQ6TNWZ4V2JVCDWEUVW7YKFBXCOQZRRUCT27LAKES3PGOE6JSZMSMD",
		RewardTokenID:     "CABSDKREP4SBIHCIAOPSL2O5DL575N44ZAAUNFXUV2YN7UYSOX5AONWX",
		TokenCode:         "SVT",
		TokenIssuer:       "GDHQ6TNWZ4V2JVCDWEUVW7YKFBXCOQZRRUCT27LAKES3PGOE6JSZMSMD",
		TokenName:         "StellarVault Token",
		DefaultRewardRate: 500,
	}
}

// LoadNetworkProfile reads a YAML profile from path. Fields missing from the file keep their
// testnet values; an empty path returns the testnet profile.
func LoadNetworkProfile(path string) (NetworkProfile, error) {
	profile := TestnetProfile()
	if path == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return NetworkProfile{}, fmt.Errorf("reading network profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return NetworkProfile{}, fmt.Errorf("parsing network profile %s: %w", path, err)
	}
	if profile.DefaultRewardRate < 0 {
		return NetworkProfile{}, fmt.Errorf("network profile %s: negative default_reward_rate_bps", path)
	}
	return profile, nil
}
