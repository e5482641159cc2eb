package horizon

// HorizonAccount represents the JSON response from GET /accounts/{id}.
type HorizonAccount struct {
	ID       string            `json:"id"`
	Balances []HorizonBalance  `json:"balances"`
	Data     map[string]string `json:"data"`
}

// HorizonBalance represents a single balance entry in an account response.
type HorizonBalance struct {
	AssetType   string `json:"asset_type"`
	AssetCode   string `json:"asset_code"`
	AssetIssuer string `json:"asset_issuer"`
	Balance     string `json:"balance"`
	Limit       string `json:"limit,omitempty"`
}

// HorizonAssetsResponse wraps the embedded records for asset queries.
type HorizonAssetsResponse struct {
	Embedded struct {
		Records []HorizonAsset `json:"records"`
	} `json:"_embedded"`
}

// HorizonAsset represents an asset from the Horizon /assets endpoint.
type HorizonAsset struct {
	AssetType            string               `json:"asset_type"`
	AssetCode            string               `json:"asset_code"`
	AssetIssuer          string               `json:"asset_issuer"`
	ContractID           string               `json:"contract_id,omitempty"`
	Accounts             HorizonAssetAccounts `json:"accounts"`
	Balances             HorizonAssetBalances `json:"balances"`
	ContractsAmount      string               `json:"contracts_amount"`
	LiquidityPoolsAmount string               `json:"liquidity_pools_amount"`
}

// HorizonAssetAccounts counts trustlines by authorization state.
type HorizonAssetAccounts struct {
	Authorized int `json:"authorized"`
}

// HorizonAssetBalances sums balances by authorization state, as decimal strings.
type HorizonAssetBalances struct {
	Authorized                      string `json:"authorized"`
	AuthorizedToMaintainLiabilities string `json:"authorized_to_maintain_liabilities"`
	Unauthorized                    string `json:"unauthorized"`
}
