package jetpump

// This file contains data structures for the JetPump API.
// Field tags follow the backend's JSON wire format exactly.

// TokenData is the identity record of a launched token.
// Mint and freeze authority arrive as the string "null" (or empty) once
// revoked; the audit badge is derived from those two fields.
type TokenData struct {
	ID              int    `json:"id"`
	Address         string `json:"address"`
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	Decimals        *int   `json:"decimals"`
	ImageURI        string `json:"image_uri"`
	MintAuthority   string `json:"mint_authority"`
	FreezeAuthority string `json:"freeze_authority"`
	MaxSupply       string `json:"max_supply"`
	Status          string `json:"status"`
	TxHash          string `json:"tx_hash"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// PoolData describes the AMM pool backing a token. Numeric fields are
// nullable while the pool is still indexing.
type PoolData struct {
	ID                int      `json:"id"`
	Address           string   `json:"address"`
	TokenID           int      `json:"token_id"`
	BaseMint          string   `json:"base_mint"`
	QuoteMint         string   `json:"quote_mint"`
	BaseReserve       *float64 `json:"base_reserve"`
	PriceQuotePerBase *float64 `json:"price_quote_per_base"`
	LiquidityInQuote  *float64 `json:"liquidity_in_quote"`
	KValue            *float64 `json:"k_value"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

// VolumeData holds traded volume per time bucket.
type VolumeData struct {
	M5  float64 `json:"m5"`
	H1  float64 `json:"h1"`
	H6  float64 `json:"h6"`
	H24 float64 `json:"h24"`
}

// LiquidityData holds pool liquidity in USD and both legs.
type LiquidityData struct {
	USD   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}

// TxCounts is a buys/sells pair for one time bucket.
type TxCounts struct {
	Buys  int `json:"buys"`
	Sells int `json:"sells"`
}

// TransactionsData holds transaction counts per time bucket.
type TransactionsData struct {
	M5  TxCounts `json:"m5"`
	H1  TxCounts `json:"h1"`
	H6  TxCounts `json:"h6"`
	H24 TxCounts `json:"h24"`
}

// MetricsData is the indexed market snapshot of a token.
type MetricsData struct {
	ID          int              `json:"id"`
	TokenID     int              `json:"token_id"`
	PairAddress string           `json:"pair_address"`
	Timestamp   string           `json:"timestamp"`
	PriceSOL    float64          `json:"price_sol"`
	PriceUSD    float64          `json:"price_usd"`
	MarketCap   float64          `json:"market_cap"`
	Volume      VolumeData       `json:"volume"`
	Liquidity   LiquidityData    `json:"liquidity"`
	Txns        TransactionsData `json:"txns"`
}

// TokenInfo bundles a token with its pool and metrics. Pool and Metrics are
// nil for tokens the indexer has not caught up with yet.
type TokenInfo struct {
	Token   TokenData    `json:"token"`
	Pool    *PoolData    `json:"pool"`
	Metrics *MetricsData `json:"metrics"`
}

// TokensResponse wraps the token list endpoint payload.
type TokensResponse struct {
	Data []TokenInfo `json:"data"`
}

// TokenBalance is the caller's held balance of one token.
type TokenBalance struct {
	TokenAddress string  `json:"token_address"`
	Balance      float64 `json:"balance"`
}

// TxHistoryEntry is one row of a token's per-user transaction history.
// Synthesized entries built from live tx_status events use the same shape.
type TxHistoryEntry struct {
	TxHash        string  `json:"tx_hash"`
	TxType        string  `json:"tx_type"` // "buy" or "sell"
	Status        string  `json:"status"`  // "success" or "error"
	AmountSOL     float64 `json:"amount_sol"`
	AmountTokens  float64 `json:"amount_tokens"`
	PricePerToken float64 `json:"price_per_token_sol"`
	ErrorType     string  `json:"error_type,omitempty"`
	Timestamp     string  `json:"timestamp"`
}

// TxHistoryResponse wraps the token transaction history payload.
type TxHistoryResponse struct {
	Data []TxHistoryEntry `json:"data"`
}

// UserSettings holds per-user trading defaults. Values are decimal strings,
// exactly as the trade submission channel expects them.
type UserSettings struct {
	Fee      string `json:"fee"`      // priority fee in SOL
	Slippage string `json:"slippage"` // percent, integer string in [1,100]
	Buy      string `json:"buy"`      // buy amount in SOL
	Sell     string `json:"sell"`     // sell amount as percent of held balance
}

// DefaultSettings are used until the backend returns stored values.
func DefaultSettings() UserSettings {
	return UserSettings{Fee: "0.01", Slippage: "25", Buy: "0.01", Sell: "25"}
}

// ReferralData holds the caller's referral program stats.
type ReferralData struct {
	Code              string  `json:"code"`
	Username          string  `json:"username"`
	CommissionPercent float64 `json:"commission_percent"`
	InvitedCount      int     `json:"invited_count"`
}

// Position is one open or closed trading position.
type Position struct {
	TokenAddress string  `json:"token_address"`
	TokenName    string  `json:"token_name"`
	TokenSymbol  string  `json:"token_symbol"`
	Amount       float64 `json:"amount"`
	InvestedSOL  float64 `json:"invested_sol"`
	CurrentSOL   float64 `json:"current_sol"`
	PnLSOL       float64 `json:"pnl_sol"`
	PnLPercent   float64 `json:"pnl_percent"`
	OpenedAt     string  `json:"opened_at"`
	ClosedAt     string  `json:"closed_at,omitempty"`
}

// PositionsResponse wraps a position list payload.
type PositionsResponse struct {
	Data []Position `json:"data"`
}

// WalletData is the custodial wallet summary.
type WalletData struct {
	Address string  `json:"address"`
	Balance float64 `json:"balance"` // SOL
}

// WalletExport carries the private key of the custodial wallet.
type WalletExport struct {
	PrivateKey string `json:"private_key"` // base58, 64 bytes decoded
}

// Withdrawal is one row of withdrawal history.
type Withdrawal struct {
	ID        string  `json:"id"`
	Address   string  `json:"address"`
	Amount    float64 `json:"amount"`
	Status    string  `json:"status"`
	TxHash    string  `json:"tx_hash,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// WithdrawalsResponse wraps the withdrawal history payload.
type WithdrawalsResponse struct {
	Data []Withdrawal `json:"data"`
}

// WithdrawRequest is the body of a withdrawal submission.
type WithdrawRequest struct {
	Address string  `json:"address"`
	Amount  float64 `json:"amount"`
}

// SetWalletRequest replaces the custodial wallet with an imported key.
type SetWalletRequest struct {
	PrivateKey string `json:"private_key"`
}

// StatusResponse is the generic accepted/rejected answer to a mutation.
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
