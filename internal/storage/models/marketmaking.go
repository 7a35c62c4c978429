// internal/storage/models/marketmaking.go
package models

import "time"

// DustPolicy decides what happens to leftover token balances when a session stops.
type DustPolicy string

const (
	DustKeep  DustPolicy = "keep"
	DustSweep DustPolicy = "sweep"
)

// MarketMakingConfig is a user's persisted market-making setup.
type MarketMakingConfig struct {
	BaseModel
	UserID    string `json:"user_id"`
	TokenMint string `json:"token_mint"`

	SpreadPercentage float64 `json:"spread_percentage"`
	PriceRange       float64 `json:"price_range"`
	AutoAdjust       bool    `json:"auto_adjust"`
	Slippage         int     `json:"slippage"`

	NumberOfWallets int        `json:"number_of_wallets"`
	MinTrades       int        `json:"min_trades"`
	MaxTrades       int        `json:"max_trades"`
	MinTradeSize    float64    `json:"min_trade_size"`
	MaxTradeSize    float64    `json:"max_trade_size"`
	Dust            DustPolicy `json:"dust"`

	Active    bool       `json:"active"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	StoppedAt *time.Time `json:"stopped_at,omitempty"`
}
