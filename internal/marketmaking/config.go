// internal/marketmaking/config.go
package marketmaking

import (
	"errors"
	"strconv"
	"strings"

	"github.com/rovshanmuradov/tradedesk/internal/blockchain/solbc"
	"github.com/rovshanmuradov/tradedesk/internal/storage/models"
	"github.com/rovshanmuradov/tradedesk/internal/types"
)

// Ограничения параметров
const (
	MaxWallets    = 10
	MaxTrades     = 1000
	MaxPercentage = 100.0
)

// Значения по умолчанию
const (
	DefaultSpread       = 1.0
	DefaultPriceRange   = 5.0
	DefaultWallets      = 1
	DefaultMinTrades    = 1
	DefaultMaxTrades    = 5
	DefaultMinTradeSize = 0.01
	DefaultMaxTradeSize = 0.1
)

// Defaults returns the setup a user starts from. TokenMint is empty, so the
// config cannot be started until a token is chosen.
func Defaults(userID string) *models.MarketMakingConfig {
	return &models.MarketMakingConfig{
		UserID:           userID,
		SpreadPercentage: DefaultSpread,
		PriceRange:       DefaultPriceRange,
		AutoAdjust:       true,
		Slippage:         int(types.DefaultSlippage),
		NumberOfWallets:  DefaultWallets,
		MinTrades:        DefaultMinTrades,
		MaxTrades:        DefaultMaxTrades,
		MinTradeSize:     DefaultMinTradeSize,
		MaxTradeSize:     DefaultMaxTradeSize,
		Dust:             models.DustKeep,
	}
}

func invalid(field, reason string) error {
	return &types.ValidationError{Field: field, Reason: reason}
}

// Validate checks the numeric ranges and, when set, the token address.
func Validate(c *models.MarketMakingConfig) error {
	if c == nil {
		return errors.New("market making config is nil")
	}
	if c.TokenMint != "" {
		if err := solbc.ValidateAddress(c.TokenMint); err != nil {
			return invalid(FieldTokenMint, "not a valid Solana mint address")
		}
	}
	if !(c.SpreadPercentage >= 0) || c.SpreadPercentage > MaxPercentage {
		return invalid(FieldSpread, "must be between 0 and 100")
	}
	if !(c.PriceRange >= 0) || c.PriceRange > MaxPercentage {
		return invalid(FieldPriceRange, "must be between 0 and 100")
	}
	if _, err := types.ParseSlippage(c.Slippage); err != nil {
		return invalid(FieldSlippage, err.Error())
	}
	if c.NumberOfWallets < 1 || c.NumberOfWallets > MaxWallets {
		return invalid(FieldWallets, "must be between 1 and 10")
	}
	if c.MinTrades < 1 || c.MinTrades > MaxTrades {
		return invalid(FieldMinTrades, "must be between 1 and 1000")
	}
	if c.MaxTrades < c.MinTrades || c.MaxTrades > MaxTrades {
		return invalid(FieldMaxTrades, "must be at least min trades and at most 1000")
	}
	if !(c.MinTradeSize > 0) {
		return invalid(FieldMinTradeSize, "must be greater than 0")
	}
	if !(c.MaxTradeSize >= c.MinTradeSize) {
		return invalid(FieldMaxTradeSize, "must be at least min trade size")
	}
	if _, err := ParseDust(string(c.Dust)); err != nil {
		return invalid(FieldDust, err.Error())
	}
	return nil
}

// ParseDust accepts keep or sweep.
func ParseDust(s string) (models.DustPolicy, error) {
	switch p := models.DustPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case models.DustKeep, models.DustSweep:
		return p, nil
	}
	return "", errors.New("must be keep or sweep")
}

// Patch is a partial update. Nil fields keep their stored values.
type Patch struct {
	TokenMint        *string
	SpreadPercentage *float64
	PriceRange       *float64
	AutoAdjust       *bool
	Slippage         *int
	NumberOfWallets  *int
	MinTrades        *int
	MaxTrades        *int
	MinTradeSize     *float64
	MaxTradeSize     *float64
	Dust             *models.DustPolicy
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// Apply copies the set fields onto c.
func (p Patch) Apply(c *models.MarketMakingConfig) {
	if p.TokenMint != nil {
		c.TokenMint = *p.TokenMint
	}
	if p.SpreadPercentage != nil {
		c.SpreadPercentage = *p.SpreadPercentage
	}
	if p.PriceRange != nil {
		c.PriceRange = *p.PriceRange
	}
	if p.AutoAdjust != nil {
		c.AutoAdjust = *p.AutoAdjust
	}
	if p.Slippage != nil {
		c.Slippage = *p.Slippage
	}
	if p.NumberOfWallets != nil {
		c.NumberOfWallets = *p.NumberOfWallets
	}
	if p.MinTrades != nil {
		c.MinTrades = *p.MinTrades
	}
	if p.MaxTrades != nil {
		c.MaxTrades = *p.MaxTrades
	}
	if p.MinTradeSize != nil {
		c.MinTradeSize = *p.MinTradeSize
	}
	if p.MaxTradeSize != nil {
		c.MaxTradeSize = *p.MaxTradeSize
	}
	if p.Dust != nil {
		c.Dust = *p.Dust
	}
}

// Поля модальных окон
const (
	FieldTokenMint    = "token_mint"
	FieldSpread       = "spread_percentage"
	FieldPriceRange   = "price_range"
	FieldSlippage     = "slippage_bps"
	FieldWallets      = "number_of_wallets"
	FieldMinTrades    = "min_trades"
	FieldMaxTrades    = "max_trades"
	FieldMinTradeSize = "min_trade_size"
	FieldMaxTradeSize = "max_trade_size"
	FieldDust         = "dust"
)

// ParseModal turns submitted form values into a patch. Blank and unknown
// fields are ignored; the first invalid value aborts with a ValidationError.
func ParseModal(values map[string]string) (Patch, error) {
	var p Patch
	for field, raw := range values {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if err := p.set(field, raw); err != nil {
			return Patch{}, err
		}
	}
	return p, nil
}

func (p *Patch) set(field, raw string) error {
	switch field {
	case FieldTokenMint:
		if err := solbc.ValidateAddress(raw); err != nil {
			return invalid(field, "not a valid Solana mint address")
		}
		p.TokenMint = &raw
	case FieldSpread, FieldPriceRange:
		v, err := types.ParseRange(field, raw, 0, MaxPercentage)
		if err != nil {
			return err
		}
		if field == FieldSpread {
			p.SpreadPercentage = &v
		} else {
			p.PriceRange = &v
		}
	case FieldSlippage:
		bps, err := strconv.Atoi(raw)
		if err != nil {
			return invalid(field, "must be a whole number of basis points")
		}
		if _, err := types.ParseSlippage(bps); err != nil {
			return invalid(field, err.Error())
		}
		p.Slippage = &bps
	case FieldWallets:
		v, err := types.ParseBoundedInt(field, raw, 1, MaxWallets)
		if err != nil {
			return err
		}
		p.NumberOfWallets = &v
	case FieldMinTrades, FieldMaxTrades:
		v, err := types.ParseBoundedInt(field, raw, 1, MaxTrades)
		if err != nil {
			return err
		}
		if field == FieldMinTrades {
			p.MinTrades = &v
		} else {
			p.MaxTrades = &v
		}
	case FieldMinTradeSize, FieldMaxTradeSize:
		v, err := types.ParsePositive(field, raw)
		if err != nil {
			return err
		}
		if field == FieldMinTradeSize {
			p.MinTradeSize = &v
		} else {
			p.MaxTradeSize = &v
		}
	case FieldDust:
		d, err := ParseDust(raw)
		if err != nil {
			return invalid(field, err.Error())
		}
		p.Dust = &d
	}
	return nil
}
