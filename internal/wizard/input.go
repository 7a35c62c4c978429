// internal/wizard/input.go
package wizard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rovshanmuradov/tradedesk/internal/blockchain"
	"github.com/rovshanmuradov/tradedesk/internal/session"
	"github.com/rovshanmuradov/tradedesk/internal/settings"
	"github.com/rovshanmuradov/tradedesk/internal/storage/models"
	"github.com/rovshanmuradov/tradedesk/internal/types"
)

// ValidationError names the rejected field and the violated constraint.
type ValidationError = types.ValidationError

// ParseAmount accepts a finite buy amount greater than zero.
func ParseAmount(raw string) (float64, error) {
	return types.ParsePositive(string(StepAmount), raw)
}

// ParsePercentage accepts a sell percentage in (0, 100].
func ParsePercentage(raw string) (float64, error) {
	return types.ParsePercent(string(StepPercentage), raw)
}

// ParseTokenAddress checks the address format for chain.
func ParseTokenAddress(chain types.Chain, raw string) (string, error) {
	addr := strings.TrimSpace(raw)
	if addr == "" {
		return "", &ValidationError{Field: string(StepToken), Reason: "a token address is required"}
	}
	if err := blockchain.ValidateTokenAddress(chain, addr); err != nil {
		return "", &ValidationError{Field: string(StepToken), Reason: err.Error()}
	}
	return addr, nil
}

// ParseSlippage accepts only the offered basis point options.
func ParseSlippage(raw string) (types.SlippageBps, error) {
	bps, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &ValidationError{Field: string(StepSlippage), Reason: fmt.Sprintf("%q is not a number", raw)}
	}
	s, err := types.ParseSlippage(bps)
	if err != nil {
		return 0, &ValidationError{Field: string(StepSlippage), Reason: err.Error()}
	}
	return s, nil
}

// ParsePriorityFee accepts only the enumerated fee tiers.
func ParsePriorityFee(raw string) (types.PriorityFee, error) {
	level, err := types.ParsePriorityLevel(strings.TrimSpace(raw))
	if err != nil {
		return types.PriorityFee{}, &ValidationError{Field: string(StepPriorityFee), Reason: err.Error()}
	}
	fee, err := types.NewPriorityFee(level)
	if err != nil {
		return types.PriorityFee{}, &ValidationError{Field: string(StepPriorityFee), Reason: err.Error()}
	}
	return fee, nil
}

// ApplyField validates raw for step and patches the session. On a validation
// error the stored config is left as it was.
func ApplyField(store *session.Store[TradeConfig], key session.Key, step Step, raw string) (TradeConfig, error) {
	desc, err := DescriptorFor(key.Flow)
	if err != nil {
		return TradeConfig{}, err
	}
	if !desc.Has(step) {
		return TradeConfig{}, &ValidationError{Field: string(step), Reason: "not configurable for this flow"}
	}

	var apply func(*TradeConfig) bool
	switch step {
	case StepToken:
		addr, err := ParseTokenAddress(desc.Chain, raw)
		if err != nil {
			return TradeConfig{}, err
		}
		apply = func(c *TradeConfig) bool {
			changed := c.TokenAddress != addr
			c.TokenAddress = addr
			return changed
		}
	case StepAmount:
		amount, err := ParseAmount(raw)
		if err != nil {
			return TradeConfig{}, err
		}
		apply = func(c *TradeConfig) bool {
			changed := c.Amount != amount
			c.Amount = amount
			return changed
		}
	case StepPercentage:
		pct, err := ParsePercentage(raw)
		if err != nil {
			return TradeConfig{}, err
		}
		apply = func(c *TradeConfig) bool {
			changed := c.SellPercentage != pct
			c.SellPercentage = pct
			return changed
		}
	case StepSlippage:
		bps, err := ParseSlippage(raw)
		if err != nil {
			return TradeConfig{}, err
		}
		apply = func(c *TradeConfig) bool {
			changed := c.Slippage != bps
			c.Slippage = bps
			return changed
		}
	case StepPriorityFee:
		fee, err := ParsePriorityFee(raw)
		if err != nil {
			return TradeConfig{}, err
		}
		apply = func(c *TradeConfig) bool {
			changed := c.PriorityFee != fee
			c.PriorityFee = fee
			return changed
		}
	default:
		return TradeConfig{}, fmt.Errorf("unknown step %q", step)
	}

	return store.Update(key, func(c *TradeConfig) error {
		if apply(c) {
			c.Completed = false
		}
		return nil
	})
}

// ApplyQuick resolves a quick tier against the user's settings (defaults when
// nil) and applies it as the trade size.
func ApplyQuick(store *session.Store[TradeConfig], key session.Key, tier settings.QuickTier, s *models.TradeSettings) (TradeConfig, error) {
	desc, err := DescriptorFor(key.Flow)
	if err != nil {
		return TradeConfig{}, err
	}

	var value float64
	if desc.Side == types.SideSell {
		value, err = settings.ResolveQuickSell(s, tier)
	} else {
		value, err = settings.ResolveQuickBuy(s, tier)
	}
	if err != nil {
		return TradeConfig{}, err
	}

	return ApplyField(store, key, desc.SizeStep(), strconv.FormatFloat(value, 'f', -1, 64))
}
