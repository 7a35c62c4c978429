// internal/settings/settings.go
package settings

import (
	"errors"
	"fmt"

	"github.com/rovshanmuradov/tradedesk/internal/storage/models"
	"github.com/rovshanmuradov/tradedesk/internal/types"
)

// Значения по умолчанию для быстрых кнопок
const (
	DefaultMinQuickBuy    = 0.01
	DefaultMediumQuickBuy = 0.05
	DefaultLargeQuickBuy  = 0.1

	DefaultMinQuickSell    = 25.0
	DefaultMediumQuickSell = 50.0
	DefaultLargeQuickSell  = 100.0
)

// QuickTier is one of the three one-click presets.
type QuickTier string

const (
	TierMin    QuickTier = "min"
	TierMedium QuickTier = "medium"
	TierLarge  QuickTier = "large"
)

// QuickTiers is the display order of the preset buttons.
var QuickTiers = []QuickTier{TierMin, TierMedium, TierLarge}

// ParseQuickTier converts a button argument into a tier.
func ParseQuickTier(s string) (QuickTier, error) {
	switch t := QuickTier(s); t {
	case TierMin, TierMedium, TierLarge:
		return t, nil
	}
	return "", fmt.Errorf("unknown quick tier: %q", s)
}

// Defaults returns the presets a user gets before saving anything.
func Defaults(userID string) *models.TradeSettings {
	return &models.TradeSettings{
		UserID:          userID,
		MinQuickBuy:     DefaultMinQuickBuy,
		MediumQuickBuy:  DefaultMediumQuickBuy,
		LargeQuickBuy:   DefaultLargeQuickBuy,
		MinQuickSell:    DefaultMinQuickSell,
		MediumQuickSell: DefaultMediumQuickSell,
		LargeQuickSell:  DefaultLargeQuickSell,
	}
}

// Validate checks that buy presets are positive and sell presets are in (0, 100].
func Validate(s *models.TradeSettings) error {
	if s == nil {
		return errors.New("settings are nil")
	}
	buys := map[string]float64{
		"min_quick_buy":    s.MinQuickBuy,
		"medium_quick_buy": s.MediumQuickBuy,
		"large_quick_buy":  s.LargeQuickBuy,
	}
	for field, v := range buys {
		if !(v > 0) {
			return &types.ValidationError{Field: field, Reason: "must be greater than 0"}
		}
	}
	sells := map[string]float64{
		"min_quick_sell":    s.MinQuickSell,
		"medium_quick_sell": s.MediumQuickSell,
		"large_quick_sell":  s.LargeQuickSell,
	}
	for field, v := range sells {
		if !(v > 0) || v > 100 {
			return &types.ValidationError{Field: field, Reason: "must be greater than 0 and at most 100"}
		}
	}
	return nil
}

// Patch is a partial settings update. Nil fields keep the stored value.
type Patch struct {
	MinQuickBuy    *float64
	MediumQuickBuy *float64
	LargeQuickBuy  *float64

	MinQuickSell    *float64
	MediumQuickSell *float64
	LargeQuickSell  *float64
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.MinQuickBuy == nil && p.MediumQuickBuy == nil && p.LargeQuickBuy == nil &&
		p.MinQuickSell == nil && p.MediumQuickSell == nil && p.LargeQuickSell == nil
}

// Apply writes the set fields of p onto s.
func (p Patch) Apply(s *models.TradeSettings) {
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&s.MinQuickBuy, p.MinQuickBuy)
	set(&s.MediumQuickBuy, p.MediumQuickBuy)
	set(&s.LargeQuickBuy, p.LargeQuickBuy)
	set(&s.MinQuickSell, p.MinQuickSell)
	set(&s.MediumQuickSell, p.MediumQuickSell)
	set(&s.LargeQuickSell, p.LargeQuickSell)
}

// ResolveQuickBuy maps a tier to a buy amount. Missing settings fall back to defaults.
func ResolveQuickBuy(s *models.TradeSettings, tier QuickTier) (float64, error) {
	if s == nil {
		s = Defaults("")
	}
	switch tier {
	case TierMin:
		return s.MinQuickBuy, nil
	case TierMedium:
		return s.MediumQuickBuy, nil
	case TierLarge:
		return s.LargeQuickBuy, nil
	}
	return 0, fmt.Errorf("unknown quick tier: %q", tier)
}

// ResolveQuickSell maps a tier to a sell percentage. Missing settings fall back to defaults.
func ResolveQuickSell(s *models.TradeSettings, tier QuickTier) (float64, error) {
	if s == nil {
		s = Defaults("")
	}
	switch tier {
	case TierMin:
		return s.MinQuickSell, nil
	case TierMedium:
		return s.MediumQuickSell, nil
	case TierLarge:
		return s.LargeQuickSell, nil
	}
	return 0, fmt.Errorf("unknown quick tier: %q", tier)
}

// NotificationChannels returns where trade notifications go: the primary
// channel if one is set, the legacy single channel, or every registered one.
func NotificationChannels(s *models.TradeSettings) []string {
	if s == nil {
		return nil
	}
	if s.PrimaryChannel != "" {
		return []string{s.PrimaryChannel}
	}
	if s.ChannelID != "" {
		return []string{s.ChannelID}
	}
	return append([]string(nil), s.Channels...)
}
