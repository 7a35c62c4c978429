// internal/settings/modal.go
package settings

import (
	"strings"

	"github.com/rovshanmuradov/tradedesk/internal/types"
)

// Идентификаторы полей модального окна настроек
const (
	FieldMinQuickBuy    = "min_quick_buy"
	FieldMediumQuickBuy = "medium_quick_buy"
	FieldLargeQuickBuy  = "large_quick_buy"

	FieldMinQuickSell    = "min_quick_sell"
	FieldMediumQuickSell = "medium_quick_sell"
	FieldLargeQuickSell  = "large_quick_sell"
)

// ParseBuyModal turns the buy-presets form into a patch. Blank fields are left unchanged.
func ParseBuyModal(values map[string]string) (Patch, error) {
	var p Patch
	targets := []struct {
		field string
		dst   **float64
	}{
		{FieldMinQuickBuy, &p.MinQuickBuy},
		{FieldMediumQuickBuy, &p.MediumQuickBuy},
		{FieldLargeQuickBuy, &p.LargeQuickBuy},
	}
	for _, t := range targets {
		raw := strings.TrimSpace(values[t.field])
		if raw == "" {
			continue
		}
		v, err := types.ParsePositive(t.field, raw)
		if err != nil {
			return Patch{}, err
		}
		*t.dst = &v
	}
	return p, nil
}

// ParseSellModal turns the sell-presets form into a patch. Blank fields are left unchanged.
func ParseSellModal(values map[string]string) (Patch, error) {
	var p Patch
	targets := []struct {
		field string
		dst   **float64
	}{
		{FieldMinQuickSell, &p.MinQuickSell},
		{FieldMediumQuickSell, &p.MediumQuickSell},
		{FieldLargeQuickSell, &p.LargeQuickSell},
	}
	for _, t := range targets {
		raw := strings.TrimSpace(values[t.field])
		if raw == "" {
			continue
		}
		v, err := types.ParsePercent(t.field, raw)
		if err != nil {
			return Patch{}, err
		}
		*t.dst = &v
	}
	return p, nil
}
