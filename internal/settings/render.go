// internal/settings/render.go
package settings

import (
	"strings"

	"github.com/rovshanmuradov/tradedesk/internal/storage/models"
	"github.com/rovshanmuradov/tradedesk/internal/types"
	"github.com/rovshanmuradov/tradedesk/internal/ui"
	"github.com/shopspring/decimal"
)

// Действия экрана настроек
const (
	ActionShow     = "st_show"
	ActionEditBuy  = "st_buy"
	ActionEditSell = "st_sell"
	ModalBuy       = "st_m_buy"
	ModalSell      = "st_m_sell"
)

// ButtonActions lists every action the settings screen can carry.
var ButtonActions = []string{ActionShow, ActionEditBuy, ActionEditSell}

// ModalActions lists the modal submissions the settings screen opens.
var ModalActions = []string{ModalBuy, ModalSell}

func num(v float64) string {
	if !types.IsFinite(v) {
		return "—"
	}
	return decimal.NewFromFloat(v).String()
}

// Render shows the quick-trade presets and notification channels.
func Render(s *models.TradeSettings) ui.Screen {
	if s == nil {
		s = Defaults("")
	}
	screen := ui.Screen{
		Title:     "⚙️ Trade settings",
		Color:     ui.ColorInfo,
		Ephemeral: true,
	}
	screen.AddField("Quick buy (SOL/XRP)",
		num(s.MinQuickBuy)+" / "+num(s.MediumQuickBuy)+" / "+num(s.LargeQuickBuy), false)
	screen.AddField("Quick sell (%)",
		num(s.MinQuickSell)+" / "+num(s.MediumQuickSell)+" / "+num(s.LargeQuickSell), false)

	channels := NotificationChannels(s)
	mentions := make([]string, 0, len(channels))
	for _, c := range channels {
		mentions = append(mentions, "<#"+c+">")
	}
	screen.AddField("Notifications", strings.Join(mentions, ", "), false)

	screen.AddRow(
		ui.Button{Label: "Edit quick buy", ID: ActionEditBuy, Style: ui.StylePrimary},
		ui.Button{Label: "Edit quick sell", ID: ActionEditSell, Style: ui.StylePrimary},
	)
	screen.Footer = "Use /channel in a channel to receive trade notifications there."
	return screen
}

// BuyModal edits the buy presets, prefilled with the current values.
func BuyModal(s *models.TradeSettings) ui.Modal {
	if s == nil {
		s = Defaults("")
	}
	return ui.Modal{
		ID:    ModalBuy,
		Title: "Quick buy amounts",
		Inputs: []ui.TextInput{
			{ID: FieldMinQuickBuy, Label: "Min quick buy", Value: num(s.MinQuickBuy), MaxLength: 20},
			{ID: FieldMediumQuickBuy, Label: "Medium quick buy", Value: num(s.MediumQuickBuy), MaxLength: 20},
			{ID: FieldLargeQuickBuy, Label: "Large quick buy", Value: num(s.LargeQuickBuy), MaxLength: 20},
		},
	}
}

// SellModal edits the sell presets, prefilled with the current values.
func SellModal(s *models.TradeSettings) ui.Modal {
	if s == nil {
		s = Defaults("")
	}
	return ui.Modal{
		ID:    ModalSell,
		Title: "Quick sell percentages",
		Inputs: []ui.TextInput{
			{ID: FieldMinQuickSell, Label: "Min quick sell %", Value: num(s.MinQuickSell), MaxLength: 6},
			{ID: FieldMediumQuickSell, Label: "Medium quick sell %", Value: num(s.MediumQuickSell), MaxLength: 6},
			{ID: FieldLargeQuickSell, Label: "Large quick sell %", Value: num(s.LargeQuickSell), MaxLength: 6},
		},
	}
}
