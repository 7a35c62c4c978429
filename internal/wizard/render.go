// internal/wizard/render.go
package wizard

import (
	"fmt"
	"strings"

	"github.com/rovshanmuradov/tradedesk/internal/settings"
	"github.com/rovshanmuradov/tradedesk/internal/storage/models"
	"github.com/rovshanmuradov/tradedesk/internal/types"
	"github.com/rovshanmuradov/tradedesk/internal/ui"
	"github.com/shopspring/decimal"
)

// Render builds the screen for cfg. It has no side effects. If building the
// screen panics, an error screen is returned together with the error.
func Render(desc Descriptor, cfg TradeConfig, display Display, s *models.TradeSettings) (screen ui.Screen, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render %s: %v", desc.Flow, r)
			screen = ui.ErrorScreen("⚠️ Unable to display trade", "Something went wrong while preparing this screen. Please try again.")
		}
	}()

	if s == nil {
		s = settings.Defaults(cfg.UserID)
	}

	screen = ui.Screen{
		Title:     desc.Title,
		Color:     ui.ColorInfo,
		Ephemeral: true,
	}
	if desc.Side == types.SideSell {
		screen.Color = ui.ColorWarning
	}

	screen.AddField("Token", tokenLabel(cfg, display), false)
	if display.PriceUSD > 0 {
		screen.AddField("Price", "$"+formatNumber(display.PriceUSD), true)
	}
	screen.AddField("Wallet", walletLabel(cfg.WalletPublicKey), true)
	screen.AddField("Balance", balanceLabel(desc, display), true)

	if desc.Side == types.SideSell {
		screen.AddField("Sell percentage", sizeLabel(cfg.SellPercentage, "%"), true)
	} else {
		screen.AddField("Amount", sizeLabel(cfg.Amount, " "+desc.BaseCurrency), true)
	}
	screen.AddField("Slippage", cfg.Slippage.String(), true)
	if desc.Has(StepPriorityFee) {
		screen.AddField("Priority fee", cfg.PriorityFee.String(), true)
	}

	if cfg.Completed {
		screen.Color = ui.ColorSuccess
		screen.AddField("Last trade", cfg.LastSignature, false)
		screen.Footer = "Trade completed. Change a setting to trade again."
	} else if !cfg.Ready() {
		screen.Footer = "Select a token and a size to enable Execute."
	}

	flow := string(desc.Flow)
	screen.AddRow(
		ui.Button{Label: "🪙 Select token", ID: ui.ID(ActionTokenPrompt, flow), Style: ui.StylePrimary},
		ui.Button{Label: "🔄 Refresh", ID: ui.ID(ActionRefresh, flow), Style: ui.StyleSecondary},
	)
	screen.AddRow(quickButtons(desc, cfg, s)...)
	screen.AddRow(slippageButtons(desc, cfg)...)
	if desc.Has(StepPriorityFee) {
		screen.AddRow(priorityButtons(desc, cfg)...)
	}
	screen.AddRow(
		ui.Button{
			Label:    "✅ Execute",
			ID:       ui.ID(ActionExecute, flow),
			Style:    ui.StyleSuccess,
			Disabled: !cfg.Ready() || cfg.Completed,
		},
		ui.Button{Label: "✖️ Cancel", ID: ui.ID(ActionCancel, flow), Style: ui.StyleDanger},
	)

	return screen, nil
}

func quickButtons(desc Descriptor, cfg TradeConfig, s *models.TradeSettings) []ui.Button {
	buttons := make([]ui.Button, 0, len(settings.QuickTiers)+1)
	for _, tier := range settings.QuickTiers {
		var (
			value float64
			label string
			err   error
		)
		if desc.Side == types.SideSell {
			value, err = settings.ResolveQuickSell(s, tier)
			label = formatNumber(value) + "%"
		} else {
			value, err = settings.ResolveQuickBuy(s, tier)
			label = formatNumber(value) + " " + desc.BaseCurrency
		}
		if err != nil {
			continue
		}
		style := ui.StyleSecondary
		if cfg.Size() == value {
			style = ui.StyleSuccess
		}
		buttons = append(buttons, ui.Button{Label: label, ID: quickID(desc.Flow, tier), Style: style})
	}
	return append(buttons, ui.Button{
		Label: "✏️ Custom",
		ID:    ui.ID(ActionCustomSize, string(desc.Flow)),
		Style: ui.StylePrimary,
	})
}

func slippageButtons(desc Descriptor, cfg TradeConfig) []ui.Button {
	buttons := make([]ui.Button, 0, len(types.SlippageOptions))
	for _, opt := range types.SlippageOptions {
		style := ui.StyleSecondary
		if cfg.Slippage == opt {
			style = ui.StyleSuccess
		}
		buttons = append(buttons, ui.Button{
			Label: "Slip " + opt.String(),
			ID:    slippageID(desc.Flow, opt),
			Style: style,
		})
	}
	return buttons
}

func priorityButtons(desc Descriptor, cfg TradeConfig) []ui.Button {
	buttons := make([]ui.Button, 0, len(types.PriorityLevels))
	for _, level := range types.PriorityLevels {
		style := ui.StyleSecondary
		if cfg.PriorityFee.Level == level {
			style = ui.StyleSuccess
		}
		buttons = append(buttons, ui.Button{
			Label: "⚡ " + capitalize(string(level)),
			ID:    priorityID(desc.Flow, level),
			Style: style,
		})
	}
	return buttons
}

func tokenLabel(cfg TradeConfig, d Display) string {
	if cfg.TokenAddress == "" {
		return "Not selected"
	}
	switch {
	case d.TokenName != "" && d.TokenSymbol != "":
		return fmt.Sprintf("%s (%s)\n`%s`", d.TokenName, d.TokenSymbol, cfg.TokenAddress)
	case d.TokenSymbol != "":
		return fmt.Sprintf("%s\n`%s`", d.TokenSymbol, cfg.TokenAddress)
	default:
		return "`" + cfg.TokenAddress + "`"
	}
}

func walletLabel(pub string) string {
	if pub == "" {
		return "No wallet"
	}
	return "`" + ShortAddress(pub) + "`"
}

func balanceLabel(desc Descriptor, d Display) string {
	label := formatNumber(d.WalletBalance) + " " + desc.BaseCurrency
	if desc.Side == types.SideSell {
		symbol := d.TokenSymbol
		if symbol == "" {
			symbol = "tokens"
		}
		label += "\n" + formatNumber(d.TokenBalance) + " " + symbol
	}
	return label
}

func sizeLabel(v float64, suffix string) string {
	if v <= 0 {
		return "Not set"
	}
	return formatNumber(v) + suffix
}

// ShortAddress shortens an address for display: "AbCd…WxYz".
func ShortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:4] + "…" + addr[len(addr)-4:]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatNumber(v float64) string {
	if !types.IsFinite(v) {
		return "—"
	}
	return decimal.NewFromFloat(v).String()
}
