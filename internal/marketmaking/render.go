// internal/marketmaking/render.go
package marketmaking

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rovshanmuradov/tradedesk/internal/storage/models"
	"github.com/rovshanmuradov/tradedesk/internal/ui"
	"github.com/shopspring/decimal"
)

// Действия кнопок панели маркет-мейкинга
const (
	ActionPanel      = "mm_panel"
	ActionToken      = "mm_token"
	ActionStrategy   = "mm_strategy"
	ActionWallets    = "mm_wallets"
	ActionAutoAdjust = "mm_auto"
	ActionDust       = "mm_dust"
	ActionStart      = "mm_start"
	ActionStop       = "mm_stop"
	ModalToken       = "mm_m_token"
	ModalStrategy    = "mm_m_strategy"
	ModalWallets     = "mm_m_wallets"
)

// ButtonActions lists every action the panel can carry.
var ButtonActions = []string{
	ActionPanel, ActionToken, ActionStrategy, ActionWallets,
	ActionAutoAdjust, ActionDust, ActionStart, ActionStop,
}

// ModalActions lists the modal submissions the panel opens.
var ModalActions = []string{ModalToken, ModalStrategy, ModalWallets}

func pct(v float64) string {
	return decimal.NewFromFloat(v).String() + "%"
}

func sol(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(4) + " SOL"
}

// RenderPanel builds the configuration and control screen.
func RenderPanel(st Status) ui.Screen {
	cfg := st.Config
	screen := ui.Screen{
		Title:     "📈 Market Making",
		Color:     ui.ColorInfo,
		Ephemeral: true,
	}

	token := cfg.TokenMint
	if token == "" {
		token = "Not selected"
	}
	screen.AddField("Token", token, false)
	screen.AddField("Spread", pct(cfg.SpreadPercentage), true)
	screen.AddField("Price range", pct(cfg.PriceRange), true)
	screen.AddField("Slippage", pct(float64(cfg.Slippage)/100), true)
	screen.AddField("Auto adjust", onOff(cfg.AutoAdjust), true)
	screen.AddField("Wallets", strconv.Itoa(cfg.NumberOfWallets), true)
	screen.AddField("Trades per wallet", fmt.Sprintf("%d-%d", cfg.MinTrades, cfg.MaxTrades), true)
	screen.AddField("Trade size", sol(cfg.MinTradeSize)+" - "+sol(cfg.MaxTradeSize), true)
	screen.AddField("Dust", string(cfg.Dust), true)

	if st.Active {
		screen.Color = ui.ColorSuccess
		screen.AddField("Status", "🟢 Running for "+st.Summary.Duration.Truncate(time.Second).String(), false)
		screen.AddField("Orders filled", strconv.Itoa(st.Summary.OrdersFilled), true)
		screen.AddField("Volume", sol(st.Summary.VolumeBought+st.Summary.VolumeSold), true)
		screen.AddField("P&L", sol(st.Summary.PnL), true)
		if !st.Live {
			screen.Footer = "Live statistics were reset since this session started."
		}
	} else {
		screen.AddField("Status", "⚪ Stopped", false)
		if cfg.TokenMint == "" {
			screen.Footer = "Select a token to enable Start."
		}
	}

	locked := st.Active
	screen.AddRow(
		ui.Button{Label: "Token", ID: ActionToken, Style: ui.StylePrimary, Disabled: locked},
		ui.Button{Label: "Strategy", ID: ActionStrategy, Style: ui.StyleSecondary},
		ui.Button{Label: "Wallets", ID: ActionWallets, Style: ui.StyleSecondary},
		ui.Button{Label: "Auto adjust: " + onOff(cfg.AutoAdjust), ID: ActionAutoAdjust, Style: ui.StyleSecondary},
		ui.Button{Label: "Dust: " + string(cfg.Dust), ID: ActionDust, Style: ui.StyleSecondary},
	)
	screen.AddRow(
		ui.Button{Label: "Start", ID: ActionStart, Style: ui.StyleSuccess, Disabled: st.Active || cfg.TokenMint == ""},
		ui.Button{Label: "Stop", ID: ActionStop, Style: ui.StyleDanger, Disabled: !st.Active},
		ui.Button{Label: "Refresh", ID: ActionPanel, Style: ui.StyleSecondary},
	)
	return screen
}

// RenderSummary is shown after Stop.
func RenderSummary(s Summary) ui.Screen {
	screen := ui.Screen{
		Title:     "⏹️ Market making stopped",
		Color:     ui.ColorWarning,
		Ephemeral: true,
	}
	screen.AddField("Token", s.TokenMint, false)
	screen.AddField("Duration", s.Duration.Truncate(time.Second).String(), true)
	screen.AddField("Orders filled", strconv.Itoa(s.OrdersFilled), true)
	screen.AddField("Bought", sol(s.VolumeBought), true)
	screen.AddField("Sold", sol(s.VolumeSold), true)
	screen.AddField("P&L", sol(s.PnL), true)
	screen.AddRow(ui.Button{Label: "Back to panel", ID: ActionPanel, Style: ui.StylePrimary})
	return screen
}

// ConfigRequiredScreen prompts the user to configure before starting.
func ConfigRequiredScreen() ui.Screen {
	screen := ui.Notice("⚙️ Configuration required",
		"Select a token and save your market making settings before starting a session.", ui.ColorWarning)
	screen.AddRow(ui.Button{Label: "Select token", ID: ActionToken, Style: ui.StylePrimary})
	return screen
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func num(v float64) string {
	return decimal.NewFromFloat(v).String()
}

// TokenModal asks for the mint address.
func TokenModal(cfg *models.MarketMakingConfig) ui.Modal {
	return ui.Modal{
		ID:    ModalToken,
		Title: "Market making token",
		Inputs: []ui.TextInput{{
			ID: FieldTokenMint, Label: "Token mint address", Placeholder: "Mint address",
			Value: cfg.TokenMint, Required: true, MaxLength: 64,
		}},
	}
}

// StrategyModal edits spread, price range and slippage.
func StrategyModal(cfg *models.MarketMakingConfig) ui.Modal {
	return ui.Modal{
		ID:    ModalStrategy,
		Title: "Strategy",
		Inputs: []ui.TextInput{
			{ID: FieldSpread, Label: "Spread % (0-100)", Value: num(cfg.SpreadPercentage), MaxLength: 10},
			{ID: FieldPriceRange, Label: "Price range % (0-100)", Value: num(cfg.PriceRange), MaxLength: 10},
			{ID: FieldSlippage, Label: "Slippage bps (50, 100, 300, 500, 1000)", Value: strconv.Itoa(cfg.Slippage), MaxLength: 5},
		},
	}
}

// WalletsModal edits the wallet count and per-wallet trade ranges.
func WalletsModal(cfg *models.MarketMakingConfig) ui.Modal {
	return ui.Modal{
		ID:    ModalWallets,
		Title: "Wallets",
		Inputs: []ui.TextInput{
			{ID: FieldWallets, Label: "Number of wallets (1-10)", Value: strconv.Itoa(cfg.NumberOfWallets), MaxLength: 2},
			{ID: FieldMinTrades, Label: "Min trades per wallet", Value: strconv.Itoa(cfg.MinTrades), MaxLength: 4},
			{ID: FieldMaxTrades, Label: "Max trades per wallet", Value: strconv.Itoa(cfg.MaxTrades), MaxLength: 4},
			{ID: FieldMinTradeSize, Label: "Min trade size (SOL)", Value: num(cfg.MinTradeSize), MaxLength: 20},
			{ID: FieldMaxTradeSize, Label: "Max trade size (SOL)", Value: num(cfg.MaxTradeSize), MaxLength: 20},
		},
	}
}
