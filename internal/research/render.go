// internal/research/render.go
package research

import (
	"strconv"
	"strings"

	"github.com/rovshanmuradov/tradedesk/internal/types"
	"github.com/rovshanmuradov/tradedesk/internal/ui"
	"github.com/shopspring/decimal"
)

// Действия экрана исследования токена
const (
	ActionPrompt  = "rs_prompt"  // rs_prompt:<chain>
	ActionBuy     = "rs_buy"     // взять токен из кэша и открыть покупку
	ActionSell    = "rs_sell"
	ActionRefresh = "rs_refresh"
	ModalToken    = "rs_m_token" // rs_m_token:<chain>
)

const InputToken = "token_address"

// ButtonActions lists every action the research screen can carry.
var ButtonActions = []string{ActionPrompt, ActionBuy, ActionSell, ActionRefresh}

// ModalActions lists the modal submissions research opens.
var ModalActions = []string{ModalToken}

// TokenModal asks which token to research.
func TokenModal(chain types.Chain) ui.Modal {
	placeholder := "Mint address"
	if chain == types.ChainXRPL {
		placeholder = "CUR.rIssuer or rIssuer"
	}
	return ui.Modal{
		ID:    ui.ID(ModalToken, string(chain)),
		Title: "Research token",
		Inputs: []ui.TextInput{{
			ID: InputToken, Label: "Token address", Placeholder: placeholder, Required: true, MaxLength: 100,
		}},
	}
}

func usd(v float64) string {
	if v == 0 {
		return "-"
	}
	d := decimal.NewFromFloat(v)
	if v >= 1 {
		return "$" + d.StringFixed(2)
	}
	return "$" + d.String()
}

func compact(v float64) string {
	if v == 0 {
		return "-"
	}
	d := decimal.NewFromFloat(v)
	switch {
	case v >= 1e9:
		return d.Div(decimal.NewFromInt(1e9)).StringFixed(2) + "B"
	case v >= 1e6:
		return d.Div(decimal.NewFromInt(1e6)).StringFixed(2) + "M"
	case v >= 1e3:
		return d.Div(decimal.NewFromInt(1e3)).StringFixed(2) + "K"
	}
	return d.StringFixed(2)
}

func change(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2) + "%"
	if v > 0 {
		return "🟢 +" + s
	}
	if v < 0 {
		return "🔴 " + s
	}
	return s
}

// Render builds the research screen for a snapshot.
func Render(s Snapshot) ui.Screen {
	screen := ui.Screen{
		Title:       "🔎 " + s.Name + " (" + s.Symbol + ")",
		Description: "`" + s.Address + "`",
		Color:       ui.ColorInfo,
		Ephemeral:   true,
	}
	screen.AddField("Price", usd(s.PriceUSD), true)
	screen.AddField("Market cap", "$"+compact(s.MarketCap), true)
	screen.AddField("FDV", "$"+compact(s.FDV), true)
	screen.AddField("Volume 24h", "$"+compact(s.Volume24h), true)
	screen.AddField("Change 1h", change(s.Change1h), true)
	screen.AddField("Change 24h", change(s.Change24h), true)
	// 7d metrics and holders have no source yet; zero means unknown
	if s.Volume7d > 0 {
		screen.AddField("Volume 7d", "$"+compact(s.Volume7d), true)
	}
	if s.Change7d != 0 {
		screen.AddField("Change 7d", change(s.Change7d), true)
	}
	screen.AddField("Liquidity", "$"+compact(s.LiquidityUSD), true)
	screen.AddField("Pools", strconv.Itoa(s.Pools), true)
	if s.Holders > 0 {
		screen.AddField("Holders", strconv.Itoa(s.Holders), true)
	}
	if s.Chain == types.ChainSolana {
		screen.AddField("Supply", compact(s.TotalSupply), true)
		screen.AddField("Circulating", compact(s.CirculatingSupply), true)
		screen.AddField("Decimals", strconv.Itoa(int(s.Decimals)), true)
	}
	if len(s.Missing) > 0 {
		screen.Footer = "Unavailable: " + strings.Join(s.Missing, ", ")
	}

	screen.AddRow(
		ui.Button{Label: "Buy this token", ID: ActionBuy, Style: ui.StyleSuccess},
		ui.Button{Label: "Sell", ID: ActionSell, Style: ui.StyleDanger},
		ui.Button{Label: "Refresh", ID: ActionRefresh, Style: ui.StyleSecondary},
		ui.Button{Label: "Research another", ID: ui.ID(ActionPrompt, string(s.Chain)), Style: ui.StyleSecondary},
	)
	return screen
}
