// internal/wallet/render.go
package wallet

import (
	"github.com/rovshanmuradov/tradedesk/internal/ui"
)

// Действия экрана кошельков
const (
	ActionShow      = "wl_show"
	ActionGenerate  = "wl_generate"
	ActionImportSol = "wl_import_sol"
	ActionImportXRP = "wl_import_xrp"
	ModalImportSol  = "wl_m_sol"
	ModalImportXRP  = "wl_m_xrp"
)

// Поля модальных окон импорта
const (
	InputPrivateKey = "private_key"
	InputAddress    = "address"
	InputSeed       = "seed"
)

// ButtonActions lists every action the wallet screen can carry.
var ButtonActions = []string{ActionShow, ActionGenerate, ActionImportSol, ActionImportXRP}

// ModalActions lists the modal submissions the wallet screen opens.
var ModalActions = []string{ModalImportSol, ModalImportXRP}

// Render shows public keys only.
func Render(info Info, balances map[string]string) ui.Screen {
	screen := ui.Screen{
		Title:     "👛 Your wallets",
		Color:     ui.ColorInfo,
		Ephemeral: true,
	}
	if !info.Exists {
		screen.Description = "You have no custody wallet yet. Generate a Solana wallet or import an XRP Ledger account."
	}

	if info.SolPublicKey != "" {
		screen.AddField("Solana", "`"+info.SolPublicKey+"`", false)
		screen.AddField("SOL balance", balances["SOL"], true)
	} else {
		screen.AddField("Solana", "Not set", false)
	}
	if info.XrpPublicKey != "" {
		screen.AddField("XRP Ledger", "`"+info.XrpPublicKey+"`", false)
		screen.AddField("XRP balance", balances["XRP"], true)
	} else {
		screen.AddField("XRP Ledger", "Not set", false)
	}

	screen.AddRow(
		ui.Button{Label: "Generate Solana wallet", ID: ActionGenerate, Style: ui.StyleSuccess, Disabled: info.SolPublicKey != ""},
		ui.Button{Label: "Import Solana key", ID: ActionImportSol, Style: ui.StyleSecondary, Disabled: info.SolPublicKey != ""},
		ui.Button{Label: "Import XRP account", ID: ActionImportXRP, Style: ui.StyleSecondary, Disabled: info.XrpPublicKey != ""},
		ui.Button{Label: "Refresh", ID: ActionShow, Style: ui.StyleSecondary},
	)
	screen.Footer = "Private keys are stored encrypted and are never shown."
	return screen
}

// NoWalletScreen is the guided answer when a flow needs a wallet.
func NoWalletScreen(chainName string) ui.Screen {
	screen := ui.Notice("👛 Wallet required",
		"You need a "+chainName+" wallet before trading.", ui.ColorWarning)
	screen.AddRow(
		ui.Button{Label: "Open wallets", ID: ActionShow, Style: ui.StylePrimary},
	)
	return screen
}

// ImportSolanaModal asks for a base58 private key.
func ImportSolanaModal() ui.Modal {
	return ui.Modal{
		ID:    ModalImportSol,
		Title: "Import Solana wallet",
		Inputs: []ui.TextInput{{
			ID: InputPrivateKey, Label: "Private key (base58)", Required: true, MaxLength: 100,
		}},
	}
}

// ImportXRPModal asks for a classic address and its family seed.
func ImportXRPModal() ui.Modal {
	return ui.Modal{
		ID:    ModalImportXRP,
		Title: "Import XRP Ledger account",
		Inputs: []ui.TextInput{
			{ID: InputAddress, Label: "Classic address (r...)", Required: true, MaxLength: 35},
			{ID: InputSeed, Label: "Family seed (s...)", Required: true, MaxLength: 40},
		},
	}
}
