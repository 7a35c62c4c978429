// internal/wizard/actions.go
package wizard

import (
	"strconv"

	"github.com/rovshanmuradov/tradedesk/internal/settings"
	"github.com/rovshanmuradov/tradedesk/internal/types"
	"github.com/rovshanmuradov/tradedesk/internal/ui"
)

// Действия кнопок мастера. Аргументы: flow и, где нужно, значение.
const (
	ActionTokenPrompt = "wz_token"    // wz_token:<flow>
	ActionQuick       = "wz_quick"    // wz_quick:<flow>:<tier>
	ActionCustomSize  = "wz_custom"   // wz_custom:<flow>
	ActionSlippage    = "wz_slip"     // wz_slip:<flow>:<bps>
	ActionPriority    = "wz_fee"      // wz_fee:<flow>:<level>
	ActionExecute     = "wz_execute"  // wz_execute:<flow>
	ActionRefresh     = "wz_refresh"  // wz_refresh:<flow>
	ActionCancel      = "wz_cancel"   // wz_cancel:<flow>
	ModalToken        = "wz_m_token"  // wz_m_token:<flow>
	ModalSize         = "wz_m_size"   // wz_m_size:<flow>
)

// Поля модальных окон
const (
	InputTokenAddress = "token_address"
	InputAmount       = "amount"
	InputPercentage   = "percentage"
)

// ButtonActions lists every action a rendered wizard screen can carry.
var ButtonActions = []string{
	ActionTokenPrompt, ActionQuick, ActionCustomSize, ActionSlippage,
	ActionPriority, ActionExecute, ActionRefresh, ActionCancel,
}

// ModalActions lists the modal submissions the wizard opens.
var ModalActions = []string{ModalToken, ModalSize}

func quickID(flow types.FlowKind, tier settings.QuickTier) string {
	return ui.ID(ActionQuick, string(flow), string(tier))
}

func slippageID(flow types.FlowKind, bps types.SlippageBps) string {
	return ui.ID(ActionSlippage, string(flow), strconv.Itoa(int(bps)))
}

func priorityID(flow types.FlowKind, level types.PriorityLevel) string {
	return ui.ID(ActionPriority, string(flow), string(level))
}

// TokenModal asks for the token address.
func TokenModal(desc Descriptor, current string) ui.Modal {
	placeholder := "Mint address"
	if desc.Chain == types.ChainXRPL {
		placeholder = "CUR.rIssuer or rIssuer"
	}
	return ui.Modal{
		ID:    ui.ID(ModalToken, string(desc.Flow)),
		Title: "Select token",
		Inputs: []ui.TextInput{{
			ID:          InputTokenAddress,
			Label:       "Token address",
			Placeholder: placeholder,
			Value:       current,
			Required:    true,
			MaxLength:   100,
		}},
	}
}

// SizeModal asks for a custom amount (buy) or percentage (sell).
func SizeModal(desc Descriptor) ui.Modal {
	input := ui.TextInput{
		ID:          InputAmount,
		Label:       "Amount in " + desc.BaseCurrency,
		Placeholder: "0.5",
		Required:    true,
		MaxLength:   20,
	}
	title := "Custom amount"
	if desc.Side == types.SideSell {
		input.ID = InputPercentage
		input.Label = "Percentage of balance (1-100)"
		input.Placeholder = "50"
		title = "Custom percentage"
	}
	return ui.Modal{
		ID:     ui.ID(ModalSize, string(desc.Flow)),
		Title:  title,
		Inputs: []ui.TextInput{input},
	}
}
