// internal/wizard/descriptor.go
package wizard

import (
	"fmt"

	"github.com/rovshanmuradov/tradedesk/internal/types"
)

// Step is one configurable field of a trade flow.
type Step string

const (
	StepToken       Step = "token"
	StepAmount      Step = "amount"
	StepPercentage  Step = "percentage"
	StepSlippage    Step = "slippage"
	StepPriorityFee Step = "priority_fee"
)

// Descriptor declares how a flow kind is configured. One renderer and one set
// of handlers serve every descriptor.
type Descriptor struct {
	Flow         types.FlowKind
	Chain        types.Chain
	Side         types.Side
	Title        string
	BaseCurrency string
	Steps        []Step
}

// Has reports whether the flow includes step.
func (d Descriptor) Has(step Step) bool {
	for _, s := range d.Steps {
		if s == step {
			return true
		}
	}
	return false
}

// SizeStep is the amount step for buys and the percentage step for sells.
func (d Descriptor) SizeStep() Step {
	if d.Side == types.SideSell {
		return StepPercentage
	}
	return StepAmount
}

var descriptors = map[types.FlowKind]Descriptor{
	types.FlowSolanaBuy: {
		Flow:         types.FlowSolanaBuy,
		Chain:        types.ChainSolana,
		Side:         types.SideBuy,
		Title:        "🟢 Buy on Solana",
		BaseCurrency: "SOL",
		Steps:        []Step{StepToken, StepAmount, StepSlippage, StepPriorityFee},
	},
	types.FlowSolanaSell: {
		Flow:         types.FlowSolanaSell,
		Chain:        types.ChainSolana,
		Side:         types.SideSell,
		Title:        "🔴 Sell on Solana",
		BaseCurrency: "SOL",
		Steps:        []Step{StepToken, StepPercentage, StepSlippage, StepPriorityFee},
	},
	types.FlowXRPBuy: {
		Flow:         types.FlowXRPBuy,
		Chain:        types.ChainXRPL,
		Side:         types.SideBuy,
		Title:        "🟢 Buy on XRP Ledger",
		BaseCurrency: "XRP",
		Steps:        []Step{StepToken, StepAmount, StepSlippage},
	},
	types.FlowXRPSell: {
		Flow:         types.FlowXRPSell,
		Chain:        types.ChainXRPL,
		Side:         types.SideSell,
		Title:        "🔴 Sell on XRP Ledger",
		BaseCurrency: "XRP",
		Steps:        []Step{StepToken, StepPercentage, StepSlippage},
	},
}

// DescriptorFor returns the descriptor of a trade flow.
func DescriptorFor(flow types.FlowKind) (Descriptor, error) {
	d, ok := descriptors[flow]
	if !ok {
		return Descriptor{}, fmt.Errorf("no wizard for flow %q", flow)
	}
	return d, nil
}

// MustDescriptor is DescriptorFor for flows known at compile time.
func MustDescriptor(flow types.FlowKind) Descriptor {
	d, err := DescriptorFor(flow)
	if err != nil {
		panic(err)
	}
	return d
}

// Descriptors returns every trade flow descriptor in types.TradeFlows order.
func Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(types.TradeFlows))
	for _, flow := range types.TradeFlows {
		out = append(out, descriptors[flow])
	}
	return out
}
