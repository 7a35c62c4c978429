// internal/types/chain.go
package types

import "fmt"

// Chain identifies the ledger a trade settles on.
type Chain string

const (
	ChainSolana Chain = "solana"
	ChainXRPL   Chain = "xrpl"
)

// BaseCurrency returns the native asset that buys are denominated in.
func (c Chain) BaseCurrency() string {
	switch c {
	case ChainSolana:
		return "SOL"
	case ChainXRPL:
		return "XRP"
	default:
		return ""
	}
}

// Side is the trade direction.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// FlowKind names one of the wizard flows a user can have open at a time.
type FlowKind string

const (
	FlowSolanaBuy    FlowKind = "sol_buy"
	FlowSolanaSell   FlowKind = "sol_sell"
	FlowXRPBuy       FlowKind = "xrp_buy"
	FlowXRPSell      FlowKind = "xrp_sell"
	FlowMarketMaking FlowKind = "market_making"
	FlowResearch     FlowKind = "research"
)

// TradeFlows lists the flow kinds that end in a trade submission.
var TradeFlows = []FlowKind{FlowSolanaBuy, FlowSolanaSell, FlowXRPBuy, FlowXRPSell}

// ParseFlowKind converts a custom id argument back into a FlowKind.
func ParseFlowKind(s string) (FlowKind, error) {
	switch k := FlowKind(s); k {
	case FlowSolanaBuy, FlowSolanaSell, FlowXRPBuy, FlowXRPSell, FlowMarketMaking, FlowResearch:
		return k, nil
	}
	return "", fmt.Errorf("unknown flow kind: %q", s)
}

// Chain returns the chain a trade flow settles on.
func (k FlowKind) Chain() Chain {
	switch k {
	case FlowXRPBuy, FlowXRPSell:
		return ChainXRPL
	default:
		return ChainSolana
	}
}

// Side returns the direction of a trade flow.
func (k FlowKind) Side() Side {
	switch k {
	case FlowSolanaSell, FlowXRPSell:
		return SideSell
	default:
		return SideBuy
	}
}

// FlowFor returns the trade flow for a chain and side.
func FlowFor(chain Chain, side Side) FlowKind {
	switch {
	case chain == ChainXRPL && side == SideSell:
		return FlowXRPSell
	case chain == ChainXRPL:
		return FlowXRPBuy
	case side == SideSell:
		return FlowSolanaSell
	default:
		return FlowSolanaBuy
	}
}
