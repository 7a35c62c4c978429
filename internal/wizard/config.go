// internal/wizard/config.go
package wizard

import (
	"github.com/rovshanmuradov/tradedesk/internal/types"
	"github.com/rovshanmuradov/tradedesk/internal/utils/logger"
	"go.uber.org/zap/zapcore"
)

// TradeConfig is the in-progress state of one buy or sell flow.
type TradeConfig struct {
	UserID       string
	Flow         types.FlowKind
	TokenAddress string

	// Amount is the base currency spend of a buy; SellPercentage the share of
	// the held balance for a sell. Only the one matching the flow side is used.
	Amount         float64
	SellPercentage float64

	Slippage    types.SlippageBps
	PriorityFee types.PriorityFee

	WalletPublicKey     string
	WalletPrivateKeyRef string

	// Completed is set after a successful submission. A completed config is
	// not executed again until one of its fields changes.
	Completed     bool
	LastSignature string
}

// NewTradeConfig seeds a flow with the default slippage and, on Solana, the default fee tier.
func NewTradeConfig(userID string, flow types.FlowKind, walletPublicKey, walletPrivateKeyRef string) TradeConfig {
	cfg := TradeConfig{
		UserID:              userID,
		Flow:                flow,
		Slippage:            types.DefaultSlippage,
		WalletPublicKey:     walletPublicKey,
		WalletPrivateKeyRef: walletPrivateKeyRef,
	}
	if flow.Chain() == types.ChainSolana {
		cfg.PriorityFee = types.MustPriorityFee(types.DefaultPriority)
	}
	return cfg
}

// Size returns the amount for buys and the percentage for sells.
func (c TradeConfig) Size() float64 {
	if c.Flow.Side() == types.SideSell {
		return c.SellPercentage
	}
	return c.Amount
}

// Ready reports whether the minimum fields for execution are set.
func (c TradeConfig) Ready() bool {
	return c.TokenAddress != "" && c.Size() > 0
}

// MarshalLogObject logs the config without key material.
func (c TradeConfig) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("user_id", c.UserID)
	enc.AddString("flow", string(c.Flow))
	enc.AddString("token", c.TokenAddress)
	enc.AddFloat64("size", c.Size())
	enc.AddInt("slippage_bps", int(c.Slippage))
	if c.PriorityFee.Level != "" {
		enc.AddString("priority", string(c.PriorityFee.Level))
	}
	enc.AddString("wallet", c.WalletPublicKey)
	enc.AddString("private_key_ref", logger.Redact(c.WalletPrivateKeyRef))
	enc.AddBool("completed", c.Completed)
	return nil
}
