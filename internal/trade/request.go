// internal/trade/request.go
package trade

import (
	"github.com/rovshanmuradov/tradedesk/internal/utils/logger"
	"go.uber.org/zap/zapcore"
)

// Request is the body of a trade submission. For buys OutputMint is the token
// received; for sells InputMint is the token given up and Amount is a percentage.
type Request struct {
	PrivateKey  string  `json:"private_key"`
	OutputMint  string  `json:"outputMint,omitempty"`
	InputMint   string  `json:"inputMint,omitempty"`
	Amount      float64 `json:"amount"`
	Slippage    int     `json:"slippage"`
	PriorityFee float64 `json:"priorityFee,omitempty"`

	PlatformPublicKey  string  `json:"platformPublicKey,omitempty"`
	PlatformPercentage float64 `json:"platformPercentage,omitempty"`
	ReferralPublicKey  string  `json:"referralPublicKey,omitempty"`
	ReferralPercentage float64 `json:"referralPercentage,omitempty"`
}

// MarshalLogObject logs the request with the private key masked.
func (r Request) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("private_key", logger.Mask(r.PrivateKey))
	if r.OutputMint != "" {
		enc.AddString("output_mint", r.OutputMint)
	}
	if r.InputMint != "" {
		enc.AddString("input_mint", r.InputMint)
	}
	enc.AddFloat64("amount", r.Amount)
	enc.AddInt("slippage_bps", r.Slippage)
	if r.PriorityFee > 0 {
		enc.AddFloat64("priority_fee", r.PriorityFee)
	}
	if r.PlatformPublicKey != "" {
		enc.AddString("platform_public_key", r.PlatformPublicKey)
		enc.AddFloat64("platform_percentage", r.PlatformPercentage)
	}
	if r.ReferralPublicKey != "" {
		enc.AddString("referral_public_key", r.ReferralPublicKey)
		enc.AddFloat64("referral_percentage", r.ReferralPercentage)
	}
	return nil
}

// String never includes the private key.
func (r Request) String() string {
	token := r.OutputMint
	if token == "" {
		token = r.InputMint
	}
	return "trade request for " + token + " (private_key " + logger.Mask(r.PrivateKey) + ")"
}
