// internal/blockchain/blockchain.go
package blockchain

import (
	"context"
	"fmt"

	"github.com/rovshanmuradov/tradedesk/internal/blockchain/solbc"
	"github.com/rovshanmuradov/tradedesk/internal/blockchain/xrpl"
	"github.com/rovshanmuradov/tradedesk/internal/types"
)

// SolanaReader is the subset of the Solana client used for balance reads.
type SolanaReader interface {
	GetBalance(ctx context.Context, owner string) (float64, error)
	GetTokenBalance(ctx context.Context, owner, mint string) (float64, error)
}

// XRPLReader is the subset of the XRPL client used for balance reads.
type XRPLReader interface {
	GetBalance(ctx context.Context, account string) (float64, error)
	GetTokenBalance(ctx context.Context, account string, asset xrpl.Asset) (float64, error)
}

// Balances routes balance queries to the client of the requested chain.
type Balances struct {
	solana SolanaReader
	xrpl   XRPLReader
}

// NewBalances creates a router. Either reader may be nil if the chain is disabled.
func NewBalances(sol SolanaReader, x XRPLReader) *Balances {
	return &Balances{solana: sol, xrpl: x}
}

// NativeBalance returns the base currency balance (SOL or XRP) of owner.
func (b *Balances) NativeBalance(ctx context.Context, chain types.Chain, owner string) (float64, error) {
	switch chain {
	case types.ChainSolana:
		if b.solana == nil {
			return 0, fmt.Errorf("solana client is not configured")
		}
		return b.solana.GetBalance(ctx, owner)
	case types.ChainXRPL:
		if b.xrpl == nil {
			return 0, fmt.Errorf("xrpl client is not configured")
		}
		return b.xrpl.GetBalance(ctx, owner)
	}
	return 0, fmt.Errorf("unsupported chain: %s", chain)
}

// TokenBalance returns how much of token owner holds.
func (b *Balances) TokenBalance(ctx context.Context, chain types.Chain, owner, token string) (float64, error) {
	switch chain {
	case types.ChainSolana:
		if b.solana == nil {
			return 0, fmt.Errorf("solana client is not configured")
		}
		return b.solana.GetTokenBalance(ctx, owner, token)
	case types.ChainXRPL:
		if b.xrpl == nil {
			return 0, fmt.Errorf("xrpl client is not configured")
		}
		asset, err := xrpl.ParseAsset(token)
		if err != nil {
			return 0, err
		}
		return b.xrpl.GetTokenBalance(ctx, owner, asset)
	}
	return 0, fmt.Errorf("unsupported chain: %s", chain)
}

// ValidateTokenAddress checks that token is well formed for chain.
func ValidateTokenAddress(chain types.Chain, token string) error {
	switch chain {
	case types.ChainSolana:
		return solbc.ValidateAddress(token)
	case types.ChainXRPL:
		_, err := xrpl.ParseAsset(token)
		return err
	}
	return fmt.Errorf("unsupported chain: %s", chain)
}

var (
	_ SolanaReader = (*solbc.Client)(nil)
	_ XRPLReader   = (*xrpl.Client)(nil)
)
