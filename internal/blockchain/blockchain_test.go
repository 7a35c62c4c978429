package blockchain

import (
	"context"
	"testing"

	"github.com/rovshanmuradov/tradedesk/internal/blockchain/xrpl"
	"github.com/rovshanmuradov/tradedesk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSolana struct{ balance, token float64 }

func (f fakeSolana) GetBalance(context.Context, string) (float64, error) { return f.balance, nil }
func (f fakeSolana) GetTokenBalance(context.Context, string, string) (float64, error) {
	return f.token, nil
}

type fakeXRPL struct{ asset xrpl.Asset }

func (f *fakeXRPL) GetBalance(context.Context, string) (float64, error) { return 42, nil }
func (f *fakeXRPL) GetTokenBalance(_ context.Context, _ string, asset xrpl.Asset) (float64, error) {
	f.asset = asset
	return 7, nil
}

const issuer = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"

func TestBalancesRouting(t *testing.T) {
	x := &fakeXRPL{}
	b := NewBalances(fakeSolana{balance: 1.25, token: 300}, x)
	ctx := context.Background()

	sol, err := b.NativeBalance(ctx, types.ChainSolana, "owner")
	require.NoError(t, err)
	assert.Equal(t, 1.25, sol)

	xrp, err := b.NativeBalance(ctx, types.ChainXRPL, issuer)
	require.NoError(t, err)
	assert.Equal(t, 42.0, xrp)

	tok, err := b.TokenBalance(ctx, types.ChainXRPL, issuer, "USD."+issuer)
	require.NoError(t, err)
	assert.Equal(t, 7.0, tok)
	assert.Equal(t, "USD", x.asset.Currency)

	_, err = b.NativeBalance(ctx, types.Chain("eth"), "owner")
	assert.Error(t, err)
}

func TestBalancesMissingClient(t *testing.T) {
	b := NewBalances(nil, nil)
	_, err := b.NativeBalance(context.Background(), types.ChainSolana, "owner")
	assert.Error(t, err)
}

func TestValidateTokenAddress(t *testing.T) {
	assert.NoError(t, ValidateTokenAddress(types.ChainSolana, "So11111111111111111111111111111111111111112"))
	assert.Error(t, ValidateTokenAddress(types.ChainSolana, issuer))
	assert.NoError(t, ValidateTokenAddress(types.ChainXRPL, issuer))
	assert.Error(t, ValidateTokenAddress(types.ChainXRPL, "So11111111111111111111111111111111111111112"))
}
