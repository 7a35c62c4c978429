package research

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rovshanmuradov/tradedesk/internal/blockchain/solbc"
	"github.com/rovshanmuradov/tradedesk/internal/market"
	"github.com/rovshanmuradov/tradedesk/internal/session"
	"github.com/rovshanmuradov/tradedesk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

type fakeTokens struct {
	info market.TokenInfo
	err  error
}

func (f fakeTokens) TokenInfo(context.Context, types.Chain, string) (market.TokenInfo, error) {
	return f.info, f.err
}

type fakePrices struct {
	price float64
	err   error
}

func (f fakePrices) JupiterPrice(context.Context, string) (float64, error) {
	return f.price, f.err
}

type fakeSupply struct {
	supply solbc.TokenSupply
	err    error
}

func (f fakeSupply) GetTokenSupply(context.Context, string) (solbc.TokenSupply, error) {
	return f.supply, f.err
}

func TestResearchAllSources(t *testing.T) {
	cache := session.NewStore[Snapshot](zap.NewNop())
	svc := NewService(
		fakeTokens{info: market.TokenInfo{Name: "USD Coin", Symbol: "USDC", PriceUSD: 1, MarketCap: 500, Pools: 3, LiquidityUSD: 1e6}},
		fakePrices{price: 0.99},
		fakeSupply{supply: solbc.TokenSupply{Amount: 1000, Decimals: 6}},
		cache, time.Second, zap.NewNop())

	snap, err := svc.Research(context.Background(), "u1", types.ChainSolana, testMint)
	require.NoError(t, err)
	assert.Equal(t, "USDC", snap.Symbol)
	// цена из пар приоритетнее Jupiter
	assert.Equal(t, 1.0, snap.PriceUSD)
	assert.Equal(t, 1000.0, snap.TotalSupply)
	assert.Equal(t, 500.0, snap.CirculatingSupply)
	assert.Equal(t, uint8(6), snap.Decimals)
	assert.Empty(t, snap.Missing)

	cached, ok := svc.Last("u1")
	require.True(t, ok)
	assert.Equal(t, snap.Address, cached.Address)
}

func TestResearchDegradesEverySource(t *testing.T) {
	boom := errors.New("upstream down")
	svc := NewService(fakeTokens{err: boom}, fakePrices{err: boom}, fakeSupply{err: boom}, nil, 0, zap.NewNop())

	snap, err := svc.Research(context.Background(), "u1", types.ChainSolana, testMint)
	require.NoError(t, err)
	assert.Equal(t, "UNKNOWN", snap.Symbol)
	assert.Equal(t, "Unknown token", snap.Name)
	assert.Zero(t, snap.PriceUSD)
	assert.ElementsMatch(t, []string{"dexscreener", "jupiter", "supply"}, snap.Missing)

	screen := Render(snap)
	assert.NotEmpty(t, screen.Fields)
	assert.Contains(t, screen.Footer, "jupiter")
}

func TestResearchFallsBackToJupiterPrice(t *testing.T) {
	svc := NewService(fakeTokens{err: errors.New("no pairs")}, fakePrices{price: 2.5},
		fakeSupply{supply: solbc.TokenSupply{Amount: 10}}, nil, 0, zap.NewNop())

	snap, err := svc.Research(context.Background(), "", types.ChainSolana, testMint)
	require.NoError(t, err)
	assert.Equal(t, 2.5, snap.PriceUSD)
	assert.Equal(t, 25.0, snap.FDV)
	assert.Equal(t, 10.0, snap.CirculatingSupply)
}

func TestResearchXRPLSkipsSolanaSources(t *testing.T) {
	svc := NewService(fakeTokens{info: market.TokenInfo{Symbol: "SOLO"}},
		fakePrices{err: errors.New("must not be called")}, fakeSupply{err: errors.New("must not be called")},
		nil, 0, zap.NewNop())

	snap, err := svc.Research(context.Background(), "u1", types.ChainXRPL, "SOL.rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh")
	require.NoError(t, err)
	assert.Equal(t, "SOLO", snap.Symbol)
	assert.Empty(t, snap.Missing)
}

func TestResearchRejectsBadAddress(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, 0, zap.NewNop())
	_, err := svc.Research(context.Background(), "u1", types.ChainSolana, "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh")
	var verr *types.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRenderOmitsUnknownWeeklyMetrics(t *testing.T) {
	screen := Render(Snapshot{Chain: types.ChainXRPL, Name: "Token", Symbol: "TKN"})
	_, ok := screen.Field("Holders")
	assert.False(t, ok)
	_, ok = screen.Field("Volume 7d")
	assert.False(t, ok)

	screen = Render(Snapshot{Chain: types.ChainXRPL, Holders: 1200, Volume7d: 5000, Change7d: -3.5})
	f, ok := screen.Field("Holders")
	require.True(t, ok)
	assert.Equal(t, "1200", f.Value)
	_, ok = screen.Field("Change 7d")
	assert.True(t, ok)
}
