package wizard

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rovshanmuradov/tradedesk/internal/market"
	"github.com/rovshanmuradov/tradedesk/internal/session"
	"github.com/rovshanmuradov/tradedesk/internal/settings"
	"github.com/rovshanmuradov/tradedesk/internal/types"
	"github.com/rovshanmuradov/tradedesk/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	usdcMint  = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	xrpIssuer = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"
)

func newStore(t *testing.T, flow types.FlowKind) (*session.Store[TradeConfig], session.Key) {
	t.Helper()
	store := session.NewStore[TradeConfig](zap.NewNop())
	key := session.Key{UserID: "u1", Flow: flow}
	store.Init(key, NewTradeConfig("u1", flow, "wallet", "enc:secret"))
	return store, key
}

func TestNumericInputRejectsNonNumbers(t *testing.T) {
	for _, raw := range []string{"NaN", "nan", "abc", "", "1..2", "Infinity", "1e400", "1e-400", "-1e400"} {
		t.Run(raw, func(t *testing.T) {
			store, key := newStore(t, types.FlowSolanaBuy)
			_, err := ApplyField(store, key, StepAmount, "0.5")
			require.NoError(t, err)
			before, _ := store.Get(key)

			_, err = ApplyField(store, key, StepAmount, raw)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "amount", verr.Field)
			assert.NotEmpty(t, verr.Reason)

			after, _ := store.Get(key)
			assert.Equal(t, before, after)
		})
	}
}

func TestSellPercentageBoundaries(t *testing.T) {
	tests := []struct {
		raw      string
		accepted bool
	}{
		{"0", false},
		{"-1", false},
		{"100", true},
		{"100.5", false},
		{"0.01", true},
		{"50", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			store, key := newStore(t, types.FlowSolanaSell)
			_, err := ApplyField(store, key, StepPercentage, "25")
			require.NoError(t, err)

			got, err := ApplyField(store, key, StepPercentage, tt.raw)
			stored, _ := store.Get(key)
			if tt.accepted {
				require.NoError(t, err)
				assert.Equal(t, got.SellPercentage, stored.SellPercentage)
				assert.NotEqual(t, 25.0, stored.SellPercentage)
			} else {
				assert.Error(t, err)
				assert.Equal(t, 25.0, stored.SellPercentage)
			}
		})
	}
}

func TestApplyFieldRequiresSession(t *testing.T) {
	store := session.NewStore[TradeConfig](zap.NewNop())
	_, err := ApplyField(store, session.Key{UserID: "u1", Flow: types.FlowSolanaBuy}, StepAmount, "1")
	assert.ErrorIs(t, err, session.ErrConfigNotFound)
}

func TestApplyFieldTokenAddress(t *testing.T) {
	store, key := newStore(t, types.FlowSolanaBuy)

	_, err := ApplyField(store, key, StepToken, xrpIssuer)
	assert.Error(t, err)

	got, err := ApplyField(store, key, StepToken, "  "+usdcMint+" ")
	require.NoError(t, err)
	assert.Equal(t, usdcMint, got.TokenAddress)

	xstore, xkey := newStore(t, types.FlowXRPBuy)
	got, err = ApplyField(xstore, xkey, StepToken, "USD."+xrpIssuer)
	require.NoError(t, err)
	assert.Equal(t, "USD."+xrpIssuer, got.TokenAddress)
}

func TestApplyFieldEnumeratedSets(t *testing.T) {
	store, key := newStore(t, types.FlowSolanaBuy)

	_, err := ApplyField(store, key, StepSlippage, "250")
	assert.Error(t, err)
	got, err := ApplyField(store, key, StepSlippage, "300")
	require.NoError(t, err)
	assert.Equal(t, types.SlippageBps(300), got.Slippage)

	_, err = ApplyField(store, key, StepPriorityFee, "ludicrous")
	assert.Error(t, err)
	got, err = ApplyField(store, key, StepPriorityFee, "high")
	require.NoError(t, err)
	assert.Equal(t, types.PriorityHigh, got.PriorityFee.Level)
	assert.Equal(t, 0.000008, got.PriorityFee.SOL)

	xstore, xkey := newStore(t, types.FlowXRPSell)
	_, err = ApplyField(xstore, xkey, StepPriorityFee, "high")
	assert.Error(t, err)
}

func TestApplyFieldClearsCompletedOnChange(t *testing.T) {
	store, key := newStore(t, types.FlowSolanaBuy)
	_, err := store.Update(key, func(c *TradeConfig) error {
		c.Amount = 0.1
		c.Completed = true
		return nil
	})
	require.NoError(t, err)

	got, err := ApplyField(store, key, StepAmount, "0.1")
	require.NoError(t, err)
	assert.True(t, got.Completed)

	got, err = ApplyField(store, key, StepAmount, "0.2")
	require.NoError(t, err)
	assert.False(t, got.Completed)
}

func TestApplyQuickUsesSettings(t *testing.T) {
	store, key := newStore(t, types.FlowSolanaBuy)

	got, err := ApplyQuick(store, key, settings.TierMin, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.01, got.Amount)

	persisted := settings.Defaults("u1")
	persisted.MinQuickBuy = 0.25
	got, err = ApplyQuick(store, key, settings.TierMin, persisted)
	require.NoError(t, err)
	assert.Equal(t, 0.25, got.Amount)

	sstore, skey := newStore(t, types.FlowXRPSell)
	got, err = ApplyQuick(sstore, skey, settings.TierLarge, nil)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.SellPercentage)
}

func TestRenderExecuteGating(t *testing.T) {
	desc := MustDescriptor(types.FlowSolanaBuy)
	cfg := NewTradeConfig("u1", types.FlowSolanaBuy, "wallet", "ref")

	screen, err := Render(desc, cfg, Display{}, nil)
	require.NoError(t, err)
	exec, ok := screen.Button(ui.ID(ActionExecute, string(types.FlowSolanaBuy)))
	require.True(t, ok)
	assert.True(t, exec.Disabled)

	cfg.TokenAddress = usdcMint
	screen, _ = Render(desc, cfg, Display{}, nil)
	exec, _ = screen.Button(ui.ID(ActionExecute, string(types.FlowSolanaBuy)))
	assert.True(t, exec.Disabled, "amount still missing")

	cfg.Amount = 0.05
	screen, _ = Render(desc, cfg, Display{}, nil)
	exec, _ = screen.Button(ui.ID(ActionExecute, string(types.FlowSolanaBuy)))
	assert.False(t, exec.Disabled)

	cfg.Completed = true
	cfg.LastSignature = "sig"
	screen, _ = Render(desc, cfg, Display{}, nil)
	exec, _ = screen.Button(ui.ID(ActionExecute, string(types.FlowSolanaBuy)))
	assert.True(t, exec.Disabled)
	last, ok := screen.Field("Last trade")
	require.True(t, ok)
	assert.Equal(t, "sig", last.Value)
}

func TestRenderQuickButtonsFromSettings(t *testing.T) {
	desc := MustDescriptor(types.FlowSolanaBuy)
	cfg := NewTradeConfig("u1", types.FlowSolanaBuy, "wallet", "ref")

	screen, err := Render(desc, cfg, Display{}, nil)
	require.NoError(t, err)
	b, ok := screen.Button(quickID(types.FlowSolanaBuy, settings.TierMin))
	require.True(t, ok)
	assert.Equal(t, "0.01 SOL", b.Label)

	s := settings.Defaults("u1")
	s.MinQuickBuy = 0.25
	screen, err = Render(desc, cfg, Display{}, s)
	require.NoError(t, err)
	b, _ = screen.Button(quickID(types.FlowSolanaBuy, settings.TierMin))
	assert.Equal(t, "0.25 SOL", b.Label)

	// значение из старой записи в БД
	s.MinQuickBuy = math.Inf(1)
	screen, err = Render(desc, cfg, Display{PriceUSD: math.Inf(1)}, s)
	require.NoError(t, err)
	b, _ = screen.Button(quickID(types.FlowSolanaBuy, settings.TierMin))
	assert.Equal(t, "— SOL", b.Label)

	sell := MustDescriptor(types.FlowXRPSell)
	screen, err = Render(sell, NewTradeConfig("u1", types.FlowXRPSell, "", ""), Display{}, nil)
	require.NoError(t, err)
	b, _ = screen.Button(quickID(types.FlowXRPSell, settings.TierMedium))
	assert.Equal(t, "50%", b.Label)
}

func TestRenderLayout(t *testing.T) {
	for _, desc := range Descriptors() {
		t.Run(string(desc.Flow), func(t *testing.T) {
			screen, err := Render(desc, NewTradeConfig("u1", desc.Flow, "", ""), Display{}, nil)
			require.NoError(t, err)
			assert.LessOrEqual(t, len(screen.Rows), 5)
			for _, row := range screen.Rows {
				assert.LessOrEqual(t, len(row), ui.MaxButtonsPerRow)
			}
			_, hasFee := screen.Field("Priority fee")
			assert.Equal(t, desc.Chain == types.ChainSolana, hasFee)

			for _, b := range screen.Buttons() {
				action, args := ui.ParseID(b.ID)
				assert.Contains(t, ButtonActions, action)
				require.NotEmpty(t, args)
				assert.Equal(t, string(desc.Flow), args[0])
			}
		})
	}
}

type fakeTokens struct{ err error }

func (f fakeTokens) TokenInfo(context.Context, types.Chain, string) (market.TokenInfo, error) {
	if f.err != nil {
		return market.TokenInfo{}, f.err
	}
	return market.TokenInfo{Name: "USD Coin", Symbol: "USDC", PriceUSD: 1}, nil
}

type fakeBalances struct {
	native, token float64
	err           error
}

func (f fakeBalances) NativeBalance(context.Context, types.Chain, string) (float64, error) {
	return f.native, f.err
}

func (f fakeBalances) TokenBalance(context.Context, types.Chain, string, string) (float64, error) {
	return f.token, nil
}

func TestDisplayLoaderDegrades(t *testing.T) {
	cfg := NewTradeConfig("u1", types.FlowSolanaSell, "wallet", "ref")
	cfg.TokenAddress = usdcMint

	ok := NewDisplayLoader(fakeTokens{}, fakeBalances{native: 2, token: 30}, 0, zap.NewNop()).Load(context.Background(), cfg)
	assert.Equal(t, Display{TokenName: "USD Coin", TokenSymbol: "USDC", PriceUSD: 1, WalletBalance: 2, TokenBalance: 30}, ok)

	broken := NewDisplayLoader(fakeTokens{err: errors.New("down")}, fakeBalances{err: errors.New("rpc down"), token: 30}, 0, zap.NewNop()).
		Load(context.Background(), cfg)
	assert.Equal(t, Display{TokenBalance: 30}, broken)

	var nilLoader *DisplayLoader
	assert.Equal(t, Display{}, nilLoader.Load(context.Background(), cfg))
}

func TestTradeConfigLogRedactsKey(t *testing.T) {
	cfg := NewTradeConfig("u1", types.FlowSolanaBuy, "wallet", "super-secret-private-key-material")
	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, cfg.MarshalLogObject(enc))
	assert.NotContains(t, enc.Fields["private_key_ref"], "secret-private")
	assert.Equal(t, "wallet", enc.Fields["wallet"])
}
