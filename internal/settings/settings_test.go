package settings

import (
	"context"
	"testing"

	"github.com/rovshanmuradov/tradedesk/internal/storage/memory"
	"github.com/rovshanmuradov/tradedesk/internal/storage/models"
	"github.com/rovshanmuradov/tradedesk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ptr(v float64) *float64 { return &v }

func TestResolveQuickBuyFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		tier QuickTier
		want float64
	}{
		{TierMin, 0.01},
		{TierMedium, 0.05},
		{TierLarge, 0.1},
	}
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			got, err := ResolveQuickBuy(nil, tt.tier)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveQuickSellFallsBackToDefaults(t *testing.T) {
	got, err := ResolveQuickSell(nil, TierMedium)
	require.NoError(t, err)
	assert.Equal(t, 50.0, got)

	got, err = ResolveQuickSell(nil, TierLarge)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got)
}

func TestResolveQuickBuyUsesPersistedValue(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewStorage(), zap.NewNop())

	_, err := svc.Save(ctx, "u1", Patch{MinQuickBuy: ptr(0.25)})
	require.NoError(t, err)

	stored := svc.Peek(ctx, "u1")
	require.NotNil(t, stored)

	amount, err := ResolveQuickBuy(stored, TierMin)
	require.NoError(t, err)
	assert.Equal(t, 0.25, amount)
	assert.NotEqual(t, DefaultMinQuickBuy, amount)
}

func TestResolveUnknownTier(t *testing.T) {
	_, err := ResolveQuickBuy(Defaults("u1"), QuickTier("huge"))
	assert.Error(t, err)
	_, err = ParseQuickTier("huge")
	assert.Error(t, err)
}

func TestSavePartialPatchKeepsOtherFields(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewStorage(), zap.NewNop())

	_, err := svc.Save(ctx, "u1", Patch{MinQuickBuy: ptr(0.2)})
	require.NoError(t, err)
	_, err = svc.Save(ctx, "u1", Patch{MinQuickSell: ptr(10)})
	require.NoError(t, err)

	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0.2, got.MinQuickBuy)
	assert.Equal(t, 10.0, got.MinQuickSell)
	assert.Equal(t, DefaultMediumQuickBuy, got.MediumQuickBuy)
	assert.Equal(t, DefaultLargeQuickSell, got.LargeQuickSell)
}

func TestSaveRejectsInvalidPatch(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewStorage(), zap.NewNop())

	_, err := svc.Save(ctx, "u1", Patch{MinQuickBuy: ptr(0.3)})
	require.NoError(t, err)

	_, err = svc.Save(ctx, "u1", Patch{MinQuickBuy: ptr(0.5), LargeQuickSell: ptr(150)})
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "large_quick_sell", verr.Field)

	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0.3, got.MinQuickBuy)
	assert.Equal(t, DefaultLargeQuickSell, got.LargeQuickSell)
}

func TestGetPersistsDefaults(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStorage()
	svc := NewService(repo, zap.NewNop())

	assert.Nil(t, svc.Peek(ctx, "u1"))

	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, DefaultMinQuickBuy, got.MinQuickBuy)

	stored, err := repo.GetTradeSettings(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, DefaultLargeQuickSell, stored.LargeQuickSell)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*models.TradeSettings)
		wantErr bool
	}{
		{"defaults", func(*models.TradeSettings) {}, false},
		{"sell at 100", func(s *models.TradeSettings) { s.MinQuickSell = 100 }, false},
		{"zero buy", func(s *models.TradeSettings) { s.MediumQuickBuy = 0 }, true},
		{"negative buy", func(s *models.TradeSettings) { s.LargeQuickBuy = -1 }, true},
		{"zero sell", func(s *models.TradeSettings) { s.MinQuickSell = 0 }, true},
		{"sell over 100", func(s *models.TradeSettings) { s.MediumQuickSell = 100.5 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults("u1")
			tt.mutate(s)
			err := Validate(s)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseModals(t *testing.T) {
	p, err := ParseBuyModal(map[string]string{
		FieldMinQuickBuy:   " 0.5 ",
		FieldLargeQuickBuy: "",
	})
	require.NoError(t, err)
	require.NotNil(t, p.MinQuickBuy)
	assert.Equal(t, 0.5, *p.MinQuickBuy)
	assert.Nil(t, p.LargeQuickBuy)
	assert.Nil(t, p.MediumQuickBuy)

	_, err = ParseBuyModal(map[string]string{FieldMinQuickBuy: "NaN"})
	assert.Error(t, err)

	for _, raw := range []string{"1e400", "1e-400", "-1e400"} {
		_, err = ParseBuyModal(map[string]string{FieldMinQuickBuy: raw})
		assert.Error(t, err, raw)
	}
	_, err = ParseSellModal(map[string]string{FieldMinQuickSell: "1e-400"})
	assert.Error(t, err)

	_, err = ParseSellModal(map[string]string{FieldMinQuickSell: "0"})
	assert.Error(t, err)

	p, err = ParseSellModal(map[string]string{FieldLargeQuickSell: "100"})
	require.NoError(t, err)
	assert.Equal(t, 100.0, *p.LargeQuickSell)

	empty, err := ParseSellModal(map[string]string{})
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
}

func TestChannelRegistration(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewStorage(), zap.NewNop())

	got, err := svc.RegisterChannel(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.PrimaryChannel)

	got, err = svc.RegisterChannel(ctx, "u1", "c2")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, got.Channels)

	got, err = svc.RegisterChannel(ctx, "u1", "c2")
	require.NoError(t, err)
	assert.Len(t, got.Channels, 2)

	got, err = svc.SetPrimaryChannel(ctx, "u1", "c2")
	require.NoError(t, err)
	assert.Equal(t, []string{"c2"}, NotificationChannels(got))

	got, err = svc.UnregisterChannel(ctx, "u1", "c2")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.PrimaryChannel)
	assert.Equal(t, []string{"c1"}, got.Channels)

	// Пресеты не затронуты
	assert.Equal(t, DefaultMinQuickBuy, got.MinQuickBuy)
}

func TestNotificationChannelsLegacy(t *testing.T) {
	assert.Nil(t, NotificationChannels(nil))
	s := Defaults("u1")
	s.ChannelID = "legacy"
	assert.Equal(t, []string{"legacy"}, NotificationChannels(s))
	s.ChannelID = ""
	s.Channels = []string{"a", "b"}
	assert.Equal(t, []string{"a", "b"}, NotificationChannels(s))
}
