package memory

import (
	"context"
	"testing"

	"github.com/rovshanmuradov/tradedesk/internal/storage"
	"github.com/rovshanmuradov/tradedesk/internal/storage/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradeSettingsAreCopied(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()

	_, err := s.GetTradeSettings(ctx, "u1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	in := &models.TradeSettings{UserID: "u1", MinQuickBuy: 0.2, Channels: []string{"c1"}}
	require.NoError(t, s.SaveTradeSettings(ctx, in))
	assert.False(t, in.CreatedAt.IsZero())

	in.Channels[0] = "mutated"
	got, err := s.GetTradeSettings(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, got.Channels)

	got.MinQuickBuy = 9
	again, _ := s.GetTradeSettings(ctx, "u1")
	assert.Equal(t, 0.2, again.MinQuickBuy)
}

func TestTransactionsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.SaveTransaction(ctx, &models.Transaction{UserID: "u1", Amount: float64(i)}))
	}
	require.NoError(t, s.SaveTransaction(ctx, &models.Transaction{UserID: "u2"}))

	txs, err := s.ListTransactions(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, 2.0, txs[0].Amount)
	assert.Equal(t, 1.0, txs[1].Amount)
}

func TestWalletAndMarketMakingRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStorage()

	require.NoError(t, s.SaveWallet(ctx, &models.Wallet{UserID: "u1", SolPublicKey: "pub"}))
	w, err := s.GetWallet(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "pub", w.SolPublicKey)

	_, err = s.GetMarketMakingConfig(ctx, "u1")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.SaveMarketMakingConfig(ctx, &models.MarketMakingConfig{UserID: "u1", TokenMint: "mint"}))
	cfg, err := s.GetMarketMakingConfig(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "mint", cfg.TokenMint)
}
