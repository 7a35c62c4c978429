package main

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/rovshanmuradov/tradedesk/internal/marketmaking"
	"github.com/rovshanmuradov/tradedesk/internal/session"
	"github.com/rovshanmuradov/tradedesk/internal/storage/memory"
	"github.com/rovshanmuradov/tradedesk/internal/types"
	"github.com/rovshanmuradov/tradedesk/internal/utils/metrics"
	"github.com/rovshanmuradov/tradedesk/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestReportSessions(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	sessions := session.NewStore[wizard.TradeConfig](logger)
	key := session.Key{UserID: "u1", Flow: types.FlowSolanaBuy}
	sessions.Init(key, wizard.NewTradeConfig("u1", types.FlowSolanaBuy, "", ""))

	mm := marketmaking.NewController(memory.NewStorage(), nil, logger)
	mint := "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	_, err := mm.Save(ctx, "u1", marketmaking.Patch{TokenMint: &mint})
	require.NoError(t, err)
	_, err = mm.Start(ctx, "u1")
	require.NoError(t, err)

	collector := metrics.NewCollector()
	reportSessions(collector, sessions, mm)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `tradedesk_sessions_active{flow="sol_buy"} 1`)
	assert.Contains(t, body, `tradedesk_sessions_active{flow="sol_sell"} 0`)
	assert.Contains(t, body, `tradedesk_sessions_active{flow="market_making"} 1`)
}
