package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rovshanmuradov/tradedesk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const mint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

const pairsBody = `{
  "schemaVersion": "1.0.0",
  "pairs": [
    {
      "chainId": "solana", "dexId": "raydium", "pairAddress": "P1",
      "baseToken": {"address": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "name": "USD Coin", "symbol": "USDC"},
      "quoteToken": {"address": "So11111111111111111111111111111111111111112", "name": "Wrapped SOL", "symbol": "SOL"},
      "priceUsd": "0.9998", "volume": {"h24": 1000}, "priceChange": {"h1": 0.1, "h24": -0.2},
      "liquidity": {"usd": 5000}, "fdv": 9000, "marketCap": 8000, "info": {"imageUrl": "https://img/usdc.png"}
    },
    {
      "chainId": "solana", "dexId": "orca", "pairAddress": "P2",
      "baseToken": {"address": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "name": "USD Coin", "symbol": "USDC"},
      "quoteToken": {"address": "x", "symbol": "X"},
      "priceUsd": "1.01", "volume": {"h24": 500},
      "liquidity": {"usd": 100}
    },
    {
      "chainId": "ethereum", "dexId": "uniswap", "pairAddress": "P3",
      "baseToken": {"address": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "symbol": "USDC"},
      "liquidity": {"usd": 999999}
    }
  ]
}`

func newTestClient(url string, retries int) *Client {
	c := NewClient(url, url+"/price", time.Second, retries, nil, zap.NewNop())
	c.retryInterval = time.Millisecond
	return c
}

func TestTokenInfoPicksDeepestPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tokens/"+mint, r.URL.Path)
		_, _ = w.Write([]byte(pairsBody))
	}))
	defer srv.Close()

	info, err := newTestClient(srv.URL, 0).TokenInfo(context.Background(), types.ChainSolana, mint)
	require.NoError(t, err)

	assert.Equal(t, "USDC", info.Symbol)
	assert.Equal(t, "USD Coin", info.Name)
	assert.Equal(t, 0.9998, info.PriceUSD)
	assert.Equal(t, 2, info.Pools)
	assert.Equal(t, 5100.0, info.LiquidityUSD)
	assert.Equal(t, 1500.0, info.Volume24h)
	assert.Equal(t, 8000.0, info.MarketCap)
	assert.Equal(t, "https://img/usdc.png", info.ImageURL)
}

func TestTokenInfoNoPairs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"pairs": null}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 0).TokenInfo(context.Background(), types.ChainXRPL, "rIssuer")
	assert.Error(t, err)
}

func TestGetJSONRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(pairsBody))
	}))
	defer srv.Close()

	pairs, err := newTestClient(srv.URL, 3).Pairs(context.Background(), mint)
	require.NoError(t, err)
	assert.Len(t, pairs, 3)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetJSONDoesNotRetryNotFound(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 3).Pairs(context.Background(), mint)
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestJupiterPrice(t *testing.T) {
	var lastIDs atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lastIDs.Store(r.URL.Query().Get("ids"))
		_, _ = w.Write([]byte(`{"data": {"` + mint + `": {"id": "` + mint + `", "type": "derivedPrice", "price": "1.0002"}}}`))
	}))
	defer srv.Close()

	price, err := newTestClient(srv.URL, 0).JupiterPrice(context.Background(), mint)
	require.NoError(t, err)
	assert.Equal(t, 1.0002, price)
	assert.Equal(t, mint, lastIDs.Load())

	_, err = newTestClient(srv.URL, 0).JupiterPrice(context.Background(), "other")
	assert.Error(t, err)
}
