// internal/market/dexscreener.go
package market

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rovshanmuradov/tradedesk/internal/types"
	"go.uber.org/zap"
)

// DexScreenerResponse представляет основную структуру ответа
type DexScreenerResponse struct {
	SchemaVersion string `json:"schemaVersion"`
	Pairs         []Pair `json:"pairs"`
}

// Pair содержит информацию о паре
type Pair struct {
	ChainID     string     `json:"chainId"`
	DexID       string     `json:"dexId"`
	URL         string     `json:"url"`
	PairAddress string     `json:"pairAddress"`
	BaseToken   Token      `json:"baseToken"`
	QuoteToken  Token      `json:"quoteToken"`
	PriceNative string     `json:"priceNative"`
	PriceUsd    string     `json:"priceUsd"`
	Volume      Periods    `json:"volume"`
	PriceChange Periods    `json:"priceChange"`
	Liquidity   *Liquidity `json:"liquidity"`
	Fdv         float64    `json:"fdv"`
	MarketCap   float64    `json:"marketCap"`
	Info        *PairInfo  `json:"info"`
}

type Token struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type Periods struct {
	M5  float64 `json:"m5"`
	H1  float64 `json:"h1"`
	H6  float64 `json:"h6"`
	H24 float64 `json:"h24"`
}

type Liquidity struct {
	USD   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}

type PairInfo struct {
	ImageURL string `json:"imageUrl"`
}

// TokenInfo is the market view of a token aggregated over its pairs.
type TokenInfo struct {
	Address      string
	Name         string
	Symbol       string
	ImageURL     string
	PriceUSD     float64
	MarketCap    float64
	FDV          float64
	Volume24h    float64
	Change1h     float64
	Change24h    float64
	LiquidityUSD float64
	Pools        int
}

func dexChainID(chain types.Chain) string {
	switch chain {
	case types.ChainXRPL:
		return "xrpl"
	default:
		return "solana"
	}
}

// Pairs получает все пары токена
func (c *Client) Pairs(ctx context.Context, token string) ([]Pair, error) {
	endpoint := fmt.Sprintf("%s/tokens/%s", c.dexURL, url.PathEscape(token))

	var response DexScreenerResponse
	if err := c.getJSON(ctx, "dexscreener", endpoint, &response); err != nil {
		return nil, fmt.Errorf("failed to get token pairs: %w", err)
	}
	return response.Pairs, nil
}

// TokenInfo берёт метаданные из пары с наибольшей ликвидностью и суммирует
// ликвидность и объём по всем парам сети.
func (c *Client) TokenInfo(ctx context.Context, chain types.Chain, token string) (TokenInfo, error) {
	pairs, err := c.Pairs(ctx, token)
	if err != nil {
		return TokenInfo{}, err
	}

	info := TokenInfo{Address: token}
	var best *Pair
	bestLiquidity := -1.0
	chainID := dexChainID(chain)

	for i := range pairs {
		pair := &pairs[i]
		if pair.ChainID != chainID {
			continue
		}
		info.Pools++
		liquidity := 0.0
		if pair.Liquidity != nil {
			liquidity = pair.Liquidity.USD
		}
		info.LiquidityUSD += liquidity
		info.Volume24h += pair.Volume.H24
		if liquidity > bestLiquidity {
			bestLiquidity = liquidity
			best = pair
		}
	}

	if best == nil {
		return TokenInfo{}, fmt.Errorf("no %s pairs found for token %s", chainID, token)
	}

	meta := best.BaseToken
	if !strings.EqualFold(meta.Address, token) && strings.EqualFold(best.QuoteToken.Address, token) {
		meta = best.QuoteToken
	}
	info.Name = meta.Name
	info.Symbol = meta.Symbol
	info.PriceUSD, _ = strconv.ParseFloat(best.PriceUsd, 64)
	info.MarketCap = best.MarketCap
	info.FDV = best.Fdv
	info.Change1h = best.PriceChange.H1
	info.Change24h = best.PriceChange.H24
	if best.Info != nil {
		info.ImageURL = best.Info.ImageURL
	}

	c.logger.Debug("Resolved token info",
		zap.String("token", token),
		zap.String("symbol", info.Symbol),
		zap.String("pair_address", best.PairAddress),
		zap.String("dex", best.DexID),
		zap.Int("pools", info.Pools))

	return info, nil
}
