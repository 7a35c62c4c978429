// internal/research/research.go
package research

import (
	"context"
	"time"

	"github.com/rovshanmuradov/tradedesk/internal/blockchain"
	"github.com/rovshanmuradov/tradedesk/internal/blockchain/solbc"
	"github.com/rovshanmuradov/tradedesk/internal/market"
	"github.com/rovshanmuradov/tradedesk/internal/session"
	"github.com/rovshanmuradov/tradedesk/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Snapshot is a token's research view. Every field has a usable zero value,
// so it can be rendered whatever sources failed.
type Snapshot struct {
	Chain    types.Chain
	Address  string
	Name     string
	Symbol   string
	Decimals uint8
	ImageURL string

	PriceUSD  float64
	MarketCap float64
	FDV       float64

	Volume24h float64
	Volume7d  float64
	Change1h  float64
	Change24h float64
	Change7d  float64

	TotalSupply       float64
	CirculatingSupply float64

	LiquidityUSD float64
	Pools        int
	Holders      int

	FetchedAt time.Time
	// Missing lists the sources that failed or returned nothing.
	Missing []string
}

// TokenInfoSource looks up aggregated pair data.
type TokenInfoSource interface {
	TokenInfo(ctx context.Context, chain types.Chain, token string) (market.TokenInfo, error)
}

// PriceSource returns a USD price for a Solana mint.
type PriceSource interface {
	JupiterPrice(ctx context.Context, mint string) (float64, error)
}

// SupplySource returns on-chain mint supply.
type SupplySource interface {
	GetTokenSupply(ctx context.Context, mint string) (solbc.TokenSupply, error)
}

// Service assembles snapshots and caches the last one per user.
type Service struct {
	tokens  TokenInfoSource
	prices  PriceSource
	supply  SupplySource
	cache   *session.Store[Snapshot]
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a research service. Any source may be nil.
func NewService(tokens TokenInfoSource, prices PriceSource, supply SupplySource,
	cache *session.Store[Snapshot], timeout time.Duration, logger *zap.Logger) *Service {
	return &Service{
		tokens:  tokens,
		prices:  prices,
		supply:  supply,
		cache:   cache,
		timeout: timeout,
		logger:  logger.Named("research"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func cacheKey(userID string) session.Key {
	return session.Key{UserID: userID, Flow: types.FlowResearch}
}

// Research validates token for chain, fetches all sources in parallel and
// caches the result for userID. Only an invalid address is an error.
func (s *Service) Research(ctx context.Context, userID string, chain types.Chain, token string) (Snapshot, error) {
	if err := blockchain.ValidateTokenAddress(chain, token); err != nil {
		return Snapshot{}, &types.ValidationError{Field: "token_address", Reason: err.Error()}
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		info      market.TokenInfo
		jupPrice  float64
		supply    solbc.TokenSupply
		infoErr   error
		priceErr  error
		supplyErr error
	)

	var g errgroup.Group
	if s.tokens != nil {
		g.Go(func() error {
			info, infoErr = s.tokens.TokenInfo(ctx, chain, token)
			return nil
		})
	}
	if chain == types.ChainSolana && s.prices != nil {
		g.Go(func() error {
			jupPrice, priceErr = s.prices.JupiterPrice(ctx, token)
			return nil
		})
	}
	if chain == types.ChainSolana && s.supply != nil {
		g.Go(func() error {
			supply, supplyErr = s.supply.GetTokenSupply(ctx, token)
			return nil
		})
	}
	_ = g.Wait()

	snap := Snapshot{Chain: chain, Address: token, FetchedAt: s.now()}
	log := s.logger.With(zap.String("token", token), zap.String("chain", string(chain)))

	if s.tokens == nil || infoErr != nil {
		snap.Missing = append(snap.Missing, "dexscreener")
		if infoErr != nil {
			log.Debug("Pair data unavailable", zap.Error(infoErr))
		}
	} else {
		snap.Name = info.Name
		snap.Symbol = info.Symbol
		snap.ImageURL = info.ImageURL
		snap.PriceUSD = info.PriceUSD
		snap.MarketCap = info.MarketCap
		snap.FDV = info.FDV
		snap.Volume24h = info.Volume24h
		snap.Change1h = info.Change1h
		snap.Change24h = info.Change24h
		snap.LiquidityUSD = info.LiquidityUSD
		snap.Pools = info.Pools
	}

	if chain == types.ChainSolana {
		switch {
		case s.prices == nil || priceErr != nil:
			snap.Missing = append(snap.Missing, "jupiter")
			if priceErr != nil {
				log.Debug("Jupiter price unavailable", zap.Error(priceErr))
			}
		case snap.PriceUSD == 0:
			snap.PriceUSD = jupPrice
		}

		if s.supply == nil || supplyErr != nil {
			snap.Missing = append(snap.Missing, "supply")
			if supplyErr != nil {
				log.Debug("Token supply unavailable", zap.Error(supplyErr))
			}
		} else {
			snap.TotalSupply = supply.Amount
			snap.Decimals = supply.Decimals
		}
	}

	snap.CirculatingSupply = circulating(snap)
	if snap.FDV == 0 && snap.PriceUSD > 0 {
		snap.FDV = snap.PriceUSD * snap.TotalSupply
	}
	if snap.Symbol == "" {
		snap.Symbol = "UNKNOWN"
	}
	if snap.Name == "" {
		snap.Name = "Unknown token"
	}

	if len(snap.Missing) > 0 {
		log.Info("Research snapshot assembled with missing sources", zap.Strings("missing", snap.Missing))
	}
	if s.cache != nil && userID != "" {
		s.cache.Init(cacheKey(userID), snap)
	}
	return snap, nil
}

// circulating estimates circulating supply from market cap when the pair
// data has it, else falls back to the total supply.
func circulating(s Snapshot) float64 {
	if s.MarketCap > 0 && s.PriceUSD > 0 {
		c := s.MarketCap / s.PriceUSD
		if s.TotalSupply > 0 && c > s.TotalSupply {
			return s.TotalSupply
		}
		return c
	}
	return s.TotalSupply
}

// Last returns the user's cached snapshot.
func (s *Service) Last(userID string) (Snapshot, bool) {
	if s.cache == nil {
		return Snapshot{}, false
	}
	return s.cache.Get(cacheKey(userID))
}
