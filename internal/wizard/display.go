// internal/wizard/display.go
package wizard

import (
	"context"
	"time"

	"github.com/rovshanmuradov/tradedesk/internal/market"
	"github.com/rovshanmuradov/tradedesk/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Display is the freshly fetched data shown next to the config. Every field
// has a usable zero value.
type Display struct {
	TokenName     string
	TokenSymbol   string
	PriceUSD      float64
	WalletBalance float64
	TokenBalance  float64
}

// TokenInfoSource looks up token metadata and price.
type TokenInfoSource interface {
	TokenInfo(ctx context.Context, chain types.Chain, token string) (market.TokenInfo, error)
}

// BalanceSource reads wallet balances.
type BalanceSource interface {
	NativeBalance(ctx context.Context, chain types.Chain, owner string) (float64, error)
	TokenBalance(ctx context.Context, chain types.Chain, owner, token string) (float64, error)
}

// DisplayLoader fetches Display data in parallel and degrades each failed
// source to its zero value.
type DisplayLoader struct {
	tokens   TokenInfoSource
	balances BalanceSource
	timeout  time.Duration
	logger   *zap.Logger
}

// NewDisplayLoader creates a loader. Either source may be nil.
func NewDisplayLoader(tokens TokenInfoSource, balances BalanceSource, timeout time.Duration, logger *zap.Logger) *DisplayLoader {
	return &DisplayLoader{
		tokens:   tokens,
		balances: balances,
		timeout:  timeout,
		logger:   logger.Named("display"),
	}
}

// Load never fails. Sources that error are logged and left zero.
func (l *DisplayLoader) Load(ctx context.Context, cfg TradeConfig) Display {
	if l == nil {
		return Display{}
	}
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	chain := cfg.Flow.Chain()
	var (
		info          market.TokenInfo
		walletBalance float64
		tokenBalance  float64
	)

	// Ошибки источников не прерывают остальные запросы
	var g errgroup.Group
	if l.tokens != nil && cfg.TokenAddress != "" {
		g.Go(func() error {
			v, err := l.tokens.TokenInfo(ctx, chain, cfg.TokenAddress)
			if err != nil {
				l.logger.Debug("Token info unavailable", zap.String("token", cfg.TokenAddress), zap.Error(err))
				return nil
			}
			info = v
			return nil
		})
	}
	if l.balances != nil && cfg.WalletPublicKey != "" {
		g.Go(func() error {
			v, err := l.balances.NativeBalance(ctx, chain, cfg.WalletPublicKey)
			if err != nil {
				l.logger.Debug("Wallet balance unavailable", zap.String("chain", string(chain)), zap.Error(err))
				return nil
			}
			walletBalance = v
			return nil
		})
		if cfg.TokenAddress != "" && cfg.Flow.Side() == types.SideSell {
			g.Go(func() error {
				v, err := l.balances.TokenBalance(ctx, chain, cfg.WalletPublicKey, cfg.TokenAddress)
				if err != nil {
					l.logger.Debug("Token balance unavailable", zap.String("token", cfg.TokenAddress), zap.Error(err))
					return nil
				}
				tokenBalance = v
				return nil
			})
		}
	}
	_ = g.Wait()

	return Display{
		TokenName:     info.Name,
		TokenSymbol:   info.Symbol,
		PriceUSD:      info.PriceUSD,
		WalletBalance: walletBalance,
		TokenBalance:  tokenBalance,
	}
}
