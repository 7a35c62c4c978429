// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rovshanmuradov/tradedesk/internal/utils/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const lamportsDecimals = 9

// Client – тонкий адаптер для чтения данных Solana через solana-go.
// Запросы распределяются по списку RPC по кругу, неудачные повторяются на следующем узле.
type Client struct {
	endpoints []*rpc.Client
	urls      []string
	cursor    uint32

	maxTries      uint
	retryInterval time.Duration

	metrics *metrics.Collector
	logger  *zap.Logger
}

// Определение ошибок
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrNoEndpoints     = errors.New("no rpc endpoints configured")
)

// IsAccountNotFoundError проверяет, является ли ошибка "not found"
func IsAccountNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAccountNotFound) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "could not find account")
}

// NewClient создаёт клиент для списка RPC URL. retries задаёт число
// дополнительных попыток для каждого чтения.
func NewClient(rpcURLs []string, retries int, collector *metrics.Collector, logger *zap.Logger) (*Client, error) {
	if len(rpcURLs) == 0 {
		return nil, ErrNoEndpoints
	}
	if retries < 0 {
		retries = 0
	}

	c := &Client{
		urls:          append([]string(nil), rpcURLs...),
		maxTries:      uint(retries + 1),
		retryInterval: 300 * time.Millisecond,
		metrics:       collector,
		logger:        logger.Named("solbc-client"),
	}
	for _, u := range rpcURLs {
		c.endpoints = append(c.endpoints, rpc.New(u))
	}
	return c, nil
}

func (c *Client) next() (*rpc.Client, string) {
	i := atomic.AddUint32(&c.cursor, 1) - 1
	idx := int(i % uint32(len(c.endpoints)))
	return c.endpoints[idx], c.urls[idx]
}

// call выполняет чтение с повторами и переключением узлов.
func (c *Client) call(ctx context.Context, method string, fn func(*rpc.Client) error) error {
	start := time.Now()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInterval
	policy.MaxInterval = c.retryInterval * 10

	notify := func(err error, d time.Duration) {
		c.logger.Debug("RPC call failed, retrying",
			zap.String("method", method),
			zap.Duration("backoff", d),
			zap.Error(err))
	}

	op := func() (struct{}, error) {
		client, url := c.next()
		err := fn(client)
		if err == nil {
			return struct{}{}, nil
		}
		if IsAccountNotFoundError(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		c.logger.Debug("RPC endpoint error", zap.String("endpoint", url), zap.String("method", method), zap.Error(err))
		return struct{}{}, err
	}

	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(notify))

	c.metrics.RecordUpstream("solana_rpc", time.Since(start), err)
	return err
}

// GetBalance возвращает баланс SOL для адреса.
func (c *Client) GetBalance(ctx context.Context, owner string) (float64, error) {
	pubkey, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		return 0, fmt.Errorf("invalid owner address: %w", err)
	}

	var lamports uint64
	err = c.call(ctx, "getBalance", func(client *rpc.Client) error {
		result, err := client.GetBalance(ctx, pubkey, rpc.CommitmentConfirmed)
		if err != nil {
			return err
		}
		lamports = result.Value
		return nil
	})
	if err != nil {
		c.logger.Error("GetBalance error", zap.String("owner", owner), zap.Error(err))
		return 0, err
	}

	return decimal.NewFromInt(int64(lamports)).Shift(-lamportsDecimals).InexactFloat64(), nil
}

// GetTokenBalance возвращает баланс токена на associated token account владельца.
// Отсутствующий аккаунт означает нулевой баланс.
func (c *Client) GetTokenBalance(ctx context.Context, owner, mint string) (float64, error) {
	ownerKey, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		return 0, fmt.Errorf("invalid owner address: %w", err)
	}
	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return 0, fmt.Errorf("invalid mint address: %w", err)
	}
	ata, _, err := solana.FindAssociatedTokenAddress(ownerKey, mintKey)
	if err != nil {
		return 0, fmt.Errorf("derive token account: %w", err)
	}

	var amount *rpc.UiTokenAmount
	err = c.call(ctx, "getTokenAccountBalance", func(client *rpc.Client) error {
		// Передаем rpc.CommitmentConfirmed в качестве уровня комитмента
		result, err := client.GetTokenAccountBalance(ctx, ata, rpc.CommitmentConfirmed)
		if err != nil {
			return err
		}
		amount = result.Value
		return nil
	})
	if err != nil {
		if IsAccountNotFoundError(err) {
			return 0, nil
		}
		return 0, err
	}
	return uiAmount(amount), nil
}

// TokenSupply is the total supply of a mint in whole tokens.
type TokenSupply struct {
	Amount   float64
	Decimals uint8
}

// GetTokenSupply возвращает общее предложение токена.
func (c *Client) GetTokenSupply(ctx context.Context, mint string) (TokenSupply, error) {
	mintKey, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return TokenSupply{}, fmt.Errorf("invalid mint address: %w", err)
	}

	var amount *rpc.UiTokenAmount
	err = c.call(ctx, "getTokenSupply", func(client *rpc.Client) error {
		result, err := client.GetTokenSupply(ctx, mintKey, rpc.CommitmentConfirmed)
		if err != nil {
			return err
		}
		amount = result.Value
		return nil
	})
	if err != nil {
		return TokenSupply{}, err
	}
	if amount == nil {
		return TokenSupply{}, ErrAccountNotFound
	}
	return TokenSupply{Amount: uiAmount(amount), Decimals: amount.Decimals}, nil
}

func uiAmount(v *rpc.UiTokenAmount) float64 {
	if v == nil {
		return 0
	}
	raw, err := decimal.NewFromString(v.Amount)
	if err != nil {
		return 0
	}
	return raw.Shift(-int32(v.Decimals)).InexactFloat64()
}
