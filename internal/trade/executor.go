// internal/trade/executor.go
package trade

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rovshanmuradov/tradedesk/internal/blockchain"
	"github.com/rovshanmuradov/tradedesk/internal/events"
	"github.com/rovshanmuradov/tradedesk/internal/session"
	"github.com/rovshanmuradov/tradedesk/internal/storage/models"
	"github.com/rovshanmuradov/tradedesk/internal/types"
	"github.com/rovshanmuradov/tradedesk/internal/utils/logger"
	"github.com/rovshanmuradov/tradedesk/internal/utils/metrics"
	"github.com/rovshanmuradov/tradedesk/internal/wizard"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// State of one execution attempt.
type State string

const (
	StateConfiguring State = "configuring"
	StateSubmitting  State = "submitting"
	StateSucceeded   State = "succeeded"
	StateFailed      State = "failed"
)

// Ошибки предусловий. Сессия при них не меняется.
var (
	ErrNoWallet            = errors.New("no custody wallet for this chain")
	ErrMissingToken        = errors.New("token address is not set")
	ErrMissingSize         = errors.New("trade size is not set")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBalanceUnavailable  = errors.New("balance could not be checked")
	ErrAlreadyCompleted    = errors.New("trade already completed")
	ErrInProgress          = errors.New("trade already in progress")
)

// BalanceChecker reads the native balance used to pay for a buy.
type BalanceChecker interface {
	NativeBalance(ctx context.Context, chain types.Chain, owner string) (float64, error)
}

// KeyResolver turns a stored key reference into the private key. References
// are bound to their owner.
type KeyResolver interface {
	ResolvePrivateKey(userID, ref string) (string, error)
}

// TransactionStore receives the audit record of each submission.
type TransactionStore interface {
	SaveTransaction(ctx context.Context, tx *models.Transaction) error
}

// Config holds the trade API endpoint and optional fee routing.
type Config struct {
	APIURL             string
	APIKey             string
	PlatformPublicKey  string
	PlatformPercentage float64
	ReferralPublicKey  string
	ReferralPercentage float64
	Timeout            time.Duration
}

// Result describes a finished attempt.
type Result struct {
	State           State
	Signature       string
	AmountOut       float64
	HasAmountOut    bool
	Message         string
	MessageFallback bool
	Duration        time.Duration
}

// Executor submits completed trade configs to the trade API. Submissions are
// never retried.
type Executor struct {
	cfg        Config
	httpClient *http.Client
	balances   BalanceChecker
	keys       KeyResolver
	txs        TransactionStore
	bus        events.Publisher
	metrics    *metrics.Collector
	logger     *zap.Logger

	inflight sync.Map
}

// NewExecutor creates an executor. txs, bus and collector may be nil.
func NewExecutor(cfg Config, balances BalanceChecker, keys KeyResolver, txs TransactionStore,
	bus events.Publisher, collector *metrics.Collector, logger *zap.Logger) *Executor {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Executor{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		balances:   balances,
		keys:       keys,
		txs:        txs,
		bus:        bus,
		metrics:    collector,
		logger:     logger.Named("trade"),
	}
}

// CheckPreconditions validates cfg and, for buys, that the wallet can pay
// the amount plus the priority fee.
func (e *Executor) CheckPreconditions(ctx context.Context, cfg wizard.TradeConfig) error {
	chain := cfg.Flow.Chain()
	if cfg.WalletPublicKey == "" || cfg.WalletPrivateKeyRef == "" {
		return ErrNoWallet
	}
	if cfg.TokenAddress == "" {
		return ErrMissingToken
	}
	if err := blockchain.ValidateTokenAddress(chain, cfg.TokenAddress); err != nil {
		return fmt.Errorf("%w: %v", ErrMissingToken, err)
	}
	if size := cfg.Size(); !(size > 0) || !types.IsFinite(size) {
		return ErrMissingSize
	}
	if cfg.Flow.Side() == types.SideSell {
		if cfg.SellPercentage > 100 {
			return fmt.Errorf("%w: percentage above 100", ErrMissingSize)
		}
		return nil
	}

	balance, err := e.balances.NativeBalance(ctx, chain, cfg.WalletPublicKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBalanceUnavailable, err)
	}
	required := decimal.NewFromFloat(cfg.Amount)
	if chain == types.ChainSolana {
		required = required.Add(decimal.NewFromFloat(cfg.PriorityFee.SOL))
	}
	if decimal.NewFromFloat(balance).LessThan(required) {
		return fmt.Errorf("%w: have %s %s, need %s", ErrInsufficientBalance,
			decimal.NewFromFloat(balance).String(), chain.BaseCurrency(), required.String())
	}
	return nil
}

// BuildRequest assembles the API request. The private key is resolved here
// and nowhere else.
func (e *Executor) BuildRequest(cfg wizard.TradeConfig) (Request, error) {
	key, err := e.keys.ResolvePrivateKey(cfg.UserID, cfg.WalletPrivateKeyRef)
	if err != nil {
		return Request{}, fmt.Errorf("resolve private key: %w", err)
	}

	req := Request{
		PrivateKey: key,
		Amount:     cfg.Size(),
		Slippage:   int(cfg.Slippage),
	}
	if cfg.Flow.Side() == types.SideSell {
		req.InputMint = cfg.TokenAddress
	} else {
		req.OutputMint = cfg.TokenAddress
	}
	if cfg.Flow.Chain() == types.ChainSolana {
		req.PriorityFee = cfg.PriorityFee.SOL
	}
	if e.cfg.PlatformPublicKey != "" && e.cfg.PlatformPercentage > 0 {
		req.PlatformPublicKey = e.cfg.PlatformPublicKey
		req.PlatformPercentage = e.cfg.PlatformPercentage
	}
	if e.cfg.ReferralPublicKey != "" && e.cfg.ReferralPercentage > 0 {
		req.ReferralPublicKey = e.cfg.ReferralPublicKey
		req.ReferralPercentage = e.cfg.ReferralPercentage
	}
	return req, nil
}

func (e *Executor) endpoint(flow types.FlowKind) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(e.cfg.APIURL, "/"), flow.Chain(), flow.Side())
}

// Execute runs one attempt: preconditions, then a single submission. The
// returned error is set only when a precondition fails; submission problems
// are reported as a Failed result.
func (e *Executor) Execute(ctx context.Context, cfg wizard.TradeConfig) (Result, error) {
	log := e.logger.With(zap.String("user_id", cfg.UserID), zap.String("flow", string(cfg.Flow)))

	if err := e.CheckPreconditions(ctx, cfg); err != nil {
		log.Info("Trade preconditions not met", zap.Error(err))
		return Result{State: StateConfiguring}, err
	}

	req, err := e.BuildRequest(cfg)
	if err != nil {
		log.Error("Failed to build trade request", zap.Error(err))
		return e.finish(ctx, cfg, Result{State: StateFailed, Message: "wallet key is unavailable"}), nil
	}

	log.Info("🚀 Submitting trade", zap.Object("request", req))
	start := time.Now()
	outcome, err := e.submit(ctx, cfg.Flow, req)
	result := Result{
		State:           StateFailed,
		Signature:       outcome.Signature,
		AmountOut:       outcome.AmountOut,
		HasAmountOut:    outcome.HasAmountOut,
		Message:         outcome.Message,
		MessageFallback: outcome.MessageFallback,
		Duration:        time.Since(start),
	}
	if err != nil {
		result.Message = logger.RedactIn(err.Error(), req.PrivateKey)
		log.Error("Trade submission failed", zap.String("error", result.Message))
	} else if outcome.Success {
		result.State = StateSucceeded
		if outcome.MessageFallback {
			log.Warn("Trade success inferred from message text, success flag missing",
				zap.String("message", outcome.Message))
		}
		log.Info("✅ Trade confirmed",
			zap.String("signature", outcome.Signature),
			zap.Float64("amount_out", outcome.AmountOut),
			zap.Duration("duration", result.Duration))
	} else {
		result.Message = logger.RedactIn(outcome.Message, req.PrivateKey)
		log.Warn("Trade rejected", zap.String("message", result.Message))
	}

	return e.finish(ctx, cfg, result), nil
}

func (e *Executor) submit(ctx context.Context, flow types.FlowKind, req Request) (Outcome, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("marshal request: %w", err)
	}

	// после отправки сделка может пройти независимо от нас: отмена
	// взаимодействия не обрывает запрос, его ограничивает таймаут клиента
	httpReq, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodPost, e.endpoint(flow), bytes.NewReader(body))
	if err != nil {
		return Outcome{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if e.cfg.APIKey != "" {
		httpReq.Header.Set("x-api-key", e.cfg.APIKey)
	}

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return Outcome{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Outcome{}, fmt.Errorf("read response: %w", err)
	}

	outcome := Classify(raw)
	if resp.StatusCode >= http.StatusBadRequest {
		outcome.Success = false
		if outcome.Message == "" {
			outcome.Message = fmt.Sprintf("trade service returned status %d", resp.StatusCode)
		}
	}
	return outcome, nil
}

// finish records metrics, the audit row and the event for a finished attempt.
func (e *Executor) finish(ctx context.Context, cfg wizard.TradeConfig, result Result) Result {
	chain, side := cfg.Flow.Chain(), cfg.Flow.Side()
	succeeded := result.State == StateSucceeded
	e.metrics.RecordTrade(ctx, string(chain), string(side), result.Duration, succeeded)

	if e.txs != nil {
		tx := &models.Transaction{
			UserID:        cfg.UserID,
			Chain:         string(chain),
			Side:          string(side),
			WalletAddress: cfg.WalletPublicKey,
			TokenAddress:  cfg.TokenAddress,
			Amount:        cfg.Size(),
			AmountOut:     result.AmountOut,
			SlippageBps:   int(cfg.Slippage),
			PriorityFee:   cfg.PriorityFee.SOL,
			Signature:     result.Signature,
			Status:        models.TransactionFailed,
			ErrorMessage:  result.Message,
			ExecutionTime: result.Duration.Seconds(),
		}
		if succeeded {
			now := time.Now()
			tx.Status = models.TransactionSucceeded
			tx.ErrorMessage = ""
			tx.ConfirmedAt = &now
		}
		// Аудит не должен зависеть от отмены запроса пользователя
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if err := e.txs.SaveTransaction(saveCtx, tx); err != nil {
			e.logger.Error("Failed to save transaction record", zap.String("user_id", cfg.UserID), zap.Error(err))
		}
		cancel()
	}

	if e.bus != nil {
		var ev events.Event
		if succeeded {
			ev = events.TradeExecutedEvent{
				BaseEvent:       events.NewBaseEvent(events.TradeExecuted),
				UserID:          cfg.UserID,
				Chain:           string(chain),
				Side:            string(side),
				TokenAddress:    cfg.TokenAddress,
				Wallet:          cfg.WalletPublicKey,
				Size:            cfg.Size(),
				Signature:       result.Signature,
				AmountOut:       result.AmountOut,
				MessageFallback: result.MessageFallback,
				Duration:        result.Duration,
			}
		} else {
			ev = events.TradeFailedEvent{
				BaseEvent:    events.NewBaseEvent(events.TradeFailed),
				UserID:       cfg.UserID,
				Chain:        string(chain),
				Side:         string(side),
				TokenAddress: cfg.TokenAddress,
				Size:         cfg.Size(),
				Reason:       result.Message,
			}
		}
		if err := e.bus.Publish(ev); err != nil {
			e.logger.Warn("Failed to publish trade event", zap.Error(err))
		}
	}

	return result
}

// ExecuteSession executes the stored config for key. A completed session is
// refused; a successful attempt marks the session completed.
func (e *Executor) ExecuteSession(ctx context.Context, store *session.Store[wizard.TradeConfig], key session.Key) (Result, error) {
	if _, busy := e.inflight.LoadOrStore(key, struct{}{}); busy {
		return Result{State: StateSubmitting}, ErrInProgress
	}
	defer e.inflight.Delete(key)

	cfg, ok := store.Get(key)
	if !ok {
		return Result{}, session.ErrConfigNotFound
	}
	if cfg.Completed {
		return Result{State: StateSucceeded, Signature: cfg.LastSignature}, ErrAlreadyCompleted
	}

	result, err := e.Execute(ctx, cfg)
	if err != nil || result.State != StateSucceeded {
		return result, err
	}

	if _, err := store.Update(key, func(c *wizard.TradeConfig) error {
		c.Completed = true
		c.LastSignature = result.Signature
		return nil
	}); err != nil {
		e.logger.Warn("Session vanished before it could be marked completed",
			zap.String("user_id", key.UserID), zap.Error(err))
	}
	return result, nil
}
