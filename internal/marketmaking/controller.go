// internal/marketmaking/controller.go
package marketmaking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rovshanmuradov/tradedesk/internal/events"
	"github.com/rovshanmuradov/tradedesk/internal/storage"
	"github.com/rovshanmuradov/tradedesk/internal/storage/models"
	"github.com/rovshanmuradov/tradedesk/internal/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrConfigRequired means the user has no saved config with a token. The
	// UI answers it with a prompt to configure.
	ErrConfigRequired = errors.New("market making configuration required")
	ErrAlreadyActive  = errors.New("market making session already active")
	ErrNotActive      = errors.New("no active market making session")
	ErrTokenLocked    = errors.New("token cannot be changed while a session is active")
)

// Counters are the live statistics of one running session.
type Counters struct {
	SessionID    string
	TokenMint    string
	StartedAt    time.Time
	OrdersFilled int
	VolumeBought decimal.Decimal
	VolumeSold   decimal.Decimal
	PnL          decimal.Decimal
}

// Summary is reported when a session stops or its status is shown.
type Summary struct {
	SessionID    string
	TokenMint    string
	Duration     time.Duration
	OrdersFilled int
	VolumeBought float64
	VolumeSold   float64
	PnL          float64
}

func (c *Counters) summary(d time.Duration) Summary {
	if c == nil {
		return Summary{Duration: d}
	}
	return Summary{
		SessionID:    c.SessionID,
		TokenMint:    c.TokenMint,
		Duration:     d,
		OrdersFilled: c.OrdersFilled,
		VolumeBought: c.VolumeBought.InexactFloat64(),
		VolumeSold:   c.VolumeSold.InexactFloat64(),
		PnL:          c.PnL.InexactFloat64(),
	}
}

// Status is the current state of a user's market making.
type Status struct {
	Config *models.MarketMakingConfig
	Saved  bool
	Active bool
	// Live is false when the config is active but the counters were lost,
	// e.g. after a restart.
	Live    bool
	Summary Summary
}

// Controller manages the active flag and in-memory counters. It places no orders.
type Controller struct {
	repo   storage.Storage
	bus    events.Publisher
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Counters
	locks    sync.Map
}

// NewController creates a controller. bus may be nil.
func NewController(repo storage.Storage, bus events.Publisher, logger *zap.Logger) *Controller {
	return &Controller{
		repo:     repo,
		bus:      bus,
		logger:   logger.Named("marketmaking"),
		now:      func() time.Time { return time.Now().UTC() },
		sessions: make(map[string]*Counters),
	}
}

func (c *Controller) lock(userID string) func() {
	v, _ := c.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// load returns the stored config, or defaults with saved=false.
func (c *Controller) load(ctx context.Context, userID string) (*models.MarketMakingConfig, bool, error) {
	cfg, err := c.repo.GetMarketMakingConfig(ctx, userID)
	if err == nil {
		return cfg, true, nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return Defaults(userID), false, nil
	}
	return nil, false, fmt.Errorf("load market making config: %w", err)
}

// Config returns the stored config or unsaved defaults.
func (c *Controller) Config(ctx context.Context, userID string) (*models.MarketMakingConfig, error) {
	cfg, _, err := c.load(ctx, userID)
	return cfg, err
}

// Save merges patch into the config, validates and persists it.
func (c *Controller) Save(ctx context.Context, userID string, patch Patch) (*models.MarketMakingConfig, error) {
	unlock := c.lock(userID)
	defer unlock()

	current, _, err := c.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	next := *current
	patch.Apply(&next)
	if current.Active && next.TokenMint != current.TokenMint {
		return nil, ErrTokenLocked
	}
	if err := Validate(&next); err != nil {
		return nil, err
	}
	if err := c.repo.SaveMarketMakingConfig(ctx, &next); err != nil {
		return nil, fmt.Errorf("save market making config: %w", err)
	}
	return &next, nil
}

// Start marks the session active and opens its counters. Without a saved
// config that has a token it returns ErrConfigRequired and changes nothing.
func (c *Controller) Start(ctx context.Context, userID string) (*models.MarketMakingConfig, error) {
	unlock := c.lock(userID)
	defer unlock()

	cfg, saved, err := c.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !saved || cfg.TokenMint == "" {
		return nil, ErrConfigRequired
	}
	if cfg.Active && c.counters(userID) != nil {
		return nil, ErrAlreadyActive
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigRequired, err)
	}

	now := c.now()
	next := *cfg
	next.Active = true
	next.StartedAt = &now
	next.StoppedAt = nil
	if err := c.repo.SaveMarketMakingConfig(ctx, &next); err != nil {
		return nil, fmt.Errorf("save market making config: %w", err)
	}

	counters := &Counters{
		SessionID: uuid.New().String(),
		TokenMint: next.TokenMint,
		StartedAt: now,
	}
	c.mu.Lock()
	c.sessions[userID] = counters
	c.mu.Unlock()

	c.logger.Info("▶️ Market making started",
		zap.String("user_id", userID),
		zap.String("session_id", counters.SessionID),
		zap.String("token_mint", next.TokenMint))
	c.publish(events.MarketMakingStartedEvent{
		BaseEvent: events.NewBaseEvent(events.MarketMakingStarted),
		UserID:    userID,
		SessionID: counters.SessionID,
		TokenMint: next.TokenMint,
	})
	return &next, nil
}

// Stop clears the active flag and returns the session summary. Missing
// counters are reported as zeros.
func (c *Controller) Stop(ctx context.Context, userID string) (Summary, error) {
	unlock := c.lock(userID)
	defer unlock()

	cfg, saved, err := c.load(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	if !saved {
		return Summary{}, ErrConfigRequired
	}
	if !cfg.Active {
		return Summary{}, ErrNotActive
	}

	now := c.now()
	var elapsed time.Duration
	if cfg.StartedAt != nil {
		elapsed = now.Sub(*cfg.StartedAt)
	}

	next := *cfg
	next.Active = false
	next.StoppedAt = &now
	if err := c.repo.SaveMarketMakingConfig(ctx, &next); err != nil {
		return Summary{}, fmt.Errorf("save market making config: %w", err)
	}

	c.mu.Lock()
	counters := c.sessions[userID]
	delete(c.sessions, userID)
	c.mu.Unlock()

	summary := counters.summary(elapsed)
	if summary.TokenMint == "" {
		summary.TokenMint = next.TokenMint
	}
	if counters == nil {
		c.logger.Warn("Stopping market making without live counters",
			zap.String("user_id", userID))
	}

	c.logger.Info("⏹️ Market making stopped",
		zap.String("user_id", userID),
		zap.Duration("duration", elapsed),
		zap.Int("orders_filled", summary.OrdersFilled))
	c.publish(events.MarketMakingStoppedEvent{
		BaseEvent:    events.NewBaseEvent(events.MarketMakingStopped),
		UserID:       userID,
		SessionID:    summary.SessionID,
		TokenMint:    summary.TokenMint,
		Duration:     elapsed,
		OrdersFilled: summary.OrdersFilled,
		VolumeBought: summary.VolumeBought,
		VolumeSold:   summary.VolumeSold,
		PnL:          summary.PnL,
	})
	return summary, nil
}

// Status reports the config and, while active, the live counters.
func (c *Controller) Status(ctx context.Context, userID string) (Status, error) {
	cfg, saved, err := c.load(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	st := Status{Config: cfg, Saved: saved, Active: cfg.Active}
	if !cfg.Active {
		return st, nil
	}

	var elapsed time.Duration
	if cfg.StartedAt != nil {
		elapsed = c.now().Sub(*cfg.StartedAt)
	}
	c.mu.Lock()
	counters := c.sessions[userID]
	st.Summary = counters.summary(elapsed)
	c.mu.Unlock()
	st.Live = counters != nil
	return st, nil
}

// RecordFill adds one filled order to the live counters. pnl is signed.
func (c *Controller) RecordFill(userID string, side types.Side, volume, pnl float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	counters := c.sessions[userID]
	if counters == nil {
		return ErrNotActive
	}
	counters.OrdersFilled++
	v := decimal.NewFromFloat(volume)
	if side == types.SideSell {
		counters.VolumeSold = counters.VolumeSold.Add(v)
	} else {
		counters.VolumeBought = counters.VolumeBought.Add(v)
	}
	counters.PnL = counters.PnL.Add(decimal.NewFromFloat(pnl))
	return nil
}

// ActiveSessions returns the number of sessions with live counters.
func (c *Controller) ActiveSessions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

func (c *Controller) counters(userID string) *Counters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[userID]
}

func (c *Controller) publish(e events.Event) {
	if c.bus == nil {
		return
	}
	if err := c.bus.Publish(e); err != nil {
		c.logger.Warn("Failed to publish market making event", zap.Error(err))
	}
}
