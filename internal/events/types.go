// internal/events/types.go
package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event.
type EventType string

const (
	// Trade events
	TradeExecuted EventType = "trade.executed"
	TradeFailed   EventType = "trade.failed"

	// Market making events
	MarketMakingStarted EventType = "market_making.started"
	MarketMakingStopped EventType = "market_making.stopped"

	// Wallet events
	WalletCreated EventType = "wallet.created"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	ID        string
	EventType EventType
	EventTime time.Time
}

// NewBaseEvent stamps a new event of type t with an id and the current time.
func NewBaseEvent(t EventType) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		EventType: t,
		EventTime: time.Now(),
	}
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// TradeExecutedEvent is emitted when the trade API confirms a submission.
type TradeExecutedEvent struct {
	BaseEvent
	UserID       string
	Chain        string
	Side         string
	TokenAddress string
	Wallet       string
	Size         float64
	Signature    string
	AmountOut    float64
	// MessageFallback is set when success was inferred from the message text
	// instead of the success flag.
	MessageFallback bool
	Duration        time.Duration
}

// TradeFailedEvent is emitted when a submission is rejected or errors.
type TradeFailedEvent struct {
	BaseEvent
	UserID       string
	Chain        string
	Side         string
	TokenAddress string
	Size         float64
	Reason       string
}

// MarketMakingStartedEvent is emitted when a session is switched on.
type MarketMakingStartedEvent struct {
	BaseEvent
	UserID    string
	SessionID string
	TokenMint string
}

// MarketMakingStoppedEvent carries the summary of a stopped session.
type MarketMakingStoppedEvent struct {
	BaseEvent
	UserID       string
	SessionID    string
	TokenMint    string
	Duration     time.Duration
	OrdersFilled int
	VolumeBought float64
	VolumeSold   float64
	PnL          float64
}

// WalletCreatedEvent is emitted after a custody wallet is generated or imported.
type WalletCreatedEvent struct {
	BaseEvent
	UserID    string
	Chain     string
	PublicKey string
}
