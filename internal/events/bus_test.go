package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	bus := NewBus(zap.NewNop(), 10)
	defer bus.Shutdown(context.Background())

	received := make(chan TradeExecutedEvent, 1)
	bus.SubscribeFunc(TradeExecuted, func(_ context.Context, e Event) error {
		received <- e.(TradeExecutedEvent)
		return nil
	})

	ev := TradeExecutedEvent{BaseEvent: NewBaseEvent(TradeExecuted), UserID: "u1", Signature: "sig"}
	require.NoError(t, bus.Publish(ev))

	select {
	case got := <-received:
		assert.Equal(t, "sig", got.Signature)
		assert.NotEmpty(t, got.ID)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestPublishSyncCollectsErrorsAndPanics(t *testing.T) {
	bus := NewBus(zap.NewNop(), 1)
	defer bus.Shutdown(context.Background())

	var calls int32
	bus.SubscribeFunc(TradeFailed, func(context.Context, Event) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	})
	bus.SubscribeFunc(TradeFailed, func(context.Context, Event) error {
		atomic.AddInt32(&calls, 1)
		panic("handler bug")
	})

	err := bus.PublishSync(context.Background(), TradeFailedEvent{BaseEvent: NewBaseEvent(TradeFailed)})
	assert.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus(zap.NewNop(), 1)
	defer bus.Shutdown(context.Background())

	var calls int32
	sub := bus.SubscribeFunc(WalletCreated, func(context.Context, Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	assert.Equal(t, 1, bus.Stats().HandlersPerType[WalletCreated])

	sub.Unsubscribe()
	require.NoError(t, bus.PublishSync(context.Background(), WalletCreatedEvent{BaseEvent: NewBaseEvent(WalletCreated)}))
	assert.Zero(t, atomic.LoadInt32(&calls))
	assert.Zero(t, bus.Stats().HandlersPerType[WalletCreated])
}

func TestPublishAfterShutdown(t *testing.T) {
	bus := NewBus(zap.NewNop(), 1)
	require.NoError(t, bus.Shutdown(context.Background()))
	assert.Error(t, bus.Publish(WalletCreatedEvent{BaseEvent: NewBaseEvent(WalletCreated)}))
}
