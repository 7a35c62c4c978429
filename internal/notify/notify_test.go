package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rovshanmuradov/tradedesk/internal/events"
	"github.com/rovshanmuradov/tradedesk/internal/storage/models"
	"github.com/rovshanmuradov/tradedesk/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sent struct {
	channel string
	screen  ui.Screen
}

type fakeSender struct {
	sent    []sent
	failFor string
}

func (f *fakeSender) SendScreen(_ context.Context, channelID string, screen ui.Screen) error {
	if channelID == f.failFor {
		return errors.New("missing access")
	}
	f.sent = append(f.sent, sent{channelID, screen})
	return nil
}

type fakeSettings map[string]*models.TradeSettings

func (f fakeSettings) Peek(_ context.Context, userID string) *models.TradeSettings {
	return f[userID]
}

func executed() events.TradeExecutedEvent {
	return events.TradeExecutedEvent{
		BaseEvent:    events.NewBaseEvent(events.TradeExecuted),
		UserID:       "u1",
		Chain:        "solana",
		Side:         "buy",
		TokenAddress: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		Size:         0.5,
		Signature:    "sig",
		Duration:     1500 * time.Millisecond,
	}
}

func TestHandleSendsToPrimaryChannel(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, fakeSettings{
		"u1": {UserID: "u1", Channels: []string{"c1", "c2"}, PrimaryChannel: "c2"},
	}, zap.NewNop())

	require.NoError(t, n.Handle(context.Background(), executed()))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "c2", sender.sent[0].channel)

	tx, ok := sender.sent[0].screen.Field("Transaction")
	require.True(t, ok)
	assert.Equal(t, "https://solscan.io/tx/sig", tx.Value)
}

func TestHandleFansOutWithoutPrimary(t *testing.T) {
	sender := &fakeSender{failFor: "c1"}
	n := NewNotifier(sender, fakeSettings{
		"u1": {UserID: "u1", Channels: []string{"c1", "c2"}},
	}, zap.NewNop())

	err := n.Handle(context.Background(), executed())
	assert.Error(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "c2", sender.sent[0].channel)
}

func TestHandleWithoutChannels(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, fakeSettings{}, zap.NewNop())
	assert.NoError(t, n.Handle(context.Background(), executed()))
	assert.Empty(t, sender.sent)
}

func TestRender(t *testing.T) {
	_, screen, ok := Render(events.TradeFailedEvent{
		BaseEvent: events.NewBaseEvent(events.TradeFailed),
		UserID:    "u1", Chain: "xrpl", Side: "sell", Reason: "no route",
	})
	require.True(t, ok)
	assert.Equal(t, ui.ColorError, screen.Color)
	reason, _ := screen.Field("Reason")
	assert.Equal(t, "no route", reason.Value)

	_, _, ok = Render(events.WalletCreatedEvent{BaseEvent: events.NewBaseEvent(events.WalletCreated)})
	assert.False(t, ok)

	assert.Equal(t, "https://livenet.xrpl.org/transactions/ABC", ExplorerURL("xrpl", "ABC"))
	assert.Empty(t, ExplorerURL("solana", ""))
}

func TestRegisterWithBus(t *testing.T) {
	bus := events.NewBus(zap.NewNop(), 10)
	defer func() { _ = bus.Shutdown(context.Background()) }()

	sender := &fakeSender{}
	n := NewNotifier(sender, fakeSettings{"u1": {UserID: "u1", PrimaryChannel: "c1"}}, zap.NewNop())
	subs := n.Register(bus)
	assert.Len(t, subs, 3)

	require.NoError(t, bus.PublishSync(context.Background(), executed()))
	require.Len(t, sender.sent, 1)
}
