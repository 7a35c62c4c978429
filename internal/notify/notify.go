// internal/notify/notify.go
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rovshanmuradov/tradedesk/internal/events"
	"github.com/rovshanmuradov/tradedesk/internal/settings"
	"github.com/rovshanmuradov/tradedesk/internal/storage/models"
	"github.com/rovshanmuradov/tradedesk/internal/types"
	"github.com/rovshanmuradov/tradedesk/internal/ui"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ChannelSender posts a screen to a channel.
type ChannelSender interface {
	SendScreen(ctx context.Context, channelID string, screen ui.Screen) error
}

// SettingsSource returns stored settings or nil.
type SettingsSource interface {
	Peek(ctx context.Context, userID string) *models.TradeSettings
}

// Subscriber is the part of the bus the notifier needs.
type Subscriber interface {
	Subscribe(eventType events.EventType, handler events.Handler) events.Subscription
}

// Notifier posts trade and market making results to the user's registered channels.
type Notifier struct {
	sender   ChannelSender
	settings SettingsSource
	logger   *zap.Logger
}

// NewNotifier creates a notifier.
func NewNotifier(sender ChannelSender, settings SettingsSource, logger *zap.Logger) *Notifier {
	return &Notifier{
		sender:   sender,
		settings: settings,
		logger:   logger.Named("notify"),
	}
}

// Register subscribes the notifier to every event it renders.
func (n *Notifier) Register(bus Subscriber) []events.Subscription {
	kinds := []events.EventType{events.TradeExecuted, events.TradeFailed, events.MarketMakingStopped}
	subs := make([]events.Subscription, 0, len(kinds))
	for _, t := range kinds {
		subs = append(subs, bus.Subscribe(t, n))
	}
	return subs
}

// Handle renders the event and sends it to each channel. One failing
// channel does not stop the others.
func (n *Notifier) Handle(ctx context.Context, event events.Event) error {
	userID, screen, ok := Render(event)
	if !ok {
		return nil
	}

	channels := settings.NotificationChannels(n.settings.Peek(ctx, userID))
	if len(channels) == 0 {
		n.logger.Debug("No notification channel registered", zap.String("user_id", userID))
		return nil
	}

	var errs []error
	for _, channelID := range channels {
		if err := n.sender.SendScreen(ctx, channelID, screen); err != nil {
			n.logger.Warn("Failed to send notification",
				zap.String("user_id", userID),
				zap.String("channel_id", channelID),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("channel %s: %w", channelID, err))
		}
	}
	return errors.Join(errs...)
}

// ExplorerURL links a transaction signature on chain.
func ExplorerURL(chain string, signature string) string {
	if signature == "" {
		return ""
	}
	if types.Chain(chain) == types.ChainXRPL {
		return "https://livenet.xrpl.org/transactions/" + signature
	}
	return "https://solscan.io/tx/" + signature
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

// Render builds the notification for an event. ok is false for events that are not announced.
func Render(event events.Event) (userID string, screen ui.Screen, ok bool) {
	switch e := event.(type) {
	case events.TradeExecutedEvent:
		screen = ui.Screen{
			Title:       fmt.Sprintf("✅ %s %s executed", types.Chain(e.Chain).BaseCurrency(), e.Side),
			Description: mention(e.UserID),
			Color:       ui.ColorSuccess,
		}
		screen.AddField("Token", "`"+e.TokenAddress+"`", false)
		size := decimal.NewFromFloat(e.Size).String()
		if types.Side(e.Side) == types.SideSell {
			size += "%"
		} else {
			size += " " + types.Chain(e.Chain).BaseCurrency()
		}
		screen.AddField("Size", size, true)
		if e.AmountOut > 0 {
			screen.AddField("Received", decimal.NewFromFloat(e.AmountOut).String(), true)
		}
		screen.AddField("Time", e.Duration.Truncate(time.Millisecond).String(), true)
		if link := ExplorerURL(e.Chain, e.Signature); link != "" {
			screen.AddField("Transaction", link, false)
		}
		return e.UserID, screen, true

	case events.TradeFailedEvent:
		screen = ui.Screen{
			Title:       fmt.Sprintf("❌ %s %s failed", types.Chain(e.Chain).BaseCurrency(), e.Side),
			Description: mention(e.UserID),
			Color:       ui.ColorError,
		}
		screen.AddField("Token", "`"+e.TokenAddress+"`", false)
		screen.AddField("Reason", e.Reason, false)
		return e.UserID, screen, true

	case events.MarketMakingStoppedEvent:
		screen = ui.Screen{
			Title:       "⏹️ Market making session ended",
			Description: mention(e.UserID),
			Color:       ui.ColorWarning,
		}
		screen.AddField("Token", "`"+e.TokenMint+"`", false)
		screen.AddField("Duration", e.Duration.Truncate(time.Second).String(), true)
		screen.AddField("Orders filled", fmt.Sprintf("%d", e.OrdersFilled), true)
		screen.AddField("P&L", decimal.NewFromFloat(e.PnL).StringFixed(4)+" SOL", true)
		return e.UserID, screen, true
	}
	return "", ui.Screen{}, false
}
