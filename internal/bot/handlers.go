// internal/bot/handlers.go
package bot

import (
	"context"
	"fmt"

	"github.com/rovshanmuradov/tradedesk/internal/marketmaking"
	"github.com/rovshanmuradov/tradedesk/internal/research"
	"github.com/rovshanmuradov/tradedesk/internal/session"
	"github.com/rovshanmuradov/tradedesk/internal/settings"
	"github.com/rovshanmuradov/tradedesk/internal/trade"
	"github.com/rovshanmuradov/tradedesk/internal/types"
	"github.com/rovshanmuradov/tradedesk/internal/wallet"
	"github.com/rovshanmuradov/tradedesk/internal/wizard"
	"go.uber.org/zap"
)

// NativeBalances reads wallet balances for the wallet screen.
type NativeBalances interface {
	NativeBalance(ctx context.Context, chain types.Chain, owner string) (float64, error)
}

// Deps are the services the handlers drive.
type Deps struct {
	Sessions     *session.Store[wizard.TradeConfig]
	Settings     *settings.Service
	Wallets      *wallet.Service
	Executor     *trade.Executor
	Display      *wizard.DisplayLoader
	Balances     NativeBalances
	MarketMaking *marketmaking.Controller
	Research     *research.Service
}

// Handlers implements every command, button and modal of the bot.
type Handlers struct {
	Deps
	logger *zap.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(deps Deps, logger *zap.Logger) *Handlers {
	return &Handlers{Deps: deps, logger: logger.Named("handlers")}
}

type registration struct {
	kind Kind
	name string
	h    HandlerFunc
}

// Register adds every handler to reg and checks that each action rendered
// by the screens is routed.
func (h *Handlers) Register(reg *Registry) error {
	table := []registration{
		{KindCommand, CommandWallet, h.walletCommand},
		{KindCommand, CommandBuy, h.tradeCommand(types.SideBuy)},
		{KindCommand, CommandSell, h.tradeCommand(types.SideSell)},
		{KindCommand, CommandSettings, h.settingsCommand},
		{KindCommand, CommandResearch, h.researchCommand},
		{KindCommand, CommandMarketMaking, h.marketMakingCommand},
		{KindCommand, CommandChannel, h.channelCommand},
	}
	table = append(table, h.wizardHandlers()...)
	table = append(table, h.settingsHandlers()...)
	table = append(table, h.walletHandlers()...)
	table = append(table, h.researchHandlers()...)
	table = append(table, h.marketMakingHandlers()...)

	for _, r := range table {
		if err := reg.Register(r.kind, r.name, r.h); err != nil {
			return err
		}
	}

	checks := []struct {
		kind    Kind
		actions []string
	}{
		{KindComponent, wizard.ButtonActions},
		{KindModal, wizard.ModalActions},
		{KindComponent, settings.ButtonActions},
		{KindModal, settings.ModalActions},
		{KindComponent, wallet.ButtonActions},
		{KindModal, wallet.ModalActions},
		{KindComponent, research.ButtonActions},
		{KindModal, research.ModalActions},
		{KindComponent, marketmaking.ButtonActions},
		{KindModal, marketmaking.ModalActions},
	}
	for _, c := range checks {
		if err := reg.Validate(c.kind, c.actions...); err != nil {
			return fmt.Errorf("handler table incomplete: %w", err)
		}
	}
	return nil
}
