// internal/bot/wizard_handlers.go
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rovshanmuradov/tradedesk/internal/notify"
	"github.com/rovshanmuradov/tradedesk/internal/session"
	"github.com/rovshanmuradov/tradedesk/internal/settings"
	"github.com/rovshanmuradov/tradedesk/internal/trade"
	"github.com/rovshanmuradov/tradedesk/internal/types"
	"github.com/rovshanmuradov/tradedesk/internal/ui"
	"github.com/rovshanmuradov/tradedesk/internal/wallet"
	"github.com/rovshanmuradov/tradedesk/internal/wizard"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func (h *Handlers) wizardHandlers() []registration {
	return []registration{
		{KindComponent, wizard.ActionTokenPrompt, h.wizardTokenPrompt},
		{KindComponent, wizard.ActionQuick, h.wizardQuick},
		{KindComponent, wizard.ActionCustomSize, h.wizardCustomSize},
		{KindComponent, wizard.ActionSlippage, h.wizardField(wizard.StepSlippage)},
		{KindComponent, wizard.ActionPriority, h.wizardField(wizard.StepPriorityFee)},
		{KindComponent, wizard.ActionExecute, h.wizardExecute},
		{KindComponent, wizard.ActionRefresh, h.wizardRefresh},
		{KindComponent, wizard.ActionCancel, h.wizardCancel},
		{KindModal, wizard.ModalToken, h.wizardTokenSubmit},
		{KindModal, wizard.ModalSize, h.wizardSizeSubmit},
	}
}

func chainName(chain types.Chain) string {
	if chain == types.ChainXRPL {
		return "XRP Ledger"
	}
	return "Solana"
}

// flowArg reads the flow from the first custom id argument.
func flowArg(in *Interaction) (wizard.Descriptor, session.Key, error) {
	flow, err := types.ParseFlowKind(in.Arg(0))
	if err != nil {
		return wizard.Descriptor{}, session.Key{}, err
	}
	desc, err := wizard.DescriptorFor(flow)
	if err != nil {
		return wizard.Descriptor{}, session.Key{}, err
	}
	return desc, session.Key{UserID: in.UserID, Flow: flow}, nil
}

func expiredScreen() ui.Screen {
	return ui.Notice("⌛ Session expired", "This trade setup is no longer active. Run /buy or /sell to start again.", ui.ColorWarning)
}

// openFlow seeds a fresh session for flow and shows it.
func (h *Handlers) openFlow(ctx context.Context, in *Interaction, flow types.FlowKind, token string) error {
	chain := flow.Chain()
	info, err := h.Wallets.Lookup(ctx, in.UserID)
	if err != nil {
		return err
	}
	pub, ref, ok := info.For(chain)
	if !ok {
		return Guide(trade.ErrNoWallet, wallet.NoWalletScreen(chainName(chain)))
	}

	cfg := wizard.NewTradeConfig(in.UserID, flow, pub, ref)
	if token = strings.TrimSpace(token); token != "" {
		addr, err := wizard.ParseTokenAddress(chain, token)
		if err != nil {
			return err
		}
		cfg.TokenAddress = addr
	}
	h.Sessions.Init(session.Key{UserID: in.UserID, Flow: flow}, cfg)
	h.logger.Debug("Trade flow opened", zap.Object("config", cfg))
	return h.showFlow(ctx, in, flow)
}

// showFlow renders the stored session with fresh display data.
func (h *Handlers) showFlow(ctx context.Context, in *Interaction, flow types.FlowKind) error {
	key := session.Key{UserID: in.UserID, Flow: flow}
	cfg, ok := h.Sessions.Get(key)
	if !ok {
		return Guide(session.ErrConfigNotFound, expiredScreen())
	}
	desc, err := wizard.DescriptorFor(flow)
	if err != nil {
		return err
	}

	if err := in.Reply.Defer(); err != nil {
		return err
	}
	display := h.Display.Load(ctx, cfg)
	screen, err := wizard.Render(desc, cfg, display, h.Settings.Peek(ctx, in.UserID))
	if err != nil {
		h.logger.Error("Failed to render trade screen", zap.Error(err))
	}
	return in.Reply.Show(screen)
}

func (h *Handlers) tradeCommand(side types.Side) HandlerFunc {
	return func(ctx context.Context, in *Interaction) error {
		chain := types.ChainSolana
		if strings.EqualFold(in.Options[OptionChain], string(types.ChainXRPL)) {
			chain = types.ChainXRPL
		}
		return h.openFlow(ctx, in, types.FlowFor(chain, side), in.Options[OptionToken])
	}
}

func (h *Handlers) wizardTokenPrompt(_ context.Context, in *Interaction) error {
	desc, key, err := flowArg(in)
	if err != nil {
		return err
	}
	cfg, ok := h.Sessions.Get(key)
	if !ok {
		return Guide(session.ErrConfigNotFound, expiredScreen())
	}
	return in.Reply.Modal(wizard.TokenModal(desc, cfg.TokenAddress))
}

func (h *Handlers) wizardCustomSize(_ context.Context, in *Interaction) error {
	desc, key, err := flowArg(in)
	if err != nil {
		return err
	}
	if _, ok := h.Sessions.Get(key); !ok {
		return Guide(session.ErrConfigNotFound, expiredScreen())
	}
	return in.Reply.Modal(wizard.SizeModal(desc))
}

func (h *Handlers) applyField(ctx context.Context, in *Interaction, key session.Key, step wizard.Step, raw string) error {
	if _, err := wizard.ApplyField(h.Sessions, key, step, raw); err != nil {
		if errors.Is(err, session.ErrConfigNotFound) {
			return Guide(err, expiredScreen())
		}
		return err
	}
	return h.showFlow(ctx, in, key.Flow)
}

// wizardField handles buttons whose second argument is the field value.
func (h *Handlers) wizardField(step wizard.Step) HandlerFunc {
	return func(ctx context.Context, in *Interaction) error {
		_, key, err := flowArg(in)
		if err != nil {
			return err
		}
		return h.applyField(ctx, in, key, step, in.Arg(1))
	}
}

func (h *Handlers) wizardTokenSubmit(ctx context.Context, in *Interaction) error {
	_, key, err := flowArg(in)
	if err != nil {
		return err
	}
	return h.applyField(ctx, in, key, wizard.StepToken, in.Values[wizard.InputTokenAddress])
}

func (h *Handlers) wizardSizeSubmit(ctx context.Context, in *Interaction) error {
	desc, key, err := flowArg(in)
	if err != nil {
		return err
	}
	raw := in.Values[wizard.InputAmount]
	if desc.SizeStep() == wizard.StepPercentage {
		raw = in.Values[wizard.InputPercentage]
	}
	return h.applyField(ctx, in, key, desc.SizeStep(), raw)
}

func (h *Handlers) wizardQuick(ctx context.Context, in *Interaction) error {
	_, key, err := flowArg(in)
	if err != nil {
		return err
	}
	tier, err := settings.ParseQuickTier(in.Arg(1))
	if err != nil {
		return err
	}
	if _, err := wizard.ApplyQuick(h.Sessions, key, tier, h.Settings.Peek(ctx, in.UserID)); err != nil {
		if errors.Is(err, session.ErrConfigNotFound) {
			return Guide(err, expiredScreen())
		}
		return err
	}
	return h.showFlow(ctx, in, key.Flow)
}

func (h *Handlers) wizardRefresh(ctx context.Context, in *Interaction) error {
	_, key, err := flowArg(in)
	if err != nil {
		return err
	}
	return h.showFlow(ctx, in, key.Flow)
}

func (h *Handlers) wizardCancel(_ context.Context, in *Interaction) error {
	_, key, err := flowArg(in)
	if err != nil {
		return err
	}
	h.Sessions.Delete(key)
	return in.Reply.Show(ui.Notice("✖️ Trade cancelled", "Nothing was submitted.", ui.ColorInfo))
}

func (h *Handlers) wizardExecute(ctx context.Context, in *Interaction) error {
	desc, key, err := flowArg(in)
	if err != nil {
		return err
	}
	if err := in.Reply.Defer(); err != nil {
		return err
	}

	result, err := h.Executor.ExecuteSession(ctx, h.Sessions, key)
	switch {
	case errors.Is(err, session.ErrConfigNotFound):
		return Guide(err, expiredScreen())
	case errors.Is(err, trade.ErrAlreadyCompleted):
		return Guide(err, ui.Notice("✅ Already executed", "This trade was already submitted. Change a setting to trade again.", ui.ColorInfo))
	case errors.Is(err, trade.ErrInProgress):
		return Guide(err, ui.Notice("⏳ In progress", "This trade is already being submitted.", ui.ColorInfo))
	case errors.Is(err, trade.ErrNoWallet):
		return Guide(err, wallet.NoWalletScreen(chainName(desc.Chain)))
	case errors.Is(err, trade.ErrInsufficientBalance):
		return Guide(err, ui.Notice("💸 Insufficient balance", capitalizeFirst(err.Error()), ui.ColorWarning))
	case errors.Is(err, trade.ErrBalanceUnavailable):
		return Guide(err, ui.Notice("⚠️ Balance unavailable", "Your balance could not be checked. Please try again shortly.", ui.ColorWarning))
	case errors.Is(err, trade.ErrMissingToken), errors.Is(err, trade.ErrMissingSize):
		return Guide(err, ui.Notice("⚙️ Setup incomplete", capitalizeFirst(err.Error()), ui.ColorWarning))
	case err != nil:
		return err
	}

	if showErr := h.showFlow(ctx, in, key.Flow); showErr != nil {
		h.logger.Warn("Failed to refresh trade screen", zap.Error(showErr))
	}
	return in.Reply.Send(resultScreen(desc, result))
}

func resultScreen(desc wizard.Descriptor, r trade.Result) ui.Screen {
	if r.State != trade.StateSucceeded {
		msg := r.Message
		if msg == "" {
			msg = "The trade service rejected the transaction."
		}
		return ui.ErrorScreen("❌ Trade failed", msg)
	}
	screen := ui.Screen{
		Title:     fmt.Sprintf("✅ %s %s confirmed", desc.BaseCurrency, desc.Side),
		Color:     ui.ColorSuccess,
		Ephemeral: true,
	}
	if r.HasAmountOut {
		screen.AddField("Received", decimal.NewFromFloat(r.AmountOut).String(), true)
	}
	screen.AddField("Duration", r.Duration.Round(1e6).String(), true)
	if link := notify.ExplorerURL(string(desc.Chain), r.Signature); link != "" {
		screen.AddField("Transaction", link, false)
	}
	return screen
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
