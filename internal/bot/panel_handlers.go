// internal/bot/panel_handlers.go
package bot

import (
	"context"
	"errors"
	"sync"

	"github.com/rovshanmuradov/tradedesk/internal/marketmaking"
	"github.com/rovshanmuradov/tradedesk/internal/research"
	"github.com/rovshanmuradov/tradedesk/internal/settings"
	"github.com/rovshanmuradov/tradedesk/internal/storage/models"
	"github.com/rovshanmuradov/tradedesk/internal/types"
	"github.com/rovshanmuradov/tradedesk/internal/ui"
	"github.com/rovshanmuradov/tradedesk/internal/wallet"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Настройки

func (h *Handlers) settingsHandlers() []registration {
	return []registration{
		{KindComponent, settings.ActionShow, h.settingsCommand},
		{KindComponent, settings.ActionEditBuy, h.settingsModal(settings.BuyModal)},
		{KindComponent, settings.ActionEditSell, h.settingsModal(settings.SellModal)},
		{KindModal, settings.ModalBuy, h.settingsSubmit(settings.ParseBuyModal)},
		{KindModal, settings.ModalSell, h.settingsSubmit(settings.ParseSellModal)},
	}
}

func (h *Handlers) settingsCommand(ctx context.Context, in *Interaction) error {
	s, err := h.Settings.Get(ctx, in.UserID)
	if err != nil {
		return err
	}
	return in.Reply.Show(settings.Render(s))
}

func (h *Handlers) settingsModal(build func(*models.TradeSettings) ui.Modal) HandlerFunc {
	return func(ctx context.Context, in *Interaction) error {
		return in.Reply.Modal(build(h.Settings.Peek(ctx, in.UserID)))
	}
}

func (h *Handlers) settingsSubmit(parse func(map[string]string) (settings.Patch, error)) HandlerFunc {
	return func(ctx context.Context, in *Interaction) error {
		patch, err := parse(in.Values)
		if err != nil {
			return err
		}
		s, err := h.Settings.Save(ctx, in.UserID, patch)
		if err != nil {
			return err
		}
		screen := settings.Render(s)
		screen.Description = "✅ Settings saved."
		return in.Reply.Show(screen)
	}
}

// Каналы уведомлений

func (h *Handlers) channelCommand(ctx context.Context, in *Interaction) error {
	if in.ChannelID == "" {
		return &types.ValidationError{Field: "channel", Reason: "run this command inside a server channel"}
	}

	var (
		s   *models.TradeSettings
		err error
		msg string
	)
	switch in.Options[OptionSubcommand] {
	case SubcommandRegister:
		s, err = h.Settings.RegisterChannel(ctx, in.UserID, in.ChannelID)
		msg = "Trade notifications will be posted in this channel."
	case SubcommandUnregister:
		s, err = h.Settings.UnregisterChannel(ctx, in.UserID, in.ChannelID)
		msg = "This channel no longer receives your notifications."
	case SubcommandPrimary:
		s, err = h.Settings.SetPrimaryChannel(ctx, in.UserID, in.ChannelID)
		msg = "This channel is now your primary notification channel."
	default:
		return &types.ValidationError{Field: "subcommand", Reason: "must be register, unregister or primary"}
	}
	if err != nil {
		return err
	}

	screen := ui.Notice("🔔 Notifications", msg, ui.ColorSuccess)
	screen.AddField("Channels", channelList(settings.NotificationChannels(s)), false)
	return in.Reply.Show(screen)
}

func channelList(ids []string) string {
	if len(ids) == 0 {
		return "None"
	}
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ", "
		}
		out += "<#" + id + ">"
	}
	return out
}

// Кошельки

func (h *Handlers) walletHandlers() []registration {
	return []registration{
		{KindComponent, wallet.ActionShow, h.walletCommand},
		{KindComponent, wallet.ActionGenerate, h.walletGenerate},
		{KindComponent, wallet.ActionImportSol, h.walletModal(wallet.ImportSolanaModal)},
		{KindComponent, wallet.ActionImportXRP, h.walletModal(wallet.ImportXRPModal)},
		{KindModal, wallet.ModalImportSol, h.walletImportSolana},
		{KindModal, wallet.ModalImportXRP, h.walletImportXRP},
	}
}

func (h *Handlers) walletCommand(ctx context.Context, in *Interaction) error {
	info, err := h.Wallets.Lookup(ctx, in.UserID)
	if err != nil {
		return err
	}
	return h.showWallet(ctx, in, info, "")
}

// showWallet renders info with balances fetched in parallel. Failed
// lookups render as unavailable.
func (h *Handlers) showWallet(ctx context.Context, in *Interaction, info wallet.Info, note string) error {
	if err := in.Reply.Defer(); err != nil {
		return err
	}

	balances := map[string]string{}
	if h.Balances != nil {
		var (
			mu sync.Mutex
			wg sync.WaitGroup
		)
		for _, chain := range []types.Chain{types.ChainSolana, types.ChainXRPL} {
			pub, _, ok := info.For(chain)
			if !ok {
				continue
			}
			wg.Add(1)
			go func(chain types.Chain, pub string) {
				defer wg.Done()
				v, err := h.Balances.NativeBalance(ctx, chain, pub)
				label := "Unavailable"
				if err == nil {
					label = decimal.NewFromFloat(v).StringFixed(4) + " " + chain.BaseCurrency()
				} else {
					h.logger.Warn("Wallet balance lookup failed",
						zap.String("chain", string(chain)), zap.Error(err))
				}
				mu.Lock()
				balances[chain.BaseCurrency()] = label
				mu.Unlock()
			}(chain, pub)
		}
		wg.Wait()
	}

	screen := wallet.Render(info, balances)
	if note != "" {
		screen.Description = note
	}
	return in.Reply.Show(screen)
}

func (h *Handlers) walletModal(build func() ui.Modal) HandlerFunc {
	return func(_ context.Context, in *Interaction) error {
		return in.Reply.Modal(build())
	}
}

func (h *Handlers) walletStored(ctx context.Context, in *Interaction, info wallet.Info, err error, note string) error {
	if errors.Is(err, wallet.ErrWalletExists) {
		return Guide(err, ui.Notice("👛 Wallet exists", "A wallet for this chain is already stored.", ui.ColorWarning))
	}
	if err != nil {
		return err
	}
	return h.showWallet(ctx, in, info, note)
}

func (h *Handlers) walletGenerate(ctx context.Context, in *Interaction) error {
	info, err := h.Wallets.Generate(ctx, in.UserID)
	return h.walletStored(ctx, in, info, err, "✅ New Solana wallet generated. Fund it to start trading.")
}

func (h *Handlers) walletImportSolana(ctx context.Context, in *Interaction) error {
	info, err := h.Wallets.ImportSolana(ctx, in.UserID, in.Values[wallet.InputPrivateKey])
	return h.walletStored(ctx, in, info, err, "✅ Solana wallet imported.")
}

func (h *Handlers) walletImportXRP(ctx context.Context, in *Interaction) error {
	info, err := h.Wallets.ImportXRP(ctx, in.UserID, in.Values[wallet.InputAddress], in.Values[wallet.InputSeed])
	return h.walletStored(ctx, in, info, err, "✅ XRP Ledger account imported.")
}

// Исследование токенов

func (h *Handlers) researchHandlers() []registration {
	return []registration{
		{KindComponent, research.ActionPrompt, h.researchPrompt},
		{KindComponent, research.ActionBuy, h.researchTrade(types.SideBuy)},
		{KindComponent, research.ActionSell, h.researchTrade(types.SideSell)},
		{KindComponent, research.ActionRefresh, h.researchRefresh},
		{KindModal, research.ModalToken, h.researchSubmit},
	}
}

func chainOption(raw string) types.Chain {
	if types.Chain(raw) == types.ChainXRPL {
		return types.ChainXRPL
	}
	return types.ChainSolana
}

func (h *Handlers) researchCommand(ctx context.Context, in *Interaction) error {
	chain := chainOption(in.Options[OptionChain])
	token := in.Options[OptionToken]
	if token == "" {
		return in.Reply.Modal(research.TokenModal(chain))
	}
	return h.runResearch(ctx, in, chain, token)
}

func (h *Handlers) runResearch(ctx context.Context, in *Interaction, chain types.Chain, token string) error {
	if err := in.Reply.Defer(); err != nil {
		return err
	}
	snap, err := h.Research.Research(ctx, in.UserID, chain, token)
	if err != nil {
		return err
	}
	return in.Reply.Show(research.Render(snap))
}

func (h *Handlers) researchPrompt(_ context.Context, in *Interaction) error {
	return in.Reply.Modal(research.TokenModal(chainOption(in.Arg(0))))
}

func (h *Handlers) researchSubmit(ctx context.Context, in *Interaction) error {
	return h.runResearch(ctx, in, chainOption(in.Arg(0)), in.Values[research.InputToken])
}

func researchExpired() ui.Screen {
	screen := ui.Notice("⌛ Research expired", "Run /research again to look up a token.", ui.ColorWarning)
	screen.AddRow(ui.Button{Label: "Research a token", ID: ui.ID(research.ActionPrompt, string(types.ChainSolana)), Style: ui.StylePrimary})
	return screen
}

func (h *Handlers) researchRefresh(ctx context.Context, in *Interaction) error {
	last, ok := h.Research.Last(in.UserID)
	if !ok {
		return Guide(errors.New("no cached research"), researchExpired())
	}
	return h.runResearch(ctx, in, last.Chain, last.Address)
}

// researchTrade opens a trade flow seeded with the last researched token.
func (h *Handlers) researchTrade(side types.Side) HandlerFunc {
	return func(ctx context.Context, in *Interaction) error {
		last, ok := h.Research.Last(in.UserID)
		if !ok {
			return Guide(errors.New("no cached research"), researchExpired())
		}
		return h.openFlow(ctx, in, types.FlowFor(last.Chain, side), last.Address)
	}
}

// Маркет-мейкинг

func (h *Handlers) marketMakingHandlers() []registration {
	return []registration{
		{KindComponent, marketmaking.ActionPanel, h.marketMakingCommand},
		{KindComponent, marketmaking.ActionToken, h.marketMakingModal(marketmaking.TokenModal)},
		{KindComponent, marketmaking.ActionStrategy, h.marketMakingModal(marketmaking.StrategyModal)},
		{KindComponent, marketmaking.ActionWallets, h.marketMakingModal(marketmaking.WalletsModal)},
		{KindComponent, marketmaking.ActionAutoAdjust, h.marketMakingToggleAuto},
		{KindComponent, marketmaking.ActionDust, h.marketMakingToggleDust},
		{KindComponent, marketmaking.ActionStart, h.marketMakingStart},
		{KindComponent, marketmaking.ActionStop, h.marketMakingStop},
		{KindModal, marketmaking.ModalToken, h.marketMakingSubmit},
		{KindModal, marketmaking.ModalStrategy, h.marketMakingSubmit},
		{KindModal, marketmaking.ModalWallets, h.marketMakingSubmit},
	}
}

func (h *Handlers) marketMakingCommand(ctx context.Context, in *Interaction) error {
	return h.showPanel(ctx, in, "")
}

func (h *Handlers) showPanel(ctx context.Context, in *Interaction, note string) error {
	st, err := h.MarketMaking.Status(ctx, in.UserID)
	if err != nil {
		return err
	}
	screen := marketmaking.RenderPanel(st)
	if note != "" {
		screen.Description = note
	}
	return in.Reply.Show(screen)
}

func (h *Handlers) marketMakingModal(build func(*models.MarketMakingConfig) ui.Modal) HandlerFunc {
	return func(ctx context.Context, in *Interaction) error {
		cfg, err := h.MarketMaking.Config(ctx, in.UserID)
		if err != nil {
			return err
		}
		return in.Reply.Modal(build(cfg))
	}
}

func tokenLocked(err error) error {
	return Guide(err, ui.Notice("🔒 Token locked", "Stop the running session before changing the token.", ui.ColorWarning))
}

func (h *Handlers) saveMarketMaking(ctx context.Context, in *Interaction, patch marketmaking.Patch) error {
	if _, err := h.MarketMaking.Save(ctx, in.UserID, patch); err != nil {
		if errors.Is(err, marketmaking.ErrTokenLocked) {
			return tokenLocked(err)
		}
		return err
	}
	return h.showPanel(ctx, in, "✅ Configuration saved.")
}

func (h *Handlers) marketMakingSubmit(ctx context.Context, in *Interaction) error {
	patch, err := marketmaking.ParseModal(in.Values)
	if err != nil {
		return err
	}
	return h.saveMarketMaking(ctx, in, patch)
}

func (h *Handlers) marketMakingToggleAuto(ctx context.Context, in *Interaction) error {
	cfg, err := h.MarketMaking.Config(ctx, in.UserID)
	if err != nil {
		return err
	}
	auto := !cfg.AutoAdjust
	return h.saveMarketMaking(ctx, in, marketmaking.Patch{AutoAdjust: &auto})
}

func (h *Handlers) marketMakingToggleDust(ctx context.Context, in *Interaction) error {
	cfg, err := h.MarketMaking.Config(ctx, in.UserID)
	if err != nil {
		return err
	}
	dust := models.DustSweep
	if cfg.Dust == models.DustSweep {
		dust = models.DustKeep
	}
	return h.saveMarketMaking(ctx, in, marketmaking.Patch{Dust: &dust})
}

func (h *Handlers) marketMakingStart(ctx context.Context, in *Interaction) error {
	if _, err := h.MarketMaking.Start(ctx, in.UserID); err != nil {
		switch {
		case errors.Is(err, marketmaking.ErrConfigRequired):
			return Guide(err, marketmaking.ConfigRequiredScreen())
		case errors.Is(err, marketmaking.ErrAlreadyActive):
			return Guide(err, ui.Notice("▶️ Already running", "A market making session is already active.", ui.ColorInfo))
		}
		return err
	}
	return h.showPanel(ctx, in, "▶️ Market making started.")
}

func (h *Handlers) marketMakingStop(ctx context.Context, in *Interaction) error {
	summary, err := h.MarketMaking.Stop(ctx, in.UserID)
	if err != nil {
		switch {
		case errors.Is(err, marketmaking.ErrConfigRequired):
			return Guide(err, marketmaking.ConfigRequiredScreen())
		case errors.Is(err, marketmaking.ErrNotActive):
			return Guide(err, ui.Notice("⏹️ Not running", "There is no active market making session.", ui.ColorInfo))
		}
		return err
	}
	return in.Reply.Show(marketmaking.RenderSummary(summary))
}
