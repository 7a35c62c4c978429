// cmd/bot/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rovshanmuradov/tradedesk/internal/blockchain"
	"github.com/rovshanmuradov/tradedesk/internal/blockchain/solbc"
	"github.com/rovshanmuradov/tradedesk/internal/blockchain/xrpl"
	"github.com/rovshanmuradov/tradedesk/internal/bot"
	"github.com/rovshanmuradov/tradedesk/internal/config"
	"github.com/rovshanmuradov/tradedesk/internal/events"
	"github.com/rovshanmuradov/tradedesk/internal/market"
	"github.com/rovshanmuradov/tradedesk/internal/marketmaking"
	"github.com/rovshanmuradov/tradedesk/internal/notify"
	"github.com/rovshanmuradov/tradedesk/internal/research"
	"github.com/rovshanmuradov/tradedesk/internal/session"
	"github.com/rovshanmuradov/tradedesk/internal/settings"
	"github.com/rovshanmuradov/tradedesk/internal/storage"
	"github.com/rovshanmuradov/tradedesk/internal/storage/memory"
	"github.com/rovshanmuradov/tradedesk/internal/storage/postgres"
	"github.com/rovshanmuradov/tradedesk/internal/trade"
	"github.com/rovshanmuradov/tradedesk/internal/types"
	"github.com/rovshanmuradov/tradedesk/internal/utils/logger"
	"github.com/rovshanmuradov/tradedesk/internal/utils/metrics"
	"github.com/rovshanmuradov/tradedesk/internal/wallet"
	"github.com/rovshanmuradov/tradedesk/internal/wizard"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		// логгер еще не создан
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Development = cfg.DebugLogging
	appLogger, err := logger.New(logCfg)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to create logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = appLogger.Sync() }()
	log := appLogger.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger.Logger); err != nil {
		log.Error("Bot stopped with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Bot stopped")
}

func openStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.Storage, error) {
	if cfg.PostgresURL == "" {
		log.Warn("postgres_url not set, using in-memory storage")
		return memory.NewStorage(), nil
	}
	repo, err := postgres.NewStorage(ctx, cfg.PostgresURL, log)
	if err != nil {
		return nil, err
	}
	if err := repo.RunMigrations(ctx); err != nil {
		_ = repo.Close()
		return nil, err
	}
	return repo, nil
}

// reportSessions publishes the live wizard and market making session counts.
func reportSessions(collector *metrics.Collector, sessions *session.Store[wizard.TradeConfig], mm *marketmaking.Controller) {
	counts := sessions.CountByFlow()
	for _, d := range wizard.Descriptors() {
		collector.SetSessions(string(d.Flow), counts[d.Flow])
	}
	collector.SetSessions(string(types.FlowMarketMaking), mm.ActiveSessions())
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	log.Info("🚀 Starting tradedesk")
	shutdown := bot.NewShutdownHandler(log, 10*time.Second)

	collector := metrics.NewCollector()
	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: collector.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Metrics server failed", zap.Error(err))
			}
		}()
		shutdown.AddFunc("metrics", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		})
		log.Info("Metrics server listening", zap.String("addr", cfg.MetricsAddr))
	}

	repo, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	shutdown.Add("storage", repo)

	bus := events.NewBus(log, 256)
	shutdown.AddFunc("event_bus", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return bus.Shutdown(ctx)
	})

	// Клиенты блокчейнов и рыночных данных
	var solReader blockchain.SolanaReader
	var supply research.SupplySource
	if len(cfg.RPCList) > 0 {
		sol, err := solbc.NewClient(cfg.RPCList, cfg.Retries, collector, log)
		if err != nil {
			return err
		}
		solReader, supply = sol, sol
	}
	var xrplReader blockchain.XRPLReader
	if cfg.XRPLRPCURL != "" {
		xrplReader = xrpl.NewClient(cfg.XRPLRPCURL, cfg.RequestTimeout(), cfg.Retries, collector, log)
	}
	balances := blockchain.NewBalances(solReader, xrplReader)
	marketClient := market.NewClient(cfg.DexScreenerURL, cfg.JupiterPriceURL, cfg.RequestTimeout(), cfg.Retries, collector, log)

	cipher, err := wallet.NewCipher(cfg.EncryptionKey)
	if err != nil {
		return err
	}
	wallets := wallet.NewService(repo, cipher, bus, log)
	settingsSvc := settings.NewService(repo, log)

	executor := trade.NewExecutor(trade.Config{
		APIURL:             cfg.TradeAPIURL,
		APIKey:             cfg.TradeAPIKey,
		PlatformPublicKey:  cfg.PlatformPublicKey,
		PlatformPercentage: cfg.PlatformPercentage,
		ReferralPublicKey:  cfg.ReferralPublicKey,
		ReferralPercentage: cfg.ReferralPercentage,
		Timeout:            cfg.RequestTimeout(),
	}, balances, wallets, repo, bus, collector, log)

	mm := marketmaking.NewController(repo, bus, log)
	sessions := session.NewStore[wizard.TradeConfig](log)
	researchCache := session.NewStore[research.Snapshot](log)
	limiter := bot.NewLimiter(cfg.InteractionRate, cfg.InteractionBurst)

	sessions.StartJanitor(ctx, cfg.JanitorInterval(), cfg.SessionTTL(), func() {
		reportSessions(collector, sessions, mm)
		if n := limiter.Sweep(cfg.SessionTTL()); n > 0 {
			log.Debug("Idle rate limiters removed", zap.Int("count", n))
		}
	})
	researchCache.StartJanitor(ctx, cfg.JanitorInterval(), cfg.SessionTTL(), func() {
		collector.SetSessions(string(types.FlowResearch), researchCache.Len())
	})

	handlers := bot.NewHandlers(bot.Deps{
		Sessions:     sessions,
		Settings:     settingsSvc,
		Wallets:      wallets,
		Executor:     executor,
		Display:      wizard.NewDisplayLoader(marketClient, balances, cfg.RequestTimeout(), log),
		Balances:     balances,
		MarketMaking: mm,
		Research:     research.NewService(marketClient, marketClient, supply, researchCache, cfg.RequestTimeout(), log),
	}, log)

	router := bot.NewRouter(bot.NewRegistry(), limiter, collector, log)
	if err := handlers.Register(router.Registry()); err != nil {
		return err
	}

	pool := bot.NewWorkerPool(256, log)
	pool.Start(8)

	discord, err := bot.NewDiscord(bot.DiscordConfig{
		Token:          cfg.DiscordToken,
		ApplicationID:  cfg.ApplicationID,
		GuildID:        cfg.GuildID,
		RequestTimeout: cfg.RequestTimeout(),
	}, router, pool, log)
	if err != nil {
		return err
	}

	notifier := notify.NewNotifier(discord, settingsSvc, log)
	subs := notifier.Register(bus)
	shutdown.AddFunc("notifier", func() error {
		for _, s := range subs {
			s.Unsubscribe()
		}
		return nil
	})

	shutdown.AddFunc("workers", func() error {
		err := pool.Close()
		pool.Wait()
		return err
	})
	if err := discord.Open(); err != nil {
		_ = shutdown.Shutdown(context.Background())
		return err
	}
	shutdown.Add("discord", discord)

	log.Info("✅ Bot is running", zap.Int("handlers",
		len(router.Registry().Names(bot.KindCommand))+len(router.Registry().Names(bot.KindComponent))+len(router.Registry().Names(bot.KindModal))))
	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return shutdown.Shutdown(shutdownCtx)
}
