// internal/storage/postgres/postgres.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rovshanmuradov/tradedesk/internal/storage"
	"github.com/rovshanmuradov/tradedesk/internal/storage/models"
	"go.uber.org/zap"
)

const migrationLockID = 101

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS trade_settings (
		user_id           TEXT PRIMARY KEY,
		min_quick_buy     DOUBLE PRECISION NOT NULL,
		medium_quick_buy  DOUBLE PRECISION NOT NULL,
		large_quick_buy   DOUBLE PRECISION NOT NULL,
		min_quick_sell    DOUBLE PRECISION NOT NULL,
		medium_quick_sell DOUBLE PRECISION NOT NULL,
		large_quick_sell  DOUBLE PRECISION NOT NULL,
		channels          TEXT[] NOT NULL DEFAULT '{}',
		primary_channel   TEXT NOT NULL DEFAULT '',
		channel_id        TEXT NOT NULL DEFAULT '',
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS market_making_configs (
		user_id           TEXT PRIMARY KEY,
		token_mint        TEXT NOT NULL DEFAULT '',
		spread_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
		price_range       DOUBLE PRECISION NOT NULL DEFAULT 0,
		auto_adjust       BOOLEAN NOT NULL DEFAULT false,
		slippage          INTEGER NOT NULL DEFAULT 0,
		number_of_wallets INTEGER NOT NULL DEFAULT 0,
		min_trades        INTEGER NOT NULL DEFAULT 0,
		max_trades        INTEGER NOT NULL DEFAULT 0,
		min_trade_size    DOUBLE PRECISION NOT NULL DEFAULT 0,
		max_trade_size    DOUBLE PRECISION NOT NULL DEFAULT 0,
		dust              TEXT NOT NULL DEFAULT 'keep',
		active            BOOLEAN NOT NULL DEFAULT false,
		started_at        TIMESTAMPTZ,
		stopped_at        TIMESTAMPTZ,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS wallets (
		user_id             TEXT PRIMARY KEY,
		sol_public_key      TEXT NOT NULL DEFAULT '',
		sol_private_key_ref TEXT NOT NULL DEFAULT '',
		xrp_public_key      TEXT NOT NULL DEFAULT '',
		xrp_private_key_ref TEXT NOT NULL DEFAULT '',
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id             BIGSERIAL PRIMARY KEY,
		user_id        TEXT NOT NULL,
		chain          TEXT NOT NULL,
		side           TEXT NOT NULL,
		wallet_address TEXT NOT NULL,
		token_address  TEXT NOT NULL,
		amount         DOUBLE PRECISION NOT NULL,
		amount_out     DOUBLE PRECISION NOT NULL DEFAULT 0,
		slippage_bps   INTEGER NOT NULL DEFAULT 0,
		priority_fee   DOUBLE PRECISION NOT NULL DEFAULT 0,
		signature      TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL,
		error_message  TEXT NOT NULL DEFAULT '',
		execution_time DOUBLE PRECISION NOT NULL DEFAULT 0,
		confirmed_at   TIMESTAMPTZ,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS transactions_user_id_idx ON transactions (user_id, id DESC)`,
}

// postgresStorage реализует интерфейс Storage
type postgresStorage struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewStorage connects to dsn and verifies the connection.
func NewStorage(ctx context.Context, dsn string, logger *zap.Logger) (storage.Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	// Настройка пула соединений
	cfg.MaxConns = 20
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 30 * time.Second
	cfg.MaxConnLifetime = time.Hour

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &postgresStorage{
		pool:   pool,
		logger: logger.Named("postgres"),
	}, nil
}

// RunMigrations creates the schema under an advisory lock.
func (p *postgresStorage) RunMigrations(ctx context.Context) error {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var lockObtained bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", migrationLockID).Scan(&lockObtained); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	if !lockObtained {
		return fmt.Errorf("another migration is in progress")
	}
	defer func() {
		if _, err := conn.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", migrationLockID); err != nil {
			p.logger.Warn("Failed to release migration lock", zap.Error(err))
		}
	}()

	for i, stmt := range migrations {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration %d: %w", i, err)
		}
	}

	p.logger.Info("Migrations applied", zap.Int("statements", len(migrations)))
	return nil
}

func (p *postgresStorage) Close() error {
	p.pool.Close()
	return nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

func (p *postgresStorage) GetTradeSettings(ctx context.Context, userID string) (*models.TradeSettings, error) {
	var s models.TradeSettings
	err := p.pool.QueryRow(ctx,
		`SELECT user_id, min_quick_buy, medium_quick_buy, large_quick_buy,
		        min_quick_sell, medium_quick_sell, large_quick_sell,
		        channels, primary_channel, channel_id, created_at, updated_at
		   FROM trade_settings WHERE user_id = $1`,
		userID,
	).Scan(
		&s.UserID, &s.MinQuickBuy, &s.MediumQuickBuy, &s.LargeQuickBuy,
		&s.MinQuickSell, &s.MediumQuickSell, &s.LargeQuickSell,
		&s.Channels, &s.PrimaryChannel, &s.ChannelID, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (p *postgresStorage) SaveTradeSettings(ctx context.Context, s *models.TradeSettings) error {
	return p.pool.QueryRow(ctx,
		`INSERT INTO trade_settings
		   (user_id, min_quick_buy, medium_quick_buy, large_quick_buy,
		    min_quick_sell, medium_quick_sell, large_quick_sell,
		    channels, primary_channel, channel_id)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 ON CONFLICT (user_id) DO UPDATE SET
		   min_quick_buy = EXCLUDED.min_quick_buy,
		   medium_quick_buy = EXCLUDED.medium_quick_buy,
		   large_quick_buy = EXCLUDED.large_quick_buy,
		   min_quick_sell = EXCLUDED.min_quick_sell,
		   medium_quick_sell = EXCLUDED.medium_quick_sell,
		   large_quick_sell = EXCLUDED.large_quick_sell,
		   channels = EXCLUDED.channels,
		   primary_channel = EXCLUDED.primary_channel,
		   channel_id = EXCLUDED.channel_id,
		   updated_at = NOW()
		 RETURNING created_at, updated_at`,
		s.UserID, s.MinQuickBuy, s.MediumQuickBuy, s.LargeQuickBuy,
		s.MinQuickSell, s.MediumQuickSell, s.LargeQuickSell,
		channelsParam(s.Channels), s.PrimaryChannel, s.ChannelID,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// channelsParam maps nil to an empty slice: pgx encodes a nil []string as
// NULL, which the NOT NULL channels column rejects.
func channelsParam(channels []string) []string {
	if channels == nil {
		return []string{}
	}
	return channels
}

func (p *postgresStorage) GetMarketMakingConfig(ctx context.Context, userID string) (*models.MarketMakingConfig, error) {
	var c models.MarketMakingConfig
	var dust string
	err := p.pool.QueryRow(ctx,
		`SELECT user_id, token_mint, spread_percentage, price_range, auto_adjust, slippage,
		        number_of_wallets, min_trades, max_trades, min_trade_size, max_trade_size,
		        dust, active, started_at, stopped_at, created_at, updated_at
		   FROM market_making_configs WHERE user_id = $1`,
		userID,
	).Scan(
		&c.UserID, &c.TokenMint, &c.SpreadPercentage, &c.PriceRange, &c.AutoAdjust, &c.Slippage,
		&c.NumberOfWallets, &c.MinTrades, &c.MaxTrades, &c.MinTradeSize, &c.MaxTradeSize,
		&dust, &c.Active, &c.StartedAt, &c.StoppedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	c.Dust = models.DustPolicy(dust)
	return &c, nil
}

func (p *postgresStorage) SaveMarketMakingConfig(ctx context.Context, c *models.MarketMakingConfig) error {
	return p.pool.QueryRow(ctx,
		`INSERT INTO market_making_configs
		   (user_id, token_mint, spread_percentage, price_range, auto_adjust, slippage,
		    number_of_wallets, min_trades, max_trades, min_trade_size, max_trade_size,
		    dust, active, started_at, stopped_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		 ON CONFLICT (user_id) DO UPDATE SET
		   token_mint = EXCLUDED.token_mint,
		   spread_percentage = EXCLUDED.spread_percentage,
		   price_range = EXCLUDED.price_range,
		   auto_adjust = EXCLUDED.auto_adjust,
		   slippage = EXCLUDED.slippage,
		   number_of_wallets = EXCLUDED.number_of_wallets,
		   min_trades = EXCLUDED.min_trades,
		   max_trades = EXCLUDED.max_trades,
		   min_trade_size = EXCLUDED.min_trade_size,
		   max_trade_size = EXCLUDED.max_trade_size,
		   dust = EXCLUDED.dust,
		   active = EXCLUDED.active,
		   started_at = EXCLUDED.started_at,
		   stopped_at = EXCLUDED.stopped_at,
		   updated_at = NOW()
		 RETURNING created_at, updated_at`,
		c.UserID, c.TokenMint, c.SpreadPercentage, c.PriceRange, c.AutoAdjust, c.Slippage,
		c.NumberOfWallets, c.MinTrades, c.MaxTrades, c.MinTradeSize, c.MaxTradeSize,
		string(c.Dust), c.Active, c.StartedAt, c.StoppedAt,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (p *postgresStorage) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	var w models.Wallet
	err := p.pool.QueryRow(ctx,
		`SELECT user_id, sol_public_key, sol_private_key_ref, xrp_public_key, xrp_private_key_ref,
		        created_at, updated_at
		   FROM wallets WHERE user_id = $1`,
		userID,
	).Scan(
		&w.UserID, &w.SolPublicKey, &w.SolPrivateKeyRef, &w.XrpPublicKey, &w.XrpPrivateKeyRef,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

func (p *postgresStorage) SaveWallet(ctx context.Context, w *models.Wallet) error {
	return p.pool.QueryRow(ctx,
		`INSERT INTO wallets (user_id, sol_public_key, sol_private_key_ref, xrp_public_key, xrp_private_key_ref)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (user_id) DO UPDATE SET
		   sol_public_key = EXCLUDED.sol_public_key,
		   sol_private_key_ref = EXCLUDED.sol_private_key_ref,
		   xrp_public_key = EXCLUDED.xrp_public_key,
		   xrp_private_key_ref = EXCLUDED.xrp_private_key_ref,
		   updated_at = NOW()
		 RETURNING created_at, updated_at`,
		w.UserID, w.SolPublicKey, w.SolPrivateKeyRef, w.XrpPublicKey, w.XrpPrivateKeyRef,
	).Scan(&w.CreatedAt, &w.UpdatedAt)
}

func (p *postgresStorage) SaveTransaction(ctx context.Context, tx *models.Transaction) error {
	return p.pool.QueryRow(ctx,
		`INSERT INTO transactions
		   (user_id, chain, side, wallet_address, token_address, amount, amount_out,
		    slippage_bps, priority_fee, signature, status, error_message, execution_time, confirmed_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		 RETURNING id, created_at, updated_at`,
		tx.UserID, tx.Chain, tx.Side, tx.WalletAddress, tx.TokenAddress, tx.Amount, tx.AmountOut,
		tx.SlippageBps, tx.PriorityFee, tx.Signature, tx.Status, tx.ErrorMessage, tx.ExecutionTime, tx.ConfirmedAt,
	).Scan(&tx.ID, &tx.CreatedAt, &tx.UpdatedAt)
}

func (p *postgresStorage) ListTransactions(ctx context.Context, userID string, limit int) ([]*models.Transaction, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := p.pool.Query(ctx,
		`SELECT id, user_id, chain, side, wallet_address, token_address, amount, amount_out,
		        slippage_bps, priority_fee, signature, status, error_message, execution_time,
		        confirmed_at, created_at, updated_at
		   FROM transactions WHERE user_id = $1 ORDER BY id DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.Chain, &tx.Side, &tx.WalletAddress, &tx.TokenAddress, &tx.Amount, &tx.AmountOut,
			&tx.SlippageBps, &tx.PriorityFee, &tx.Signature, &tx.Status, &tx.ErrorMessage, &tx.ExecutionTime,
			&tx.ConfirmedAt, &tx.CreatedAt, &tx.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &tx)
	}
	return out, rows.Err()
}
