// internal/storage/storage.go
package storage

import (
	"context"
	"errors"

	"github.com/rovshanmuradov/tradedesk/internal/storage/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Storage определяет интерфейс для работы с хранилищем
type Storage interface {
	// Настройки быстрой торговли
	GetTradeSettings(ctx context.Context, userID string) (*models.TradeSettings, error)
	SaveTradeSettings(ctx context.Context, s *models.TradeSettings) error

	// Маркет-мейкинг
	GetMarketMakingConfig(ctx context.Context, userID string) (*models.MarketMakingConfig, error)
	SaveMarketMakingConfig(ctx context.Context, cfg *models.MarketMakingConfig) error

	// Кошельки
	GetWallet(ctx context.Context, userID string) (*models.Wallet, error)
	SaveWallet(ctx context.Context, w *models.Wallet) error

	// Транзакции
	SaveTransaction(ctx context.Context, tx *models.Transaction) error
	ListTransactions(ctx context.Context, userID string, limit int) ([]*models.Transaction, error)

	RunMigrations(ctx context.Context) error
	Close() error
}
