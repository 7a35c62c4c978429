// internal/storage/memory/memory.go
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rovshanmuradov/tradedesk/internal/storage"
	"github.com/rovshanmuradov/tradedesk/internal/storage/models"
)

// memoryStorage keeps every record in process memory. It backs tests and
// deployments started without postgres_url.
type memoryStorage struct {
	mu           sync.RWMutex
	settings     map[string]models.TradeSettings
	marketMaking map[string]models.MarketMakingConfig
	wallets      map[string]models.Wallet
	transactions []models.Transaction
	nextTxID     int64
	now          func() time.Time
}

// NewStorage creates an empty in-memory storage.
func NewStorage() storage.Storage {
	return &memoryStorage{
		settings:     make(map[string]models.TradeSettings),
		marketMaking: make(map[string]models.MarketMakingConfig),
		wallets:      make(map[string]models.Wallet),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (m *memoryStorage) RunMigrations(context.Context) error { return nil }

func (m *memoryStorage) Close() error { return nil }

func (m *memoryStorage) stamp(base *models.BaseModel) {
	now := m.now()
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
}

func (m *memoryStorage) GetTradeSettings(_ context.Context, userID string) (*models.TradeSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.settings[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return s.Clone(), nil
}

func (m *memoryStorage) SaveTradeSettings(_ context.Context, s *models.TradeSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := s.Clone()
	if prev, ok := m.settings[s.UserID]; ok {
		clone.CreatedAt = prev.CreatedAt
	}
	m.stamp(&clone.BaseModel)
	m.settings[s.UserID] = *clone
	s.BaseModel = clone.BaseModel
	return nil
}

func (m *memoryStorage) GetMarketMakingConfig(_ context.Context, userID string) (*models.MarketMakingConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg, ok := m.marketMaking[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &cfg, nil
}

func (m *memoryStorage) SaveMarketMakingConfig(_ context.Context, cfg *models.MarketMakingConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *cfg
	if prev, ok := m.marketMaking[cfg.UserID]; ok {
		stored.CreatedAt = prev.CreatedAt
	}
	m.stamp(&stored.BaseModel)
	m.marketMaking[cfg.UserID] = stored
	cfg.BaseModel = stored.BaseModel
	return nil
}

func (m *memoryStorage) GetWallet(_ context.Context, userID string) (*models.Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.wallets[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &w, nil
}

func (m *memoryStorage) SaveWallet(_ context.Context, w *models.Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *w
	if prev, ok := m.wallets[w.UserID]; ok {
		stored.CreatedAt = prev.CreatedAt
	}
	m.stamp(&stored.BaseModel)
	m.wallets[w.UserID] = stored
	w.BaseModel = stored.BaseModel
	return nil
}

func (m *memoryStorage) SaveTransaction(_ context.Context, tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextTxID++
	tx.ID = m.nextTxID
	m.stamp(&tx.BaseModel)
	m.transactions = append(m.transactions, *tx)
	return nil
}

func (m *memoryStorage) ListTransactions(_ context.Context, userID string, limit int) ([]*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*models.Transaction
	for i := range m.transactions {
		if m.transactions[i].UserID == userID {
			tx := m.transactions[i]
			out = append(out, &tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
