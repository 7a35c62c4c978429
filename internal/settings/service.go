// internal/settings/service.go
package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rovshanmuradov/tradedesk/internal/storage"
	"github.com/rovshanmuradov/tradedesk/internal/storage/models"
	"go.uber.org/zap"
)

// Service reads and writes TradeSettings with partial-update semantics.
type Service struct {
	repo   storage.Storage
	logger *zap.Logger

	// Сериализация read-merge-write по пользователю
	locks sync.Map
}

// NewService creates a settings service on top of repo.
func NewService(repo storage.Storage, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.Named("settings"),
	}
}

func (s *Service) lock(userID string) func() {
	v, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Get returns the user's settings, creating and persisting defaults on first view.
func (s *Service) Get(ctx context.Context, userID string) (*models.TradeSettings, error) {
	unlock := s.lock(userID)
	defer unlock()
	return s.getLocked(ctx, userID)
}

func (s *Service) getLocked(ctx context.Context, userID string) (*models.TradeSettings, error) {
	current, err := s.repo.GetTradeSettings(ctx, userID)
	if err == nil {
		return current, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	defaults := Defaults(userID)
	if err := s.repo.SaveTradeSettings(ctx, defaults); err != nil {
		return nil, fmt.Errorf("save default settings: %w", err)
	}
	s.logger.Info("Created default trade settings", zap.String("user_id", userID))
	return defaults, nil
}

// Peek returns the stored settings or nil. It never creates a record and never
// fails: screens fall back to defaults when nil is returned.
func (s *Service) Peek(ctx context.Context, userID string) *models.TradeSettings {
	current, err := s.repo.GetTradeSettings(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("Failed to load trade settings, using defaults",
				zap.String("user_id", userID), zap.Error(err))
		}
		return nil
	}
	return current
}

// Save merges patch into the stored settings, validates the result and writes it.
// Fields absent from patch keep their stored values.
func (s *Service) Save(ctx context.Context, userID string, patch Patch) (*models.TradeSettings, error) {
	unlock := s.lock(userID)
	defer unlock()

	current, err := s.getLocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	patch.Apply(next)
	if err := Validate(next); err != nil {
		return nil, err
	}
	if err := s.repo.SaveTradeSettings(ctx, next); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	s.logger.Debug("Trade settings saved", zap.String("user_id", userID))
	return next, nil
}

// RegisterChannel adds channelID to the user's notification channels. The
// first registered channel becomes primary.
func (s *Service) RegisterChannel(ctx context.Context, userID, channelID string) (*models.TradeSettings, error) {
	return s.mutateChannels(ctx, userID, func(ts *models.TradeSettings) {
		for _, c := range ts.Channels {
			if c == channelID {
				return
			}
		}
		ts.Channels = append(ts.Channels, channelID)
		if ts.PrimaryChannel == "" {
			ts.PrimaryChannel = channelID
		}
	})
}

// UnregisterChannel removes channelID. If it was primary, the next remaining channel takes over.
func (s *Service) UnregisterChannel(ctx context.Context, userID, channelID string) (*models.TradeSettings, error) {
	return s.mutateChannels(ctx, userID, func(ts *models.TradeSettings) {
		kept := ts.Channels[:0]
		for _, c := range ts.Channels {
			if c != channelID {
				kept = append(kept, c)
			}
		}
		ts.Channels = kept
		if ts.ChannelID == channelID {
			ts.ChannelID = ""
		}
		if ts.PrimaryChannel == channelID {
			ts.PrimaryChannel = ""
			if len(kept) > 0 {
				ts.PrimaryChannel = kept[0]
			}
		}
	})
}

// SetPrimaryChannel makes channelID primary, registering it if needed.
func (s *Service) SetPrimaryChannel(ctx context.Context, userID, channelID string) (*models.TradeSettings, error) {
	return s.mutateChannels(ctx, userID, func(ts *models.TradeSettings) {
		found := false
		for _, c := range ts.Channels {
			if c == channelID {
				found = true
				break
			}
		}
		if !found {
			ts.Channels = append(ts.Channels, channelID)
		}
		ts.PrimaryChannel = channelID
	})
}

func (s *Service) mutateChannels(ctx context.Context, userID string, fn func(*models.TradeSettings)) (*models.TradeSettings, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	unlock := s.lock(userID)
	defer unlock()

	current, err := s.getLocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	next := current.Clone()
	fn(next)
	if err := s.repo.SaveTradeSettings(ctx, next); err != nil {
		return nil, fmt.Errorf("save channels: %w", err)
	}
	return next, nil
}
