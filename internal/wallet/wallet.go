// internal/wallet/wallet.go
package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rovshanmuradov/tradedesk/internal/blockchain/solbc"
	"github.com/rovshanmuradov/tradedesk/internal/blockchain/xrpl"
	"github.com/rovshanmuradov/tradedesk/internal/events"
	"github.com/rovshanmuradov/tradedesk/internal/storage"
	"github.com/rovshanmuradov/tradedesk/internal/storage/models"
	"github.com/rovshanmuradov/tradedesk/internal/types"
	"github.com/rovshanmuradov/tradedesk/internal/utils/logger"
	"go.uber.org/zap"
)

var (
	ErrWalletExists = errors.New("wallet already exists for this chain")
	ErrNoWallet     = errors.New("no wallet for this chain")
)

// Info is the public view of a user's custody wallets. The *Ref fields are
// ciphertext references; resolve them only when signing a request.
type Info struct {
	Exists           bool
	SolPublicKey     string
	XrpPublicKey     string
	SolPrivateKeyRef string
	XrpPrivateKeyRef string
}

// For returns the public key and key reference used on chain.
func (i Info) For(chain types.Chain) (publicKey, ref string, ok bool) {
	switch chain {
	case types.ChainSolana:
		publicKey, ref = i.SolPublicKey, i.SolPrivateKeyRef
	case types.ChainXRPL:
		publicKey, ref = i.XrpPublicKey, i.XrpPrivateKeyRef
	}
	return publicKey, ref, publicKey != "" && ref != ""
}

// Service manages custody keys. Plaintext keys exist only inside Generate,
// Import* and ResolvePrivateKey.
type Service struct {
	repo   storage.Storage
	cipher *Cipher
	bus    events.Publisher
	logger *zap.Logger

	mu sync.Mutex
}

// NewService creates a wallet service. bus may be nil.
func NewService(repo storage.Storage, cipher *Cipher, bus events.Publisher, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		cipher: cipher,
		bus:    bus,
		logger: logger.Named("wallet"),
	}
}

func toInfo(w *models.Wallet) Info {
	if w == nil {
		return Info{}
	}
	return Info{
		Exists:           w.SolPublicKey != "" || w.XrpPublicKey != "",
		SolPublicKey:     w.SolPublicKey,
		XrpPublicKey:     w.XrpPublicKey,
		SolPrivateKeyRef: w.SolPrivateKeyRef,
		XrpPrivateKeyRef: w.XrpPrivateKeyRef,
	}
}

func (s *Service) load(ctx context.Context, userID string) (*models.Wallet, error) {
	w, err := s.repo.GetWallet(ctx, userID)
	if err == nil {
		return w, nil
	}
	if errors.Is(err, storage.ErrNotFound) {
		return &models.Wallet{UserID: userID}, nil
	}
	return nil, fmt.Errorf("load wallet: %w", err)
}

// Lookup returns the user's wallets. Missing wallets are not an error.
func (s *Service) Lookup(ctx context.Context, userID string) (Info, error) {
	w, err := s.load(ctx, userID)
	if err != nil {
		return Info{}, err
	}
	return toInfo(w), nil
}

// Generate creates a Solana custody keypair for the user.
func (s *Service) Generate(ctx context.Context, userID string) (Info, error) {
	kp, err := solbc.GenerateKeypair()
	if err != nil {
		return Info{}, err
	}
	return s.storeSolana(ctx, userID, kp.PublicKey, kp.PrivateKey)
}

// ImportSolana stores an existing base58 Solana private key.
func (s *Service) ImportSolana(ctx context.Context, userID, privateKey string) (Info, error) {
	privateKey = strings.TrimSpace(privateKey)
	pub, err := solbc.PublicKeyFromPrivate(privateKey)
	if err != nil {
		return Info{}, &types.ValidationError{Field: "private_key", Reason: "not a valid Solana private key"}
	}
	return s.storeSolana(ctx, userID, pub, privateKey)
}

func (s *Service) storeSolana(ctx context.Context, userID, publicKey, privateKey string) (Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.load(ctx, userID)
	if err != nil {
		return Info{}, err
	}
	if w.SolPublicKey != "" {
		return toInfo(w), ErrWalletExists
	}
	ref, err := s.cipher.Seal(privateKey, userID)
	if err != nil {
		return Info{}, err
	}
	w.SolPublicKey = publicKey
	w.SolPrivateKeyRef = ref
	if err := s.repo.SaveWallet(ctx, w); err != nil {
		return Info{}, fmt.Errorf("save wallet: %w", err)
	}

	s.logger.Info("🔑 Solana wallet stored",
		zap.String("user_id", userID),
		zap.String("public_key", publicKey),
		logger.Secret("key_ref", ref))
	s.publish(userID, types.ChainSolana, publicKey)
	return toInfo(w), nil
}

// ImportXRP stores an XRP Ledger classic address with its family seed.
func (s *Service) ImportXRP(ctx context.Context, userID, address, seed string) (Info, error) {
	address, seed = strings.TrimSpace(address), strings.TrimSpace(seed)
	if err := xrpl.ValidateClassicAddress(address); err != nil {
		return Info{}, &types.ValidationError{Field: "address", Reason: "not a valid XRP Ledger classic address"}
	}
	if err := xrpl.ValidateSeed(seed); err != nil {
		return Info{}, &types.ValidationError{Field: "seed", Reason: "not a valid XRP Ledger family seed"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.load(ctx, userID)
	if err != nil {
		return Info{}, err
	}
	if w.XrpPublicKey != "" {
		return toInfo(w), ErrWalletExists
	}
	ref, err := s.cipher.Seal(seed, userID)
	if err != nil {
		return Info{}, err
	}
	w.XrpPublicKey = address
	w.XrpPrivateKeyRef = ref
	if err := s.repo.SaveWallet(ctx, w); err != nil {
		return Info{}, fmt.Errorf("save wallet: %w", err)
	}

	s.logger.Info("🔑 XRP wallet imported",
		zap.String("user_id", userID),
		zap.String("address", address))
	s.publish(userID, types.ChainXRPL, address)
	return toInfo(w), nil
}

// ResolvePrivateKey opens a reference sealed for userID.
func (s *Service) ResolvePrivateKey(userID, ref string) (string, error) {
	if ref == "" {
		return "", ErrNoWallet
	}
	return s.cipher.Open(ref, userID)
}

func (s *Service) publish(userID string, chain types.Chain, publicKey string) {
	if s.bus == nil {
		return
	}
	err := s.bus.Publish(events.WalletCreatedEvent{
		BaseEvent: events.NewBaseEvent(events.WalletCreated),
		UserID:    userID,
		Chain:     string(chain),
		PublicKey: publicKey,
	})
	if err != nil {
		s.logger.Warn("Failed to publish wallet event", zap.Error(err))
	}
}
