package wallet

import (
	"context"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/rovshanmuradov/tradedesk/internal/blockchain/solbc"
	"github.com/rovshanmuradov/tradedesk/internal/events"
	"github.com/rovshanmuradov/tradedesk/internal/storage/memory"
	"github.com/rovshanmuradov/tradedesk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testHexKey     = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	genesisAccount = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"
	// seed генезис-аккаунта из документации rippled
	genesisSeed = "snoPBrXtMeMyMHUVTgbuqAfg1SUTb"
)

type recordingBus struct {
	events []events.Event
}

func (r *recordingBus) Publish(e events.Event) error {
	r.events = append(r.events, e)
	return nil
}

func newService(t *testing.T) (*Service, *recordingBus) {
	t.Helper()
	c, err := NewCipher(testHexKey)
	require.NoError(t, err)
	bus := &recordingBus{}
	return NewService(memory.NewStorage(), c, bus, zap.NewNop()), bus
}

func TestCipherRoundTrip(t *testing.T) {
	c, err := NewCipher(testHexKey)
	require.NoError(t, err)

	ref, err := c.Seal("secret-key", "u1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, refPrefix))
	assert.NotContains(t, ref, "secret-key")

	plain, err := c.Open(ref, "u1")
	require.NoError(t, err)
	assert.Equal(t, "secret-key", plain)

	_, err = c.Open(ref, "u2")
	assert.ErrorIs(t, err, ErrInvalidRef)
	_, err = c.Open("garbage", "u1")
	assert.ErrorIs(t, err, ErrInvalidRef)
	_, err = c.Open(refPrefix+base58.Encode([]byte{1, 2, 3}), "u1")
	assert.ErrorIs(t, err, ErrInvalidRef)
}

func TestNewCipherRejectsBadKeys(t *testing.T) {
	_, err := NewCipher("zz")
	assert.Error(t, err)
	_, err = NewCipher("0102")
	assert.Error(t, err)
}

func TestGenerateAndLookup(t *testing.T) {
	svc, bus := newService(t)
	ctx := context.Background()

	info, err := svc.Lookup(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, info.Exists)

	info, err = svc.Generate(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, info.Exists)
	assert.NoError(t, solbc.ValidateAddress(info.SolPublicKey))

	key, err := svc.ResolvePrivateKey("u1", info.SolPrivateKeyRef)
	require.NoError(t, err)
	derived, err := solbc.PublicKeyFromPrivate(key)
	require.NoError(t, err)
	assert.Equal(t, info.SolPublicKey, derived)

	_, err = svc.Generate(ctx, "u1")
	assert.ErrorIs(t, err, ErrWalletExists)

	looked, err := svc.Lookup(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, info, looked)

	pub, ref, ok := looked.For(types.ChainSolana)
	assert.True(t, ok)
	assert.Equal(t, info.SolPublicKey, pub)
	assert.Equal(t, info.SolPrivateKeyRef, ref)
	_, _, ok = looked.For(types.ChainXRPL)
	assert.False(t, ok)

	require.Len(t, bus.events, 1)
	assert.Equal(t, events.WalletCreated, bus.events[0].Type())
}

func TestImportSolana(t *testing.T) {
	svc, _ := newService(t)
	kp, err := solbc.GenerateKeypair()
	require.NoError(t, err)

	info, err := svc.ImportSolana(context.Background(), "u1", " "+kp.PrivateKey+" ")
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey, info.SolPublicKey)

	_, err = svc.ImportSolana(context.Background(), "u2", "not-a-key")
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotContains(t, err.Error(), "not-a-key")
}

func TestImportXRP(t *testing.T) {
	svc, bus := newService(t)
	ctx := context.Background()

	info, err := svc.ImportXRP(ctx, "u1", genesisAccount, genesisSeed)
	require.NoError(t, err)
	assert.Equal(t, genesisAccount, info.XrpPublicKey)

	seed, err := svc.ResolvePrivateKey("u1", info.XrpPrivateKeyRef)
	require.NoError(t, err)
	assert.Equal(t, genesisSeed, seed)

	_, err = svc.ImportXRP(ctx, "u1", genesisAccount, genesisSeed)
	assert.ErrorIs(t, err, ErrWalletExists)

	_, err = svc.ImportXRP(ctx, "u2", "rBad", genesisSeed)
	assert.Error(t, err)
	_, err = svc.ImportXRP(ctx, "u2", genesisAccount, "sBad")
	assert.Error(t, err)
	assert.NotContains(t, err.Error(), "sBad")

	require.Len(t, bus.events, 1)
}

func TestResolveEmptyRef(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.ResolvePrivateKey("u1", "")
	assert.ErrorIs(t, err, ErrNoWallet)
}

func TestRenderNeverShowsRefs(t *testing.T) {
	svc, _ := newService(t)
	info, err := svc.Generate(context.Background(), "u1")
	require.NoError(t, err)

	screen := Render(info, map[string]string{"SOL": "1.5 SOL"})
	for _, f := range screen.Fields {
		assert.NotContains(t, f.Value, info.SolPrivateKeyRef)
	}
	gen, ok := screen.Button(ActionGenerate)
	require.True(t, ok)
	assert.True(t, gen.Disabled)
}
