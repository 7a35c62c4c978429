package xrpl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const genesisAccount = "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"

func TestValidateClassicAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{"genesis", genesisAccount, false},
		{"account zero", "rrrrrrrrrrrrrrrrrrrrrhoLvTp", false},
		{"bad checksum", "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTx", true},
		{"solana address", "So11111111111111111111111111111111111111112", true},
		{"empty", "", true},
		{"forbidden char", "rHb9CJAWyB4rj91VRWn96DkukG4bwdty0h", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateClassicAddress(tt.address)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAddress)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEncodeClassicAddress(t *testing.T) {
	addr, err := EncodeClassicAddress(make([]byte, 20))
	require.NoError(t, err)
	assert.Equal(t, "rrrrrrrrrrrrrrrrrrrrrhoLvTp", addr)

	_, err = EncodeClassicAddress([]byte{1, 2})
	assert.Error(t, err)
}

func TestValidateSeed(t *testing.T) {
	payload := append([]byte{seedPrefix}, make([]byte, seedLength)...)
	seed := base58.EncodeAlphabet(append(payload, checksum(payload)...), rippleAlphabet)
	assert.NoError(t, ValidateSeed(seed))

	assert.ErrorIs(t, ValidateSeed(genesisAccount), ErrInvalidSeed)
	assert.ErrorIs(t, ValidateSeed(""), ErrInvalidSeed)
	last := "x"
	if seed[len(seed)-1] == 'x' {
		last = "y"
	}
	assert.ErrorIs(t, ValidateSeed(seed[:len(seed)-1]+last), ErrInvalidSeed)
}

func TestParseAsset(t *testing.T) {
	a, err := ParseAsset(genesisAccount)
	require.NoError(t, err)
	assert.Equal(t, Asset{Issuer: genesisAccount}, a)

	a, err = ParseAsset("usd." + genesisAccount)
	require.NoError(t, err)
	assert.Equal(t, "USD", a.Currency)
	assert.Equal(t, "USD."+genesisAccount, a.String())

	_, err = ParseAsset("XRP." + genesisAccount)
	assert.Error(t, err)
	_, err = ParseAsset("TOOLONG." + genesisAccount)
	assert.Error(t, err)
}

func rippled(t *testing.T, results map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"result": results[req.Method]})
	}))
}

func TestGetBalance(t *testing.T) {
	srv := rippled(t, map[string]interface{}{
		"account_info": map[string]interface{}{
			"status":       "success",
			"account_data": map[string]interface{}{"Account": genesisAccount, "Balance": "25500000"},
		},
	})
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, 0, nil, zap.NewNop())
	balance, err := client.GetBalance(context.Background(), genesisAccount)
	require.NoError(t, err)
	assert.Equal(t, 25.5, balance)
}

func TestGetBalanceUnfunded(t *testing.T) {
	srv := rippled(t, map[string]interface{}{
		"account_info": map[string]interface{}{"status": "error", "error": "actNotFound"},
	})
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, 0, nil, zap.NewNop())
	balance, err := client.GetBalance(context.Background(), genesisAccount)
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestGetTokenBalance(t *testing.T) {
	srv := rippled(t, map[string]interface{}{
		"account_lines": map[string]interface{}{
			"status": "success",
			"lines": []map[string]interface{}{
				{"account": genesisAccount, "currency": "USD", "balance": "10.5"},
				{"account": genesisAccount, "currency": "EUR", "balance": "3"},
			},
		},
	})
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, 0, nil, zap.NewNop())

	usd, err := client.GetTokenBalance(context.Background(), genesisAccount, Asset{Currency: "USD", Issuer: genesisAccount})
	require.NoError(t, err)
	assert.Equal(t, 10.5, usd)

	all, err := client.GetTokenBalance(context.Background(), genesisAccount, Asset{Issuer: genesisAccount})
	require.NoError(t, err)
	assert.Equal(t, 13.5, all)
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, 3, nil, zap.NewNop())
	_, err := client.GetBalance(context.Background(), genesisAccount)
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
