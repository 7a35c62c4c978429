package trade

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantSuccess  bool
		wantFallback bool
		wantMessage  string
	}{
		{"success flag", `{"success":true}`, true, false, ""},
		{"confirmed message", `{"message":"Transaction confirmed"}`, true, true, ConfirmedMessage},
		{"confirmed message any case", `{"message":"transaction CONFIRMED "}`, true, true, "transaction CONFIRMED "},
		{"error wins over success", `{"success":true,"error":"boom"}`, false, false, "boom"},
		{"error wins over message", `{"error":"boom","message":"Transaction confirmed"}`, false, false, "boom"},
		{"structured error", `{"error":{"code":7}}`, false, false, `{"code":7}`},
		{"null error ignored", `{"error":null,"success":true}`, true, false, ""},
		{"success false", `{"success":false,"message":"no route"}`, false, false, "no route"},
		{"empty object", `{}`, false, false, "trade service did not confirm the transaction"},
		{"not json", `<html>`, false, false, "invalid response from trade service"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Classify([]byte(tt.body))
			assert.Equal(t, tt.wantSuccess, out.Success)
			assert.Equal(t, tt.wantFallback, out.MessageFallback)
			assert.Equal(t, tt.wantMessage, out.Message)
		})
	}
}

func TestClassifyExtractsSignatureAndAmount(t *testing.T) {
	out := Classify([]byte(`{"success":true,"signature":"abc","amountOut":42}`))
	assert.Equal(t, "abc", out.Signature)
	assert.True(t, out.HasAmountOut)
	assert.Equal(t, 42.0, out.AmountOut)

	out = Classify([]byte(`{"success":true,"txid":"first","signature":"second","outputAmount":"n/a"}`))
	assert.Equal(t, "first", out.Signature)
	assert.False(t, out.HasAmountOut)
}
