// internal/trade/response.go
package trade

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ConfirmedMessage is the message text some API versions send instead of success=true.
const ConfirmedMessage = "Transaction confirmed"

// Outcome is the classified trade API response.
type Outcome struct {
	Success bool
	// MessageFallback is true when success was inferred from ConfirmedMessage.
	MessageFallback bool
	Signature       string
	AmountOut       float64
	HasAmountOut    bool
	Message         string
}

// Classify interprets a trade API response body. An error field means failure
// whatever else is present; success=true or the confirmation message means success.
func Classify(body []byte) Outcome {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Outcome{Message: "invalid response from trade service"}
	}

	out := Outcome{
		Signature: firstString(fields, "txid", "signature", "transaction"),
		Message:   stringField(fields, "message"),
	}
	out.AmountOut, out.HasAmountOut = firstNumber(fields, "outputAmount", "amountOut")

	if raw, ok := fields["error"]; ok && !isNull(raw) {
		if msg := stringField(fields, "error"); msg != "" {
			out.Message = msg
		} else {
			out.Message = strings.TrimSpace(string(raw))
		}
		return out
	}

	var success bool
	if raw, ok := fields["success"]; ok && json.Unmarshal(raw, &success) == nil && success {
		out.Success = true
		return out
	}

	if strings.EqualFold(strings.TrimSpace(out.Message), ConfirmedMessage) {
		out.Success = true
		out.MessageFallback = true
		return out
	}

	if out.Message == "" {
		out.Message = "trade service did not confirm the transaction"
	}
	return out
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func firstString(fields map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		if s := stringField(fields, key); s != "" {
			return s
		}
	}
	return ""
}

// firstNumber accepts numbers and numeric strings.
func firstNumber(fields map[string]json.RawMessage, keys ...string) (float64, bool) {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok || isNull(raw) {
			continue
		}
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil {
			return f, true
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
