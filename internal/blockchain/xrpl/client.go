// internal/blockchain/xrpl/client.go
package xrpl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rovshanmuradov/tradedesk/internal/utils/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dropsDecimals = 6

// ErrAccountNotFound is returned by rippled for unfunded accounts.
var ErrAccountNotFound = errors.New("account not found")

// Client is a minimal rippled JSON-RPC client for balance reads.
type Client struct {
	url        string
	httpClient *http.Client
	maxTries   uint
	metrics    *metrics.Collector
	logger     *zap.Logger
}

// NewClient creates a client for a rippled JSON-RPC endpoint.
func NewClient(url string, timeout time.Duration, retries int, collector *metrics.Collector, logger *zap.Logger) *Client {
	if retries < 0 {
		retries = 0
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		maxTries:   uint(retries + 1),
		metrics:    collector,
		logger:     logger.Named("xrpl-client"),
	}
}

type rpcRequest struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

type rpcError struct {
	Error        string `json:"error"`
	ErrorMessage string `json:"error_message"`
	Status       string `json:"status"`
}

type accountInfoResult struct {
	rpcError
	AccountData struct {
		Account string `json:"Account"`
		Balance string `json:"Balance"`
	} `json:"account_data"`
}

type accountLinesResult struct {
	rpcError
	Lines []struct {
		Account  string `json:"account"`
		Balance  string `json:"balance"`
		Currency string `json:"currency"`
	} `json:"lines"`
}

// call posts one JSON-RPC request. 5xx and transport errors are retried.
func (c *Client) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	body, err := json.Marshal(rpcRequest{Method: method, Params: []interface{}{params}})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	start := time.Now()
	op := func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return struct{}{}, fmt.Errorf("execute request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			err := fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(raw))
			if resp.StatusCode < http.StatusInternalServerError {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		}

		var envelope struct {
			Result json.RawMessage `json:"result"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("decode result: %w", err))
		}
		return struct{}{}, nil
	}

	_, err = backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.maxTries))
	c.metrics.RecordUpstream("xrpl_rpc", time.Since(start), err)
	return err
}

func (e rpcError) err() error {
	if e.Error == "" {
		return nil
	}
	if e.Error == "actNotFound" {
		return ErrAccountNotFound
	}
	if e.ErrorMessage != "" {
		return fmt.Errorf("rippled error %s: %s", e.Error, e.ErrorMessage)
	}
	return fmt.Errorf("rippled error %s", e.Error)
}

// GetBalance returns the XRP balance of a classic address. Unfunded accounts have zero balance.
func (c *Client) GetBalance(ctx context.Context, account string) (float64, error) {
	if err := ValidateClassicAddress(account); err != nil {
		return 0, err
	}

	var result accountInfoResult
	err := c.call(ctx, "account_info", map[string]interface{}{
		"account":      account,
		"ledger_index": "validated",
	}, &result)
	if err != nil {
		c.logger.Error("account_info failed", zap.String("account", account), zap.Error(err))
		return 0, err
	}
	if err := result.err(); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return 0, nil
		}
		return 0, err
	}

	drops, err := decimal.NewFromString(result.AccountData.Balance)
	if err != nil {
		return 0, fmt.Errorf("invalid balance %q: %w", result.AccountData.Balance, err)
	}
	return drops.Shift(-dropsDecimals).InexactFloat64(), nil
}

// GetTokenBalance sums the trust line balances the account holds for asset.
func (c *Client) GetTokenBalance(ctx context.Context, account string, asset Asset) (float64, error) {
	if err := ValidateClassicAddress(account); err != nil {
		return 0, err
	}

	var result accountLinesResult
	err := c.call(ctx, "account_lines", map[string]interface{}{
		"account":      account,
		"peer":         asset.Issuer,
		"ledger_index": "validated",
	}, &result)
	if err != nil {
		return 0, err
	}
	if err := result.err(); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return 0, nil
		}
		return 0, err
	}

	total := decimal.Zero
	for _, line := range result.Lines {
		if line.Account != asset.Issuer {
			continue
		}
		if asset.Currency != "" && !strings.EqualFold(line.Currency, asset.Currency) {
			continue
		}
		v, err := decimal.NewFromString(line.Balance)
		if err != nil {
			c.logger.Warn("Skipping malformed trust line balance",
				zap.String("currency", line.Currency), zap.String("balance", line.Balance))
			continue
		}
		total = total.Add(v)
	}
	return total.InexactFloat64(), nil
}
