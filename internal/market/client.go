// internal/market/client.go
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rovshanmuradov/tradedesk/internal/utils/metrics"
	"go.uber.org/zap"
)

// Client reads public market data from DexScreener and Jupiter.
type Client struct {
	dexURL     string
	jupiterURL string

	httpClient    *http.Client
	maxTries      uint
	retryInterval time.Duration

	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewClient создает новый экземпляр клиента
func NewClient(dexURL, jupiterURL string, timeout time.Duration, retries int, collector *metrics.Collector, logger *zap.Logger) *Client {
	if retries < 0 {
		retries = 0
	}
	return &Client{
		dexURL:     dexURL,
		jupiterURL: jupiterURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxTries:      uint(retries + 1),
		retryInterval: 500 * time.Millisecond,
		metrics:       collector,
		logger:        logger.Named("market"),
	}
}

// getJSON выполняет GET запрос с повторами. 429 и 5xx повторяются, остальные 4xx нет.
func (c *Client) getJSON(ctx context.Context, source, endpoint string, out interface{}) error {
	start := time.Now()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryInterval
	policy.MaxInterval = 10 * c.retryInterval

	notify := func(err error, d time.Duration) {
		c.logger.Debug("Повтор запроса после ошибки",
			zap.String("source", source),
			zap.Duration("backoff", d),
			zap.Error(err))
	}

	op := func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return struct{}{}, fmt.Errorf("execute request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			err := fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(body))
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
				return struct{}{}, err
			}
			return struct{}{}, backoff.Permanent(err)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return struct{}{}, nil
	}

	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(notify))

	c.metrics.RecordUpstream(source, time.Since(start), err)
	return err
}
