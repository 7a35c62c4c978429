// internal/utils/metrics/collector.go
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tradedesk"

// Collector owns the bot's prometheus metrics. A nil *Collector is valid and
// records nothing, so components can be built without metrics in tests.
type Collector struct {
	registry *prometheus.Registry

	interactions    *prometheus.CounterVec
	trades          *prometheus.CounterVec
	tradeDuration   *prometheus.HistogramVec
	upstreamLatency *prometheus.HistogramVec
	sessions        *prometheus.GaugeVec
}

// NewCollector создает коллектор с собственным реестром
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		interactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "interactions_total",
				Help:      "Discord interactions handled",
			},
			[]string{"kind", "outcome"},
		),
		trades: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "trades_total",
				Help:      "Trade submissions by outcome",
			},
			[]string{"chain", "side", "outcome"},
		),
		tradeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "trade_duration_seconds",
				Help:      "Trade submission round trip in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"chain", "side"},
		),
		upstreamLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_latency_seconds",
				Help:      "Latency of market data and RPC reads",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"source", "outcome"},
		),
		sessions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "sessions_active",
				Help:      "In-memory wizard sessions per flow",
			},
			[]string{"flow"},
		),
	}
	c.registry.MustRegister(c.interactions, c.trades, c.tradeDuration, c.upstreamLatency, c.sessions)
	return c
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector in the prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordInteraction counts one handled interaction.
func (c *Collector) RecordInteraction(kind, outcome string) {
	if c == nil {
		return
	}
	c.interactions.WithLabelValues(kind, outcome).Inc()
}

// RecordTrade records a trade submission with its duration.
func (c *Collector) RecordTrade(ctx context.Context, chain, side string, duration time.Duration, success bool) {
	if c == nil {
		return
	}
	outcome := "success"
	switch {
	case ctx.Err() != nil:
		outcome = "cancelled"
	case !success:
		outcome = "failed"
	}
	c.trades.WithLabelValues(chain, side, outcome).Inc()
	c.tradeDuration.WithLabelValues(chain, side).Observe(duration.Seconds())
}

// RecordUpstream records latency of a read against an external data source.
func (c *Collector) RecordUpstream(source string, duration time.Duration, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.upstreamLatency.WithLabelValues(source, outcome).Observe(duration.Seconds())
}

// SetSessions updates the live session gauge for a flow.
func (c *Collector) SetSessions(flow string, n int) {
	if c == nil {
		return
	}
	c.sessions.WithLabelValues(flow).Set(float64(n))
}
