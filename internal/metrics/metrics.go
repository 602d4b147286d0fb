package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Registry — отдельный реестр: процесс живёт один цикл, метрики уходят в Pushgateway.
var Registry = prometheus.NewRegistry()

var (
	OrdersPlaced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "envelope",
			Name:      "orders_placed_total",
			Help:      "Orders accepted by the exchange, by intent kind.",
		},
		[]string{"kind"},
	)
	OrdersFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "envelope",
			Name:      "orders_failed_total",
			Help:      "Orders rejected or failed to submit, by intent kind.",
		},
		[]string{"kind"},
	)
	OrdersCancelled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "envelope",
			Name:      "orders_cancelled_total",
			Help:      "Stale orders cancelled, by order type.",
		},
		[]string{"type"},
	)
	InstrumentsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "envelope",
			Name:      "instruments_dropped_total",
			Help:      "Instruments excluded from a cycle, by reason.",
		},
		[]string{"reason"},
	)
	Equity = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "envelope",
		Name:      "equity_usdt",
		Help:      "Account equity observed during the cycle.",
	})
	OpenPositions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "envelope",
		Name:      "open_positions",
		Help:      "Open positions across configured instruments.",
	})
	CycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "envelope",
		Name:      "cycle_duration_seconds",
		Help:      "Wall time of one reconciliation cycle.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 8),
	})
	LastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "envelope",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last cycle that finished without a fatal error.",
	})
)

func init() {
	Registry.MustRegister(
		OrdersPlaced,
		OrdersFailed,
		OrdersCancelled,
		InstrumentsDropped,
		Equity,
		OpenPositions,
		CycleDuration,
		LastSuccess,
	)
}

// Push отправляет метрики в Pushgateway. Пустой url — ничего не делаем.
func Push(ctx context.Context, url, job string) error {
	if url == "" {
		return nil
	}
	return push.New(url, job).Gatherer(Registry).PushContext(ctx)
}
