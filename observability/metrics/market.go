package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// MarketMetrics exposes counters for the season market ledger.
type MarketMetrics struct {
	purchases       *prometheus.CounterVec
	purchaseDenied  *prometheus.CounterVec
	rngRequests     prometheus.Counter
	rngFulfilled    prometheus.Counter
	rngRejected     prometheus.Counter
	prizesResolved  *prometheus.CounterVec
	prizesClaimed   *prometheus.CounterVec
	winnersSelected *prometheus.CounterVec
}

var (
	marketOnce     sync.Once
	marketRegistry *MarketMetrics
)

// Market returns the process-wide market metrics registry.
func Market() *MarketMetrics {
	marketOnce.Do(func() {
		marketRegistry = &MarketMetrics{
			purchases: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "market_purchases_total",
				Help: "Count of committed purchases by kind.",
			}, []string{"kind"}),
			purchaseDenied: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "market_purchase_denied_total",
				Help: "Count of rejected purchases by reason.",
			}, []string{"reason"}),
			rngRequests: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "market_rng_requests_total",
				Help: "Count of randomness sub-requests issued.",
			}),
			rngFulfilled: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "market_rng_fulfilled_total",
				Help: "Count of randomness deliveries accepted.",
			}),
			rngRejected: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "market_rng_rejected_total",
				Help: "Count of randomness deliveries rejected.",
			}),
			prizesResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "market_prizes_resolved_total",
				Help: "Count of crate prizes resolved by tier.",
			}, []string{"tier"}),
			prizesClaimed: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "market_prizes_claimed_total",
				Help: "Count of crate prizes claimed by tier.",
			}, []string{"tier"}),
			winnersSelected: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "market_raffle_winners_total",
				Help: "Count of raffle winners selected by type.",
			}, []string{"type"}),
		}
		prometheus.MustRegister(
			marketRegistry.purchases,
			marketRegistry.purchaseDenied,
			marketRegistry.rngRequests,
			marketRegistry.rngFulfilled,
			marketRegistry.rngRejected,
			marketRegistry.prizesResolved,
			marketRegistry.prizesClaimed,
			marketRegistry.winnersSelected,
		)
	})
	return marketRegistry
}

// ObservePurchase records a committed purchase of the given kind.
func (m *MarketMetrics) ObservePurchase(kind string) {
	if m == nil {
		return
	}
	m.purchases.WithLabelValues(kind).Inc()
}

// ObservePurchaseDenied records a rejected purchase by reason code.
func (m *MarketMetrics) ObservePurchaseDenied(reason string) {
	if m == nil {
		return
	}
	m.purchaseDenied.WithLabelValues(reason).Inc()
}

// ObserveRNGRequests records issued randomness sub-requests.
func (m *MarketMetrics) ObserveRNGRequests(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.rngRequests.Add(float64(count))
}

// ObserveRNGFulfilled records an accepted delivery.
func (m *MarketMetrics) ObserveRNGFulfilled() {
	if m == nil {
		return
	}
	m.rngFulfilled.Inc()
}

// ObserveRNGRejected records a rejected delivery.
func (m *MarketMetrics) ObserveRNGRejected() {
	if m == nil {
		return
	}
	m.rngRejected.Inc()
}

// ObservePrizeResolved records a resolved crate prize for a tier.
func (m *MarketMetrics) ObservePrizeResolved(tier string) {
	if m == nil {
		return
	}
	m.prizesResolved.WithLabelValues(tier).Inc()
}

// ObservePrizeClaimed records a claimed crate prize for a tier.
func (m *MarketMetrics) ObservePrizeClaimed(tier string) {
	if m == nil {
		return
	}
	m.prizesClaimed.WithLabelValues(tier).Inc()
}

// ObserveWinners records accepted raffle winners for a type.
func (m *MarketMetrics) ObserveWinners(typeID string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.winnersSelected.WithLabelValues(typeID).Add(float64(count))
}
