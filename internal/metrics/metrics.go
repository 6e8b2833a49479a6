package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Storefront records cart synchronization and session health. A nil
// *Storefront is valid and records nothing.
type Storefront struct {
	syncAttempts  *prometheus.CounterVec
	syncFailures  *prometheus.CounterVec
	syncDuration  *prometheus.HistogramVec
	mutations     *prometheus.CounterVec
	purges        *prometheus.CounterVec
	activeVisitor prometheus.Gauge
}

func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return nil
	}
	m := &Storefront{
		syncAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_sync_attempts_total",
			Help: "Remote cart writes attempted, by operation.",
		}, []string{"op"}),
		syncFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_sync_failures_total",
			Help: "Remote cart writes that failed and stay pending, by operation.",
		}, []string{"op"}),
		syncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cart_sync_duration_seconds",
			Help:    "Latency of remote cart calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cart_mutations_total",
			Help: "Local cart and wishlist mutations, by operation.",
		}, []string{"op"}),
		purges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_corrupt_records_purged_total",
			Help: "Malformed persisted records deleted on read, by key.",
		}, []string{"key"}),
		activeVisitor: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "storefront_active_visitors",
			Help: "Visitors with live stores in this process.",
		}),
	}
	reg.MustRegister(m.syncAttempts, m.syncFailures, m.syncDuration, m.mutations, m.purges, m.activeVisitor)
	return m
}

func (m *Storefront) ObserveSync(op string, took time.Duration, err error) {
	if m == nil {
		return
	}
	op = normalizeLabel(op)
	m.syncAttempts.WithLabelValues(op).Inc()
	m.syncDuration.WithLabelValues(op).Observe(took.Seconds())
	if err != nil {
		m.syncFailures.WithLabelValues(op).Inc()
	}
}

func (m *Storefront) IncMutation(op string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(op)).Inc()
}

func (m *Storefront) IncPurge(key string) {
	if m == nil {
		return
	}
	m.purges.WithLabelValues(normalizeLabel(key)).Inc()
}

func (m *Storefront) SetActiveVisitors(n int) {
	if m == nil {
		return
	}
	m.activeVisitor.Set(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
