package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the registry collectors. A nil *Metrics records nothing.
type Metrics struct {
	PoolsInserted  *prometheus.CounterVec
	PoolsRejected  prometheus.Counter
	Pairs          prometheus.Gauge
	IndexedPools   prometheus.Gauge
	Vaults         prometheus.Gauge
	LegitChecks    *prometheus.CounterVec
	RefreshErrors  *prometheus.CounterVec
	LoadDuration   *prometheus.HistogramVec
	AccountsLoaded *prometheus.CounterVec
	Slot           prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		PoolsInserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pools_inserted_total",
			Help:      "Pools inserted into the market graph.",
		}, []string{"protocol"}),
		PoolsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pools_rejected_total",
			Help:      "Pools rejected for equal or null tokens.",
		}),
		Pairs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pairs",
			Help:      "Distinct token pairs in the market graph.",
		}),
		IndexedPools: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "indexed_addresses",
			Help:      "Addresses bound in the pool index.",
		}),
		Vaults: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vaults",
			Help:      "Shared vaults in the vault cache.",
		}),
		LegitChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "legit_checks_total",
			Help:      "Token legitimacy fetches by result.",
		}, []string{"result"}),
		RefreshErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_errors_total",
			Help:      "Failed pool refreshes.",
		}, []string{"protocol"}),
		LoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Program account scan duration.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"protocol"}),
		AccountsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "accounts_loaded_total",
			Help:      "Program accounts fetched by the loader.",
		}, []string{"protocol"}),
		Slot: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "slot",
			Help:      "Last mirrored slot.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.PoolsInserted, m.PoolsRejected, m.Pairs, m.IndexedPools, m.Vaults,
			m.LegitChecks, m.RefreshErrors, m.LoadDuration, m.AccountsLoaded, m.Slot)
	}
	return m
}

func (m *Metrics) PoolInserted(protocol string) {
	if m == nil {
		return
	}
	m.PoolsInserted.WithLabelValues(protocol).Inc()
}

func (m *Metrics) PoolRejected() {
	if m == nil {
		return
	}
	m.PoolsRejected.Inc()
}

func (m *Metrics) SetSizes(pairs, indexed, vaults int) {
	if m == nil {
		return
	}
	m.Pairs.Set(float64(pairs))
	m.IndexedPools.Set(float64(indexed))
	m.Vaults.Set(float64(vaults))
}

func (m *Metrics) LegitChecked(legit bool) {
	if m == nil {
		return
	}
	result := "not_legit"
	if legit {
		result = "legit"
	}
	m.LegitChecks.WithLabelValues(result).Inc()
}

func (m *Metrics) RefreshFailed(protocol string) {
	if m == nil {
		return
	}
	m.RefreshErrors.WithLabelValues(protocol).Inc()
}

func (m *Metrics) Loaded(protocol string, accounts int, started time.Time) {
	if m == nil {
		return
	}
	m.AccountsLoaded.WithLabelValues(protocol).Add(float64(accounts))
	m.LoadDuration.WithLabelValues(protocol).Observe(time.Since(started).Seconds())
}

func (m *Metrics) SetSlot(slot uint64) {
	if m == nil {
		return
	}
	m.Slot.Set(float64(slot))
}
