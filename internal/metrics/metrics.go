package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "eventmart"

// Metrics groups collectors shared by the client core.
type Metrics struct {
	Requests       *prometheus.CounterVec
	Renewals       *prometheus.CounterVec
	CheckoutItems  *prometheus.CounterVec
	CheckoutRuns   *prometheus.CounterVec
	Payments       *prometheus.CounterVec
	VendorLookups  *prometheus.CounterVec
	Settlements    *prometheus.CounterVec
	RequestLatency *prometheus.HistogramVec
}

// New creates collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Outbound authenticated requests by service and outcome.",
		}, []string{"service", "outcome"}),
		Renewals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "renewals_total",
			Help:      "Credential renewal calls by result.",
		}, []string{"result"}),
		RequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Round-trip latency of outbound requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service"}),
		CheckoutItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "items_total",
			Help:      "Booking submissions by result.",
		}, []string{"result"}),
		CheckoutRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "attempts_total",
			Help:      "Checkout attempts by overall outcome.",
		}, []string{"outcome"}),
		Payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "calls_total",
			Help:      "Settlement calls by method, step and result.",
		}, []string{"method", "step", "result"}),
		VendorLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "vendor_lookups_total",
			Help:      "Vendor display-name lookups by result.",
		}, []string{"result"}),
		Settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "tracked_total",
			Help:      "Tracked settlements by final state.",
		}, []string{"state"}),
	}

	collectors := []prometheus.Collector{
		m.Requests, m.Renewals, m.RequestLatency,
		m.CheckoutItems, m.CheckoutRuns, m.Payments, m.VendorLookups, m.Settlements,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// NewNop returns collectors that are not registered anywhere. Useful in tests.
func NewNop() *Metrics {
	m, _ := New(prometheus.NewRegistry())
	return m
}
