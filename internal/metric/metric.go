// Package metric provides Prometheus counters for store writes and lookups.
// Counters work unregistered; callers that expose metrics register them on
// their own registry via Register.
package metric

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds all store-level metrics.
type Metrics struct {
	DocumentsStored *prometheus.CounterVec
	Lookups         *prometheus.CounterVec
	StoreErrors     *prometheus.CounterVec
}

// New creates an unregistered Metrics instance.
func New() *Metrics {
	return &Metrics{
		DocumentsStored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "saltstore",
				Subsystem: "documents",
				Name:      "stored_total",
				Help:      "Total number of documents stored",
			},
			[]string{"collection"},
		),
		Lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "saltstore",
				Subsystem: "lookups",
				Name:      "total",
				Help:      "Total number of lookup operations",
			},
			[]string{"operation"},
		),
		StoreErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "saltstore",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of failed store operations",
			},
			[]string{"operation"},
		),
	}
}

// Register registers all metrics on the given registerer.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.DocumentsStored, m.Lookups, m.StoreErrors} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
