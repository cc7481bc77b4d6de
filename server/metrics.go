package server

import "github.com/prometheus/client_golang/prometheus"

const (
	kindNone = "none"

	outcomeFound    = "found"
	outcomeNotFound = "not_found"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

type serverMetrics struct {
	queries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
}

func newMetrics(registerer prometheus.Registerer) (*serverMetrics, error) {
	m := &serverMetrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledgerstatus",
			Name:      "queries_total",
			Help:      "Total number of status queries by identifier kind and outcome",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "ledgerstatus",
			Name:      "lookup_duration_seconds",
			Help:      "Time spent acquiring a ledger connection and looking up a status",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ledgerstatus",
			Name:      "lookups_inflight",
			Help:      "Number of status lookups currently holding or waiting for a ledger connection",
		}),
	}

	if err := registerer.Register(m.queries); err != nil {
		return nil, err
	}
	if err := registerer.Register(m.duration); err != nil {
		return nil, err
	}
	if err := registerer.Register(m.inflight); err != nil {
		return nil, err
	}

	return m, nil
}
