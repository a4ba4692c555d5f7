package internal

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "wander"

// Metrics groups the collectors updated by the recommendation path.
type Metrics struct {
	Requests    *prometheus.CounterVec
	Duration    prometheus.Histogram
	CatalogSize prometheus.Gauge
	Reloads     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "recommendations_total",
			Help:      "Recommendation requests by outcome.",
		}, []string{"outcome"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "recommendation_duration_seconds",
			Help:      "Time spent encoding and ranking one request.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		}),
		CatalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "catalog_destinations",
			Help:      "Destinations in the active catalog snapshot.",
		}),
		Reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "catalog_reloads_total",
			Help:      "Catalog reload attempts by outcome.",
		}, []string{"outcome"}),
	}

	if reg != nil {
		reg.MustRegister(m.Requests, m.Duration, m.CatalogSize, m.Reloads)
	}
	return m
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnknownCategory):
		return "unknown_category"
	default:
		return "error"
	}
}
