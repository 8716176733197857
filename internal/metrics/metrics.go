// Package metrics exposes Prometheus instrumentation for stub resolution,
// adapted from the teacher's port/protocol-labeled imposter metrics to
// this module's scope/method domain: there's one resolver, not one per
// listening port.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks every exec request reaching the resolver.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stubbery",
			Name:      "requests_total",
			Help:      "Total number of exec requests received",
		},
		[]string{"method"},
	)

	// ResolveDuration tracks end-to-end stub resolution latency.
	ResolveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "stubbery",
			Name:      "resolve_duration_seconds",
			Help:      "Stub resolution duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// ResolverMissTotal tracks requests with no matching stub, broken
	// down by the stage that eliminated the last remaining candidates.
	ResolverMissTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stubbery",
			Name:      "resolver_miss_total",
			Help:      "Total number of requests with no matching stub, by failing stage",
		},
		[]string{"stage"},
	)

	// StubsTotal is a gauge of registered stubs by scope, set through
	// SetStubsCount; nothing in this module calls SetStubsCount.
	StubsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "stubbery",
			Name:      "stubs_total",
			Help:      "Current number of registered stubs",
		},
		[]string{"scope"},
	)
)

// RecordRequest records one exec request for method.
func RecordRequest(method string) {
	RequestsTotal.WithLabelValues(method).Inc()
}

// RecordResolveDuration records how long resolution took for method.
func RecordResolveDuration(method string, seconds float64) {
	ResolveDuration.WithLabelValues(method).Observe(seconds)
}

// RecordResolverMiss records a resolution failure at stage.
func RecordResolverMiss(stage string) {
	ResolverMissTotal.WithLabelValues(stage).Inc()
}

// SetStubsCount sets the current stub count for scope.
func SetStubsCount(scope string, count int) {
	StubsTotal.WithLabelValues(scope).Set(float64(count))
}
