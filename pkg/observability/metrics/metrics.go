// Package metrics implements the observability hooks with Prometheus
// collectors registered on the default registry.
//
// Register the hooks once at startup and expose promhttp.Handler():
//
//	observability.SetEngineHooks(metrics.Engine{})
//	observability.SetStorageHooks(metrics.Storage{})
//	observability.SetHTTPHooks(metrics.HTTP{})
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/observability"
)

var (
	// Engine Metrics
	PlacementDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashgrid_placement_duration_seconds",
			Help:    "Duration of placement searches in seconds",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		},
		[]string{"tier"},
	)

	PlacementFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashgrid_placement_failures_total",
			Help: "Total number of placement searches that found no position",
		},
	)

	Mutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashgrid_mutations_total",
			Help: "Total number of layout operations by outcome",
		},
		[]string{"op", "outcome"}, // outcome: "applied", "unchanged", "rejected", "error"
	)

	// Storage Metrics
	StorageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashgrid_storage_duration_seconds",
			Help:    "Duration of storage reads and writes in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "op"},
	)

	StorageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashgrid_storage_errors_total",
			Help: "Total number of failed storage reads and writes",
		},
		[]string{"backend", "op"},
	)

	DocumentBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dashgrid_document_bytes",
			Help: "Size of the last layout document read or written",
		},
		[]string{"backend"},
	)

	LoadWarnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashgrid_load_warnings_total",
			Help: "Total number of widgets dropped or repaired while loading",
		},
		[]string{"reason"}, // "overlap", "duplicate-id", "resized", "added", "removed"
	)

	// API Metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashgrid_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashgrid_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)
)

// Engine records placement and mutation events.
type Engine struct{}

func (Engine) OnPlacement(tier string, columns int, duration time.Duration, err error) {
	if err != nil {
		PlacementFailures.Inc()
		return
	}
	PlacementDuration.WithLabelValues(tier).Observe(duration.Seconds())
}

func (Engine) OnMutation(op, outcome string) {
	Mutations.WithLabelValues(op, outcome).Inc()
}

// Storage records gateway reads and writes.
type Storage struct{}

func (Storage) OnRead(_ context.Context, backend string, size int, found bool, duration time.Duration, err error) {
	StorageDuration.WithLabelValues(backend, "read").Observe(duration.Seconds())
	if err != nil {
		StorageErrors.WithLabelValues(backend, "read").Inc()
		return
	}
	if found {
		DocumentBytes.WithLabelValues(backend).Set(float64(size))
	}
}

func (Storage) OnWrite(_ context.Context, backend string, size int, duration time.Duration, err error) {
	StorageDuration.WithLabelValues(backend, "write").Observe(duration.Seconds())
	if err != nil {
		StorageErrors.WithLabelValues(backend, "write").Inc()
		return
	}
	DocumentBytes.WithLabelValues(backend).Set(float64(size))
}

func (Storage) OnLoadWarning(_ context.Context, reason string) {
	LoadWarnings.WithLabelValues(reason).Inc()
}

// HTTP records served API requests.
type HTTP struct{}

func (HTTP) OnRequest(_ context.Context, method, route string, statusCode int, duration time.Duration) {
	code := strconv.Itoa(statusCode)
	APIRequestDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
	APIRequestsTotal.WithLabelValues(method, route, code).Inc()
}

// Register installs all three hook implementations.
func Register() {
	observability.SetEngineHooks(Engine{})
	observability.SetStorageHooks(Storage{})
	observability.SetHTTPHooks(HTTP{})
}

var (
	_ observability.EngineHooks  = Engine{}
	_ observability.StorageHooks = Storage{}
	_ observability.HTTPHooks    = HTTP{}
)
