package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains platform-level metrics shared by every component.
// Domain-specific metrics live with their components.
type Metrics struct {
	// Service metrics
	ServiceStatus     *prometheus.GaugeVec
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	ErrorsTotal       *prometheus.CounterVec
	HealthCheckStatus *prometheus.GaugeVec

	// Snapshot metrics
	SnapshotEntities prometheus.Gauge
	SnapshotEdges    prometheus.Gauge
	SnapshotDangling prometheus.Gauge
	SnapshotSwaps    prometheus.Counter
	SnapshotAge      prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all platform metrics
func NewMetrics() *Metrics {
	return &Metrics{
		ServiceStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "metaresolve",
				Subsystem: "service",
				Name:      "status",
				Help:      "Service status (0=stopped, 1=starting, 2=running, 3=stopping, 4=failed)",
			},
			[]string{"service"},
		),

		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "metaresolve",
				Subsystem: "resolution",
				Name:      "operations_total",
				Help:      "Total number of resolution operations",
			},
			[]string{"service", "operation", "status"},
		),

		OperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "metaresolve",
				Subsystem: "resolution",
				Name:      "operation_duration_seconds",
				Help:      "Resolution operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"service", "operation"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "metaresolve",
				Subsystem: "resolution",
				Name:      "errors_total",
				Help:      "Total number of errors by kind",
			},
			[]string{"service", "operation", "kind"},
		),

		HealthCheckStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "metaresolve",
				Subsystem: "health",
				Name:      "check_status",
				Help:      "Health check status (1=healthy, 0=unhealthy)",
			},
			[]string{"component"},
		),

		SnapshotEntities: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "metaresolve",
				Subsystem: "snapshot",
				Name:      "entities",
				Help:      "Entity count in the current graph snapshot",
			},
		),

		SnapshotEdges: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "metaresolve",
				Subsystem: "snapshot",
				Name:      "edges",
				Help:      "Edge count in the current graph snapshot",
			},
		),

		SnapshotDangling: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "metaresolve",
				Subsystem: "snapshot",
				Name:      "dangling_edges",
				Help:      "Edges skipped at snapshot build because an endpoint did not resolve",
			},
		),

		SnapshotSwaps: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "metaresolve",
				Subsystem: "snapshot",
				Name:      "swaps_total",
				Help:      "Total number of snapshot swaps since process start",
			},
		),

		SnapshotAge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "metaresolve",
				Subsystem: "snapshot",
				Name:      "age_seconds",
				Help:      "Age of the current graph snapshot in seconds",
			},
		),
	}
}

// RecordOperation records one resolution operation outcome.
func (m *Metrics) RecordOperation(service, operation string, duration time.Duration, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.OperationsTotal.WithLabelValues(service, operation, status).Inc()
	m.OperationDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordError records an error by taxonomy kind.
func (m *Metrics) RecordError(service, operation, kind string) {
	m.ErrorsTotal.WithLabelValues(service, operation, kind).Inc()
}

// RecordSnapshot updates the snapshot gauges after a swap.
func (m *Metrics) RecordSnapshot(entities, edges, dangling int) {
	m.SnapshotEntities.Set(float64(entities))
	m.SnapshotEdges.Set(float64(edges))
	m.SnapshotDangling.Set(float64(dangling))
	m.SnapshotSwaps.Inc()
	m.SnapshotAge.Set(0)
}
