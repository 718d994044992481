// Package metrics provides Prometheus metrics collection for the salary dashboard.
// It defines the render, inference, asset and connection metrics exposed via the
// Prometheus metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the dashboard.
type Metrics struct {
	// Page metrics
	Renders      prometheus.Counter     // Total number of render cycles
	RenderErrors prometheus.Counter     // Total number of failed render cycles
	HTTPRequests *prometheus.CounterVec // HTTP requests by route and status code

	// Inference metrics
	Predictions       prometheus.Counter   // Total number of salary predictions
	PredictionErrors  prometheus.Counter   // Total number of failed salary predictions
	PredictionLatency prometheus.Histogram // Salary prediction latency in seconds
	NeighborLookups   prometheus.Counter   // Total number of nearest-neighbor lookups

	// Asset metrics
	AssetLoads        *prometheus.CounterVec   // Asset loads by artifact name
	AssetLoadDuration *prometheus.HistogramVec // Asset load duration by artifact name

	// Connection metrics
	WSClients prometheus.Gauge // Open websocket connections
}

// New creates and registers all Prometheus metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		Renders: factory.NewCounter(prometheus.CounterOpts{
			Name: "salaryboard_renders_total",
			Help: "Total number of render cycles",
		}),
		RenderErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "salaryboard_render_errors_total",
			Help: "Total number of failed render cycles",
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "salaryboard_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		Predictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "salaryboard_predictions_total",
			Help: "Total number of salary predictions",
		}),
		PredictionErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "salaryboard_prediction_errors_total",
			Help: "Total number of failed salary predictions",
		}),
		PredictionLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "salaryboard_prediction_latency_seconds",
			Help:    "Salary prediction latency in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		}),
		NeighborLookups: factory.NewCounter(prometheus.CounterOpts{
			Name: "salaryboard_neighbor_lookups_total",
			Help: "Total number of nearest-neighbor lookups",
		}),
		AssetLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "salaryboard_asset_loads_total",
			Help: "Asset loads by artifact name",
		}, []string{"asset"}),
		AssetLoadDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "salaryboard_asset_load_duration_seconds",
			Help:    "Asset load duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"asset"}),
		WSClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "salaryboard_ws_clients",
			Help: "Open websocket connections",
		}),
	}
}

// RenderErrorRate returns the share of render cycles that failed, or 0 before the
// first render.
func (m *Metrics) RenderErrorRate() float64 {
	total := counterValue(m.Renders)
	if total == 0 {
		return 0
	}
	return counterValue(m.RenderErrors) / total
}

func counterValue(c prometheus.Counter) float64 {
	var out dto.Metric
	if err := c.Write(&out); err != nil || out.Counter == nil {
		return 0
	}
	return out.Counter.GetValue()
}
