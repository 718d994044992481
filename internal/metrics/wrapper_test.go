package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWrapper(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewWithRegistry(registry)
	wrapper := NewWrapper(metrics)

	require.NotNil(t, wrapper)
	assert.Same(t, metrics, wrapper.m)
}

func TestMetricsWrapper_Counters(t *testing.T) {
	metrics := NewWithRegistry(prometheus.NewRegistry())
	wrapper := NewWrapper(metrics)

	wrapper.RendersInc()
	wrapper.RendersInc()
	wrapper.RenderErrorsInc()
	wrapper.PredictionsInc()
	wrapper.FailuresInc()
	wrapper.NeighborLookupsInc()

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Renders))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RenderErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Predictions))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PredictionErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.NeighborLookups))
}

func TestMetricsWrapper_Labels(t *testing.T) {
	metrics := NewWithRegistry(prometheus.NewRegistry())
	wrapper := NewWrapper(metrics)

	wrapper.AssetLoadsInc("players.csv")
	wrapper.AssetLoadsInc("players.csv")
	wrapper.AssetLoadsInc("salary_model.json")
	wrapper.HTTPRequestsInc("/api/render", 400)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.AssetLoads.WithLabelValues("players.csv")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AssetLoads.WithLabelValues("salary_model.json")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("/api/render", "400")))
}

func TestMetricsWrapper_Gauge(t *testing.T) {
	metrics := NewWithRegistry(prometheus.NewRegistry())
	wrapper := NewWrapper(metrics)

	wrapper.WSClientsInc()
	wrapper.WSClientsInc()
	wrapper.WSClientsDec()
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WSClients))
}

func TestMetricsWrapper_Histograms(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewWithRegistry(registry)
	wrapper := NewWrapper(metrics)

	wrapper.LatencyObserve(0.002)
	wrapper.AssetLoadDurationObserve("players.csv", 0.1)

	assert.Equal(t, 1, testutil.CollectAndCount(metrics.PredictionLatency))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.AssetLoadDuration))
}

func TestRenderErrorRate(t *testing.T) {
	metrics := NewWithRegistry(prometheus.NewRegistry())
	wrapper := NewWrapper(metrics)
	assert.Equal(t, 0.0, wrapper.RenderErrorRate())

	for i := 0; i < 4; i++ {
		wrapper.RendersInc()
	}
	wrapper.RenderErrorsInc()
	assert.InDelta(t, 0.25, wrapper.RenderErrorRate(), 1e-12)
}

func TestNewWithRegistry_DuplicatePanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewWithRegistry(registry)
	assert.Panics(t, func() { NewWithRegistry(registry) })
}
