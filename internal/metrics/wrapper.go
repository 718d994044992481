package metrics

import "strconv"

// MetricsWrapper adapts Metrics to the narrow interfaces the other packages use
type MetricsWrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *MetricsWrapper {
	return &MetricsWrapper{m: m}
}

func (w *MetricsWrapper) RendersInc() {
	w.m.Renders.Inc()
}

func (w *MetricsWrapper) RenderErrorsInc() {
	w.m.RenderErrors.Inc()
}

func (w *MetricsWrapper) PredictionsInc() {
	w.m.Predictions.Inc()
}

func (w *MetricsWrapper) FailuresInc() {
	w.m.PredictionErrors.Inc()
}

func (w *MetricsWrapper) LatencyObserve(seconds float64) {
	w.m.PredictionLatency.Observe(seconds)
}

func (w *MetricsWrapper) NeighborLookupsInc() {
	w.m.NeighborLookups.Inc()
}

func (w *MetricsWrapper) AssetLoadsInc(name string) {
	w.m.AssetLoads.WithLabelValues(name).Inc()
}

func (w *MetricsWrapper) AssetLoadDurationObserve(name string, seconds float64) {
	w.m.AssetLoadDuration.WithLabelValues(name).Observe(seconds)
}

func (w *MetricsWrapper) WSClientsInc() {
	w.m.WSClients.Inc()
}

func (w *MetricsWrapper) WSClientsDec() {
	w.m.WSClients.Dec()
}

func (w *MetricsWrapper) HTTPRequestsInc(route string, code int) {
	w.m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func (w *MetricsWrapper) RenderErrorRate() float64 {
	return w.m.RenderErrorRate()
}
