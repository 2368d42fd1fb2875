package handlers

import (
	"net/http"

	"payos/internal/engine/webhooks"
)

type MetricsHandler struct {
	metrics *webhooks.Metrics
}

func NewMetricsHandler(metrics *webhooks.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

func (h *MetricsHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	h.metrics.WritePrometheus(w)
}
