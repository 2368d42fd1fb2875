package handlers

import (
	"net/http"

	"payos/internal/engine/analytics"
	"payos/internal/pkg/errors"
)

type StatsHandler struct {
	repo *analytics.Repository
}

func NewStatsHandler(repo *analytics.Repository) *StatsHandler {
	return &StatsHandler{repo: repo}
}

// Daily returns per-day webhook counts for ?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *StatsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stats, err := h.repo.DailyStats(q.Get("from"), q.Get("to"))
	if err != nil {
		errors.WriteFromErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": stats})
}
