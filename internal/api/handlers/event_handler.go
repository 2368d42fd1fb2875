package handlers

import (
	"net/http"

	apiContext "payos/internal/api/context"
	"payos/internal/engine/webhooks"
	"payos/internal/pkg/errors"
	"payos/internal/platform/audit"
	"payos/internal/platform/repositories"
)

type EventHandler struct {
	events     *repositories.EventRepository
	dispatcher *webhooks.Dispatcher
	audit      *audit.Logger
}

func NewEventHandler(events *repositories.EventRepository, dispatcher *webhooks.Dispatcher, auditLogger *audit.Logger) *EventHandler {
	return &EventHandler{events: events, dispatcher: dispatcher, audit: auditLogger}
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	events, total, err := h.events.List(limit, offset)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":   events,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.events.GetByID(apiContext.Param(r.Context(), "event_id"))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if rec == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Event not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Redeliver forwards a stored event again and waits for the outcome.
func (h *EventHandler) Redeliver(w http.ResponseWriter, r *http.Request) {
	id := apiContext.Param(r.Context(), "event_id")
	rec, err := h.events.GetByID(id)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if rec == nil {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Event not found", nil)
		return
	}

	deliverErr := h.dispatcher.DeliverSync(r.Context(), rec)
	h.audit.Log(r.Context(), "event.redeliver", "event", id, map[string]any{"ok": deliverErr == nil})

	updated, err := h.events.GetByID(id)
	if err != nil || updated == nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if deliverErr != nil {
		errors.WriteError(w, http.StatusBadGateway, errors.ErrCodeGatewayUnavailable, "Redelivery failed", map[string]any{
			"error": deliverErr.Error(),
			"event": updated,
		})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
