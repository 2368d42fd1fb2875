package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	apiContext "payos/internal/api/context"
	"payos/internal/pkg/errors"
	"payos/internal/pkg/validator"
	"payos/internal/platform/audit"
	"payos/internal/platform/models"
	"payos/internal/platform/repositories"
)

var knownEvents = map[string]bool{
	models.EventPaymentSucceeded: true,
	models.EventPaymentFailed:    true,
	models.EventAll:              true,
}

type SubscriptionHandler struct {
	subs  *repositories.SubscriptionRepository
	audit *audit.Logger
}

func NewSubscriptionHandler(subs *repositories.SubscriptionRepository, auditLogger *audit.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs, audit: auditLogger}
}

type CreateSubscriptionRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
	Secret string   `json:"secret"`
}

func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if err := validator.HTTPURL("url", req.URL); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}
	if len(req.Events) == 0 {
		req.Events = []string{models.EventAll}
	}
	for _, e := range req.Events {
		if !knownEvents[e] {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Unknown event type: "+e, nil)
			return
		}
	}
	if req.Secret == "" {
		req.Secret = "whsec_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	}

	sub := &models.Subscription{URL: req.URL, Events: req.Events, Secret: req.Secret}
	if err := h.subs.Create(sub); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create subscription", nil)
		return
	}

	h.audit.Log(r.Context(), "subscription.create", "subscription", sub.ID, map[string]any{"url": sub.URL, "events": sub.Events})
	writeJSON(w, http.StatusCreated, sub)
}

func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subs.List()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": subs})
}

func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := apiContext.Param(r.Context(), "subscription_id")
	deleted, err := h.subs.Delete(id)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if !deleted {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Subscription not found", nil)
		return
	}

	h.audit.Log(r.Context(), "subscription.delete", "subscription", id, nil)
	w.WriteHeader(http.StatusNoContent)
}
