package handlers

import (
	"net/http"

	"payos/internal/client"
	"payos/internal/pkg/errors"
	"payos/internal/platform/audit"
	"payos/internal/platform/models"
)

// ConfirmHandler registers the merchant webhook URL with the gateway.
type ConfirmHandler struct {
	gateway *client.Client
	audit   *audit.Logger
}

func NewConfirmHandler(gateway *client.Client, auditLogger *audit.Logger) *ConfirmHandler {
	return &ConfirmHandler{gateway: gateway, audit: auditLogger}
}

func (h *ConfirmHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req models.ConfirmWebhookRequest
	if err := readCamel(r, &req); err != nil {
		errors.WriteFromErr(w, err)
		return
	}

	resp, err := h.gateway.Webhooks.Confirm(r.Context(), req.WebhookURL)
	if err != nil {
		errors.WriteFromErr(w, err)
		return
	}

	h.audit.Log(r.Context(), "webhook.confirm", "webhook", resp.WebhookURL, nil)
	writeSnake(w, http.StatusOK, resp)
}
