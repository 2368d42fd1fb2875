package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"payos/internal/engine/webhooks"
	"payos/internal/platform/models"
	"payos/internal/platform/repositories"
)

// WebhookHandler receives gateway notifications.
type WebhookHandler struct {
	checksumKey string
	events      *repositories.EventRepository
	links       *repositories.PaymentLinkRepository
	dispatcher  *webhooks.Dispatcher
	metrics     *webhooks.Metrics
}

func NewWebhookHandler(checksumKey string, events *repositories.EventRepository, links *repositories.PaymentLinkRepository, dispatcher *webhooks.Dispatcher, metrics *webhooks.Metrics) *WebhookHandler {
	return &WebhookHandler{
		checksumKey: checksumKey,
		events:      events,
		links:       links,
		dispatcher:  dispatcher,
		metrics:     metrics,
	}
}

type receiveResponse struct {
	Error *string         `json:"error"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func rejectWebhook(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, receiveResponse{Error: &msg})
}

// Receive verifies a gateway webhook, stores it once and forwards it to subscriptions.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	h.metrics.Received.Add(1)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.metrics.Rejected.Add(1)
		rejectWebhook(w, "Invalid request body")
		return
	}

	data, err := webhooks.Verify(body, h.checksumKey)
	if err != nil {
		h.metrics.Rejected.Add(1)
		log.Warn().Err(err).Msg("webhook rejected")
		rejectWebhook(w, err.Error())
		return
	}
	h.metrics.Verified.Add(1)

	var typed models.WebhookData
	var env struct {
		Signature string `json:"signature"`
	}
	payload, err := data.MarshalJSON()
	if err == nil {
		err = json.Unmarshal(payload, &typed)
	}
	if err == nil {
		err = json.Unmarshal(body, &env)
	}
	if err != nil {
		h.metrics.Rejected.Add(1)
		rejectWebhook(w, "Webhook schema validation failed")
		return
	}

	rec := &models.EventRecord{
		Type:          eventType(typed.Code),
		OrderCode:     typed.OrderCode,
		PaymentLinkID: typed.PaymentLinkID,
		Code:          typed.Code,
		Amount:        typed.Amount,
		Signature:     env.Signature,
		Payload:       payload,
	}

	created, err := h.events.Create(rec)
	if err != nil {
		log.Error().Err(err).Int64("order_code", typed.OrderCode).Msg("failed to store webhook")
		msg := "Internal error"
		writeJSON(w, http.StatusInternalServerError, receiveResponse{Error: &msg})
		return
	}
	if !created {
		// the gateway retried a webhook we already accepted
		h.metrics.Duplicates.Add(1)
		writeJSON(w, http.StatusOK, receiveResponse{Data: payload})
		return
	}

	if typed.Code == "00" {
		if err := h.links.UpdateStatus(typed.OrderCode, models.PaymentLinkPaid, typed.Amount); err != nil {
			log.Error().Err(err).Int64("order_code", typed.OrderCode).Msg("failed to mark payment link paid")
		}
	}

	h.dispatcher.Dispatch(rec)

	log.Info().Str("event_id", rec.ID).Str("type", rec.Type).Int64("order_code", rec.OrderCode).Msg("webhook accepted")
	writeJSON(w, http.StatusOK, receiveResponse{Data: payload})
}

func eventType(code string) string {
	if code == "00" {
		return models.EventPaymentSucceeded
	}
	return models.EventPaymentFailed
}
