package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	apiContext "payos/internal/api/context"
	"payos/internal/client"
	"payos/internal/pkg/errors"
	"payos/internal/platform/audit"
	"payos/internal/platform/models"
	"payos/internal/platform/repositories"
)

type PaymentLinkHandler struct {
	gateway *client.Client
	links   *repositories.PaymentLinkRepository
	audit   *audit.Logger
}

func NewPaymentLinkHandler(gateway *client.Client, links *repositories.PaymentLinkRepository, auditLogger *audit.Logger) *PaymentLinkHandler {
	return &PaymentLinkHandler{gateway: gateway, links: links, audit: auditLogger}
}

// Create forwards the link to the gateway and starts tracking it.
func (h *PaymentLinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePaymentLinkRequest
	if err := readCamel(r, &req); err != nil {
		errors.WriteFromErr(w, err)
		return
	}

	resp, err := h.gateway.PaymentRequests.Create(r.Context(), &req)
	if err != nil {
		errors.WriteFromErr(w, err)
		return
	}

	status := resp.Status
	if status == "" {
		status = models.PaymentLinkPending
	}
	rec := &models.PaymentLinkRecord{
		ID:          resp.PaymentLinkID,
		OrderCode:   resp.OrderCode,
		Amount:      resp.Amount,
		Description: resp.Description,
		Status:      status,
		CheckoutURL: resp.CheckoutURL,
		QRCode:      resp.QRCode,
	}
	if err := h.links.Upsert(rec); err != nil {
		log.Error().Err(err).Int64("order_code", rec.OrderCode).Msg("failed to record payment link")
	}

	h.audit.Log(r.Context(), "payment_link.create", "payment_link", resp.PaymentLinkID, map[string]any{
		"order_code": resp.OrderCode,
		"amount":     resp.Amount,
	})
	writeSnake(w, http.StatusCreated, resp)
}

// Get fetches the current state from the gateway and refreshes the local record.
func (h *PaymentLinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := apiContext.Param(r.Context(), "link_id")
	link, err := h.gateway.PaymentRequests.Get(r.Context(), id)
	if err != nil {
		errors.WriteFromErr(w, err)
		return
	}
	h.sync(link)
	writeSnake(w, http.StatusOK, link)
}

type CancelPaymentLinkRequest struct {
	CancellationReason string `json:"cancellationReason"`
}

func (h *PaymentLinkHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := apiContext.Param(r.Context(), "link_id")

	var req CancelPaymentLinkRequest
	if r.ContentLength != 0 {
		if err := readCamel(r, &req); err != nil {
			errors.WriteFromErr(w, err)
			return
		}
	}

	link, err := h.gateway.PaymentRequests.Cancel(r.Context(), id, req.CancellationReason)
	if err != nil {
		errors.WriteFromErr(w, err)
		return
	}
	h.sync(link)

	h.audit.Log(r.Context(), "payment_link.cancel", "payment_link", link.ID, map[string]any{"reason": req.CancellationReason})
	writeSnake(w, http.StatusOK, link)
}

// QRCode renders the stored VietQR string of a tracked link as PNG.
func (h *PaymentLinkHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	rec, err := h.lookup(apiContext.Param(r.Context(), "link_id"))
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if rec == nil || rec.QRCode == "" {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Payment link not tracked", nil)
		return
	}

	size := 512
	if s := r.URL.Query().Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "size must be an integer", nil)
			return
		}
		size = n
	}

	png, err := client.GenerateQRCode(rec.QRCode, size)
	if err != nil {
		errors.WriteFromErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Write(png)
}

func (h *PaymentLinkHandler) lookup(id string) (*models.PaymentLinkRecord, error) {
	if orderCode, err := strconv.ParseInt(id, 10, 64); err == nil {
		return h.links.GetByOrderCode(orderCode)
	}
	return h.links.GetByID(id)
}

func (h *PaymentLinkHandler) sync(link *models.PaymentLink) {
	now := time.Now().Unix()
	err := h.links.Upsert(&models.PaymentLinkRecord{
		ID:           link.ID,
		OrderCode:    link.OrderCode,
		Amount:       link.Amount,
		AmountPaid:   link.AmountPaid,
		Status:       link.Status,
		LastSyncedAt: &now,
	})
	if err != nil {
		log.Error().Err(err).Int64("order_code", link.OrderCode).Msg("failed to sync payment link")
	}
}
