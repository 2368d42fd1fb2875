package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	apiContext "payos/internal/api/context"
	"payos/internal/client"
	"payos/internal/engine/signature"
	"payos/internal/pkg/errors"
	"payos/internal/platform/audit"
	"payos/internal/platform/models"
	"payos/internal/platform/repositories"
)

const payoutScope = "payouts"

type PayoutHandler struct {
	gateway        *client.Client
	idempotency    *repositories.IdempotencyRepository
	audit          *audit.Logger
	idempotencyTTL time.Duration
}

func NewPayoutHandler(gateway *client.Client, idempotency *repositories.IdempotencyRepository, auditLogger *audit.Logger, ttl time.Duration) *PayoutHandler {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &PayoutHandler{gateway: gateway, idempotency: idempotency, audit: auditLogger, idempotencyTTL: ttl}
}

// Create sends a payout. A repeated Idempotency-Key within the TTL replays
// the first successful response instead of calling the gateway again.
func (h *PayoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("Idempotency-Key")
	if key != "" {
		prev, err := h.idempotency.Get(payoutScope, key, time.Now().Add(-h.idempotencyTTL).Unix())
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
			return
		}
		if prev != nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Idempotent-Replayed", "true")
			w.WriteHeader(prev.StatusCode)
			w.Write(prev.ResponseBody)
			return
		}
	} else {
		key = signature.NewIdempotencyID()
	}

	var req models.PayoutRequest
	if err := readCamel(r, &req); err != nil {
		errors.WriteFromErr(w, err)
		return
	}

	payout, err := h.gateway.Payouts.Create(r.Context(), &req, key)
	if err != nil {
		errors.WriteFromErr(w, err)
		return
	}

	var buf bytes.Buffer
	rec := &bufferedWriter{header: w.Header(), body: &buf}
	writeSnake(rec, http.StatusCreated, payout)

	if rec.status < 400 {
		err := h.idempotency.Save(&models.IdempotencyKey{
			Key:          key,
			Scope:        payoutScope,
			StatusCode:   rec.status,
			ResponseBody: buf.Bytes(),
		})
		if err != nil {
			log.Error().Err(err).Str("payout_id", payout.ID).Msg("failed to store idempotency key")
		}
	}

	h.audit.Log(r.Context(), "payout.create", "payout", payout.ID, map[string]any{
		"reference_id": req.ReferenceID,
		"amount":       req.Amount,
	})

	w.Header().Set("Idempotency-Key", key)
	w.WriteHeader(rec.status)
	w.Write(buf.Bytes())
}

func (h *PayoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	payout, err := h.gateway.Payouts.Get(r.Context(), apiContext.Param(r.Context(), "payout_id"))
	if err != nil {
		errors.WriteFromErr(w, err)
		return
	}
	writeSnake(w, http.StatusOK, payout)
}

func (h *PayoutHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	q := r.URL.Query()
	params := models.GetPayoutListParams{
		ReferenceID:   q.Get("reference_id"),
		ApprovalState: models.PayoutApprovalState(q.Get("approval_state")),
		FromDate:      q.Get("from_date"),
		ToDate:        q.Get("to_date"),
		Limit:         limit,
		Offset:        offset,
	}

	page, err := h.gateway.Payouts.List(r.Context(), params)
	if err != nil {
		errors.WriteFromErr(w, err)
		return
	}
	writeSnake(w, http.StatusOK, map[string]any{
		"data":       page.Data,
		"pagination": page.Pagination,
	})
}

func (h *PayoutHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req models.PayoutRequest
	if err := readCamel(r, &req); err != nil {
		errors.WriteFromErr(w, err)
		return
	}
	estimate, err := h.gateway.Payouts.EstimateCredit(r.Context(), &req)
	if err != nil {
		errors.WriteFromErr(w, err)
		return
	}
	writeSnake(w, http.StatusOK, estimate)
}

func (h *PayoutHandler) Balance(w http.ResponseWriter, r *http.Request) {
	info, err := h.gateway.PayoutsAccount.Balance(r.Context())
	if err != nil {
		errors.WriteFromErr(w, err)
		return
	}
	writeSnake(w, http.StatusOK, info)
}

// bufferedWriter captures a response so it can be stored before it is sent.
type bufferedWriter struct {
	header http.Header
	body   *bytes.Buffer
	status int
}

func (b *bufferedWriter) Header() http.Header         { return b.header }
func (b *bufferedWriter) Write(p []byte) (int, error) { return b.body.Write(p) }
func (b *bufferedWriter) WriteHeader(code int)        { b.status = code }
