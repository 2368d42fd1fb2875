package handlers

import (
	"net/http"

	"payos/internal/pkg/errors"
	"payos/internal/platform/audit"
)

type AuditHandler struct {
	audit *audit.Logger
}

func NewAuditHandler(logger *audit.Logger) *AuditHandler {
	return &AuditHandler{audit: logger}
}

func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	entries, err := h.audit.List(limit, offset)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": entries, "limit": limit, "offset": offset})
}
