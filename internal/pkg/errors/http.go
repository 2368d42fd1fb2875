package errors

import (
	"encoding/json"
	"net/http"
)

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

const (
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	ErrCodeSignatureInvalid   = "SIGNATURE_INVALID"
	ErrCodeGatewayUnavailable = "GATEWAY_UNAVAILABLE"
	ErrCodeGatewayRejected    = "GATEWAY_REJECTED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

func WriteError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    code,
		Details: details,
	})
}

// WriteFromErr maps an SDK error onto an HTTP status and error code.
func WriteFromErr(w http.ResponseWriter, err error) {
	var apiErr *APIError
	if As(err, &apiErr) {
		status := http.StatusBadGateway
		switch {
		case apiErr.StatusCode == http.StatusNotFound:
			status = http.StatusNotFound
		case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
			status = http.StatusUnprocessableEntity
		}
		WriteError(w, status, ErrCodeGatewayRejected, apiErr.Error(), map[string]string{
			"code": apiErr.Code,
			"desc": apiErr.Desc,
		})
		return
	}

	switch KindOf(err) {
	case KindValidation, KindMalformed:
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error(), nil)
	case KindIntegrity:
		WriteError(w, http.StatusBadGateway, ErrCodeSignatureInvalid, err.Error(), nil)
	case KindConnection, KindTimeout:
		WriteError(w, http.StatusBadGateway, ErrCodeGatewayUnavailable, err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, ErrCodeInternal, "Internal error", nil)
	}
}
