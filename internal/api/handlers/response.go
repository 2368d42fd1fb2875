package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"payos/internal/engine/signature"
	"payos/internal/pkg/errors"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeSnake renders gateway models with snake_case keys.
func writeSnake(w http.ResponseWriter, status int, v any) {
	val, err := signature.FromAny(v)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to encode response", nil)
		return
	}
	body, err := signature.ToSnakeKeys(val, true).MarshalJSON()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to encode response", nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// readCamel decodes a snake_case (or camelCase) JSON body into a gateway model.
func readCamel(r *http.Request, dst any) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return errors.Wrap(errors.KindMalformed, "Invalid request body", err)
	}
	val, err := signature.Parse(raw)
	if err != nil {
		return errors.Wrap(errors.KindMalformed, "Invalid request body", err)
	}
	if val.Kind() != signature.KindMapping {
		return errors.New(errors.KindMalformed, "Invalid request body")
	}
	if err := signature.ToCamelKeys(val, true).Decode(dst); err != nil {
		return errors.Wrap(errors.KindMalformed, "Invalid request body", err)
	}
	return nil
}

// pageParams reads limit and offset, clamping limit to 1..100.
func pageParams(r *http.Request) (limit, offset int) {
	limit, offset = 20, 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = min(v, 100)
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
