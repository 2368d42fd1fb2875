package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is returned for non-2xx responses and for envelopes whose code is not "00".
type APIError struct {
	StatusCode int
	Code       string
	Desc       string
	Message    string
	Body       []byte
}

var (
	ErrBadRequest      = &APIError{StatusCode: http.StatusBadRequest}
	ErrUnauthorized    = &APIError{StatusCode: http.StatusUnauthorized}
	ErrForbidden       = &APIError{StatusCode: http.StatusForbidden}
	ErrNotFound        = &APIError{StatusCode: http.StatusNotFound}
	ErrTooManyRequests = &APIError{StatusCode: http.StatusTooManyRequests}
	// ErrInternalServer matches every 5xx status.
	ErrInternalServer = &APIError{StatusCode: http.StatusInternalServerError}
)

func NewAPIError(status int, code, desc string, body []byte) *APIError {
	msg := desc
	if msg == "" {
		msg = fmt.Sprintf("HTTP %d error", status)
	}
	return &APIError{StatusCode: status, Code: code, Desc: desc, Message: msg, Body: body}
}

// APIErrorFromBody builds an APIError from a gateway error body, reading the
// {code, desc} envelope when the body carries one.
func APIErrorFromBody(status int, body []byte) *APIError {
	var env struct {
		Code string `json:"code"`
		Desc string `json:"desc"`
	}
	_ = json.Unmarshal(body, &env)
	return NewAPIError(status, env.Code, env.Desc, body)
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d error", e.StatusCode)
}

func (e *APIError) Is(target error) bool {
	switch t := target.(type) {
	case *Error:
		return t.Kind == KindAPI && t.Message == "" && t.Err == nil
	case *APIError:
		if t.Message != "" || t.Code != "" {
			return false
		}
		switch {
		case t.StatusCode == 0:
			return true
		case t.StatusCode == http.StatusInternalServerError:
			return e.StatusCode >= 500 && e.StatusCode < 600
		}
		return t.StatusCode == e.StatusCode
	}
	return false
}
