package webhooks

import (
	"encoding/json"
	"fmt"

	"payos/internal/engine/signature"
	"payos/internal/pkg/errors"
	"payos/internal/platform/models"
)

const (
	msgSchemaInvalid = "Webhook schema validation failed"
	msgNoSignature   = "Invalid signature"
	msgNotIntegrity  = "Data not integrity"
)

// Verify checks a gateway webhook against the checksum key and returns its data.
//
// payload may be the raw body (string, []byte, json.RawMessage), a parsed
// signature.Value or map, or a models.Webhook. Failures are reported in this
// order: unreadable input (Malformed), bad envelope or data (Validation),
// missing signature (Validation), then signature mismatch (Integrity).
func Verify(payload any, key string) (signature.Value, error) {
	env, err := envelope(payload)
	if err != nil {
		return signature.Value{}, err
	}
	if env.Kind() != signature.KindMapping {
		return signature.Value{}, errors.Wrap(errors.KindValidation, msgSchemaInvalid, errors.ErrSchemaInvalid)
	}

	data, ok := env.Get("data")
	if !ok || data.Kind() != signature.KindMapping {
		return signature.Value{}, errors.Wrap(errors.KindValidation, msgSchemaInvalid, errors.ErrSchemaInvalid)
	}

	sigVal, _ := env.Get("signature")
	sig, ok := sigVal.AsString()
	if !ok || sig == "" {
		return signature.Value{}, errors.Wrap(errors.KindValidation, msgNoSignature, errors.ErrInvalidSignature)
	}

	expected, ok := signature.SignObject(data, key)
	if !ok || !signature.Equal(expected, sig) {
		return signature.Value{}, errors.Wrap(errors.KindIntegrity, msgNotIntegrity, errors.ErrInvalidSignature)
	}
	return data, nil
}

// VerifyData is Verify decoded into the typed webhook data.
func VerifyData(payload any, key string) (*models.WebhookData, error) {
	data, err := Verify(payload, key)
	if err != nil {
		return nil, err
	}
	var out models.WebhookData
	if err := data.Decode(&out); err != nil {
		return nil, errors.Wrap(errors.KindValidation, msgSchemaInvalid, fmt.Errorf("%w: %w", errors.ErrSchemaInvalid, err))
	}
	return &out, nil
}

func envelope(payload any) (signature.Value, error) {
	var raw []byte
	switch p := payload.(type) {
	case string:
		raw = []byte(p)
	case []byte:
		raw = p
	case json.RawMessage:
		raw = p
	case signature.Value, *signature.Value, map[string]any, models.Webhook, *models.Webhook:
		v, err := signature.FromAny(p)
		if err != nil {
			return signature.Value{}, errors.Wrap(errors.KindMalformed, "Invalid JSON: "+err.Error(), err)
		}
		return v, nil
	default:
		return signature.Value{}, errors.Newf(errors.KindMalformed, "Unsupported payload type: %T", payload)
	}

	v, err := signature.Parse(raw)
	if err != nil {
		return signature.Value{}, errors.Wrap(errors.KindMalformed, "Invalid JSON: "+err.Error(), err)
	}
	return v, nil
}
