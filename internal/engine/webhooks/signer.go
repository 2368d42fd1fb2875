package webhooks

import (
	"payos/internal/engine/signature"
	"payos/internal/platform/models"
)

// SignForward signs an outgoing event for a subscriber. The signature covers
// the canonical form of the event, so subscribers can verify either the raw
// body or a re-encoded copy.
func SignForward(secret string, event *models.ForwardedEvent) (string, error) {
	v, err := signature.FromAny(event)
	if err != nil {
		return "", err
	}
	return signature.Sign(secret, v)
}

// VerifyForward is the subscriber side of SignForward.
func VerifyForward(secret string, body []byte, got string) bool {
	v, err := signature.Parse(body)
	if err != nil {
		return false
	}
	want, err := signature.Sign(secret, v)
	if err != nil {
		return false
	}
	return signature.Equal(want, got)
}
