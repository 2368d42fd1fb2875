package client

import (
	"context"
	"net/http"
	"strings"

	"payos/internal/engine/webhooks"
	"payos/internal/pkg/errors"
	"payos/internal/platform/models"
)

type Webhooks struct {
	client *Client
}

// Verify checks a webhook body against the checksum key and returns its data.
func (w *Webhooks) Verify(payload any) (*models.WebhookData, error) {
	return webhooks.VerifyData(payload, w.client.cfg.ChecksumKey)
}

// Confirm registers webhookURL with the gateway. The gateway calls the URL
// once before accepting it.
func (w *Webhooks) Confirm(ctx context.Context, webhookURL string) (*models.ConfirmWebhookResponse, error) {
	if strings.TrimSpace(webhookURL) == "" {
		return nil, errors.Wrap(errors.KindValidation, "Webhook URL invalid", errors.ErrInvalidURL)
	}

	var out models.ConfirmWebhookResponse
	err := w.client.Request(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   "/confirm-webhook",
		Body:   models.ConfirmWebhookRequest{WebhookURL: webhookURL},
	}, &out)
	if err != nil {
		var apiErr *errors.APIError
		if errors.As(err, &apiErr) {
			return nil, errors.Wrap(errors.KindAPI, "Webhook validation failed", err)
		}
		return nil, err
	}
	return &out, nil
}
