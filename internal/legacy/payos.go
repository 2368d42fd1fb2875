package legacy

import (
	"context"

	"payos/internal/client"
	"payos/internal/engine/signature"
	"payos/internal/engine/webhooks"
	"payos/internal/platform/config"
	"payos/internal/platform/models"
)

// PayOS is the v0 facade. Every method delegates to *client.Client.
type PayOS struct {
	client *client.Client
}

func New(clientID, apiKey, checksumKey, partnerCode string, opts ...client.Option) (*PayOS, error) {
	cfg := config.DefaultPayOS()
	cfg.ClientID = clientID
	cfg.APIKey = apiKey
	cfg.ChecksumKey = checksumKey
	cfg.PartnerCode = partnerCode
	c, err := client.New(cfg, opts...)
	if err != nil {
		return nil, &PayOSError{Code: ErrorCodeInternalServerError, Message: err.Error(), Err: err}
	}
	return &PayOS{client: c}, nil
}

func Wrap(c *client.Client) *PayOS {
	return &PayOS{client: c}
}

func (p *PayOS) CreatePaymentLink(ctx context.Context, data PaymentData) (*models.CreatePaymentLinkResponse, error) {
	resp, err := p.client.PaymentRequests.Create(ctx, data.request())
	return resp, translate(err)
}

// GetPaymentLinkInformation accepts a payment link id or an order code.
func (p *PayOS) GetPaymentLinkInformation(ctx context.Context, orderID string) (*models.PaymentLink, error) {
	link, err := p.client.PaymentRequests.Get(ctx, orderID)
	return link, translate(err)
}

func (p *PayOS) CancelPaymentLink(ctx context.Context, orderID, cancellationReason string) (*models.PaymentLink, error) {
	link, err := p.client.PaymentRequests.Cancel(ctx, orderID, cancellationReason)
	return link, translate(err)
}

func (p *PayOS) ConfirmWebhook(ctx context.Context, webhookURL string) (string, error) {
	resp, err := p.client.Webhooks.Confirm(ctx, webhookURL)
	if err != nil {
		return "", translate(err)
	}
	return resp.WebhookURL, nil
}

// VerifyPaymentWebhookData verifies a webhook body. Snake_case keys in the
// envelope or its data are accepted and renamed before verification.
func (p *PayOS) VerifyPaymentWebhookData(body any) (*models.WebhookData, error) {
	var data signature.Value
	switch b := body.(type) {
	case []byte, string:
		env, err := webhooks.Verify(b, p.client.ChecksumKey())
		if err != nil {
			return nil, translate(err)
		}
		data = env
	default:
		camel, err := camelValue(body)
		if err != nil {
			return nil, err
		}
		if inner, ok := camel.Get("data"); ok && inner.Kind() == signature.KindMapping {
			camel = camel.With("data", signature.ToCamelKeys(inner, false))
		}
		env, err := webhooks.Verify(camel, p.client.ChecksumKey())
		if err != nil {
			return nil, translate(err)
		}
		data = env
	}

	var out models.WebhookData
	if err := data.Decode(&out); err != nil {
		return nil, &PayOSError{Code: ErrorCodeInternalServerError, Message: MessageNoData, Err: err}
	}
	return &out, nil
}
