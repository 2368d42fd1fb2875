package client

import (
	"context"
	"net/http"
	"net/url"

	"payos/internal/platform/models"
)

const (
	payoutsPath       = "/v1/payouts"
	idempotencyHeader = "x-idempotency-key"
)

type Payouts struct {
	client *Client
	Batch  *PayoutBatch
}

// Create submits a single transfer. An empty idempotencyKey is replaced by a
// fresh UUID.
func (p *Payouts) Create(ctx context.Context, req *models.PayoutRequest, idempotencyKey string) (*models.Payout, error) {
	var out models.Payout
	err := p.client.Request(ctx, RequestOptions{
		Method:            http.MethodPost,
		Path:              payoutsPath,
		Body:              req,
		Headers:           map[string]string{idempotencyHeader: p.client.idempotencyKey(idempotencyKey)},
		SignatureRequest:  SignRequestHeader,
		SignatureResponse: VerifyResponseHeader,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *Payouts) Get(ctx context.Context, id string) (*models.Payout, error) {
	var out models.Payout
	err := p.client.Request(ctx, RequestOptions{
		Method:            http.MethodGet,
		Path:              payoutsPath + "/" + url.PathEscape(id),
		SignatureResponse: VerifyResponseHeader,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns the first page matching params. Use the page to walk the rest.
func (p *Payouts) List(ctx context.Context, params models.GetPayoutListParams) (*Page[models.Payout], error) {
	var fetch PageFetcher[models.Payout]
	fetch = func(ctx context.Context, offset int) (*Page[models.Payout], error) {
		q := params
		q.Offset = offset
		var out models.PayoutListResponse
		err := p.client.Request(ctx, RequestOptions{
			Method:            http.MethodGet,
			Path:              payoutsPath,
			Query:             q.Query(),
			SignatureResponse: VerifyResponseHeader,
		}, &out)
		if err != nil {
			return nil, err
		}
		return NewPage(out.Payouts, out.Pagination, fetch), nil
	}
	return fetch(ctx, params.Offset)
}

// EstimateCredit returns the credit a payout would consume.
func (p *Payouts) EstimateCredit(ctx context.Context, req *models.PayoutRequest) (*models.EstimateCredit, error) {
	var out models.EstimateCredit
	err := p.client.Request(ctx, RequestOptions{
		Method:           http.MethodPost,
		Path:             payoutsPath + "/estimate-credit",
		Body:             req,
		SignatureRequest: SignRequestHeader,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type PayoutBatch struct {
	client *Client
}

func (b *PayoutBatch) Create(ctx context.Context, req *models.PayoutBatchRequest, idempotencyKey string) (*models.Payout, error) {
	var out models.Payout
	err := b.client.Request(ctx, RequestOptions{
		Method:            http.MethodPost,
		Path:              payoutsPath + "/batch",
		Body:              req,
		Headers:           map[string]string{idempotencyHeader: b.client.idempotencyKey(idempotencyKey)},
		SignatureRequest:  SignRequestHeader,
		SignatureResponse: VerifyResponseHeader,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type PayoutsAccount struct {
	client *Client
}

func (a *PayoutsAccount) Balance(ctx context.Context) (*models.PayoutAccountInfo, error) {
	var out models.PayoutAccountInfo
	err := a.client.Request(ctx, RequestOptions{
		Method:            http.MethodGet,
		Path:              "/v1/payouts-account/balance",
		SignatureResponse: VerifyResponseHeader,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) idempotencyKey(given string) string {
	if given != "" {
		return given
	}
	return c.newIdempotencyID()
}
