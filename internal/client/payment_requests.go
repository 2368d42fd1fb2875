package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"payos/internal/platform/models"
)

const paymentRequestsPath = "/v2/payment-requests"

type PaymentRequests struct {
	client   *Client
	Invoices *Invoices
}

// Create signs req with the payment-request field set and opens a payment link.
func (r *PaymentRequests) Create(ctx context.Context, req *models.CreatePaymentLinkRequest) (*models.CreatePaymentLinkResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out models.CreatePaymentLinkResponse
	err := r.client.Request(ctx, RequestOptions{
		Method:            http.MethodPost,
		Path:              paymentRequestsPath,
		Body:              req,
		SignatureRequest:  SignRequestCreatePaymentLink,
		SignatureResponse: VerifyResponseBody,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Get accepts a payment link id or an order code.
func (r *PaymentRequests) Get(ctx context.Context, id string) (*models.PaymentLink, error) {
	var out models.PaymentLink
	err := r.client.Request(ctx, RequestOptions{
		Method:            http.MethodGet,
		Path:              paymentRequestPath(id),
		SignatureResponse: VerifyResponseBody,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PaymentRequests) GetByOrderCode(ctx context.Context, orderCode int64) (*models.PaymentLink, error) {
	return r.Get(ctx, strconv.FormatInt(orderCode, 10))
}

// Cancel cancels an unpaid link. reason is optional.
func (r *PaymentRequests) Cancel(ctx context.Context, id, reason string) (*models.PaymentLink, error) {
	var out models.PaymentLink
	err := r.client.Request(ctx, RequestOptions{
		Method:            http.MethodPost,
		Path:              paymentRequestPath(id) + "/cancel",
		Body:              models.CancelPaymentLinkRequest{CancellationReason: reason},
		SignatureResponse: VerifyResponseBody,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *PaymentRequests) CancelByOrderCode(ctx context.Context, orderCode int64, reason string) (*models.PaymentLink, error) {
	return r.Cancel(ctx, strconv.FormatInt(orderCode, 10), reason)
}

// QRCodePNG renders the VietQR payload of a created link.
func (r *PaymentRequests) QRCodePNG(link *models.CreatePaymentLinkResponse, size int) ([]byte, error) {
	return GenerateQRCode(link.QRCode, size)
}

type Invoices struct {
	client *Client
}

func (i *Invoices) Get(ctx context.Context, id string) (*models.InvoicesInfo, error) {
	var out models.InvoicesInfo
	err := i.client.Request(ctx, RequestOptions{
		Method:            http.MethodGet,
		Path:              paymentRequestPath(id) + "/invoices",
		SignatureResponse: VerifyResponseBody,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Invoices == nil {
		out.Invoices = []models.Invoice{}
	}
	return &out, nil
}

// Download fetches the invoice document of a payment link.
func (i *Invoices) Download(ctx context.Context, invoiceID, id string) (*FileResponse, error) {
	return i.client.Download(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   paymentRequestPath(id) + "/invoices/" + url.PathEscape(invoiceID) + "/download",
	})
}

func paymentRequestPath(id string) string {
	return paymentRequestsPath + "/" + url.PathEscape(id)
}
