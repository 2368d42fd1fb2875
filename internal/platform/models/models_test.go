package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"payos/internal/pkg/errors"
)

func validRequest() CreatePaymentLinkRequest {
	return CreatePaymentLinkRequest{
		OrderCode:   12345,
		Amount:      2000,
		Description: "Test payment",
		CancelURL:   "http://localhost/cancel",
		ReturnURL:   "http://localhost/return",
	}
}

func TestCreatePaymentLinkRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *CreatePaymentLinkRequest)
		wantErr string
	}{
		{"valid", func(r *CreatePaymentLinkRequest) {}, ""},
		{"zero amount", func(r *CreatePaymentLinkRequest) { r.Amount = 0 }, "amount must be a positive number"},
		{"negative order code", func(r *CreatePaymentLinkRequest) { r.OrderCode = -1 }, "orderCode must be a positive number"},
		{"no description", func(r *CreatePaymentLinkRequest) { r.Description = "" }, "description is required"},
		{"relative cancel url", func(r *CreatePaymentLinkRequest) { r.CancelURL = "/cancel" }, "cancelUrl"},
		{"bad return url", func(r *CreatePaymentLinkRequest) { r.ReturnURL = "mailto:x" }, "returnUrl"},
		{"bad email", func(r *CreatePaymentLinkRequest) { r.BuyerEmail = "nope" }, "buyerEmail"},
		{"good email", func(r *CreatePaymentLinkRequest) { r.BuyerEmail = "buyer@email.com" }, ""},
		{"bad item", func(r *CreatePaymentLinkRequest) { r.Items = []ItemData{{Name: "x", Quantity: 0, Price: 1}} }, "items[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
			assert.True(t, errors.Is(err, errors.ErrValidation))
		})
	}
}

func TestPaymentLinkStatusFinal(t *testing.T) {
	assert.True(t, PaymentLinkPaid.Final())
	assert.True(t, PaymentLinkCancelled.Final())
	assert.False(t, PaymentLinkPending.Final())
	assert.False(t, PaymentLinkUnderpaid.Final())
}

func TestGetPayoutListParamsQuery(t *testing.T) {
	q := GetPayoutListParams{
		ReferenceID:   "ref",
		ApprovalState: PayoutCompleted,
		Category:      []string{"salary", "bonus"},
		Limit:         10,
	}.Query()

	assert.Equal(t, map[string]any{
		"referenceId":   "ref",
		"approvalState": "COMPLETED",
		"category":      "salary,bonus",
		"limit":         10,
	}, q)
	assert.Empty(t, GetPayoutListParams{}.Query())
}

func TestSubscriptionWants(t *testing.T) {
	s := &Subscription{Events: []string{EventPaymentSucceeded}}
	assert.True(t, s.Wants(EventPaymentSucceeded))
	assert.False(t, s.Wants(EventPaymentFailed))

	all := &Subscription{Events: []string{EventAll}}
	assert.True(t, all.Wants(EventPaymentFailed))
}
