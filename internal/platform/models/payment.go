package models

import (
	"payos/internal/pkg/errors"
	"payos/internal/pkg/validator"
)

type PaymentLinkStatus string

const (
	PaymentLinkPending    PaymentLinkStatus = "PENDING"
	PaymentLinkCancelled  PaymentLinkStatus = "CANCELLED"
	PaymentLinkUnderpaid  PaymentLinkStatus = "UNDERPAID"
	PaymentLinkPaid       PaymentLinkStatus = "PAID"
	PaymentLinkExpired    PaymentLinkStatus = "EXPIRED"
	PaymentLinkProcessing PaymentLinkStatus = "PROCESSING"
	PaymentLinkFailed     PaymentLinkStatus = "FAILED"
)

// Final reports whether the gateway will no longer change the status.
func (s PaymentLinkStatus) Final() bool {
	switch s {
	case PaymentLinkPaid, PaymentLinkCancelled, PaymentLinkExpired, PaymentLinkFailed:
		return true
	}
	return false
}

type ItemData struct {
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
	Price         int64  `json:"price"`
	Unit          string `json:"unit,omitempty"`
	TaxPercentage *int   `json:"taxPercentage,omitempty"`
}

type InvoiceRequest struct {
	BuyerNotGetInvoice *bool `json:"buyerNotGetInvoice,omitempty"`
	TaxPercentage      *int  `json:"taxPercentage,omitempty"`
}

type CreatePaymentLinkRequest struct {
	OrderCode        int64           `json:"orderCode"`
	Amount           int64           `json:"amount"`
	Description      string          `json:"description"`
	CancelURL        string          `json:"cancelUrl"`
	ReturnURL        string          `json:"returnUrl"`
	Signature        string          `json:"signature,omitempty"`
	Items            []ItemData      `json:"items,omitempty"`
	BuyerName        string          `json:"buyerName,omitempty"`
	BuyerCompanyName string          `json:"buyerCompanyName,omitempty"`
	BuyerTaxCode     string          `json:"buyerTaxCode,omitempty"`
	BuyerEmail       string          `json:"buyerEmail,omitempty"`
	BuyerPhone       string          `json:"buyerPhone,omitempty"`
	BuyerAddress     string          `json:"buyerAddress,omitempty"`
	Invoice          *InvoiceRequest `json:"invoice,omitempty"`
	ExpiredAt        *int64          `json:"expiredAt,omitempty"`
}

// Validate checks the fields the gateway rejects outright.
func (r *CreatePaymentLinkRequest) Validate() error {
	if err := validator.PositiveNumber("orderCode", r.OrderCode); err != nil {
		return errors.Wrap(errors.KindValidation, err.Error(), err)
	}
	if err := validator.PositiveNumber("amount", r.Amount); err != nil {
		return errors.Wrap(errors.KindValidation, err.Error(), err)
	}
	if r.Description == "" {
		return errors.New(errors.KindValidation, "description is required")
	}
	if err := validator.HTTPURL("cancelUrl", r.CancelURL); err != nil {
		return errors.Wrap(errors.KindValidation, err.Error(), err)
	}
	if err := validator.HTTPURL("returnUrl", r.ReturnURL); err != nil {
		return errors.Wrap(errors.KindValidation, err.Error(), err)
	}
	if r.BuyerEmail != "" {
		if err := validator.Email(r.BuyerEmail); err != nil {
			return errors.Wrap(errors.KindValidation, "buyerEmail: "+err.Error(), err)
		}
	}
	for i, it := range r.Items {
		if it.Name == "" || it.Quantity <= 0 || it.Price < 0 {
			return errors.Newf(errors.KindValidation, "items[%d] needs a name, a positive quantity and a price", i)
		}
	}
	return nil
}

type CreatePaymentLinkResponse struct {
	Bin           string            `json:"bin"`
	AccountNumber string            `json:"accountNumber"`
	AccountName   string            `json:"accountName"`
	Amount        int64             `json:"amount"`
	Description   string            `json:"description"`
	OrderCode     int64             `json:"orderCode"`
	Currency      string            `json:"currency"`
	PaymentLinkID string            `json:"paymentLinkId"`
	Status        PaymentLinkStatus `json:"status"`
	ExpiredAt     *int64            `json:"expiredAt"`
	CheckoutURL   string            `json:"checkoutUrl"`
	QRCode        string            `json:"qrCode"`
}

type Transaction struct {
	Reference              string  `json:"reference"`
	Amount                 int64   `json:"amount"`
	AccountNumber          string  `json:"accountNumber"`
	Description            string  `json:"description"`
	TransactionDateTime    string  `json:"transactionDateTime"`
	VirtualAccountName     *string `json:"virtualAccountName"`
	VirtualAccountNumber   *string `json:"virtualAccountNumber"`
	CounterAccountBankID   *string `json:"counterAccountBankId"`
	CounterAccountBankName *string `json:"counterAccountBankName"`
	CounterAccountName     *string `json:"counterAccountName"`
	CounterAccountNumber   *string `json:"counterAccountNumber"`
}

type PaymentLink struct {
	ID                 string            `json:"id"`
	OrderCode          int64             `json:"orderCode"`
	Amount             int64             `json:"amount"`
	AmountPaid         int64             `json:"amountPaid"`
	AmountRemaining    int64             `json:"amountRemaining"`
	Status             PaymentLinkStatus `json:"status"`
	CreatedAt          string            `json:"createdAt"`
	Transactions       []Transaction     `json:"transactions"`
	CancellationReason *string           `json:"cancellationReason"`
	CanceledAt         *string           `json:"canceledAt"`
}

type CancelPaymentLinkRequest struct {
	CancellationReason string `json:"cancellationReason,omitempty"`
}

type Invoice struct {
	InvoiceID       string  `json:"invoiceId"`
	InvoiceNumber   *string `json:"invoiceNumber"`
	IssuedTimestamp *int64  `json:"issuedTimestamp"`
	IssuedDatetime  *string `json:"issuedDatetime"`
	TransactionID   *string `json:"transactionId"`
	ReservationCode *string `json:"reservationCode"`
	CodeOfTax       *string `json:"codeOfTax"`
}

type InvoicesInfo struct {
	Invoices []Invoice `json:"invoices"`
}
