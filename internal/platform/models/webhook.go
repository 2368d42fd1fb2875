package models

// WebhookData is the signed part of a payment notification.
type WebhookData struct {
	OrderCode              int64   `json:"orderCode"`
	Amount                 int64   `json:"amount"`
	Description            string  `json:"description"`
	AccountNumber          string  `json:"accountNumber"`
	Reference              string  `json:"reference"`
	TransactionDateTime    string  `json:"transactionDateTime"`
	Currency               string  `json:"currency"`
	PaymentLinkID          string  `json:"paymentLinkId"`
	Code                   string  `json:"code"`
	Desc                   string  `json:"desc"`
	CounterAccountBankID   *string `json:"counterAccountBankId"`
	CounterAccountBankName *string `json:"counterAccountBankName"`
	CounterAccountName     *string `json:"counterAccountName"`
	CounterAccountNumber   *string `json:"counterAccountNumber"`
	VirtualAccountName     *string `json:"virtualAccountName"`
	VirtualAccountNumber   *string `json:"virtualAccountNumber"`
}

// Webhook is the envelope the gateway posts to a merchant's webhook URL.
type Webhook struct {
	Code      string       `json:"code"`
	Desc      string       `json:"desc"`
	Success   bool         `json:"success"`
	Data      *WebhookData `json:"data"`
	Signature string       `json:"signature"`
}

type ConfirmWebhookRequest struct {
	WebhookURL string `json:"webhookUrl"`
}

type ConfirmWebhookResponse struct {
	WebhookURL    string `json:"webhookUrl"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
	Name          string `json:"name"`
	ShortName     string `json:"shortName"`
}
