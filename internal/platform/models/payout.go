package models

import (
	"strings"
)

type PayoutApprovalState string

const (
	PayoutDrafting         PayoutApprovalState = "DRAFTING"
	PayoutSubmitted        PayoutApprovalState = "SUBMITTED"
	PayoutApproved         PayoutApprovalState = "APPROVED"
	PayoutRejected         PayoutApprovalState = "REJECTED"
	PayoutCancelled        PayoutApprovalState = "CANCELLED"
	PayoutScheduled        PayoutApprovalState = "SCHEDULED"
	PayoutProcessing       PayoutApprovalState = "PROCESSING"
	PayoutFailed           PayoutApprovalState = "FAILED"
	PayoutPartialCompleted PayoutApprovalState = "PARTIAL_COMPLETED"
	PayoutCompleted        PayoutApprovalState = "COMPLETED"
)

type PayoutTransactionState string

const (
	TransactionReceived   PayoutTransactionState = "RECEIVED"
	TransactionProcessing PayoutTransactionState = "PROCESSING"
	TransactionCancelled  PayoutTransactionState = "CANCELLED"
	TransactionSucceeded  PayoutTransactionState = "SUCCEEDED"
	TransactionOnHold     PayoutTransactionState = "ON_HOLD"
	TransactionReversed   PayoutTransactionState = "REVERSED"
	TransactionFailed     PayoutTransactionState = "FAILED"
)

type PayoutRequest struct {
	ReferenceID     string   `json:"referenceId"`
	Amount          int64    `json:"amount"`
	Description     string   `json:"description"`
	ToBin           string   `json:"toBin"`
	ToAccountNumber string   `json:"toAccountNumber"`
	Category        []string `json:"category,omitempty"`
}

type PayoutTransaction struct {
	ID                  string                 `json:"id"`
	ReferenceID         string                 `json:"referenceId"`
	Amount              int64                  `json:"amount"`
	Description         string                 `json:"description"`
	ToBin               string                 `json:"toBin"`
	ToAccountNumber     string                 `json:"toAccountNumber"`
	ToAccountName       *string                `json:"toAccountName"`
	Reference           *string                `json:"reference"`
	TransactionDatetime *string                `json:"transactionDatetime"`
	ErrorMessage        *string                `json:"errorMessage"`
	ErrorCode           *string                `json:"errorCode"`
	State               PayoutTransactionState `json:"state"`
}

type Payout struct {
	ID            string              `json:"id"`
	ReferenceID   string              `json:"referenceId"`
	Transactions  []PayoutTransaction `json:"transactions"`
	Category      []string            `json:"category"`
	ApprovalState PayoutApprovalState `json:"approvalState"`
	CreatedAt     string              `json:"createdAt"`
}

type PayoutBatchItem struct {
	ReferenceID     string `json:"referenceId"`
	Amount          int64  `json:"amount"`
	Description     string `json:"description"`
	ToBin           string `json:"toBin"`
	ToAccountNumber string `json:"toAccountNumber"`
}

type PayoutBatchRequest struct {
	ReferenceID         string            `json:"referenceId"`
	ValidateDestination *bool             `json:"validateDestination,omitempty"`
	Category            []string          `json:"category,omitempty"`
	Payouts             []PayoutBatchItem `json:"payouts"`
}

// GetPayoutListParams filters GET /v1/payouts. Zero values are not sent.
type GetPayoutListParams struct {
	ReferenceID   string
	ApprovalState PayoutApprovalState
	Category      []string
	FromDate      string
	ToDate        string
	Limit         int
	Offset        int
}

// Query returns the filters as query parameters keyed the way the gateway expects.
func (p GetPayoutListParams) Query() map[string]any {
	q := map[string]any{}
	if p.ReferenceID != "" {
		q["referenceId"] = p.ReferenceID
	}
	if p.ApprovalState != "" {
		q["approvalState"] = string(p.ApprovalState)
	}
	if len(p.Category) > 0 {
		q["category"] = strings.Join(p.Category, ",")
	}
	if p.FromDate != "" {
		q["fromDate"] = p.FromDate
	}
	if p.ToDate != "" {
		q["toDate"] = p.ToDate
	}
	if p.Limit > 0 {
		q["limit"] = p.Limit
	}
	if p.Offset > 0 {
		q["offset"] = p.Offset
	}
	return q
}

type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Total   int  `json:"total"`
	Count   int  `json:"count"`
	HasMore bool `json:"hasMore"`
}

type PayoutListResponse struct {
	Payouts    []Payout   `json:"payouts"`
	Pagination Pagination `json:"pagination"`
}

type EstimateCredit struct {
	EstimateCredit int64 `json:"estimateCredit"`
}

type PayoutAccountInfo struct {
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
	Currency      string `json:"currency"`
	Balance       string `json:"balance"`
}
