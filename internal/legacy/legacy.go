// Package legacy keeps the v0 merchant API (camelCase PaymentData, PayOSError
// with code and message) working on top of the current client.
package legacy

import (
	"payos/internal/engine/signature"
	"payos/internal/pkg/errors"
	"payos/internal/platform/models"
)

const (
	ErrorCodeInternalServerError = "20"
	ErrorCodeUnauthorized        = "401"
)

const (
	MessageNoSignature         = "No signature."
	MessageNoData              = "No data."
	MessageInvalidSignature    = "Invalid signature."
	MessageDataNotIntegrity    = "The data is unreliable because the signature of the response does not match the signature of the data"
	MessageWebhookURLInvalid   = "Webhook URL invalid."
	MessageUnauthorized        = "Unauthorized."
	MessageInternalServerError = "Internal Server Error."
	MessageInvalidParameter    = "Invalid Parameter."
)

// PayOSError is the v0 error shape.
type PayOSError struct {
	Code    string
	Message string
	Err     error
}

func (e *PayOSError) Error() string {
	return e.Message
}

func (e *PayOSError) Unwrap() error {
	return e.Err
}

type ItemData struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// PaymentData is the v0 payment link request.
type PaymentData struct {
	OrderCode    int64      `json:"orderCode"`
	Amount       int64      `json:"amount"`
	Description  string     `json:"description"`
	CancelURL    string     `json:"cancelUrl"`
	ReturnURL    string     `json:"returnUrl"`
	Signature    string     `json:"signature,omitempty"`
	Items        []ItemData `json:"items,omitempty"`
	BuyerName    string     `json:"buyerName,omitempty"`
	BuyerEmail   string     `json:"buyerEmail,omitempty"`
	BuyerPhone   string     `json:"buyerPhone,omitempty"`
	BuyerAddress string     `json:"buyerAddress,omitempty"`
	ExpiredAt    *int64     `json:"expiredAt,omitempty"`
}

func (p PaymentData) request() *models.CreatePaymentLinkRequest {
	items := make([]models.ItemData, len(p.Items))
	for i, it := range p.Items {
		items[i] = models.ItemData{Name: it.Name, Quantity: it.Quantity, Price: it.Price}
	}
	return &models.CreatePaymentLinkRequest{
		OrderCode:    p.OrderCode,
		Amount:       p.Amount,
		Description:  p.Description,
		CancelURL:    p.CancelURL,
		ReturnURL:    p.ReturnURL,
		Items:        items,
		BuyerName:    p.BuyerName,
		BuyerEmail:   p.BuyerEmail,
		BuyerPhone:   p.BuyerPhone,
		BuyerAddress: p.BuyerAddress,
		ExpiredAt:    p.ExpiredAt,
	}
}

// camelValue converts obj and renames snake_case top-level keys to camelCase.
func camelValue(obj any) (signature.Value, error) {
	v, err := signature.FromAny(obj)
	if err != nil {
		return v, &PayOSError{Code: ErrorCodeInternalServerError, Message: MessageInvalidParameter, Err: err}
	}
	return signature.ToCamelKeys(v, false), nil
}

// SortObjDataByKey returns the non-null fields of obj ordered by key.
func SortObjDataByKey(obj any) ([]signature.Pair, error) {
	v, err := camelValue(obj)
	if err != nil {
		return nil, err
	}
	return signature.SortedPairs(v), nil
}

// ConvertObjToQueryStr renders obj as key=value pairs sorted by key, without
// percent-encoding.
func ConvertObjToQueryStr(obj any) (string, error) {
	v, err := camelValue(obj)
	if err != nil {
		return "", err
	}
	s, err := signature.Canonicalize(v, signature.WithEncodeURI(false))
	if err != nil {
		return "", &PayOSError{Code: ErrorCodeInternalServerError, Message: MessageInvalidParameter, Err: err}
	}
	return s, nil
}

func CreateSignatureFromObj(data any, key string) (string, error) {
	v, err := camelValue(data)
	if err != nil {
		return "", err
	}
	sig, ok := signature.SignObject(v, key)
	if !ok {
		return "", &PayOSError{Code: ErrorCodeInternalServerError, Message: MessageInvalidParameter}
	}
	return sig, nil
}

// CreateSignatureOfPaymentRequest signs amount, cancelUrl, description,
// orderCode and returnUrl of data.
func CreateSignatureOfPaymentRequest(data any, key string) (string, error) {
	v, err := camelValue(data)
	if err != nil {
		return "", err
	}
	sig, ok := signature.SignPaymentRequest(v, key)
	if !ok {
		return "", &PayOSError{Code: ErrorCodeInternalServerError, Message: MessageInvalidParameter}
	}
	return sig, nil
}

// translate maps client errors onto the v0 code and message pairs.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var legacyErr *PayOSError
	if errors.As(err, &legacyErr) {
		return err
	}

	var apiErr *errors.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == 401 {
			return &PayOSError{Code: ErrorCodeUnauthorized, Message: MessageUnauthorized, Err: err}
		}
		code := apiErr.Code
		if code == "" {
			code = ErrorCodeInternalServerError
		}
		return &PayOSError{Code: code, Message: apiErr.Error(), Err: err}
	}

	msg := MessageInternalServerError
	switch errors.KindOf(err) {
	case errors.KindIntegrity:
		msg = MessageDataNotIntegrity
	case errors.KindValidation:
		switch {
		case errors.Is(err, errors.ErrInvalidSignature):
			msg = MessageNoSignature
		case errors.Is(err, errors.ErrSchemaInvalid):
			msg = MessageNoData
		case errors.Is(err, errors.ErrInvalidURL):
			msg = MessageWebhookURLInvalid
		default:
			msg = MessageInvalidParameter
		}
	case errors.KindMalformed:
		msg = MessageInvalidParameter
	}
	return &PayOSError{Code: ErrorCodeInternalServerError, Message: msg, Err: err}
}
