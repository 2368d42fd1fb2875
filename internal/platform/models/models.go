package models

import "encoding/json"

// Event types forwarded to subscribers.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
	EventAll              = "*"
)

// Delivery states of a received webhook event.
const (
	EventReceived  = "received"
	EventDelivered = "delivered"
	EventFailed    = "failed"
	EventSkipped   = "skipped"
)

// Subscription is a downstream endpoint that receives verified gateway events.
type Subscription struct {
	ID              string   `json:"id"`
	URL             string   `json:"url"`
	Events          []string `json:"events"` // JSON array in DB
	Secret          string   `json:"secret"`
	Status          string   `json:"status"` // active, paused
	RetryCount      int      `json:"retry_count"`
	LastTriggeredAt int64    `json:"last_triggered_at,omitempty"`
	LastError       string   `json:"last_error,omitempty"`
	CreatedAt       int64    `json:"created_at"`
	UpdatedAt       int64    `json:"updated_at"`
}

// Wants reports whether the subscription listens for eventType.
func (s *Subscription) Wants(eventType string) bool {
	for _, e := range s.Events {
		if e == eventType || e == EventAll {
			return true
		}
	}
	return false
}

// EventRecord is a verified webhook as stored by the receiver.
type EventRecord struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	OrderCode     int64           `json:"order_code"`
	PaymentLinkID string          `json:"payment_link_id"`
	Code          string          `json:"code"`
	Amount        int64           `json:"amount"`
	Signature     string          `json:"signature"`
	Payload       json.RawMessage `json:"payload"`
	Status        string          `json:"status"`
	Attempts      int             `json:"attempts"`
	LastError     string          `json:"last_error,omitempty"`
	ReceivedAt    int64           `json:"received_at"`
	DeliveredAt   *int64          `json:"delivered_at,omitempty"`
}

// ForwardedEvent is the body posted to subscribers.
type ForwardedEvent struct {
	ID        string          `json:"id"`
	Event     string          `json:"event"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// PaymentLinkRecord tracks a payment link created through this service.
type PaymentLinkRecord struct {
	ID           string            `json:"id"`
	OrderCode    int64             `json:"order_code"`
	Amount       int64             `json:"amount"`
	AmountPaid   int64             `json:"amount_paid"`
	Description  string            `json:"description"`
	Status       PaymentLinkStatus `json:"status"`
	CheckoutURL  string            `json:"checkout_url"`
	QRCode       string            `json:"qr_code"`
	CreatedAt    int64             `json:"created_at"`
	UpdatedAt    int64             `json:"updated_at"`
	LastSyncedAt *int64            `json:"last_synced_at,omitempty"`
}

// IdempotencyKey remembers the response of a mutating admin call.
type IdempotencyKey struct {
	Key          string          `json:"key"`
	Scope        string          `json:"scope"`
	StatusCode   int             `json:"status_code"`
	ResponseBody json.RawMessage `json:"response_body"`
	CreatedAt    int64           `json:"created_at"`
}

// AuditLog records an operator action against the gateway.
type AuditLog struct {
	ID           string         `json:"id"`
	Actor        string         `json:"actor"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Metadata     map[string]any `json:"metadata"`
	IPAddress    string         `json:"ip_address"`
	UserAgent    string         `json:"user_agent"`
	CreatedAt    int64          `json:"created_at"`
}
