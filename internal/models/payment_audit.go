package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/stayfront/hotel-ops-backend/pkg/money"
)

// PaymentEventType represents the type of payment event being audited.
type PaymentEventType string

const (
	PaymentEventInitiated       PaymentEventType = "payment_initiated"
	PaymentEventWebhookReceived PaymentEventType = "webhook_received"
	PaymentEventVerifyRequest   PaymentEventType = "verify_request"
	PaymentEventVerified        PaymentEventType = "payment_verified"
	PaymentEventFailed          PaymentEventType = "payment_failed"
	PaymentEventAbandoned       PaymentEventType = "payment_abandoned"
	PaymentEventRetry           PaymentEventType = "payment_retry"
	PaymentEventMismatch        PaymentEventType = "reconciliation_mismatch"
	PaymentEventError           PaymentEventType = "error"
)

// PaymentEventSource identifies where the event originated.
type PaymentEventSource string

const (
	PaymentSourceBackend PaymentEventSource = "backend"
	PaymentSourceWebhook PaymentEventSource = "gateway_webhook"
	PaymentSourceGateway PaymentEventSource = "gateway_api"
	PaymentSourceGuest   PaymentEventSource = "guest"
	PaymentSourceSweep   PaymentEventSource = "reconciliation_sweep"
)

// PaymentAudit is an immutable audit log entry for payment events. Rows are
// only ever inserted.
type PaymentAudit struct {
	ID               uuid.UUID `json:"id" db:"id"`
	BookingReference *string   `json:"booking_reference,omitempty" db:"booking_reference"`
	GatewayReference *string   `json:"gateway_reference,omitempty" db:"gateway_reference"`

	EventType   PaymentEventType   `json:"event_type" db:"event_type"`
	EventSource PaymentEventSource `json:"event_source" db:"event_source"`

	// Amounts in minor units. A mismatch between expected and received is
	// the reconciliation signal.
	ExpectedAmount *money.Amount `json:"expected_amount,omitempty" db:"expected_amount"`
	ReceivedAmount *money.Amount `json:"received_amount,omitempty" db:"received_amount"`
	Currency       *string       `json:"currency,omitempty" db:"currency"`
	AmountsMatch   *bool         `json:"amounts_match,omitempty" db:"amounts_match"`

	GatewayStatus *string `json:"gateway_status,omitempty" db:"gateway_status"`
	ErrorMessage  *string `json:"error_message,omitempty" db:"error_message"`
	RawBody       *string `json:"raw_body,omitempty" db:"raw_body"`

	IsDuplicate bool `json:"is_duplicate" db:"is_duplicate"`

	IPAddress *string `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent *string `json:"user_agent,omitempty" db:"user_agent"`
	Device    *string `json:"device,omitempty" db:"device"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewPaymentAudit creates an audit entry with the required fields.
func NewPaymentAudit(eventType PaymentEventType, source PaymentEventSource) *PaymentAudit {
	return &PaymentAudit{
		ID:          uuid.New(),
		EventType:   eventType,
		EventSource: source,
		CreatedAt:   time.Now(),
	}
}

// SetBookingReference sets the ledger-side reference.
func (pa *PaymentAudit) SetBookingReference(ref string) *PaymentAudit {
	pa.BookingReference = &ref
	return pa
}

// SetGatewayReference sets the gateway-side reference.
func (pa *PaymentAudit) SetGatewayReference(ref string) *PaymentAudit {
	pa.GatewayReference = &ref
	return pa
}

// SetAmounts records expected vs received and returns whether they match.
// Integer minor units compare exactly; no tolerance needed.
func (pa *PaymentAudit) SetAmounts(expected, received money.Amount, currency string) bool {
	pa.ExpectedAmount = &expected
	pa.ReceivedAmount = &received
	pa.Currency = &currency
	match := expected == received
	pa.AmountsMatch = &match
	return match
}

// SetGatewayStatus records the gateway's claimed status.
func (pa *PaymentAudit) SetGatewayStatus(status string) *PaymentAudit {
	pa.GatewayStatus = &status
	return pa
}

// SetError records an error message.
func (pa *PaymentAudit) SetError(msg string) *PaymentAudit {
	pa.ErrorMessage = &msg
	return pa
}

// SetRawBody stores the raw payload before parsing.
func (pa *PaymentAudit) SetRawBody(body string) *PaymentAudit {
	pa.RawBody = &body
	return pa
}

// SetMetadata records request metadata.
func (pa *PaymentAudit) SetMetadata(ip, userAgent, device string) *PaymentAudit {
	if ip != "" {
		pa.IPAddress = &ip
	}
	if userAgent != "" {
		pa.UserAgent = &userAgent
	}
	if device != "" {
		pa.Device = &device
	}
	return pa
}

// MarkAsDuplicate flags a replayed webhook or double-submitted verify.
func (pa *PaymentAudit) MarkAsDuplicate() *PaymentAudit {
	pa.IsDuplicate = true
	return pa
}
