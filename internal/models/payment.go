package models

import (
	"time"

	"github.com/stayfront/hotel-ops-backend/pkg/money"
)

// AttemptState is the payment handshake state machine for one booking
// attempt. Attempts on different bookings are independent.
type AttemptState string

const (
	AttemptIdle            AttemptState = "idle"
	AttemptAwaitingServer  AttemptState = "awaiting_server_ack"
	AttemptAwaitingGateway AttemptState = "awaiting_gateway_result"
	AttemptVerifying       AttemptState = "verifying"
	AttemptSettled         AttemptState = "settled"
	AttemptAbandoned       AttemptState = "abandoned"
	AttemptFailed          AttemptState = "failed"
)

// BookingIntentResult is returned after a booking intent is registered.
// For online payments the caller redirects the guest to AuthorizationURL;
// for cash/offline intents the attempt is already settled.
type BookingIntentResult struct {
	Booking          *Booking     `json:"booking"`
	State            AttemptState `json:"state"`
	AuthorizationURL string       `json:"authorization_url,omitempty"`
	GatewayReference string       `json:"gateway_reference,omitempty"`
}

// VerifyPaymentResult is the idempotent answer to a verification query.
type VerifyPaymentResult struct {
	Reference      string       `json:"reference"`
	State          AttemptState `json:"state"`
	Verified       bool         `json:"verified"`
	AmountCredited money.Amount `json:"amount_credited"`
	VerifiedAt     *time.Time   `json:"verified_at,omitempty"`
}

// GatewayCustomer carries the guest fields the payment gateway requires.
type GatewayCustomer struct {
	Name  string
	Email string
	Phone string
}

// GatewayInitResult is what the gateway returns when a transaction is opened.
type GatewayInitResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// GatewayVerification is the gateway's answer to a server-side verify call.
type GatewayVerification struct {
	Reference string
	Status    string // "success", "failed", "abandoned", "pending"
	Amount    money.Amount
	Currency  string
	PaidAt    *time.Time
	Channel   string
}

// Succeeded reports whether the gateway settled the transaction.
func (v *GatewayVerification) Succeeded() bool {
	return v.Status == "success"
}
