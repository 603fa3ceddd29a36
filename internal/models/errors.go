package models

import (
	"fmt"
	"time"

	"github.com/stayfront/hotel-ops-backend/pkg/money"
)

// InvalidIntervalError is returned when a stay interval's check-out does not
// fall strictly after its check-in.
type InvalidIntervalError struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func (e *InvalidIntervalError) Error() string {
	return fmt.Sprintf("invalid stay interval: check-out %s must be after check-in %s",
		e.CheckOut.Format("2006-01-02"), e.CheckIn.Format("2006-01-02"))
}

// ConflictError is returned when a requested interval overlaps an existing
// hold on the same room.
type ConflictError struct {
	RoomID   string
	Interval StayInterval
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("room %s is not available from %s to %s",
		e.RoomID, e.Interval.CheckIn.Format("2006-01-02"), e.Interval.CheckOut.Format("2006-01-02"))
}

// InvalidTransitionError is returned when a booking status change is not
// allowed by the state machine.
type InvalidTransitionError struct {
	BookingID string
	From      BookingStatus
	To        BookingStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("booking %s cannot transition from %s to %s", e.BookingID, e.From, e.To)
}

// OverpaymentError is returned when a payment would push the paid amount
// past the booking total.
type OverpaymentError struct {
	BookingID string
	Attempted money.Amount
	Remaining money.Amount
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment of %s exceeds remaining balance %s on booking %s",
		e.Attempted.String(), e.Remaining.String(), e.BookingID)
}

// VerificationFailedError is returned when the gateway reports a payment as
// anything other than successful during server-side verification.
type VerificationFailedError struct {
	Reference string
	Reason    string
}

func (e *VerificationFailedError) Error() string {
	return fmt.Sprintf("payment verification failed for %s: %s", e.Reference, e.Reason)
}

// GatewayUnreachableError is returned when the payment gateway cannot be
// reached or returns an unusable response. The payment outcome is unknown,
// not failed.
type GatewayUnreachableError struct {
	Err error
}

func (e *GatewayUnreachableError) Error() string {
	return fmt.Sprintf("payment gateway unreachable: %v", e.Err)
}

func (e *GatewayUnreachableError) Unwrap() error {
	return e.Err
}
