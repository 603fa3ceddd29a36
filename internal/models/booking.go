package models

import (
	"errors"
	"time"

	"github.com/stayfront/hotel-ops-backend/pkg/money"
)

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusCheckedIn  BookingStatus = "checked_in"
	BookingStatusCheckedOut BookingStatus = "checked_out"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// BookingType distinguishes front-desk check-ins from advance reservations.
type BookingType string

const (
	BookingTypeCheckIn     BookingType = "check_in"
	BookingTypeReservation BookingType = "reservation"
)

// PaymentMethod is how the guest pays.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodOnline   PaymentMethod = "online"
)

// PaymentState tracks the handshake with the payment gateway for a booking's
// current payment attempt.
type PaymentState string

const (
	PaymentStateNone            PaymentState = "none"             // cash / nothing initiated
	PaymentStateAwaitingGateway PaymentState = "awaiting_gateway" // handed to gateway, no result yet
	PaymentStateVerifying       PaymentState = "verifying"        // gateway reported, server verifying
	PaymentStateSettled         PaymentState = "settled"
	PaymentStateAbandoned       PaymentState = "abandoned" // guest closed the gateway window
	PaymentStateFailed          PaymentState = "failed"    // verification failed
)

// Booking is the authoritative ledger record of a stay.
type Booking struct {
	ID        string `json:"id" db:"id"`
	Reference string `json:"reference" db:"reference"` // BK-<year>-<sequence>
	GuestID   string `json:"guest_id" db:"guest_id"`
	RoomID    string `json:"room_id" db:"room_id"`

	CheckIn  time.Time `json:"check_in" db:"check_in"`
	CheckOut time.Time `json:"check_out" db:"check_out"`

	BookingType BookingType   `json:"booking_type" db:"booking_type"`
	Status      BookingStatus `json:"status" db:"status"`

	TotalAmount   money.Amount  `json:"total_amount" db:"total_amount"`
	PaidAmount    money.Amount  `json:"paid_amount" db:"paid_amount"`
	PaymentMethod PaymentMethod `json:"payment_method" db:"payment_method"`

	// Gateway handshake tracking. GatewayReference changes on retry;
	// Reference never does.
	PaymentState     PaymentState `json:"payment_state" db:"payment_state"`
	GatewayReference *string      `json:"gateway_reference,omitempty" db:"gateway_reference"`
	PaymentAttempts  int          `json:"payment_attempts" db:"payment_attempts"`

	IdempotencyKey *string `json:"idempotency_key,omitempty" db:"idempotency_key"`

	CancelledAt  *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty" db:"checked_out_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Interval returns the booking's stay interval.
func (b *Booking) Interval() StayInterval {
	return StayInterval{RoomID: b.RoomID, CheckIn: b.CheckIn, CheckOut: b.CheckOut}
}

// Balance is what the guest still owes.
func (b *Booking) Balance() money.Amount {
	return b.TotalAmount - b.PaidAmount
}

// HoldsRoom reports whether the booking's interval participates in conflict
// checks. Cancelled and checked-out bookings are history, not holds.
func (b *Booking) HoldsRoom() bool {
	switch b.Status {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCheckedIn:
		return true
	}
	return false
}

// validTransitions is the booking state machine. Cancellation is reachable
// only before check-in; an occupied or departed stay cannot be cancelled.
var validTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCheckedIn, BookingStatusCancelled},
	BookingStatusCheckedIn: {BookingStatusCheckedOut},
}

// CanTransitionTo reports whether moving to the given status is legal.
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range validTransitions[b.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// InitialStatus returns the status a new booking starts in. Front-desk
// check-ins imply immediate occupancy and skip pending/confirmed; advance
// reservations paid offline start confirmed; online payments start pending
// until the gateway handshake settles.
func InitialStatus(bookingType BookingType, method PaymentMethod) BookingStatus {
	if method == PaymentMethodOnline {
		return BookingStatusPending
	}
	if bookingType == BookingTypeCheckIn {
		return BookingStatusCheckedIn
	}
	return BookingStatusConfirmed
}

// CreateBookingRequest is the API request to create a booking.
type CreateBookingRequest struct {
	GuestID        string        `json:"guest_id" binding:"required"`
	RoomID         string        `json:"room_id" binding:"required"`
	CheckIn        string        `json:"check_in" binding:"required"`  // "2026-06-01"
	CheckOut       string        `json:"check_out" binding:"required"` // "2026-06-04"
	BookingType    BookingType   `json:"booking_type" binding:"required"`
	PaymentMethod  PaymentMethod `json:"payment_method" binding:"required"`
	AmountToPayNow money.Amount  `json:"amount_to_pay_now"`
	IdempotencyKey *string       `json:"idempotency_key,omitempty"`
}

// Validate checks the enum fields; dates are parsed by the handler.
func (r *CreateBookingRequest) Validate() error {
	switch r.BookingType {
	case BookingTypeCheckIn, BookingTypeReservation:
	default:
		return errors.New("booking_type must be check_in or reservation")
	}

	switch r.PaymentMethod {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodOnline:
	default:
		return errors.New("invalid payment_method")
	}

	if r.AmountToPayNow < 0 {
		return errors.New("amount_to_pay_now cannot be negative")
	}

	return nil
}

// UpdateStatusRequest is the API request to move a booking through its
// state machine.
type UpdateStatusRequest struct {
	Status BookingStatus `json:"status" binding:"required"`
}
