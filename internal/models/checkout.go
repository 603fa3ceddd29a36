package models

import (
	"time"

	"github.com/stayfront/hotel-ops-backend/pkg/money"
)

// CheckoutBill is the derived final bill for a stay. It is never persisted:
// building it is a pure read, re-computable any number of times until the
// checkout is finalized.
type CheckoutBill struct {
	BookingReference string `json:"booking_reference"`
	GuestID          string `json:"guest_id"`
	RoomID           string `json:"room_id"`

	Nights      int          `json:"nights"`
	NightlyRate money.Amount `json:"nightly_rate"`
	RoomCharge  money.Amount `json:"room_charges"`

	RestaurantCharges money.Amount `json:"restaurant_charges"`
	LaundryCharges    money.Amount `json:"laundry_charges"`
	PoolCharges       money.Amount `json:"pool_charges"`
	GymCharges        money.Amount `json:"gym_charges"`
	OtherCharges      money.Amount `json:"other_charges"`

	Subtotal    money.Amount `json:"subtotal"`
	Tax         money.Amount `json:"tax"`
	TotalAmount money.Amount `json:"total_amount"`
	PaidAmount  money.Amount `json:"paid_amount"`
	Balance     money.Amount `json:"balance"`

	Currency    string    `json:"currency"`
	GeneratedAt time.Time `json:"generated_at"`

	// Charge IDs folded into this bill, settled when checkout finalizes.
	ChargeIDs []string `json:"-"`
}

// AncillaryTotal is the sum of all non-room charges on the bill.
func (b *CheckoutBill) AncillaryTotal() money.Amount {
	return b.RestaurantCharges + b.LaundryCharges + b.PoolCharges + b.GymCharges + b.OtherCharges
}

// AddCharge folds an unsettled ancillary charge into the bill's category
// bucket.
func (b *CheckoutBill) AddCharge(c *AncillaryCharge) {
	switch c.Category {
	case ChargeCategoryRestaurant:
		b.RestaurantCharges += c.Amount
	case ChargeCategoryLaundry:
		b.LaundryCharges += c.Amount
	case ChargeCategoryPool:
		b.PoolCharges += c.Amount
	case ChargeCategoryGym:
		b.GymCharges += c.Amount
	default:
		b.OtherCharges += c.Amount
	}
	b.ChargeIDs = append(b.ChargeIDs, c.ID)
}

// FinalizeCheckoutRequest is the API request to settle a stay.
type FinalizeCheckoutRequest struct {
	FinalPayment  money.Amount  `json:"final_payment"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// CheckoutResult reports the outcome of a finalized checkout. A positive
// OutstandingBalance means the guest left with recorded debt; checkout is
// not blocked on it.
type CheckoutResult struct {
	Bill               *CheckoutBill `json:"bill"`
	OutstandingBalance money.Amount  `json:"outstanding_balance"`
	SettledCharges     int           `json:"settled_charges"`
	CheckedOutAt       time.Time     `json:"checked_out_at"`
}
