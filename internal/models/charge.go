package models

import (
	"errors"
	"time"

	"github.com/stayfront/hotel-ops-backend/pkg/money"
)

// ChargeCategory identifies the service module that raised the charge.
type ChargeCategory string

const (
	ChargeCategoryRestaurant ChargeCategory = "restaurant"
	ChargeCategoryLaundry    ChargeCategory = "laundry"
	ChargeCategoryPool       ChargeCategory = "pool"
	ChargeCategoryGym        ChargeCategory = "gym"
	ChargeCategoryOther      ChargeCategory = "other"
)

// SettlementStatus tracks whether a charge has been folded into a checkout
// bill. Charges are never deleted, only settled.
type SettlementStatus string

const (
	SettlementUnsettled SettlementStatus = "unsettled"
	SettlementIncluded  SettlementStatus = "included_in_checkout"
)

// AncillaryCharge is a room-chargeable cost from a non-room service.
// BookingReference is nil for walk-in/cash sales, which never reach a
// checkout bill.
type AncillaryCharge struct {
	ID               string           `json:"id" db:"id"`
	BookingReference *string          `json:"booking_reference,omitempty" db:"booking_reference"`
	RoomID           *string          `json:"room_id,omitempty" db:"room_id"`
	Category         ChargeCategory   `json:"category" db:"category"`
	Description      string           `json:"description" db:"description"`
	Amount           money.Amount     `json:"amount" db:"amount"`
	Settlement       SettlementStatus `json:"settlement" db:"settlement"`
	SettledAt        *time.Time       `json:"settled_at,omitempty" db:"settled_at"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
}

// CreateChargeRequest is posted by the restaurant/laundry/gym/pool modules
// when a sale is put on a room.
type CreateChargeRequest struct {
	BookingReference *string        `json:"booking_reference,omitempty"`
	RoomID           *string        `json:"room_id,omitempty"`
	Category         ChargeCategory `json:"category" binding:"required"`
	Description      string         `json:"description"`
	Amount           money.Amount   `json:"amount" binding:"required"`
}

// Validate checks category and amount.
func (r *CreateChargeRequest) Validate() error {
	switch r.Category {
	case ChargeCategoryRestaurant, ChargeCategoryLaundry, ChargeCategoryPool,
		ChargeCategoryGym, ChargeCategoryOther:
	default:
		return errors.New("invalid charge category")
	}

	if r.Amount <= 0 {
		return errors.New("amount must be positive")
	}

	return nil
}
