package models

import (
	"time"

	"github.com/stayfront/hotel-ops-backend/pkg/money"
)

// RoomStatus is a cached operational view of a room for dashboards. The
// availability index decides conflicts; this column never does.
type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "available"
	RoomStatusOccupied    RoomStatus = "occupied"
	RoomStatusReserved    RoomStatus = "reserved"
	RoomStatusMaintenance RoomStatus = "maintenance"
)

// Room is a bookable hotel room.
type Room struct {
	ID           string       `json:"id" db:"id"`
	RoomNumber   string       `json:"room_number" db:"room_number"`
	RoomType     string       `json:"room_type" db:"room_type"`
	NightlyRate  money.Amount `json:"nightly_rate" db:"nightly_rate"`
	Status       RoomStatus   `json:"status" db:"status"`
	Floor        int          `json:"floor" db:"floor"`
	MaxOccupancy int          `json:"max_occupancy" db:"max_occupancy"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// Bookable reports whether the room can accept new bookings at all.
// Maintenance rooms are withdrawn from sale.
func (r *Room) Bookable() bool {
	return r.Status != RoomStatusMaintenance
}
