package database

import (
	"database/sql"

	"github.com/stayfront/hotel-ops-backend/internal/models"
)

// GuestRepository handles read access to the guests table
type GuestRepository struct {
	db DB
}

// NewGuestRepository creates a new GuestRepository
func NewGuestRepository(db DB) *GuestRepository {
	return &GuestRepository{db: db}
}

// GetByID retrieves a guest by ID
func (r *GuestRepository) GetByID(guestID string) (*models.Guest, error) {
	query := `
		SELECT id, full_name, email, phone, address, created_at, updated_at
		FROM guests
		WHERE id = $1
	`

	guest := &models.Guest{}
	err := r.db.QueryRow(query, guestID).Scan(
		&guest.ID, &guest.FullName, &guest.Email, &guest.Phone, &guest.Address,
		&guest.CreatedAt, &guest.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return guest, nil
}

// Exists reports whether a guest record exists
func (r *GuestRepository) Exists(guestID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM guests WHERE id = $1)`, guestID).Scan(&exists)
	if err != nil && err != sql.ErrNoRows {
		return false, err
	}
	return exists, nil
}
