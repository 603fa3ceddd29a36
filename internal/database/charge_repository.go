package database

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stayfront/hotel-ops-backend/internal/models"
)

// ChargeRepository handles database operations for the ancillary_charges table
type ChargeRepository struct {
	db DB
}

// NewChargeRepository creates a new ChargeRepository
func NewChargeRepository(db DB) *ChargeRepository {
	return &ChargeRepository{db: db}
}

const chargeColumns = `id, booking_reference, room_id, category, description,
	   amount, settlement, settled_at, created_at`

// Create inserts a new ancillary charge
func (r *ChargeRepository) Create(charge *models.AncillaryCharge) error {
	query := `
		INSERT INTO ancillary_charges (
			id, booking_reference, room_id, category, description, amount, settlement
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	if charge.ID == "" {
		charge.ID = uuid.New().String()
	}
	if charge.Settlement == "" {
		charge.Settlement = models.SettlementUnsettled
	}

	return r.db.QueryRow(
		query,
		charge.ID, charge.BookingReference, charge.RoomID, charge.Category,
		charge.Description, charge.Amount, charge.Settlement,
	).Scan(&charge.CreatedAt)
}

// GetByID retrieves a charge by ID
func (r *ChargeRepository) GetByID(chargeID string) (*models.AncillaryCharge, error) {
	query := `SELECT ` + chargeColumns + ` FROM ancillary_charges WHERE id = $1`

	charge := &models.AncillaryCharge{}
	err := r.db.QueryRow(query, chargeID).Scan(
		&charge.ID, &charge.BookingReference, &charge.RoomID, &charge.Category,
		&charge.Description, &charge.Amount, &charge.Settlement,
		&charge.SettledAt, &charge.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return charge, nil
}

// ListUnsettledByBooking retrieves all charges attached to a booking that
// have not yet been folded into a checkout bill, oldest first.
func (r *ChargeRepository) ListUnsettledByBooking(bookingReference string) ([]models.AncillaryCharge, error) {
	query := `SELECT ` + chargeColumns + ` FROM ancillary_charges
		WHERE booking_reference = $1
		  AND settlement = 'unsettled'
		ORDER BY created_at`

	rows, err := r.db.Query(query, bookingReference)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var charges []models.AncillaryCharge
	for rows.Next() {
		charge := models.AncillaryCharge{}
		err := rows.Scan(
			&charge.ID, &charge.BookingReference, &charge.RoomID, &charge.Category,
			&charge.Description, &charge.Amount, &charge.Settlement,
			&charge.SettledAt, &charge.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		charges = append(charges, charge)
	}
	return charges, rows.Err()
}

// MarkSettled marks the given charges as included in a finalized checkout.
// Charges are never deleted; settlement is the only state change they see.
func (r *ChargeRepository) MarkSettled(chargeIDs []string) (int64, error) {
	if len(chargeIDs) == 0 {
		return 0, nil
	}

	query := `
		UPDATE ancillary_charges
		SET settlement = 'included_in_checkout', settled_at = NOW()
		WHERE id = ANY($1)
		  AND settlement = 'unsettled'
	`

	result, err := r.db.Exec(query, pq.Array(chargeIDs))
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
