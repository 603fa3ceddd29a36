package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stayfront/hotel-ops-backend/internal/models"
)

// BookingRepository handles database operations for the bookings table
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `id, reference, guest_id, room_id,
	   check_in, check_out, booking_type, status,
	   total_amount, paid_amount, payment_method,
	   payment_state, gateway_reference, payment_attempts,
	   idempotency_key, cancelled_at, checked_out_at,
	   created_at, updated_at`

// NextReference allocates the next booking reference from the database
// sequence and formats it as BK-<year>-<sequence>. The sequence never
// resets, so references stay unique across years.
func (r *BookingRepository) NextReference(now time.Time) (string, error) {
	var seq int64
	err := r.db.QueryRow(`SELECT nextval('booking_reference_seq')`).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("failed to allocate booking reference: %w", err)
	}
	return fmt.Sprintf("BK-%d-%06d", now.Year(), seq), nil
}

// Create inserts a new booking
func (r *BookingRepository) Create(booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, reference, guest_id, room_id,
			check_in, check_out, booking_type, status,
			total_amount, paid_amount, payment_method,
			payment_state, gateway_reference, payment_attempts,
			idempotency_key
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
		RETURNING created_at, updated_at
	`

	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query,
		booking.ID, booking.Reference, booking.GuestID, booking.RoomID,
		booking.CheckIn, booking.CheckOut, booking.BookingType, booking.Status,
		booking.TotalAmount, booking.PaidAmount, booking.PaymentMethod,
		booking.PaymentState, booking.GatewayReference, booking.PaymentAttempts,
		booking.IdempotencyKey,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)

	return err
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(bookingID string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.scanBooking(r.db.QueryRow(query, bookingID))
}

// GetByReference retrieves a booking by its ledger reference
func (r *BookingRepository) GetByReference(reference string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE reference = $1`
	return r.scanBooking(r.db.QueryRow(query, reference))
}

// GetByGatewayReference retrieves a booking by its current gateway reference
func (r *BookingRepository) GetByGatewayReference(gatewayRef string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE gateway_reference = $1`
	return r.scanBooking(r.db.QueryRow(query, gatewayRef))
}

// GetByIdempotencyKey retrieves a booking previously created with the given
// idempotency key, or nil if none exists.
func (r *BookingRepository) GetByIdempotencyKey(key string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE idempotency_key = $1`
	booking, err := r.scanBooking(r.db.QueryRow(query, key))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return booking, err
}

// GetByGuestID retrieves all bookings for a guest, newest first
func (r *BookingRepository) GetByGuestID(guestID string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE guest_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(query, guestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// ListActive retrieves every booking whose interval still holds its room.
// Used to seed the in-memory availability index at startup.
func (r *BookingRepository) ListActive() ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE status IN ('pending', 'confirmed', 'checked_in')
		ORDER BY room_id, check_in`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// ListStaleUnpaid retrieves pending bookings older than the cutoff with no
// settled payment. These are the reconciliation sweep's candidates.
func (r *BookingRepository) ListStaleUnpaid(cutoff time.Time, limit int) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE status = 'pending'
		  AND payment_state NOT IN ('settled')
		  AND created_at < $1
		ORDER BY created_at
		LIMIT $2`

	rows, err := r.db.Query(query, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// UpdateStatus moves a booking to a new lifecycle status. Cancelled and
// checked-out timestamps are stamped when the matching status is set.
func (r *BookingRepository) UpdateStatus(bookingID string, status models.BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $2,
			cancelled_at = CASE WHEN $2 = 'cancelled' THEN NOW() ELSE cancelled_at END,
			checked_out_at = CASE WHEN $2 = 'checked_out' THEN NOW() ELSE checked_out_at END,
			updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, bookingID, status)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// UpdateTotalAmount rewrites the booking total after ancillary charges are
// folded in at checkout
func (r *BookingRepository) UpdateTotalAmount(bookingID string, total int64) error {
	query := `
		UPDATE bookings
		SET total_amount = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, bookingID, total)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// ErrPaymentExceedsTotal is returned when crediting a payment would push
// paid_amount past total_amount.
var ErrPaymentExceedsTotal = errors.New("payment would exceed booking total")

// RecordPayment credits a payment against the booking's paid amount. The
// overpayment clamp lives in the statement itself: a credit that would push
// paid_amount past total_amount matches no row, so two concurrent credits
// for the same balance cannot both land.
func (r *BookingRepository) RecordPayment(bookingID string, amount int64) error {
	query := `
		UPDATE bookings
		SET paid_amount = paid_amount + $2, updated_at = NOW()
		WHERE id = $1 AND paid_amount + $2 <= total_amount
	`

	result, err := r.db.Exec(query, bookingID, amount)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrPaymentExceedsTotal
	}

	return nil
}

// UpdatePaymentState updates the gateway handshake tracking columns
func (r *BookingRepository) UpdatePaymentState(bookingID string, state models.PaymentState, gatewayRef *string, attempts int) error {
	query := `
		UPDATE bookings
		SET payment_state = $2, gateway_reference = $3,
			payment_attempts = $4, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, bookingID, state, gatewayRef, attempts)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// scanBooking scans a single booking row
func (r *BookingRepository) scanBooking(row *sql.Row) (*models.Booking, error) {
	booking := &models.Booking{}
	err := row.Scan(
		&booking.ID, &booking.Reference, &booking.GuestID, &booking.RoomID,
		&booking.CheckIn, &booking.CheckOut, &booking.BookingType, &booking.Status,
		&booking.TotalAmount, &booking.PaidAmount, &booking.PaymentMethod,
		&booking.PaymentState, &booking.GatewayReference, &booking.PaymentAttempts,
		&booking.IdempotencyKey, &booking.CancelledAt, &booking.CheckedOutAt,
		&booking.CreatedAt, &booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// scanBookings scans multiple booking rows
func (r *BookingRepository) scanBookings(rows *sql.Rows) ([]models.Booking, error) {
	var bookings []models.Booking
	for rows.Next() {
		booking := models.Booking{}
		err := rows.Scan(
			&booking.ID, &booking.Reference, &booking.GuestID, &booking.RoomID,
			&booking.CheckIn, &booking.CheckOut, &booking.BookingType, &booking.Status,
			&booking.TotalAmount, &booking.PaidAmount, &booking.PaymentMethod,
			&booking.PaymentState, &booking.GatewayReference, &booking.PaymentAttempts,
			&booking.IdempotencyKey, &booking.CancelledAt, &booking.CheckedOutAt,
			&booking.CreatedAt, &booking.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}
