package database

import (
	"database/sql"

	"github.com/stayfront/hotel-ops-backend/internal/models"
	"github.com/stayfront/hotel-ops-backend/pkg/money"
)

// PaymentAuditRepository handles the append-only payment_audits table
type PaymentAuditRepository struct {
	db DB
}

// NewPaymentAuditRepository creates a new PaymentAuditRepository
func NewPaymentAuditRepository(db DB) *PaymentAuditRepository {
	return &PaymentAuditRepository{db: db}
}

// Create inserts an audit entry. There are no update or delete operations;
// the audit trail is append-only.
func (r *PaymentAuditRepository) Create(audit *models.PaymentAudit) error {
	query := `
		INSERT INTO payment_audits (
			id, booking_reference, gateway_reference, event_type, event_source,
			expected_amount, received_amount, currency, amounts_match,
			gateway_status, error_message, raw_body, is_duplicate,
			ip_address, user_agent, device, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		)
	`

	_, err := r.db.Exec(
		query,
		audit.ID, audit.BookingReference, audit.GatewayReference,
		audit.EventType, audit.EventSource,
		audit.ExpectedAmount, audit.ReceivedAmount, audit.Currency, audit.AmountsMatch,
		audit.GatewayStatus, audit.ErrorMessage, audit.RawBody, audit.IsDuplicate,
		audit.IPAddress, audit.UserAgent, audit.Device, audit.CreatedAt,
	)
	return err
}

// ListByBookingReference retrieves the audit trail for a booking, oldest first
func (r *PaymentAuditRepository) ListByBookingReference(reference string) ([]models.PaymentAudit, error) {
	query := `
		SELECT id, booking_reference, gateway_reference, event_type, event_source,
			   expected_amount, received_amount, currency, amounts_match,
			   gateway_status, error_message, raw_body, is_duplicate,
			   ip_address, user_agent, device, created_at
		FROM payment_audits
		WHERE booking_reference = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(query, reference)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var audits []models.PaymentAudit
	for rows.Next() {
		audit := models.PaymentAudit{}
		err := rows.Scan(
			&audit.ID, &audit.BookingReference, &audit.GatewayReference,
			&audit.EventType, &audit.EventSource,
			&audit.ExpectedAmount, &audit.ReceivedAmount, &audit.Currency, &audit.AmountsMatch,
			&audit.GatewayStatus, &audit.ErrorMessage, &audit.RawBody, &audit.IsDuplicate,
			&audit.IPAddress, &audit.UserAgent, &audit.Device, &audit.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		audits = append(audits, audit)
	}
	return audits, rows.Err()
}

// ExpectedAmountForReference looks up the amount the latest initiated
// attempt under a gateway reference asked the gateway to collect.
func (r *PaymentAuditRepository) ExpectedAmountForReference(gatewayRef string) (money.Amount, bool, error) {
	var expected money.Amount
	err := r.db.QueryRow(
		`SELECT expected_amount FROM payment_audits
		 WHERE gateway_reference = $1 AND event_type = 'payment_initiated'
		   AND expected_amount IS NOT NULL
		 ORDER BY created_at DESC LIMIT 1`,
		gatewayRef,
	).Scan(&expected)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return expected, true, nil
}

// CountWebhooksForReference counts webhook events already recorded for a
// gateway reference. Used to flag replayed webhooks as duplicates.
func (r *PaymentAuditRepository) CountWebhooksForReference(gatewayRef string) (int, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM payment_audits WHERE gateway_reference = $1 AND event_type = 'webhook_received'`,
		gatewayRef,
	).Scan(&count)
	return count, err
}
