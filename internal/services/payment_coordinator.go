package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stayfront/hotel-ops-backend/internal/config"
	"github.com/stayfront/hotel-ops-backend/internal/database"
	"github.com/stayfront/hotel-ops-backend/internal/models"
	"github.com/stayfront/hotel-ops-backend/pkg/money"
)

// RequestMeta carries request context recorded on audit entries.
type RequestMeta struct {
	IPAddress string
	UserAgent string
	Device    string
}

// PaymentCoordinator drives the handshake between the booking ledger and
// the payment gateway. The room interval is reserved before any money
// moves, so a guest mid-payment can never lose the room. Abandoned and
// failed attempts keep the booking and its hold; retries open a fresh
// gateway transaction against the same booking.
type PaymentCoordinator struct {
	bookingService *BookingService
	bookingRepo    *database.BookingRepository
	guestRepo      *database.GuestRepository
	auditRepo      *database.PaymentAuditRepository
	gateway        PaymentGateway
	currency       string
	verifyRetries  int
	logger         *logrus.Logger
}

// NewPaymentCoordinator creates a new PaymentCoordinator
func NewPaymentCoordinator(
	bookingService *BookingService,
	bookingRepo *database.BookingRepository,
	guestRepo *database.GuestRepository,
	auditRepo *database.PaymentAuditRepository,
	gateway PaymentGateway,
	paymentCfg config.PaymentConfig,
	billingCfg config.BillingConfig,
	logger *logrus.Logger,
) *PaymentCoordinator {
	retries := paymentCfg.VerifyRetries
	if retries < 1 {
		retries = 1
	}
	return &PaymentCoordinator{
		bookingService: bookingService,
		bookingRepo:    bookingRepo,
		guestRepo:      guestRepo,
		auditRepo:      auditRepo,
		gateway:        gateway,
		currency:       billingCfg.Currency,
		verifyRetries:  retries,
		logger:         logger,
	}
}

// CreateBookingIntent creates the booking and, for online payments, opens a
// gateway transaction. Offline methods settle immediately at the front desk
// and never touch the gateway.
func (c *PaymentCoordinator) CreateBookingIntent(req *models.CreateBookingRequest, meta RequestMeta) (*models.BookingIntentResult, error) {
	booking, err := c.bookingService.CreateBooking(req)
	if err != nil {
		return nil, err
	}

	if req.PaymentMethod != models.PaymentMethodOnline {
		return &models.BookingIntentResult{
			Booking: booking,
			State:   models.AttemptSettled,
		}, nil
	}

	// Nothing due now means nothing for the gateway to collect. The booking
	// stands on its own; payment starts whenever the guest initiates one.
	if req.AmountToPayNow == 0 {
		return &models.BookingIntentResult{
			Booking: booking,
			State:   models.AttemptSettled,
		}, nil
	}

	// Idempotent replay: if this booking already holds a live gateway
	// transaction, hand back the same reference instead of opening another.
	if booking.PaymentState == models.PaymentStateAwaitingGateway && booking.GatewayReference != nil {
		return &models.BookingIntentResult{
			Booking:          booking,
			State:            models.AttemptAwaitingGateway,
			GatewayReference: *booking.GatewayReference,
		}, nil
	}

	return c.openGatewayTransaction(booking, booking.Reference, req.AmountToPayNow, meta)
}

// InitiatePayment opens a gateway transaction for an existing booking, for
// deposits taken at the desk or bookings created without an online attempt.
// A live attempt is replayed; an abandoned or failed one gets a fresh
// gateway reference.
func (c *PaymentCoordinator) InitiatePayment(reference string, meta RequestMeta) (*models.BookingIntentResult, error) {
	booking, err := c.bookingRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}

	if booking.Status == models.BookingStatusCancelled || booking.Status == models.BookingStatusCheckedOut {
		return nil, fmt.Errorf("booking %s is %s and cannot take payments", reference, booking.Status)
	}
	if booking.Balance() <= 0 {
		return nil, fmt.Errorf("booking %s has no outstanding balance", reference)
	}

	switch booking.PaymentState {
	case models.PaymentStateAwaitingGateway:
		if booking.GatewayReference != nil {
			return &models.BookingIntentResult{
				Booking:          booking,
				State:            models.AttemptAwaitingGateway,
				GatewayReference: *booking.GatewayReference,
			}, nil
		}
		return c.openGatewayTransaction(booking, booking.Reference, booking.Balance(), meta)
	case models.PaymentStateVerifying:
		return nil, fmt.Errorf("booking %s has a verification in progress", reference)
	case models.PaymentStateAbandoned, models.PaymentStateFailed:
		return c.RetryPayment(reference, meta)
	case models.PaymentStateSettled:
		// A prior attempt settled part of the bill. The original gateway
		// reference is spent, so the top-up gets a fresh one.
		gatewayRef := fmt.Sprintf("%s-R%d", booking.Reference, booking.PaymentAttempts)
		return c.openGatewayTransaction(booking, gatewayRef, booking.Balance(), meta)
	default:
		return c.openGatewayTransaction(booking, booking.Reference, booking.Balance(), meta)
	}
}

// openGatewayTransaction initializes a gateway transaction for the given
// amount under the given gateway reference and records the handshake state.
// The initiated audit row carries the amount; verification reconciles the
// gateway's answer against it.
func (c *PaymentCoordinator) openGatewayTransaction(booking *models.Booking, gatewayRef string, amount money.Amount, meta RequestMeta) (*models.BookingIntentResult, error) {
	if amount <= 0 || amount > booking.Balance() {
		return nil, fmt.Errorf("payment amount %d is outside the booking's balance", int64(amount))
	}

	guest, err := c.guestRepo.GetByID(booking.GuestID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up guest: %w", err)
	}

	customer := models.GatewayCustomer{Name: guest.FullName}
	if guest.Email != nil {
		customer.Email = *guest.Email
	}
	if guest.Phone != nil {
		customer.Phone = *guest.Phone
	}

	audit := models.NewPaymentAudit(models.PaymentEventInitiated, models.PaymentSourceBackend).
		SetBookingReference(booking.Reference).
		SetGatewayReference(gatewayRef).
		SetMetadata(meta.IPAddress, meta.UserAgent, meta.Device)
	audit.SetAmounts(amount, amount, c.currency)

	initResult, err := c.gateway.Initialize(gatewayRef, customer, amount, c.currency)
	if err != nil {
		audit.SetError(err.Error())
		c.writeAudit(audit)

		// The booking and its room hold survive a dead gateway. The guest
		// retries the payment; the reservation is not lost.
		attempts := booking.PaymentAttempts + 1
		if stateErr := c.bookingRepo.UpdatePaymentState(booking.ID, models.PaymentStateFailed, &gatewayRef, attempts); stateErr != nil {
			c.logger.WithError(stateErr).Error("Failed to record payment state after gateway error")
		}
		return nil, err
	}
	c.writeAudit(audit)

	attempts := booking.PaymentAttempts + 1
	if err := c.bookingRepo.UpdatePaymentState(booking.ID, models.PaymentStateAwaitingGateway, &gatewayRef, attempts); err != nil {
		return nil, fmt.Errorf("failed to record payment state: %w", err)
	}
	booking.PaymentState = models.PaymentStateAwaitingGateway
	booking.GatewayReference = &gatewayRef
	booking.PaymentAttempts = attempts

	c.logger.WithFields(logrus.Fields{
		"reference":         booking.Reference,
		"gateway_reference": gatewayRef,
		"attempt":           attempts,
	}).Info("Payment handshake opened")

	return &models.BookingIntentResult{
		Booking:          booking,
		State:            models.AttemptAwaitingGateway,
		AuthorizationURL: initResult.AuthorizationURL,
		GatewayReference: initResult.Reference,
	}, nil
}

// VerifyPayment settles a payment attempt from the gateway's authoritative
// answer. It is idempotent: verifying an already settled attempt reports
// success without crediting the booking a second time.
func (c *PaymentCoordinator) VerifyPayment(gatewayRef string, source models.PaymentEventSource, meta RequestMeta) (*models.VerifyPaymentResult, error) {
	booking, err := c.bookingRepo.GetByGatewayReference(gatewayRef)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("no booking for gateway reference %s", gatewayRef)
		}
		return nil, err
	}

	if booking.PaymentState == models.PaymentStateSettled {
		audit := models.NewPaymentAudit(models.PaymentEventVerifyRequest, source).
			SetBookingReference(booking.Reference).
			SetGatewayReference(gatewayRef).
			SetMetadata(meta.IPAddress, meta.UserAgent, meta.Device).
			MarkAsDuplicate()
		c.writeAudit(audit)

		return &models.VerifyPaymentResult{
			Reference: gatewayRef,
			State:     models.AttemptSettled,
			Verified:  true,
		}, nil
	}

	if err := c.bookingRepo.UpdatePaymentState(booking.ID, models.PaymentStateVerifying, &gatewayRef, booking.PaymentAttempts); err != nil {
		return nil, fmt.Errorf("failed to record payment state: %w", err)
	}

	verification, err := c.verifyWithRetry(gatewayRef)
	if err != nil {
		if unreachable, ok := err.(*models.GatewayUnreachableError); ok {
			// Outcome unknown. Stay in verifying; the reconciliation sweep
			// or a later verify call resolves it.
			audit := models.NewPaymentAudit(models.PaymentEventError, source).
				SetBookingReference(booking.Reference).
				SetGatewayReference(gatewayRef).
				SetError(unreachable.Error())
			c.writeAudit(audit)
			return nil, err
		}
		return nil, c.failAttempt(booking, gatewayRef, source, err.Error())
	}

	if !verification.Succeeded() {
		reason := fmt.Sprintf("gateway reported status %q", verification.Status)
		verr := &models.VerificationFailedError{Reference: gatewayRef, Reason: reason}
		return nil, c.failAttempt(booking, gatewayRef, source, verr.Error())
	}

	// The initiated audit row remembers what this attempt asked the gateway
	// to collect, which may be a partial deposit rather than the full balance.
	expected := booking.Balance()
	if attemptAmount, found, aerr := c.auditRepo.ExpectedAmountForReference(gatewayRef); aerr != nil {
		c.logger.WithError(aerr).WithField("gateway_reference", gatewayRef).
			Warn("Failed to load attempt amount, reconciling against balance")
	} else if found && attemptAmount <= expected {
		expected = attemptAmount
	}

	audit := models.NewPaymentAudit(models.PaymentEventVerified, source).
		SetBookingReference(booking.Reference).
		SetGatewayReference(gatewayRef).
		SetGatewayStatus(verification.Status).
		SetMetadata(meta.IPAddress, meta.UserAgent, meta.Device)

	if !audit.SetAmounts(expected, verification.Amount, c.currency) {
		audit.EventType = models.PaymentEventMismatch
		c.writeAudit(audit)

		reason := fmt.Sprintf("amount mismatch: expected %d, gateway reported %d",
			int64(expected), int64(verification.Amount))
		return nil, c.failAttempt(booking, gatewayRef, source, reason)
	}
	c.writeAudit(audit)

	if err := c.bookingService.RecordPayment(booking, verification.Amount); err != nil {
		return nil, err
	}

	if err := c.bookingRepo.UpdatePaymentState(booking.ID, models.PaymentStateSettled, &gatewayRef, booking.PaymentAttempts); err != nil {
		return nil, fmt.Errorf("failed to record payment state: %w", err)
	}
	booking.PaymentState = models.PaymentStateSettled

	if booking.Status == models.BookingStatusPending {
		if _, err := c.bookingService.UpdateStatus(booking.Reference, models.BookingStatusConfirmed); err != nil {
			c.logger.WithError(err).WithField("reference", booking.Reference).
				Error("Settled payment but failed to confirm booking")
		}
	}

	now := time.Now()
	return &models.VerifyPaymentResult{
		Reference:      gatewayRef,
		State:          models.AttemptSettled,
		Verified:       true,
		AmountCredited: verification.Amount,
		VerifiedAt:     &now,
	}, nil
}

// verifyWithRetry calls the gateway's verify endpoint, retrying transient
// failures a bounded number of times with a short backoff.
func (c *PaymentCoordinator) verifyWithRetry(gatewayRef string) (*models.GatewayVerification, error) {
	var lastErr error
	for attempt := 1; attempt <= c.verifyRetries; attempt++ {
		verification, err := c.gateway.Verify(gatewayRef)
		if err == nil {
			return verification, nil
		}
		lastErr = err

		if _, unreachable := err.(*models.GatewayUnreachableError); !unreachable {
			return nil, err
		}

		if attempt < c.verifyRetries {
			time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
		}
	}
	return nil, lastErr
}

// failAttempt marks the current payment attempt failed. The booking and its
// room hold are untouched; the guest can retry or the desk can cancel.
func (c *PaymentCoordinator) failAttempt(booking *models.Booking, gatewayRef string, source models.PaymentEventSource, reason string) error {
	audit := models.NewPaymentAudit(models.PaymentEventFailed, source).
		SetBookingReference(booking.Reference).
		SetGatewayReference(gatewayRef).
		SetError(reason)
	c.writeAudit(audit)

	if err := c.bookingRepo.UpdatePaymentState(booking.ID, models.PaymentStateFailed, &gatewayRef, booking.PaymentAttempts); err != nil {
		c.logger.WithError(err).Error("Failed to record failed payment state")
	}
	booking.PaymentState = models.PaymentStateFailed

	return &models.VerificationFailedError{Reference: gatewayRef, Reason: reason}
}

// AbandonPayment records that the guest closed the payment window without
// completing it. The booking and its interval stay; nothing is released.
func (c *PaymentCoordinator) AbandonPayment(reference string, meta RequestMeta) (*models.Booking, error) {
	booking, err := c.bookingRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}

	switch booking.PaymentState {
	case models.PaymentStateAwaitingGateway, models.PaymentStateVerifying:
	case models.PaymentStateAbandoned:
		return booking, nil
	default:
		return nil, fmt.Errorf("booking %s has no payment attempt to abandon", reference)
	}

	audit := models.NewPaymentAudit(models.PaymentEventAbandoned, models.PaymentSourceGuest).
		SetBookingReference(booking.Reference).
		SetMetadata(meta.IPAddress, meta.UserAgent, meta.Device)
	if booking.GatewayReference != nil {
		audit.SetGatewayReference(*booking.GatewayReference)
	}
	c.writeAudit(audit)

	if err := c.bookingRepo.UpdatePaymentState(booking.ID, models.PaymentStateAbandoned, booking.GatewayReference, booking.PaymentAttempts); err != nil {
		return nil, fmt.Errorf("failed to record abandoned payment: %w", err)
	}
	booking.PaymentState = models.PaymentStateAbandoned

	c.logger.WithField("reference", reference).Info("Payment attempt abandoned, booking retained")
	return booking, nil
}

// RetryPayment opens a fresh gateway transaction for a booking whose last
// attempt was abandoned or failed. The booking reference never changes;
// each retry gets a new gateway reference so old transactions cannot be
// confused with the new one.
func (c *PaymentCoordinator) RetryPayment(reference string, meta RequestMeta) (*models.BookingIntentResult, error) {
	booking, err := c.bookingRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}

	switch booking.PaymentState {
	case models.PaymentStateAbandoned, models.PaymentStateFailed:
	default:
		return nil, fmt.Errorf("booking %s payment state %s does not allow retry", reference, booking.PaymentState)
	}

	if booking.Balance() <= 0 {
		return nil, fmt.Errorf("booking %s has no outstanding balance", reference)
	}

	gatewayRef := fmt.Sprintf("%s-R%d", booking.Reference, booking.PaymentAttempts)

	audit := models.NewPaymentAudit(models.PaymentEventRetry, models.PaymentSourceGuest).
		SetBookingReference(booking.Reference).
		SetGatewayReference(gatewayRef).
		SetMetadata(meta.IPAddress, meta.UserAgent, meta.Device)
	c.writeAudit(audit)

	return c.openGatewayTransaction(booking, gatewayRef, booking.Balance(), meta)
}

// HandleWebhook processes a gateway webhook whose signature the handler has
// already verified. Replays are audited as duplicates and re-verified
// idempotently, never double-credited.
func (c *PaymentCoordinator) HandleWebhook(event *PaystackWebhookEvent, rawBody []byte, meta RequestMeta) error {
	seen, err := c.auditRepo.CountWebhooksForReference(event.Data.Reference)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to count prior webhooks")
	}

	audit := models.NewPaymentAudit(models.PaymentEventWebhookReceived, models.PaymentSourceWebhook).
		SetGatewayReference(event.Data.Reference).
		SetGatewayStatus(event.Data.Status).
		SetRawBody(string(rawBody)).
		SetMetadata(meta.IPAddress, meta.UserAgent, meta.Device)
	if seen > 0 {
		audit.MarkAsDuplicate()
	}
	c.writeAudit(audit)

	if event.Event != "charge.success" {
		return nil
	}

	_, err = c.VerifyPayment(event.Data.Reference, models.PaymentSourceWebhook, meta)
	return err
}

// writeAudit persists an audit entry. The trail is best effort: a failed
// insert is logged, never propagated into the payment path.
func (c *PaymentCoordinator) writeAudit(audit *models.PaymentAudit) {
	if err := c.auditRepo.Create(audit); err != nil {
		c.logger.WithError(err).WithField("event_type", audit.EventType).
			Error("Failed to write payment audit entry")
	}
}
