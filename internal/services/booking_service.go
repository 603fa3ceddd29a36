package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stayfront/hotel-ops-backend/internal/database"
	"github.com/stayfront/hotel-ops-backend/internal/models"
	"github.com/stayfront/hotel-ops-backend/pkg/money"
)

const dateLayout = "2006-01-02"

// BookingService is the booking ledger. It owns booking creation, the
// status state machine and payment recording. The availability index is
// consulted before any row is written: reserve first, persist second, and
// roll the hold back if persistence fails.
type BookingService struct {
	bookingRepo  *database.BookingRepository
	roomRepo     *database.RoomRepository
	guestRepo    *database.GuestRepository
	availability *AvailabilityService
	calculator   *RateCalculator
	logger       *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(
	bookingRepo *database.BookingRepository,
	roomRepo *database.RoomRepository,
	guestRepo *database.GuestRepository,
	availability *AvailabilityService,
	calculator *RateCalculator,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo:  bookingRepo,
		roomRepo:     roomRepo,
		guestRepo:    guestRepo,
		availability: availability,
		calculator:   calculator,
		logger:       logger,
	}
}

// CreateBooking validates the request, prices the stay, reserves the room
// interval and persists the booking. For online payments the caller (the
// payment coordinator) drives the gateway handshake afterwards; the interval
// is already held by the time any payment starts.
func (s *BookingService) CreateBooking(req *models.CreateBookingRequest) (*models.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// A retried submission with the same idempotency key returns the
	// booking created the first time, not a second booking.
	if req.IdempotencyKey != nil && *req.IdempotencyKey != "" {
		existing, err := s.bookingRepo.GetByIdempotencyKey(*req.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
		if existing != nil {
			s.logger.WithFields(logrus.Fields{
				"reference":       existing.Reference,
				"idempotency_key": *req.IdempotencyKey,
			}).Info("Duplicate booking request, returning existing booking")
			return existing, nil
		}
	}

	checkIn, err := time.Parse(dateLayout, req.CheckIn)
	if err != nil {
		return nil, fmt.Errorf("invalid check_in date: %w", err)
	}
	checkOut, err := time.Parse(dateLayout, req.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("invalid check_out date: %w", err)
	}

	interval := models.StayInterval{RoomID: req.RoomID, CheckIn: checkIn, CheckOut: checkOut}
	if err := interval.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.guestRepo.Exists(req.GuestID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up guest: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("guest %s not found", req.GuestID)
	}

	room, err := s.roomRepo.GetByID(req.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up room: %w", err)
	}
	if !room.Bookable() {
		return nil, fmt.Errorf("room %s is under maintenance", room.RoomNumber)
	}

	roomCharge, err := s.calculator.RoomCharge(interval, room.NightlyRate)
	if err != nil {
		return nil, err
	}
	_, _, total := s.calculator.Total(roomCharge, 0)

	if req.AmountToPayNow > total {
		return nil, &models.OverpaymentError{
			BookingID: "",
			Attempted: req.AmountToPayNow,
			Remaining: total,
		}
	}

	reference, err := s.bookingRepo.NextReference(time.Now())
	if err != nil {
		return nil, err
	}

	// Reserve before persisting. The room lock is the only gate against
	// double booking; losing it here means no row was ever written.
	if err := s.availability.Reserve(reference, interval); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		Reference:      reference,
		GuestID:        req.GuestID,
		RoomID:         req.RoomID,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		BookingType:    req.BookingType,
		Status:         models.InitialStatus(req.BookingType, req.PaymentMethod),
		TotalAmount:    total,
		PaymentMethod:  req.PaymentMethod,
		PaymentState:   models.PaymentStateNone,
		IdempotencyKey: req.IdempotencyKey,
	}

	if err := s.bookingRepo.Create(booking); err != nil {
		s.availability.Release(reference)
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	if req.AmountToPayNow > 0 && req.PaymentMethod != models.PaymentMethodOnline {
		if err := s.RecordPayment(booking, req.AmountToPayNow); err != nil {
			return nil, err
		}
	}

	s.refreshRoomStatus(booking)

	s.logger.WithFields(logrus.Fields{
		"reference": booking.Reference,
		"room_id":   booking.RoomID,
		"guest_id":  booking.GuestID,
		"status":    booking.Status,
		"total":     int64(booking.TotalAmount),
	}).Info("Booking created")

	return booking, nil
}

// GetByReference retrieves a booking by its ledger reference
func (s *BookingService) GetByReference(reference string) (*models.Booking, error) {
	return s.bookingRepo.GetByReference(reference)
}

// ListActive retrieves every booking still holding a room interval
func (s *BookingService) ListActive() ([]models.Booking, error) {
	return s.bookingRepo.ListActive()
}

// ListByGuest retrieves a guest's bookings, newest first
func (s *BookingService) ListByGuest(guestID string) ([]models.Booking, error) {
	return s.bookingRepo.GetByGuestID(guestID)
}

// UpdateStatus moves a booking through its state machine. Transitions that
// end the hold (cancelled, checked_out) release the interval.
func (s *BookingService) UpdateStatus(reference string, next models.BookingStatus) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}

	if !booking.CanTransitionTo(next) {
		return nil, &models.InvalidTransitionError{
			BookingID: booking.ID,
			From:      booking.Status,
			To:        next,
		}
	}

	if err := s.bookingRepo.UpdateStatus(booking.ID, next); err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	booking.Status = next

	switch next {
	case models.BookingStatusCancelled, models.BookingStatusCheckedOut:
		s.availability.Release(booking.Reference)
	}
	s.refreshRoomStatus(booking)

	s.logger.WithFields(logrus.Fields{
		"reference": booking.Reference,
		"status":    next,
	}).Info("Booking status updated")

	return booking, nil
}

// Cancel cancels a booking. Only pending and confirmed bookings can be
// cancelled; any amount already paid stays recorded on the ledger.
func (s *BookingService) Cancel(reference string) (*models.Booking, error) {
	return s.UpdateStatus(reference, models.BookingStatusCancelled)
}

// RecordPayment credits a payment against the booking. A payment larger
// than the remaining balance is rejected whole; nothing partial is applied.
func (s *BookingService) RecordPayment(booking *models.Booking, amount money.Amount) error {
	if amount <= 0 {
		return fmt.Errorf("payment amount must be positive")
	}

	remaining := booking.Balance()
	if amount > remaining {
		return &models.OverpaymentError{
			BookingID: booking.ID,
			Attempted: amount,
			Remaining: remaining,
		}
	}

	if err := s.bookingRepo.RecordPayment(booking.ID, int64(amount)); err != nil {
		if errors.Is(err, database.ErrPaymentExceedsTotal) {
			// A concurrent credit moved the balance under us. The statement's
			// clamp rejected this one whole; refresh and report the truth.
			if fresh, ferr := s.bookingRepo.GetByID(booking.ID); ferr == nil {
				booking.PaidAmount = fresh.PaidAmount
			}
			return &models.OverpaymentError{
				BookingID: booking.ID,
				Attempted: amount,
				Remaining: booking.Balance(),
			}
		}
		return fmt.Errorf("failed to record payment: %w", err)
	}
	booking.PaidAmount += amount

	s.logger.WithFields(logrus.Fields{
		"reference": booking.Reference,
		"amount":    int64(amount),
		"balance":   int64(booking.Balance()),
	}).Info("Payment recorded")

	return nil
}

// refreshRoomStatus updates the room's cached dashboard status. Best
// effort: a failed refresh never fails the booking operation.
func (s *BookingService) refreshRoomStatus(booking *models.Booking) {
	var status models.RoomStatus
	switch booking.Status {
	case models.BookingStatusCheckedIn:
		status = models.RoomStatusOccupied
	case models.BookingStatusConfirmed, models.BookingStatusPending:
		if booking.Interval().Contains(time.Now()) {
			status = models.RoomStatusReserved
		} else {
			return
		}
	default:
		// This booking no longer holds the room, but another one might.
		status = models.RoomStatusAvailable
		now := time.Now()
		for _, held := range s.availability.Holds(booking.RoomID) {
			if held.Contains(now) {
				status = models.RoomStatusReserved
				break
			}
		}
	}

	if err := s.roomRepo.UpdateStatus(booking.RoomID, status); err != nil {
		s.logger.WithError(err).WithField("room_id", booking.RoomID).
			Warn("Failed to refresh room status cache")
	}
}
