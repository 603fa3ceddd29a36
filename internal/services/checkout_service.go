package services

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stayfront/hotel-ops-backend/internal/database"
	"github.com/stayfront/hotel-ops-backend/internal/models"
)

// CheckoutService aggregates the final bill for a stay and settles it.
// Building the bill is a pure read over the booking and its unsettled
// charges; nothing changes until FinalizeCheckout.
type CheckoutService struct {
	bookingService *BookingService
	bookingRepo    *database.BookingRepository
	roomRepo       *database.RoomRepository
	chargeRepo     *database.ChargeRepository
	calculator     *RateCalculator
	logger         *logrus.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	bookingService *BookingService,
	bookingRepo *database.BookingRepository,
	roomRepo *database.RoomRepository,
	chargeRepo *database.ChargeRepository,
	calculator *RateCalculator,
	logger *logrus.Logger,
) *CheckoutService {
	return &CheckoutService{
		bookingService: bookingService,
		bookingRepo:    bookingRepo,
		roomRepo:       roomRepo,
		chargeRepo:     chargeRepo,
		calculator:     calculator,
		logger:         logger,
	}
}

// BuildBill computes the current bill for a booking. Callable any number
// of times; the answer changes only when charges or payments change.
func (s *CheckoutService) BuildBill(reference string) (*models.CheckoutBill, error) {
	booking, err := s.bookingRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}

	room, err := s.roomRepo.GetByID(booking.RoomID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up room: %w", err)
	}

	interval := booking.Interval()
	roomCharge, err := s.calculator.RoomCharge(interval, room.NightlyRate)
	if err != nil {
		return nil, err
	}

	bill := &models.CheckoutBill{
		BookingReference: booking.Reference,
		GuestID:          booking.GuestID,
		RoomID:           booking.RoomID,
		Nights:           interval.Nights(),
		NightlyRate:      room.NightlyRate,
		RoomCharge:       roomCharge,
		PaidAmount:       booking.PaidAmount,
		Currency:         s.calculator.Currency(),
		GeneratedAt:      time.Now(),
	}

	charges, err := s.chargeRepo.ListUnsettledByBooking(booking.Reference)
	if err != nil {
		return nil, fmt.Errorf("failed to list charges: %w", err)
	}
	for i := range charges {
		bill.AddCharge(&charges[i])
	}

	bill.Subtotal, bill.Tax, bill.TotalAmount = s.calculator.Total(roomCharge, bill.AncillaryTotal())
	bill.Balance = bill.TotalAmount - bill.PaidAmount

	return bill, nil
}

// FinalizeCheckout settles the stay: records the final payment, marks the
// bill's charges as settled, and checks the booking out. An unpaid balance
// does not block checkout; it is recorded as outstanding debt.
func (s *CheckoutService) FinalizeCheckout(reference string, req *models.FinalizeCheckoutRequest) (*models.CheckoutResult, error) {
	booking, err := s.bookingRepo.GetByReference(reference)
	if err != nil {
		return nil, err
	}

	if !booking.CanTransitionTo(models.BookingStatusCheckedOut) {
		return nil, &models.InvalidTransitionError{
			BookingID: booking.ID,
			From:      booking.Status,
			To:        models.BookingStatusCheckedOut,
		}
	}

	bill, err := s.BuildBill(reference)
	if err != nil {
		return nil, err
	}

	// Ancillary charges entered the bill after booking creation, so the
	// ledger total is brought up to the billed total before settling.
	if bill.TotalAmount != booking.TotalAmount {
		if err := s.bookingRepo.UpdateTotalAmount(booking.ID, int64(bill.TotalAmount)); err != nil {
			return nil, fmt.Errorf("failed to update booking total: %w", err)
		}
		booking.TotalAmount = bill.TotalAmount
	}

	if req.FinalPayment < 0 {
		return nil, fmt.Errorf("final payment cannot be negative")
	}
	if req.FinalPayment > bill.Balance {
		return nil, &models.OverpaymentError{
			BookingID: booking.ID,
			Attempted: req.FinalPayment,
			Remaining: bill.Balance,
		}
	}

	if req.FinalPayment > 0 {
		if err := s.bookingRepo.RecordPayment(booking.ID, int64(req.FinalPayment)); err != nil {
			return nil, fmt.Errorf("failed to record final payment: %w", err)
		}
		booking.PaidAmount += req.FinalPayment
		bill.PaidAmount = booking.PaidAmount
		bill.Balance = bill.TotalAmount - bill.PaidAmount
	}

	settled, err := s.chargeRepo.MarkSettled(bill.ChargeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to settle charges: %w", err)
	}

	booking, err = s.bookingService.UpdateStatus(reference, models.BookingStatusCheckedOut)
	if err != nil {
		return nil, err
	}

	result := &models.CheckoutResult{
		Bill:               bill,
		OutstandingBalance: bill.Balance,
		SettledCharges:     int(settled),
		CheckedOutAt:       time.Now(),
	}

	fields := logrus.Fields{
		"reference":       reference,
		"total":           int64(bill.TotalAmount),
		"settled_charges": settled,
	}
	if bill.Balance > 0 {
		fields["outstanding_debt"] = int64(bill.Balance)
		s.logger.WithFields(fields).Warn("Guest checked out with outstanding balance")
	} else {
		s.logger.WithFields(fields).Info("Checkout finalized")
	}

	return result, nil
}
