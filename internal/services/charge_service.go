package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/stayfront/hotel-ops-backend/internal/database"
	"github.com/stayfront/hotel-ops-backend/internal/models"
)

// ChargeService records ancillary charges from the restaurant, laundry,
// pool and gym modules against in-house bookings.
type ChargeService struct {
	chargeRepo  *database.ChargeRepository
	bookingRepo *database.BookingRepository
	logger      *logrus.Logger
}

// NewChargeService creates a new ChargeService
func NewChargeService(chargeRepo *database.ChargeRepository, bookingRepo *database.BookingRepository, logger *logrus.Logger) *ChargeService {
	return &ChargeService{
		chargeRepo:  chargeRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// CreateCharge records a charge. Charges with a booking reference must
// point at a stay that can still reach checkout; walk-in sales carry no
// reference and never appear on a bill.
func (s *ChargeService) CreateCharge(req *models.CreateChargeRequest) (*models.AncillaryCharge, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.BookingReference != nil && *req.BookingReference != "" {
		booking, err := s.bookingRepo.GetByReference(*req.BookingReference)
		if err != nil {
			return nil, fmt.Errorf("booking %s not found", *req.BookingReference)
		}
		switch booking.Status {
		case models.BookingStatusCheckedOut, models.BookingStatusCancelled:
			return nil, fmt.Errorf("booking %s is %s and cannot take charges", booking.Reference, booking.Status)
		}
		if req.RoomID == nil {
			req.RoomID = &booking.RoomID
		}
	}

	charge := &models.AncillaryCharge{
		BookingReference: req.BookingReference,
		RoomID:           req.RoomID,
		Category:         req.Category,
		Description:      req.Description,
		Amount:           req.Amount,
		Settlement:       models.SettlementUnsettled,
	}

	if err := s.chargeRepo.Create(charge); err != nil {
		return nil, fmt.Errorf("failed to create charge: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"charge_id": charge.ID,
		"category":  charge.Category,
		"amount":    int64(charge.Amount),
	}).Info("Ancillary charge recorded")

	return charge, nil
}

// ListUnsettled lists a booking's charges that have not reached a bill yet
func (s *ChargeService) ListUnsettled(bookingReference string) ([]models.AncillaryCharge, error) {
	return s.chargeRepo.ListUnsettledByBooking(bookingReference)
}
