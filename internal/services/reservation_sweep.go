package services

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stayfront/hotel-ops-backend/internal/config"
	"github.com/stayfront/hotel-ops-backend/internal/database"
	"github.com/stayfront/hotel-ops-backend/internal/models"
)

// ReservationSweepService periodically reconciles stale unpaid bookings
// against the gateway. A booking whose guest vanished mid-payment is
// re-verified server-side; if the money actually arrived the booking is
// settled, otherwise it is reported and, when the house policy allows,
// cancelled.
type ReservationSweepService struct {
	bookingRepo    *database.BookingRepository
	bookingService *BookingService
	coordinator    *PaymentCoordinator
	cfg            config.SweepConfig
	logger         *logrus.Logger

	stopCh  chan struct{}
	stopped sync.Once
}

// NewReservationSweepService creates a new ReservationSweepService
func NewReservationSweepService(
	bookingRepo *database.BookingRepository,
	bookingService *BookingService,
	coordinator *PaymentCoordinator,
	cfg config.SweepConfig,
	logger *logrus.Logger,
) *ReservationSweepService {
	return &ReservationSweepService{
		bookingRepo:    bookingRepo,
		bookingService: bookingService,
		coordinator:    coordinator,
		cfg:            cfg,
		logger:         logger,
		stopCh:         make(chan struct{}),
	}
}

// Start launches the background sweep loop
func (s *ReservationSweepService) Start() {
	s.logger.WithFields(logrus.Fields{
		"interval":    s.cfg.Interval,
		"stale_after": s.cfg.StaleAfter,
		"auto_cancel": s.cfg.AutoCancel,
	}).Info("Reservation sweep started")

	go func() {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runOnce()
			case <-s.stopCh:
				s.logger.Info("Reservation sweep stopped")
				return
			}
		}
	}()
}

// Stop terminates the sweep loop
func (s *ReservationSweepService) Stop() {
	s.stopped.Do(func() {
		close(s.stopCh)
	})
}

// runOnce performs a single reconciliation pass
func (s *ReservationSweepService) runOnce() {
	cutoff := time.Now().Add(-s.cfg.StaleAfter)

	bookings, err := s.bookingRepo.ListStaleUnpaid(cutoff, s.cfg.BatchSize)
	if err != nil {
		s.logger.WithError(err).Error("Sweep failed to list stale bookings")
		return
	}
	if len(bookings) == 0 {
		return
	}

	s.logger.WithField("count", len(bookings)).Info("Sweep reconciling stale unpaid bookings")

	for i := range bookings {
		s.reconcile(&bookings[i])
	}
}

// reconcile settles or reports one stale booking
func (s *ReservationSweepService) reconcile(booking *models.Booking) {
	log := s.logger.WithFields(logrus.Fields{
		"reference":     booking.Reference,
		"payment_state": booking.PaymentState,
	})

	// A live gateway reference means the money may have moved without us
	// hearing about it. Ask the gateway before giving up on the booking.
	if booking.GatewayReference != nil {
		switch booking.PaymentState {
		case models.PaymentStateAwaitingGateway, models.PaymentStateVerifying:
			result, err := s.coordinator.VerifyPayment(*booking.GatewayReference, models.PaymentSourceSweep, RequestMeta{})
			if err == nil && result.Verified {
				log.Info("Sweep recovered a settled payment")
				return
			}
			if _, unreachable := err.(*models.GatewayUnreachableError); unreachable {
				log.Warn("Sweep could not reach gateway, leaving booking for next pass")
				return
			}
		}
	}

	if !s.cfg.AutoCancel {
		log.Warn("Stale unpaid booking flagged for front desk review")
		return
	}

	if _, err := s.bookingService.Cancel(booking.Reference); err != nil {
		log.WithError(err).Error("Sweep failed to cancel stale booking")
		return
	}
	log.Info("Sweep cancelled stale unpaid booking")
}
