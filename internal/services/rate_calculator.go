package services

import (
	"github.com/sirupsen/logrus"

	"github.com/stayfront/hotel-ops-backend/internal/config"
	"github.com/stayfront/hotel-ops-backend/internal/models"
	"github.com/stayfront/hotel-ops-backend/pkg/money"
)

// RateCalculator computes room charges, tax and bill totals. All arithmetic
// is integer minor units; rounding happens once, at the tax step.
type RateCalculator struct {
	taxRateBasisPts int64
	currency        string
	logger          *logrus.Logger
}

// NewRateCalculator creates a new RateCalculator
func NewRateCalculator(cfg config.BillingConfig, logger *logrus.Logger) *RateCalculator {
	return &RateCalculator{
		taxRateBasisPts: cfg.TaxRateBasisPts,
		currency:        cfg.Currency,
		logger:          logger,
	}
}

// Currency returns the billing currency code.
func (c *RateCalculator) Currency() string {
	return c.currency
}

// RoomCharge is nights times the nightly rate.
func (c *RateCalculator) RoomCharge(interval models.StayInterval, nightlyRate money.Amount) (money.Amount, error) {
	if err := interval.Validate(); err != nil {
		return 0, err
	}
	return money.Amount(int64(interval.Nights())) * nightlyRate, nil
}

// Tax applies the configured rate to a subtotal.
func (c *RateCalculator) Tax(subtotal money.Amount) money.Amount {
	return money.TaxBasisPoints(subtotal, c.taxRateBasisPts)
}

// Total computes subtotal plus tax for a room charge and ancillary total.
func (c *RateCalculator) Total(roomCharge, ancillary money.Amount) (subtotal, tax, total money.Amount) {
	subtotal = roomCharge + ancillary
	tax = c.Tax(subtotal)
	total = subtotal + tax
	return subtotal, tax, total
}

// QuoteBooking prices a prospective stay before it is created.
func (c *RateCalculator) QuoteBooking(interval models.StayInterval, nightlyRate money.Amount) (money.Amount, error) {
	roomCharge, err := c.RoomCharge(interval, nightlyRate)
	if err != nil {
		return 0, err
	}

	_, _, total := c.Total(roomCharge, 0)

	c.logger.WithFields(logrus.Fields{
		"room_id":      interval.RoomID,
		"nights":       interval.Nights(),
		"nightly_rate": int64(nightlyRate),
		"total":        int64(total),
	}).Debug("Priced booking quote")

	return total, nil
}
