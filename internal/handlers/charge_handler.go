package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stayfront/hotel-ops-backend/internal/models"
	"github.com/stayfront/hotel-ops-backend/internal/services"
)

// ChargeHandler handles ancillary charge endpoints
type ChargeHandler struct {
	chargeService *services.ChargeService
	logger        *logrus.Logger
}

// NewChargeHandler creates a new ChargeHandler
func NewChargeHandler(chargeService *services.ChargeService, logger *logrus.Logger) *ChargeHandler {
	return &ChargeHandler{
		chargeService: chargeService,
		logger:        logger,
	}
}

// CreateCharge records an ancillary charge against a booking or as a walk-in sale
// @Summary Create charge
// @Description Records a restaurant/laundry/pool/gym charge. With a booking reference it lands on the checkout bill; without one it is a walk-in sale.
// @Tags Charges
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param request body models.CreateChargeRequest true "Charge request"
// @Success 201 {object} models.AncillaryCharge
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Router /charges [post]
func (h *ChargeHandler) CreateCharge(c *gin.Context) {
	var req models.CreateChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	charge, err := h.chargeService.CreateCharge(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, charge)
}

// ListCharges lists a booking's unsettled charges
// @Summary List unsettled charges
// @Tags Charges
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param reference path string true "Booking reference"
// @Success 200 {array} models.AncillaryCharge
// @Router /bookings/{reference}/charges [get]
func (h *ChargeHandler) ListCharges(c *gin.Context) {
	charges, err := h.chargeService.ListUnsettled(c.Param("reference"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"charges": charges})
}
