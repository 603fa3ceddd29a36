package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stayfront/hotel-ops-backend/internal/models"
	"github.com/stayfront/hotel-ops-backend/internal/services"
)

// CheckoutHandler handles bill preview and checkout finalization
type CheckoutHandler struct {
	checkoutService *services.CheckoutService
	logger          *logrus.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkoutService *services.CheckoutService, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		logger:          logger,
	}
}

// PreviewBill computes the current bill without changing anything
// @Summary Preview checkout bill
// @Description Pure read. Aggregates room charges, unsettled ancillary charges, tax and payments.
// @Tags Checkout
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param reference path string true "Booking reference"
// @Success 200 {object} models.CheckoutBill
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Router /bookings/{reference}/checkout [get]
func (h *CheckoutHandler) PreviewBill(c *gin.Context) {
	bill, err := h.checkoutService.BuildBill(c.Param("reference"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bill)
}

// FinalizeCheckout settles the stay
// @Summary Finalize checkout
// @Description Records the final payment, settles the bill's charges and checks the booking out. Unpaid balance is recorded as debt, not blocked on.
// @Tags Checkout
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param reference path string true "Booking reference"
// @Param request body models.FinalizeCheckoutRequest true "Final payment"
// @Success 200 {object} models.CheckoutResult
// @Failure 409 {object} map[string]interface{} "Booking not checked in"
// @Failure 422 {object} map[string]interface{} "Overpayment"
// @Router /bookings/{reference}/checkout [post]
func (h *CheckoutHandler) FinalizeCheckout(c *gin.Context) {
	var req models.FinalizeCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := h.checkoutService.FinalizeCheckout(c.Param("reference"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
