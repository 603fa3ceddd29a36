package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stayfront/hotel-ops-backend/internal/models"
	"github.com/stayfront/hotel-ops-backend/internal/services"
	"github.com/stayfront/hotel-ops-backend/internal/utils"
)

// BookingHandler handles booking lifecycle endpoints
type BookingHandler struct {
	bookingService *services.BookingService
	coordinator    *services.PaymentCoordinator
	logger         *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService *services.BookingService, coordinator *services.PaymentCoordinator, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		coordinator:    coordinator,
		logger:         logger,
	}
}

// requestMeta builds audit metadata from the request
func requestMeta(c *gin.Context) services.RequestMeta {
	ua := utils.GetUserAgent(c)
	return services.RequestMeta{
		IPAddress: utils.GetRealIP(c),
		UserAgent: ua,
		Device:    utils.DescribeDevice(ua),
	}
}

// CreateBooking creates a booking and, for online payments, opens the
// gateway handshake
// @Summary Create booking
// @Description Reserves the room interval and creates the booking. Online payments return an authorization URL.
// @Tags Bookings
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param request body models.CreateBookingRequest true "Booking request"
// @Success 201 {object} models.BookingIntentResult
// @Failure 400 {object} map[string]interface{} "Validation error"
// @Failure 409 {object} map[string]interface{} "Room unavailable"
// @Router /bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := h.coordinator.CreateBookingIntent(&req, requestMeta(c))
	if err != nil {
		h.logger.WithError(err).Warn("Failed to create booking")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// ListBookings lists every active booking
// @Summary List active bookings
// @Description Bookings that still hold a room interval (pending, confirmed or checked in)
// @Tags Bookings
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {array} models.Booking
// @Router /bookings [get]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	bookings, err := h.bookingService.ListActive()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GetBooking retrieves a booking by reference
// @Summary Get booking
// @Tags Bookings
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param reference path string true "Booking reference"
// @Success 200 {object} models.Booking
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Router /bookings/{reference} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	booking, err := h.bookingService.GetByReference(c.Param("reference"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ListGuestBookings lists a guest's bookings
// @Summary List guest bookings
// @Tags Bookings
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param guest_id path string true "Guest ID"
// @Success 200 {array} models.Booking
// @Router /guests/{guest_id}/bookings [get]
func (h *BookingHandler) ListGuestBookings(c *gin.Context) {
	bookings, err := h.bookingService.ListByGuest(c.Param("guest_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// UpdateStatus moves a booking through its state machine
// @Summary Update booking status
// @Description Applies a lifecycle transition (confirm, check in, check out, cancel)
// @Tags Bookings
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param reference path string true "Booking reference"
// @Param request body models.UpdateStatusRequest true "Target status"
// @Success 200 {object} models.Booking
// @Failure 409 {object} map[string]interface{} "Invalid transition"
// @Router /bookings/{reference}/status [patch]
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	booking, err := h.bookingService.UpdateStatus(c.Param("reference"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// CancelBooking cancels a booking and releases its interval
// @Summary Cancel booking
// @Tags Bookings
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param reference path string true "Booking reference"
// @Success 200 {object} models.Booking
// @Failure 409 {object} map[string]interface{} "Invalid transition"
// @Router /bookings/{reference}/cancel [post]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	booking, err := h.bookingService.Cancel(c.Param("reference"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}
