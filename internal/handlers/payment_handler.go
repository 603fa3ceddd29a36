package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stayfront/hotel-ops-backend/internal/database"
	"github.com/stayfront/hotel-ops-backend/internal/models"
	"github.com/stayfront/hotel-ops-backend/internal/services"
)

// PaymentHandler handles payment handshake and webhook endpoints
type PaymentHandler struct {
	coordinator *services.PaymentCoordinator
	gateway     services.PaymentGateway
	auditRepo   *database.PaymentAuditRepository
	logger      *logrus.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(
	coordinator *services.PaymentCoordinator,
	gateway services.PaymentGateway,
	auditRepo *database.PaymentAuditRepository,
	logger *logrus.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		coordinator: coordinator,
		gateway:     gateway,
		auditRepo:   auditRepo,
		logger:      logger,
	}
}

// VerifyPayment verifies a payment attempt against the gateway
// @Summary Verify payment
// @Description Server-side verification of a gateway transaction. Idempotent; a settled attempt is reported settled, never credited twice.
// @Tags Payments
// @Produce json
// @Param reference path string true "Gateway reference"
// @Success 200 {object} models.VerifyPaymentResult
// @Failure 402 {object} map[string]interface{} "Verification failed"
// @Failure 502 {object} map[string]interface{} "Gateway unreachable"
// @Router /payments/{reference}/verify [post]
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	result, err := h.coordinator.VerifyPayment(c.Param("reference"), models.PaymentSourceGuest, requestMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// InitiatePayment opens a gateway transaction for an existing booking
// @Summary Initiate online payment
// @Description Opens a gateway transaction for the outstanding balance. A live attempt is replayed instead of duplicated.
// @Tags Payments
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param reference path string true "Booking reference"
// @Success 200 {object} models.BookingIntentResult
// @Failure 502 {object} map[string]interface{} "Gateway unreachable"
// @Router /bookings/{reference}/payment [post]
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	result, err := h.coordinator.InitiatePayment(c.Param("reference"), requestMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AbandonPayment records that the guest closed the payment window
// @Summary Abandon payment
// @Description Marks the current attempt abandoned. The booking and its room hold are retained for retry.
// @Tags Payments
// @Produce json
// @Param reference path string true "Booking reference"
// @Success 200 {object} models.Booking
// @Router /bookings/{reference}/payment/abandon [post]
func (h *PaymentHandler) AbandonPayment(c *gin.Context) {
	booking, err := h.coordinator.AbandonPayment(c.Param("reference"), requestMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// RetryPayment opens a fresh gateway transaction for the same booking
// @Summary Retry payment
// @Description Issues a new gateway reference for an abandoned or failed attempt. The booking reference is unchanged.
// @Tags Payments
// @Produce json
// @Param reference path string true "Booking reference"
// @Success 200 {object} models.BookingIntentResult
// @Failure 502 {object} map[string]interface{} "Gateway unreachable"
// @Router /bookings/{reference}/payment/retry [post]
func (h *PaymentHandler) RetryPayment(c *gin.Context) {
	result, err := h.coordinator.RetryPayment(c.Param("reference"), requestMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Webhook receives gateway webhooks. The signature is verified against the
// raw body before anything is parsed; unsigned requests are rejected.
// @Summary Payment webhook
// @Tags Payments
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{} "Bad signature"
// @Router /payments/webhook [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	signature := c.GetHeader("x-paystack-signature")
	if !h.gateway.VerifyWebhookSignature(rawBody, signature) {
		h.logger.WithField("ip", c.ClientIP()).Warn("Webhook with bad signature rejected")
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "Invalid webhook signature",
		})
		return
	}

	var event services.PaystackWebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.coordinator.HandleWebhook(&event, rawBody, requestMeta(c)); err != nil {
		// The gateway retries on non-2xx. Verification failures are final,
		// so acknowledge them; only transient errors ask for a retry.
		if _, unreachable := err.(*models.GatewayUnreachableError); unreachable {
			respondError(c, err)
			return
		}
		h.logger.WithError(err).Warn("Webhook processed with verification failure")
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// GetAuditTrail lists the payment audit entries for a booking
// @Summary Payment audit trail
// @Tags Payments
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param reference path string true "Booking reference"
// @Success 200 {array} models.PaymentAudit
// @Router /bookings/{reference}/payments [get]
func (h *PaymentHandler) GetAuditTrail(c *gin.Context) {
	audits, err := h.auditRepo.ListByBookingReference(c.Param("reference"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"audit_trail": audits})
}
