package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stayfront/hotel-ops-backend/internal/models"
)

// respondError maps domain errors to HTTP status codes and writes a JSON
// error body.
func respondError(c *gin.Context, err error) {
	var (
		invalidInterval   *models.InvalidIntervalError
		conflict          *models.ConflictError
		invalidTransition *models.InvalidTransitionError
		overpayment       *models.OverpaymentError
		verifyFailed      *models.VerificationFailedError
		unreachable       *models.GatewayUnreachableError
	)

	switch {
	case errors.As(err, &invalidInterval):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_interval",
			"message": err.Error(),
		})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "room_unavailable",
			"message": err.Error(),
		})
	case errors.As(err, &invalidTransition):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "invalid_transition",
			"message": err.Error(),
		})
	case errors.As(err, &overpayment):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "overpayment",
			"message": err.Error(),
		})
	case errors.As(err, &verifyFailed):
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":   "verification_failed",
			"message": err.Error(),
		})
	case errors.As(err, &unreachable):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "gateway_unreachable",
			"message": "Payment gateway is unreachable, please try again",
		})
	case errors.Is(err, sql.ErrNoRows):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": "Resource not found",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
	}
}

// respondBadRequest writes a 400 with a validation message
func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "invalid_request",
		"message": err.Error(),
	})
}
