package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stayfront/hotel-ops-backend/internal/database"
	"github.com/stayfront/hotel-ops-backend/internal/models"
	"github.com/stayfront/hotel-ops-backend/internal/services"
)

// RoomHandler handles room listing and availability endpoints
type RoomHandler struct {
	roomRepo     *database.RoomRepository
	availability *services.AvailabilityService
	logger       *logrus.Logger
}

// NewRoomHandler creates a new RoomHandler
func NewRoomHandler(roomRepo *database.RoomRepository, availability *services.AvailabilityService, logger *logrus.Logger) *RoomHandler {
	return &RoomHandler{
		roomRepo:     roomRepo,
		availability: availability,
		logger:       logger,
	}
}

// ListRooms lists all rooms
// @Summary List rooms
// @Tags Rooms
// @Produce json
// @Success 200 {array} models.Room
// @Router /rooms [get]
func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.roomRepo.List()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list rooms")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// GetRoom retrieves one room
// @Summary Get room
// @Tags Rooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} models.Room
// @Failure 404 {object} map[string]interface{} "Room not found"
// @Router /rooms/{id} [get]
func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.roomRepo.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, room)
}

// CheckAvailability reports whether a room is free for an interval
// @Summary Check room availability
// @Description Checks a half-open [check_in, check_out) interval against current holds
// @Tags Rooms
// @Produce json
// @Param id path string true "Room ID"
// @Param check_in query string true "Check-in date (YYYY-MM-DD)"
// @Param check_out query string true "Check-out date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Invalid interval"
// @Router /rooms/{id}/availability [get]
func (h *RoomHandler) CheckAvailability(c *gin.Context) {
	checkIn, err := time.Parse("2006-01-02", c.Query("check_in"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "check_in must be a YYYY-MM-DD date",
		})
		return
	}
	checkOut, err := time.Parse("2006-01-02", c.Query("check_out"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "check_out must be a YYYY-MM-DD date",
		})
		return
	}

	interval := models.StayInterval{
		RoomID:   c.Param("id"),
		CheckIn:  checkIn,
		CheckOut: checkOut,
	}

	available, err := h.availability.CheckAvailability(interval)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"room_id":   interval.RoomID,
		"check_in":  c.Query("check_in"),
		"check_out": c.Query("check_out"),
		"available": available,
	})
}
