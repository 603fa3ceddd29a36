package services

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/stayfront/hotel-ops-backend/internal/database"
	"github.com/stayfront/hotel-ops-backend/internal/models"
)

// AvailabilityService is the in-memory availability index. It holds one
// entry per room: the set of stay intervals currently holding that room.
// Reserve and Release on the same room serialize through that room's mutex,
// which is the only critical section in the booking path. Different rooms
// never contend.
//
// The index is rebuilt from active bookings at startup; the bookings table
// remains the durable record.
type AvailabilityService struct {
	mu     sync.RWMutex
	rooms  map[string]*roomHolds
	byRef  map[string]string // booking reference -> room ID
	logger *logrus.Logger
}

type roomHolds struct {
	mu    sync.Mutex
	holds map[string]models.StayInterval // booking reference -> interval
}

// NewAvailabilityService creates an empty availability index
func NewAvailabilityService(logger *logrus.Logger) *AvailabilityService {
	return &AvailabilityService{
		rooms:  make(map[string]*roomHolds),
		byRef:  make(map[string]string),
		logger: logger,
	}
}

// Load seeds the index from every booking whose interval still holds its
// room. Called once at startup before the server accepts requests.
func (s *AvailabilityService) Load(bookingRepo *database.BookingRepository) error {
	bookings, err := bookingRepo.ListActive()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range bookings {
		room, ok := s.rooms[b.RoomID]
		if !ok {
			room = &roomHolds{holds: make(map[string]models.StayInterval)}
			s.rooms[b.RoomID] = room
		}
		room.holds[b.Reference] = b.Interval()
		s.byRef[b.Reference] = b.RoomID
	}

	s.logger.WithField("active_bookings", len(bookings)).Info("Availability index loaded")
	return nil
}

// roomEntry returns the holds entry for a room, creating it if needed.
func (s *AvailabilityService) roomEntry(roomID string) *roomHolds {
	s.mu.RLock()
	room, ok := s.rooms[roomID]
	s.mu.RUnlock()
	if ok {
		return room
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if room, ok = s.rooms[roomID]; ok {
		return room
	}
	room = &roomHolds{holds: make(map[string]models.StayInterval)}
	s.rooms[roomID] = room
	return room
}

// CheckAvailability reports whether the interval is free. The answer is
// advisory: only Reserve decides, atomically, under the room lock.
func (s *AvailabilityService) CheckAvailability(interval models.StayInterval) (bool, error) {
	if err := interval.Validate(); err != nil {
		return false, err
	}

	room := s.roomEntry(interval.RoomID)
	room.mu.Lock()
	defer room.mu.Unlock()

	for _, held := range room.holds {
		if held.Overlaps(interval) {
			return false, nil
		}
	}
	return true, nil
}

// Reserve atomically checks the interval against existing holds and, if
// free, records it under the booking reference. Check and insert happen
// under the same room lock so two racing requests cannot both win.
func (s *AvailabilityService) Reserve(reference string, interval models.StayInterval) error {
	if err := interval.Validate(); err != nil {
		return err
	}

	room := s.roomEntry(interval.RoomID)
	room.mu.Lock()
	defer room.mu.Unlock()

	for ref, held := range room.holds {
		if held.Overlaps(interval) {
			s.logger.WithFields(logrus.Fields{
				"room_id":   interval.RoomID,
				"reference": reference,
				"held_by":   ref,
			}).Warn("Reservation conflict")
			return &models.ConflictError{RoomID: interval.RoomID, Interval: interval}
		}
	}

	room.holds[reference] = interval

	s.mu.Lock()
	s.byRef[reference] = interval.RoomID
	s.mu.Unlock()

	return nil
}

// Release removes the hold for a booking reference. Releasing an unknown
// reference is a no-op; cancellation paths may race with each other.
func (s *AvailabilityService) Release(reference string) {
	s.mu.Lock()
	roomID, ok := s.byRef[reference]
	if ok {
		delete(s.byRef, reference)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	s.mu.RLock()
	room := s.rooms[roomID]
	s.mu.RUnlock()
	if room == nil {
		return
	}

	room.mu.Lock()
	delete(room.holds, reference)
	room.mu.Unlock()
}

// Holds returns the intervals currently holding a room, sorted by check-in.
func (s *AvailabilityService) Holds(roomID string) []models.StayInterval {
	room := s.roomEntry(roomID)
	room.mu.Lock()
	defer room.mu.Unlock()

	intervals := make([]models.StayInterval, 0, len(room.holds))
	for _, held := range room.holds {
		intervals = append(intervals, held)
	}
	sort.Slice(intervals, func(i, j int) bool {
		return intervals[i].CheckIn.Before(intervals[j].CheckIn)
	})
	return intervals
}
