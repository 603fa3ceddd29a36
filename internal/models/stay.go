package models

import "time"

// StayInterval is a half-open [CheckIn, CheckOut) occupancy window on one
// room. The check-out day is excluded, so a departure and an arrival on the
// same day never conflict.
type StayInterval struct {
	RoomID   string    `json:"room_id"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// Validate checks that the interval is non-empty.
func (s StayInterval) Validate() error {
	if !s.CheckOut.After(s.CheckIn) {
		return &InvalidIntervalError{CheckIn: s.CheckIn, CheckOut: s.CheckOut}
	}
	return nil
}

// Overlaps reports whether two half-open intervals intersect. Touching
// endpoints do not overlap.
func (s StayInterval) Overlaps(other StayInterval) bool {
	return s.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(s.CheckOut)
}

// Contains reports whether t falls inside the interval.
func (s StayInterval) Contains(t time.Time) bool {
	return !t.Before(s.CheckIn) && t.Before(s.CheckOut)
}

// Nights is the number of billable nights, rounded up for partial days.
func (s StayInterval) Nights() int {
	d := s.CheckOut.Sub(s.CheckIn)
	nights := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		nights++
	}
	return nights
}
