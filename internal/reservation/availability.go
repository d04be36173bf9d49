package reservation

import (
	"fmt"
	"sort"
	"time"

	"hotelbook/internal/metrics"
	"hotelbook/internal/models"
)

const (
	outcomeAvailable    = "available"
	outcomeStatusReject = "status_reject"
	outcomeConflict     = "conflict"
)

// IsAvailable reports whether the room can be booked for [checkIn, checkOut).
//
// Unless IntervalOnly is set, a room whose cached status is not available is
// reported unavailable for any window, even one with no conflicting booking.
// Otherwise every booking that still holds the room is scanned for overlap.
func (s *Store) IsAvailable(number int64, checkIn, checkOut time.Time) (bool, error) {
	if !models.ValidInterval(checkIn, checkOut) {
		return false, fmt.Errorf("availability of room %d: check-out must be after check-in: %w", number, ErrInvalidState)
	}

	s.mu.Lock()
	room, ok := s.rooms[number]
	if !ok {
		s.mu.Unlock()
		return false, fmt.Errorf("room %d: %w", number, ErrNotFound)
	}
	outcome := s.availableLocked(room, checkIn, checkOut)
	s.mu.Unlock()

	metrics.IncAvailability(outcome)
	return outcome == outcomeAvailable, nil
}

// ListAvailable returns the numbers of every room (optionally of roomType)
// that IsAvailable would accept for the window, in ascending order.
func (s *Store) ListAvailable(checkIn, checkOut time.Time, roomType string) ([]int64, error) {
	if !models.ValidInterval(checkIn, checkOut) {
		return nil, fmt.Errorf("list available rooms: check-out must be after check-in: %w", ErrInvalidState)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	available := make([]int64, 0, len(s.rooms))
	for number, room := range s.rooms {
		if roomType != "" && room.Type != roomType {
			continue
		}
		if s.availableLocked(room, checkIn, checkOut) == outcomeAvailable {
			available = append(available, number)
		}
	}
	sort.Slice(available, func(i, j int) bool { return available[i] < available[j] })
	return available, nil
}

// availableLocked must be called with s.mu held.
func (s *Store) availableLocked(room *models.Room, checkIn, checkOut time.Time) string {
	if !s.opts.IntervalOnly && room.Status != models.RoomAvailable {
		return outcomeStatusReject
	}
	for _, b := range s.bookings {
		if !b.Active() || !b.HasRoom(room.Number) {
			continue
		}
		if b.Overlaps(checkIn, checkOut) {
			return outcomeConflict
		}
	}
	return outcomeAvailable
}
