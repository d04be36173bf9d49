package reservation

import (
	"fmt"
	"sort"
	"time"

	"hotelbook/internal/models"

	"github.com/shopspring/decimal"
)

// RegisterGuest stores a new guest and returns its id. It never fails;
// email and phone are not required to be unique.
func (s *Store) RegisterGuest(name, email, phone string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := &models.Guest{
		ID:       s.ids.guest,
		Name:     name,
		Email:    email,
		Phone:    phone,
		Bookings: []int64{},
	}
	s.ids.guest++
	s.guests[g.ID] = g

	s.logger.Info().Int64("guest_id", g.ID).Msg("guest registered")
	return g.ID
}

// Guest returns a copy of the guest.
func (s *Store) Guest(id int64) (models.Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.guests[id]
	if !ok {
		return models.Guest{}, fmt.Errorf("guest %d: %w", id, ErrNotFound)
	}
	return g.Clone(), nil
}

// GuestBookings returns the guest's bookings in the order they were made.
func (s *Store) GuestBookings(guestID int64) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.guests[guestID]
	if !ok {
		return nil, fmt.Errorf("guest %d: %w", guestID, ErrNotFound)
	}
	out := make([]models.Booking, 0, len(g.Bookings))
	for _, id := range g.Bookings {
		if b, ok := s.bookings[id]; ok {
			out = append(out, b.Clone())
		}
	}
	return out, nil
}

// RegisterRoom catalogs a new room as available and returns its number.
// Price and capacity are expected to be positive; callers validate them.
func (s *Store) RegisterRoom(roomType string, price decimal.Decimal, capacity int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := &models.Room{
		Number:           s.ids.room,
		Type:             roomType,
		Price:            price,
		Capacity:         capacity,
		Status:           models.RoomAvailable,
		CleaningSchedule: []time.Time{},
	}
	s.ids.room++
	s.rooms[r.Number] = r

	s.logger.Info().
		Int64("room", r.Number).
		Str("type", roomType).
		Str("price", price.String()).
		Int("capacity", capacity).
		Msg("room registered")
	return r.Number
}

// Room returns a copy of the room.
func (s *Store) Room(number int64) (models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[number]
	if !ok {
		return models.Room{}, fmt.Errorf("room %d: %w", number, ErrNotFound)
	}
	return r.Clone(), nil
}

// Rooms returns every cataloged room ordered by number.
func (s *Store) Rooms() []models.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}
