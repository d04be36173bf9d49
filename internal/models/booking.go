package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusReserved   BookingStatus = "reserved"
	StatusCheckedIn  BookingStatus = "checked-in"
	StatusCheckedOut BookingStatus = "checked-out"
)

// Valid reports whether s is one of the known booking states.
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusReserved, StatusCheckedIn, StatusCheckedOut:
		return true
	}
	return false
}

// Next returns the only state s may advance to.
// Checked-out is terminal and returns false.
func (s BookingStatus) Next() (BookingStatus, bool) {
	switch s {
	case StatusReserved:
		return StatusCheckedIn, true
	case StatusCheckedIn:
		return StatusCheckedOut, true
	}
	return "", false
}

// CanAdvanceTo reports whether a booking in s may move to next.
func (s BookingStatus) CanAdvanceTo(next BookingStatus) bool {
	n, ok := s.Next()
	return ok && n == next
}

// LineItem is a description/amount pair used for service charges and invoice lines.
type LineItem struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Booking represents a reservation of one or more rooms for a guest.
type Booking struct {
	ID          int64         `json:"id"`
	GuestID     int64         `json:"guest_id"`
	RoomNumbers []int64       `json:"room_numbers"`
	CheckIn     time.Time     `json:"check_in"`
	CheckOut    time.Time     `json:"check_out"`
	Status      BookingStatus `json:"status"`
	Services    []LineItem    `json:"services"`
}

// Active reports whether the booking still holds its rooms.
func (b *Booking) Active() bool {
	return b.Status != StatusCheckedOut
}

// HasRoom reports whether the booking includes the room.
func (b *Booking) HasRoom(number int64) bool {
	for _, n := range b.RoomNumbers {
		if n == number {
			return true
		}
	}
	return false
}

// Overlaps checks the booking against the window [checkIn, checkOut).
// Uses half-open interval semantics: a checkout at T and a check-in at T do not collide.
func (b *Booking) Overlaps(checkIn, checkOut time.Time) bool {
	// [A, B) and [C, D) overlap iff A < D && C < B
	return checkIn.Before(b.CheckOut) && b.CheckIn.Before(checkOut)
}

// OverlapsWith checks if this booking overlaps with another booking.
func (b *Booking) OverlapsWith(other *Booking) bool {
	return b.Overlaps(other.CheckIn, other.CheckOut)
}

// Nights returns the billed length of the stay in fractional nights.
func (b *Booking) Nights() decimal.Decimal {
	return Nights(b.CheckIn, b.CheckOut)
}

// Clone returns a copy that shares no slices with b. Slices are never nil.
func (b *Booking) Clone() Booking {
	c := *b
	c.RoomNumbers = make([]int64, len(b.RoomNumbers))
	copy(c.RoomNumbers, b.RoomNumbers)
	c.Services = make([]LineItem, len(b.Services))
	copy(c.Services, b.Services)
	return c
}

// ValidInterval reports whether checkOut is strictly after checkIn.
func ValidInterval(checkIn, checkOut time.Time) bool {
	return checkOut.After(checkIn)
}

var day = decimal.NewFromInt(int64(24 * time.Hour))

// Nights divides the elapsed time between checkIn and checkOut into 24-hour units.
// Partial nights are kept proportionally, never rounded up.
func Nights(checkIn, checkOut time.Time) decimal.Decimal {
	return decimal.NewFromInt(int64(checkOut.Sub(checkIn))).Div(day)
}
