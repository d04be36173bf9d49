package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RoomStatus is the cached occupancy state of a room.
type RoomStatus string

const (
	RoomAvailable RoomStatus = "available"
	RoomOccupied  RoomStatus = "occupied"
	RoomCleaning  RoomStatus = "cleaning"
)

// Valid reports whether s is one of the known room states.
func (s RoomStatus) Valid() bool {
	switch s {
	case RoomAvailable, RoomOccupied, RoomCleaning:
		return true
	}
	return false
}

// Room represents a bookable hotel room.
type Room struct {
	Number           int64           `json:"number"`
	Type             string          `json:"type"`
	Price            decimal.Decimal `json:"price"` // per night
	Capacity         int             `json:"capacity"`
	Status           RoomStatus      `json:"status"`
	CleaningSchedule []time.Time     `json:"cleaning_schedule"`
}

// Label identifies the room on invoices, e.g. "Room 101 (deluxe)".
func (r *Room) Label() string {
	return fmt.Sprintf("Room %d (%s)", r.Number, r.Type)
}

// Charge returns the room line item for a stay of the given length.
func (r *Room) Charge(nights decimal.Decimal) LineItem {
	return LineItem{
		Description: r.Label(),
		Amount:      r.Price.Mul(nights),
	}
}

// Clone returns a copy that shares no slices with r. Slices are never nil.
func (r *Room) Clone() Room {
	c := *r
	c.CleaningSchedule = make([]time.Time, len(r.CleaningSchedule))
	copy(c.CleaningSchedule, r.CleaningSchedule)
	return c
}
