package models

// Guest represents a registered hotel guest.
type Guest struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	LoyaltyPoints int64   `json:"loyalty_points"`
	Bookings      []int64 `json:"bookings"`
}

// Clone returns a copy that shares no slices with g. Slices are never nil.
func (g *Guest) Clone() Guest {
	c := *g
	c.Bookings = make([]int64, len(g.Bookings))
	copy(c.Bookings, g.Bookings)
	return c
}
