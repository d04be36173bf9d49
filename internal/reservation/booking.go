package reservation

import (
	"fmt"
	"time"

	"hotelbook/internal/events"
	"hotelbook/internal/metrics"
	"hotelbook/internal/models"

	"github.com/shopspring/decimal"
)

// CreateBooking verifies and reserves in one step: under the store lock it
// validates the request, checks every room with the same rule as IsAvailable
// and only then inserts the booking. Nothing is mutated on failure.
func (s *Store) CreateBooking(guestID int64, roomNumbers []int64, checkIn, checkOut time.Time) (int64, error) {
	b, err := s.createBooking(guestID, roomNumbers, checkIn, checkOut)
	if err != nil {
		metrics.IncBookingCreated(resultLabel(err))
		s.logger.Debug().Err(err).Int64("guest_id", guestID).Ints64("rooms", roomNumbers).Msg("booking rejected")
		return 0, err
	}

	metrics.IncBookingCreated("ok")
	s.logger.Info().
		Int64("booking_id", b.ID).
		Int64("guest_id", guestID).
		Ints64("rooms", b.RoomNumbers).
		Time("check_in", checkIn).
		Time("check_out", checkOut).
		Msg("booking created")
	s.flush()
	return b.ID, nil
}

func (s *Store) createBooking(guestID int64, roomNumbers []int64, checkIn, checkOut time.Time) (models.Booking, error) {
	if len(roomNumbers) == 0 {
		return models.Booking{}, fmt.Errorf("create booking: no rooms requested: %w", ErrInvalidState)
	}
	if !models.ValidInterval(checkIn, checkOut) {
		return models.Booking{}, fmt.Errorf("create booking: check-out must be after check-in: %w", ErrInvalidState)
	}
	seen := make(map[int64]struct{}, len(roomNumbers))
	for _, n := range roomNumbers {
		if _, dup := seen[n]; dup {
			return models.Booking{}, fmt.Errorf("create booking: room %d requested twice: %w", n, ErrInvalidState)
		}
		seen[n] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	guest, ok := s.guests[guestID]
	if !ok {
		return models.Booking{}, fmt.Errorf("create booking: guest %d: %w", guestID, ErrNotFound)
	}
	for _, n := range roomNumbers {
		if _, ok := s.rooms[n]; !ok {
			return models.Booking{}, fmt.Errorf("create booking: room %d: %w", n, ErrNotFound)
		}
	}
	for _, n := range roomNumbers {
		if outcome := s.availableLocked(s.rooms[n], checkIn, checkOut); outcome != outcomeAvailable {
			return models.Booking{}, fmt.Errorf("create booking: room %d (%s): %w", n, outcome, ErrRoomUnavailable)
		}
	}

	b := &models.Booking{
		ID:          s.ids.booking,
		GuestID:     guestID,
		RoomNumbers: append([]int64(nil), roomNumbers...),
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Status:      models.StatusReserved,
		Services:    []models.LineItem{},
	}
	s.ids.booking++
	s.bookings[b.ID] = b
	guest.Bookings = append(guest.Bookings, b.ID)
	s.enqueue(events.BookingCreated, b.Clone())
	return b.Clone(), nil
}

// Booking returns a copy of the booking.
func (s *Store) Booking(id int64) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return models.Booking{}, fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	return b.Clone(), nil
}

// CheckIn moves a reserved booking to checked-in and marks its rooms occupied.
func (s *Store) CheckIn(bookingID int64) error {
	b, err := s.checkIn(bookingID)
	if err != nil {
		metrics.IncTransition(string(models.StatusCheckedIn), resultLabel(err))
		s.logger.Debug().Err(err).Int64("booking_id", bookingID).Msg("check-in rejected")
		return err
	}

	metrics.IncTransition(string(models.StatusCheckedIn), "ok")
	s.logger.Info().Int64("booking_id", bookingID).Ints64("rooms", b.RoomNumbers).Msg("guest checked in")
	s.flush()
	return nil
}

func (s *Store) checkIn(bookingID int64) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.advanceLocked(bookingID, models.StatusCheckedIn)
	if err != nil {
		return models.Booking{}, fmt.Errorf("check in: %w", err)
	}
	for _, n := range b.RoomNumbers {
		s.rooms[n].Status = models.RoomOccupied
	}
	s.enqueue(events.BookingCheckedIn, b.Clone())
	return b.Clone(), nil
}

// CheckOut completes a checked-in stay: it issues the invoice (one line per
// room at price x fractional nights, then the booking's service charges) and
// marks the rooms for cleaning. A second checkout of the same booking fails.
func (s *Store) CheckOut(bookingID int64) (models.Invoice, error) {
	inv, err := s.checkOut(bookingID)
	if err != nil {
		metrics.IncTransition(string(models.StatusCheckedOut), resultLabel(err))
		s.logger.Debug().Err(err).Int64("booking_id", bookingID).Msg("check-out rejected")
		return models.Invoice{}, err
	}

	total := inv.Total()
	metrics.IncTransition(string(models.StatusCheckedOut), "ok")
	metrics.ObserveInvoice(total.InexactFloat64())
	s.logger.Info().
		Int64("booking_id", bookingID).
		Int64("invoice_id", inv.ID).
		Str("total", total.String()).
		Msg("guest checked out")
	s.flush()
	return inv, nil
}

func (s *Store) checkOut(bookingID int64) (models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.advanceLocked(bookingID, models.StatusCheckedOut)
	if err != nil {
		return models.Invoice{}, fmt.Errorf("check out: %w", err)
	}

	nights := b.Nights()
	inv := &models.Invoice{
		ID:        s.ids.invoice,
		BookingID: b.ID,
		Items:     make([]models.LineItem, 0, len(b.RoomNumbers)+len(b.Services)),
	}
	for _, n := range b.RoomNumbers {
		inv.Items = append(inv.Items, s.rooms[n].Charge(nights))
	}
	inv.Items = append(inv.Items, b.Services...)

	s.ids.invoice++
	s.invoices[inv.ID] = inv
	s.invoiceByBooking[b.ID] = inv.ID

	for _, n := range b.RoomNumbers {
		s.rooms[n].Status = models.RoomCleaning
	}
	s.enqueue(events.BookingCheckedOut, b.Clone())
	s.enqueue(events.InvoiceCreated, inv.Clone())
	return inv.Clone(), nil
}

// advanceLocked moves the booking one step forward to next. Must be called with s.mu held.
func (s *Store) advanceLocked(bookingID int64, next models.BookingStatus) (*models.Booking, error) {
	b, ok := s.bookings[bookingID]
	if !ok {
		return nil, fmt.Errorf("booking %d: %w", bookingID, ErrNotFound)
	}
	if !b.Status.CanAdvanceTo(next) {
		return nil, fmt.Errorf("booking %d is %s, cannot become %s: %w", bookingID, b.Status, next, ErrInvalidState)
	}
	b.Status = next
	return b, nil
}

// AddService appends a service charge to a booking that has not checked out.
func (s *Store) AddService(bookingID int64, description string, amount decimal.Decimal) error {
	if err := s.addService(bookingID, models.LineItem{Description: description, Amount: amount}); err != nil {
		s.logger.Debug().Err(err).Int64("booking_id", bookingID).Msg("service rejected")
		return err
	}

	s.logger.Info().
		Int64("booking_id", bookingID).
		Str("description", description).
		Str("amount", amount.String()).
		Msg("service added")
	s.flush()
	return nil
}

func (s *Store) addService(bookingID int64, item models.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return fmt.Errorf("add service: booking %d: %w", bookingID, ErrNotFound)
	}
	if b.Status == models.StatusCheckedOut {
		return fmt.Errorf("add service: booking %d already checked out: %w", bookingID, ErrInvalidState)
	}
	b.Services = append(b.Services, item)
	s.enqueue(events.ServiceAdded, b.Clone())
	return nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsNotFound(err):
		return "not_found"
	case IsUnavailable(err):
		return "unavailable"
	default:
		return "invalid_state"
	}
}
