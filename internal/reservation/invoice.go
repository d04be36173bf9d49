package reservation

import (
	"fmt"

	"hotelbook/internal/events"
	"hotelbook/internal/metrics"
	"hotelbook/internal/models"
)

// Invoice returns a copy of the invoice.
func (s *Store) Invoice(id int64) (models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[id]
	if !ok {
		return models.Invoice{}, fmt.Errorf("invoice %d: %w", id, ErrNotFound)
	}
	return inv.Clone(), nil
}

// InvoiceForBooking returns the invoice issued when the booking checked out.
func (s *Store) InvoiceForBooking(bookingID int64) (models.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[bookingID]; !ok {
		return models.Invoice{}, fmt.Errorf("booking %d: %w", bookingID, ErrNotFound)
	}
	id, ok := s.invoiceByBooking[bookingID]
	if !ok {
		return models.Invoice{}, fmt.Errorf("invoice for booking %d: %w", bookingID, ErrNotFound)
	}
	return s.invoices[id].Clone(), nil
}

// MarkPaid sets the paid flag. Marking a paid invoice again succeeds without change.
func (s *Store) MarkPaid(invoiceID int64) (models.Invoice, error) {
	inv, changed, err := s.markPaid(invoiceID)
	if err != nil {
		s.logger.Debug().Err(err).Int64("invoice_id", invoiceID).Msg("mark paid rejected")
		return models.Invoice{}, err
	}
	if !changed {
		return inv, nil
	}

	metrics.IncInvoicePaid()
	s.logger.Info().Int64("invoice_id", invoiceID).Int64("booking_id", inv.BookingID).Msg("invoice paid")
	s.flush()
	return inv, nil
}

func (s *Store) markPaid(invoiceID int64) (models.Invoice, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[invoiceID]
	if !ok {
		return models.Invoice{}, false, fmt.Errorf("mark paid: invoice %d: %w", invoiceID, ErrNotFound)
	}
	if inv.Paid {
		return inv.Clone(), false, nil
	}
	inv.Paid = true
	s.enqueue(events.InvoicePaid, inv.Clone())
	return inv.Clone(), true, nil
}
