package api

import (
	"encoding/json"
	"net/http"

	"hotelbook/internal/models"

	"github.com/shopspring/decimal"
)

type createBookingRequest struct {
	GuestID     int64   `json:"guest_id" validate:"required,gt=0"`
	RoomNumbers []int64 `json:"room_numbers" validate:"required,min=1,unique,dive,gt=0"`
	CheckIn     string  `json:"check_in" validate:"required"`
	CheckOut    string  `json:"check_out" validate:"required"`
}

type addServiceRequest struct {
	Description string           `json:"description" validate:"required,max=200"`
	Amount      *decimal.Decimal `json:"amount"`
}

type checkOutResponse struct {
	InvoiceID int64             `json:"invoice_id"`
	Total     json.Number       `json:"total"`
	Paid      bool              `json:"paid"`
	Items     []models.LineItem `json:"items"`
}

// POST /bookings
func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, out, err := parseWindow(req.CheckIn, req.CheckOut)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.store.CreateBooking(req.GuestID, req.RoomNumbers, in, out)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"booking_id": id})
}

// GET /bookings/{id}
func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := s.store.Booking(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// POST /bookings/{id}/checkin
func (s *HTTPServer) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.CheckIn(id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(models.StatusCheckedIn)})
}

// POST /bookings/{id}/checkout
func (s *HTTPServer) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	inv, err := s.store.CheckOut(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkOutResponse{
		InvoiceID: inv.ID,
		Total:     models.Amount(inv.Total()),
		Paid:      inv.Paid,
		Items:     inv.Items,
	})
}

// POST /bookings/{id}/services
func (s *HTTPServer) handleAddService(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req addServiceRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Amount == nil {
		writeError(w, http.StatusBadRequest, "amount failed required")
		return
	}

	if err := s.store.AddService(id, req.Description, *req.Amount); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.LineItem{Description: req.Description, Amount: *req.Amount})
}

// GET /bookings/{id}/invoice
func (s *HTTPServer) handleBookingInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	inv, err := s.store.InvoiceForBooking(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newInvoiceResponse(inv))
}
