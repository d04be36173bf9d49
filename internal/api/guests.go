package api

import (
	"net/http"
)

type registerGuestRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"omitempty,max=32"`
}

// POST /guests
func (s *HTTPServer) handleRegisterGuest(w http.ResponseWriter, r *http.Request) {
	var req registerGuestRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := s.store.RegisterGuest(req.Name, req.Email, req.Phone)
	writeJSON(w, http.StatusCreated, map[string]int64{"guest_id": id})
}

// GET /guests/{id}
func (s *HTTPServer) handleGetGuest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	guest, err := s.store.Guest(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, guest)
}

// GET /guests/{id}/bookings
func (s *HTTPServer) handleGuestBookings(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bookings, err := s.store.GuestBookings(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}
