package api

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

type registerRoomRequest struct {
	Type     string          `json:"type" validate:"required,max=64"`
	Price    decimal.Decimal `json:"price" validate:"gt=0"`
	Capacity int             `json:"capacity" validate:"gt=0"`
}

type scheduleCleaningRequest struct {
	At string `json:"at" validate:"required"`
}

// POST /rooms
func (s *HTTPServer) handleRegisterRoom(w http.ResponseWriter, r *http.Request) {
	var req registerRoomRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	number := s.store.RegisterRoom(req.Type, req.Price, req.Capacity)
	writeJSON(w, http.StatusCreated, map[string]int64{"room_number": number})
}

// GET /rooms
func (s *HTTPServer) handleListRooms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"rooms": s.store.Rooms()})
}

// GET /rooms/{number}
func (s *HTTPServer) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	number, err := pathID(r, "number")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	room, err := s.store.Room(number)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// GET /rooms/available?check_in=...&check_out=...&room_type=...
func (s *HTTPServer) handleListAvailable(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in, out, err := parseWindow(q.Get("check_in"), q.Get("check_out"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rooms, err := s.store.ListAvailable(in, out, q.Get("room_type"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int64{"available_rooms": rooms})
}

// GET /rooms/{number}/availability?check_in=...&check_out=...
func (s *HTTPServer) handleRoomAvailability(w http.ResponseWriter, r *http.Request) {
	number, err := pathID(r, "number")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q := r.URL.Query()
	in, out, err := parseWindow(q.Get("check_in"), q.Get("check_out"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ok, err := s.store.IsAvailable(number, in, out)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": ok})
}

// POST /rooms/{number}/cleaning
func (s *HTTPServer) handleScheduleCleaning(w http.ResponseWriter, r *http.Request) {
	number, err := pathID(r, "number")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req scheduleCleaningRequest
	if err := s.decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	at, err := time.Parse(time.RFC3339, req.At)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid at; expected RFC 3339")
		return
	}

	if err := s.store.ScheduleCleaning(number, at); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /rooms/{number}/cleaned
func (s *HTTPServer) handleFinishCleaning(w http.ResponseWriter, r *http.Request) {
	number, err := pathID(r, "number")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	room, err := s.store.FinishCleaning(number)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}
