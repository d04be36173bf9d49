package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hotelbook/internal/idempotency"
	"hotelbook/internal/reservation"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReports struct {
	err error
}

func (f fakeReports) WriteOccupancy(_ context.Context, w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	_, err := w.Write([]byte("PK-fake-xlsx"))
	return err
}

func newTestServer(t *testing.T, opts Options) (*reservation.Store, http.Handler) {
	t.Helper()
	logger := zerolog.New(io.Discard)
	store := reservation.New(reservation.Options{FirstRoomNumber: 100}, nil, &logger)
	srv := NewHTTPServer(store, opts, &logger)
	return store, srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

const (
	day1 = "2024-01-01T14:00:00Z"
	day2 = "2024-01-02T14:00:00Z"
	day3 = "2024-01-03T14:00:00Z"
	day4 = "2024-01-04T14:00:00Z"
)

func TestBookingFlowOverHTTP(t *testing.T) {
	_, h := newTestServer(t, Options{})

	rr := do(t, h, http.MethodPost, "/guests", map[string]string{"name": "Ann", "email": "ann@example.com", "phone": "+100"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, float64(1), decodeBody(t, rr)["guest_id"])

	rr = do(t, h, http.MethodPost, "/rooms", map[string]any{"type": "standard", "price": 100.0, "capacity": 2})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, float64(100), decodeBody(t, rr)["room_number"])

	rr = do(t, h, http.MethodGet, "/rooms/100/availability?check_in="+day1+"&check_out="+day3, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decodeBody(t, rr)["available"])

	rr = do(t, h, http.MethodPost, "/bookings", map[string]any{
		"guest_id": 1, "room_numbers": []int64{100}, "check_in": day1, "check_out": day3,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, float64(1), decodeBody(t, rr)["booking_id"])

	rr = do(t, h, http.MethodGet, "/rooms/100/availability?check_in="+day2+"&check_out="+day4, nil)
	assert.Equal(t, false, decodeBody(t, rr)["available"])

	rr = do(t, h, http.MethodPost, "/bookings", map[string]any{
		"guest_id": 1, "room_numbers": []int64{100}, "check_in": day2, "check_out": day4,
	})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, h, http.MethodPost, "/bookings/1/services", map[string]any{"description": "minibar", "amount": 15.0})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodPost, "/bookings/1/checkout", nil)
	assert.Equal(t, http.StatusConflict, rr.Code, "checkout before checkin")

	rr = do(t, h, http.MethodPost, "/bookings/1/checkin", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "checked-in", decodeBody(t, rr)["status"])

	rr = do(t, h, http.MethodGet, "/rooms/100", nil)
	assert.Equal(t, "occupied", decodeBody(t, rr)["status"])

	rr = do(t, h, http.MethodPost, "/bookings/1/checkout", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body := decodeBody(t, rr)
	assert.Equal(t, float64(1), body["invoice_id"])
	assert.Equal(t, float64(215), body["total"])
	assert.Equal(t, false, body["paid"])
	items := body["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Room 100 (standard)", items[0].(map[string]any)["description"])
	assert.Equal(t, float64(200), items[0].(map[string]any)["amount"])

	rr = do(t, h, http.MethodPost, "/bookings/1/checkout", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, h, http.MethodPost, "/bookings/1/services", map[string]any{"description": "late", "amount": 5})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, h, http.MethodGet, "/rooms/100", nil)
	assert.Equal(t, "cleaning", decodeBody(t, rr)["status"])

	for i := 0; i < 2; i++ {
		rr = do(t, h, http.MethodPost, "/invoices/1/pay", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, true, decodeBody(t, rr)["paid"])
	}

	rr = do(t, h, http.MethodGet, "/bookings/1/invoice", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, float64(215), decodeBody(t, rr)["total"])

	rr = do(t, h, http.MethodGet, "/guests/1/bookings", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody(t, rr)["bookings"], 1)

	rr = do(t, h, http.MethodPost, "/rooms/100/cleaned", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "available", decodeBody(t, rr)["status"])
}

func TestListAvailable(t *testing.T) {
	store, h := newTestServer(t, Options{})
	store.RegisterRoom("standard", decimal.NewFromInt(100), 2)
	store.RegisterRoom("deluxe", decimal.NewFromInt(200), 4)
	store.RegisterRoom("standard", decimal.NewFromInt(100), 2)
	guest := store.RegisterGuest("Bob", "", "")
	in, _ := time.Parse(time.RFC3339, day1)
	out, _ := time.Parse(time.RFC3339, day3)
	_, err := store.CreateBooking(guest, []int64{100}, in, out)
	require.NoError(t, err)

	rr := do(t, h, http.MethodGet, "/rooms/available?check_in="+day2+"&check_out="+day4, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []any{float64(101), float64(102)}, decodeBody(t, rr)["available_rooms"])

	rr = do(t, h, http.MethodGet, "/rooms/available?check_in="+day2+"&check_out="+day4+"&room_type=standard", nil)
	assert.Equal(t, []any{float64(102)}, decodeBody(t, rr)["available_rooms"])

	rr = do(t, h, http.MethodGet, "/rooms/available?check_in="+day3+"&check_out="+day4+"&room_type=standard", nil)
	assert.Equal(t, []any{float64(100), float64(102)}, decodeBody(t, rr)["available_rooms"], "checkout and check-in at the same instant do not overlap")

	rr = do(t, h, http.MethodGet, "/rooms", nil)
	assert.Len(t, decodeBody(t, rr)["rooms"], 3)
}

func TestValidationAndNotFound(t *testing.T) {
	store, h := newTestServer(t, Options{})
	store.RegisterRoom("standard", decimal.NewFromInt(100), 2)
	store.RegisterGuest("Ann", "", "")

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantError  string
	}{
		{"guest without name", http.MethodPost, "/guests", map[string]string{"email": "x@example.com"}, http.StatusBadRequest, "name failed required"},
		{"bad email", http.MethodPost, "/guests", map[string]string{"name": "A", "email": "nope"}, http.StatusBadRequest, "email failed email"},
		{"unknown field", http.MethodPost, "/guests", map[string]string{"name": "A", "nick": "a"}, http.StatusBadRequest, "invalid JSON body"},
		{"zero price", http.MethodPost, "/rooms", map[string]any{"type": "s", "price": 0, "capacity": 1}, http.StatusBadRequest, "price failed gt=0"},
		{"zero capacity", http.MethodPost, "/rooms", map[string]any{"type": "s", "price": 10, "capacity": 0}, http.StatusBadRequest, "capacity failed gt=0"},
		{"empty rooms", http.MethodPost, "/bookings", map[string]any{"guest_id": 1, "room_numbers": []int64{}, "check_in": day1, "check_out": day2}, http.StatusBadRequest, "room_numbers failed min=1"},
		{"duplicate rooms", http.MethodPost, "/bookings", map[string]any{"guest_id": 1, "room_numbers": []int64{100, 100}, "check_in": day1, "check_out": day2}, http.StatusBadRequest, "room_numbers failed unique"},
		{"inverted window", http.MethodPost, "/bookings", map[string]any{"guest_id": 1, "room_numbers": []int64{100}, "check_in": day2, "check_out": day1}, http.StatusBadRequest, "check_out must be after check_in"},
		{"bad timestamp", http.MethodPost, "/bookings", map[string]any{"guest_id": 1, "room_numbers": []int64{100}, "check_in": "2024-01-01", "check_out": day2}, http.StatusBadRequest, "invalid check_in"},
		{"unknown guest", http.MethodPost, "/bookings", map[string]any{"guest_id": 9, "room_numbers": []int64{100}, "check_in": day1, "check_out": day2}, http.StatusNotFound, "not found"},
		{"unknown room", http.MethodPost, "/bookings", map[string]any{"guest_id": 1, "room_numbers": []int64{999}, "check_in": day1, "check_out": day2}, http.StatusNotFound, "not found"},
		{"service without amount", http.MethodPost, "/bookings/1/services", map[string]any{"description": "x"}, http.StatusBadRequest, "amount failed required"},
		{"missing window", http.MethodGet, "/rooms/100/availability", nil, http.StatusBadRequest, "check_in and check_out are required"},
		{"availability unknown room", http.MethodGet, "/rooms/999/availability?check_in=" + day1 + "&check_out=" + day2, nil, http.StatusNotFound, "not found"},
		{"bad id", http.MethodGet, "/bookings/abc", nil, http.StatusBadRequest, "invalid id"},
		{"unknown booking", http.MethodPost, "/bookings/42/checkin", nil, http.StatusNotFound, "not found"},
		{"unknown invoice", http.MethodPost, "/invoices/42/pay", nil, http.StatusNotFound, "not found"},
		{"no invoice yet", http.MethodGet, "/bookings/42/invoice", nil, http.StatusNotFound, "not found"},
		{"finish cleaning on available room", http.MethodPost, "/rooms/100/cleaned", nil, http.StatusConflict, "invalid state"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			var resp errorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Contains(t, resp.Error, tt.wantError)
		})
	}
}

func TestScheduleCleaning(t *testing.T) {
	store, h := newTestServer(t, Options{})
	store.RegisterRoom("standard", decimal.NewFromInt(100), 2)

	rr := do(t, h, http.MethodPost, "/rooms/100/cleaning", map[string]string{"at": day2})
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

	room, err := store.Room(100)
	require.NoError(t, err)
	require.Len(t, room.CleaningSchedule, 1)

	rr = do(t, h, http.MethodPost, "/rooms/100/cleaning", map[string]string{"at": "tomorrow"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRequestIDHeader(t *testing.T) {
	_, h := newTestServer(t, Options{})

	rr := do(t, h, http.MethodGet, "/rooms", nil)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	rr = do(t, h, http.MethodGet, "/rooms", nil, "X-Request-ID", "abc-123")
	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-ID"))
}

func TestRateLimit(t *testing.T) {
	_, h := newTestServer(t, Options{RequestsPerSecond: 0.001, Burst: 2})

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/rooms", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/rooms", nil).Code)
	rr := do(t, h, http.MethodGet, "/rooms", nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	l := newRateLimiter(0.001, 1)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.2"))
	require.Len(t, l.clients, 2)

	clock = clock.Add(time.Minute)
	assert.False(t, l.allow("10.0.0.2"))

	clock = clock.Add(3 * time.Minute)
	assert.True(t, l.allow("10.0.0.3"))
	assert.NotContains(t, l.clients, "10.0.0.1")
	assert.Contains(t, l.clients, "10.0.0.2")
	assert.Len(t, l.clients, 2)

	// an evicted client starts over with a full bucket.
	assert.True(t, l.allow("10.0.0.1"))
}

func TestNewEntitiesListEmptyArrays(t *testing.T) {
	store, h := newTestServer(t, Options{})
	store.RegisterRoom("standard", decimal.NewFromInt(100), 2)
	store.RegisterGuest("Ann", "", "")

	rr := do(t, h, http.MethodGet, "/guests/1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"bookings":[]`)

	rr = do(t, h, http.MethodGet, "/rooms/100", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"cleaning_schedule":[]`)
	assert.Contains(t, rr.Body.String(), `"price":100`)
}

func TestIdempotentBookingCreation(t *testing.T) {
	store, h := newTestServer(t, Options{Idempotency: idempotency.NewMemoryStore(time.Hour)})
	store.RegisterRoom("standard", decimal.NewFromInt(100), 2)
	store.RegisterGuest("Ann", "", "")
	body := map[string]any{"guest_id": 1, "room_numbers": []int64{100}, "check_in": day1, "check_out": day3}

	first := do(t, h, http.MethodPost, "/bookings", body, idempotency.HeaderKey, "book-1")
	require.Equal(t, http.StatusCreated, first.Code)

	retry := do(t, h, http.MethodPost, "/bookings", body, idempotency.HeaderKey, "book-1")
	assert.Equal(t, http.StatusCreated, retry.Code)
	assert.JSONEq(t, first.Body.String(), retry.Body.String())

	guest, err := store.Guest(1)
	require.NoError(t, err)
	assert.Len(t, guest.Bookings, 1)

	other := do(t, h, http.MethodPost, "/bookings", body, idempotency.HeaderKey, "book-2")
	assert.Equal(t, http.StatusConflict, other.Code)
}

func TestOccupancyReport(t *testing.T) {
	_, h := newTestServer(t, Options{})
	rr := do(t, h, http.MethodGet, "/reports/occupancy.xlsx", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	_, h = newTestServer(t, Options{Reports: fakeReports{}})
	rr = do(t, h, http.MethodGet, "/reports/occupancy.xlsx", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, xlsxContentType, rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "occupancy_")
	assert.Equal(t, "PK-fake-xlsx", rr.Body.String())

	_, h = newTestServer(t, Options{Reports: fakeReports{err: errors.New("boom")}})
	rr = do(t, h, http.MethodGet, "/reports/occupancy.xlsx", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
