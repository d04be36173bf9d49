// Package api is the HTTP transport for the reservation store.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"hotelbook/internal/idempotency"
	"hotelbook/internal/reservation"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ReportWriter renders the occupancy workbook.
type ReportWriter interface {
	WriteOccupancy(ctx context.Context, w io.Writer) error
}

// Options configure the HTTP server.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// RequestsPerSecond and Burst size the per-client token bucket. Zero RPS disables limiting.
	RequestsPerSecond float64
	Burst             int

	Idempotency idempotency.Store
	Reports     ReportWriter
}

// HTTPServer serves the reservation API.
type HTTPServer struct {
	store    *reservation.Store
	reports  ReportWriter
	validate *validator.Validate
	logger   *zerolog.Logger
	server   *http.Server
}

func NewHTTPServer(store *reservation.Store, opts Options, logger *zerolog.Logger) *HTTPServer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "api").Logger()

	s := &HTTPServer{
		store:    store,
		reports:  opts.Reports,
		validate: newValidator(),
		logger:   &l,
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var handler http.Handler = mux
	handler = idempotency.Middleware(opts.Idempotency, &l)(handler)
	handler = newRateLimiter(opts.RequestsPerSecond, opts.Burst).middleware(handler)
	handler = accessLog(&l)(handler)
	handler = requestID(handler)

	s.server = &http.Server{
		Addr:         opts.Addr,
		Handler:      handler,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return s
}

func (s *HTTPServer) routes(mux *http.ServeMux) {
	handle := func(pattern, route string, h http.HandlerFunc) {
		mux.Handle(pattern, instrument(route, h))
	}

	handle("POST /guests", "guests_create", s.handleRegisterGuest)
	handle("GET /guests/{id}", "guests_get", s.handleGetGuest)
	handle("GET /guests/{id}/bookings", "guests_bookings", s.handleGuestBookings)

	handle("POST /rooms", "rooms_create", s.handleRegisterRoom)
	handle("GET /rooms", "rooms_list", s.handleListRooms)
	handle("GET /rooms/available", "rooms_available", s.handleListAvailable)
	handle("GET /rooms/{number}", "rooms_get", s.handleGetRoom)
	handle("GET /rooms/{number}/availability", "rooms_availability", s.handleRoomAvailability)
	handle("POST /rooms/{number}/cleaning", "rooms_cleaning", s.handleScheduleCleaning)
	handle("POST /rooms/{number}/cleaned", "rooms_cleaned", s.handleFinishCleaning)

	handle("POST /bookings", "bookings_create", s.handleCreateBooking)
	handle("GET /bookings/{id}", "bookings_get", s.handleGetBooking)
	handle("POST /bookings/{id}/checkin", "bookings_checkin", s.handleCheckIn)
	handle("POST /bookings/{id}/checkout", "bookings_checkout", s.handleCheckOut)
	handle("POST /bookings/{id}/services", "bookings_services", s.handleAddService)
	handle("GET /bookings/{id}/invoice", "bookings_invoice", s.handleBookingInvoice)

	handle("GET /invoices/{id}", "invoices_get", s.handleGetInvoice)
	handle("POST /invoices/{id}/pay", "invoices_pay", s.handleMarkPaid)

	handle("GET /reports/occupancy.xlsx", "reports_occupancy", s.handleOccupancyReport)
}

// Handler exposes the full middleware chain, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctxShutdown)
	}()

	s.logger.Info().Str("addr", s.server.Addr).Msg("http api listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
