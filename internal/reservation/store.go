// Package reservation implements the hotel reservation store: guests, rooms,
// bookings and invoices behind one lock, with the no-double-booking guarantee.
package reservation

import (
	"sort"
	"sync"

	"hotelbook/internal/models"

	"github.com/rs/zerolog"
)

// Publisher receives lifecycle events after a mutation has been committed.
// Events arrive in commit order. PublishJSON must not call back into the
// store's mutating methods.
type Publisher interface {
	PublishJSON(evType string, payload interface{}) error
}

// Options tune store behaviour.
type Options struct {
	// FirstRoomNumber is the number given to the first registered room. Default 1.
	FirstRoomNumber int64

	// IntervalOnly disables the cached-status fast reject in availability checks,
	// so only overlapping bookings make a room unavailable.
	IntervalOnly bool
}

// Store owns all reservation state. Every public method holds mu for its
// whole check-and-mutate. Mutations queue their events in the outbox while
// still holding mu; flush drains the outbox under pubMu after mu is released,
// so events go out in commit order and a slow publisher never blocks mu.
type Store struct {
	mu     sync.Mutex
	pubMu  sync.Mutex
	outbox []pendingEvent

	guests           map[int64]*models.Guest
	rooms            map[int64]*models.Room
	bookings         map[int64]*models.Booking
	invoices         map[int64]*models.Invoice
	invoiceByBooking map[int64]int64

	ids struct {
		guest   int64
		room    int64
		booking int64
		invoice int64
	}

	opts      Options
	publisher Publisher
	logger    *zerolog.Logger
}

// New creates an empty store. publisher may be nil.
func New(opts Options, publisher Publisher, logger *zerolog.Logger) *Store {
	if opts.FirstRoomNumber <= 0 {
		opts.FirstRoomNumber = 1
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "reservation").Logger()

	s := &Store{
		guests:           make(map[int64]*models.Guest),
		rooms:            make(map[int64]*models.Room),
		bookings:         make(map[int64]*models.Booking),
		invoices:         make(map[int64]*models.Invoice),
		invoiceByBooking: make(map[int64]int64),
		opts:             opts,
		publisher:        publisher,
		logger:           &l,
	}
	s.ids.guest = 1
	s.ids.room = opts.FirstRoomNumber
	s.ids.booking = 1
	s.ids.invoice = 1
	return s
}

type pendingEvent struct {
	evType  string
	payload interface{}
}

// enqueue records an event for the mutation being committed. Must be called with s.mu held.
func (s *Store) enqueue(evType string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	s.outbox = append(s.outbox, pendingEvent{evType: evType, payload: payload})
}

// flush publishes queued events in commit order. Events queued while a
// publish is in progress go out with the same flush.
func (s *Store) flush() {
	if s.publisher == nil {
		return
	}
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	for {
		s.mu.Lock()
		batch := s.outbox
		s.outbox = nil
		s.mu.Unlock()
		if len(batch) == 0 {
			return
		}
		for _, ev := range batch {
			if err := s.publisher.PublishJSON(ev.evType, ev.payload); err != nil {
				s.logger.Error().Err(err).Str("event", ev.evType).Msg("publish event")
			}
		}
	}
}

// Snapshot is a consistent deep copy of the whole store, ordered by id.
type Snapshot struct {
	Guests   []models.Guest
	Rooms    []models.Room
	Bookings []models.Booking
	Invoices []models.Invoice
}

// Snapshot copies every entity under a single lock acquisition.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Guests:   make([]models.Guest, 0, len(s.guests)),
		Rooms:    make([]models.Room, 0, len(s.rooms)),
		Bookings: make([]models.Booking, 0, len(s.bookings)),
		Invoices: make([]models.Invoice, 0, len(s.invoices)),
	}
	for _, g := range s.guests {
		snap.Guests = append(snap.Guests, g.Clone())
	}
	for _, r := range s.rooms {
		snap.Rooms = append(snap.Rooms, r.Clone())
	}
	for _, b := range s.bookings {
		snap.Bookings = append(snap.Bookings, b.Clone())
	}
	for _, inv := range s.invoices {
		snap.Invoices = append(snap.Invoices, inv.Clone())
	}

	sort.Slice(snap.Guests, func(i, j int) bool { return snap.Guests[i].ID < snap.Guests[j].ID })
	sort.Slice(snap.Rooms, func(i, j int) bool { return snap.Rooms[i].Number < snap.Rooms[j].Number })
	sort.Slice(snap.Bookings, func(i, j int) bool { return snap.Bookings[i].ID < snap.Bookings[j].ID })
	sort.Slice(snap.Invoices, func(i, j int) bool { return snap.Invoices[i].ID < snap.Invoices[j].ID })
	return snap
}
