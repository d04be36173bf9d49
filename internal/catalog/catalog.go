// Package catalog keeps the store's room inventory in step with rooms.yaml.
package catalog

import (
	"sync"

	"hotelbook/internal/config"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RoomRegistrar is the part of the reservation store the catalog needs.
type RoomRegistrar interface {
	RegisterRoom(roomType string, price decimal.Decimal, capacity int) int64
}

// Seeder registers catalog rooms. Rooms can never be removed from the store,
// so only entries appended since the last apply are registered.
type Seeder struct {
	mu      sync.Mutex
	store   RoomRegistrar
	applied []config.RoomSpec
	logger  *zerolog.Logger
}

func NewSeeder(store RoomRegistrar, logger *zerolog.Logger) *Seeder {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "catalog").Logger()
	return &Seeder{store: store, logger: &l}
}

// Apply registers the rooms of cfg not registered yet and returns their numbers.
// It is safe to use as the RoomsWatcher update callback.
func (s *Seeder) Apply(cfg *config.RoomsConfig) []int64 {
	specs := cfg.Specs()

	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.applied)
	if len(specs) < n {
		s.logger.Warn().Int("registered", n).Int("configured", len(specs)).
			Msg("catalog shrank; registered rooms are kept")
		n = len(specs)
	}
	for i := 0; i < n; i++ {
		if !sameSpec(specs[i], s.applied[i]) {
			s.logger.Warn().Int("index", i).Str("type", specs[i].Type).
				Msg("catalog entry changed after registration; ignoring")
		}
	}
	if len(specs) <= len(s.applied) {
		return nil
	}

	added := make([]int64, 0, len(specs)-len(s.applied))
	for _, spec := range specs[len(s.applied):] {
		number := s.store.RegisterRoom(spec.Type, spec.Price, spec.Capacity)
		added = append(added, number)
		s.applied = append(s.applied, spec)
	}
	s.logger.Info().Ints64("rooms", added).Str("catalog", cfg.String()).Msg("rooms registered")
	return added
}

func sameSpec(a, b config.RoomSpec) bool {
	return a.Type == b.Type && a.Capacity == b.Capacity && a.Price.Equal(b.Price)
}
