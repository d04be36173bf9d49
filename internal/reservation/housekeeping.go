package reservation

import (
	"fmt"
	"sort"
	"time"

	"hotelbook/internal/models"
)

// ScheduleCleaning records a planned cleaning time for the room.
// The schedule is informational; nothing fires when the time arrives.
func (s *Store) ScheduleCleaning(number int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[number]
	if !ok {
		return fmt.Errorf("schedule cleaning: room %d: %w", number, ErrNotFound)
	}
	r.CleaningSchedule = append(r.CleaningSchedule, at)
	sort.Slice(r.CleaningSchedule, func(i, j int) bool { return r.CleaningSchedule[i].Before(r.CleaningSchedule[j]) })

	s.logger.Info().Int64("room", number).Time("at", at).Msg("cleaning scheduled")
	return nil
}

// FinishCleaning returns a room in cleaning back to available. This is the
// only way a room becomes available again after a stay.
func (s *Store) FinishCleaning(number int64) (models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[number]
	if !ok {
		return models.Room{}, fmt.Errorf("finish cleaning: room %d: %w", number, ErrNotFound)
	}
	if r.Status != models.RoomCleaning {
		return models.Room{}, fmt.Errorf("finish cleaning: room %d is %s: %w", number, r.Status, ErrInvalidState)
	}
	r.Status = models.RoomAvailable

	s.logger.Info().Int64("room", number).Msg("room cleaned")
	return r.Clone(), nil
}
