package catalog

import (
	"testing"

	"hotelbook/internal/config"
	"hotelbook/internal/reservation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roomsConfig(entries ...config.RoomEntry) *config.RoomsConfig {
	for i := range entries {
		if entries[i].Count == 0 {
			entries[i].Count = 1
		}
	}
	return &config.RoomsConfig{Rooms: entries}
}

func TestSeederAppliesOnlyAppendedRooms(t *testing.T) {
	store := reservation.New(reservation.Options{FirstRoomNumber: 101}, nil, nil)
	seeder := NewSeeder(store, nil)

	added := seeder.Apply(roomsConfig(
		config.RoomEntry{Type: "standard", Price: "100", Capacity: 2, Count: 2},
		config.RoomEntry{Type: "deluxe", Price: "200", Capacity: 4},
	))
	assert.Equal(t, []int64{101, 102, 103}, added)

	// Reapplying the same catalog is a no-op.
	assert.Empty(t, seeder.Apply(roomsConfig(
		config.RoomEntry{Type: "standard", Price: "100", Capacity: 2, Count: 2},
		config.RoomEntry{Type: "deluxe", Price: "200", Capacity: 4},
	)))

	added = seeder.Apply(roomsConfig(
		config.RoomEntry{Type: "standard", Price: "100", Capacity: 2, Count: 2},
		config.RoomEntry{Type: "deluxe", Price: "200", Capacity: 4},
		config.RoomEntry{Type: "suite", Price: "450.50", Capacity: 6},
	))
	assert.Equal(t, []int64{104}, added)

	room, err := store.Room(104)
	require.NoError(t, err)
	assert.Equal(t, "suite", room.Type)
	assert.Equal(t, "450.5", room.Price.String())
	assert.Len(t, store.Rooms(), 4)
}

func TestSeederKeepsRoomsWhenCatalogShrinks(t *testing.T) {
	store := reservation.New(reservation.Options{}, nil, nil)
	seeder := NewSeeder(store, nil)

	seeder.Apply(roomsConfig(
		config.RoomEntry{Type: "standard", Price: "100", Capacity: 2},
		config.RoomEntry{Type: "deluxe", Price: "200", Capacity: 4},
	))
	assert.Empty(t, seeder.Apply(roomsConfig(config.RoomEntry{Type: "standard", Price: "100", Capacity: 2})))
	assert.Len(t, store.Rooms(), 2)
}
