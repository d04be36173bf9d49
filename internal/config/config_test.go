package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "logging:\n  console: true\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Console)
	assert.Equal(t, "configs/rooms.yaml", cfg.Rooms.CatalogPath)
	assert.Equal(t, int64(1), cfg.Rooms.FirstNumber)
	assert.False(t, cfg.Availability.IntervalOnly)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL())
	assert.Equal(t, 24*time.Hour, cfg.ReportInterval())
	assert.Equal(t, 30*time.Second, cfg.RoomsWatchInterval())
	assert.Equal(t, "Invoices", cfg.Google.SheetName)
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("HOTEL_TEST_TOKEN", "secret-token")
	path := writeFile(t, t.TempDir(), "config.yaml", `
server:
  port: 9000
telegram:
  bot_token: ${HOTEL_TEST_TOKEN}
  managers: [11, 22]
availability:
  interval_only: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", cfg.Telegram.BotToken)
	assert.Equal(t, []int64{11, 22}, cfg.Telegram.Managers)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.True(t, cfg.Availability.IntervalOnly)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(writeFile(t, dir, "bad.yaml", "server: [\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, dir, "google.yaml", "google:\n  enabled: true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spreadsheet_id")

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRoomsConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rooms.yaml", `
defaults:
  capacity: 3
rooms:
  - type: standard
    price: "100.00"
    capacity: 2
    count: 2
  - type: deluxe
    price: "200.50"
`)

	cfg, err := LoadRoomsConfig(path)
	require.NoError(t, err)

	specs := cfg.Specs()
	require.Len(t, specs, 3)
	assert.Equal(t, "standard", specs[0].Type)
	assert.Equal(t, "standard", specs[1].Type)
	assert.Equal(t, 2, specs[0].Capacity)
	assert.Equal(t, "deluxe", specs[2].Type)
	assert.Equal(t, 3, specs[2].Capacity)
	assert.True(t, specs[2].Price.Equal(decimal.RequireFromString("200.5")))
	assert.Equal(t, "rooms{standard=2, deluxe=1}", cfg.String())
}

func TestRoomsConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  RoomsConfig
		want string
	}{
		{"missing type", RoomsConfig{Rooms: []RoomEntry{{Price: "1"}}}, "room[0]: type is required"},
		{"bad price", RoomsConfig{Rooms: []RoomEntry{{Type: "a", Price: "abc"}}}, "invalid price"},
		{"negative price", RoomsConfig{Rooms: []RoomEntry{{Type: "a", Price: "-1"}}}, "price cannot be negative"},
		{"negative count", RoomsConfig{Rooms: []RoomEntry{{Type: "a", Price: "1"}, {Type: "b", Price: "1", Count: -1}}}, "room[1] (b): count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRoomsWatcherPoll(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rooms.yaml", "rooms:\n  - type: standard\n    price: \"100\"\n")

	w := NewRoomsWatcher(path, time.Second)
	cfg, err := w.Load()
	require.NoError(t, err)
	require.Len(t, cfg.Specs(), 1)

	cfg, err = w.Poll()
	require.NoError(t, err)
	assert.Nil(t, cfg, "unchanged file")

	require.NoError(t, os.WriteFile(path, []byte("rooms:\n  - type: \"\"\n"), 0o600))
	touch(t, path, time.Now().Add(2*time.Second))
	_, err = w.Poll()
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("rooms:\n  - type: standard\n    price: \"100\"\n    count: 2\n"), 0o600))
	touch(t, path, time.Now().Add(3*time.Second))
	cfg, err = w.Poll()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Len(t, cfg.Specs(), 2)
}

func TestRoomsWatcherWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "rooms.yaml", "rooms:\n  - type: standard\n    price: \"100\"\n")

	var mu sync.Mutex
	var seen []int
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := NewRoomsWatcher(path, 10*time.Millisecond).Watch(ctx, func(c *RoomsConfig) {
		mu.Lock()
		seen = append(seen, len(c.Specs()))
		mu.Unlock()
	}, nil)
	require.NoError(t, err)

	mu.Lock()
	require.Equal(t, []int{1}, seen)
	mu.Unlock()

	require.NoError(t, os.WriteFile(path, []byte("rooms:\n  - type: standard\n    price: \"100\"\n    count: 3\n"), 0o600))
	touch(t, path, time.Now().Add(2*time.Second))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2 && seen[1] == 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRoomsWatcherMissingFile(t *testing.T) {
	err := NewRoomsWatcher(filepath.Join(t.TempDir(), "none.yaml"), time.Second).Watch(context.Background(), nil, nil)
	require.Error(t, err)
}

func touch(t *testing.T, path string, at time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, at, at))
}
