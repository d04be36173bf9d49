package config

import (
	"context"
	"fmt"
	"os"
	"time"
)

// RoomsWatcher polls the room catalog file and reloads it when its
// modification time moves forward.
type RoomsWatcher struct {
	path     string
	interval time.Duration
	lastMod  time.Time
}

// NewRoomsWatcher returns a watcher for path. Empty values fall back to
// configs/rooms.yaml and a 30s poll.
func NewRoomsWatcher(path string, interval time.Duration) *RoomsWatcher {
	if path == "" {
		path = "configs/rooms.yaml"
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &RoomsWatcher{path: path, interval: interval}
}

// Path is the watched file.
func (w *RoomsWatcher) Path() string { return w.path }

// Load reads the catalog unconditionally and remembers its modification time.
func (w *RoomsWatcher) Load() (*RoomsConfig, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		return nil, fmt.Errorf("stat room catalog: %w", err)
	}
	cfg, err := LoadRoomsConfig(w.path)
	if err != nil {
		return nil, err
	}
	w.lastMod = info.ModTime()
	return cfg, nil
}

// Poll reloads the catalog if the file changed since the last successful load.
// It returns a nil config when nothing changed. A file that fails to parse is
// retried on the next poll.
func (w *RoomsWatcher) Poll() (*RoomsConfig, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		return nil, fmt.Errorf("stat room catalog: %w", err)
	}
	if !info.ModTime().After(w.lastMod) {
		return nil, nil
	}
	cfg, err := LoadRoomsConfig(w.path)
	if err != nil {
		return nil, err
	}
	w.lastMod = info.ModTime()
	return cfg, nil
}

// Watch performs the initial load, hands it to onUpdate and keeps polling in
// the background until ctx is done. Reload failures go to onError; the
// previous catalog stays in effect.
func (w *RoomsWatcher) Watch(ctx context.Context, onUpdate func(*RoomsConfig), onError func(error)) error {
	cfg, err := w.Load()
	if err != nil {
		return err
	}
	if onUpdate != nil {
		onUpdate(cfg)
	}

	ticker := time.NewTicker(w.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cfg, err := w.Poll()
				switch {
				case err != nil:
					if onError != nil {
						onError(err)
					}
				case cfg != nil && onUpdate != nil:
					onUpdate(cfg)
				}
			}
		}
	}()

	return nil
}
