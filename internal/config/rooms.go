package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// RoomsConfig is the room catalog loaded from rooms.yaml.
// Entries are append-only: rooms are numbered in file order, so reordering
// or removing entries after the first load does not renumber existing rooms.
type RoomsConfig struct {
	Defaults RoomDefaults `yaml:"defaults"`
	Rooms    []RoomEntry  `yaml:"rooms"`
}

type RoomDefaults struct {
	Capacity int `yaml:"capacity"`
}

// RoomEntry describes Count identical rooms of one type.
type RoomEntry struct {
	Type     string `yaml:"type"`
	Price    string `yaml:"price"`
	Capacity int    `yaml:"capacity"`
	Count    int    `yaml:"count"`
}

// RoomSpec is a single room to register.
type RoomSpec struct {
	Type     string
	Price    decimal.Decimal
	Capacity int
}

func LoadRoomsConfig(path string) (*RoomsConfig, error) {
	if path == "" {
		path = "configs/rooms.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	data = []byte(os.ExpandEnv(string(data)))

	var cfg RoomsConfig
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse rooms %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *RoomsConfig) applyDefaults() {
	if c.Defaults.Capacity <= 0 {
		c.Defaults.Capacity = 2
	}
	for i := range c.Rooms {
		if c.Rooms[i].Capacity == 0 {
			c.Rooms[i].Capacity = c.Defaults.Capacity
		}
		if c.Rooms[i].Count == 0 {
			c.Rooms[i].Count = 1
		}
	}
}

func (c *RoomsConfig) Validate() error {
	for i, r := range c.Rooms {
		if strings.TrimSpace(r.Type) == "" {
			return fmt.Errorf("room[%d]: type is required", i)
		}
		price, err := decimal.NewFromString(r.Price)
		if err != nil {
			return fmt.Errorf("room[%d] (%s): invalid price %q: %w", i, r.Type, r.Price, err)
		}
		if price.IsNegative() {
			return fmt.Errorf("room[%d] (%s): price cannot be negative", i, r.Type)
		}
		if r.Capacity < 0 {
			return fmt.Errorf("room[%d] (%s): capacity cannot be negative", i, r.Type)
		}
		if r.Count < 0 {
			return fmt.Errorf("room[%d] (%s): count cannot be negative", i, r.Type)
		}
	}
	return nil
}

// Specs expands entries into one spec per room, in registration order.
// Prices are parsed by Validate, so invalid entries never reach here.
func (c *RoomsConfig) Specs() []RoomSpec {
	var specs []RoomSpec
	for _, r := range c.Rooms {
		price := decimal.RequireFromString(r.Price)
		for j := 0; j < r.Count; j++ {
			specs = append(specs, RoomSpec{Type: r.Type, Price: price, Capacity: r.Capacity})
		}
	}
	return specs
}

// String returns a short summary for logs.
func (c *RoomsConfig) String() string {
	counts := make(map[string]int)
	var order []string
	for _, r := range c.Rooms {
		if _, ok := counts[r.Type]; !ok {
			order = append(order, r.Type)
		}
		counts[r.Type] += r.Count
	}
	parts := make([]string, 0, len(order))
	for _, t := range order {
		parts = append(parts, fmt.Sprintf("%s=%d", t, counts[t]))
	}
	return fmt.Sprintf("rooms{%s}", strings.Join(parts, ", "))
}
