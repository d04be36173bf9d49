package report

import (
	"context"
	"database/sql"
	"fmt"

	"hotelbook/internal/reservation"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// snapshotDB is a throwaway in-memory SQLite copy of a store snapshot.
// It exists only so the report can be expressed as SQL aggregates.
type snapshotDB struct {
	*sql.DB
}

func openSnapshot(ctx context.Context, snap reservation.Snapshot) (*snapshotDB, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	s := &snapshotDB{DB: db}
	if err := s.createTables(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.load(ctx, snap); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *snapshotDB) createTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE guests (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT,
			phone TEXT
		)`,
		`CREATE TABLE rooms (
			number INTEGER PRIMARY KEY,
			type TEXT NOT NULL,
			price REAL NOT NULL,
			capacity INTEGER NOT NULL,
			status TEXT NOT NULL,
			cleanings INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE bookings (
			id INTEGER PRIMARY KEY,
			guest_id INTEGER NOT NULL REFERENCES guests(id),
			check_in INTEGER NOT NULL,
			check_out INTEGER NOT NULL,
			status TEXT NOT NULL
		)`,
		`CREATE TABLE booking_rooms (
			booking_id INTEGER NOT NULL REFERENCES bookings(id),
			room_number INTEGER NOT NULL REFERENCES rooms(number),
			PRIMARY KEY (booking_id, room_number)
		)`,
		`CREATE TABLE invoices (
			id INTEGER PRIMARY KEY,
			booking_id INTEGER NOT NULL REFERENCES bookings(id),
			total TEXT NOT NULL,
			total_real REAL NOT NULL,
			paid BOOLEAN NOT NULL
		)`,
	}
	for _, q := range queries {
		if _, err := s.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create snapshot tables: %w", err)
		}
	}
	return nil
}

func (s *snapshotDB) load(ctx context.Context, snap reservation.Snapshot) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, g := range snap.Guests {
		if _, err := tx.ExecContext(ctx, `INSERT INTO guests (id, name, email, phone) VALUES (?, ?, ?, ?)`,
			g.ID, g.Name, g.Email, g.Phone); err != nil {
			return fmt.Errorf("load guest %d: %w", g.ID, err)
		}
	}
	for _, r := range snap.Rooms {
		if _, err := tx.ExecContext(ctx, `INSERT INTO rooms (number, type, price, capacity, status, cleanings) VALUES (?, ?, ?, ?, ?, ?)`,
			r.Number, r.Type, r.Price.InexactFloat64(), r.Capacity, string(r.Status), len(r.CleaningSchedule)); err != nil {
			return fmt.Errorf("load room %d: %w", r.Number, err)
		}
	}
	for _, b := range snap.Bookings {
		if _, err := tx.ExecContext(ctx, `INSERT INTO bookings (id, guest_id, check_in, check_out, status) VALUES (?, ?, ?, ?, ?)`,
			b.ID, b.GuestID, b.CheckIn.Unix(), b.CheckOut.Unix(), string(b.Status)); err != nil {
			return fmt.Errorf("load booking %d: %w", b.ID, err)
		}
		for _, n := range b.RoomNumbers {
			if _, err := tx.ExecContext(ctx, `INSERT INTO booking_rooms (booking_id, room_number) VALUES (?, ?)`, b.ID, n); err != nil {
				return fmt.Errorf("load booking %d room %d: %w", b.ID, n, err)
			}
		}
	}
	for _, inv := range snap.Invoices {
		total := inv.Total()
		if _, err := tx.ExecContext(ctx, `INSERT INTO invoices (id, booking_id, total, total_real, paid) VALUES (?, ?, ?, ?, ?)`,
			inv.ID, inv.BookingID, total.StringFixed(2), total.InexactFloat64(), inv.Paid); err != nil {
			return fmt.Errorf("load invoice %d: %w", inv.ID, err)
		}
	}
	return tx.Commit()
}
