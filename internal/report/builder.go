// Package report builds the occupancy and revenue workbook from a store snapshot.
package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"hotelbook/internal/metrics"

	"github.com/rs/zerolog"
)

// Builder renders workbooks. Aggregates run as SQL over an in-memory SQLite
// copy of the snapshot; the store itself is never queried twice.
type Builder struct {
	source    Source
	newWriter func() ExcelWriter
	hotelName string
	now       func() time.Time
	logger    *zerolog.Logger
}

func NewBuilder(source Source, writerFactory func() ExcelWriter, hotelName string, logger *zerolog.Logger) *Builder {
	if writerFactory == nil {
		writerFactory = NewExcelizeWriter
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "report").Logger()
	return &Builder{source: source, newWriter: writerFactory, hotelName: hotelName, now: time.Now, logger: &l}
}

type sheet struct {
	name    string
	columns []string
	query   string
}

var sheets = []sheet{
	{
		name:    "Summary",
		columns: []string{"metric", "value"},
		query: `
			SELECT 'rooms', COUNT(*) FROM rooms
			UNION ALL SELECT 'rooms ' || status, COUNT(*) FROM rooms GROUP BY status
			UNION ALL SELECT 'guests', COUNT(*) FROM guests
			UNION ALL SELECT 'bookings ' || status, COUNT(*) FROM bookings GROUP BY status
			UNION ALL SELECT 'invoices', COUNT(*) FROM invoices
			UNION ALL SELECT 'billed', ROUND(COALESCE(SUM(total_real), 0), 2) FROM invoices
			UNION ALL SELECT 'paid', ROUND(COALESCE(SUM(CASE WHEN paid THEN total_real ELSE 0 END), 0), 2) FROM invoices
			UNION ALL SELECT 'outstanding', ROUND(COALESCE(SUM(CASE WHEN paid THEN 0 ELSE total_real END), 0), 2) FROM invoices`,
	},
	{
		name:    "Room types",
		columns: []string{"type", "rooms", "capacity", "active bookings", "booked nights"},
		query: `
			SELECT r.type,
			       COUNT(DISTINCT r.number),
			       (SELECT SUM(capacity) FROM rooms x WHERE x.type = r.type),
			       COUNT(DISTINCT CASE WHEN b.status != 'checked-out' THEN b.id END),
			       ROUND(COALESCE(SUM((b.check_out - b.check_in) / 86400.0), 0), 2)
			FROM rooms r
			LEFT JOIN booking_rooms br ON br.room_number = r.number
			LEFT JOIN bookings b ON b.id = br.booking_id
			GROUP BY r.type
			ORDER BY r.type`,
	},
	{
		name:    "Rooms",
		columns: []string{"number", "type", "price", "capacity", "status", "scheduled cleanings", "active bookings", "next check-in"},
		query: `
			SELECT r.number, r.type, r.price, r.capacity, r.status, r.cleanings,
			       COUNT(CASE WHEN b.status != 'checked-out' THEN 1 END),
			       COALESCE(strftime('%Y-%m-%d %H:%M', MIN(CASE WHEN b.status = 'reserved' THEN b.check_in END), 'unixepoch'), '')
			FROM rooms r
			LEFT JOIN booking_rooms br ON br.room_number = r.number
			LEFT JOIN bookings b ON b.id = br.booking_id
			GROUP BY r.number
			ORDER BY r.number`,
	},
	{
		name:    "Bookings",
		columns: []string{"id", "guest", "rooms", "check-in", "check-out", "nights", "status"},
		query: `
			SELECT b.id, g.name,
			       (SELECT GROUP_CONCAT(room_number, ', ') FROM booking_rooms WHERE booking_id = b.id),
			       strftime('%Y-%m-%d %H:%M', b.check_in, 'unixepoch'),
			       strftime('%Y-%m-%d %H:%M', b.check_out, 'unixepoch'),
			       ROUND((b.check_out - b.check_in) / 86400.0, 2),
			       b.status
			FROM bookings b
			JOIN guests g ON g.id = b.guest_id
			ORDER BY b.id`,
	},
	{
		name:    "Invoices",
		columns: []string{"id", "booking", "guest", "total", "paid"},
		query: `
			SELECT i.id, i.booking_id, g.name, i.total, CASE WHEN i.paid THEN 'yes' ELSE 'no' END
			FROM invoices i
			JOIN bookings b ON b.id = i.booking_id
			JOIN guests g ON g.id = b.guest_id
			ORDER BY i.id`,
	},
}

// WriteOccupancy builds the workbook for the current store state and writes it to w.
func (b *Builder) WriteOccupancy(ctx context.Context, w io.Writer) error {
	return b.run(ctx, "on_demand", w)
}

func (b *Builder) write(ctx context.Context, w io.Writer) error {
	snap := b.source.Snapshot()

	db, err := openSnapshot(ctx, snap)
	if err != nil {
		return err
	}
	defer db.Close()

	excel := b.newWriter()
	if excel == nil {
		return fmt.Errorf("failed to create excel writer")
	}
	defer excel.Close()

	for _, sh := range sheets {
		rows, err := db.query(ctx, sh.query, len(sh.columns))
		if err != nil {
			return fmt.Errorf("sheet %s: %w", sh.name, err)
		}
		if err := excel.AddSheet(sh.name); err != nil {
			return err
		}
		if err := excel.WriteHeader(sh.columns); err != nil {
			return err
		}
		for _, row := range rows {
			if err := excel.WriteRow(row); err != nil {
				return fmt.Errorf("sheet %s: %w", sh.name, err)
			}
		}
		b.logger.Debug().Str("sheet", sh.name).Int("rows", len(rows)).Msg("sheet written")
	}

	if err := excel.Save(w); err != nil {
		return fmt.Errorf("save excel: %w", err)
	}
	return nil
}

// Filename names a workbook built at t, e.g. "grand_occupancy_20240101_0900.xlsx".
func (b *Builder) Filename(t time.Time) string {
	return fmt.Sprintf("%s_occupancy_%s.xlsx", b.hotelName, t.Format("20060102_1504"))
}

func (s *snapshotDB) query(ctx context.Context, q string, ncols int) ([][]interface{}, error) {
	rows, err := s.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]interface{}
	for rows.Next() {
		vals := make([]interface{}, ncols)
		ptrs := make([]interface{}, ncols)
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			if bs, ok := v.([]byte); ok {
				vals[i] = string(bs)
			}
		}
		out = append(out, vals)
	}
	return out, rows.Err()
}

// run builds a workbook and reports the outcome to metrics.
func (b *Builder) run(ctx context.Context, trigger string, w io.Writer) error {
	err := b.write(ctx, w)
	result := "ok"
	if err != nil {
		result = "error"
		b.logger.Error().Err(err).Str("trigger", trigger).Msg("build occupancy report")
	}
	metrics.IncReport(trigger, result)
	return err
}
