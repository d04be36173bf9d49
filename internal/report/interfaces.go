package report

import (
	"context"
	"io"

	"hotelbook/internal/reservation"
)

// Source provides a consistent copy of reservation state.
type Source interface {
	Snapshot() reservation.Snapshot
}

// ExcelWriter writes tabular data to a workbook.
type ExcelWriter interface {
	// AddSheet adds a new sheet and makes it current.
	AddSheet(name string) error

	// WriteHeader writes column headers to the current sheet.
	WriteHeader(columns []string) error

	// WriteRow writes a data row to the current sheet.
	WriteRow(row []interface{}) error

	// Save writes the workbook to w.
	Save(w io.Writer) error

	Close() error
}

// Notifier delivers finished workbooks to managers.
type Notifier interface {
	SendDocument(ctx context.Context, filename string, data io.Reader, caption string) error
}
