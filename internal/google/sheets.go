// Package google mirrors issued invoices into a Google Sheets ledger.
package google

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"sync"
	"time"

	"hotelbook/internal/models"

	"github.com/rs/zerolog"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var invoiceHeader = []interface{}{"invoice_id", "booking_id", "items", "total", "paid", "synced_at"}

// ValuesAPI is the subset of the Sheets values API the ledger needs.
type ValuesAPI interface {
	Get(ctx context.Context, spreadsheetID, rng string) (*sheets.ValueRange, error)
	Update(ctx context.Context, spreadsheetID, rng string, vr *sheets.ValueRange) error
	Append(ctx context.Context, spreadsheetID, rng string, vr *sheets.ValueRange) (string, error)
}

type valuesClient struct {
	svc *sheets.Service
}

func (c valuesClient) Get(ctx context.Context, spreadsheetID, rng string) (*sheets.ValueRange, error) {
	return c.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
}

func (c valuesClient) Update(ctx context.Context, spreadsheetID, rng string, vr *sheets.ValueRange) error {
	_, err := c.svc.Spreadsheets.Values.Update(spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	return err
}

func (c valuesClient) Append(ctx context.Context, spreadsheetID, rng string, vr *sheets.ValueRange) (string, error) {
	resp, err := c.svc.Spreadsheets.Values.Append(spreadsheetID, rng, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if resp.Updates == nil {
		return "", nil
	}
	return resp.Updates.UpdatedRange, nil
}

// SheetsService writes one row per invoice and remembers which row holds which invoice.
type SheetsService struct {
	values        ValuesAPI
	spreadsheetID string
	sheetName     string
	now           func() time.Time
	logger        *zerolog.Logger

	cacheMu  sync.RWMutex
	rowCache map[int64]int
}

// NewSheetsService authenticates with a service-account key file.
func NewSheetsService(ctx context.Context, credentialsPath, spreadsheetID, sheetName string, logger *zerolog.Logger) (*SheetsService, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read google credentials: %w", err)
	}
	creds, err := googleoauth.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}
	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewSheetsServiceWithAPI(valuesClient{svc: svc}, spreadsheetID, sheetName, logger), nil
}

// NewSheetsServiceWithAPI allows injecting a fake values API for tests.
func NewSheetsServiceWithAPI(values ValuesAPI, spreadsheetID, sheetName string, logger *zerolog.Logger) *SheetsService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "sheets").Logger()
	return &SheetsService{
		values:        values,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		now:           time.Now,
		logger:        &l,
		rowCache:      make(map[int64]int),
	}
}

// Prepare writes the header row and loads existing invoice rows into the cache.
func (s *SheetsService) Prepare(ctx context.Context) error {
	header := &sheets.ValueRange{Values: [][]interface{}{invoiceHeader}}
	if err := s.values.Update(ctx, s.spreadsheetID, s.rangeFor(1), header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	vr, err := s.values.Get(ctx, s.spreadsheetID, fmt.Sprintf("%s!A2:A", s.sheetName))
	if err != nil {
		return fmt.Errorf("read invoice ids: %w", err)
	}
	s.ClearCache()
	for i, row := range vr.Values {
		if len(row) == 0 {
			continue
		}
		id, err := strconv.ParseInt(fmt.Sprint(row[0]), 10, 64)
		if err != nil {
			continue
		}
		s.setCachedRow(id, i+2)
	}
	s.logger.Info().Int("rows", len(vr.Values)).Msg("invoice ledger loaded")
	return nil
}

// UpsertInvoice updates the invoice's row, appending one if it has none yet.
func (s *SheetsService) UpsertInvoice(ctx context.Context, inv models.Invoice) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{invoiceRowValues(inv, s.now())}}

	if row, ok := s.getCachedRow(inv.ID); ok {
		if err := s.values.Update(ctx, s.spreadsheetID, s.rangeFor(row), vr); err != nil {
			return fmt.Errorf("update invoice %d: %w", inv.ID, err)
		}
		return nil
	}

	updated, err := s.values.Append(ctx, s.spreadsheetID, fmt.Sprintf("%s!A:F", s.sheetName), vr)
	if err != nil {
		return fmt.Errorf("append invoice %d: %w", inv.ID, err)
	}
	if row, ok := rowFromRange(updated); ok {
		s.setCachedRow(inv.ID, row)
	}
	return nil
}

func (s *SheetsService) rangeFor(row int) string {
	return fmt.Sprintf("%s!A%d:F%d", s.sheetName, row, row)
}

var rangeRowRe = regexp.MustCompile(`![A-Z]+(\d+)`)

// rowFromRange extracts the first row number from an A1 range like "Invoices!A5:F5".
func rowFromRange(rng string) (int, bool) {
	m := rangeRowRe.FindStringSubmatch(rng)
	if m == nil {
		return 0, false
	}
	row, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return row, true
}

func invoiceRowValues(inv models.Invoice, syncedAt time.Time) []interface{} {
	paid := "no"
	if inv.Paid {
		paid = "yes"
	}
	return []interface{}{
		inv.ID,
		inv.BookingID,
		len(inv.Items),
		inv.Total().StringFixed(2),
		paid,
		syncedAt.UTC().Format("2006-01-02 15:04:05"),
	}
}

func (s *SheetsService) getCachedRow(invoiceID int64) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[invoiceID]
	return row, ok
}

func (s *SheetsService) setCachedRow(invoiceID int64, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[invoiceID] = row
}

// ClearCache forgets every known invoice row.
func (s *SheetsService) ClearCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)
}
