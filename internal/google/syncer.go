package google

import (
	"context"
	"time"

	"hotelbook/internal/events"
	"hotelbook/internal/metrics"
	"hotelbook/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// InvoiceWriter stores an invoice row.
type InvoiceWriter interface {
	UpsertInvoice(ctx context.Context, inv models.Invoice) error
}

const maxAttempts = 3

// Syncer pushes invoice events to the ledger at a bounded request rate.
type Syncer struct {
	writer  InvoiceWriter
	limiter *rate.Limiter
	queue   chan models.Invoice
	backoff time.Duration
	logger  *zerolog.Logger
}

func NewSyncer(writer InvoiceWriter, requestsPerSecond float64, logger *zerolog.Logger) *Syncer {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "sheets_sync").Logger()
	return &Syncer{
		writer:  writer,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		queue:   make(chan models.Invoice, 1024),
		backoff: 2 * time.Second,
		logger:  &l,
	}
}

// Subscribe queues every issued or paid invoice.
func (s *Syncer) Subscribe(bus *events.EventBus) {
	handler := func(ev events.Event) error {
		var inv models.Invoice
		if err := ev.Decode(&inv); err != nil {
			return err
		}
		s.Enqueue(inv)
		return nil
	}
	bus.Subscribe(events.InvoiceCreated, handler)
	bus.Subscribe(events.InvoicePaid, handler)
}

// Enqueue schedules inv for sync without blocking.
func (s *Syncer) Enqueue(inv models.Invoice) {
	select {
	case s.queue <- inv:
	default:
		metrics.IncSheetsSync("dropped")
		s.logger.Warn().Int64("invoice_id", inv.ID).Msg("sheets queue full, dropping invoice")
	}
}

// Run drains the queue until ctx is done.
func (s *Syncer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case inv := <-s.queue:
			s.sync(ctx, inv)
		}
	}
}

func (s *Syncer) sync(ctx context.Context, inv models.Invoice) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return
		}
		err := s.writer.UpsertInvoice(ctx, inv)
		if err == nil {
			metrics.IncSheetsSync("ok")
			s.logger.Debug().Int64("invoice_id", inv.ID).Bool("paid", inv.Paid).Msg("invoice synced")
			return
		}

		s.logger.Warn().Err(err).Int64("invoice_id", inv.ID).Int("attempt", attempt).Msg("invoice sync failed")
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.backoff * time.Duration(attempt)):
		}
	}
	metrics.IncSheetsSync("error")
}
