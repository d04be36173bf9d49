package report

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds configuration for the report service.
type Config struct {
	// Interval between scheduled reports. Default: 24h.
	Interval time.Duration

	// RunOnStart sends a report immediately when the service starts.
	RunOnStart bool

	// HotelName identifies the hotel in captions and file names.
	HotelName string
}

// Service periodically builds the occupancy workbook and sends it to managers.
type Service struct {
	config   Config
	builder  *Builder
	notifier Notifier
	logger   *zerolog.Logger
	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
}

func NewService(config Config, builder *Builder, notifier Notifier, logger *zerolog.Logger) *Service {
	if config.Interval <= 0 {
		config.Interval = 24 * time.Hour
	}
	if config.HotelName == "" {
		config.HotelName = "hotel"
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "report_service").Logger()
	return &Service{
		config:   config,
		builder:  builder,
		notifier: notifier,
		logger:   &l,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the report scheduler.
func (s *Service) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop()

	s.logger.Info().Dur("interval", s.config.Interval).Msg("report service started")
}

// Stop gracefully stops the scheduler and waits for a running report.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()

	s.logger.Info().Msg("report service stopped")
}

func (s *Service) loop() {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.runLogged()
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.runLogged()
		}
	}
}

func (s *Service) runLogged() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := s.SendNow(ctx); err != nil {
		s.logger.Error().Err(err).Msg("scheduled report failed")
	}
}

// SendNow builds a report and sends it to managers immediately.
func (s *Service) SendNow(ctx context.Context) error {
	var buf bytes.Buffer
	if err := s.builder.run(ctx, "scheduled", &buf); err != nil {
		return err
	}
	if s.notifier == nil {
		s.logger.Debug().Int("bytes", buf.Len()).Msg("report built, no notifier configured")
		return nil
	}

	now := s.builder.now()
	filename := s.builder.Filename(now)
	caption := fmt.Sprintf("📊 %s occupancy report, %s", s.config.HotelName, now.Format("2006-01-02 15:04"))
	if err := s.notifier.SendDocument(ctx, filename, &buf, caption); err != nil {
		return fmt.Errorf("send document: %w", err)
	}

	s.logger.Info().Str("filename", filename).Msg("occupancy report sent")
	return nil
}
