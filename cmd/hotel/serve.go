package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"hotelbook/internal/api"
	"hotelbook/internal/catalog"
	"hotelbook/internal/config"
	"hotelbook/internal/events"
	"hotelbook/internal/google"
	"hotelbook/internal/idempotency"
	"hotelbook/internal/metrics"
	"hotelbook/internal/notify"
	"hotelbook/internal/report"
	"hotelbook/internal/reservation"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the reservation HTTP API and its workers",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, &logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) error {
	bus := events.NewEventBus(logger)
	store := reservation.New(reservation.Options{
		FirstRoomNumber: cfg.Rooms.FirstNumber,
		IntervalOnly:    cfg.Availability.IntervalOnly,
	}, bus, logger)

	seeder := catalog.NewSeeder(store, logger)
	watcher := config.NewRoomsWatcher(cfg.Rooms.CatalogPath, cfg.RoomsWatchInterval())
	if err := watcher.Watch(ctx, func(rc *config.RoomsConfig) {
		seeder.Apply(rc)
	}, func(err error) {
		logger.Warn().Err(err).Str("path", watcher.Path()).Msg("room catalog reload failed, keeping previous")
	}); err != nil {
		logger.Warn().Err(err).Str("path", watcher.Path()).Msg("room catalog not loaded; starting with no rooms")
	}

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
	}

	var idem idempotency.Store
	if cfg.Idempotency.Enabled {
		if rdb != nil {
			idem = idempotency.NewRedisStore(rdb, cfg.IdempotencyTTL())
		} else {
			idem = idempotency.NewMemoryStore(cfg.IdempotencyTTL())
		}
	}

	var notifier report.Notifier
	if cfg.Telegram.BotToken != "" {
		tg, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.Debug, cfg.Telegram.Managers, logger)
		if err != nil {
			logger.Error().Err(err).Msg("telegram disabled")
		} else {
			tg.Subscribe(bus)
			go tg.Run(ctx)
			notifier = tg
		}
	}

	if cfg.Google.Enabled {
		sheetsSvc, err := google.NewSheetsService(ctx, cfg.Google.CredentialsPath, cfg.Google.SpreadsheetID, cfg.Google.SheetName, logger)
		if err != nil {
			logger.Error().Err(err).Msg("google sheets disabled")
		} else {
			if err := sheetsSvc.Prepare(ctx); err != nil {
				logger.Warn().Err(err).Msg("prepare invoice sheet")
			}
			syncer := google.NewSyncer(sheetsSvc, cfg.Google.RequestsPerSecond, logger)
			syncer.Subscribe(bus)
			go syncer.Run(ctx)
		}
	}

	builder := report.NewBuilder(store, report.NewExcelizeWriter, cfg.Report.HotelName, logger)
	if cfg.Report.Enabled {
		svc := report.NewService(report.Config{
			Interval:  cfg.ReportInterval(),
			HotelName: cfg.Report.HotelName,
		}, builder, notifier, logger)
		svc.Start()
		defer svc.Stop()
	}

	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, rdb, logger)
	if cfg.Monitoring.GRPCHealthPort > 0 {
		go startGRPCHealth(ctx, cfg.Monitoring.GRPCHealthPort, logger)
	}
	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
	}

	srv := api.NewHTTPServer(store, api.Options{
		Addr:              cfg.Addr(),
		ReadTimeout:       cfg.ReadTimeout(),
		WriteTimeout:      cfg.WriteTimeout(),
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
		Idempotency:       idem,
		Reports:           builder,
	}, logger)

	logger.Info().
		Str("addr", cfg.Addr()).
		Bool("interval_only", cfg.Availability.IntervalOnly).
		Int("rooms", len(store.Rooms())).
		Msg("hotel service started")
	return srv.Start(ctx)
}
