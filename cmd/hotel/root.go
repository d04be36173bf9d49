package main

import (
	"os"
	"strings"
	"time"

	"hotelbook/internal/config"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "hotel",
		Short:        "Hotel reservation service",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			// A missing .env is fine; real deployments set the environment directly.
			_ = godotenv.Load()
			if configPath == "" {
				configPath = os.Getenv("HOTEL_CONFIG_PATH")
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (default $HOTEL_CONFIG_PATH or configs/config.yaml)")
	cmd.AddCommand(serveCmd(&configPath), validateCmd(&configPath))
	return cmd
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Logging.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Logging.Console {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		logger = zerolog.New(output)
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
