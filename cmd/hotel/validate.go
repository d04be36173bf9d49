package main

import (
	"fmt"

	"hotelbook/internal/config"

	"github.com/spf13/cobra"
)

func validateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the service config and the room catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			rooms, err := config.LoadRoomsConfig(cfg.Rooms.CatalogPath)
			if err != nil {
				return fmt.Errorf("room catalog %s: %w", cfg.Rooms.CatalogPath, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config: listen %s, interval_only=%t\n", cfg.Addr(), cfg.Availability.IntervalOnly)
			fmt.Fprintf(out, "catalog: %s (%d rooms, first number %d)\n", rooms, len(rooms.Specs()), cfg.Rooms.FirstNumber)
			fmt.Fprintln(out, "OK")
			return nil
		},
	}
}
