package main

import (
	"fmt"
	"os/signal"
	"slotbook-service/internal/app/config"
	"slotbook-service/internal/app/drivers/logger"
	"slotbook-service/internal/app/server"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the availability service",
		RunE: func(cmd *cobra.Command, args []string) error {
			driverConfig := config.NewDriverConfig()
			internalConfig := config.NewInternalConfig()
			if port != "" {
				internalConfig.App.Port = port
			}

			location, err := time.LoadLocation(internalConfig.App.Timezone)
			if err != nil {
				return fmt.Errorf("load timezone: %w", err)
			}
			time.Local = location

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := server.New(ctx, driverConfig, internalConfig, logger.NewZapLogger(driverConfig, internalConfig))
			if err != nil {
				return err
			}
			return app.Run(ctx)
		},
	}
	c.Flags().StringVar(&port, "port", "", "listen address, overrides APP_PORT")
	return c
}
