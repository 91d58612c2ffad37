package main

import (
	"fmt"
	"slotbook-service/internal/app/config"
	"slotbook-service/internal/app/drivers/database"
	"slotbook-service/internal/migration"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the ledger schema to postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool := database.NewPostgresPool(cmd.Context(), config.NewDriverConfig())
			defer pool.Close()

			applied, err := migration.Up(cmd.Context(), pool)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)
			return nil
		},
	}
}
