package main

import (
	"fmt"

	"github.com/pageza/chefai/backend/internal/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the recipe schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(cfg, logger)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.RunMigrations(db, logger); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Migrations completed successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
