package main

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/pageza/chefai/backend/internal/server"
	"github.com/pageza/chefai/backend/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Sample model responses, separated by lines of three dashes
//
//go:embed seed_recipes.txt
var seedResponses string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Store a few sample recipes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := server.OpenStore(cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore(store)

		created := 0
		for i, raw := range strings.Split(seedResponses, "\n---\n") {
			recipe, err := service.ParseRecipeResponse(raw)
			if err != nil {
				logger.Warn("skipping unparseable sample", zap.Int("sample", i), zap.Error(err))
				continue
			}
			saved, err := store.Recipes.InsertOrReplace(cmd.Context(), recipe)
			if err != nil {
				return err
			}
			created++
			fmt.Fprintf(cmd.OutOrStdout(), "Created recipe #%d: %s\n", saved.ID, saved.Title)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d recipes\n", created)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
