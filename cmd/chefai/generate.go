package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/pageza/chefai/backend/internal/server"
	"github.com/pageza/chefai/backend/internal/service"
	"github.com/spf13/cobra"
)

var (
	generateIdea        string
	generateIngredients string
	generateName        string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate and store one recipe",
	Example: `  chefai generate --idea "quick weeknight dinner" --ingredients "chicken, basil, garlic"
  chefai generate --idea "brunch" --ingredients "eggs, spinach" --name "Green Eggs"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		store, err := server.OpenStore(cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore(store)

		generator, err := server.NewGenerator(ctx, cfg, store, logger)
		if err != nil {
			return err
		}

		session := service.NewGenerationSession(generator)
		done, err := session.Start(ctx, service.GenerateRequest{
			Idea:        generateIdea,
			Ingredients: generateIngredients,
			Name:        generateName,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Generating recipe...")

		switch state := (<-done).(type) {
		case service.StateSuccess:
			printRecipe(out, state.Recipe)
			if state.Recipe.ID == 0 {
				fmt.Fprintln(out, "\nWarning: the recipe could not be saved")
			}
			return nil
		case service.StateError:
			return errors.New(state.Message)
		default:
			return fmt.Errorf("generation ended in unexpected state %q", state.Name())
		}
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateIdea, "idea", "", "what kind of dish to make")
	generateCmd.Flags().StringVar(&generateIngredients, "ingredients", "", "ingredients that are available")
	generateCmd.Flags().StringVar(&generateName, "name", "", "optional name for the dish")
	_ = generateCmd.MarkFlagRequired("idea")
	_ = generateCmd.MarkFlagRequired("ingredients")

	rootCmd.AddCommand(generateCmd)
}
