package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/pageza/chefai/backend/config"
	"github.com/pageza/chefai/backend/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	envFile string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "chefai",
	Short: "Generate, store and search AI recipes",
	Long: `ChefAI turns a recipe idea and a list of ingredients into a complete recipe
using a text generation model, optionally pictures the dish, and keeps every
generated recipe in a searchable store.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnvFile(envFile); err != nil {
			return err
		}

		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.LogLevel, cfg.LogJSON)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment (empty to skip)")
}

// loadEnvFile loads path into the environment without overriding variables that are
// already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// closeStore closes store and logs a failure
func closeStore(store io.Closer) {
	if err := store.Close(); err != nil {
		logger.Warn("failed to close store", zap.Error(err))
	}
}
