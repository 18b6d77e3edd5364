package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pageza/chefai/backend/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
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

		srv, err := server.New(cfg, store, generator, logger)
		if err != nil {
			return err
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(srv.Start)
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Stop(shutdownCtx)
		})

		err = g.Wait()
		logger.Info("server stopped", zap.Int64("unsaved_recipes", generator.PersistFailures()))
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
