package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/pageza/chefai/backend/internal/repository"
	"github.com/pageza/chefai/backend/internal/server"
	"github.com/spf13/cobra"
)

var watch bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored recipes, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, func(store *server.Store) *repository.LiveQuery {
			return store.Recipes.ListAll()
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <title>",
	Short: "Search stored recipes by title",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		term := strings.Join(args, " ")
		return runQuery(cmd, func(store *server.Store) *repository.LiveQuery {
			return store.Recipes.Search(term)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{listCmd, searchCmd} {
		c.Flags().BoolVarP(&watch, "watch", "w", false, "keep printing results as recipes change")
		rootCmd.AddCommand(c)
	}
}

func runQuery(cmd *cobra.Command, open func(*server.Store) *repository.LiveQuery) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	store, err := server.OpenStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore(store)

	return printSnapshots(ctx, cmd.OutOrStdout(), open(store), watch)
}

// printSnapshots prints the first result of query, and with follow every later one
// until ctx is done
func printSnapshots(ctx context.Context, out io.Writer, query *repository.LiveQuery, follow bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for snap := range query.Subscribe(ctx) {
		if snap.Err != nil {
			return snap.Err
		}
		printRecipeList(out, snap.Recipes)
		if !follow {
			return nil
		}
		fmt.Fprintln(out, "---")
	}
	return nil
}
