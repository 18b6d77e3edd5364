package main

import (
	"fmt"
	"time"

	"github.com/pageza/chefai/backend/internal/service"
	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the write routes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens, err := service.NewTokenService(cfg.JWTSecret)
		if err != nil {
			return fmt.Errorf("JWT_SECRET must be set to issue tokens: %w", err)
		}
		token, err := tokens.GenerateToken(tokenSubject, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "chefai-client", "client the token is issued to")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
