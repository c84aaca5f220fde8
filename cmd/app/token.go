package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ai-chat-bridge/internal/config"
	"ai-chat-bridge/internal/infra/web"
)

const adminTokenTTL = 12 * time.Hour

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the /admin API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cfgPath, devMode)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if !cfg.Admin.Enabled {
			return errors.New("admin API is disabled (admin.enabled)")
		}
		tok, err := web.NewAuthManager(cfg.Admin.JWTSecret, tokenTTL).Mint(tokenSubject)
		if err != nil {
			return fmt.Errorf("mint: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "admin", "token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", adminTokenTTL, "token lifetime")
}
