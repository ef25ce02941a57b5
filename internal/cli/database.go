package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/outy-app/outy/internal/config"
	"github.com/outy-app/outy/internal/database"
)

func (c *CLI) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			db, err := database.Open(cfg.DatabaseURL, cfg.PGSSL)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "migrations applied")
			return nil
		},
	}
}

func (c *CLI) newSeedCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo accounts, listings and a review",
		Long: `Insert the demo host (` + database.SeedHostEmail + `) and user (` + database.SeedUserEmail + `),
the sample places and events, and one review.  Existing rows are kept.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if password == "" {
				password = cfg.SeedPass
			}
			db, err := database.Open(cfg.DatabaseURL, cfg.PGSSL)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			if err := database.Seed(cmd.Context(), db, password); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "seed data ready")
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password for seeded accounts (default: SEED_PASSWORD)")
	return cmd
}
