package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/app/bootstrap"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/rules"
	pgrepo "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/repo/postgres"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and sync the badge catalog",
		Args:  cobra.NoArgs,
		RunE: withContainer(opts, func(cmd *cobra.Command, c *bootstrap.Container, log *zap.Logger) error {
			applied, err := pgrepo.Migrate(cmd.Context(), c.Postgres, log)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			if err := c.Badges.SyncCatalog(cmd.Context(), rules.BadgeCatalog()); err != nil {
				return fmt.Errorf("sync badge catalog: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				_, err = fmt.Fprintln(out, "schema is up to date")
				return err
			}
			for _, version := range applied {
				if _, err := fmt.Fprintf(out, "applied %s\n", version); err != nil {
					return err
				}
			}
			return nil
		}),
	}
}
