package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/app/bootstrap"
)

func newModerationCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "moderation",
		Short: "Moderation queue maintenance",
	}

	var batch int
	reconcile := &cobra.Command{
		Use:   "reconcile",
		Short: "Requeue pending content that has no pending queue entry",
		Args:  cobra.NoArgs,
		RunE: withContainer(opts, func(cmd *cobra.Command, c *bootstrap.Container, _ *zap.Logger) error {
			result, err := c.Moderation.Reconcile(cmd.Context(), batch)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d requeued=%d failed=%d\n", result.Scanned, result.Requeued, result.Failed)
			return err
		}),
	}
	reconcile.Flags().IntVar(&batch, "batch", 100, "rows scanned per content type")

	cmd.AddCommand(reconcile)
	return cmd
}
