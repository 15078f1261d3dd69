package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/app/bootstrap"
)

func newBadgesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "badges",
		Short: "Badge maintenance",
	}

	sweep := &cobra.Command{
		Use:   "sweep",
		Short: "Evaluate every verified member and award newly earned badges",
		Args:  cobra.NoArgs,
		RunE: withContainer(opts, func(cmd *cobra.Command, c *bootstrap.Container, _ *zap.Logger) error {
			result, err := c.Gamification.RunSweep(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "users=%d awarded=%d failed=%d\n", result.Users, result.Awarded, result.Failed)
			return err
		}),
	}

	var tenant, user string
	award := &cobra.Command{
		Use:   "award <slug>",
		Short: "Award a badge to one member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := uuid.Parse(tenant)
			if err != nil {
				return fmt.Errorf("invalid --tenant: %w", err)
			}
			userID, err := uuid.Parse(user)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			return withContainer(opts, func(cmd *cobra.Command, c *bootstrap.Container, _ *zap.Logger) error {
				badge, err := c.Gamification.AwardBadge(cmd.Context(), tenantID, userID, args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "awarded %s to %s\n", badge.BadgeSlug, badge.UserID)
				return err
			})(cmd, args)
		},
	}
	award.Flags().StringVar(&tenant, "tenant", "", "tenant id")
	award.Flags().StringVar(&user, "user", "", "user id")
	_ = award.MarkFlagRequired("tenant")
	_ = award.MarkFlagRequired("user")

	cmd.AddCommand(sweep, award)
	return cmd
}
