package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/app/bootstrap"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/config"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/infra/logger"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "portalctl",
		Short:        "Operator commands for the neighbourhood portal",
		SilenceUsage: true,
	}

	defaultPath := os.Getenv("APP_CONFIG")
	if defaultPath == "" {
		defaultPath = "configs/config.yaml"
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultPath, "config file path")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newBadgesCmd(opts),
		newModerationCmd(opts),
	)
	return cmd
}

// withContainer loads config, opens the shared dependencies and closes them
// once fn returns.
func withContainer(opts *rootOptions, fn func(cmd *cobra.Command, c *bootstrap.Container, log *zap.Logger) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(opts.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		level := cfg.Log.Level
		if opts.logLevel != "" {
			level = opts.logLevel
		}

		log, err := logger.New(level, cfg.Env, "portalctl")
		if err != nil {
			return err
		}
		defer func() {
			_ = log.Sync()
		}()

		c, err := bootstrap.Open(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer c.Close()

		return fn(cmd, c, log)
	}
}
