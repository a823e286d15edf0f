package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/drillsched/internal/config"
	"github.com/phrazzld/drillsched/internal/platform/logger"
	"github.com/spf13/cobra"
)

const configFlag = "config"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "drillsched",
		Short:        "Spaced-repetition scheduling for practice drills",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, false)
		},
	}

	root.PersistentFlags().String(configFlag, "", "Path to a YAML config file (default ./config.yaml if present)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newDrillsCmd())
	root.AddCommand(newTokenCmd())
	return root
}

// loadConfig reads configuration for cmd and installs the configured logger
// as the process default.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString(configFlag)

	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.SetupWithWriter(cmd.ErrOrStderr(), cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Debug("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("auth_required", cfg.Auth.Required),
		slog.String("timezone", cfg.Schedule.Timezone))
	return cfg, log, nil
}
