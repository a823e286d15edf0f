package main

import (
	"github.com/spf13/cobra"
)

const migrateFlag = "migrate"

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the practice API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool(migrateFlag)
			return runServe(cmd, migrate)
		},
	}
	cmd.Flags().Bool(migrateFlag, false, "Apply pending migrations before serving")
	return cmd
}

func runServe(cmd *cobra.Command, migrate bool) error {
	ctx := cmd.Context()

	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}

	if migrate {
		if err := migrateUp(ctx, db, cfg.Database.Driver, log); err != nil {
			_ = db.Close()
			return err
		}
	}

	app, err := newApplication(ctx, cfg, log, db)
	if err != nil {
		_ = db.Close()
		return err
	}
	return app.Run(ctx)
}
