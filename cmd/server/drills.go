package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/phrazzld/drillsched/internal/domain"
	"github.com/spf13/cobra"
)

func newDrillsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drills",
		Short: "Manage the local drill catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file.json|->",
		Short: "Insert or overwrite drills from a JSON array",
		Args:  cobra.ExactArgs(1),
		RunE:  runDrillsImport,
	})
	return cmd
}

func runDrillsImport(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open drill file: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	var drills []domain.Drill
	if err := json.NewDecoder(in).Decode(&drills); err != nil {
		return fmt.Errorf("failed to decode drills: %w", err)
	}

	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(cmd.Context(), cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	st, err := newStores(db, cfg.Database.Driver, log)
	if err != nil {
		return err
	}

	n, err := st.drill.Upsert(cmd.Context(), drills)
	if err != nil {
		return fmt.Errorf("failed to import drills: %w", err)
	}

	log.Info("drills imported", slog.Int("count", n))
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d drill(s)\n", n)
	return nil
}
