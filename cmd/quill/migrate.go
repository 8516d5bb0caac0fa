package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quill/internal/config"
	"quill/internal/store"
)

func newMigrateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var dryRun bool
	var inspect bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run or inspect database schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inspect || dryRun {
				return showMigrationPlan(cfg, *jsonOutput)
			}

			// Opening the store applies pending migrations.
			if err := withStore(cfg, func(*store.Store) error { return nil }); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			if *jsonOutput {
				return showMigrationPlan(cfg, true)
			}
			fmt.Println("Migrations applied successfully.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show pending migrations without applying")
	cmd.Flags().BoolVar(&inspect, "inspect", false, "show migration status")

	return cmd
}

func showMigrationPlan(cfg *config.Config, jsonOutput bool) error {
	db, err := store.OpenRaw(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	plan, err := store.MigrationPlan(db)
	if err != nil {
		return fmt.Errorf("inspect migrations: %w", err)
	}
	if jsonOutput {
		return writeJSON(plan)
	}

	fmt.Printf("Current version: %d\n", plan.CurrentVersion)
	fmt.Printf("Available version: %d\n", plan.AvailableVersion)
	if len(plan.Pending) == 0 {
		fmt.Println("No pending migrations.")
		return nil
	}
	fmt.Printf("Pending migrations: %d\n", len(plan.Pending))
	for _, m := range plan.Pending {
		fmt.Printf("  %d: %s\n", m.Version, m.Description)
	}
	return nil
}
