package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"quill/internal/config"
	"quill/internal/store"
)

func newInitDBCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the database schema, optionally with demo data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), cfg, func(bs store.BlogStore) error {
				if !seed {
					if *jsonOutput {
						return writeJSON(map[string]string{"db_path": cfg.DBPath, "status": "ready"})
					}
					return writePlain("Database ready at %s\n", cfg.DBPath)
				}
				result, err := bs.SeedDemoData(cmd.Context())
				if err != nil {
					return err
				}
				return writeSeedResult(result, *jsonOutput)
			})
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "insert demo authors and blogs")
	return cmd
}

func newSeedCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo authors and blogs into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), cfg, func(bs store.BlogStore) error {
				result, err := bs.SeedDemoData(cmd.Context())
				if err != nil {
					return err
				}
				return writeSeedResult(result, *jsonOutput)
			})
		},
	}
}

func writeSeedResult(result *store.SeedResult, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(result)
	}
	if result.Skipped {
		return writePlain("Database already has data; demo data not inserted.\n")
	}
	return writePlain("Seeded %d authors and %d blogs.\n", result.Authors, result.Blogs)
}

func newBackupCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "backup [destination]",
		Short: "Copy the database file to a backup",
		Long: "Copy the database file to destination. A directory destination, or none at all,\n" +
			"produces blog_backup_YYYYMMDD_HHMMSS.db inside it (default: the configured backup_dir).",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			destination := strings.TrimRight(cfg.BackupDir, string(os.PathSeparator)) + string(os.PathSeparator)
			if len(args) == 1 {
				destination = args[0]
			}

			return withStore(cfg, func(st *store.Store) error {
				result, err := st.Backup(cmd.Context(), destination)
				if err != nil {
					return err
				}
				slog.Info("backup complete", "path", result.Path, "bytes", result.SizeBytes)
				if *jsonOutput {
					return writeJSON(result)
				}
				return writePlain("Backup written to %s (%d bytes, blake2b-256 %s)\n", result.Path, result.SizeBytes, result.Digest)
			})
		},
	}
}

func newRestoreCmd(cfg *config.Config) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Replace the database with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(cfg.DBPath); err == nil && !force {
				return fmt.Errorf("database %s exists; pass --force to overwrite it", cfg.DBPath)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			if err := store.Restore(cmd.Context(), args[0], cfg.DBPath); err != nil {
				return err
			}
			slog.Info("restore complete", "from", args[0], "to", cfg.DBPath)
			return writePlain("Restored %s from %s\n", cfg.DBPath, args[0])
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing database")
	return cmd
}

func newStatsCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show content totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), cfg, func(bs store.BlogStore) error {
				stats, err := bs.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(stats)
				}
				return writePlain("authors: %d\nblogs: %d (published %d, featured %d)\nviews: %d\nlikes: %d\nschema_version: %d\nsize_bytes: %d\n",
					stats.Authors, stats.Blogs, stats.Published, stats.Featured,
					stats.TotalViews, stats.TotalLikes, stats.SchemaVersion, stats.SizeBytes)
			})
		},
	}
}

func newCheckCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run an integrity check on the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				problems, err := st.IntegrityCheck(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					if err := writeJSON(map[string]any{"ok": len(problems) == 0, "problems": problems}); err != nil {
						return err
					}
				} else if len(problems) == 0 {
					if err := writePlain("ok\n"); err != nil {
						return err
					}
				}
				if len(problems) > 0 {
					return fmt.Errorf("integrity check failed: %s", strings.Join(problems, "; "))
				}
				return nil
			})
		},
	}
}

func newOptimizeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "optimize",
		Short: "Vacuum and analyze the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				if err := st.Optimize(cmd.Context()); err != nil {
					return err
				}
				return writePlain("Database optimized.\n")
			})
		},
	}
}
