package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quill/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		jsonOutput bool
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "quill",
		Short:         "Quill is a small blog publishing server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), warning)
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug|info|warn|error)")

	cmd.AddCommand(
		newServeCmd(cfg),
		newInitDBCmd(cfg, &jsonOutput),
		newSeedCmd(cfg, &jsonOutput),
		newBackupCmd(cfg, &jsonOutput),
		newRestoreCmd(cfg),
		newStatsCmd(cfg, &jsonOutput),
		newCheckCmd(cfg, &jsonOutput),
		newOptimizeCmd(cfg),
		newMigrateCmd(cfg, &jsonOutput),
		newImportCmd(cfg, &jsonOutput),
		newPostCmd(cfg, &jsonOutput),
		newConfigCmd(cfg),
	)

	return cmd
}
