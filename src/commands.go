package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sandrolain/table-bridge/src/bridge"
	"github.com/sandrolain/table-bridge/src/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRootCommand() *cobra.Command {
	var ov config.Overrides

	root := &cobra.Command{
		Use:   "table-bridge",
		Short: "Copy a SQL table into PostgreSQL",
		Long: "Reads every row of a source table or query and upserts it into a PostgreSQL " +
			"destination table, logging a status for each row.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&ov.ConfigFilePath, "config", "", "YAML or JSON configuration file (overrides TB_CONFIG_FILE_PATH)")
	flags.StringVar(&ov.SourceTable, "source-table", "", "Source table, as schema.table or table")
	flags.StringVar(&ov.DestinationTable, "destination-table", "", "Destination table, as schema.table or table")
	flags.StringVar(&ov.Query, "query", "", "Source query (replaces SELECT * FROM the source table)")
	flags.StringVar(&ov.LogLevel, "log-level", "", "Log level: debug, info, warn, error")

	runCmd := newRunCommand(&ov)
	root.RunE = runCmd.RunE
	root.AddCommand(runCmd, newConfigCommand(&ov))
	return root
}

func newRunCommand(ov *config.Overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Copy the source rows into the destination table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*ov)
			if err != nil {
				slog.Error("failed to load configuration", "error", err)
				return err
			}
			setupLogger(os.Stdout, cfg.Log.Level)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			b, err := bridge.NewTableBridge(cfg, slog.Default())
			if err != nil {
				slog.Error("failed to create table bridge", "error", err)
				return err
			}

			if _, err := b.Run(ctx); err != nil {
				slog.Error("table bridge run failed", "run", b.RunID(), "error", err)
				return err
			}
			return nil
		},
	}
}

func newConfigCommand(ov *config.Overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with passwords masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*ov)
			if err != nil {
				slog.Error("failed to load configuration", "error", err)
				return err
			}

			out, err := yaml.Marshal(cfg.Redacted())
			if err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
