// Package cli implements the imagemgmt command line.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	slogcontext "github.com/veqryn/slog-context"

	"github.com/fleetshift/imagemgmt/internal/config"
)

const (
	configFlag    = "config"
	dbFlag        = "db"
	logLevelFlag  = "loglevel"
	logFormatFlag = "logformat"
	userFlag      = "user"
)

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := New().Execute(); err != nil {
		os.Exit(1)
	}
}

// New builds the root command with all sub-commands attached.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imagemgmt [sub-command]",
		Short: "Manage workload image versions and their rampup plans",
		Long: `imagemgmt registers image types and versions, authors percentage-based
rampup plans, and resolves which version each image type runs for a flow.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: setupLogging,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	cmd.PersistentFlags().String(configFlag, "", "path to the imagemgmt YAML configuration file")
	cmd.PersistentFlags().String(dbFlag, "", "SQLite database path, overriding the config file value")
	cmd.PersistentFlags().String(logLevelFlag, "", `log level ("debug", "info", "warn", "error"), overriding the config file value`)
	cmd.PersistentFlags().String(logFormatFlag, "", `log format ("text", "json"), overriding the config file value`)
	cmd.PersistentFlags().String(userFlag, os.Getenv("USER"), "user recorded as author of changes")

	cmd.AddCommand(newImageTypeCmd())
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newRampupCmd())
	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newDispatchCmd())
	return cmd
}

// loadConfig reads the config file named by --config, or the defaults,
// and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path, _ := cmd.Flags().GetString(configFlag); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if db, _ := cmd.Flags().GetString(dbFlag); db != "" {
		cfg.Database.Path = db
	}
	if lvl, _ := cmd.Flags().GetString(logLevelFlag); lvl != "" {
		cfg.Log.Level = lvl
	}
	if format, _ := cmd.Flags().GetString(logFormatFlag); format != "" {
		cfg.Log.Format = format
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg.Log)
	slog.SetDefault(logger)
	cmd.SetContext(slogcontext.NewCtx(cmd.Context(), logger))
	return nil
}

func newLogger(cmd *cobra.Command, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	w := cmd.ErrOrStderr()
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func currentUser(cmd *cobra.Command) string {
	u, _ := cmd.Flags().GetString(userFlag)
	return u
}
