// Package cli implements the exodash command line: the dashboard server,
// one-shot catalog queries and DuckDB snapshots.
package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"exodash/internal/config"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			enc := json.NewEncoder(os.Stdout)
			_ = enc.Encode(map[string]interface{}{"error": err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		output     string
		logLevel   string
	)

	rootCmd := &cobra.Command{
		Use:           "exodash",
		Short:         "Exoplanet catalog dashboard",
		Long:          "Serve and query the NASA Exoplanet Archive Planetary Systems catalog.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return validateOutputFormat(output)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $EXODASH_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Output format (table, csv, json, md); defaults to table on a terminal and csv otherwise")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newSnapshotCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// loadConfig resolves configuration with precedence flag > env > file >
// default. override applies command-specific flags before validation.
func loadConfig(cmd *cobra.Command, override func(*config.Config)) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	if path == "" {
		path = os.Getenv("EXODASH_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Root().PersistentFlags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if override != nil {
		override(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// sourceFlags are the upstream overrides shared by fetch, serve and snapshot.
type sourceFlags struct {
	source   string
	snapshot string
	url      string
}

func (f *sourceFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.source, "source", "", "Catalog source (tap, duckdb); overrides ARCHIVE_SOURCE")
	fs.StringVar(&f.snapshot, "snapshot", "", "DuckDB snapshot file; overrides SNAPSHOT_PATH")
	fs.StringVar(&f.url, "archive-url", "", "TAP sync endpoint; overrides ARCHIVE_URL")
}

func (f *sourceFlags) apply(cfg *config.Config) {
	if f.snapshot != "" {
		cfg.SnapshotPath = f.snapshot
		if f.source == "" {
			cfg.ArchiveSource = config.SourceDuckDB
		}
	}
	if f.source != "" {
		cfg.ArchiveSource = f.source
	}
	if f.url != "" {
		cfg.ArchiveURL = f.url
	}
}

// commandLogger writes human-readable logs to stderr for one-shot commands.
func commandLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	for _, w := range cfg.Warnings {
		logger.Debug("config warning", "warning", w)
	}
	return logger
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
	return cmd
}
