package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"exodash/internal/app"
	"exodash/internal/archive"
	"exodash/internal/catalog"
	"exodash/internal/config"
	"exodash/internal/domain"
)

type snapshotOptions struct {
	out      string
	schedule string
	source   sourceFlags
}

func newSnapshotCmd() *cobra.Command {
	var opts snapshotOptions
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save the catalog into a DuckDB file for offline serving",
		Long: `Query the catalog and write it into a DuckDB file that
"exodash serve --snapshot FILE" can serve without network access.

With --schedule the snapshot is taken immediately and then refreshed on the
given cron schedule until interrupted.`,
		Example: `  exodash snapshot --out exoplanets.duckdb
  exodash snapshot --out exoplanets.duckdb --schedule "@daily"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSnapshot(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.out, "out", "", "DuckDB file to write (required)")
	cmd.Flags().StringVar(&opts.schedule, "schedule", "", "Cron schedule for repeated snapshots, e.g. \"0 3 * * *\" or \"@daily\"")
	opts.source.register(cmd.Flags())
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func runSnapshot(cmd *cobra.Command, opts snapshotOptions) error {
	cfg, err := loadConfig(cmd, opts.source.apply)
	if err != nil {
		return err
	}
	if cfg.ArchiveSource == config.SourceDuckDB && samePath(cfg.SnapshotPath, opts.out) {
		return domain.ErrValidation("snapshot output %q is also the snapshot source", opts.out)
	}
	logger := commandLogger(cmd, cfg)

	source, closer, err := app.NewSource(cfg, logger)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close() //nolint:errcheck
	}

	take := func(ctx context.Context) error {
		table, err := source.Query(ctx, catalog.Query())
		if err != nil {
			return &domain.FetchError{Source: source.Name(), Err: err}
		}
		if err := archive.SaveSnapshot(ctx, opts.out, catalog.TableName, table); err != nil {
			return err
		}
		logger.Info("snapshot written", "path", opts.out, "rows", table.Len(), "source", source.Name())
		return nil
	}

	if opts.schedule == "" {
		return take(cmd.Context())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runScheduled(ctx, opts.schedule, take, logger)
}

// runScheduled runs take once, then on every tick of schedule until ctx is
// done. Failed scheduled runs are logged and do not stop the scheduler.
func runScheduled(ctx context.Context, schedule string, take func(context.Context) error, logger *slog.Logger) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if err := take(ctx); err != nil {
			logger.Error("scheduled snapshot failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	if err := take(ctx); err != nil {
		return err
	}

	c.Start()
	logger.Info("snapshot scheduler started", "schedule", schedule)
	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("snapshot scheduler stopped")
	return nil
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	ca, errA := filepath.Abs(a)
	cb, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return ca == cb
}
