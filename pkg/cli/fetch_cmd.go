package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"exodash/internal/app"
	"exodash/internal/catalog"
	"exodash/internal/domain"
	"exodash/internal/filter"
)

type fetchOptions struct {
	methods []string
	distMin float64
	distMax float64
	massMin float64
	massMax float64
	all     bool
	limit   int
	source  sourceFlags
}

func newFetchCmd() *cobra.Command {
	var opts fetchOptions
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Query the catalog and print the filtered planets",
		Long: `Query the catalog once and print the rows that pass the filter.

Without filter flags the dashboard defaults apply: every discovery method,
distance 10-500 pc and mass 0-50 Earth masses. Use --all to skip filtering.`,
		Example: `  exodash fetch --method Transit --mass-max 10 -o table
  exodash fetch --all -o csv > planets.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFetch(cmd, opts)
		},
	}
	cmd.Flags().StringSliceVar(&opts.methods, "method", nil, "Discovery method to keep (repeatable; default all)")
	cmd.Flags().Float64Var(&opts.distMin, "dist-min", filter.DefaultDistance.Min, "Minimum distance in parsecs")
	cmd.Flags().Float64Var(&opts.distMax, "dist-max", filter.DefaultDistance.Max, "Maximum distance in parsecs")
	cmd.Flags().Float64Var(&opts.massMin, "mass-min", filter.DefaultMass.Min, "Minimum mass in Earth masses")
	cmd.Flags().Float64Var(&opts.massMax, "mass-max", filter.DefaultMass.Max, "Maximum mass in Earth masses")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Print the whole catalog without filtering")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Print at most this many rows (0 = no limit)")
	opts.source.register(cmd.Flags())
	return cmd
}

func runFetch(cmd *cobra.Command, opts fetchOptions) error {
	if opts.limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	for _, r := range [][2]float64{{opts.distMin, opts.distMax}, {opts.massMin, opts.massMax}} {
		if math.IsNaN(r[0]) || math.IsNaN(r[1]) {
			return fmt.Errorf("range bounds must be numbers")
		}
	}

	cfg, err := loadConfig(cmd, opts.source.apply)
	if err != nil {
		return err
	}
	logger := commandLogger(cmd, cfg)

	source, closer, err := app.NewSource(cfg, logger)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close() //nolint:errcheck
	}

	table, err := catalog.NewFetcher(source, logger).Fetch(cmd.Context())
	if err != nil {
		return err
	}

	view := table
	if !opts.all {
		sel := filter.DefaultSelection(table)
		if len(opts.methods) > 0 {
			sel.Methods = domain.NewMethodSet(opts.methods...)
		}
		sel.Distance = domain.Range{Min: opts.distMin, Max: opts.distMax}
		sel.Mass = domain.Range{Min: opts.massMin, Max: opts.massMax}
		view = filter.Apply(table, sel)
	}
	logger.Debug("catalog filtered", "catalog_rows", table.Len(), "view_rows", view.Len())

	if opts.limit > 0 && view.Len() > opts.limit {
		view = &domain.Table{Columns: view.Columns, Rows: view.Rows[:opts.limit]}
	}

	w := cmd.OutOrStdout()
	return renderTable(w, view, resolveOutputFormat(cmd, w))
}
