// cmd/salesclean/run.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gidiolindo/Portfolio/pkg/analysis"
	"github.com/gidiolindo/Portfolio/pkg/cleaner"
	"github.com/gidiolindo/Portfolio/pkg/connector"
	"github.com/gidiolindo/Portfolio/pkg/model"
	"github.com/gidiolindo/Portfolio/pkg/profile"
	"github.com/gidiolindo/Portfolio/pkg/report"
)

// Output file names written by run
const (
	cleanedFile  = "cleaned_orders.csv"
	workbookFile = "sales_summary.xlsx"
	summaryFile  = "sales_summary.json"
	metricsFile  = "run_metrics.json"
)

func newRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Load, clean and summarise the configured source",
		Example: `  salesclean run
  salesclean run --source csv --path orders.csv --out-dir out
  salesclean run --source synthetic --seed 7 --rows 500 --sigma 2.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()
			return a.run(cmd.Context())
		},
	}
}

func (a *app) run(ctx context.Context) error {
	metrics := report.NewRunMetrics(a.cfg.Source.Kind, a.logger.Named("metrics"))
	console := report.NewConsole(a.out).WithColor(!a.opts.noColor)

	raw, err := a.loadRaw(ctx)
	if err != nil {
		metrics.RecordError(err)
		return err
	}
	metrics.RecordLoad(raw.Len())

	dc, err := a.newCleaner(ctx)
	if err != nil {
		return err
	}

	if !a.cfg.Output.Quiet {
		console.PrintProfile(profile.Build(raw, dc.Metadata()))
	}

	result, err := dc.Clean(ctx, raw)
	metrics.RecordResult(result)
	if err != nil {
		category := metrics.RecordError(err)
		if result != nil && errors.Is(err, cleaner.ErrIntegrity) && !a.cfg.Output.Quiet {
			console.PrintRun(result)
		}
		a.logger.Error("Cleaning failed",
			zap.String("category", category.String()),
			zap.Error(err))
		return err
	}

	summary, err := analysis.NewCalculator(a.cfg.Cleaning.DeliveredStatus, a.logger.Named("analysis")).
		ComputeTable(result.Table)
	if err != nil {
		return err
	}
	metrics.Complete()

	if !a.cfg.Output.Quiet {
		console.PrintRun(result)
		console.PrintSummary(summary)
		console.PrintMetrics(metrics)
	}

	return a.writeOutputs(result, summary, metrics)
}

// newCleaner configures the cleaner from settings, with a PostgreSQL audit
// sink when auditing is enabled
func (a *app) newCleaner(ctx context.Context) (*cleaner.DataCleaner, error) {
	dc, err := cleaner.NewDataCleaner(a.logger.Named("cleaner"))
	if err != nil {
		return nil, err
	}
	dc.WithSigma(a.cfg.Cleaning.OutlierSigma)

	if a.cfg.Cleaning.Policy != "" {
		policy, err := cleaner.ParsePolicy(a.cfg.Cleaning.Policy)
		if err != nil {
			return nil, fmt.Errorf("invalid cleaning policy: %w", err)
		}
		dc.WithPolicy(policy)
	}

	if a.cfg.Audit.Enabled {
		pg, err := connector.NewFactory(a.cfg, a.logger.Named("connector")).Postgres(ctx)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		if err := pg.CheckCreate(ctx); err != nil {
			return nil, err
		}

		recorder, err := cleaner.NewPostgresRecorder(ctx, connector.Sqlx(pg), a.cfg.Audit.Table, a.logger.Named("audit"))
		if err != nil {
			return nil, err
		}
		dc.WithRecorder(recorder)
	}
	return dc, nil
}

func (a *app) writeOutputs(result *cleaner.Result, summary *analysis.Summary, metrics *report.RunMetrics) error {
	dir := a.cfg.Output.Dir
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := writeFile(filepath.Join(dir, cleanedFile), func(f *os.File) error {
		return report.WriteCleanedCSV(f, summary.Cleaned)
	}); err != nil {
		return err
	}

	if a.cfg.Output.XLSX {
		if err := report.WriteWorkbook(filepath.Join(dir, workbookFile), summary); err != nil {
			return err
		}
	}

	if a.cfg.Output.JSON {
		if err := writeFile(filepath.Join(dir, summaryFile), func(f *os.File) error {
			return report.WriteJSON(f, result, summary)
		}); err != nil {
			return err
		}

		raw, err := metrics.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
		if err := os.WriteFile(filepath.Join(dir, metricsFile), raw, 0o644); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	a.logger.Info("Outputs written", zap.String("dir", dir))
	return nil
}

func writeFile(path string, write func(f *os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()
	return write(f)
}

// loadRaw opens the configured source and reads the raw orders
func (a *app) loadRaw(ctx context.Context) (*model.Table, error) {
	src, err := a.openSource(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open source: %w", err)
	}
	raw, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	return raw, nil
}
