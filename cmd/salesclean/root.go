// cmd/salesclean/root.go
package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gidiolindo/Portfolio/pkg/config"
	"github.com/gidiolindo/Portfolio/pkg/connector"
	"github.com/gidiolindo/Portfolio/pkg/logging"
	"github.com/gidiolindo/Portfolio/pkg/source"
)

// options holds the flags shared by every command. Flags that were set
// override the environment configuration.
type options struct {
	envFile   string
	source    string
	path      string
	sheet     string
	query     string
	seed      int64
	rows      int
	noDefects bool
	sigma     float64
	policy    string
	outDir    string
	audit     bool
	quiet     bool
	noColor   bool
	logLevel  string
	logFormat string
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "salesclean",
		Short: "Clean a sales order export and compute delivered revenue",
		Long: `salesclean normalizes raw sales orders, resolves missing values, removes
duplicates and quantity outliers, and reports delivery-gated revenue.

Settings are read from the environment (and a .env file when present);
flags override them.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.envFile, "env-file", "", "env file to load instead of ./.env")
	pf.StringVar(&opts.source, "source", "", "source kind: synthetic, csv, xlsx, postgres, snowflake")
	pf.StringVar(&opts.path, "path", "", "CSV or XLSX file to read")
	pf.StringVar(&opts.sheet, "sheet", "", "XLSX sheet (first sheet when empty)")
	pf.StringVar(&opts.query, "query", "", "SQL query for database sources")
	pf.Int64Var(&opts.seed, "seed", 42, "seed of the synthetic generator")
	pf.IntVar(&opts.rows, "rows", 100, "orders generated by the synthetic source")
	pf.BoolVar(&opts.noDefects, "no-defects", false, "generate synthetic orders without defects")
	pf.Float64Var(&opts.sigma, "sigma", 3, "outlier bound in standard deviations above the mean")
	pf.StringVar(&opts.policy, "policy", "", "imputation policy, e.g. quantity=median,delivery_status=mode")
	pf.StringVar(&opts.outDir, "out-dir", "", "directory for output files")
	pf.BoolVar(&opts.audit, "audit", false, "record cleaning operations in PostgreSQL")
	pf.BoolVar(&opts.quiet, "quiet", false, "do not print reports")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable colored headings")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", "", "log format: console or json")

	root.AddCommand(
		newRunCommand(opts),
		newProfileCommand(opts),
		newGenerateCommand(opts),
	)
	return root
}

// app carries what every command needs once configuration is resolved
type app struct {
	cfg     *config.Config
	opts    *options
	logger  *zap.Logger
	out     io.Writer
	closers []func() error
}

func setup(cmd *cobra.Command, opts *options) (*app, error) {
	var files []string
	if opts.envFile != "" {
		files = append(files, opts.envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}
	opts.apply(cmd, cfg)

	if err := cfg.LoadDatabases(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		opts:   opts,
		logger: logger,
		out:    cmd.OutOrStdout(),
	}, nil
}

// apply copies the flags that were set on the command line into cfg
func (o *options) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source.Kind = strings.ToLower(o.source)
	}
	if flags.Changed("path") {
		cfg.Source.Path = o.path
	}
	if flags.Changed("sheet") {
		cfg.Source.Sheet = o.sheet
	}
	if flags.Changed("query") {
		cfg.Source.Query = o.query
	}
	if flags.Changed("seed") {
		cfg.Source.SyntheticSeed = o.seed
	}
	if flags.Changed("rows") {
		cfg.Source.SyntheticRows = o.rows
	}
	if flags.Changed("no-defects") {
		cfg.Source.SyntheticDefects = !o.noDefects
	}
	if flags.Changed("sigma") {
		cfg.Cleaning.OutlierSigma = o.sigma
	}
	if flags.Changed("policy") {
		cfg.Cleaning.Policy = o.policy
	}
	if flags.Changed("out-dir") {
		cfg.Output.Dir = o.outDir
	}
	if flags.Changed("audit") {
		cfg.Audit.Enabled = o.audit
	}
	if flags.Changed("quiet") {
		cfg.Output.Quiet = o.quiet
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
}

// openSource builds the configured source. Database sources open a
// connection that is released by close.
func (a *app) openSource(ctx context.Context) (source.Source, error) {
	logger := a.logger.Named("source")
	src := a.cfg.Source

	switch src.Kind {
	case config.SourceSynthetic:
		return source.NewSynthetic(src.SyntheticSeed, src.SyntheticRows, logger).
			WithDefects(src.SyntheticDefects), nil
	case config.SourceCSV:
		return source.NewCSVSource(src.Path, logger), nil
	case config.SourceXLSX:
		return source.NewXLSXSource(src.Path, src.Sheet, logger), nil
	case config.SourcePostgres, config.SourceSnowflake:
		conn, err := connector.NewFactory(a.cfg, a.logger.Named("connector")).ForSource(ctx)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, conn.Close)
		connector.LogPoolStats(a.logger, src.Kind, conn.DB())
		return source.NewSQLSource(connector.Sqlx(conn), src.Query, logger).
			WithTimeout(conn.QueryTimeout()), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", src.Kind)
	}
}

// close releases connections and flushes the logger
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Failed to close resource", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
