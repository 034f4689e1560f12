// pkg/report/console.go
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/gidiolindo/Portfolio/pkg/analysis"
	"github.com/gidiolindo/Portfolio/pkg/cleaner"
	"github.com/gidiolindo/Portfolio/pkg/profile"
)

// Console prints run results as tables
type Console struct {
	out     io.Writer
	heading *color.Color
	warning *color.Color
}

// NewConsole creates a console printer writing to out
func NewConsole(out io.Writer) *Console {
	return &Console{
		out:     out,
		heading: color.New(color.FgCyan, color.Bold),
		warning: color.New(color.FgYellow),
	}
}

// WithColor forces colored headings on or off
func (c *Console) WithColor(enabled bool) *Console {
	if enabled {
		c.heading.EnableColor()
		c.warning.EnableColor()
	} else {
		c.heading.DisableColor()
		c.warning.DisableColor()
	}
	return c
}

func (c *Console) section(title string) {
	c.heading.Fprintf(c.out, "\n=== %s ===\n", title)
}

func (c *Console) table(header []string, rows [][]string) {
	t := tablewriter.NewWriter(c.out)
	t.SetAutoFormatHeaders(false)
	t.SetHeader(header)
	t.AppendBulk(rows)
	t.Render()
}

// PrintProfile prints the exploratory profile of a raw table
func (c *Console) PrintProfile(p *profile.Profile) {
	c.section("Dataset profile")
	fmt.Fprintf(c.out, "Rows: %d\nDuplicate rows: %d\n", p.Rows, p.DuplicateRows)

	rows := make([][]string, 0, len(p.Columns))
	for _, col := range p.Columns {
		rows = append(rows, []string{
			col.Name, col.Nominal, col.Kind,
			strconv.Itoa(col.NonMissing), strconv.Itoa(col.Missing),
		})
	}
	c.table([]string{"column", "type", "kind", "non-missing", "missing"}, rows)

	var numeric, categorical [][]string
	for _, col := range p.Columns {
		if n := col.Numeric; n != nil {
			numeric = append(numeric, []string{
				col.Name, strconv.Itoa(n.Count),
				formatStat(n.Mean), formatStat(n.Std), formatStat(n.Min),
				formatStat(n.Q25), formatStat(n.Q50), formatStat(n.Q75), formatStat(n.Max),
			})
		}
		if s := col.Categorical; s != nil {
			categorical = append(categorical, []string{
				col.Name, strconv.Itoa(s.Count), strconv.Itoa(s.Unique), s.Top, strconv.Itoa(s.Freq),
			})
		}
	}
	if len(numeric) > 0 {
		c.section("Numeric columns")
		c.table([]string{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}, numeric)
	}
	if len(categorical) > 0 {
		c.section("Categorical columns")
		c.table([]string{"column", "count", "unique", "top", "freq"}, categorical)
	}
}

// PrintRun prints the stage flow, fill values and integrity issues of a run
func (c *Console) PrintRun(result *cleaner.Result) {
	c.section("Cleaning stages")
	fmt.Fprintf(c.out, "Run: %s\n", result.RunID)

	rows := make([][]string, 0, len(result.Stages))
	for _, s := range result.Stages {
		rows = append(rows, []string{
			s.Stage, strconv.Itoa(s.RowsIn), strconv.Itoa(s.RowsOut),
			strconv.Itoa(s.Dropped), strconv.Itoa(s.CellsChanged), formatDuration(s.Duration),
		})
	}
	c.table([]string{"stage", "rows in", "rows out", "dropped", "cells changed", "duration"}, rows)

	if len(result.Fills) > 0 {
		columns := make([]string, 0, len(result.Fills))
		for col := range result.Fills {
			columns = append(columns, col)
		}
		sort.Strings(columns)
		fills := make([][]string, 0, len(columns))
		for _, col := range columns {
			fills = append(fills, []string{col, result.Fills[col].String()})
		}
		c.section("Imputed values")
		c.table([]string{"column", "fill"}, fills)
	}
	fmt.Fprintf(c.out, "Outlier bound (quantity): %s\n", formatBound(result.OutlierBound))

	if len(result.Issues) > 0 {
		c.warning.Fprintf(c.out, "\n%d integrity issues\n", len(result.Issues))
		issues := make([][]string, 0, len(result.Issues))
		for _, is := range result.Issues {
			issues = append(issues, []string{
				is.IssueType, is.ColumnName, strconv.FormatInt(is.AffectedRows, 10), is.Description,
			})
		}
		c.table([]string{"issue", "column", "rows", "description"}, issues)
	}
}

// PrintSummary prints revenue and the aggregate series
func (c *Console) PrintSummary(s *analysis.Summary) {
	c.section("Revenue")
	fmt.Fprintf(c.out, "Orders: %d (%d delivered)\nTotal revenue: %s\n",
		s.Orders, s.DeliveredOrders, FormatCurrency(s.TotalRevenue))

	c.section("Revenue by category")
	c.table([]string{"category", "revenue"}, seriesRows(s.RevenueByCategory, FormatCurrency))

	c.section("Quantity by product")
	c.table([]string{"product", "quantity"}, seriesRows(s.QuantityByProduct, formatNumber))

	c.section("Revenue by day")
	days := make([][]string, 0, len(s.RevenueByDay))
	for _, p := range s.RevenueByDay {
		days = append(days, []string{p.Day.Format("2006-01-02"), FormatCurrency(p.Revenue)})
	}
	c.table([]string{"day", "revenue"}, days)

	c.section("Delivery status")
	c.table([]string{"status", "orders"}, seriesRows(s.StatusDistribution, formatNumber))
}

// PrintMetrics prints the metrics report of a run
func (c *Console) PrintMetrics(m *RunMetrics) {
	fmt.Fprint(c.out, m.GenerateMetricsReport())
}

func seriesRows(s analysis.Series, format func(float64) string) [][]string {
	rows := make([][]string, 0, len(s))
	for _, p := range s {
		rows = append(rows, []string{p.Key, format(p.Value)})
	}
	return rows
}

func formatStat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
