// cmd/salesclean/generate.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gidiolindo/Portfolio/pkg/source"
)

func newGenerateCommand(opts *options) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the synthetic order fixture as CSV",
		Example: `  salesclean generate --out orders.csv
  salesclean generate --rows 1000 --seed 7 --no-defects --out -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			defer a.close()

			src := a.cfg.Source
			table, err := source.NewSynthetic(src.SyntheticSeed, src.SyntheticRows, a.logger.Named("source")).
				WithDefects(src.SyntheticDefects).
				Load(cmd.Context())
			if err != nil {
				return err
			}

			if out == "-" {
				return source.WriteCSV(a.out, table)
			}
			if err := writeFile(out, func(f *os.File) error {
				return source.WriteCSV(f, table)
			}); err != nil {
				return err
			}
			a.logger.Info("Synthetic orders written",
				zap.String("path", out),
				zap.Int("rows", table.Len()))
			fmt.Fprintf(a.out, "wrote %d orders to %s\n", table.Len(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "orders.csv", "CSV file to write, - for stdout")
	return cmd
}
