// pkg/source/csv.go
package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/gidiolindo/Portfolio/pkg/model"
)

// CSVSource reads orders from a headed CSV file
type CSVSource struct {
	path   string
	comma  rune
	logger *zap.Logger
}

// NewCSVSource creates a CSV source for the given file
func NewCSVSource(path string, logger *zap.Logger) *CSVSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVSource{path: path, comma: ',', logger: logger}
}

// WithComma sets the field delimiter
func (s *CSVSource) WithComma(comma rune) *CSVSource {
	s.comma = comma
	return s
}

// Load reads the whole file
func (s *CSVSource) Load(ctx context.Context) (*model.Table, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	t, err := ReadCSV(ctx, f, s.comma, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	s.logger.Info("Loaded CSV source",
		zap.String("path", s.path),
		zap.Int("rows", t.Len()),
		zap.Strings("columns", t.Columns))
	return t, nil
}

// ReadCSV reads a headed CSV stream into a raw table
func ReadCSV(ctx context.Context, r io.Reader, comma rune, logger *zap.Logger) (*model.Table, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: no header row", model.ErrEmptyDataset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}

	builder, err := newTableBuilder(header, logger)
	if err != nil {
		return nil, err
	}

	var records [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}

	return builder.build(records)
}

// WriteCSV writes a table with a header row. Missing cells are written empty.
func WriteCSV(w io.Writer, t *model.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			record[i] = v.String()
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
