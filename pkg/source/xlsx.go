// pkg/source/xlsx.go
package source

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/gidiolindo/Portfolio/pkg/model"
)

// XLSXSource reads orders from one sheet of a workbook
type XLSXSource struct {
	path   string
	sheet  string
	logger *zap.Logger
}

// NewXLSXSource creates a workbook source. An empty sheet name selects the
// first sheet.
func NewXLSXSource(path, sheet string, logger *zap.Logger) *XLSXSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &XLSXSource{path: path, sheet: sheet, logger: logger}
}

// Load reads the sheet
func (s *XLSXSource) Load(ctx context.Context) (*model.Table, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", zap.Error(err))
		}
	}()

	sheet := s.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("sheet %q not found in %s", sheet, s.path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %s has no header row", model.ErrEmptyDataset, sheet)
	}

	builder, err := newTableBuilder(rows[0], s.logger)
	if err != nil {
		return nil, err
	}
	t, err := builder.build(rows[1:])
	if err != nil {
		return nil, err
	}

	s.logger.Info("Loaded workbook source",
		zap.String("path", s.path),
		zap.String("sheet", sheet),
		zap.Int("rows", t.Len()))
	return t, nil
}
