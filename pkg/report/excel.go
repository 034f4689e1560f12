// pkg/report/excel.go
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/gidiolindo/Portfolio/pkg/analysis"
)

// Workbook sheet names
const (
	SheetCleaned    = "cleaned"
	SheetByCategory = "by_category"
	SheetByProduct  = "by_product"
	SheetByDay      = "by_day"
	SheetStatus     = "status"
)

// WriteWorkbook writes the cleaned orders and every aggregate to an xlsx file
func WriteWorkbook(path string, s *analysis.Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetCleaned); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}

	header := make([]interface{}, len(cleanedHeader))
	for i, name := range cleanedHeader {
		header[i] = name
	}
	cleaned := [][]interface{}{header}
	for _, o := range s.Cleaned {
		cleaned = append(cleaned, cleanedRecord(o))
	}
	if err := writeSheet(f, SheetCleaned, cleaned); err != nil {
		return err
	}

	days := [][]interface{}{{"day", "revenue"}}
	for _, p := range s.RevenueByDay {
		days = append(days, []interface{}{p.Day.Format("2006-01-02"), p.Revenue})
	}

	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{SheetByCategory, seriesSheet("category", "revenue", s.RevenueByCategory)},
		{SheetByProduct, seriesSheet("product", "quantity", s.QuantityByProduct)},
		{SheetByDay, days},
		{SheetStatus, seriesSheet("status", "orders", s.StatusDistribution)},
	}
	for _, sheet := range sheets {
		if _, err := f.NewSheet(sheet.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet.name, err)
		}
		if err := writeSheet(f, sheet.name, sheet.rows); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func seriesSheet(keyHeader, valueHeader string, s analysis.Series) [][]interface{} {
	rows := [][]interface{}{{keyHeader, valueHeader}}
	for _, p := range s {
		rows = append(rows, []interface{}{p.Key, p.Value})
	}
	return rows
}
