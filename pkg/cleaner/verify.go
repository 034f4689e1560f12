// pkg/cleaner/verify.go
package cleaner

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gidiolindo/Portfolio/pkg/model"
)

// IntegrityIssue represents a data integrity issue in a cleaned table
type IntegrityIssue struct {
	IssueType    string
	Description  string
	ColumnName   string
	AffectedRows int64
}

// Verify checks the invariants every cleaned table must satisfy: no missing
// cells, numeric columns hold numbers, category matches product, no duplicate
// rows and no quantity at or above the outlier bound.
func (c *DataCleaner) Verify(t *model.Table, meta *model.TableMetadata, bound float64) []IntegrityIssue {
	issues := make([]IntegrityIssue, 0)
	issues = append(issues, checkMissing(t)...)
	issues = append(issues, checkTypes(t, meta)...)
	issues = append(issues, checkCategory(t)...)
	issues = append(issues, checkDuplicates(t)...)
	issues = append(issues, checkBound(t, bound)...)

	if len(issues) == 0 {
		c.logger.Debug("Data integrity verification successful", zap.Int("rows", t.Len()))
	} else {
		c.logger.Warn("Data integrity issues found", zap.Int("issues", len(issues)))
	}
	return issues
}

func checkMissing(t *model.Table) []IntegrityIssue {
	var issues []IntegrityIssue
	for j, column := range t.Columns {
		var n int64
		for _, row := range t.Rows {
			if row[j].IsMissing() {
				n++
			}
		}
		if n > 0 {
			issues = append(issues, IntegrityIssue{
				IssueType:    "MISSING_VALUE",
				Description:  fmt.Sprintf("Column %s has %d missing cells", column, n),
				ColumnName:   column,
				AffectedRows: n,
			})
		}
	}
	return issues
}

func checkTypes(t *model.Table, meta *model.TableMetadata) []IntegrityIssue {
	var issues []IntegrityIssue
	for _, col := range meta.Columns {
		j, err := t.ColumnIndex(col.Name)
		if err != nil {
			issues = append(issues, IntegrityIssue{
				IssueType:   "MISSING_COLUMN",
				Description: err.Error(),
				ColumnName:  col.Name,
			})
			continue
		}
		var n int64
		for _, row := range t.Rows {
			if !row[j].IsMissing() && !kindMatches(row[j].Kind(), col.DataType) {
				n++
			}
		}
		if n > 0 {
			issues = append(issues, IntegrityIssue{
				IssueType:    "TYPE_MISMATCH",
				Description:  fmt.Sprintf("Column %s has %d cells that are not %s", col.Name, n, col.DataType),
				ColumnName:   col.Name,
				AffectedRows: n,
			})
		}
	}
	return issues
}

func kindMatches(k model.Kind, typ model.ColumnType) bool {
	switch typ {
	case model.TypeInt:
		return k == model.KindInt
	case model.TypeFloat:
		return k == model.KindInt || k == model.KindFloat
	case model.TypeDate:
		return k == model.KindDate
	default:
		return k == model.KindText
	}
}

func checkCategory(t *model.Table) []IntegrityIssue {
	productIdx, err := t.ColumnIndex(model.ColProduct)
	if err != nil {
		return nil
	}
	categoryIdx, err := t.ColumnIndex(model.ColCategory)
	if err != nil {
		return nil
	}
	var n int64
	for _, row := range t.Rows {
		expected, ok := expectedCategory(row[productIdx])
		if ok && strings.TrimSpace(row[categoryIdx].String()) != expected {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return []IntegrityIssue{{
		IssueType:    "CATEGORY_MISMATCH",
		Description:  fmt.Sprintf("Found %d rows whose category does not match the product", n),
		ColumnName:   model.ColCategory,
		AffectedRows: n,
	}}
}

func checkDuplicates(t *model.Table) []IntegrityIssue {
	seen := make(map[uint64][]int, len(t.Rows))
	var n int64
	for i, row := range t.Rows {
		fp := fingerprint(row)
		dup := false
		for _, j := range seen[fp] {
			if t.Rows[j].Equal(row) {
				dup = true
				break
			}
		}
		if dup {
			n++
			continue
		}
		seen[fp] = append(seen[fp], i)
	}
	if n == 0 {
		return nil
	}
	return []IntegrityIssue{{
		IssueType:    "DUPLICATE_ROW",
		Description:  fmt.Sprintf("Found %d duplicate rows", n),
		AffectedRows: n,
	}}
}

func checkBound(t *model.Table, bound float64) []IntegrityIssue {
	idx, err := t.ColumnIndex(model.ColQuantity)
	if err != nil {
		return nil
	}
	var n int64
	for _, row := range t.Rows {
		if q, ok := row[idx].Float(); ok && q >= bound {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return []IntegrityIssue{{
		IssueType:    "OUTLIER_REMAINING",
		Description:  fmt.Sprintf("Found %d rows with quantity at or above %.4f", n, bound),
		ColumnName:   model.ColQuantity,
		AffectedRows: n,
	}}
}
