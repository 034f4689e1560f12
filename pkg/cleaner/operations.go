// pkg/cleaner/operations.go
package cleaner

import (
	"fmt"
	"time"

	"github.com/gidiolindo/Portfolio/pkg/model"
)

// Stage names used in audit records and reports
const (
	StageNormalize   = "normalize"
	StageImpute      = "impute"
	StageDeduplicate = "deduplicate"
	StageOutliers    = "outliers"
)

// auditor builds cleaning operations for one stage over one input table
type auditor struct {
	stage string
	idCol int
	now   time.Time
	ops   []model.CleaningOperation
}

func newAuditor(stage string, t *model.Table) *auditor {
	idCol, err := t.ColumnIndex(model.ColOrderID)
	if err != nil {
		idCol = -1
	}
	return &auditor{stage: stage, idCol: idCol, now: time.Now()}
}

// rowIdentifier identifies a row by its position in the stage input and its
// order ID, since order IDs are not unique
func (a *auditor) rowIdentifier(i int, row model.Row) string {
	if a.idCol < 0 || row[a.idCol].IsMissing() {
		return fmt.Sprintf("#%d", i)
	}
	return fmt.Sprintf("#%d/%s", i, row[a.idCol].String())
}

// cellChanged records a value correction on a single cell
func (a *auditor) cellChanged(i int, row model.Row, column string, from, to model.Value, operation, reason string) {
	a.ops = append(a.ops, model.CleaningOperation{
		Stage:         a.stage,
		ColumnName:    column,
		OriginalValue: from.Interface(),
		NewValue:      to.String(),
		RowIdentifier: a.rowIdentifier(i, row),
		Operation:     operation,
		Reason:        reason,
		CleanedAt:     a.now,
	})
}

// rowDropped records the removal of a whole row
func (a *auditor) rowDropped(i int, row model.Row, column string, operation, reason string) {
	var original interface{}
	if column == "" {
		original = rowSummary(row)
	}
	a.ops = append(a.ops, model.CleaningOperation{
		Stage:         a.stage,
		ColumnName:    column,
		OriginalValue: original,
		RowIdentifier: a.rowIdentifier(i, row),
		Operation:     operation,
		Reason:        reason,
		CleanedAt:     a.now,
	})
}

// rowSummary renders a row as pipe-separated cells for audit trails
func rowSummary(row model.Row) string {
	s := ""
	for i, v := range row {
		if i > 0 {
			s += "|"
		}
		s += v.String()
	}
	return s
}

// countDrops returns the number of row-drop operations
func countDrops(ops []model.CleaningOperation) int {
	n := 0
	for _, op := range ops {
		if op.IsRowDrop() {
			n++
		}
	}
	return n
}
