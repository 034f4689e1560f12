// pkg/model/cleaning.go
package model

import (
	"time"
)

// Cleaning operation kinds
const (
	OpTypeCoercion      = "type_coercion"
	OpCoercedToMissing  = "coerced_to_missing"
	OpCategoryRederived = "category_rederived"
	OpImputedMedian     = "imputed_median"
	OpImputedMode       = "imputed_mode"
	OpDroppedMissing    = "row_dropped_missing"
	OpDroppedDuplicate  = "row_dropped_duplicate"
	OpDroppedOutlier    = "row_dropped_outlier"
)

// CleaningOperation represents a single data cleaning operation
type CleaningOperation struct {
	RunID         string      // Pipeline run that performed the operation
	Stage         string      // Stage name (e.g., "normalize")
	ColumnName    string      // Column that was cleaned (empty for whole-row drops)
	OriginalValue interface{} // Original value (may be nil)
	NewValue      string      // New value after cleaning ("" when the row was dropped)
	RowIdentifier string      // Position of the row in the stage input plus its order ID
	Operation     string      // Type of cleaning performed (e.g., "imputed_median")
	Reason        string      // Reason for cleaning (e.g., "unparseable_numeric")
	CleanedAt     time.Time   // When the cleaning occurred
}

// IsRowDrop reports whether the operation removed a whole row
func (op CleaningOperation) IsRowDrop() bool {
	switch op.Operation {
	case OpDroppedMissing, OpDroppedDuplicate, OpDroppedOutlier:
		return true
	default:
		return false
	}
}
