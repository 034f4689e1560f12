// pkg/cleaner/errors.go
package cleaner

import (
	"errors"
	"fmt"

	"github.com/gidiolindo/Portfolio/pkg/converter"
	"github.com/gidiolindo/Portfolio/pkg/model"
)

// ErrIntegrity is returned when the cleaned table breaks one of the pipeline invariants
var ErrIntegrity = errors.New("cleaned dataset failed integrity verification")

// ErrorCategory defines categories of problems met while cleaning
type ErrorCategory int

const (
	ErrorCategoryNone ErrorCategory = iota
	// ErrorCategoryUnparseable marks a cell that could not be read as its
	// nominal type. Not fatal: the cell becomes missing.
	ErrorCategoryUnparseable
	// ErrorCategoryUnresolvableMissing marks a missing cell in a column with
	// no imputation strategy. Not fatal: the row is dropped.
	ErrorCategoryUnresolvableMissing
	// ErrorCategoryStructural marks a missing column or an empty dataset.
	// Fatal: the run stops without partial results.
	ErrorCategoryStructural
	// ErrorCategoryIntegrity marks an invariant broken after cleaning
	ErrorCategoryIntegrity
	ErrorCategoryUnknown
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryUnparseable:
		return "Unparseable"
	case ErrorCategoryUnresolvableMissing:
		return "UnresolvableMissing"
	case ErrorCategoryStructural:
		return "Structural"
	case ErrorCategoryIntegrity:
		return "Integrity"
	case ErrorCategoryUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// Fatal reports whether errors of this category stop the run
func (ec ErrorCategory) Fatal() bool {
	return ec >= ErrorCategoryStructural
}

// CategorizeError determines the category of an error
func CategorizeError(err error) ErrorCategory {
	switch {
	case err == nil:
		return ErrorCategoryNone
	case errors.Is(err, converter.ErrUnparseable):
		return ErrorCategoryUnparseable
	case errors.Is(err, model.ErrMissingColumn), errors.Is(err, model.ErrEmptyDataset):
		return ErrorCategoryStructural
	case errors.Is(err, ErrIntegrity):
		return ErrorCategoryIntegrity
	default:
		return ErrorCategoryUnknown
	}
}

// CategoryForOperation maps an audit operation to the error category that caused it
func CategoryForOperation(op model.CleaningOperation) ErrorCategory {
	switch op.Operation {
	case model.OpCoercedToMissing:
		return ErrorCategoryUnparseable
	case model.OpDroppedMissing:
		return ErrorCategoryUnresolvableMissing
	default:
		return ErrorCategoryNone
	}
}
