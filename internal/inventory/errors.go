// =============================================================================
// Forest Inventory Processor - Pipeline Error Kinds
// =============================================================================
//
// Fatal input errors halt the pipeline before any row is emitted:
//   - ErrEmptyInput        : the table has zero data rows
//   - AllValuesInvalidError: every value of a required measurement column
//                            failed numeric coercion
//
// (The third fatal kind, a missing mandatory column, is raised during column
// resolution in the schema package, before the pipeline ever runs.)
//
// Row-level problems are never errors: a non-numeric or non-positive
// measurement makes that row's derived fields NaN and processing continues.
//
// =============================================================================

package inventory

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when the input table contains no data rows.
var ErrEmptyInput = errors.New("input table has no data rows")

// AllValuesInvalidError is returned when a required measurement column exists
// but not a single cell in it could be coerced to a number.
type AllValuesInvalidError struct {
	// Column is the canonical name of the offending measurement.
	Column string
}

// Error implements the error interface.
func (e *AllValuesInvalidError) Error() string {
	return fmt.Sprintf("column %q has no valid numeric values", e.Column)
}
