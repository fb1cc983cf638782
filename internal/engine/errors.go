package engine

import (
	"errors"
	"fmt"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors for unit normalization.
var (
	// ErrInvalidUnit indicates an unrecognized emission unit.
	ErrInvalidUnit = constError("invalid emission unit")

	// ErrNegativeValue indicates a negative emission quantity.
	ErrNegativeValue = constError("negative emission value")

	// ErrCalculationOverflow indicates a value too large to convert safely.
	ErrCalculationOverflow = constError("calculation overflow")
)

// Validation constraint identifiers. A ValidationError names exactly one
// of these so callers and tests can match on the violated constraint.
const (
	ConstraintEmptyTargets       = "target_projects_empty"
	ConstraintUnknownProject     = "unknown_project"
	ConstraintUnknownMethod      = "unknown_method"
	ConstraintNonPositiveAmount  = "non_positive_amount"
	ConstraintPercentageCoverage = "custom_percentage_coverage"
	ConstraintPercentageSum      = "custom_percentage_sum"
	ConstraintDuplicateProject   = "duplicate_project"
	ConstraintUnknownStandard    = "unknown_report_standard"
)

// ValidationError reports a violated input constraint. Validation failures
// surface synchronously and are never silently corrected, except where a
// fallback is part of the allocation contract (zero-weight budget and
// duration rules fall back to equal).
type ValidationError struct {
	// Constraint is one of the Constraint* identifiers.
	Constraint string

	// Message describes the violation, naming the offending value.
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Constraint, e.Message)
}

// NewValidationError builds a ValidationError with a formatted message.
// Collaborating packages (report assembly) use it to stay inside the same
// error taxonomy.
func NewValidationError(constraint, format string, args ...any) *ValidationError {
	return &ValidationError{
		Constraint: constraint,
		Message:    fmt.Sprintf(format, args...),
	}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
