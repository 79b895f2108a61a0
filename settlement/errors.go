/*
errors.go - Centralized error types for the settlement engine

PURPOSE:
  All engine error types in one place. The engine distinguishes two failure
  classes and never mixes them:

  1. Configuration gaps (missing distance pair, missing institution row):
     fail-soft. The affected contribution defaults to zero, a warning is
     recorded on the settlement, and the batch continues. One bad reference
     row must not abort settlement generation for a whole instructor.

  2. Caller-contract violations (empty input, mixed instructors, mixed
     months, malformed activity union): fail-fast with a descriptive error.
     These indicate caller bugs, not data quality, and silently producing a
     meaningless settlement would be worse than failing.

USAGE:
  if errors.Is(err, settlement.ErrMixedInstructors) { ... }

SEE ALSO:
  - daily.go: Records Warning values for configuration gaps
  - monthly.go: Returns InputError for contract violations
*/
package settlement

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoSettlements is returned when the monthly aggregator receives an
	// empty input set.
	ErrNoSettlements = errors.New("no daily settlements provided")

	// ErrMixedInstructors is returned when input settlements or activities
	// belong to more than one instructor.
	ErrMixedInstructors = errors.New("settlements span multiple instructors")

	// ErrMixedMonths is returned when daily settlements span more than one
	// calendar month.
	ErrMixedMonths = errors.New("settlements span multiple months")

	// ErrMixedDates is returned when a daily computation receives activities
	// from more than one date.
	ErrMixedDates = errors.New("activities span multiple dates")

	// ErrInstructorNotFound is returned when a referenced instructor does
	// not exist in the directory.
	ErrInstructorNotFound = errors.New("instructor not found")

	// ErrInstitutionNotFound is returned when a referenced institution does
	// not exist. Inside a settlement computation this is a warning, not an
	// error; the sentinel exists for lookup call sites outside the engine.
	ErrInstitutionNotFound = errors.New("institution not found")

	// ErrInvalidActivity is returned when an Activity's discriminant does
	// not match its payload.
	ErrInvalidActivity = errors.New("invalid activity")

	// ErrInvalidSchedule is returned when a fee schedule fails validation.
	ErrInvalidSchedule = errors.New("invalid fee schedule")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InputError describes a caller-contract violation on aggregation input.
type InputError struct {
	Op     string // "ComputeDaily" or "ComputeMonthly"
	Detail string
	Err    error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Detail, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// ScheduleError describes a fee schedule validation failure.
type ScheduleError struct {
	Field  string
	Detail string
}

func (e *ScheduleError) Error() string {
	return fmt.Sprintf("fee schedule: %s: %s", e.Field, e.Detail)
}

func (e *ScheduleError) Unwrap() error { return ErrInvalidSchedule }

// =============================================================================
// WARNINGS - Fail-soft configuration gaps, recorded not raised
// =============================================================================

// WarningCode identifies a class of configuration gap.
type WarningCode string

const (
	WarnMissingDistance    WarningCode = "missing_distance"
	WarnMissingInstitution WarningCode = "missing_institution"
)

// Warning records a configuration gap encountered during computation. The
// contribution it would have covered defaults to zero; the settlement is
// still produced.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

func warnMissingDistance(a, b City) Warning {
	return Warning{
		Code:    WarnMissingDistance,
		Message: fmt.Sprintf("no distance entry for %s-%s; leg counted as 0 km", a, b),
	}
}

func warnMissingInstitution(id InstitutionID, activity ActivityID) Warning {
	return Warning{
		Code:    WarnMissingInstitution,
		Message: fmt.Sprintf("institution %s referenced by activity %s not found; activity skipped", id, activity),
	}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNoSettlements) ||
		errors.Is(err, ErrMixedInstructors) ||
		errors.Is(err, ErrMixedMonths) ||
		errors.Is(err, ErrMixedDates) ||
		errors.Is(err, ErrInvalidActivity) ||
		errors.Is(err, ErrInvalidSchedule)
}

// IsNotFound reports whether the error indicates missing reference data.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrInstructorNotFound) ||
		errors.Is(err, ErrInstitutionNotFound)
}
