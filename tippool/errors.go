/*
errors.go - Centralized error types for the tip pool engine

PURPOSE:
  All error types in one place. Store adapters and the HTTP layer classify
  errors through the helpers at the bottom instead of matching strings.

ERROR CATEGORIES:
  1. Input contract violations - malformed sequences, negative amounts
  2. Conflict errors - optimistic version mismatches on save
  3. Store errors - timeouts and range-query failures (retryable)

PROPAGATION POLICY:
  Contract violations fail fast and identify the offending field. Store
  failures propagate wrapped with tenant/week/operation context. Nothing
  swallows a store error and returns a default for financial data.

SEE ALSO:
  - calculator.go: Raises contract violations
  - store.go: Interface contracts that raise conflict/store errors
*/
package tippool

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNegativeAmount is returned when a tip entry or hour count is
	// negative. Never clamped, always rejected.
	ErrNegativeAmount = errors.New("negative amount")

	// ErrBadEntryCount is returned when a per-day sequence does not have
	// exactly seven entries.
	ErrBadEntryCount = errors.New("entry sequence must have exactly 7 values")

	// ErrBadFeeRate is returned when a fee rate falls outside [0, 1).
	ErrBadFeeRate = errors.New("fee rate must be in [0, 1)")

	// ErrNotMonday is returned when a week key does not land on a Monday.
	ErrNotMonday = errors.New("week key must be a Monday")

	// ErrVersionConflict is returned when a save carries a stale version
	// stamp. The caller resolves by reloading and retrying.
	ErrVersionConflict = errors.New("version conflict")

	// ErrEmployeeNotFound is returned when a referenced employee does not
	// exist in the tenant's directory.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrEmployeeRequired is returned when individual aggregation is
	// requested without an employee filter.
	ErrEmployeeRequired = errors.New("individual mode requires an employee id")

	// ErrInvalidRange is returned when a range's end precedes its start.
	ErrInvalidRange = errors.New("invalid range: end before start")

	// ErrStoreTimeout is returned when a range query exceeds its deadline.
	// The whole aggregation is abandoned; no partial report is built.
	ErrStoreTimeout = errors.New("store query timed out")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldError identifies exactly which input violated a contract.
// Index is the weekday position for sequence fields, -1 otherwise.
type FieldError struct {
	Field string
	Index int
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s[%s]: %s (%v)", e.Field, Weekday(e.Index), e.Value, e.Err)
	}
	return fmt.Sprintf("%s: %s (%v)", e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// VersionConflictError reports a stale save for reload-and-retry handling.
type VersionConflictError struct {
	TenantID string
	Key      string // "week 2025-03-03" or "employee emp-1 week 2025-03-03"
	Expected int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("stale save for tenant %s, %s (expected version %d)",
		e.TenantID, e.Key, e.Expected)
}

func (e *VersionConflictError) Unwrap() error { return ErrVersionConflict }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the operation might succeed if reissued.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreTimeout)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNegativeAmount) ||
		errors.Is(err, ErrBadEntryCount) ||
		errors.Is(err, ErrBadFeeRate) ||
		errors.Is(err, ErrNotMonday) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrEmployeeRequired)
}

// IsConflict returns true for optimistic-locking failures.
func IsConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound)
}
