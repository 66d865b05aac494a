/*
errors.go - Centralized error types for the budget engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers should match with errors.Is / errors.As.

ERROR CATEGORIES:
  1. Input errors - Malformed items (empty name, negative amount)
  2. Identity errors - Duplicate or unknown item ids
  3. Invariant errors - Internal consistency failures (bugs)

USAGE:
  if errors.Is(err, budget.ErrDuplicateID) {
      // Insert retried with an id already in the ledger
  }

SEE ALSO:
  - store.go: Uses identity errors
  - ledger.go: Uses input and invariant errors
*/
package budget

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidItem is returned when an item fails validation
	// (empty name or negative amount).
	ErrInvalidItem = errors.New("invalid budget item")

	// ErrDuplicateID is returned when inserting an item whose id is
	// already present in the live item set.
	ErrDuplicateID = errors.New("duplicate item id")

	// ErrNotFound is returned when removing or replacing an unknown id.
	ErrNotFound = errors.New("item not found")

	// ErrInvariantViolation indicates the maintained summary diverged from
	// the item set. This is a bug, never caller error; the operation is
	// aborted rather than silently producing an inconsistent summary.
	ErrInvariantViolation = errors.New("summary invariant violation")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidItemError provides details about a validation failure.
type InvalidItemError struct {
	Field  string
	Reason string
}

func (e *InvalidItemError) Error() string {
	return fmt.Sprintf("invalid budget item: %s %s", e.Field, e.Reason)
}

func (e *InvalidItemError) Unwrap() error { return ErrInvalidItem }

// DuplicateIDError identifies the conflicting item id.
type DuplicateIDError struct {
	ID ItemID
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate item id: %s", e.ID)
}

func (e *DuplicateIDError) Unwrap() error { return ErrDuplicateID }

// NotFoundError identifies the missing item id.
type NotFoundError struct {
	ID ItemID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("item not found: %s", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InvariantError describes which aggregate field went inconsistent.
type InvariantError struct {
	Field string
	Value decimal.Decimal
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("summary invariant violation: %s = %s", e.Field, e.Value)
}

func (e *InvariantError) Unwrap() error { return ErrInvariantViolation }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidItem) ||
		errors.Is(err, ErrDuplicateID)
}

// IsNotFound returns true if the error indicates a missing item or ledger.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
