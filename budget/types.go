/*
Package budget provides the core budget ledger aggregation engine.

PURPOSE:
  This package maintains a running financial summary over a mutable
  collection of income/expense line items for a single event budget.
  Totals, remaining balance, the dominant spending category, and
  due-payment counts stay consistent as items are added or removed,
  without re-scanning the whole collection on every change.

KEY CONCEPTS IN THIS FILE (types.go):
  - Item: A single financial line (expense or income)
  - Summary: The maintained aggregate (one per ledger)
  - Kind/Status: Closed enumerations for item classification
  - UpcomingWindow: The 7-day attention window for pending payments

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Immutability: Items never change in place; edit = remove + insert
  3. Asymmetric maintenance: cheap incremental rule on insert, full
     category rescan only when removal demotes the current leader

USAGE:
  item := budget.Item{
      Name:     "Main Hall Rental",
      Category: "Venue",
      Amount:   decimal.NewFromInt(400),
      Kind:     budget.KindExpense,
      Status:   budget.StatusPending,
  }

SEE ALSO:
  - summary.go: Aggregator maintaining the Summary
  - ledger.go: Ledger facade pairing store mutations with updates
  - store.go: Item persistence interface
*/
package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ItemID string

// NewItemID generates a unique item identifier.
// Callers may also supply their own ids; uniqueness is enforced at insert.
func NewItemID() ItemID {
	return ItemID(uuid.NewString())
}

// =============================================================================
// KIND / STATUS - Closed classifications
// =============================================================================

// Kind distinguishes money going out from money coming in.
// Immutable after creation: there is no convert-expense-to-income operation.
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

func (k Kind) Valid() bool { return k == KindExpense || k == KindIncome }

// Status is set explicitly by the caller. The engine never derives or
// transitions it automatically: a pending item whose due date has passed
// stays pending until some external actor flips it to overdue.
type Status string

const (
	StatusPaid    Status = "paid"
	StatusPending Status = "pending"
	StatusOverdue Status = "overdue"
)

func (s Status) Valid() bool {
	return s == StatusPaid || s == StatusPending || s == StatusOverdue
}

// =============================================================================
// ITEM - One financial line
// =============================================================================

type Item struct {
	ID       ItemID
	Name     string
	Category string // free-text grouping key, not a closed enumeration
	Amount   decimal.Decimal
	Kind     Kind
	Status   Status

	// DueDate is optional; an item without one never counts as upcoming.
	DueDate *time.Time

	// Descriptive metadata, no computational role.
	Vendor        string
	PaymentMethod string
	Notes         string

	// CreatedAt is used only for chronological queries (monthly buckets),
	// never for summary correctness.
	CreatedAt time.Time
}

// UpcomingWindow is the attention window for pending payments.
const UpcomingWindow = 7 * 24 * time.Hour

// CountsAsUpcoming reports whether the item contributes to the upcoming
// payments counter at the given instant. The window is open on both sides:
// a due date exactly at now or exactly at now+7d does not count.
func (it Item) CountsAsUpcoming(now time.Time) bool {
	if it.Status != StatusPending || it.DueDate == nil {
		return false
	}
	return it.DueDate.After(now) && it.DueDate.Before(now.Add(UpcomingWindow))
}

// CountsAsOverdue is status-driven only; due dates are not consulted.
func (it Item) CountsAsOverdue() bool {
	return it.Status == StatusOverdue
}

// =============================================================================
// SUMMARY - Maintained aggregate, one per ledger
// =============================================================================

// Summary is continuously mutated in place by the Aggregator as items
// change. Callers never construct one directly; they read it via
// Ledger.Summary. At every observable point it equals a full recompute
// over the live item set.
type Summary struct {
	TotalBudget     decimal.Decimal // externally configured ceiling, not derived
	TotalExpenses   decimal.Decimal
	TotalIncome     decimal.Decimal
	RemainingBudget decimal.Decimal // TotalBudget - TotalExpenses + TotalIncome

	LargestExpenseCategory string
	LargestExpenseAmount   decimal.Decimal

	UpcomingPayments int
	OverduePayments  int
}
