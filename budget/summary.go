/*
summary.go - Summary aggregator

PURPOSE:
  Keeps the Summary correct after every store mutation, using the
  cheapest rule that remains provably correct:

  INSERT (incremental):
    Inserting an expense only grows one category's total monotonically.
    It can create a new maximum but never destroy the existing one, so a
    single comparison of that category's new total against the current
    leader is sufficient.

  REMOVE (asymmetric):
    Removing the current leader's item may promote ANY other category.
    A single prior maximum cannot be safely demoted without knowing the
    second-highest candidate, so the leader is re-derived from the full
    remaining item set - but only when the removed item's category held
    the lead. Removing from a non-leading category skips the rescan.

  Do not collapse this into always-recompute; the asymmetry is the
  engine's core performance property.

TIE-BREAK:
  When two categories share the maximum total, the lexicographically
  smaller category name wins. This is the only deterministic rule the
  incremental insert comparison can maintain without tracking per-category
  history: leadership claims on equal totals resolve by name both in the
  single-comparison insert path and in the full rescan.

INVARIANT:
  After every mutation the maintained Summary equals ComputeSummary over
  the live item set. Incremental maintenance is an optimization, not a
  relaxation of correctness.

SEE ALSO:
  - ledger.go: Calls ApplyInsert/ApplyRemove under the ledger lock
  - query.go: Read-time CategoryTotals (must agree with the leader)
*/
package budget

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AGGREGATOR - Incremental Summary maintenance
// =============================================================================

// Aggregator owns the maintained Summary for one ledger. It trusts the
// Store's validated items; it has no failing operations of its own except
// the internal invariant check on removal.
type Aggregator struct {
	summary Summary
	now     func() time.Time
}

// NewAggregator seeds the summary from a full computation over the
// initial item set.
func NewAggregator(totalBudget decimal.Decimal, items []Item, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{
		summary: ComputeSummary(totalBudget, items, now()),
		now:     now,
	}
}

// Summary returns a copy of the maintained aggregate.
func (a *Aggregator) Summary() Summary {
	return a.summary
}

// SetTotalBudget reconfigures the ceiling. Only RemainingBudget moves;
// item-derived fields are untouched.
func (a *Aggregator) SetTotalBudget(v decimal.Decimal) {
	a.summary.TotalBudget = v
	a.recomputeRemaining()
}

// ApplyInsert updates the summary for an item just appended to the store.
// itemsAfter is the item set including the new item.
func (a *Aggregator) ApplyInsert(inserted Item, itemsAfter []Item) {
	if inserted.Kind == KindExpense {
		a.summary.TotalExpenses = a.summary.TotalExpenses.Add(inserted.Amount)
	} else {
		a.summary.TotalIncome = a.summary.TotalIncome.Add(inserted.Amount)
	}
	a.recomputeRemaining()

	if inserted.Kind == KindExpense {
		// Single comparison: only this category's total changed, and it
		// only grew.
		total := categoryTotal(itemsAfter, inserted.Category)
		if leads(inserted.Category, total, a.summary.LargestExpenseCategory, a.summary.LargestExpenseAmount) {
			a.summary.LargestExpenseCategory = inserted.Category
			a.summary.LargestExpenseAmount = total
		}
	}

	if inserted.CountsAsUpcoming(a.now()) {
		a.summary.UpcomingPayments++
	}
	if inserted.CountsAsOverdue() {
		a.summary.OverduePayments++
	}
}

// ApplyRemove updates the summary for an item just removed from the store.
// itemsAfter is the item set without the removed item.
func (a *Aggregator) ApplyRemove(removed Item, itemsAfter []Item) error {
	if removed.Kind == KindExpense {
		a.summary.TotalExpenses = a.summary.TotalExpenses.Sub(removed.Amount)
	} else {
		a.summary.TotalIncome = a.summary.TotalIncome.Sub(removed.Amount)
	}
	a.recomputeRemaining()

	// A negative total means the removed item was never aggregated in,
	// i.e. the caller updated against an item not in the store.
	if a.summary.TotalExpenses.IsNegative() {
		return &InvariantError{Field: "total_expenses", Value: a.summary.TotalExpenses}
	}
	if a.summary.TotalIncome.IsNegative() {
		return &InvariantError{Field: "total_income", Value: a.summary.TotalIncome}
	}

	if removed.Kind == KindExpense && removed.Category == a.summary.LargestExpenseCategory {
		// The leader lost an item; any other category may now lead.
		a.summary.LargestExpenseCategory, a.summary.LargestExpenseAmount = largestCategory(itemsAfter)
	}

	if removed.CountsAsUpcoming(a.now()) && a.summary.UpcomingPayments > 0 {
		a.summary.UpcomingPayments--
	}
	if removed.CountsAsOverdue() && a.summary.OverduePayments > 0 {
		a.summary.OverduePayments--
	}
	return nil
}

// Recompute rebuilds the summary from scratch, keeping the configured
// budget. Used when incremental maintenance cannot be trusted (recovery).
func (a *Aggregator) Recompute(items []Item) {
	a.summary = ComputeSummary(a.summary.TotalBudget, items, a.now())
}

func (a *Aggregator) recomputeRemaining() {
	a.summary.RemainingBudget = a.summary.TotalBudget.
		Sub(a.summary.TotalExpenses).
		Add(a.summary.TotalIncome)
}

// =============================================================================
// FULL COMPUTATION - Reference implementation of the summary contract
// =============================================================================

// ComputeSummary derives a Summary from the complete item set. The
// maintained summary must equal this at every observable point.
func ComputeSummary(totalBudget decimal.Decimal, items []Item, now time.Time) Summary {
	s := Summary{
		TotalBudget:          totalBudget,
		TotalExpenses:        decimal.Zero,
		TotalIncome:          decimal.Zero,
		LargestExpenseAmount: decimal.Zero,
	}
	for _, it := range items {
		if it.Kind == KindExpense {
			s.TotalExpenses = s.TotalExpenses.Add(it.Amount)
		} else {
			s.TotalIncome = s.TotalIncome.Add(it.Amount)
		}
		if it.CountsAsUpcoming(now) {
			s.UpcomingPayments++
		}
		if it.CountsAsOverdue() {
			s.OverduePayments++
		}
	}
	s.RemainingBudget = totalBudget.Sub(s.TotalExpenses).Add(s.TotalIncome)
	s.LargestExpenseCategory, s.LargestExpenseAmount = largestCategory(items)
	return s
}

// largestCategory returns the expense category with the highest summed
// amount, ties resolving to the lexicographically smaller name. With no
// positive expense total both results are zero values.
func largestCategory(items []Item) (string, decimal.Decimal) {
	totals := make(map[string]decimal.Decimal)
	var order []string
	for _, it := range items {
		if it.Kind != KindExpense {
			continue
		}
		if _, seen := totals[it.Category]; !seen {
			order = append(order, it.Category)
		}
		totals[it.Category] = totals[it.Category].Add(it.Amount)
	}

	name := ""
	max := decimal.Zero
	for _, c := range order {
		if leads(c, totals[c], name, max) {
			name = c
			max = totals[c]
		}
	}
	return name, max
}

// leads reports whether (category, total) displaces the current leader.
// Strictly greater always wins; an exact tie wins only with a
// lexicographically smaller name. The empty leader (no expenses yet) is
// never tied into, so zero-amount categories cannot claim leadership.
func leads(category string, total decimal.Decimal, leader string, leaderTotal decimal.Decimal) bool {
	if total.GreaterThan(leaderTotal) {
		return true
	}
	return leader != "" && total.Equal(leaderTotal) && category < leader
}

// categoryTotal sums expense amounts for one category.
func categoryTotal(items []Item, category string) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		if it.Kind == KindExpense && it.Category == category {
			total = total.Add(it.Amount)
		}
	}
	return total
}
