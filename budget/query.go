/*
query.go - Read-only filter and partition surface

PURPOSE:
  Pure read-time queries over a snapshot of the item set. Nothing here
  touches the maintained Summary; filtering twice with identical
  arguments on an unchanged ledger returns equal results.

FILTER SEMANTICS:
  - Text matches case-insensitively against name, category, or vendor.
    Empty text matches everything.
  - Kind and Status filters intersect with the text match (all ANDed).

SEE ALSO:
  - ledger.go: Query/CategoryTotals take the snapshot
  - summary.go: largestCategory must agree with CategoryTotals(KindExpense)
*/
package budget

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// FILTER
// =============================================================================

// FilterSpec narrows an item snapshot. Nil Kind/Status mean "any".
type FilterSpec struct {
	Text   string
	Kind   *Kind
	Status *Status
}

// Filter returns the items matching spec, preserving input order.
func Filter(items []Item, spec FilterSpec) []Item {
	text := strings.ToLower(spec.Text)
	result := make([]Item, 0, len(items))
	for _, it := range items {
		if !matchesText(it, text) {
			continue
		}
		if spec.Kind != nil && it.Kind != *spec.Kind {
			continue
		}
		if spec.Status != nil && it.Status != *spec.Status {
			continue
		}
		result = append(result, it)
	}
	return result
}

func matchesText(it Item, lowered string) bool {
	if lowered == "" {
		return true
	}
	return strings.Contains(strings.ToLower(it.Name), lowered) ||
		strings.Contains(strings.ToLower(it.Category), lowered) ||
		strings.Contains(strings.ToLower(it.Vendor), lowered)
}

// =============================================================================
// PARTITION
// =============================================================================

// Partition holds the two disjoint kind subsets of a filtered set.
type Partition struct {
	Expenses []Item
	Income   []Item
}

// PartitionByKind splits items into expenses and income, preserving order.
func PartitionByKind(items []Item) Partition {
	var p Partition
	for _, it := range items {
		if it.Kind == KindExpense {
			p.Expenses = append(p.Expenses, it)
		} else {
			p.Income = append(p.Income, it)
		}
	}
	return p
}

// =============================================================================
// REPORTING TOTALS
// =============================================================================

// CategoryTotals maps category to summed amount for items of the given
// kind. Always computed fresh; independent of the maintained leader, and
// for KindExpense its maximum entry agrees with it.
func CategoryTotals(items []Item, kind Kind) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, it := range items {
		if it.Kind != kind {
			continue
		}
		totals[it.Category] = totals[it.Category].Add(it.Amount)
	}
	return totals
}

// MonthlyExpenseTotals buckets expense amounts by the month of CreatedAt,
// keyed "2006-01". Backs the spending-trend report.
func MonthlyExpenseTotals(items []Item) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, it := range items {
		if it.Kind != KindExpense {
			continue
		}
		key := it.CreatedAt.Format("2006-01")
		totals[key] = totals[key].Add(it.Amount)
	}
	return totals
}
