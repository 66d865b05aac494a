package budget_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/budget-engine/budget"
)

// =============================================================================
// FILTER TESTS
// =============================================================================

func seedQueryLedger(t *testing.T) *budget.Ledger {
	t.Helper()
	ledger := newTestLedger(t, 10000)
	ctx := context.Background()

	venue := expense("e1", "Venue", 2000)
	venue.Name = "Main Hall Rental"
	venue.Vendor = "Venue Provider"

	catering := expense("e2", "Catering", 1500)
	catering.Name = "Dinner Service"
	catering.Vendor = "Catering Co."
	catering.Status = budget.StatusPending

	marketing := expense("e3", "Marketing", 800)
	marketing.Name = "Social Campaign"
	marketing.Status = budget.StatusOverdue

	sponsor := income("i1", "Sponsorship", 3000)
	sponsor.Name = "Gold Sponsor"

	tickets := income("i2", "Ticket Sales", 1200)
	tickets.Name = "Early Bird Batch"
	tickets.Status = budget.StatusPending

	for _, it := range []budget.Item{venue, catering, marketing, sponsor, tickets} {
		_, err := ledger.Insert(ctx, it)
		require.NoError(t, err)
	}
	return ledger
}

func ids(items []budget.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = string(it.ID)
	}
	return out
}

func TestFilter_EmptyTextMatchesAll(t *testing.T) {
	ledger := seedQueryLedger(t)

	got, err := ledger.Query(context.Background(), budget.FilterSpec{})
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2", "e3", "i1", "i2"}, ids(got))
}

func TestFilter_TextIsCaseInsensitive(t *testing.T) {
	ledger := seedQueryLedger(t)
	ctx := context.Background()

	// Matches name
	got, err := ledger.Query(ctx, budget.FilterSpec{Text: "RENTAL"})
	require.NoError(t, err)
	assert.Equal(t, []string{"e1"}, ids(got))

	// Matches category
	got, err = ledger.Query(ctx, budget.FilterSpec{Text: "sponsor"})
	require.NoError(t, err)
	assert.Equal(t, []string{"i1"}, ids(got))

	// Matches vendor
	got, err = ledger.Query(ctx, budget.FilterSpec{Text: "catering co"})
	require.NoError(t, err)
	assert.Equal(t, []string{"e2"}, ids(got))
}

func TestFilter_ConditionsAreANDed(t *testing.T) {
	ledger := seedQueryLedger(t)
	ctx := context.Background()

	kind := budget.KindIncome
	status := budget.StatusPending

	got, err := ledger.Query(ctx, budget.FilterSpec{Kind: &kind, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, []string{"i2"}, ids(got))

	// Text narrows further: no pending income mentions "gold"
	got, err = ledger.Query(ctx, budget.FilterSpec{Text: "gold", Kind: &kind, Status: &status})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFilter_Idempotent(t *testing.T) {
	// Identical arguments on an unchanged ledger return equal results.
	ledger := seedQueryLedger(t)
	ctx := context.Background()

	kind := budget.KindExpense
	spec := budget.FilterSpec{Text: "a", Kind: &kind}

	first, err := ledger.Query(ctx, spec)
	require.NoError(t, err)
	second, err := ledger.Query(ctx, spec)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// =============================================================================
// PARTITION TESTS
// =============================================================================

func TestPartitionByKind_DisjointAndOrderPreserving(t *testing.T) {
	ledger := seedQueryLedger(t)

	items, err := ledger.Items(context.Background())
	require.NoError(t, err)

	p := budget.PartitionByKind(items)
	assert.Equal(t, []string{"e1", "e2", "e3"}, ids(p.Expenses))
	assert.Equal(t, []string{"i1", "i2"}, ids(p.Income))
	assert.Equal(t, len(items), len(p.Expenses)+len(p.Income))
}

// =============================================================================
// REPORTING TESTS
// =============================================================================

func TestCategoryTotals_AgreesWithMaintainedLeader(t *testing.T) {
	ledger := seedQueryLedger(t)
	ctx := context.Background()

	totals, err := ledger.CategoryTotals(ctx, budget.KindExpense)
	require.NoError(t, err)

	s := ledger.Summary()
	leaderTotal, ok := totals[s.LargestExpenseCategory]
	require.True(t, ok, "maintained leader must appear in read-time totals")
	assert.True(t, leaderTotal.Equal(s.LargestExpenseAmount))

	// And it is the maximum of the map
	for category, total := range totals {
		assert.False(t, total.GreaterThan(s.LargestExpenseAmount),
			"category %s exceeds maintained leader", category)
	}
}

func TestCategoryTotals_SumsPerCategoryAndKind(t *testing.T) {
	ledger := newTestLedger(t, 1000)
	ctx := context.Background()

	_, err := ledger.Insert(ctx, expense("a", "Venue", 100))
	require.NoError(t, err)
	_, err = ledger.Insert(ctx, expense("b", "Venue", 250))
	require.NoError(t, err)
	_, err = ledger.Insert(ctx, income("c", "Venue", 999)) // same category name, other kind
	require.NoError(t, err)

	totals, err := ledger.CategoryTotals(ctx, budget.KindExpense)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.True(t, totals["Venue"].Equal(decimal.NewFromInt(350)))

	incomeTotals, err := ledger.CategoryTotals(ctx, budget.KindIncome)
	require.NoError(t, err)
	assert.True(t, incomeTotals["Venue"].Equal(decimal.NewFromInt(999)))
}

func TestMonthlyExpenseTotals_BucketsByCreationMonth(t *testing.T) {
	jan := expense("j", "Venue", 100)
	jan.CreatedAt = time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)

	alsoJan := expense("j2", "Catering", 50)
	alsoJan.CreatedAt = time.Date(2025, time.January, 28, 0, 0, 0, 0, time.UTC)

	march := expense("m", "Venue", 75)
	march.CreatedAt = time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC)

	incomeItem := income("i", "Sponsorship", 400)
	incomeItem.CreatedAt = jan.CreatedAt

	totals := budget.MonthlyExpenseTotals([]budget.Item{jan, alsoJan, march, incomeItem})

	require.Len(t, totals, 2)
	assert.True(t, totals["2025-01"].Equal(decimal.NewFromInt(150)))
	assert.True(t, totals["2025-03"].Equal(decimal.NewFromInt(75)))
}
