package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func saveLedger(t *testing.T, store *sqlite.Store, id string, total int64) {
	t.Helper()
	err := store.SaveLedger(context.Background(), sqlite.LedgerRecord{
		ID:          id,
		Name:        "Test Event",
		TotalBudget: decimal.NewFromInt(total),
	})
	require.NoError(t, err)
}

func testItem(id, category string, amount string) budget.Item {
	amt, _ := decimal.NewFromString(amount)
	return budget.Item{
		ID:        budget.ItemID(id),
		Name:      category + " line",
		Category:  category,
		Amount:    amt,
		Kind:      budget.KindExpense,
		Status:    budget.StatusPending,
		CreatedAt: time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC),
	}
}

// =============================================================================
// LEDGER CATALOG TESTS
// =============================================================================

func TestLedgerCatalog_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	saveLedger(t, store, "led-1", 15000)

	rec, err := store.GetLedger(ctx, "led-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "led-1", rec.ID)
	assert.True(t, rec.TotalBudget.Equal(decimal.NewFromInt(15000)))

	missing, err := store.GetLedger(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestLedgerCatalog_DuplicateID_Rejected(t *testing.T) {
	store := newTestStore(t)
	saveLedger(t, store, "led-1", 1000)

	err := store.SaveLedger(context.Background(), sqlite.LedgerRecord{
		ID:          "led-1",
		Name:        "Other",
		TotalBudget: decimal.NewFromInt(2000),
	})
	assert.ErrorIs(t, err, budget.ErrDuplicateID)
}

func TestUpdateTotalBudget(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	saveLedger(t, store, "led-1", 1000)

	require.NoError(t, store.UpdateTotalBudget(ctx, "led-1", decimal.NewFromInt(2500)))

	rec, err := store.GetLedger(ctx, "led-1")
	require.NoError(t, err)
	assert.True(t, rec.TotalBudget.Equal(decimal.NewFromInt(2500)))

	err = store.UpdateTotalBudget(ctx, "ghost", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, budget.ErrNotFound)
}

// =============================================================================
// ITEM STORE TESTS
// =============================================================================

func TestItemStore_InsertionOrderSurvivesRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	saveLedger(t, store, "led-1", 1000)

	items := store.Items("led-1")
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, items.Insert(ctx, testItem(id, "Venue", "10.50")))
	}

	got, err := items.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, budget.ItemID("c"), got[0].ID)
	assert.Equal(t, budget.ItemID("a"), got[1].ID)
	assert.Equal(t, budget.ItemID("b"), got[2].ID)
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("10.50")))
}

func TestItemStore_FieldsSurviveRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	saveLedger(t, store, "led-1", 1000)

	due := time.Date(2025, time.June, 5, 9, 30, 0, 0, time.UTC)
	item := testItem("full", "Catering", "1234.56")
	item.DueDate = &due
	item.Vendor = "Catering Co."
	item.PaymentMethod = "Bank Transfer"
	item.Notes = "50% deposit"

	items := store.Items("led-1")
	require.NoError(t, items.Insert(ctx, item))

	got, ok, err := items.Get(ctx, "full")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, item.Name, got.Name)
	assert.Equal(t, item.Category, got.Category)
	assert.True(t, got.Amount.Equal(item.Amount))
	assert.Equal(t, item.Kind, got.Kind)
	assert.Equal(t, item.Status, got.Status)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(due))
	assert.Equal(t, item.Vendor, got.Vendor)
	assert.Equal(t, item.PaymentMethod, got.PaymentMethod)
	assert.Equal(t, item.Notes, got.Notes)
	assert.True(t, got.CreatedAt.Equal(item.CreatedAt))
}

func TestItemStore_DuplicateID_Rejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	saveLedger(t, store, "led-1", 1000)

	items := store.Items("led-1")
	require.NoError(t, items.Insert(ctx, testItem("x", "Venue", "10")))

	err := items.Insert(ctx, testItem("x", "Catering", "20"))
	assert.ErrorIs(t, err, budget.ErrDuplicateID)
}

func TestItemStore_SameIDInDifferentLedgers_Allowed(t *testing.T) {
	// Uniqueness is scoped per ledger.
	store := newTestStore(t)
	ctx := context.Background()
	saveLedger(t, store, "led-1", 1000)
	saveLedger(t, store, "led-2", 1000)

	require.NoError(t, store.Items("led-1").Insert(ctx, testItem("x", "Venue", "10")))
	require.NoError(t, store.Items("led-2").Insert(ctx, testItem("x", "Venue", "10")))
}

func TestItemStore_RemoveReturnsItem(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	saveLedger(t, store, "led-1", 1000)

	items := store.Items("led-1")
	require.NoError(t, items.Insert(ctx, testItem("x", "Venue", "10")))

	removed, err := items.Remove(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, budget.ItemID("x"), removed.ID)

	_, err = items.Remove(ctx, "x")
	assert.ErrorIs(t, err, budget.ErrNotFound)

	got, err := items.List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

// =============================================================================
// ENGINE OVER SQLITE - Hydration keeps the summary consistent
// =============================================================================

func TestLedgerHydration_SummaryRederivedFromRows(t *testing.T) {
	// GIVEN: Items written through one engine instance
	store := newTestStore(t)
	ctx := context.Background()
	saveLedger(t, store, "led-1", 5000)

	ledger, err := budget.NewLedger(ctx, store.Items("led-1"), decimal.NewFromInt(5000))
	require.NoError(t, err)

	_, err = ledger.Insert(ctx, testItem("a", "Venue", "2000"))
	require.NoError(t, err)
	_, err = ledger.Insert(ctx, testItem("b", "Catering", "700"))
	require.NoError(t, err)
	first := ledger.Summary()

	// WHEN: A fresh engine hydrates over the same rows
	rehydrated, err := budget.NewLedger(ctx, store.Items("led-1"), decimal.NewFromInt(5000))
	require.NoError(t, err)

	// THEN: The re-derived summary matches the maintained one
	second := rehydrated.Summary()
	assert.True(t, second.TotalExpenses.Equal(first.TotalExpenses))
	assert.True(t, second.RemainingBudget.Equal(first.RemainingBudget))
	assert.Equal(t, first.LargestExpenseCategory, second.LargestExpenseCategory)
	assert.True(t, second.LargestExpenseAmount.Equal(first.LargestExpenseAmount))
}
