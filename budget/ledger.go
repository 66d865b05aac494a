/*
ledger.go - Ledger facade pairing store mutations with summary updates

PURPOSE:
  The Ledger is the single entry point for one event budget. It owns a
  Store (the authoritative item set) and an Aggregator (the maintained
  Summary), and guarantees that every store mutation and its aggregator
  update form one logical, non-interruptible step.

CONCURRENCY:
  Designed for single-writer, synchronous use. A mutex serializes
  mutation pairs (insert+aggregate, remove+aggregate); partial
  interleavings would let two removals recompute the leader against a
  moving item set and violate the summary-consistency invariant. Read
  queries take the lock briefly to snapshot and may then run concurrently.
  No operation suspends or performs I/O beyond the Store; all work is
  bounded by the current item count.

VALIDATION:
  The Ledger validates drafts before they reach the Store: non-empty
  name, non-negative amount, known kind and status. The Store only
  enforces id uniqueness.

SEE ALSO:
  - summary.go: Incremental update rules
  - query.go: Read-only filter/partition surface
*/
package budget

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEDGER - Store + Aggregator under one lock
// =============================================================================

type Ledger struct {
	mu    sync.Mutex
	store Store
	agg   *Aggregator
	now   func() time.Time
}

// Option configures a Ledger at construction.
type Option func(*Ledger)

// WithClock injects the time source used for the upcoming-payment window.
// Tests use this to pin "now".
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// NewLedger creates a ledger over the given store, seeding the summary
// from totalBudget and the store's current contents. Items already in
// the store are trusted (they were validated when inserted).
func NewLedger(ctx context.Context, store Store, totalBudget decimal.Decimal, opts ...Option) (*Ledger, error) {
	l := &Ledger{store: store, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}

	items, err := store.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	l.agg = NewAggregator(totalBudget, items, l.now)
	return l, nil
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Insert validates the item, appends it to the store, and applies the
// incremental summary rule. An empty id is assigned a fresh one; a zero
// CreatedAt is stamped with the current time.
func (l *Ledger) Insert(ctx context.Context, item Item) (Item, error) {
	if err := validate(item); err != nil {
		return Item{}, err
	}
	if item.ID == "" {
		item.ID = NewItemID()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = l.now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Insert(ctx, item); err != nil {
		return Item{}, err
	}
	items, err := l.store.List(ctx, nil)
	if err != nil {
		return Item{}, err
	}
	l.agg.ApplyInsert(item, items)
	return item, nil
}

// Remove deletes the item and reverses its summary contribution. The
// leader is re-derived only when the removed item's category held it.
func (l *Ledger) Remove(ctx context.Context, id ItemID) (Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed, err := l.store.Remove(ctx, id)
	if err != nil {
		return Item{}, err
	}
	items, err := l.store.List(ctx, nil)
	if err != nil {
		return Item{}, err
	}
	if err := l.agg.ApplyRemove(removed, items); err != nil {
		// Aggregation diverged from the store; rebuild rather than serve
		// an inconsistent summary.
		l.agg.Recompute(items)
		return Item{}, err
	}
	return removed, nil
}

// Replace is the edit operation: remove + insert with the same id, atomic
// under the ledger lock. The replacement keeps the original id and
// creation time.
func (l *Ledger) Replace(ctx context.Context, item Item) (Item, error) {
	if err := validate(item); err != nil {
		return Item{}, err
	}
	if item.ID == "" {
		return Item{}, &NotFoundError{ID: item.ID}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	removed, err := l.store.Remove(ctx, item.ID)
	if err != nil {
		return Item{}, err
	}
	afterRemove, err := l.store.List(ctx, nil)
	if err != nil {
		return Item{}, err
	}
	if err := l.agg.ApplyRemove(removed, afterRemove); err != nil {
		l.agg.Recompute(afterRemove)
		return Item{}, err
	}

	item.CreatedAt = removed.CreatedAt
	if err := l.store.Insert(ctx, item); err != nil {
		return Item{}, err
	}
	afterInsert, err := l.store.List(ctx, nil)
	if err != nil {
		return Item{}, err
	}
	l.agg.ApplyInsert(item, afterInsert)
	return item, nil
}

// SetTotalBudget reconfigures the ceiling. Explicit call only; item
// mutations never touch it.
func (l *Ledger) SetTotalBudget(v decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.agg.SetTotalBudget(v)
}

// =============================================================================
// READS
// =============================================================================

// Summary returns a copy of the maintained aggregate.
func (l *Ledger) Summary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.agg.Summary()
}

// Items returns a snapshot of all items in insertion order.
func (l *Ledger) Items(ctx context.Context) ([]Item, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.List(ctx, nil)
}

// Get returns a single item by id.
func (l *Ledger) Get(ctx context.Context, id ItemID) (Item, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Get(ctx, id)
}

// Query returns the snapshot filtered by spec. See query.go.
func (l *Ledger) Query(ctx context.Context, spec FilterSpec) ([]Item, error) {
	items, err := l.Items(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(items, spec), nil
}

// CategoryTotals computes per-category sums fresh at read time. For
// KindExpense the maximum entry always agrees with the maintained leader.
func (l *Ledger) CategoryTotals(ctx context.Context, kind Kind) (map[string]decimal.Decimal, error) {
	items, err := l.Items(ctx)
	if err != nil {
		return nil, err
	}
	return CategoryTotals(items, kind), nil
}

// =============================================================================
// VALIDATION
// =============================================================================

func validate(item Item) error {
	if strings.TrimSpace(item.Name) == "" {
		return &InvalidItemError{Field: "name", Reason: "must not be empty"}
	}
	if item.Amount.IsNegative() {
		return &InvalidItemError{Field: "amount", Reason: "must not be negative"}
	}
	if !item.Kind.Valid() {
		return &InvalidItemError{Field: "kind", Reason: "must be expense or income"}
	}
	if !item.Status.Valid() {
		return &InvalidItemError{Field: "status", Reason: "must be paid, pending or overdue"}
	}
	return nil
}
