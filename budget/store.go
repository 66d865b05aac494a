/*
store.go - Persistence interface for budget items

PURPOSE:
  Defines the interface between the ledger logic and storage. The Store
  owns the authoritative item set for one ledger. Different
  implementations can use SQLite or in-memory storage.

CONTRACT:
  - Insert rejects an id already present (DuplicateIDError).
  - Remove rejects an unknown id (NotFoundError) and returns the removed
    item so the aggregator can reverse its contribution.
  - List returns a snapshot in insertion order. Snapshot semantics mean a
    caller iterating the result never observes a mutation mid-flight.

VALIDATION:
  The Store does not validate item contents; the Ledger validates before
  inserting. The Store only enforces id uniqueness.

IMPLEMENTATIONS:
  - budget/store/memory.go: In-memory (testing/dev)
  - store/sqlite/sqlite.go: Production SQLite

SEE ALSO:
  - ledger.go: Pairs every store mutation with an aggregator update
*/
package budget

import "context"

// =============================================================================
// STORE - Authoritative item set for one ledger
// =============================================================================

// Store handles persistence of budget items for a single ledger.
// Implementations must serialize individual operations; the Ledger
// provides the coarser mutation+aggregation locking.
type Store interface {
	// Insert appends an item. Returns DuplicateIDError if the id exists.
	Insert(ctx context.Context, item Item) error

	// Remove deletes the item with the given id and returns it.
	// Returns NotFoundError if the id is unknown.
	Remove(ctx context.Context, id ItemID) (Item, error)

	// Get returns the item with the given id, if present.
	Get(ctx context.Context, id ItemID) (Item, bool, error)

	// List returns a snapshot of items matching pred, in insertion order.
	// A nil predicate matches everything.
	List(ctx context.Context, pred func(Item) bool) ([]Item, error)
}
