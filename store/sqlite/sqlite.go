/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Persists the ledger catalog and their budget items using SQLite. The
  engine itself stays persistence-free; the API layer hydrates in-memory
  ledgers from this store on startup and writes through on mutation.

INTERFACES IMPLEMENTED:
  budget.Store: per-ledger item persistence (via Items(ledgerID))

KEY TABLES:
  ledgers:      One row per event budget (total budget, name)
  budget_items: Line items, insertion order preserved via seq

ORDERING:
  The engine's List contract is "snapshot in insertion order". seq is an
  AUTOINCREMENT column; SELECT ... ORDER BY seq reproduces insertion
  order across restarts.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/budgets.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  ledger, err := budget.NewLedger(ctx, store.Items("ledger-1"), total)

SEE ALSO:
  - budget/store.go: Interface definition
  - budget/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/budget-engine/budget"
)

// Store implements persistence for ledgers and their items using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Ledgers (one per event budget)
	CREATE TABLE IF NOT EXISTS ledgers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		total_budget TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Budget items (line items per ledger)
	CREATE TABLE IF NOT EXISTS budget_items (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		ledger_id TEXT NOT NULL REFERENCES ledgers(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		amount TEXT NOT NULL,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		due_date TEXT,
		vendor TEXT,
		payment_method TEXT,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	-- Enforce id uniqueness within a ledger
	CREATE UNIQUE INDEX IF NOT EXISTS idx_items_ledger_id
		ON budget_items(ledger_id, id);

	-- Snapshot listing (hot path: hydration and query surface)
	CREATE INDEX IF NOT EXISTS idx_items_ledger_seq
		ON budget_items(ledger_id, seq);

	-- For kind/category reporting queries
	CREATE INDEX IF NOT EXISTS idx_items_ledger_kind
		ON budget_items(ledger_id, kind);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LEDGER CATALOG
// =============================================================================

// LedgerRecord is a persisted ledger row.
type LedgerRecord struct {
	ID          string
	Name        string
	TotalBudget decimal.Decimal
	CreatedAt   time.Time
}

// SaveLedger inserts a ledger row.
func (s *Store) SaveLedger(ctx context.Context, rec LedgerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ledgers (id, name, total_budget, created_at) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.Name, rec.TotalBudget.String(), createdAt.Format(time.RFC3339))
	if err != nil {
		if isUniqueConstraintError(err) {
			return &budget.DuplicateIDError{ID: budget.ItemID(rec.ID)}
		}
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	return nil
}

// GetLedger returns a ledger row, or nil if absent.
func (s *Store) GetLedger(ctx context.Context, id string) (*LedgerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, total_budget, created_at FROM ledgers WHERE id = ?`, id)

	rec, err := scanLedger(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger: %w", err)
	}
	return &rec, nil
}

// ListLedgers returns all ledger rows in creation order.
func (s *Store) ListLedgers(ctx context.Context) ([]LedgerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, total_budget, created_at FROM ledgers ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}
	defer rows.Close()

	var records []LedgerRecord
	for rows.Next() {
		rec, err := scanLedger(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateTotalBudget reconfigures a ledger's ceiling.
func (s *Store) UpdateTotalBudget(ctx context.Context, id string, total decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE ledgers SET total_budget = ? WHERE id = ?`, total.String(), id)
	if err != nil {
		return fmt.Errorf("failed to update total budget: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return &budget.NotFoundError{ID: budget.ItemID(id)}
	}
	return nil
}

// =============================================================================
// ITEM STORE (budget.Store interface, scoped to one ledger)
// =============================================================================

// Items returns a budget.Store view scoped to one ledger's rows.
func (s *Store) Items(ledgerID string) budget.Store {
	return &itemStore{store: s, ledgerID: ledgerID}
}

type itemStore struct {
	store    *Store
	ledgerID string
}

func (is *itemStore) Insert(ctx context.Context, item budget.Item) error {
	is.store.mu.Lock()
	defer is.store.mu.Unlock()

	var dueDate sql.NullString
	if item.DueDate != nil {
		dueDate = sql.NullString{String: item.DueDate.UTC().Format(time.RFC3339Nano), Valid: true}
	}

	_, err := is.store.db.ExecContext(ctx, `
		INSERT INTO budget_items
		(id, ledger_id, name, category, amount, kind, status, due_date,
		 vendor, payment_method, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		is.ledgerID,
		item.Name,
		item.Category,
		item.Amount.String(),
		item.Kind,
		item.Status,
		dueDate,
		nullString(item.Vendor),
		nullString(item.PaymentMethod),
		nullString(item.Notes),
		item.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return &budget.DuplicateIDError{ID: item.ID}
		}
		return fmt.Errorf("failed to insert item: %w", err)
	}
	return nil
}

func (is *itemStore) Remove(ctx context.Context, id budget.ItemID) (budget.Item, error) {
	is.store.mu.Lock()
	defer is.store.mu.Unlock()

	row := is.store.db.QueryRowContext(ctx, `
		SELECT id, name, category, amount, kind, status, due_date,
		       vendor, payment_method, notes, created_at
		FROM budget_items WHERE ledger_id = ? AND id = ?`,
		is.ledgerID, id)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return budget.Item{}, &budget.NotFoundError{ID: id}
	}
	if err != nil {
		return budget.Item{}, fmt.Errorf("failed to load item: %w", err)
	}

	if _, err := is.store.db.ExecContext(ctx,
		`DELETE FROM budget_items WHERE ledger_id = ? AND id = ?`,
		is.ledgerID, id); err != nil {
		return budget.Item{}, fmt.Errorf("failed to remove item: %w", err)
	}
	return item, nil
}

func (is *itemStore) Get(ctx context.Context, id budget.ItemID) (budget.Item, bool, error) {
	is.store.mu.RLock()
	defer is.store.mu.RUnlock()

	row := is.store.db.QueryRowContext(ctx, `
		SELECT id, name, category, amount, kind, status, due_date,
		       vendor, payment_method, notes, created_at
		FROM budget_items WHERE ledger_id = ? AND id = ?`,
		is.ledgerID, id)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return budget.Item{}, false, nil
	}
	if err != nil {
		return budget.Item{}, false, fmt.Errorf("failed to get item: %w", err)
	}
	return item, true, nil
}

func (is *itemStore) List(ctx context.Context, pred func(budget.Item) bool) ([]budget.Item, error) {
	is.store.mu.RLock()
	defer is.store.mu.RUnlock()

	rows, err := is.store.db.QueryContext(ctx, `
		SELECT id, name, category, amount, kind, status, due_date,
		       vendor, payment_method, notes, created_at
		FROM budget_items WHERE ledger_id = ?
		ORDER BY seq ASC`,
		is.ledgerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := make([]budget.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		if pred == nil || pred(item) {
			items = append(items, item)
		}
	}
	return items, rows.Err()
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLedger(row rowScanner) (LedgerRecord, error) {
	var (
		rec         LedgerRecord
		totalBudget string
		createdAt   string
	)
	if err := row.Scan(&rec.ID, &rec.Name, &totalBudget, &createdAt); err != nil {
		return LedgerRecord{}, err
	}

	total, err := decimal.NewFromString(totalBudget)
	if err != nil {
		return LedgerRecord{}, fmt.Errorf("corrupt total_budget %q: %w", totalBudget, err)
	}
	rec.TotalBudget = total
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return rec, nil
}

func scanItem(row rowScanner) (budget.Item, error) {
	var (
		item          budget.Item
		amount        string
		kind          string
		status        string
		dueDate       sql.NullString
		vendor        sql.NullString
		paymentMethod sql.NullString
		notes         sql.NullString
		createdAt     string
	)
	err := row.Scan(&item.ID, &item.Name, &item.Category, &amount, &kind, &status,
		&dueDate, &vendor, &paymentMethod, &notes, &createdAt)
	if err != nil {
		return budget.Item{}, err
	}

	item.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return budget.Item{}, fmt.Errorf("corrupt amount %q: %w", amount, err)
	}
	item.Kind = budget.Kind(kind)
	item.Status = budget.Status(status)
	if dueDate.Valid {
		t, err := time.Parse(time.RFC3339Nano, dueDate.String)
		if err != nil {
			return budget.Item{}, fmt.Errorf("corrupt due_date %q: %w", dueDate.String, err)
		}
		item.DueDate = &t
	}
	item.Vendor = vendor.String
	item.PaymentMethod = paymentMethod.String
	item.Notes = notes.String
	item.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return item, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
