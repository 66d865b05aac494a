// Package store provides Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/budget-engine/budget"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu    sync.RWMutex
	items []budget.Item // insertion order
	index map[budget.ItemID]int
}

func NewMemory() *Memory {
	return &Memory{
		index: make(map[budget.ItemID]int),
	}
}

// Insert appends an item, rejecting duplicate ids.
func (m *Memory) Insert(_ context.Context, item budget.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.index[item.ID]; ok {
		return &budget.DuplicateIDError{ID: item.ID}
	}
	m.index[item.ID] = len(m.items)
	m.items = append(m.items, item)
	return nil
}

// Remove deletes an item by id, preserving the order of the rest.
func (m *Memory) Remove(_ context.Context, id budget.ItemID) (budget.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.index[id]
	if !ok {
		return budget.Item{}, &budget.NotFoundError{ID: id}
	}
	removed := m.items[i]

	m.items = append(m.items[:i], m.items[i+1:]...)
	delete(m.index, id)
	for j := i; j < len(m.items); j++ {
		m.index[m.items[j].ID] = j
	}
	return removed, nil
}

func (m *Memory) Get(_ context.Context, id budget.ItemID) (budget.Item, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[id]
	if !ok {
		return budget.Item{}, false, nil
	}
	return m.items[i], true, nil
}

// List returns a snapshot in insertion order. The returned slice is a
// copy; callers never observe later mutations through it.
func (m *Memory) List(_ context.Context, pred func(budget.Item) bool) ([]budget.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]budget.Item, 0, len(m.items))
	for _, it := range m.items {
		if pred == nil || pred(it) {
			result = append(result, it)
		}
	}
	return result, nil
}
