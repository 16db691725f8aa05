// Package track provides thread-safe identifier sets for the entity
// populations a shard owns.
package track

import (
	"sync"
)

// Set defines the interface for tracking entity identifiers owned by a shard
// All implementations must be thread-safe for concurrent access
type Set interface {
	// Add inserts an identifier into the set
	// Idempotent: adding an existing identifier is a no-op
	Add(id string)

	// Remove deletes an identifier from the set
	// Idempotent: removing an absent identifier is a no-op
	Remove(id string)

	// Contains reports whether the identifier is tracked
	Contains(id string) bool

	// List returns all tracked identifiers
	// Order is not guaranteed
	List() []string

	// Stats returns tracking statistics
	Stats() SetStats
}

// SetStats contains statistics about a set
type SetStats struct {
	Count int // Number of tracked identifiers
}

// MemorySet implements Set with in-memory storage
// Uses sync.RWMutex for thread-safe concurrent access
type MemorySet struct {
	mu  sync.RWMutex        // Protects concurrent access
	ids map[string]struct{} // Tracked identifiers
}

// NewMemorySet creates a new in-memory set
func NewMemorySet() *MemorySet {
	return &MemorySet{
		ids: make(map[string]struct{}),
	}
}

// Add inserts an identifier
// Duplicate adds collapse to a single membership (idempotent)
func (m *MemorySet) Add(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ids[id] = struct{}{}
}

// Remove deletes an identifier
// No effect if the identifier is absent (idempotent)
func (m *MemorySet) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.ids, id)
}

// Contains reports membership
func (m *MemorySet) Contains(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.ids[id]
	return ok
}

// List returns all tracked identifiers
// Returns a copy to prevent external modification
func (m *MemorySet) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.ids))
	for id := range m.ids {
		out = append(out, id)
	}
	return out
}

// Stats returns tracking statistics
func (m *MemorySet) Stats() SetStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return SetStats{Count: len(m.ids)}
}
