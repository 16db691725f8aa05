package track

import (
	"fmt"
	"sync"
	"testing"
)

// TestMemorySet tests the in-memory set implementation
func TestMemorySet(t *testing.T) {
	t.Run("new set is empty", func(t *testing.T) {
		set := NewMemorySet()

		if ids := set.List(); len(ids) != 0 {
			t.Errorf("Expected empty set, got %d ids", len(ids))
		}
		if set.Contains("nonexistent") {
			t.Error("Expected Contains to be false on empty set")
		}
		if stats := set.Stats(); stats.Count != 0 {
			t.Errorf("Expected count 0, got %d", stats.Count)
		}
	})

	t.Run("add and contains", func(t *testing.T) {
		set := NewMemorySet()

		set.Add("player-1")
		set.Add("player-2")

		if !set.Contains("player-1") {
			t.Error("Expected player-1 to be tracked")
		}
		if !set.Contains("player-2") {
			t.Error("Expected player-2 to be tracked")
		}
		if set.Contains("player-3") {
			t.Error("Expected player-3 to be absent")
		}
	})

	t.Run("duplicate add is idempotent", func(t *testing.T) {
		set := NewMemorySet()

		set.Add("player-1")
		set.Add("player-1")
		set.Add("player-1")

		if stats := set.Stats(); stats.Count != 1 {
			t.Errorf("Expected count 1 after duplicate adds, got %d", stats.Count)
		}
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		set := NewMemorySet()

		set.Add("obj-1")
		set.Remove("obj-1")

		if set.Contains("obj-1") {
			t.Error("Expected obj-1 to be removed")
		}

		// Removing again or removing an absent id must not panic or error
		set.Remove("obj-1")
		set.Remove("never-added")

		if stats := set.Stats(); stats.Count != 0 {
			t.Errorf("Expected count 0, got %d", stats.Count)
		}
	})

	t.Run("list returns a copy", func(t *testing.T) {
		set := NewMemorySet()
		set.Add("a")
		set.Add("b")

		ids := set.List()
		if len(ids) != 2 {
			t.Fatalf("Expected 2 ids, got %d", len(ids))
		}

		// Mutating the returned slice must not affect the set
		ids[0] = "mutated"
		if set.Contains("mutated") {
			t.Error("Expected List to return a copy")
		}
		if !set.Contains("a") || !set.Contains("b") {
			t.Error("Expected set to be unaffected by slice mutation")
		}
	})
}

// TestMemorySetConcurrency verifies thread-safe concurrent access
func TestMemorySetConcurrency(t *testing.T) {
	set := NewMemorySet()

	const goroutines = 10
	const opsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(goroutines * 2)

	// Concurrent writers
	for g := 0; g < goroutines; g++ {
		go func(g int) {
			defer wg.Done()
			for i := 0; i < opsPerGoroutine; i++ {
				set.Add(fmt.Sprintf("entity-%d-%d", g, i))
			}
		}(g)
	}

	// Concurrent readers
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < opsPerGoroutine; i++ {
				_ = set.List()
				_ = set.Stats()
			}
		}()
	}

	wg.Wait()

	if stats := set.Stats(); stats.Count != goroutines*opsPerGoroutine {
		t.Errorf("Expected %d ids, got %d", goroutines*opsPerGoroutine, stats.Count)
	}
}
