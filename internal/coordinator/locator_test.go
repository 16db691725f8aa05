package coordinator

import (
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/dreamware/worldmesh/internal/shard"
)

// TestLocatorShards tests shard placement records
func TestLocatorShards(t *testing.T) {
	l := NewLocator()

	if err := l.RecordShard("", "cluster-1"); err == nil {
		t.Error("Expected error for empty shard identifier")
	}
	if err := l.RecordShard("shard-1", ""); err == nil {
		t.Error("Expected error for empty cluster identifier")
	}

	if err := l.RecordShard("shard-1", "cluster-1"); err != nil {
		t.Fatalf("RecordShard: %v", err)
	}
	if err := l.RecordShard("shard-2", "cluster-1"); err != nil {
		t.Fatalf("RecordShard: %v", err)
	}
	if l.ShardCount() != 2 {
		t.Errorf("Expected 2 shards, got %d", l.ShardCount())
	}

	loc, err := l.LocateShard("shard-1")
	if err != nil {
		t.Fatalf("LocateShard: %v", err)
	}
	if loc.ClusterID != "cluster-1" {
		t.Errorf("Expected cluster-1, got %s", loc.ClusterID)
	}

	if _, err := l.LocateShard("nowhere"); !errors.Is(err, ErrUnknownShard) {
		t.Errorf("Expected ErrUnknownShard, got %v", err)
	}

	// Re-recording moves the shard
	if err := l.RecordShard("shard-1", "cluster-2"); err != nil {
		t.Fatalf("RecordShard move: %v", err)
	}
	loc, _ = l.LocateShard("shard-1")
	if loc.ClusterID != "cluster-2" {
		t.Errorf("Expected cluster-2 after move, got %s", loc.ClusterID)
	}

	ids := l.ShardsInCluster("cluster-1")
	if len(ids) != 1 || ids[0] != "shard-2" {
		t.Errorf("Expected [shard-2] in cluster-1, got %v", ids)
	}
}

// TestLocatorForgetShard tests cascading entity cleanup
func TestLocatorForgetShard(t *testing.T) {
	l := NewLocator()
	if err := l.RecordShard("shard-1", "cluster-1"); err != nil {
		t.Fatalf("RecordShard: %v", err)
	}
	if err := l.RecordEntity("alice", shard.KindPlayer, "shard-1"); err != nil {
		t.Fatalf("RecordEntity: %v", err)
	}

	l.ForgetShard("shard-1")

	if _, err := l.LocateShard("shard-1"); !errors.Is(err, ErrUnknownShard) {
		t.Errorf("Expected shard to be forgotten, got %v", err)
	}
	if _, err := l.LocateEntity("alice"); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("Expected entities on the shard to be forgotten, got %v", err)
	}

	// Forgetting an absent shard is a no-op
	l.ForgetShard("shard-1")
}

// TestLocatorForgetCluster tests bulk removal of a cluster's shards
func TestLocatorForgetCluster(t *testing.T) {
	l := NewLocator()
	for _, id := range []string{"a", "b"} {
		if err := l.RecordShard(id, "cluster-1"); err != nil {
			t.Fatalf("RecordShard: %v", err)
		}
	}
	if err := l.RecordShard("c", "cluster-2"); err != nil {
		t.Fatalf("RecordShard: %v", err)
	}
	if err := l.RecordEntity("bob", shard.KindPlayer, "a"); err != nil {
		t.Fatalf("RecordEntity: %v", err)
	}

	dropped := l.ForgetCluster("cluster-1")
	sort.Strings(dropped)
	if len(dropped) != 2 || dropped[0] != "a" || dropped[1] != "b" {
		t.Errorf("Expected dropped [a b], got %v", dropped)
	}
	if l.ShardCount() != 1 {
		t.Errorf("Expected 1 shard left, got %d", l.ShardCount())
	}
	if _, err := l.LocateEntity("bob"); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("Expected bob to be forgotten with his shard, got %v", err)
	}
	if dropped := l.ForgetCluster("cluster-1"); len(dropped) != 0 {
		t.Errorf("Expected no shards dropped on second forget, got %v", dropped)
	}
}

// TestLocatorEntities tests entity placement records
func TestLocatorEntities(t *testing.T) {
	l := NewLocator()
	if err := l.RecordShard("shard-1", "cluster-1"); err != nil {
		t.Fatalf("RecordShard: %v", err)
	}

	if err := l.RecordEntity("", shard.KindPlayer, "shard-1"); err == nil {
		t.Error("Expected error for empty entity identifier")
	}
	if err := l.RecordEntity("alice", shard.KindPlayer, "nowhere"); !errors.Is(err, ErrUnknownShard) {
		t.Errorf("Expected ErrUnknownShard, got %v", err)
	}

	if err := l.RecordEntity("alice", shard.KindPlayer, "shard-1"); err != nil {
		t.Fatalf("RecordEntity: %v", err)
	}
	if l.EntityCount() != 1 {
		t.Errorf("Expected 1 entity, got %d", l.EntityCount())
	}

	loc, err := l.LocateEntity("alice")
	if err != nil {
		t.Fatalf("LocateEntity: %v", err)
	}
	if loc.ShardID != "shard-1" || loc.Kind != shard.KindPlayer {
		t.Errorf("Unexpected location %+v", loc)
	}

	l.ForgetEntity("alice")
	if _, err := l.LocateEntity("alice"); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("Expected ErrUnknownEntity after forget, got %v", err)
	}
	l.ForgetEntity("alice")
}

// TestLocatorConcurrency exercises the locator from multiple goroutines
func TestLocatorConcurrency(t *testing.T) {
	l := NewLocator()
	if err := l.RecordShard("shard-1", "cluster-1"); err != nil {
		t.Fatalf("RecordShard: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := string(rune('a' + n))
				l.RecordEntity(id, shard.KindObject, "shard-1")
				l.ForgetEntity(id)
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.LocateShard("shard-1")
				l.ShardsInCluster("cluster-1")
				l.EntityCount()
			}
		}()
	}
	wg.Wait()
}
