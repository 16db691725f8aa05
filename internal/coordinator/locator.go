// Package coordinator implements the orchestration layer at the top of
// Worldmesh's spatial sharding hierarchy.
// See doc.go for complete package documentation.
package coordinator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dreamware/worldmesh/internal/shard"
)

// ErrUnknownShard is returned when a lookup names a shard the locator has
// no placement for
var ErrUnknownShard = errors.New("unknown shard")

// ErrUnknownEntity is returned when a lookup names an entity the locator
// has no placement for
var ErrUnknownEntity = errors.New("unknown entity")

// ShardLocation records which cluster currently owns a shard.
//
// Ownership in the hierarchy is strictly downward: clusters hold shards in
// a keyed container, and shards carry no back-pointer to their cluster.
// Any code that needs "which cluster owns shard X" asks the locator
// instead of following a live reference, which keeps the ownership graph
// acyclic.
//
// Thread Safety:
// ShardLocation values are immutable once created. The locator returns
// copies to prevent external modification.
type ShardLocation struct {
	// ShardID is the shard being located.
	ShardID string

	// ClusterID identifies the cluster that exclusively owns the shard.
	ClusterID string
}

// EntityLocation records which shard currently owns an entity, together
// with the entity's kind so a later eviction knows which population to
// remove it from.
type EntityLocation struct {
	// EntityID is the entity being located.
	EntityID string

	// Kind is the population the entity belongs to (player or object).
	Kind shard.EntityKind

	// ShardID identifies the shard that currently owns the entity.
	ShardID string
}

// Locator maintains the reverse lookups for the hierarchy: shard → owning
// cluster and entity → owning shard. It is the authoritative source for
// placement queries, kept consistent by the Coordinator as topology and
// entity membership change.
//
// Concurrency Model:
//   - Read operations use RLock for parallel access
//   - Write operations use Lock for exclusive access
//   - All returned data is copied to prevent races
//
// Performance Characteristics:
//   - LocateShard / LocateEntity: O(1) map lookup
//   - ShardsInCluster: O(n) linear scan of shard placements
//   - ForgetCluster: O(n) over shard and entity placements
type Locator struct {
	// shards maps shard IDs to their current cluster placement.
	shards map[string]*ShardLocation

	// entities maps entity IDs to their current shard placement.
	entities map[string]*EntityLocation

	// mu protects concurrent access to both maps.
	mu sync.RWMutex
}

// NewLocator creates an empty locator
func NewLocator() *Locator {
	return &Locator{
		shards:   make(map[string]*ShardLocation),
		entities: make(map[string]*EntityLocation),
	}
}

// RecordShard records (or moves) a shard's cluster placement.
// Returns an error if either identifier is empty.
func (l *Locator) RecordShard(shardID, clusterID string) error {
	if shardID == "" {
		return errors.New("shard ID cannot be empty")
	}
	if clusterID == "" {
		return errors.New("cluster ID cannot be empty")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.shards[shardID] = &ShardLocation{ShardID: shardID, ClusterID: clusterID}
	return nil
}

// ForgetShard drops a shard's placement along with every entity placement
// pointing at it. No error if the shard was not recorded.
func (l *Locator) ForgetShard(shardID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.shards, shardID)
	for id, loc := range l.entities {
		if loc.ShardID == shardID {
			delete(l.entities, id)
		}
	}
}

// ForgetCluster drops every shard placement belonging to the cluster,
// along with the entity placements for those shards. Returns the IDs of
// the shards that were forgotten.
func (l *Locator) ForgetCluster(clusterID string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var dropped []string
	for id, loc := range l.shards {
		if loc.ClusterID == clusterID {
			dropped = append(dropped, id)
			delete(l.shards, id)
		}
	}
	for id, loc := range l.entities {
		for _, shardID := range dropped {
			if loc.ShardID == shardID {
				delete(l.entities, id)
				break
			}
		}
	}
	return dropped
}

// LocateShard returns the cluster placement for a shard.
//
// Returns:
//   - Copy of the ShardLocation on success
//   - ErrUnknownShard if the shard has no recorded placement
func (l *Locator) LocateShard(shardID string) (ShardLocation, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	loc, ok := l.shards[shardID]
	if !ok {
		return ShardLocation{}, fmt.Errorf("%w: %s", ErrUnknownShard, shardID)
	}
	return *loc, nil
}

// ShardsInCluster returns the IDs of every shard placed in the cluster
// Order is not guaranteed
func (l *Locator) ShardsInCluster(clusterID string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []string
	for id, loc := range l.shards {
		if loc.ClusterID == clusterID {
			out = append(out, id)
		}
	}
	return out
}

// RecordEntity records (or moves) an entity's shard placement.
// Returns an error if either identifier is empty.
func (l *Locator) RecordEntity(entityID string, kind shard.EntityKind, shardID string) error {
	if entityID == "" {
		return errors.New("entity ID cannot be empty")
	}
	if shardID == "" {
		return errors.New("shard ID cannot be empty")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.shards[shardID]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownShard, shardID)
	}

	l.entities[entityID] = &EntityLocation{EntityID: entityID, Kind: kind, ShardID: shardID}
	return nil
}

// ForgetEntity drops an entity's placement
// No error if the entity was not recorded
func (l *Locator) ForgetEntity(entityID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.entities, entityID)
}

// LocateEntity returns the shard placement for an entity.
//
// Returns:
//   - Copy of the EntityLocation on success
//   - ErrUnknownEntity if the entity has no recorded placement
func (l *Locator) LocateEntity(entityID string) (EntityLocation, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	loc, ok := l.entities[entityID]
	if !ok {
		return EntityLocation{}, fmt.Errorf("%w: %s", ErrUnknownEntity, entityID)
	}
	return *loc, nil
}

// ShardCount returns the number of recorded shard placements
func (l *Locator) ShardCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.shards)
}

// EntityCount returns the number of recorded entity placements
func (l *Locator) EntityCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entities)
}
