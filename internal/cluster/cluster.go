package cluster

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dreamware/worldmesh/internal/event"
	"github.com/dreamware/worldmesh/internal/geom"
	"github.com/dreamware/worldmesh/internal/shard"
)

// Cluster owns a region of 3D space and the shards that tile it. It is the
// middle tier of the propagation hierarchy: events fan out to every shard
// whose region the event's effective bounds reach, and per-shard overflow
// results are ORed into a single cluster-level signal.
//
// Shards are exclusively owned by their cluster. The design assumes sibling
// shard regions tile the cluster without overlap, but this is not enforced:
// overlapping shards simply both receive matching events.
type Cluster struct {
	ID     string      // Unique cluster identifier within the coordinator
	Region geom.Region // The region this cluster is responsible for

	mu     sync.RWMutex            // Protects the shard map
	shards map[string]*shard.Shard // shard ID -> shard
}

// New creates an empty cluster over the given region.
// An empty id is replaced with a generated UUID.
func New(id string, region geom.Region) *Cluster {
	if id == "" {
		id = uuid.NewString()
	}
	return &Cluster{
		ID:     id,
		Region: region,
		shards: make(map[string]*shard.Shard),
	}
}

// AddShard inserts a shard by its identifier. Insertion is last-write-wins:
// an existing shard under the same identifier is replaced silently, and
// replaced reports whether that happened so callers wanting reject-on-
// duplicate semantics can detect the collision.
func (c *Cluster) AddShard(s *shard.Shard) (replaced bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, replaced = c.shards[s.ID]
	c.shards[s.ID] = s
	return replaced
}

// RemoveShard deletes a shard by identifier, reporting whether it existed
func (c *Cluster) RemoveShard(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.shards[id]
	delete(c.shards, id)
	return ok
}

// GetShard retrieves a shard by identifier, returning nil if absent
func (c *Cluster) GetShard(id string) *shard.Shard {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.shards[id]
}

// Count returns the number of owned shards
func (c *Cluster) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.shards)
}

// ShardInfos returns metadata for every owned shard
// Order is not guaranteed
func (c *Cluster) ShardInfos() []shard.Info {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]shard.Info, 0, len(c.shards))
	for _, s := range c.shards {
		out = append(out, s.Info())
	}
	return out
}

// PropagateEvent fans the event out to every shard whose region either
// contains the event origin or intersects the event's effective bounds
// (origin expanded by radius on all axes). Each dispatched shard's overflow
// result is ORed into the cluster accumulator. Finally the cluster-boundary
// check is ORed in: an origin outside the cluster's own region counts as
// overflow regardless of shard results, modelling an event whose origin
// lives in a neighboring cluster but whose radius reaches into this one.
//
// Which shards are visited depends only on geometry, and OR is commutative,
// so the result is independent of shard iteration order. The walk holds the
// cluster's read lock, so concurrent topology edits wait for in-flight
// propagations to finish.
func (c *Cluster) PropagateEvent(e event.Event) bool {
	bounds := e.Bounds()
	overflow := false

	c.mu.RLock()
	for _, s := range c.shards {
		if s.Region.Contains(e.Position) || s.Region.Intersects(bounds) {
			overflow = s.ProcessEvent(e) || overflow
		}
	}
	c.mu.RUnlock()

	return overflow || !c.Region.Contains(e.Position)
}
