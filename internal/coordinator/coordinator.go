package coordinator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dreamware/worldmesh/internal/cluster"
	"github.com/dreamware/worldmesh/internal/event"
	"github.com/dreamware/worldmesh/internal/shard"
)

// ErrUnknownCluster is returned when an operation names a cluster the
// coordinator does not own
var ErrUnknownCluster = errors.New("unknown cluster")

// Coordinator is the top of the propagation hierarchy: it owns the full set
// of clusters and delivers every event to each of them. The coordinator has
// no sibling to filter against, so there is no coordinator-level geometric
// check; filtering starts at the cluster tier.
//
// The coordinator also maintains the Locator, the reverse-lookup registry
// that answers "which cluster owns shard X" and "which shard owns entity Y"
// without back-pointers in the hierarchy. Construct coordinators explicitly
// and pass them where needed; there is no hidden process-wide instance, so
// tests can build isolated topologies.
type Coordinator struct {
	ID string // Unique coordinator identifier

	mu       sync.RWMutex                // Protects the cluster map
	clusters map[string]*cluster.Cluster // cluster ID -> cluster

	locator *Locator // Reverse lookups, kept consistent with topology
}

// ClusterInfo contains metadata about a cluster and its shards
type ClusterInfo struct {
	ID     string       `json:"id"`
	Region string       `json:"region"`
	Shards []shard.Info `json:"shards"`
}

// New creates an empty coordinator.
// An empty id is replaced with a generated UUID.
func New(id string) *Coordinator {
	if id == "" {
		id = uuid.NewString()
	}
	return &Coordinator{
		ID:       id,
		clusters: make(map[string]*cluster.Cluster),
		locator:  NewLocator(),
	}
}

// Locator exposes the coordinator's reverse-lookup registry
func (co *Coordinator) Locator() *Locator {
	return co.locator
}

// AddCluster inserts a cluster by its identifier. Insertion is
// last-write-wins, matching shard insertion: an existing cluster under the
// same identifier is replaced silently and replaced reports the collision.
// Shards owned by the incoming cluster are recorded in the locator; on
// replacement, only shards absent from the incoming cluster are forgotten,
// so entity placements on surviving shards stay intact.
func (co *Coordinator) AddCluster(c *cluster.Cluster) (replaced bool) {
	co.mu.Lock()
	_, replaced = co.clusters[c.ID]
	co.clusters[c.ID] = c
	co.mu.Unlock()

	incoming := make(map[string]struct{})
	for _, info := range c.ShardInfos() {
		incoming[info.ID] = struct{}{}
		_ = co.locator.RecordShard(info.ID, c.ID)
	}
	if replaced {
		for _, id := range co.locator.ShardsInCluster(c.ID) {
			if _, keep := incoming[id]; !keep {
				co.locator.ForgetShard(id)
			}
		}
	}
	return replaced
}

// RemoveCluster deletes a cluster and forgets the placements of its shards,
// reporting whether the cluster existed
func (co *Coordinator) RemoveCluster(id string) bool {
	co.mu.Lock()
	_, ok := co.clusters[id]
	delete(co.clusters, id)
	co.mu.Unlock()

	if ok {
		co.locator.ForgetCluster(id)
	}
	return ok
}

// GetCluster retrieves a cluster by identifier, returning nil if absent
func (co *Coordinator) GetCluster(id string) *cluster.Cluster {
	co.mu.RLock()
	defer co.mu.RUnlock()
	return co.clusters[id]
}

// Count returns the number of owned clusters
func (co *Coordinator) Count() int {
	co.mu.RLock()
	defer co.mu.RUnlock()
	return len(co.clusters)
}

// PlaceShard inserts a shard into the named cluster and records its
// placement. If the shard was previously placed in a different cluster it
// is removed there first, preserving exclusive ownership.
//
// Returns ErrUnknownCluster if the cluster does not exist.
func (co *Coordinator) PlaceShard(clusterID string, s *shard.Shard) error {
	co.mu.RLock()
	target, ok := co.clusters[clusterID]
	co.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCluster, clusterID)
	}

	if prev, err := co.locator.LocateShard(s.ID); err == nil && prev.ClusterID != clusterID {
		if old := co.GetCluster(prev.ClusterID); old != nil {
			old.RemoveShard(s.ID)
		}
	}

	target.AddShard(s)
	return co.locator.RecordShard(s.ID, clusterID)
}

// DropShard removes a shard from its owning cluster and forgets its
// placement along with the placements of its entities.
//
// Returns ErrUnknownShard if the shard has no recorded placement.
func (co *Coordinator) DropShard(shardID string) error {
	loc, err := co.locator.LocateShard(shardID)
	if err != nil {
		return err
	}
	if c := co.GetCluster(loc.ClusterID); c != nil {
		c.RemoveShard(shardID)
	}
	co.locator.ForgetShard(shardID)
	return nil
}

// LookupShard resolves a shard ID to the live shard via the locator.
//
// Returns ErrUnknownShard if the shard has no recorded placement or its
// cluster no longer owns it.
func (co *Coordinator) LookupShard(shardID string) (*shard.Shard, error) {
	loc, err := co.locator.LocateShard(shardID)
	if err != nil {
		return nil, err
	}
	c := co.GetCluster(loc.ClusterID)
	if c == nil {
		return nil, fmt.Errorf("%w: %s (cluster %s gone)", ErrUnknownShard, shardID, loc.ClusterID)
	}
	s := c.GetShard(shardID)
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownShard, shardID)
	}
	return s, nil
}

// PlaceEntity tracks an entity on the named shard and records its
// placement. If the entity was previously placed on a different shard it is
// removed there first, modelling a cross-shard handoff.
func (co *Coordinator) PlaceEntity(entityID string, kind shard.EntityKind, shardID string) error {
	s, err := co.LookupShard(shardID)
	if err != nil {
		return err
	}

	if prev, err := co.locator.LocateEntity(entityID); err == nil && prev.ShardID != shardID {
		if old, err := co.LookupShard(prev.ShardID); err == nil {
			_ = old.RemoveEntity(prev.Kind, entityID)
		}
	}

	if err := s.AddEntity(kind, entityID); err != nil {
		return err
	}
	return co.locator.RecordEntity(entityID, kind, shardID)
}

// EvictEntity stops tracking an entity on its recorded shard and forgets
// its placement.
//
// Returns ErrUnknownEntity if the entity has no recorded placement.
func (co *Coordinator) EvictEntity(entityID string) error {
	loc, err := co.locator.LocateEntity(entityID)
	if err != nil {
		return err
	}
	if s, err := co.LookupShard(loc.ShardID); err == nil {
		_ = s.RemoveEntity(loc.Kind, entityID)
	}
	co.locator.ForgetEntity(entityID)
	return nil
}

// PropagateEvent delivers the event to every owned cluster unconditionally
// and returns the OR of all cluster-level overflow results, so global
// overflow is observable at the top of the hierarchy (the input for
// cross-cluster rebalancing decisions, which are the caller's concern).
//
// The walk holds the coordinator's read lock, so concurrent topology edits
// wait for in-flight propagations to finish.
func (co *Coordinator) PropagateEvent(e event.Event) bool {
	overflow := false

	co.mu.RLock()
	for _, c := range co.clusters {
		overflow = c.PropagateEvent(e) || overflow
	}
	co.mu.RUnlock()

	return overflow
}

// Topology returns metadata for every owned cluster and its shards
// Order is not guaranteed
func (co *Coordinator) Topology() []ClusterInfo {
	co.mu.RLock()
	clusters := make([]*cluster.Cluster, 0, len(co.clusters))
	for _, c := range co.clusters {
		clusters = append(clusters, c)
	}
	co.mu.RUnlock()

	out := make([]ClusterInfo, 0, len(clusters))
	for _, c := range clusters {
		out = append(out, ClusterInfo{
			ID:     c.ID,
			Region: c.Region.String(),
			Shards: c.ShardInfos(),
		})
	}
	return out
}

// ShardInfos returns metadata for every shard across all clusters
func (co *Coordinator) ShardInfos() []shard.Info {
	var out []shard.Info
	for _, ci := range co.Topology() {
		out = append(out, ci.Shards...)
	}
	return out
}
