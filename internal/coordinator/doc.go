// Package coordinator implements the orchestration layer at the top of
// Worldmesh's spatial sharding hierarchy, managing cluster topology,
// shard and entity placement, event propagation, and overflow monitoring.
//
// # Overview
//
// The coordinator is the control plane for a Worldmesh deployment. It owns
// the set of clusters that partition the simulated world, keeps reverse
// indexes from shard and entity identifiers back to their owners, and is
// the single entry point through which world events enter the hierarchy.
//
// # Architecture
//
// The coordinator is built from three subsystems:
//
//	┌─────────────────────────────────────┐
//	│         COORDINATOR                 │
//	├─────────────────────────────────────┤
//	│                                     │
//	│  ┌──────────────────────────────┐   │
//	│  │   Cluster Set                │   │
//	│  │   - Cluster ID → Cluster     │   │
//	│  │   - Event fan-out            │   │
//	│  │   - Topology snapshots       │   │
//	│  └──────────────────────────────┘   │
//	│                                     │
//	│  ┌──────────────────────────────┐   │
//	│  │   Locator                    │   │
//	│  │   - Shard ID → Cluster ID    │   │
//	│  │   - Entity ID → Shard ID     │   │
//	│  │   - Cascading cleanup        │   │
//	│  └──────────────────────────────┘   │
//	│                                     │
//	│  ┌──────────────────────────────┐   │
//	│  │   Overflow Monitor           │   │
//	│  │   - Windowed rate sampling   │   │
//	│  │   - Hot/cool classification  │   │
//	│  │   - Re-shard callbacks       │   │
//	│  └──────────────────────────────┘   │
//	│                                     │
//	└─────────────────────────────────────┘
//
// # Event Propagation
//
// PropagateEvent forwards every event to every cluster, with no geometric
// filter at this tier; each cluster applies its own shard-level dispatch
// rule and reports whether the event overflowed anywhere beneath it. The
// coordinator ORs those reports together, so the caller learns from a
// single bool whether any shard in the whole topology saw a containment
// failure or a boundary breach:
//
//	overflow := coord.PropagateEvent(e)
//	if overflow {
//	    // at least one shard could not fully contain the event
//	}
//
// # Placement Semantics
//
// Shards and entities have exclusive owners. PlaceShard moves a shard out
// of its previous cluster before inserting it into the new one, and
// PlaceEntity hands an entity off between shards the same way, so an
// identifier is never tracked in two places at once. The Locator is the
// authority for these placements: removing a cluster forgets its shards,
// and removing a shard forgets the entities placed on it.
//
// Duplicate cluster identifiers follow last-write-wins: AddCluster
// replaces the existing cluster and reports the replacement, letting
// callers that want reject-on-duplicate check the return value.
//
// # Overflow Monitoring
//
// The OverflowMonitor samples per-shard event and overflow counters on a
// fixed interval and computes the overflow rate of each window. A shard
// whose rate stays above the threshold for several consecutive windows is
// marked hot and the registered callback fires once, typically to trigger
// re-sharding or an operator alert. Quiet windows with too few events are
// ignored rather than counted either way.
//
// # Concurrency
//
// All types in this package are safe for concurrent use. The coordinator
// and locator guard their maps with read-write mutexes and return copies
// from accessors; event propagation holds only a read lock, so concurrent
// topology edits and event traffic do not serialize against each other.
//
// # Usage Example
//
//	coord := coordinator.New("coord-1")
//
//	region, _ := geom.NewRegion(geom.Vec3{}, geom.Vec3{X: 1000, Y: 1000, Z: 1000})
//	coord.AddCluster(cluster.New("west", region))
//	coord.PlaceShard("west", shard.New("west-0", region))
//	coord.PlaceEntity("alice", shard.KindPlayer, "west-0")
//
//	monitor := coordinator.NewOverflowMonitor(10*time.Second, 0.25, log)
//	monitor.SetOnHot(func(shardID string) { log.Warnw("shard hot", "shard", shardID) })
//	go monitor.Start(ctx, coord.ShardInfos)
//
//	overflow := coord.PropagateEvent(e)
//
// # See Also
//
// Related packages:
//   - internal/cluster: mid-tier fan-out over shard regions
//   - internal/shard: leaf shards with entity tracking and stats
//   - cmd/coordinator: HTTP server exposing the coordinator
package coordinator
