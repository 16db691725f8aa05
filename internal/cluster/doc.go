// Package cluster implements the middle tier of Worldmesh's spatial
// sharding hierarchy: a region-owning container that fans spatial events
// out to the shards tiling its space and aggregates their overflow signals.
//
// # Overview
//
// A cluster owns an axis-aligned region of the simulated world and a keyed
// set of shards that subdivide it. When an event arrives, the cluster
// computes the event's effective bounds (origin expanded by effect radius)
// and dispatches the event to every shard whose region the bounds reach,
// then ORs the per-shard overflow results together with its own boundary
// check into a single cluster-level signal.
//
// # Architecture
//
//	              ┌──────────────┐
//	              │   Cluster    │
//	              │              │
//	              │ - Region     │
//	              │ - Shard map  │
//	              └──────┬───────┘
//	                     │  geometric fan-out
//	      ┌──────────────┼──────────────┐
//	      │              │              │
//	┌─────▼─────┐ ┌─────▼─────┐ ┌─────▼─────┐
//	│  Shard A  │ │  Shard B  │ │  Shard C  │
//	│ [0-100]   │ │ [100-200] │ │ [200-300] │
//	└───────────┘ └───────────┘ └───────────┘
//
// # Dispatch Rule
//
// A shard receives an event iff its region contains the event origin or
// intersects the event's expanded bounds (inclusive on all axes, so bounds
// that merely touch a shard face still dispatch). The set of shards visited
// depends only on geometry, never on insertion order, and overflow
// aggregation is order-independent because OR is commutative.
//
// # Duplicate Identifiers
//
// AddShard is last-write-wins by shard identifier. Callers that want
// reject-on-duplicate semantics can use the returned replaced flag; the
// cluster itself never fails an insertion.
//
// # Concurrency Model
//
// The shard map is guarded by an RWMutex. Propagation takes the read lock
// for the whole fan-out, so multiple events can be in flight concurrently
// while topology edits (add/remove shard) serialize behind them with the
// write lock. Shards handle their own internal synchronization.
//
// # See Also
//
// Related packages:
//   - internal/coordinator: top of the hierarchy, cluster orchestration
//   - internal/shard: leaf overflow evaluation
//   - internal/geom: region and bounds math
package cluster
