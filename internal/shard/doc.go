// Package shard implements the leaf authority of Worldmesh's spatial
// sharding hierarchy: a self-contained, thread-safe partition that owns an
// axis-aligned region of 3D space and the entities currently inside it.
//
// # Overview
//
// A shard is the atomic unit of spatial distribution in Worldmesh. Each
// shard is responsible for a disjoint region of the simulated world and
// tracks the identifiers of the players and objects that region contains.
// Shards evaluate incoming spatial events and signal overflow when an
// event's effect cannot be contained within their declared boundaries.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│             SHARD                   │
//	├─────────────────────────────────────┤
//	│                                     │
//	│  ┌──────────────────────────────┐   │
//	│  │   Region                     │   │
//	│  │   - Axis-aligned box         │   │
//	│  │   - Immutable after create   │   │
//	│  └──────────────────────────────┘   │
//	│                                     │
//	│  ┌──────────────────────────────┐   │
//	│  │   Entity sets                │   │
//	│  │   - Players (track.Set)      │   │
//	│  │   - Objects (track.Set)      │   │
//	│  │   - Idempotent add/remove    │   │
//	│  └──────────────────────────────┘   │
//	│                                     │
//	│  ┌──────────────────────────────┐   │
//	│  │   Metadata                   │   │
//	│  │   - Shard ID                 │   │
//	│  │   - Lifecycle state          │   │
//	│  │   - Event/overflow counters  │   │
//	│  └──────────────────────────────┘   │
//	│                                     │
//	└─────────────────────────────────────┘
//
// # Overflow Evaluation
//
// ProcessEvent returns the OR of two independent conditions:
//
//  1. Out-of-bounds: the event origin does not lie within the shard's
//     region (the event belongs to a neighbor).
//  2. Boundary-breach: the effect radius exceeds half of the region's
//     smallest axis extent, so the effect sphere could not fit inside the
//     shard even if perfectly centered.
//
// The signal is purely diagnostic: entity membership is never mutated by
// event evaluation, and escalation (re-sharding, cross-shard handoff) is
// the caller's responsibility.
//
// # Thread Safety
//
// All operations are safe for concurrent use:
//   - Entity sets carry their own locks (see package track)
//   - Statistics use atomic counters
//   - Lifecycle state is guarded by an RWMutex
//   - The region is immutable, so overflow evaluation is lock-free
//
// # Usage
//
//	region, _ := geom.NewRegion(geom.Vec3{}, geom.Vec3{X: 100, Y: 100, Z: 100})
//	s := shard.New("shard-nw", region)
//	s.AddEntity(shard.KindPlayer, "alice")
//
//	overflow := s.ProcessEvent(evt)
//	if overflow {
//	    // effect region crosses the shard boundary; reconcile or escalate
//	}
package shard
