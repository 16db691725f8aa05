package shard

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dreamware/worldmesh/internal/event"
	"github.com/dreamware/worldmesh/internal/geom"
	"github.com/dreamware/worldmesh/internal/track"
)

// ErrUnknownKind is returned when an entity operation names a kind the
// shard does not track
var ErrUnknownKind = errors.New("unknown entity kind")

// State represents the current lifecycle state of a shard
type State string

const (
	// StateActive means the shard is serving events
	StateActive State = "active"
	// StateMigrating means the shard is being handed off
	StateMigrating State = "migrating"
	// StateDeleted means the shard is marked for removal
	StateDeleted State = "deleted"
)

// EntityKind distinguishes the entity populations a shard tracks
type EntityKind string

const (
	// KindPlayer identifies connected player entities
	KindPlayer EntityKind = "player"
	// KindObject identifies spawned world objects
	KindObject EntityKind = "object"
)

// Shard is the leaf authority over a region of 3D space in the propagation
// hierarchy. It owns the identifiers of the players and objects currently
// inside its region and evaluates whether an incoming event's effect stays
// within its declared bounds.
//
// ProcessEvent is a pure routing/diagnostic signal: it never mutates entity
// membership. Gameplay effects are resolved by external collaborators keyed
// by the shard's owned entity identifiers.
type Shard struct {
	ID      string       // Unique shard identifier within its cluster
	Region  geom.Region  // The axis-aligned region this shard is responsible for
	players track.Set    // Player identifiers currently owned
	objects track.Set    // Object identifiers currently owned
	stats   Stats        // Operation counters, updated atomically
	state   State        // Current lifecycle state
	mu      sync.RWMutex // Protects state changes
}

// Stats tracks operational statistics for a shard
type Stats struct {
	Events    uint64 // Number of events evaluated
	Overflows uint64 // Number of events that signalled overflow
}

// Info contains metadata about a shard
type Info struct {
	ID        string      `json:"id"`        // Shard identifier
	Region    geom.Region `json:"region"`    // Owned region
	State     State       `json:"state"`     // Current state
	Players   int         `json:"players"`   // Number of tracked players
	Objects   int         `json:"objects"`   // Number of tracked objects
	Events    uint64      `json:"events"`    // Events evaluated
	Overflows uint64      `json:"overflows"` // Overflows signalled
}

// New creates an active shard over the given region.
// An empty id is replaced with a generated UUID.
func New(id string, region geom.Region) *Shard {
	if id == "" {
		id = uuid.NewString()
	}
	return &Shard{
		ID:      id,
		Region:  region,
		players: track.NewMemorySet(),
		objects: track.NewMemorySet(),
		state:   StateActive,
	}
}

// ProcessEvent evaluates whether the event's effect breaches this shard's
// declared bounds and returns the overflow signal. Two independent
// conditions are ORed:
//
//  1. out-of-bounds: the event origin lies outside the shard's region
//  2. boundary-breach: the effect radius exceeds half of the region's
//     smallest axis extent, so the effect sphere could not fit inside the
//     shard even if centered
//
// The breach check is a conservative, axis-extent-based approximation of
// "this event's influence likely crosses into neighboring shards".
// No entity state is mutated.
func (s *Shard) ProcessEvent(e event.Event) bool {
	atomic.AddUint64(&s.stats.Events, 1)

	overflow := !s.Region.Contains(e.Position) ||
		e.Radius > s.Region.SmallestExtent()/2

	if overflow {
		atomic.AddUint64(&s.stats.Overflows, 1)
	}
	return overflow
}

// AddEntity tracks an entity identifier under the given kind
// Idempotent: re-adding a tracked identifier is a no-op
func (s *Shard) AddEntity(kind EntityKind, id string) error {
	set, err := s.setFor(kind)
	if err != nil {
		return err
	}
	set.Add(id)
	return nil
}

// RemoveEntity stops tracking an entity identifier under the given kind
// Idempotent: removing an absent identifier is a no-op
func (s *Shard) RemoveEntity(kind EntityKind, id string) error {
	set, err := s.setFor(kind)
	if err != nil {
		return err
	}
	set.Remove(id)
	return nil
}

// HasEntity reports whether the identifier is tracked under the given kind
func (s *Shard) HasEntity(kind EntityKind, id string) bool {
	set, err := s.setFor(kind)
	if err != nil {
		return false
	}
	return set.Contains(id)
}

// Entities returns all tracked identifiers of the given kind
func (s *Shard) Entities(kind EntityKind) []string {
	set, err := s.setFor(kind)
	if err != nil {
		return nil
	}
	return set.List()
}

func (s *Shard) setFor(kind EntityKind) (track.Set, error) {
	switch kind {
	case KindPlayer:
		return s.players, nil
	case KindObject:
		return s.objects, nil
	default:
		return nil, ErrUnknownKind
	}
}

// GetStats returns current shard statistics
func (s *Shard) GetStats() Stats {
	return Stats{
		Events:    atomic.LoadUint64(&s.stats.Events),
		Overflows: atomic.LoadUint64(&s.stats.Overflows),
	}
}

// Info returns metadata about the shard
func (s *Shard) Info() Info {
	s.mu.RLock()
	state := s.state
	s.mu.RUnlock()

	return Info{
		ID:        s.ID,
		Region:    s.Region,
		State:     state,
		Players:   s.players.Stats().Count,
		Objects:   s.objects.Stats().Count,
		Events:    atomic.LoadUint64(&s.stats.Events),
		Overflows: atomic.LoadUint64(&s.stats.Overflows),
	}
}

// GetState returns the current lifecycle state
func (s *Shard) GetState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetState updates the shard lifecycle state
func (s *Shard) SetState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}
