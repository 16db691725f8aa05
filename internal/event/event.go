// Package event defines the spatial events the hierarchy propagates and
// the optional per-type JSON Schema validation applied to their payloads.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/dreamware/worldmesh/internal/geom"
)

// ErrInvalidEvent is returned when an event violates its construction
// contract (negative, NaN, or infinite effect radius, or an empty type)
var ErrInvalidEvent = errors.New("invalid event")

// Event is the unit the propagation protocol routes: a typed spatial
// occurrence with an origin and a radius of effect. Events are immutable
// values; the payload is opaque to the routing core and only interpreted
// by gameplay collaborators.
type Event struct {
	ID       string          `json:"id"`       // Unique per event instance
	Type     string          `json:"type"`     // Type tag, e.g. "explosion"
	Position geom.Vec3       `json:"position"` // Origin in world space
	Radius   float64         `json:"radius"`   // Effect radius, >= 0
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// New constructs a validated event. Malformed events are rejected here
// rather than discovered mid-propagation: a negative, NaN, or infinite
// radius returns ErrInvalidEvent (NaN in particular would fail every
// geometric comparison downstream). An empty id is replaced with a
// generated UUID.
func New(id, eventType string, pos geom.Vec3, radius float64, payload json.RawMessage) (Event, error) {
	if radius < 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return Event{}, fmt.Errorf("%w: radius %g", ErrInvalidEvent, radius)
	}
	if eventType == "" {
		return Event{}, fmt.Errorf("%w: empty type", ErrInvalidEvent)
	}
	if id == "" {
		id = uuid.NewString()
	}
	return Event{
		ID:       id,
		Type:     eventType,
		Position: pos,
		Radius:   radius,
		Payload:  payload,
	}, nil
}

// Bounds derives the event's effective bounding box: the origin expanded
// by the effect radius on every axis. Used for shard intersection tests.
func (e Event) Bounds() geom.Region {
	point := geom.Region{Min: e.Position, Max: e.Position}
	return point.ExpandedBy(e.Radius)
}

// String formats the event for logs
func (e Event) String() string {
	return fmt.Sprintf("<Event %s type=%s pos=(%g,%g,%g) r=%g>",
		e.ID, e.Type, e.Position.X, e.Position.Y, e.Position.Z, e.Radius)
}
