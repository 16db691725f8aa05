// Package geom provides the 3D primitives the sharding hierarchy is built
// on: points in world space and axis-aligned bounding regions, with the
// containment and intersection tests used for event dispatch.
package geom

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRegion is returned when a region's min corner exceeds its max
// corner on any axis
var ErrInvalidRegion = errors.New("region min exceeds max")

// Vec3 is a point in 3D world space
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Region is an axis-aligned bounding box over 3D space.
// Regions are immutable after construction; all methods are value receivers
// and derive new regions rather than mutating.
type Region struct {
	Min Vec3 `json:"min"` // Minimum corner, inclusive
	Max Vec3 `json:"max"` // Maximum corner, inclusive
}

// NewRegion creates a region from two corners
// Returns ErrInvalidRegion if min exceeds max on any axis
func NewRegion(min, max Vec3) (Region, error) {
	if min.X > max.X || min.Y > max.Y || min.Z > max.Z {
		return Region{}, fmt.Errorf("%w: min=%v max=%v", ErrInvalidRegion, min, max)
	}
	return Region{Min: min, Max: max}, nil
}

// Contains reports whether point lies within the region
// Bounds are inclusive on all three axes, so boundary points count
func (r Region) Contains(p Vec3) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X &&
		p.Y >= r.Min.Y && p.Y <= r.Max.Y &&
		p.Z >= r.Min.Z && p.Z <= r.Max.Z
}

// Intersects reports whether the two regions overlap on all three axes.
// Bounds are inclusive, so regions that merely touch count as intersecting.
// The test is symmetric: a.Intersects(b) == b.Intersects(a)
func (r Region) Intersects(other Region) bool {
	return r.Min.X <= other.Max.X && r.Max.X >= other.Min.X &&
		r.Min.Y <= other.Max.Y && r.Max.Y >= other.Min.Y &&
		r.Min.Z <= other.Max.Z && r.Max.Z >= other.Min.Z
}

// ExpandedBy derives a region grown by radius on every axis in both
// directions. Callers guarantee radius >= 0 (enforced at event construction),
// so no clamping is performed here.
func (r Region) ExpandedBy(radius float64) Region {
	return Region{
		Min: Vec3{X: r.Min.X - radius, Y: r.Min.Y - radius, Z: r.Min.Z - radius},
		Max: Vec3{X: r.Max.X + radius, Y: r.Max.Y + radius, Z: r.Max.Z + radius},
	}
}

// SmallestExtent returns the length of the region's shortest axis
func (r Region) SmallestExtent() float64 {
	return math.Min(r.Max.X-r.Min.X, math.Min(r.Max.Y-r.Min.Y, r.Max.Z-r.Min.Z))
}

// String formats the region for logs
func (r Region) String() string {
	return fmt.Sprintf("[%g,%g,%g]-[%g,%g,%g]", r.Min.X, r.Min.Y, r.Min.Z, r.Max.X, r.Max.Y, r.Max.Z)
}
