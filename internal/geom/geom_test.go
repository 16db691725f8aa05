package geom

import (
	"errors"
	"testing"
)

// TestNewRegion tests region construction and the min<=max invariant
func TestNewRegion(t *testing.T) {
	tests := []struct {
		name    string
		min     Vec3
		max     Vec3
		wantErr bool
	}{
		{
			name: "valid region",
			min:  Vec3{0, 0, 0},
			max:  Vec3{100, 100, 100},
		},
		{
			name: "degenerate region (point)",
			min:  Vec3{5, 5, 5},
			max:  Vec3{5, 5, 5},
		},
		{
			name: "negative coordinates",
			min:  Vec3{-100, -50, -10},
			max:  Vec3{-10, 0, 10},
		},
		{
			name:    "min exceeds max on x",
			min:     Vec3{10, 0, 0},
			max:     Vec3{0, 100, 100},
			wantErr: true,
		},
		{
			name:    "min exceeds max on y",
			min:     Vec3{0, 10, 0},
			max:     Vec3{100, 0, 100},
			wantErr: true,
		},
		{
			name:    "min exceeds max on z",
			min:     Vec3{0, 0, 10},
			max:     Vec3{100, 100, 0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegion(tt.min, tt.max)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRegion) {
					t.Errorf("Expected ErrInvalidRegion, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

// TestRegionContains tests point containment with inclusive bounds
func TestRegionContains(t *testing.T) {
	region, err := NewRegion(Vec3{0, 0, 0}, Vec3{100, 100, 100})
	if err != nil {
		t.Fatalf("NewRegion: %v", err)
	}

	tests := []struct {
		name  string
		point Vec3
		want  bool
	}{
		{"interior point", Vec3{50, 50, 50}, true},
		{"min corner is contained", Vec3{0, 0, 0}, true},
		{"max corner is contained", Vec3{100, 100, 100}, true},
		{"boundary face is contained", Vec3{100, 50, 50}, true},
		{"boundary edge is contained", Vec3{0, 100, 50}, true},
		{"outside on x", Vec3{101, 50, 50}, false},
		{"outside on y", Vec3{50, -1, 50}, false},
		{"outside on z", Vec3{50, 50, 100.5}, false},
		{"far outside", Vec3{150, 150, 150}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := region.Contains(tt.point); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.point, got, tt.want)
			}
		})
	}
}

// TestRegionIntersects tests box overlap including the touching case
func TestRegionIntersects(t *testing.T) {
	mustRegion := func(min, max Vec3) Region {
		r, err := NewRegion(min, max)
		if err != nil {
			t.Fatalf("NewRegion: %v", err)
		}
		return r
	}

	a := mustRegion(Vec3{0, 0, 0}, Vec3{100, 100, 100})

	tests := []struct {
		name  string
		other Region
		want  bool
	}{
		{"overlapping", mustRegion(Vec3{50, 50, 50}, Vec3{150, 150, 150}), true},
		{"contained entirely", mustRegion(Vec3{10, 10, 10}, Vec3{20, 20, 20}), true},
		{"touching on a face counts", mustRegion(Vec3{100, 0, 0}, Vec3{200, 100, 100}), true},
		{"touching at a corner counts", mustRegion(Vec3{100, 100, 100}, Vec3{200, 200, 200}), true},
		{"disjoint", mustRegion(Vec3{200, 200, 200}, Vec3{300, 300, 300}), false},
		{"overlap on two axes only", mustRegion(Vec3{50, 50, 101}, Vec3{150, 150, 200}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersects(tt.other); got != tt.want {
				t.Errorf("Intersects = %v, want %v", got, tt.want)
			}
			// Intersection must be symmetric
			if got := tt.other.Intersects(a); got != tt.want {
				t.Errorf("reverse Intersects = %v, want %v (symmetry violated)", got, tt.want)
			}
		})
	}

	// Reflexivity for a non-degenerate box
	if !a.Intersects(a) {
		t.Error("Expected region to intersect itself")
	}
}

// TestRegionExpandedBy tests deriving an event's effective bounds
func TestRegionExpandedBy(t *testing.T) {
	region, _ := NewRegion(Vec3{10, 10, 10}, Vec3{20, 20, 20})

	expanded := region.ExpandedBy(5)
	if expanded.Min != (Vec3{5, 5, 5}) {
		t.Errorf("Expected min (5,5,5), got %v", expanded.Min)
	}
	if expanded.Max != (Vec3{25, 25, 25}) {
		t.Errorf("Expected max (25,25,25), got %v", expanded.Max)
	}

	// Zero radius must be a no-op
	if region.ExpandedBy(0) != region {
		t.Error("Expected ExpandedBy(0) to equal the original region")
	}

	// Original region must be untouched
	if region.Min != (Vec3{10, 10, 10}) || region.Max != (Vec3{20, 20, 20}) {
		t.Error("Expected source region to be immutable")
	}
}

// TestRegionSmallestExtent tests the shortest-axis length used by the
// boundary-breach check
func TestRegionSmallestExtent(t *testing.T) {
	tests := []struct {
		name string
		min  Vec3
		max  Vec3
		want float64
	}{
		{"cube", Vec3{0, 0, 0}, Vec3{100, 100, 100}, 100},
		{"flat on y", Vec3{0, 0, 0}, Vec3{100, 10, 100}, 10},
		{"degenerate", Vec3{5, 5, 5}, Vec3{5, 5, 5}, 0},
		{"negative corner", Vec3{-50, -20, -10}, Vec3{50, 20, 30}, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region, err := NewRegion(tt.min, tt.max)
			if err != nil {
				t.Fatalf("NewRegion: %v", err)
			}
			if got := region.SmallestExtent(); got != tt.want {
				t.Errorf("SmallestExtent() = %g, want %g", got, tt.want)
			}
		})
	}
}
