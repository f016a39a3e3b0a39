package drift

import (
	"math"
	"math/rand/v2"
)

// Radius limits enforced by every scaling operation.
const (
	MinRadius = 5.0
	MaxRadius = 200.0
)

// distanceEpsilon replaces a zero center-to-center distance so normals stay finite.
const distanceEpsilon = 1e-4

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// IntersectsDisk reports whether the disk centered at (cx, cy) with radius r
// touches the rectangle. The test clamps the center to the rectangle and
// compares the squared distance to the closest point.
func (r Rect) IntersectsDisk(cx, cy, radius float64) bool {
	closestX := math.Max(r.X, math.Min(cx, r.X+r.Width))
	closestY := math.Max(r.Y, math.Min(cy, r.Y+r.Height))
	dx := cx - closestX
	dy := cy - closestY
	return dx*dx+dy*dy <= radius*radius
}

// Range is a general-purpose min/max range.
type Range struct {
	Min, Max float64
}

// Random returns a random float64 in [Min, Max) drawn from rng, or from the
// global source when rng is nil.
func (r Range) Random(rng *rand.Rand) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	return r.Min + float64n(rng)*(r.Max-r.Min)
}

// float64n draws from rng, falling back to the global source.
func float64n(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.Float64()
	}
	return rng.Float64()
}

// clamp limits v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// lerp linearly interpolates between a and b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
