package drift

import (
	"math"
	"sync/atomic"
)

// Circle is a simulated particle. Mass is always R*R; write the radius
// through SetRadius so the two never drift apart.
type Circle struct {
	ID       int64
	X, Y     float64
	VX, VY   float64
	R        float64
	Mass     float64
	Color    string
	Locked   bool
	Dragging bool
	LayerID  string
}

var circleIDs atomic.Int64

// NextCircleID returns a process-unique circle ID.
func NextCircleID() int64 {
	return circleIDs.Add(1)
}

// NewCircle creates a stationary circle at (x, y) with a fresh ID.
func NewCircle(x, y, r float64, color, layerID string) Circle {
	return Circle{
		ID:      NextCircleID(),
		X:       x,
		Y:       y,
		R:       r,
		Mass:    r * r,
		Color:   color,
		LayerID: layerID,
	}
}

// SetRadius stores r and recomputes Mass.
func (c *Circle) SetRadius(r float64) {
	c.R = r
	c.Mass = r * r
}

// ScaleRadius multiplies the radius by factor, clamped to [MinRadius, MaxRadius].
func (c *Circle) ScaleRadius(factor float64) {
	c.SetRadius(clamp(c.R*factor, MinRadius, MaxRadius))
}

// Contains reports whether the point (px, py) lies inside the circle's disk.
func (c *Circle) Contains(px, py float64) bool {
	dx := px - c.X
	dy := py - c.Y
	return dx*dx+dy*dy <= c.R*c.R
}

// Overlaps reports whether the two disks overlap.
func (c *Circle) Overlaps(o *Circle) bool {
	dx := c.X - o.X
	dy := c.Y - o.Y
	return math.Sqrt(dx*dx+dy*dy) < c.R+o.R
}

// Snapshot copies the visual fields of the circle.
func (c *Circle) Snapshot() CircleSnapshot {
	return CircleSnapshot{
		ID:      c.ID,
		X:       c.X,
		Y:       c.Y,
		R:       c.R,
		Color:   c.Color,
		LayerID: c.LayerID,
	}
}

// CircleSet is a host-owned list of circles. The engine borrows Circles()
// for the duration of one call and never keeps the slice.
type CircleSet struct {
	circles []Circle
}

// NewCircleSet creates a set holding a copy of circles.
func NewCircleSet(circles ...Circle) *CircleSet {
	s := &CircleSet{circles: make([]Circle, len(circles))}
	copy(s.circles, circles)
	return s
}

// Circles returns the live backing slice. Mutating elements mutates the set.
func (s *CircleSet) Circles() []Circle {
	return s.circles
}

// Len returns the number of circles.
func (s *CircleSet) Len() int {
	return len(s.circles)
}

// Add appends c unless it overlaps an existing circle. It reports whether
// the circle was placed.
func (s *CircleSet) Add(c Circle) bool {
	for i := range s.circles {
		if c.Overlaps(&s.circles[i]) {
			return false
		}
	}
	s.circles = append(s.circles, c)
	return true
}

// Insert appends c without the overlap check.
func (s *CircleSet) Insert(c Circle) {
	s.circles = append(s.circles, c)
}

// Remove deletes the circle with the given ID, preserving order. It reports
// whether a circle was removed.
func (s *CircleSet) Remove(id int64) bool {
	for i := range s.circles {
		if s.circles[i].ID == id {
			s.circles = append(s.circles[:i], s.circles[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns a pointer to the circle with the given ID, or nil. The pointer
// is invalidated by the next Add, Insert, or Remove.
func (s *CircleSet) Get(id int64) *Circle {
	for i := range s.circles {
		if s.circles[i].ID == id {
			return &s.circles[i]
		}
	}
	return nil
}

// At returns the topmost (last added) circle containing (x, y), or nil.
func (s *CircleSet) At(x, y float64) *Circle {
	for i := len(s.circles) - 1; i >= 0; i-- {
		if s.circles[i].Contains(x, y) {
			return &s.circles[i]
		}
	}
	return nil
}

// Clear removes all circles.
func (s *CircleSet) Clear() {
	s.circles = s.circles[:0]
}
