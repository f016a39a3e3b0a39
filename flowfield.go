package drift

import (
	"math"

	"github.com/google/uuid"
)

const (
	defaultFlowStrength = 0.15
	defaultFlowRadius   = 100.0

	// DefaultEraseRadius is the proximity used by RemoveFlowVectorAt when
	// the caller passes a non-positive radius.
	DefaultEraseRadius = 80.0
)

// FlowVector is a directional emitter. Circles within the system's
// FlowRadius are nudged along Angle.
type FlowVector struct {
	ID    uuid.UUID
	X, Y  float64
	Angle float64 // radians
}

// AddFlowVector places a new emitter and returns it.
func (s *System) AddFlowVector(x, y, angle float64) FlowVector {
	fv := FlowVector{ID: uuid.New(), X: x, Y: y, Angle: angle}
	s.flowVectors = append(s.flowVectors, fv)
	return fv
}

// FlowVectors returns a copy of the current emitters.
func (s *System) FlowVectors() []FlowVector {
	out := make([]FlowVector, len(s.flowVectors))
	copy(out, s.flowVectors)
	return out
}

// RemoveFlowVectorAt deletes the most recently added emitter within radius of
// (x, y). It reports whether one was removed.
func (s *System) RemoveFlowVectorAt(x, y, radius float64) bool {
	if radius <= 0 {
		radius = DefaultEraseRadius
	}
	r2 := radius * radius
	for i := len(s.flowVectors) - 1; i >= 0; i-- {
		fv := s.flowVectors[i]
		dx := x - fv.X
		dy := y - fv.Y
		if dx*dx+dy*dy < r2 {
			s.flowVectors = append(s.flowVectors[:i], s.flowVectors[i+1:]...)
			return true
		}
	}
	return false
}

// ClearFlowField removes every emitter.
func (s *System) ClearFlowField() {
	s.flowVectors = s.flowVectors[:0]
}

// ApplyFlowField nudges affected circles along every emitter within range.
func (s *System) ApplyFlowField(circles []Circle, mask []bool) {
	if len(s.flowVectors) == 0 {
		return
	}
	r2 := s.FlowRadius * s.FlowRadius
	for i := range circles {
		if !mask[i] {
			continue
		}
		c := &circles[i]
		for _, fv := range s.flowVectors {
			dx := c.X - fv.X
			dy := c.Y - fv.Y
			if dx*dx+dy*dy >= r2 {
				continue
			}
			c.VX += math.Cos(fv.Angle) * s.FlowStrength
			c.VY += math.Sin(fv.Angle) * s.FlowStrength
		}
	}
}
