package drift

import (
	"math"
	"time"
)

// PhysicsConfig holds the world switches read every tick.
type PhysicsConfig struct {
	GravityEnabled  bool
	GravityStrength float64
	FloorEnabled    bool
	FloorY          float64
	WallsEnabled    bool
	// Damping is the per-tick velocity multiplier, in (0, 1].
	Damping float64
}

// DefaultPhysicsConfig returns the world settings used by a new System.
func DefaultPhysicsConfig() PhysicsConfig {
	return PhysicsConfig{
		GravityStrength: 0.5,
		FloorY:          500,
		WallsEnabled:    true,
		Damping:         0.94,
	}
}

// DefaultQuadtreeThreshold is the circle count above which collision passes
// use the quadtree instead of the nested loop.
const DefaultQuadtreeThreshold = 50

// TickStats describes the work done by one System.Update.
type TickStats struct {
	Circles        int
	Passes         int
	Pairs          int
	UsedQuadtree   bool
	BudgetExceeded bool
	Elapsed        time.Duration
}

// System runs gravity, collision resolution, integration, and boundary
// handling over a borrowed circle slice. Forces are applied by the caller
// before Update; see Simulation for the composed tick.
type System struct {
	Config    PhysicsConfig
	Collision CollisionConfig
	Bounds    Rect

	QuadtreeThreshold int
	TickBudget        time.Duration

	// Flow field tuning.
	FlowStrength float64
	FlowRadius   float64

	Clock Clock

	flowVectors []FlowVector
	bp          broadphase
}

// NewSystem creates a System with default settings and an 800x600 canvas.
func NewSystem() *System {
	return &System{
		Config:            DefaultPhysicsConfig(),
		Collision:         DefaultCollisionConfig(),
		Bounds:            Rect{Width: 800, Height: 600},
		QuadtreeThreshold: DefaultQuadtreeThreshold,
		TickBudget:        DefaultTickBudget,
		FlowStrength:      defaultFlowStrength,
		FlowRadius:        defaultFlowRadius,
		Clock:             time.Now,
	}
}

// SetBounds sets the canvas rectangle used by walls and the quadtree.
func (s *System) SetBounds(x, y, width, height float64) {
	s.Bounds = Rect{X: x, Y: y, Width: width, Height: height}
}

// Update advances circles by one tick. mask[i] reports whether circles[i]
// may be mutated; a nil mask treats every unlocked, non-dragged circle as
// affected.
func (s *System) Update(circles []Circle, mask []bool) TickStats {
	if mask == nil {
		mask = FreeMask(circles)
	}
	b := startBudget(s.TickBudget, s.Clock)
	stats := TickStats{Circles: len(circles)}

	s.applyGravity(circles, mask)
	s.resolveCollisions(circles, mask, b, &stats)
	s.integrate(circles, mask)
	s.handleBoundaries(circles, mask)

	stats.Elapsed = b.elapsed()
	return stats
}

// applyGravity accelerates affected circles downward. Smaller circles fall
// faster.
func (s *System) applyGravity(circles []Circle, mask []bool) {
	if !s.Config.GravityEnabled {
		return
	}
	for i := range circles {
		if !mask[i] {
			continue
		}
		c := &circles[i]
		c.VY += 2 * s.Config.GravityStrength / math.Max(c.R, 1)
	}
}

func (s *System) resolveCollisions(circles []Circle, mask []bool, b budget, stats *TickStats) {
	iterations := s.Collision.Iterations
	if iterations <= 0 {
		return
	}
	threshold := s.QuadtreeThreshold
	if threshold <= 0 {
		threshold = DefaultQuadtreeThreshold
	}
	stats.UsedQuadtree = len(circles) > threshold

	for pass := 0; pass < iterations; pass++ {
		if pass > 0 && b.exceeded() {
			stats.BudgetExceeded = true
			return
		}
		if stats.UsedQuadtree {
			stats.Pairs += s.bp.resolveQuadtree(circles, mask, s.Collision, s.Bounds)
		} else {
			stats.Pairs += resolveBruteForce(circles, mask, s.Collision)
		}
		stats.Passes++
	}
}

// integrate damps velocity then moves each affected circle.
func (s *System) integrate(circles []Circle, mask []bool) {
	damping := s.Config.Damping
	for i := range circles {
		if !mask[i] {
			continue
		}
		c := &circles[i]
		c.VX *= damping
		c.VY *= damping
		c.X += c.VX
		c.Y += c.VY
	}
}

// handleBoundaries bounces affected circles off the floor line and the canvas
// walls, keeping Restitution of the normal velocity.
func (s *System) handleBoundaries(circles []Circle, mask []bool) {
	bounce := -s.Collision.Restitution
	bx, by := s.Bounds.X, s.Bounds.Y
	right := bx + s.Bounds.Width
	bottom := by + s.Bounds.Height

	for i := range circles {
		if !mask[i] {
			continue
		}
		c := &circles[i]

		if s.Config.FloorEnabled && c.Y+c.R > s.Config.FloorY {
			c.Y = s.Config.FloorY - c.R
			if c.VY > 0 {
				c.VY *= bounce
			}
		}

		if !s.Config.WallsEnabled {
			continue
		}
		if c.X-c.R < bx {
			c.X = bx + c.R
			if c.VX < 0 {
				c.VX *= bounce
			}
		}
		if c.X+c.R > right {
			c.X = right - c.R
			if c.VX > 0 {
				c.VX *= bounce
			}
		}
		if c.Y-c.R < by {
			c.Y = by + c.R
			if c.VY < 0 {
				c.VY *= bounce
			}
		}
		if c.Y+c.R > bottom {
			c.Y = bottom - c.R
			if c.VY > 0 {
				c.VY *= bounce
			}
		}
	}
}
