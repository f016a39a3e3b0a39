package drift

import (
	"math"
	"time"
)

// stickyReach is the touch-distance multiple within which pairs cohere.
const stickyReach = 1.1

// Sticky makes touching circles move together: it pulls each pair toward a
// shared velocity and bleeds off absolute velocity to stop sliding. The
// budget policy matches NBody.
type Sticky struct {
	Enabled  bool
	Strength float64
	Budget   time.Duration
	Clock    Clock
}

// DefaultSticky returns a disabled sticky force with the stock tuning.
func DefaultSticky() Sticky {
	return Sticky{Strength: 0.15, Budget: DefaultPairwiseBudget}
}

// Apply dampens relative velocity of touching affected pairs. It reports
// whether the budget cut the loop short.
func (s *Sticky) Apply(circles []Circle, mask []bool) bool {
	if !s.Enabled {
		return false
	}
	b := startBudget(s.Budget, s.Clock)
	absDamping := 1 - s.Strength*0.5

	for i := 0; i < len(circles); i++ {
		if i%budgetCheckStride == 0 && b.exceeded() {
			return true
		}
		a := &circles[i]
		for j := i + 1; j < len(circles); j++ {
			if !mask[i] && !mask[j] {
				continue
			}
			o := &circles[j]
			dx := o.X - a.X
			dy := o.Y - a.Y
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist >= (a.R+o.R)*stickyReach {
				continue
			}

			relVX := o.VX - a.VX
			relVY := o.VY - a.VY
			if mask[i] {
				a.VX = (a.VX + relVX*s.Strength) * absDamping
				a.VY = (a.VY + relVY*s.Strength) * absDamping
			}
			if mask[j] {
				o.VX = (o.VX - relVX*s.Strength) * absDamping
				o.VY = (o.VY - relVY*s.Strength) * absDamping
			}
		}
	}
	return false
}
