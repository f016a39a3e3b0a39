package drift

import (
	"math"
	"time"
)

// NBodyMode selects pairwise attraction or repulsion.
type NBodyMode uint8

const (
	NBodyOff    NBodyMode = iota // no force
	NBodyClump                   // pairs attract until nearly touching
	NBodySpread                  // nearby pairs repel
)

// String returns the lowercase mode name.
func (m NBodyMode) String() string {
	switch m {
	case NBodyClump:
		return "clump"
	case NBodySpread:
		return "spread"
	default:
		return "off"
	}
}

// Distance windows, as multiples of the pair's touch distance.
const (
	clumpMinTouch  = 1.2
	spreadMaxTouch = 3.0
)

// NBody applies pairwise clump or spread forces. Each circle receives force
// proportional to its own radius, so larger circles push and get pushed more.
//
// Budget bounds the O(n²) loop. The clock is read every 50 outer iterations;
// once over budget the remaining pairs are skipped for this tick, so with
// many circles the later indices can go without force for a frame.
type NBody struct {
	Mode     NBodyMode
	Strength float64
	Budget   time.Duration
	Clock    Clock
}

// DefaultNBody returns a disabled n-body force with the stock tuning.
func DefaultNBody() NBody {
	return NBody{Strength: 1.5, Budget: DefaultPairwiseBudget}
}

// Apply accumulates the pairwise force into affected circles' velocities.
// It reports whether the budget cut the loop short.
func (n *NBody) Apply(circles []Circle, mask []bool) bool {
	if n.Mode == NBodyOff {
		return false
	}
	direction := 1.0
	if n.Mode == NBodySpread {
		direction = -1
	}
	b := startBudget(n.Budget, n.Clock)

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
			if dist < 0.01 {
				dist = 0.01
			}
			touch := a.R + o.R
			if n.Mode == NBodyClump && dist < touch*clumpMinTouch {
				continue
			}
			if n.Mode == NBodySpread && dist > touch*spreadMaxTouch {
				continue
			}

			base := n.Strength * 0.002 / math.Max(dist, 30)
			nx := dx / dist
			ny := dy / dist
			if mask[i] {
				f := direction * base * a.R
				a.VX += nx * f
				a.VY += ny * f
			}
			if mask[j] {
				f := direction * base * o.R
				o.VX -= nx * f
				o.VY -= ny * f
			}
		}
	}
	return false
}
