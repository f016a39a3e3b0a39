package drift

import "math"

// MagnetMode selects the magnet's behavior.
type MagnetMode uint8

const (
	MagnetOff     MagnetMode = iota // no force
	MagnetAttract                   // pull circles toward the magnet
	MagnetRepel                     // push circles away from the magnet
)

// String returns the lowercase mode name.
func (m MagnetMode) String() string {
	switch m {
	case MagnetAttract:
		return "attract"
	case MagnetRepel:
		return "repel"
	default:
		return "off"
	}
}

// Magnet is a radial force centered on a point (typically the pointer).
// Force falls off linearly to zero at Radius; smaller circles respond more.
type Magnet struct {
	Mode     MagnetMode
	Active   bool // pointer held
	X, Y     float64
	Radius   float64
	Strength float64
}

// DefaultMagnet returns an inactive magnet with the stock tuning.
func DefaultMagnet() Magnet {
	return Magnet{Radius: 200, Strength: 3}
}

// Apply adds the magnet's pull or push to affected circles in range.
func (m *Magnet) Apply(circles []Circle, mask []bool) {
	if m.Mode == MagnetOff || !m.Active || m.Radius <= 0 {
		return
	}
	sign := 1.0
	if m.Mode == MagnetRepel {
		sign = -1
	}
	for i := range circles {
		if !mask[i] {
			continue
		}
		c := &circles[i]
		dx := m.X - c.X
		dy := m.Y - c.Y
		dist := math.Sqrt(dx*dx + dy*dy)
		if dist >= m.Radius || dist <= 0.01 {
			continue
		}
		falloff := 1 - dist/m.Radius
		responsiveness := 1 / math.Sqrt(math.Max(MinRadius, c.R))
		force := sign * m.Strength * falloff * responsiveness
		c.VX += dx / dist * force
		c.VY += dy / dist * force
	}
}
