package drift

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// turbulencePhaseStep scales Frequency into the per-tick phase advance.
const turbulencePhaseStep = 0.01

// NoiseField maps a noise-space coordinate to a force direction with
// magnitude in [0, 1]. Implementations must be spatially and temporally
// smooth so turbulence reads as drifting currents rather than jitter.
type NoiseField interface {
	Sample(nx, ny float64) (fx, fy float64)
}

// SineField is a cheap stand-in for gradient noise built from products of
// sines and cosines at unrelated frequencies. It is smooth but not isotropic.
type SineField struct{}

// Sample implements NoiseField.
func (SineField) Sample(nx, ny float64) (float64, float64) {
	angle := (math.Sin(nx*1.7)*math.Cos(ny*1.3) + 0.5*math.Sin(nx*0.6+ny*2.1)) * math.Pi
	mag := 0.5 + 0.5*math.Sin(nx*0.9-ny*1.1)
	return math.Cos(angle) * mag, math.Sin(angle) * mag
}

// PerlinField samples real gradient noise. Direction and magnitude come from
// two decorrelated slices of the same generator.
type PerlinField struct {
	p *perlin.Perlin
}

// NewPerlinField creates a Perlin-backed field with the given seed.
func NewPerlinField(seed int64) *PerlinField {
	return &PerlinField{p: perlin.NewPerlin(2, 2, 3, seed)}
}

// Sample implements NoiseField.
func (f *PerlinField) Sample(nx, ny float64) (float64, float64) {
	angle := f.p.Noise2D(nx, ny) * 2 * math.Pi
	mag := clamp(0.5+f.p.Noise2D(nx+71.3, ny-19.7), 0, 1)
	return math.Cos(angle) * mag, math.Sin(angle) * mag
}

// Turbulence pushes circles along a drifting noise field. Its phase is the
// only force state carried between ticks.
type Turbulence struct {
	Enabled   bool
	Strength  float64
	Scale     float64 // spatial wavelength in pixels
	Frequency float64 // phase advance rate
	Field     NoiseField

	phase float64
}

// DefaultTurbulence returns disabled turbulence with the stock tuning and the
// sine field.
func DefaultTurbulence() Turbulence {
	return Turbulence{Strength: 2, Scale: 100, Frequency: 0.5, Field: SineField{}}
}

// Phase returns the accumulated noise phase.
func (t *Turbulence) Phase() float64 {
	return t.phase
}

// Apply advances the phase and adds the field force to affected circles.
// Smaller circles are pushed harder.
func (t *Turbulence) Apply(circles []Circle, mask []bool) {
	if !t.Enabled {
		return
	}
	t.phase += t.Frequency * turbulencePhaseStep

	field := t.Field
	if field == nil {
		field = SineField{}
	}
	scale := t.Scale
	if scale <= 0 {
		scale = 100
	}
	for i := range circles {
		if !mask[i] {
			continue
		}
		c := &circles[i]
		nx := c.X/scale + t.phase
		ny := c.Y/scale + t.phase*0.7
		fx, fy := field.Sample(nx, ny)
		force := t.Strength * 0.1 / math.Sqrt(math.Max(c.R, MinRadius))
		c.VX += fx * force
		c.VY += fy * force
	}
}
