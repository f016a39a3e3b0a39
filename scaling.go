package drift

import (
	"math"
	"math/rand/v2"
)

// UniformScaler grows or shrinks every affected circle while its slider is
// held. Slider is in [-1, 1]; the per-tick factor is 1 + Slider*0.02.
type UniformScaler struct {
	Active bool
	Slider float64
}

// Apply scales affected circles by the current factor.
func (u *UniformScaler) Apply(circles []Circle, mask []bool) {
	if !u.Active || u.Slider == 0 {
		return
	}
	factor := 1 + u.Slider*0.02
	for i := range circles {
		if mask[i] {
			circles[i].ScaleRadius(factor)
		}
	}
}

// RandomScaler applies a noisy, biased per-circle scale each tick. About one
// circle in ten gets a 2.5x spike so the growth pops instead of creeping.
type RandomScaler struct {
	Active bool
	Slider float64
	// Rand is the random source; nil uses the global source.
	Rand *rand.Rand
}

// Apply scales each affected circle by an independent random factor biased
// in the slider's direction.
func (r *RandomScaler) Apply(circles []Circle, mask []bool) {
	if !r.Active || r.Slider == 0 {
		return
	}
	intensity := math.Abs(r.Slider)
	direction := 1.0
	if r.Slider < 0 {
		direction = -1
	}
	for i := range circles {
		if !mask[i] {
			continue
		}
		v := (float64n(r.Rand)-0.5)*2 + direction*0.3
		if float64n(r.Rand) < 0.1 {
			v *= 2.5
		}
		circles[i].ScaleRadius(1 + v*intensity*0.15)
	}
}

// Pinch sets c's radius to initialRadius*scale, clamped, for a two-finger
// gesture that started when c had initialRadius.
func Pinch(c *Circle, initialRadius, scale float64) {
	c.SetRadius(clamp(initialRadius*scale, MinRadius, MaxRadius))
}
