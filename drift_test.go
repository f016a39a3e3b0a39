package drift

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertWithin(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v (±%v)", name, got, want, tol)
	}
}

// fakeClock is a manually advanced Clock.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1000, 0)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func (c *fakeClock) AdvanceMS(ms float64) {
	c.Advance(time.Duration(ms * float64(time.Millisecond)))
}

// steppingClock returns a Clock that moves forward by step on every read.
func steppingClock(step time.Duration) Clock {
	now := time.Unix(1000, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

// --- Rect ---

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 20, Height: 20}
	tests := []struct {
		x, y float64
		want bool
	}{
		{15, 15, true},
		{10, 10, true},
		{30, 30, true},
		{9.9, 15, false},
		{15, 30.1, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRectIntersects(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	if !a.Intersects(Rect{X: 5, Y: 5, Width: 10, Height: 10}) {
		t.Error("overlapping rects should intersect")
	}
	if !a.Intersects(Rect{X: 10, Y: 0, Width: 10, Height: 10}) {
		t.Error("edge-adjacent rects should intersect")
	}
	if a.Intersects(Rect{X: 11, Y: 0, Width: 10, Height: 10}) {
		t.Error("separate rects should not intersect")
	}
}

func TestRectIntersectsDisk(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	tests := []struct {
		name      string
		cx, cy, r float64
		want      bool
	}{
		{"inside", 50, 50, 1, true},
		{"touching left edge", -5, 50, 5, true},
		{"near corner miss", -4, -4, 5, false},
		{"near corner hit", -3, -3, 5, true},
		{"far away", 200, 200, 10, false},
	}
	for _, tt := range tests {
		if got := r.IntersectsDisk(tt.cx, tt.cy, tt.r); got != tt.want {
			t.Errorf("%s: IntersectsDisk = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRangeRandom(t *testing.T) {
	rng := testRand()
	r := Range{Min: 10, Max: 100}
	for range 200 {
		v := r.Random(rng)
		if v < 10 || v >= 100 {
			t.Fatalf("Random() = %v, outside [10, 100)", v)
		}
	}
	assertNear(t, "degenerate", Range{Min: 7, Max: 7}.Random(rng), 7)
}

func TestClamp(t *testing.T) {
	assertNear(t, "below", clamp(-1, 0, 1), 0)
	assertNear(t, "above", clamp(2, 0, 1), 1)
	assertNear(t, "inside", clamp(0.25, 0, 1), 0.25)
}
