package drift

import (
	"math"
	"testing"
)

func jitteryKeyframes() []Keyframe {
	xs := []float64{0, 20, 0, 20, 0, 20, 0}
	kfs := make([]Keyframe, len(xs))
	for i, x := range xs {
		kfs[i] = Keyframe{
			Time:    float64(i) * 33,
			Circles: []CircleSnapshot{snap(1, x, 50, 10+float64(i%2)*4)},
		}
	}
	return kfs
}

func TestSmoothZeroStrengthIsIdentity(t *testing.T) {
	kfs := jitteryKeyframes()
	out := SmoothKeyframes(kfs, 0)
	for i := range kfs {
		for j := range kfs[i].Circles {
			if out[i].Circles[j] != kfs[i].Circles[j] {
				t.Errorf("frame %d: %+v, want %+v", i, out[i].Circles[j], kfs[i].Circles[j])
			}
		}
	}
}

func TestSmoothReducesJitter(t *testing.T) {
	kfs := jitteryKeyframes()
	out := SmoothKeyframes(kfs, 0.6)

	variation := func(frames []Keyframe) float64 {
		total := 0.0
		for i := 1; i < len(frames); i++ {
			total += math.Abs(frames[i].Circles[0].X - frames[i-1].Circles[0].X)
		}
		return total
	}
	if variation(out) >= variation(kfs) {
		t.Errorf("variation %v should drop below %v", variation(out), variation(kfs))
	}
	if len(out) != len(kfs) {
		t.Fatalf("frames = %d, want %d", len(out), len(kfs))
	}
	for i := range out {
		if len(out[i].Circles) != 1 || out[i].Circles[0].ID != kfs[i].Circles[0].ID {
			t.Errorf("frame %d ids changed: %+v", i, out[i].Circles)
		}
		assertNear(t, "time", out[i].Time, kfs[i].Time)
		assertNear(t, "constant Y", out[i].Circles[0].Y, 50)
	}
	// The input is untouched.
	assertNear(t, "input X", kfs[1].Circles[0].X, 20)
}

func TestSmoothClampsRadius(t *testing.T) {
	kfs := []Keyframe{
		{Time: 0, Circles: []CircleSnapshot{snap(1, 0, 0, 5)}},
		{Time: 33, Circles: []CircleSnapshot{snap(1, 0, 0, 1)}},
		{Time: 66, Circles: []CircleSnapshot{snap(1, 0, 0, 5)}},
	}
	out := SmoothKeyframes(kfs, 0.9)
	for i := range out {
		if out[i].Circles[0].R < MinRadius {
			t.Errorf("frame %d: R = %v", i, out[i].Circles[0].R)
		}
	}
}

func TestSmoothShortInputsUnchanged(t *testing.T) {
	two := jitteryKeyframes()[:2]
	out := SmoothKeyframes(two, 1)
	assertNear(t, "X", out[1].Circles[0].X, 20)

	// A circle in only two of several frames keeps its values.
	kfs := jitteryKeyframes()
	kfs[2].Circles = append(kfs[2].Circles, snap(9, 300, 300, 30))
	kfs[3].Circles = append(kfs[3].Circles, snap(9, 340, 300, 30))
	out = SmoothKeyframes(kfs, 1)
	assertNear(t, "short trajectory X", out[3].Circles[1].X, 340)
}

func TestSmoothAnimationKeepsMetadata(t *testing.T) {
	a := testAnimation(0, 33, 66, 99)
	out := SmoothAnimation(a, DefaultSmoothing)
	if out.Name != a.Name || out.Duration != a.Duration || out.FPS != a.FPS {
		t.Errorf("metadata changed: %+v", out)
	}
	if err := out.Validate(); err != nil {
		t.Error(err)
	}
}

func TestSmoothBidirectionalHasNoLag(t *testing.T) {
	// A symmetric pulse stays symmetric.
	out := smoothBidirectional([]float64{0, 0, 10, 0, 0}, 0.5)
	assertNear(t, "symmetry", out[1], out[3])
	assertNear(t, "symmetry outer", out[0], out[4])
}
