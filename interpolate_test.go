package drift

import (
	"testing"

	"github.com/tanema/gween/ease"
)

func twoFrames() []Keyframe {
	return []Keyframe{
		{Time: 0, Circles: []CircleSnapshot{snap(1, 0, 0, 10), snap(2, 100, 100, 20)}},
		{Time: 100, Circles: []CircleSnapshot{snap(1, 50, 20, 20), snap(3, 7, 7, 7)}},
	}
}

func TestFrameAtExactKeyframes(t *testing.T) {
	kfs := twoFrames()
	for i, k := range kfs {
		got := FrameAt(kfs, k.Time, nil)
		if len(got) != len(k.Circles) {
			t.Fatalf("frame %d: len = %d", i, len(got))
		}
		for j := range got {
			if got[j] != k.Circles[j] {
				t.Errorf("frame %d circle %d = %+v, want %+v", i, j, got[j], k.Circles[j])
			}
		}
	}
}

func TestFrameAtClampsOutsideRange(t *testing.T) {
	kfs := twoFrames()
	before := FrameAt(kfs, -10, nil)
	assertNear(t, "before X", before[0].X, 0)
	after := FrameAt(kfs, 500, nil)
	assertNear(t, "after X", after[0].X, 50)
	if FrameAt(nil, 0, nil) != nil {
		t.Error("empty keyframes should yield nil")
	}
}

func TestFrameAtInterpolates(t *testing.T) {
	got := FrameAt(twoFrames(), 25, nil)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	// ID 1 is in both frames.
	assertNear(t, "X", got[0].X, 12.5)
	assertNear(t, "Y", got[0].Y, 5)
	assertNear(t, "R", got[0].R, 12.5)
	// ID 2 vanished in the later frame and passes through.
	if got[1] != snap(2, 100, 100, 20) {
		t.Errorf("vanishing circle = %+v", got[1])
	}
	// ID 3 is new and is appended as-is.
	if got[2] != snap(3, 7, 7, 7) {
		t.Errorf("new circle = %+v", got[2])
	}
}

func TestFrameAtReturnsFreshSlice(t *testing.T) {
	kfs := twoFrames()
	got := FrameAt(kfs, 0, nil)
	got[0].X = 999
	assertNear(t, "source X", kfs[0].Circles[0].X, 0)
}

func TestFrameAtEasing(t *testing.T) {
	kfs := twoFrames()
	linear := FrameAt(kfs, 25, ease.Linear)
	assertWithin(t, "linear X", linear[0].X, 12.5, 1e-5)

	eased := FrameAt(kfs, 25, ease.InQuad)
	// InQuad at 0.25 is 0.0625.
	assertWithin(t, "eased X", eased[0].X, 50*0.0625, 1e-5)
}

func TestFrameAtMonotonicTrajectory(t *testing.T) {
	kfs := []Keyframe{
		{Time: 0, Circles: []CircleSnapshot{snap(1, 0, 0, 10)}},
		{Time: 33, Circles: []CircleSnapshot{snap(1, 10, 0, 10)}},
		{Time: 66, Circles: []CircleSnapshot{snap(1, 30, 0, 10)}},
	}
	prev := -1.0
	for tm := 0.0; tm <= 66; tm += 3 {
		x := FrameAt(kfs, tm, nil)[0].X
		if x < prev {
			t.Fatalf("x went backwards at t=%v: %v < %v", tm, x, prev)
		}
		prev = x
	}
}
