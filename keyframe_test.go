package drift

import (
	"errors"
	"strings"
	"testing"
)

func snap(id int64, x, y, r float64) CircleSnapshot {
	return CircleSnapshot{ID: id, X: x, Y: y, R: r, Color: "#fff", LayerID: "l"}
}

func testAnimation(times ...float64) AnimationData {
	a := AnimationData{Version: AnimationVersion, Name: "test", FPS: 30}
	for i, tm := range times {
		a.Keyframes = append(a.Keyframes, Keyframe{
			Time:    tm,
			Circles: []CircleSnapshot{snap(1, float64(i)*10, 0, 10)},
		})
	}
	if len(times) > 0 {
		a.Duration = times[len(times)-1]
	}
	return a
}

func TestAnimationValidate(t *testing.T) {
	mismatched := testAnimation(0, 33)
	mismatched.Duration = 40

	tests := []struct {
		name string
		a    AnimationData
		want error
	}{
		{"valid", testAnimation(0, 33, 66), nil},
		{"single frame", testAnimation(0), nil},
		{"empty", AnimationData{}, ErrNoKeyframes},
		{"late start", testAnimation(5, 33), ErrFirstKeyframeTime},
		{"out of order", testAnimation(0, 33, 20), ErrKeyframeOrder},
		{"duplicate time", testAnimation(0, 33, 33), ErrKeyframeOrder},
		{"duration mismatch", mismatched, ErrDurationMismatch},
	}
	for _, tt := range tests {
		err := tt.a.Validate()
		if tt.want == nil {
			if err != nil {
				t.Errorf("%s: unexpected error %v", tt.name, err)
			}
			continue
		}
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: error = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestAnimationCloneIsDeep(t *testing.T) {
	a := testAnimation(0, 33)
	c := a.Clone()
	c.Keyframes[0].Circles[0].X = 999
	c.Keyframes[1].Time = 50
	assertNear(t, "original X", a.Keyframes[0].Circles[0].X, 0)
	assertNear(t, "original time", a.Keyframes[1].Time, 33)

	if CloneKeyframes(nil) != nil {
		t.Error("CloneKeyframes(nil) should be nil")
	}
	if !(AnimationData{}).Empty() || a.Empty() {
		t.Error("Empty() mismatch")
	}
}

func TestDecodeAnimationRoundTrip(t *testing.T) {
	a := testAnimation(0, 33.3, 66.6)
	data, err := EncodeAnimation(a)
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{`"version":1`, `"layerId":"l"`, `"keyframes"`, `"fps":30`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("encoded JSON missing %s: %s", field, data)
		}
	}

	got, err := DecodeAnimation(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != a.Name || len(got.Keyframes) != 3 {
		t.Fatalf("decoded = %+v", got)
	}
	assertNear(t, "duration", got.Duration, 66.6)
	if got.Keyframes[2].Circles[0] != a.Keyframes[2].Circles[0] {
		t.Errorf("circle = %+v", got.Keyframes[2].Circles[0])
	}
}

func TestDecodeAnimationErrors(t *testing.T) {
	if _, err := DecodeAnimation([]byte("{not json")); err == nil {
		t.Error("malformed JSON should fail")
	}
	_, err := DecodeAnimation([]byte(`{"name":"x","duration":10,"keyframes":[{"time":10,"circles":[]}]}`))
	if !errors.Is(err, ErrFirstKeyframeTime) {
		t.Errorf("error = %v, want ErrFirstKeyframeTime", err)
	}
}
