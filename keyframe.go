package drift

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// AnimationVersion is the interchange schema version written by this package.
const AnimationVersion = 1

// durationTolerance is the allowed gap in milliseconds between an animation's
// duration and its last keyframe time.
const durationTolerance = 1e-6

// Validation errors returned (wrapped) by AnimationData.Validate.
var (
	ErrNoKeyframes       = errors.New("no keyframes")
	ErrFirstKeyframeTime = errors.New("first keyframe is not at t=0")
	ErrKeyframeOrder     = errors.New("keyframe times are not strictly increasing")
	ErrDurationMismatch  = errors.New("duration does not match last keyframe")
)

// CircleSnapshot is the captured visual state of one circle. Velocity, mass,
// and lock state are deliberately absent: playback is purely positional.
type CircleSnapshot struct {
	ID      int64   `json:"id"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	R       float64 `json:"r"`
	Color   string  `json:"color"`
	LayerID string  `json:"layerId"`
}

// Keyframe is a timestamped snapshot of every circle.
type Keyframe struct {
	// Time is milliseconds since recording start.
	Time    float64          `json:"time"`
	Circles []CircleSnapshot `json:"circles"`
}

// Clone returns a deep copy of k.
func (k Keyframe) Clone() Keyframe {
	out := Keyframe{Time: k.Time, Circles: make([]CircleSnapshot, len(k.Circles))}
	copy(out.Circles, k.Circles)
	return out
}

// CloneKeyframes returns a deep copy of kfs. A nil input yields nil.
func CloneKeyframes(kfs []Keyframe) []Keyframe {
	if kfs == nil {
		return nil
	}
	out := make([]Keyframe, len(kfs))
	for i := range kfs {
		out[i] = kfs[i].Clone()
	}
	return out
}

// AnimationData is a recorded animation.
type AnimationData struct {
	Version   int        `json:"version"`
	Name      string     `json:"name"`
	Duration  float64    `json:"duration"` // ms, equals the last keyframe time
	Keyframes []Keyframe `json:"keyframes"`
	FPS       float64    `json:"fps"`
}

// Clone returns a deep copy of a.
func (a AnimationData) Clone() AnimationData {
	a.Keyframes = CloneKeyframes(a.Keyframes)
	return a
}

// Empty reports whether a has no keyframes.
func (a AnimationData) Empty() bool {
	return len(a.Keyframes) == 0
}

// Validate checks the keyframe invariants: non-empty, first at t=0,
// strictly increasing times, and Duration equal to the last time.
func (a AnimationData) Validate() error {
	if len(a.Keyframes) == 0 {
		return fmt.Errorf("drift: invalid animation %q: %w", a.Name, ErrNoKeyframes)
	}
	if a.Keyframes[0].Time != 0 {
		return fmt.Errorf("drift: invalid animation %q: %w (got %.3f)", a.Name, ErrFirstKeyframeTime, a.Keyframes[0].Time)
	}
	for i := 1; i < len(a.Keyframes); i++ {
		if a.Keyframes[i].Time <= a.Keyframes[i-1].Time {
			return fmt.Errorf("drift: invalid animation %q: %w at index %d", a.Name, ErrKeyframeOrder, i)
		}
	}
	last := a.Keyframes[len(a.Keyframes)-1].Time
	if math.Abs(a.Duration-last) > durationTolerance {
		return fmt.Errorf("drift: invalid animation %q: %w (duration %.3f, last %.3f)", a.Name, ErrDurationMismatch, a.Duration, last)
	}
	return nil
}

// DecodeAnimation parses and validates an animation in the JSON interchange
// format.
func DecodeAnimation(data []byte) (AnimationData, error) {
	var a AnimationData
	if err := json.Unmarshal(data, &a); err != nil {
		return AnimationData{}, fmt.Errorf("drift: failed to parse animation JSON: %w", err)
	}
	if err := a.Validate(); err != nil {
		return AnimationData{}, err
	}
	return a, nil
}

// EncodeAnimation serializes a in the JSON interchange format.
func EncodeAnimation(a AnimationData) ([]byte, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("drift: failed to encode animation %q: %w", a.Name, err)
	}
	return data, nil
}

// snapshotCircles copies the visual state of every circle.
func snapshotCircles(circles []Circle) []CircleSnapshot {
	out := make([]CircleSnapshot, len(circles))
	for i := range circles {
		out[i] = circles[i].Snapshot()
	}
	return out
}
