package drift

import "github.com/tanema/gween/ease"

// FrameAt returns the circles at time t (ms), interpolated between the
// bounding keyframes. At an exact keyframe time, before the first keyframe,
// or after the last, the nearest keyframe is returned unmodified.
//
// Between keyframes x, y, and r are interpolated per ID; color and layer come
// from the earlier frame. IDs missing from the later frame are passed through
// unchanged and IDs new in the later frame are appended as-is. The result is
// always a fresh slice. easing, when non-nil, reshapes the in-between
// fraction; nil is linear.
func FrameAt(keyframes []Keyframe, t float64, easing ease.TweenFunc) []CircleSnapshot {
	if len(keyframes) == 0 {
		return nil
	}

	prevIdx, nextIdx := 0, 0
	for i := range keyframes {
		if keyframes[i].Time <= t {
			prevIdx = i
		}
		if keyframes[i].Time >= t {
			nextIdx = i
			break
		}
	}
	if prevIdx == nextIdx || nextIdx == 0 {
		return keyframes[prevIdx].Clone().Circles
	}

	prev := &keyframes[prevIdx]
	next := &keyframes[nextIdx]
	frac := (t - prev.Time) / (next.Time - prev.Time)
	if easing != nil {
		frac = float64(easing(float32(frac), 0, 1, 1))
	}

	nextByID := make(map[int64]int, len(next.Circles))
	for i, c := range next.Circles {
		nextByID[c.ID] = i
	}

	out := make([]CircleSnapshot, 0, len(prev.Circles)+len(next.Circles))
	seen := make(map[int64]struct{}, len(prev.Circles))
	for _, p := range prev.Circles {
		seen[p.ID] = struct{}{}
		j, ok := nextByID[p.ID]
		if !ok {
			out = append(out, p)
			continue
		}
		n := next.Circles[j]
		p.X = lerp(p.X, n.X, frac)
		p.Y = lerp(p.Y, n.Y, frac)
		p.R = lerp(p.R, n.R, frac)
		out = append(out, p)
	}
	for _, n := range next.Circles {
		if _, ok := seen[n.ID]; !ok {
			out = append(out, n)
		}
	}
	return out
}
