package drift

// DefaultSmoothing is the recommended smoothing strength.
const DefaultSmoothing = 0.4

// trajectory is one circle's samples across the keyframes it appears in.
type trajectory struct {
	refs    []sampleRef
	x, y, r []float64
}

type sampleRef struct {
	frame, circle int
}

// SmoothKeyframes returns a temporally smoothed copy of kfs. Each circle's
// x, y, and r trajectory is filtered with a forward and a backward
// exponential moving average, and the two are averaged so the result has no
// phase lag. strength is clamped to [0, 1]; 0 leaves values unchanged and
// higher values smooth more. Radii are clamped to at least MinRadius.
//
// Trajectories with fewer than three samples, and inputs with fewer than
// three keyframes, are copied unchanged. The input is never modified.
func SmoothKeyframes(kfs []Keyframe, strength float64) []Keyframe {
	out := CloneKeyframes(kfs)
	if len(out) < 3 {
		return out
	}
	alpha := 1 - clamp(strength, 0, 1)

	var order []int64
	trajs := make(map[int64]*trajectory)
	for fi := range out {
		for ci, c := range out[fi].Circles {
			t, ok := trajs[c.ID]
			if !ok {
				t = &trajectory{}
				trajs[c.ID] = t
				order = append(order, c.ID)
			}
			t.refs = append(t.refs, sampleRef{fi, ci})
			t.x = append(t.x, c.X)
			t.y = append(t.y, c.Y)
			t.r = append(t.r, c.R)
		}
	}

	for _, id := range order {
		t := trajs[id]
		if len(t.refs) < 3 {
			continue
		}
		xs := smoothBidirectional(t.x, alpha)
		ys := smoothBidirectional(t.y, alpha)
		rs := smoothBidirectional(t.r, alpha)
		for k, ref := range t.refs {
			c := &out[ref.frame].Circles[ref.circle]
			c.X = xs[k]
			c.Y = ys[k]
			c.R = max(MinRadius, rs[k])
		}
	}
	return out
}

// SmoothAnimation returns a copy of a with smoothed keyframes. Every other
// field is carried over; smoothing never moves keyframe times.
func SmoothAnimation(a AnimationData, strength float64) AnimationData {
	a.Keyframes = SmoothKeyframes(a.Keyframes, strength)
	return a
}

// smoothBidirectional averages a forward and a backward EMA of values.
func smoothBidirectional(values []float64, alpha float64) []float64 {
	n := len(values)
	fwd := make([]float64, n)
	bwd := make([]float64, n)

	fwd[0] = values[0]
	for i := 1; i < n; i++ {
		fwd[i] = alpha*values[i] + (1-alpha)*fwd[i-1]
	}
	bwd[n-1] = values[n-1]
	for i := n - 2; i >= 0; i-- {
		bwd[i] = alpha*values[i] + (1-alpha)*bwd[i+1]
	}

	for i := range fwd {
		fwd[i] = (fwd[i] + bwd[i]) / 2
	}
	return fwd
}
