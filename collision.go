package drift

import "math"

// CollisionConfig controls the pairwise resolver.
type CollisionConfig struct {
	// Iterations is the number of resolution passes per tick.
	Iterations int
	// Restitution is the fraction of normal relative velocity kept after impact.
	Restitution float64
	// Slop is the penetration depth left uncorrected to avoid jitter.
	Slop float64
	// PositionCorrection is the fraction of the remaining overlap removed per pass.
	PositionCorrection float64
}

// DefaultCollisionConfig returns the resolver settings used by a new System.
func DefaultCollisionConfig() CollisionConfig {
	return CollisionConfig{
		Iterations:         3,
		Restitution:        0.6,
		Slop:               0.5,
		PositionCorrection: 0.8,
	}
}

// ResolvePair separates and bounces a and b if they overlap. An unaffected
// circle behaves as if its mass were infinite: it is never moved and never
// gains velocity. It reports whether the pair overlapped.
func ResolvePair(a, b *Circle, aAffected, bAffected bool, cfg CollisionConfig) bool {
	dx := b.X - a.X
	dy := b.Y - a.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	minDist := a.R + b.R
	if dist >= minDist {
		return false
	}
	if dist < distanceEpsilon {
		dist = distanceEpsilon
		dx = distanceEpsilon
		dy = 0
	}

	var invA, invB float64
	if aAffected && a.Mass > 0 {
		invA = 1 / a.Mass
	}
	if bAffected && b.Mass > 0 {
		invB = 1 / b.Mass
	}
	invSum := invA + invB
	if invSum == 0 {
		return true
	}

	nx := dx / dist
	ny := dy / dist

	// Positional correction, split by inverse mass.
	overlap := minDist - dist
	if depth := overlap - cfg.Slop; depth > 0 {
		corr := depth * cfg.PositionCorrection / invSum
		a.X -= nx * corr * invA
		a.Y -= ny * corr * invA
		b.X += nx * corr * invB
		b.Y += ny * corr * invB
	}

	// Velocity impulse along the normal; separating pairs are left alone.
	rvx := b.VX - a.VX
	rvy := b.VY - a.VY
	velAlongNormal := rvx*nx + rvy*ny
	if velAlongNormal > 0 {
		return true
	}
	j := -(1 + cfg.Restitution) * velAlongNormal / invSum
	a.VX -= j * invA * nx
	a.VY -= j * invA * ny
	b.VX += j * invB * nx
	b.VY += j * invB * ny
	return true
}

// resolveBruteForce runs one pass over every pair and returns the number of
// overlapping pairs resolved.
func resolveBruteForce(circles []Circle, mask []bool, cfg CollisionConfig) int {
	resolved := 0
	for i := 0; i < len(circles); i++ {
		a := &circles[i]
		for j := i + 1; j < len(circles); j++ {
			if !mask[i] && !mask[j] {
				continue
			}
			b := &circles[j]
			dx := b.X - a.X
			dy := b.Y - a.Y
			minDist := a.R + b.R
			if dx*dx+dy*dy >= minDist*minDist {
				continue
			}
			if ResolvePair(a, b, mask[i], mask[j], cfg) {
				resolved++
			}
		}
	}
	return resolved
}

// broadphase holds buffers reused by the quadtree driver across passes.
type broadphase struct {
	candidates []int
	checked    map[uint64]struct{}
}

// resolveQuadtree runs one pass using a freshly built quadtree for candidate
// pairs and returns the number of overlapping pairs resolved.
func (bp *broadphase) resolveQuadtree(circles []Circle, mask []bool, cfg CollisionConfig, bounds Rect) int {
	if bp.checked == nil {
		bp.checked = make(map[uint64]struct{}, len(circles)*4)
	}
	clear(bp.checked)

	tree := BuildQuadtree(circles, coverBounds(circles, bounds))
	resolved := 0
	for i := range circles {
		bp.candidates = tree.Query(i, bp.candidates[:0])
		for _, j := range bp.candidates {
			if !mask[i] && !mask[j] {
				continue
			}
			key := pairKey(i, j)
			if _, seen := bp.checked[key]; seen {
				continue
			}
			bp.checked[key] = struct{}{}
			lo, hi := i, j
			if lo > hi {
				lo, hi = hi, lo
			}
			if ResolvePair(&circles[lo], &circles[hi], mask[lo], mask[hi], cfg) {
				resolved++
			}
		}
	}
	return resolved
}

// coverBounds grows bounds to contain every circle's bounding box so the
// quadtree cannot miss circles that have left the canvas.
func coverBounds(circles []Circle, bounds Rect) Rect {
	minX, minY := bounds.X, bounds.Y
	maxX, maxY := bounds.X+bounds.Width, bounds.Y+bounds.Height
	for i := range circles {
		c := &circles[i]
		minX = math.Min(minX, c.X-c.R)
		minY = math.Min(minY, c.Y-c.R)
		maxX = math.Max(maxX, c.X+c.R)
		maxY = math.Max(maxY, c.Y+c.R)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
