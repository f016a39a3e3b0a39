package drift

// Policy decides which circles forces and collisions may mutate this tick.
// The host builds a fresh Policy each tick from its lock, selection, and
// layer-visibility state; nothing here is cached across calls.
type Policy struct {
	// LayerAffected reports whether circles on the given layer respond to
	// forces (visible and unlocked). Nil means every layer is affected.
	LayerAffected func(layerID string) bool
	// SelectMode restricts forces to Selected when Selected is non-empty.
	SelectMode bool
	Selected   map[int64]struct{}
}

// Affects reports whether c is eligible for mutation.
func (p Policy) Affects(c *Circle) bool {
	if c.Locked || c.Dragging {
		return false
	}
	if p.LayerAffected != nil && !p.LayerAffected(c.LayerID) {
		return false
	}
	if p.SelectMode && len(p.Selected) > 0 {
		if _, ok := p.Selected[c.ID]; !ok {
			return false
		}
	}
	return true
}

// Mask evaluates Affects for every circle, reusing dst when it has capacity.
func (p Policy) Mask(circles []Circle, dst []bool) []bool {
	if cap(dst) < len(circles) {
		dst = make([]bool, len(circles))
	}
	dst = dst[:len(circles)]
	for i := range circles {
		dst[i] = p.Affects(&circles[i])
	}
	return dst
}

// FreeMask returns a mask treating every unlocked, non-dragged circle as affected.
func FreeMask(circles []Circle) []bool {
	return Policy{}.Mask(circles, nil)
}
