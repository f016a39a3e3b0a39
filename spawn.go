package drift

import "math/rand/v2"

// LayerKind distinguishes drawing layers. Only circle layers accept spawns.
type LayerKind uint8

const (
	LayerCircles LayerKind = iota
	LayerPaint
)

// ActiveLayer describes the host's currently selected drawing layer.
type ActiveLayer struct {
	ID   string
	Kind LayerKind
}

// Placer accepts new circles, reporting false when placement is rejected.
// CircleSet satisfies it.
type Placer interface {
	Add(c Circle) bool
}

// SpawnMode selects the auto-spawn behavior.
type SpawnMode uint8

const (
	SpawnOff     SpawnMode = iota // no spawning
	SpawnUniform                  // circles of BrushSize
	SpawnRandom                   // circles sized in RandomSize
)

// Spawner drops circles at random canvas positions each tick.
type Spawner struct {
	Mode       SpawnMode
	Attempts   int
	BrushSize  float64
	RandomSize Range
	// Color supplies the color for each new circle; nil leaves it empty.
	Color func() string
	Rand  *rand.Rand
}

// DefaultSpawner returns a disabled spawner with the stock tuning.
func DefaultSpawner() Spawner {
	return Spawner{
		Attempts:   3,
		BrushSize:  30,
		RandomSize: Range{Min: 10, Max: 100},
	}
}

// Spawn tries Attempts placements inside bounds on the active layer and
// returns how many succeeded. Rejected placements are dropped silently.
func (s *Spawner) Spawn(dst Placer, layer ActiveLayer, bounds Rect) int {
	if s.Mode == SpawnOff || layer.ID == "" || layer.Kind != LayerCircles {
		return 0
	}
	placed := 0
	for attempt := 0; attempt < s.Attempts; attempt++ {
		x := bounds.X + float64n(s.Rand)*bounds.Width
		y := bounds.Y + float64n(s.Rand)*bounds.Height
		r := s.BrushSize
		if s.Mode == SpawnRandom {
			r = s.RandomSize.Random(s.Rand)
		}
		var color string
		if s.Color != nil {
			color = s.Color()
		}
		if dst.Add(NewCircle(x, y, r, color, layer.ID)) {
			placed++
		}
	}
	return placed
}
