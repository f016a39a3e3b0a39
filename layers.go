package drift

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Layer errors.
var (
	ErrLayerNotFound = errors.New("layer not found")
	ErrLayerLocked   = errors.New("layer is locked")
)

// layerIDPrefix prefixes every generated layer ID.
const layerIDPrefix = "anim-layer-"

// layersFileVersion is the version written by ExportLayers.
const layersFileVersion = 1

// AnimationLayer is a named animation slot that can be hidden, locked, and
// faded independently of the others.
type AnimationLayer struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Animation *AnimationData `json:"animation"`
	Visible   bool           `json:"visible"`
	Locked    bool           `json:"locked"`
	Opacity   float64        `json:"opacity"` // [0, 1]
}

func (l AnimationLayer) clone() AnimationLayer {
	if l.Animation != nil {
		a := l.Animation.Clone()
		l.Animation = &a
	}
	return l
}

// LayerDirection is the direction passed to MoveLayer.
type LayerDirection uint8

const (
	LayerUp   LayerDirection = iota // toward index 0
	LayerDown                       // toward the end
)

// LayerManager owns an ordered list of animation layers, the current active
// layer, and the most recent recalculated animation. Accessors return copies;
// mutate through the manager's methods. It is not safe for concurrent use,
// except that recalculated playback may be driven by RunPlayback.
type LayerManager struct {
	Logger *zap.Logger
	Sink   EventSink
	Clock  Clock

	layers       []AnimationLayer
	nextID       int
	activeID     string
	recalculated *AnimationData
	player       Player
}

// NewLayerManager creates a manager holding one empty layer, "Animation 1".
// A nil logger is replaced by a no-op logger.
func NewLayerManager(logger *zap.Logger) *LayerManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &LayerManager{Logger: logger, Clock: time.Now, nextID: 1}
	m.AddLayer("Animation 1")
	return m
}

// AddLayer appends an empty, visible, unlocked layer. An empty name becomes
// "Animation N". The first layer added becomes the active layer.
func (m *LayerManager) AddLayer(name string) AnimationLayer {
	n := m.nextID
	m.nextID++
	if name == "" {
		name = fmt.Sprintf("Animation %d", n)
	}
	l := AnimationLayer{
		ID:      layerIDPrefix + strconv.Itoa(n),
		Name:    name,
		Visible: true,
		Opacity: 1,
	}
	m.layers = append(m.layers, l)
	if m.activeID == "" {
		m.activeID = l.ID
	}
	return l
}

// RemoveLayer deletes the layer. When it was active, the first remaining
// layer becomes active.
func (m *LayerManager) RemoveLayer(id string) bool {
	i := m.index(id)
	if i < 0 {
		return false
	}
	m.layers = append(m.layers[:i], m.layers[i+1:]...)
	if m.activeID == id {
		m.activeID = ""
		if len(m.layers) > 0 {
			m.activeID = m.layers[0].ID
		}
	}
	return true
}

// Layers returns a copy of every layer in order.
func (m *LayerManager) Layers() []AnimationLayer {
	out := make([]AnimationLayer, len(m.layers))
	for i := range m.layers {
		out[i] = m.layers[i].clone()
	}
	return out
}

// Layer returns a copy of the layer with the given ID.
func (m *LayerManager) Layer(id string) (AnimationLayer, bool) {
	i := m.index(id)
	if i < 0 {
		return AnimationLayer{}, false
	}
	return m.layers[i].clone(), true
}

// ActiveLayer returns a copy of the active layer, if any.
func (m *LayerManager) ActiveLayer() (AnimationLayer, bool) {
	return m.Layer(m.activeID)
}

// SetActiveLayer makes id active. Unknown IDs are ignored.
func (m *LayerManager) SetActiveLayer(id string) bool {
	if m.index(id) < 0 {
		return false
	}
	m.activeID = id
	return true
}

// UpdateLayer lets fn edit the layer's name, visibility, lock, and opacity.
// The ID and animation are restored after fn returns; use LoadAnimation and
// ClearAnimation for the animation. Opacity is clamped to [0, 1].
func (m *LayerManager) UpdateLayer(id string, fn func(*AnimationLayer)) bool {
	i := m.index(id)
	if i < 0 {
		return false
	}
	l := &m.layers[i]
	anim := l.Animation
	fn(l)
	l.ID = id
	l.Animation = anim
	l.Opacity = clamp(l.Opacity, 0, 1)
	return true
}

// ToggleVisibility flips the layer's visibility.
func (m *LayerManager) ToggleVisibility(id string) bool {
	return m.UpdateLayer(id, func(l *AnimationLayer) { l.Visible = !l.Visible })
}

// ToggleLock flips the layer's lock.
func (m *LayerManager) ToggleLock(id string) bool {
	return m.UpdateLayer(id, func(l *AnimationLayer) { l.Locked = !l.Locked })
}

// MoveLayer swaps the layer with its neighbor in dir. Moving past either end
// is a no-op that returns false.
func (m *LayerManager) MoveLayer(id string, dir LayerDirection) bool {
	i := m.index(id)
	if i < 0 {
		return false
	}
	j := i + 1
	if dir == LayerUp {
		j = i - 1
	}
	if j < 0 || j >= len(m.layers) {
		return false
	}
	m.layers[i], m.layers[j] = m.layers[j], m.layers[i]
	return true
}

// LoadAnimation stores a validated copy of a in the layer. Locked layers are
// refused with ErrLayerLocked.
func (m *LayerManager) LoadAnimation(id string, a AnimationData) error {
	l, err := m.editable(id)
	if err != nil {
		return err
	}
	if err := a.Validate(); err != nil {
		return err
	}
	c := a.Clone()
	l.Animation = &c
	m.Logger.Info("animation loaded into layer",
		zap.String("layer", id),
		zap.Int("frames", len(c.Keyframes)),
	)
	return nil
}

// ClearAnimation removes the layer's animation. Locked layers are refused
// with ErrLayerLocked.
func (m *LayerManager) ClearAnimation(id string) error {
	l, err := m.editable(id)
	if err != nil {
		return err
	}
	l.Animation = nil
	return nil
}

// MaxDuration returns the longest animation duration over visible layers.
func (m *LayerManager) MaxDuration() float64 {
	d := 0.0
	for i := range m.layers {
		l := &m.layers[i]
		if l.Visible && l.Animation != nil {
			d = max(d, l.Animation.Duration)
		}
	}
	return d
}

// HasAnimations reports whether any layer, visible or not, holds an animation.
func (m *LayerManager) HasAnimations() bool {
	for i := range m.layers {
		if m.layers[i].Animation != nil {
			return true
		}
	}
	return false
}

// VisibleAnimations returns copies of the animations on visible layers, in
// layer order. Pass the result to RecalculateAsync to recalculate off the
// host goroutine, then store it with SetRecalculated.
func (m *LayerManager) VisibleAnimations() []AnimationData {
	var out []AnimationData
	for i := range m.layers {
		l := &m.layers[i]
		if l.Visible && l.Animation != nil {
			out = append(out, l.Animation.Clone())
		}
	}
	return out
}

// ActiveAnimations returns copies of the animations on layers that are
// visible and unlocked, in layer order.
func (m *LayerManager) ActiveAnimations() []AnimationData {
	var out []AnimationData
	for i := range m.layers {
		l := &m.layers[i]
		if l.Visible && !l.Locked && l.Animation != nil {
			out = append(out, l.Animation.Clone())
		}
	}
	return out
}

// Resimulate replays the active layers together, correcting collisions
// between them frame by frame, and stores the result as the recalculated
// animation. Options default as in Recalculate.
func (m *LayerManager) Resimulate(ctx context.Context, opts RecalcOptions) (AnimationData, error) {
	m.fillOptions(&opts)
	a, err := Resimulate(ctx, m.ActiveAnimations(), opts)
	if err != nil {
		return AnimationData{}, err
	}
	m.player.release()
	m.recalculated = &a
	return a.Clone(), nil
}

func (m *LayerManager) fillOptions(opts *RecalcOptions) {
	if opts.Logger == nil {
		opts.Logger = m.Logger
	}
	if opts.Sink == nil {
		opts.Sink = m.Sink
	}
	if opts.Clock == nil {
		opts.Clock = m.Clock
	}
}

// Recalculate re-simulates the visible layers together and stores the result
// as the recalculated animation. Unset Logger, Sink, and Clock options are
// taken from the manager.
func (m *LayerManager) Recalculate(ctx context.Context, opts RecalcOptions) (AnimationData, error) {
	m.fillOptions(&opts)
	a, err := Recalculate(ctx, m.VisibleAnimations(), opts)
	if err != nil {
		return AnimationData{}, err
	}
	m.player.release()
	m.recalculated = &a
	return a.Clone(), nil
}

// SetRecalculated stores a validated copy of a as the recalculated animation.
func (m *LayerManager) SetRecalculated(a AnimationData) error {
	if err := a.Validate(); err != nil {
		return err
	}
	c := a.Clone()
	m.player.release()
	m.recalculated = &c
	return nil
}

// Recalculated returns a copy of the recalculated animation, if any.
func (m *LayerManager) Recalculated() (AnimationData, bool) {
	if m.recalculated == nil {
		return AnimationData{}, false
	}
	return m.recalculated.Clone(), true
}

// ClearRecalculated stops its playback and discards the recalculated animation.
func (m *LayerManager) ClearRecalculated() {
	m.player.release()
	m.recalculated = nil
}

// StartPlayback plays the recalculated animation. It returns false when
// there is none.
func (m *LayerManager) StartPlayback(onFrame func([]CircleSnapshot), onEnd func(), loop bool) bool {
	if m.recalculated == nil {
		m.Logger.Debug("no recalculated animation to play")
		return false
	}
	m.player.configure(m.Clock, m.Sink)
	return m.player.Start(m.recalculated.Keyframes, onFrame, onEnd, loop)
}

// UpdatePlayback advances recalculated playback to the current time.
func (m *LayerManager) UpdatePlayback() { m.player.Update() }

// RunPlayback drives recalculated playback on the calling goroutine.
func (m *LayerManager) RunPlayback(ctx context.Context, interval time.Duration) error {
	return m.player.Run(ctx, interval)
}

// StopPlayback stops recalculated playback.
func (m *LayerManager) StopPlayback() { m.player.Stop() }

// IsPlaying reports whether recalculated playback is active.
func (m *LayerManager) IsPlaying() bool { return m.player.IsPlaying() }

// ClearAll stops playback and resets the manager to a single empty
// "Animation 1" layer with the ID counter restarted.
func (m *LayerManager) ClearAll() {
	m.player.release()
	m.layers = nil
	m.activeID = ""
	m.nextID = 1
	m.recalculated = nil
	m.AddLayer("Animation 1")
}

// layersFile is the JSON shape written by ExportLayers.
type layersFile struct {
	Version int              `json:"version"`
	Layers  []AnimationLayer `json:"layers"`
}

// ExportLayers serializes every layer, animations included.
func (m *LayerManager) ExportLayers() ([]byte, error) {
	data, err := json.MarshalIndent(layersFile{Version: layersFileVersion, Layers: m.layers}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("drift: failed to export layers: %w", err)
	}
	return data, nil
}

// ImportLayers replaces every layer with those in data. Every layer
// animation is validated first; on error the manager is unchanged. The ID
// counter resumes after the highest anim-layer-N found, and the active layer
// falls back to the first layer when the previous one is gone.
func (m *LayerManager) ImportLayers(data []byte) error {
	var f layersFile
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("drift: failed to parse layers JSON: %w", err)
	}
	if f.Layers == nil {
		return errors.New("drift: invalid layers file: missing layers")
	}
	maxN := 0
	for i := range f.Layers {
		l := &f.Layers[i]
		if l.Animation != nil {
			if err := l.Animation.Validate(); err != nil {
				return fmt.Errorf("drift: layer %q: %w", l.ID, err)
			}
		}
		l.Opacity = clamp(l.Opacity, 0, 1)
		if n, ok := layerNumber(l.ID); ok {
			maxN = max(maxN, n)
		}
	}

	m.player.release()
	m.layers = f.Layers
	m.nextID = maxN + 1
	if m.index(m.activeID) < 0 {
		m.activeID = ""
		if len(m.layers) > 0 {
			m.activeID = m.layers[0].ID
		}
	}
	m.Logger.Info("layers imported", zap.Int("layers", len(m.layers)))
	return nil
}

// layerNumber extracts N from an "anim-layer-N" ID.
func layerNumber(id string) (int, bool) {
	s, ok := strings.CutPrefix(id, layerIDPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (m *LayerManager) index(id string) int {
	for i := range m.layers {
		if m.layers[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *LayerManager) editable(id string) (*AnimationLayer, error) {
	i := m.index(id)
	if i < 0 {
		return nil, fmt.Errorf("drift: layer %q: %w", id, ErrLayerNotFound)
	}
	l := &m.layers[i]
	if l.Locked {
		return nil, fmt.Errorf("drift: layer %q: %w", id, ErrLayerLocked)
	}
	return l, nil
}
