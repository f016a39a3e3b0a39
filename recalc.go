package drift

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// Recalculation errors.
var (
	ErrNothingToRecalculate = errors.New("no animations to recalculate")
	ErrNoInitialCircles     = errors.New("no circles in initial frames")
)

// recalcProgressStride is how many simulated frames pass between progress
// reports and context checks.
const recalcProgressStride = 10

// RecalcPhase is the stage reported by RecalcProgress.
type RecalcPhase uint8

const (
	RecalcPreparing  RecalcPhase = iota // gathering initial circles
	RecalcSimulating                    // stepping physics
	RecalcComplete                      // result ready
	RecalcError                         // aborted; see the returned error
)

func (p RecalcPhase) String() string {
	switch p {
	case RecalcPreparing:
		return "preparing"
	case RecalcSimulating:
		return "simulating"
	case RecalcComplete:
		return "complete"
	case RecalcError:
		return "error"
	default:
		return "unknown"
	}
}

// RecalcProgress reports how far a recalculation has advanced.
type RecalcProgress struct {
	Phase   RecalcPhase
	Percent float64 // [0, 100]
	Frame   int
	Total   int
}

// RecalcOptions configures a recalculation. Start from DefaultRecalcOptions;
// a zero PhysicsConfig has zero damping and freezes every circle.
type RecalcOptions struct {
	Physics   PhysicsConfig
	Collision CollisionConfig
	Bounds    Rect
	// FPS is the output frame rate; values outside [MinRecordFPS, MaxRecordFPS]
	// are clamped and zero means DefaultRecordFPS.
	FPS float64
	// TickBudget bounds each simulated step. Zero never cuts a step short,
	// which keeps results reproducible.
	TickBudget time.Duration

	OnProgress func(RecalcProgress)
	Sink       EventSink
	Logger     *zap.Logger
	Clock      Clock
}

// DefaultRecalcOptions returns options matching a new System on an 800x600
// canvas at DefaultRecordFPS.
func DefaultRecalcOptions() RecalcOptions {
	return RecalcOptions{
		Physics:   DefaultPhysicsConfig(),
		Collision: DefaultCollisionConfig(),
		Bounds:    Rect{Width: 800, Height: 600},
		FPS:       DefaultRecordFPS,
	}
}

func (o *RecalcOptions) report(p RecalcProgress) {
	if o.OnProgress != nil {
		o.OnProgress(p)
	}
	emit(o.Sink, Event{Type: EventRecalcProgress, Frames: p.Frame, Total: p.Total, Percent: p.Percent})
}

// layerCircleKey identifies a circle within one source layer.
type layerCircleKey struct {
	layer int
	id    int64
}

// Recalculate merges the t=0 state of every non-empty layer into one fresh
// System and re-simulates it for the longest layer duration, so circles from
// different layers collide with each other. Circle IDs are remapped per
// (layer, id) to sequential IDs starting at 1.
//
// One keyframe is captured before each step, at multiples of the frame
// interval, for ceil(duration/interval)+1 frames. The result's Duration is
// the last keyframe time, which rounds the longest layer duration up to a
// whole frame. The context is checked every few frames; on cancellation the
// partial result is discarded and the context error returned.
func Recalculate(ctx context.Context, layers []AnimationData, opts RecalcOptions) (AnimationData, error) {
	logger, now := opts.defaults()
	fail := opts.failer(logger, "recalculation")

	sources := nonEmpty(layers)
	if len(sources) == 0 {
		return fail(fmt.Errorf("drift: recalculate: %w", ErrNothingToRecalculate))
	}
	opts.report(RecalcProgress{Phase: RecalcPreparing})

	ids := make(map[layerCircleKey]int64)
	var circles []Circle
	for li, a := range sources {
		for _, snap := range FrameAt(a.Keyframes, 0, nil) {
			key := layerCircleKey{li, snap.ID}
			if _, ok := ids[key]; ok {
				continue
			}
			id := int64(len(ids) + 1)
			ids[key] = id
			circles = append(circles, circleFromSnapshot(snap, id))
		}
	}
	if len(circles) == 0 {
		return fail(fmt.Errorf("drift: recalculate: %w", ErrNoInitialCircles))
	}

	fps := resolveFPS(opts.FPS)
	interval := 1000 / fps
	total := int(math.Ceil(maxDuration(sources) / interval))
	sys := opts.newSystem(now)

	logger.Info("recalculating animation layers",
		zap.Int("layers", len(sources)),
		zap.Int("circles", len(circles)),
		zap.Int("frames", total+1),
	)

	mask := FreeMask(circles)
	keyframes := make([]Keyframe, 0, total+1)
	for f := 0; f <= total; f++ {
		if err := opts.checkpoint(ctx, f, total); err != nil {
			return fail(err)
		}
		keyframes = append(keyframes, Keyframe{Time: float64(f) * interval, Circles: snapshotCircles(circles)})
		sys.Update(circles, mask)
	}

	result := AnimationData{
		Version:   AnimationVersion,
		Name:      fmt.Sprintf("recalculated-%d", now().UnixMilli()),
		Duration:  keyframes[len(keyframes)-1].Time,
		Keyframes: keyframes,
		FPS:       fps,
	}
	opts.report(RecalcProgress{Phase: RecalcComplete, Percent: 100, Frame: total, Total: total})
	logger.Info("recalculation complete", zap.Int("frames", len(keyframes)))
	return result, nil
}

// Resimulate replays every layer at each frame time and runs one physics
// step over the combined circles, so overlaps between layers are pushed
// apart while each layer keeps its recorded motion. Unlike Recalculate, no
// state carries over between frames: every frame starts from the replayed
// positions with zero velocity.
//
// The frame rate is the first layer's FPS, falling back to opts.FPS when
// the layer has none. Circle IDs are remapped per (layer, id) in order of
// first appearance and stay stable across frames. Frames are captured after
// the step, for ceil(duration/interval)+1 frames, and the result's Duration
// is the last keyframe time.
func Resimulate(ctx context.Context, layers []AnimationData, opts RecalcOptions) (AnimationData, error) {
	logger, now := opts.defaults()
	fail := opts.failer(logger, "resimulation")

	sources := nonEmpty(layers)
	if len(sources) == 0 {
		return fail(fmt.Errorf("drift: resimulate: %w", ErrNothingToRecalculate))
	}
	opts.report(RecalcProgress{Phase: RecalcPreparing})

	fps := sources[0].FPS
	if fps == 0 {
		fps = opts.FPS
	}
	fps = resolveFPS(fps)
	interval := 1000 / fps
	total := int(math.Ceil(maxDuration(sources) / interval))
	sys := opts.newSystem(now)

	logger.Info("resimulating animation layers",
		zap.Int("layers", len(sources)),
		zap.Int("frames", total+1),
	)

	ids := make(map[layerCircleKey]int64)
	var circles []Circle
	keyframes := make([]Keyframe, 0, total+1)
	for f := 0; f <= total; f++ {
		if err := opts.checkpoint(ctx, f, total); err != nil {
			return fail(err)
		}
		t := float64(f) * interval
		circles = circles[:0]
		for li, a := range sources {
			for _, snap := range FrameAt(a.Keyframes, t, nil) {
				key := layerCircleKey{li, snap.ID}
				id, ok := ids[key]
				if !ok {
					id = int64(len(ids) + 1)
					ids[key] = id
				}
				circles = append(circles, circleFromSnapshot(snap, id))
			}
		}
		sys.Update(circles, FreeMask(circles))
		keyframes = append(keyframes, Keyframe{Time: t, Circles: snapshotCircles(circles)})
	}

	result := AnimationData{
		Version:   AnimationVersion,
		Name:      fmt.Sprintf("resimulated-%d", now().UnixMilli()),
		Duration:  keyframes[len(keyframes)-1].Time,
		Keyframes: keyframes,
		FPS:       fps,
	}
	opts.report(RecalcProgress{Phase: RecalcComplete, Percent: 100, Frame: total, Total: total})
	logger.Info("resimulation complete",
		zap.Int("frames", len(keyframes)),
		zap.Int("circles", len(ids)),
	)
	return result, nil
}

func (o *RecalcOptions) defaults() (*zap.Logger, Clock) {
	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := o.Clock
	if now == nil {
		now = time.Now
	}
	return logger, now
}

// failer returns a helper that reports the error phase, logs, and returns err.
func (o *RecalcOptions) failer(logger *zap.Logger, what string) func(error) (AnimationData, error) {
	return func(err error) (AnimationData, error) {
		o.report(RecalcProgress{Phase: RecalcError})
		logger.Warn(what+" failed", zap.Error(err))
		return AnimationData{}, err
	}
}

// checkpoint reports progress and checks ctx every recalcProgressStride frames.
func (o *RecalcOptions) checkpoint(ctx context.Context, f, total int) error {
	if f%recalcProgressStride != 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	pct := 100.0
	if total > 0 {
		pct = float64(f) / float64(total) * 100
	}
	o.report(RecalcProgress{Phase: RecalcSimulating, Percent: pct, Frame: f, Total: total})
	return nil
}

func (o *RecalcOptions) newSystem(now Clock) *System {
	sys := NewSystem()
	sys.Config = o.Physics
	sys.Collision = o.Collision
	sys.Bounds = o.Bounds
	sys.TickBudget = o.TickBudget
	sys.Clock = now
	return sys
}

// resolveFPS maps zero to DefaultRecordFPS and clamps the rest.
func resolveFPS(fps float64) float64 {
	if fps == 0 {
		fps = DefaultRecordFPS
	}
	return clamp(fps, MinRecordFPS, MaxRecordFPS)
}

func nonEmpty(layers []AnimationData) []AnimationData {
	var out []AnimationData
	for _, a := range layers {
		if !a.Empty() {
			out = append(out, a)
		}
	}
	return out
}

func maxDuration(layers []AnimationData) float64 {
	d := 0.0
	for _, a := range layers {
		d = math.Max(d, a.Duration)
	}
	return d
}

func circleFromSnapshot(snap CircleSnapshot, id int64) Circle {
	c := Circle{ID: id, X: snap.X, Y: snap.Y, Color: snap.Color, LayerID: snap.LayerID}
	c.SetRadius(snap.R)
	return c
}

// RecalcResult is the outcome delivered by RecalculateAsync.
type RecalcResult struct {
	Animation AnimationData
	Err       error
}

// RecalculateAsync runs Recalculate on a new goroutine. The returned channel
// receives exactly one result and is then closed. OnProgress and Sink are
// called from that goroutine.
func RecalculateAsync(ctx context.Context, layers []AnimationData, opts RecalcOptions) <-chan RecalcResult {
	ch := make(chan RecalcResult, 1)
	go func() {
		defer close(ch)
		a, err := Recalculate(ctx, layers, opts)
		ch <- RecalcResult{Animation: a, Err: err}
	}()
	return ch
}
