package drift

import (
	"context"
	"errors"
	"math"
	"testing"
)

func singleCircleLayer(x, y, r, duration float64) AnimationData {
	return AnimationData{
		Version:  AnimationVersion,
		Name:     "layer",
		Duration: duration,
		FPS:      30,
		Keyframes: []Keyframe{
			{Time: 0, Circles: []CircleSnapshot{snap(1, x, y, r)}},
			{Time: duration, Circles: []CircleSnapshot{snap(1, x+50, y, r)}},
		},
	}
}

func TestRecalculateMergesLayers(t *testing.T) {
	layers := []AnimationData{
		singleCircleLayer(400, 300, 20, 500),
		singleCircleLayer(410, 300, 20, 300),
	}
	opts := DefaultRecalcOptions()
	opts.Clock = newFakeClock().Now

	a, err := Recalculate(context.Background(), layers, opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Validate(); err != nil {
		t.Fatal(err)
	}

	// ceil(500 / (1000/30)) + 1 frames, the last rounded up to a whole frame.
	if len(a.Keyframes) != 16 {
		t.Errorf("keyframes = %d, want 16", len(a.Keyframes))
	}
	if a.Duration < 500-1e-6 {
		t.Errorf("Duration = %v, want >= 500", a.Duration)
	}
	assertNear(t, "FPS", a.FPS, 30)

	first := a.Keyframes[0].Circles
	if len(first) != 2 || first[0].ID != 1 || first[1].ID != 2 {
		t.Fatalf("ids should be remapped per layer: %+v", first)
	}
	assertNear(t, "initial X", first[1].X, 410)

	last := a.Keyframes[len(a.Keyframes)-1].Circles
	dist := math.Hypot(last[1].X-last[0].X, last[1].Y-last[0].Y)
	if minDist := 40 - opts.Collision.Slop - 0.1; dist < minDist {
		t.Errorf("circles still overlap: distance %v < %v", dist, minDist)
	}
}

func TestRecalculateDeterministic(t *testing.T) {
	layers := []AnimationData{
		singleCircleLayer(100, 100, 30, 400),
		singleCircleLayer(120, 110, 25, 400),
		singleCircleLayer(140, 100, 15, 200),
	}
	opts := DefaultRecalcOptions()
	opts.Physics.GravityEnabled = true

	a, err := Recalculate(context.Background(), layers, opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Recalculate(context.Background(), layers, opts)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Keyframes {
		for j := range a.Keyframes[i].Circles {
			if a.Keyframes[i].Circles[j] != b.Keyframes[i].Circles[j] {
				t.Fatalf("frame %d circle %d differs", i, j)
			}
		}
	}
}

func TestRecalculateErrors(t *testing.T) {
	opts := DefaultRecalcOptions()
	var phases []RecalcPhase
	opts.OnProgress = func(p RecalcProgress) { phases = append(phases, p.Phase) }

	if _, err := Recalculate(context.Background(), nil, opts); !errors.Is(err, ErrNothingToRecalculate) {
		t.Errorf("nil layers: %v", err)
	}
	if _, err := Recalculate(context.Background(), []AnimationData{{}}, opts); !errors.Is(err, ErrNothingToRecalculate) {
		t.Errorf("empty layers: %v", err)
	}

	blank := AnimationData{Duration: 100, Keyframes: []Keyframe{{Time: 0}, {Time: 100}}}
	if _, err := Recalculate(context.Background(), []AnimationData{blank}, opts); !errors.Is(err, ErrNoInitialCircles) {
		t.Errorf("blank layer: %v", err)
	}
	if phases[len(phases)-1] != RecalcError {
		t.Errorf("last phase = %v, want error", phases[len(phases)-1])
	}
}

func TestRecalculateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Recalculate(ctx, []AnimationData{singleCircleLayer(100, 100, 10, 1000)}, DefaultRecalcOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRecalculateCancelMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	opts := DefaultRecalcOptions()
	opts.OnProgress = func(p RecalcProgress) {
		if p.Phase == RecalcSimulating && p.Frame >= 20 {
			cancel()
		}
	}
	_, err := Recalculate(ctx, []AnimationData{singleCircleLayer(100, 100, 10, 5000)}, opts)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRecalculateProgress(t *testing.T) {
	sink := &eventLog{}
	opts := DefaultRecalcOptions()
	opts.Sink = sink
	var reports []RecalcProgress
	opts.OnProgress = func(p RecalcProgress) { reports = append(reports, p) }

	if _, err := Recalculate(context.Background(), []AnimationData{singleCircleLayer(100, 100, 10, 1000)}, opts); err != nil {
		t.Fatal(err)
	}

	if reports[0].Phase != RecalcPreparing {
		t.Errorf("first phase = %v", reports[0].Phase)
	}
	end := reports[len(reports)-1]
	if end.Phase != RecalcComplete || end.Percent != 100 || end.Frame != end.Total {
		t.Errorf("final report = %+v", end)
	}
	prev := -1.0
	for _, r := range reports[1 : len(reports)-1] {
		if r.Phase != RecalcSimulating || r.Frame%recalcProgressStride != 0 {
			t.Errorf("report = %+v", r)
		}
		if r.Percent < prev {
			t.Errorf("percent went backwards: %v < %v", r.Percent, prev)
		}
		prev = r.Percent
	}
	if len(sink.events) != len(reports) {
		t.Errorf("sink events = %d, progress reports = %d", len(sink.events), len(reports))
	}
	for _, e := range sink.events {
		if e.Type != EventRecalcProgress {
			t.Errorf("event type = %v", e.Type)
		}
	}
}

func TestRecalculateFPS(t *testing.T) {
	layer := singleCircleLayer(100, 100, 10, 1000)
	tests := []struct {
		fps        float64
		wantFPS    float64
		wantFrames int
	}{
		{0, DefaultRecordFPS, 31},
		{10, 10, 11},
		{500, MaxRecordFPS, 61},
	}
	for _, tt := range tests {
		opts := DefaultRecalcOptions()
		opts.FPS = tt.fps
		a, err := Recalculate(context.Background(), []AnimationData{layer}, opts)
		if err != nil {
			t.Fatal(err)
		}
		assertNear(t, "FPS", a.FPS, tt.wantFPS)
		if len(a.Keyframes) != tt.wantFrames {
			t.Errorf("fps %v: frames = %d, want %d", tt.fps, len(a.Keyframes), tt.wantFrames)
		}
	}
}

func TestRecalculateAsync(t *testing.T) {
	ch := RecalculateAsync(context.Background(), []AnimationData{singleCircleLayer(100, 100, 10, 200)}, DefaultRecalcOptions())
	res, ok := <-ch
	if !ok {
		t.Fatal("channel closed without a result")
	}
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if res.Animation.Empty() {
		t.Error("empty animation")
	}
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after the result")
	}

	res = <-RecalculateAsync(context.Background(), nil, DefaultRecalcOptions())
	if !errors.Is(res.Err, ErrNothingToRecalculate) {
		t.Errorf("Err = %v", res.Err)
	}
}

func TestRecalcPhaseString(t *testing.T) {
	for phase, want := range map[RecalcPhase]string{
		RecalcPreparing:  "preparing",
		RecalcSimulating: "simulating",
		RecalcComplete:   "complete",
		RecalcError:      "error",
	} {
		if got := phase.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", phase, got, want)
		}
	}
}

// --- Resimulate ---

func movingCircleLayer(fromX, toX, y, r, duration float64) AnimationData {
	return AnimationData{
		Version:  AnimationVersion,
		Name:     "layer",
		Duration: duration,
		FPS:      30,
		Keyframes: []Keyframe{
			{Time: 0, Circles: []CircleSnapshot{snap(1, fromX, y, r)}},
			{Time: duration, Circles: []CircleSnapshot{snap(1, toX, y, r)}},
		},
	}
}

func TestResimulateCrossingLayers(t *testing.T) {
	layers := []AnimationData{
		movingCircleLayer(100, 300, 300, 20, 330),
		movingCircleLayer(300, 100, 300, 20, 330),
	}
	var reports []RecalcProgress
	opts := DefaultRecalcOptions()
	opts.FPS = 60 // ignored in favor of the first layer's rate
	opts.OnProgress = func(p RecalcProgress) { reports = append(reports, p) }

	a, err := Resimulate(context.Background(), layers, opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Validate(); err != nil {
		t.Fatal(err)
	}
	assertNear(t, "FPS", a.FPS, 30)
	// ceil(330 / (1000/30)) + 1 frames.
	if len(a.Keyframes) != 11 {
		t.Fatalf("keyframes = %d, want 11", len(a.Keyframes))
	}

	for i, k := range a.Keyframes {
		assertNear(t, "time", k.Time, float64(i)*1000/30)
		if len(k.Circles) != 2 || k.Circles[0].ID != 1 || k.Circles[1].ID != 2 {
			t.Fatalf("frame %d ids = %+v", i, k.Circles)
		}
		c0, c1 := k.Circles[0], k.Circles[1]
		if d := math.Hypot(c1.X-c0.X, c1.Y-c0.Y); d < 40-1 {
			t.Errorf("frame %d: circles overlap, distance %v", i, d)
		}
	}

	// Frames without contact keep the replayed positions.
	first, last := a.Keyframes[0].Circles, a.Keyframes[len(a.Keyframes)-1].Circles
	assertNear(t, "first A", first[0].X, 100)
	assertNear(t, "first B", first[1].X, 300)
	assertNear(t, "last A", last[0].X, 300)
	assertNear(t, "last B", last[1].X, 100)

	if reports[0].Phase != RecalcPreparing || reports[len(reports)-1].Phase != RecalcComplete {
		t.Errorf("phases = %v .. %v", reports[0].Phase, reports[len(reports)-1].Phase)
	}
}

func TestResimulateDoesNotCarryState(t *testing.T) {
	// A lone circle is never pushed, so every frame matches the replay.
	layer := movingCircleLayer(100, 400, 200, 20, 500)
	opts := DefaultRecalcOptions()
	a, err := Resimulate(context.Background(), []AnimationData{layer}, opts)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range a.Keyframes {
		want := FrameAt(layer.Keyframes, k.Time, nil)[0]
		assertNear(t, "X", k.Circles[0].X, want.X)
		assertNear(t, "Y", k.Circles[0].Y, want.Y)
	}
}

func TestResimulateFPSFallback(t *testing.T) {
	layer := movingCircleLayer(100, 200, 200, 20, 1000)
	layer.FPS = 0
	opts := DefaultRecalcOptions()
	opts.FPS = 10
	a, err := Resimulate(context.Background(), []AnimationData{layer}, opts)
	if err != nil {
		t.Fatal(err)
	}
	assertNear(t, "FPS", a.FPS, 10)
	if len(a.Keyframes) != 11 {
		t.Errorf("keyframes = %d, want 11", len(a.Keyframes))
	}
}

func TestResimulateErrors(t *testing.T) {
	if _, err := Resimulate(context.Background(), nil, DefaultRecalcOptions()); !errors.Is(err, ErrNothingToRecalculate) {
		t.Errorf("nil layers: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Resimulate(ctx, []AnimationData{movingCircleLayer(0, 10, 10, 10, 100)}, DefaultRecalcOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
