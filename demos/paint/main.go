// paint is an interactive drift sandbox: paint circles, switch forces on and
// off, record the motion, smooth it, and play it back.
//
// Controls:
//
//	left mouse   paint circles
//	right mouse  hold the magnet at the cursor
//	G F W        gravity, floor, walls
//	M N K T      magnet mode, n-body mode, sticky, turbulence
//	U            auto-spawn
//	V X          add a flow vector (drag direction), erase flow vectors
//	P            pause physics
//	R            start or stop recording
//	S            smooth the recording
//	Space        play or stop the recording
//	L            copy the recording into the active animation layer
//	Enter        recalculate all layers together and play the result
//	E            export the recording to -out
//	C            clear circles and flow vectors
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"math"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"

	"github.com/phanxgames/drift"
	"github.com/phanxgames/drift/config"
	"github.com/phanxgames/drift/metrics"
)

const (
	screenW   = 1024
	screenH   = 700
	brushSize = 18.0
	layerID   = "paint"
)

var palette = []string{"#f94144", "#f3722c", "#f9c74f", "#90be6d", "#43aa8b", "#577590"}

type game struct {
	logger   *zap.Logger
	sim      *drift.Simulation
	set      *drift.CircleSet
	recorder *drift.Recorder
	layers   *drift.LayerManager
	settings config.Settings
	reloads  chan config.Settings
	outPath  string

	frame      []drift.CircleSnapshot // playback frame, nil when live
	last       drift.StepReport
	colorIdx   int
	dragX      float64
	dragY      float64
	status     string
	statusTime time.Time
}

func main() {
	configPath := flag.String("config", "", "YAML settings file, hot reloaded")
	metricsAddr := flag.String("metrics", "", "serve Prometheus metrics on this address")
	outPath := flag.String("out", "animation.json", "export path for E")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	g := newGame(logger, *outPath)

	if *configPath != "" {
		w, err := config.NewWatcher(*configPath, 0, logger)
		if err != nil {
			logger.Fatal("failed to load config", zap.Error(err))
		}
		defer w.Stop()
		g.apply(w.Settings())
		w.OnChange(func(s config.Settings) {
			select {
			case g.reloads <- s:
			default:
				logger.Warn("dropping config reload, previous one not applied yet")
			}
		})
	}

	if *metricsAddr != "" {
		c := metrics.NewCollector("")
		g.sim.Observer = c
		g.sim.Sink = metrics.Tee(g.sim.Sink, c)
		g.recorder.Sink = g.sim.Sink
		g.layers.Sink = g.sim.Sink
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", c.Handler())
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", zap.Error(err))
			}
		}()
		logger.Info("serving metrics", zap.String("addr", *metricsAddr))
	}

	ebiten.SetWindowSize(screenW, screenH)
	ebiten.SetWindowTitle("drift paint")
	ebiten.SetTPS(60)
	if err := ebiten.RunGame(g); err != nil {
		logger.Fatal("game exited", zap.Error(err))
	}
}

func newGame(logger *zap.Logger, outPath string) *game {
	g := &game{
		logger:   logger,
		sim:      drift.NewSimulation(logger),
		set:      drift.NewCircleSet(),
		recorder: drift.NewRecorder(logger),
		layers:   drift.NewLayerManager(logger),
		settings: config.Default(),
		reloads:  make(chan config.Settings, 1),
		outPath:  outPath,
	}
	g.sim.Sink = drift.EventFunc(g.onEvent)
	g.recorder.Sink = g.sim.Sink
	g.recorder.SetEasing(ease.InOutSine)
	g.sim.Spawn.Color = g.nextColor
	g.apply(g.settings)
	g.sim.System.SetBounds(0, 0, screenW, screenH)
	return g
}

func (g *game) apply(s config.Settings) {
	g.settings = s
	s.ApplyTo(g.sim)
	s.ApplyRecorder(g.recorder)
}

func (g *game) onEvent(e drift.Event) {
	if e.Type == drift.EventPerformanceCritical {
		g.flash("performance critical: press P to pause physics")
	}
}

func (g *game) flash(msg string) {
	g.status = msg
	g.statusTime = time.Now()
}

func (g *game) nextColor() string {
	g.colorIdx = (g.colorIdx + 1) % len(palette)
	return palette[g.colorIdx]
}

func (g *game) Update() error {
	select {
	case s := <-g.reloads:
		g.apply(s)
		g.sim.System.SetBounds(0, 0, screenW, screenH)
		g.flash("config reloaded")
	default:
	}

	g.handleInput()

	if g.recorder.IsPlaying() || g.layers.IsPlaying() {
		g.recorder.UpdatePlayback()
		g.layers.UpdatePlayback()
		return nil
	}
	g.frame = nil

	g.last = g.sim.Step(g.set, drift.Policy{}, drift.ActiveLayer{ID: layerID, Kind: drift.LayerCircles})
	g.recorder.CaptureFrame(g.set.Circles())
	return nil
}

func (g *game) handleInput() {
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)

	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.set.Add(drift.NewCircle(x, y, brushSize, g.nextColor(), layerID))
	}
	g.sim.Magnet.Active = ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	g.sim.Magnet.X, g.sim.Magnet.Y = x, y

	sys := g.sim.System
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		sys.Config.GravityEnabled = !sys.Config.GravityEnabled
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		sys.Config.FloorEnabled = !sys.Config.FloorEnabled
	case inpututil.IsKeyJustPressed(ebiten.KeyW):
		sys.Config.WallsEnabled = !sys.Config.WallsEnabled
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		g.sim.Magnet.Mode = (g.sim.Magnet.Mode + 1) % 3
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		g.sim.NBody.Mode = (g.sim.NBody.Mode + 1) % 3
	case inpututil.IsKeyJustPressed(ebiten.KeyK):
		g.sim.Sticky.Enabled = !g.sim.Sticky.Enabled
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		g.sim.Turbulence.Enabled = !g.sim.Turbulence.Enabled
	case inpututil.IsKeyJustPressed(ebiten.KeyU):
		if g.sim.Spawn.Mode == drift.SpawnOff {
			g.sim.Spawn.Mode = drift.SpawnUniform
		} else {
			g.sim.Spawn.Mode = drift.SpawnOff
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyV):
		angle := math.Atan2(y-g.dragY, x-g.dragX)
		sys.AddFlowVector(x, y, angle)
	case inpututil.IsKeyJustPressed(ebiten.KeyX):
		sys.RemoveFlowVectorAt(x, y, 0)
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		g.sim.Paused = !g.sim.Paused
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.toggleRecording()
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		g.recorder.ApplySmoothing(g.settings.Recording.Smoothing)
		g.flash("smoothed")
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.togglePlayback()
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		g.storeLayer()
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		g.recalculate()
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		g.export()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.set.Clear()
		sys.ClearFlowField()
	}
	g.dragX, g.dragY = x, y
}

func (g *game) toggleRecording() {
	if !g.recorder.IsRecording() {
		g.recorder.StartRecording(g.set.Circles())
		g.flash("recording")
		return
	}
	if a, ok := g.recorder.StopRecording(); ok {
		g.flash(fmt.Sprintf("recorded %d frames", len(a.Keyframes)))
	}
}

func (g *game) togglePlayback() {
	if g.recorder.IsPlaying() || g.layers.IsPlaying() {
		g.recorder.StopPlayback()
		g.layers.StopPlayback()
		return
	}
	show := func(f []drift.CircleSnapshot) { g.frame = f }
	if !g.recorder.StartPlayback(show, nil, true) {
		g.flash("nothing recorded")
	}
}

func (g *game) storeLayer() {
	if !g.recorder.HasAnimation() {
		g.flash("nothing recorded")
		return
	}
	active, ok := g.layers.ActiveLayer()
	if !ok || active.Animation != nil {
		active = g.layers.AddLayer("")
		g.layers.SetActiveLayer(active.ID)
	}
	a := drift.AnimationData{
		Version:   drift.AnimationVersion,
		Name:      active.Name,
		Duration:  g.recorder.Duration(),
		Keyframes: g.recorder.Keyframes(),
		FPS:       g.recorder.FPS(),
	}
	if err := g.layers.LoadAnimation(active.ID, a); err != nil {
		g.flash(err.Error())
		return
	}
	g.flash("stored in " + active.Name)
}

func (g *game) recalculate() {
	opts := g.settings.RecalcOptions()
	opts.Bounds = drift.Rect{Width: screenW, Height: screenH}
	if _, err := g.layers.Recalculate(context.Background(), opts); err != nil {
		g.flash(err.Error())
		return
	}
	g.recorder.StopPlayback()
	g.layers.StartPlayback(func(f []drift.CircleSnapshot) { g.frame = f }, nil, true)
	g.flash("playing recalculated layers")
}

func (g *game) export() {
	if !g.recorder.HasAnimation() {
		g.flash("nothing recorded")
		return
	}
	data, err := drift.EncodeAnimation(drift.AnimationData{
		Version:   drift.AnimationVersion,
		Name:      "paint",
		Duration:  g.recorder.Duration(),
		Keyframes: g.recorder.Keyframes(),
		FPS:       g.recorder.FPS(),
	})
	if err == nil {
		err = os.WriteFile(g.outPath, data, 0o644)
	}
	if err != nil {
		g.logger.Error("export failed", zap.Error(err))
		g.flash("export failed")
		return
	}
	g.flash("exported to " + g.outPath)
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0x10, 0x10, 0x17, 0xff})

	if g.frame != nil {
		for _, c := range g.frame {
			vector.DrawFilledCircle(screen, float32(c.X), float32(c.Y), float32(c.R), parseColor(c.Color), true)
		}
	} else {
		for _, c := range g.set.Circles() {
			vector.DrawFilledCircle(screen, float32(c.X), float32(c.Y), float32(c.R), parseColor(c.Color), true)
		}
	}

	flowColor := color.RGBA{0x80, 0xc0, 0xff, 0x90}
	for _, fv := range g.sim.System.FlowVectors() {
		ex := fv.X + math.Cos(fv.Angle)*24
		ey := fv.Y + math.Sin(fv.Angle)*24
		vector.StrokeLine(screen, float32(fv.X), float32(fv.Y), float32(ex), float32(ey), 2, flowColor, true)
	}

	if g.sim.System.Config.FloorEnabled {
		fy := float32(g.sim.System.Config.FloorY)
		vector.StrokeLine(screen, 0, fy, screenW, fy, 1, color.RGBA{0x60, 0x60, 0x60, 0xff}, true)
	}

	ebitenutil.DebugPrint(screen, g.hud())
}

func (g *game) hud() string {
	sys := g.sim.System
	s := fmt.Sprintf("FPS %.0f  circles %d  passes %d  quadtree %v\n",
		ebiten.ActualFPS(), g.set.Len(), g.last.Tick.Passes, g.last.Tick.UsedQuadtree)
	s += fmt.Sprintf("gravity %v  floor %v  walls %v  magnet %s  nbody %s  sticky %v  turbulence %v\n",
		sys.Config.GravityEnabled, sys.Config.FloorEnabled, sys.Config.WallsEnabled,
		g.sim.Magnet.Mode, g.sim.NBody.Mode, g.sim.Sticky.Enabled, g.sim.Turbulence.Enabled)
	if g.recorder.IsRecording() {
		s += fmt.Sprintf("REC %.1fs  %d frames\n", g.recorder.RecordingDuration()/1000, g.recorder.FrameCount())
	}
	if g.sim.Paused {
		s += "PAUSED\n"
	}
	if g.status != "" && time.Since(g.statusTime) < 3*time.Second {
		s += g.status + "\n"
	}
	return s
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenW, screenH
}

// parseColor decodes "#rrggbb". Anything else renders white.
func parseColor(s string) color.RGBA {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{0xff, 0xff, 0xff, 0xff}
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{0xff, 0xff, 0xff, 0xff}
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 0xff}
}
