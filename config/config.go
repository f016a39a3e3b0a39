// Package config loads drift engine tuning from YAML files.
//
// Settings mirror the engine's tunable fields. Load starts from Default,
// overlays the file, and validates the result; ApplyTo copies the values
// onto a running Simulation without touching per-frame state such as the
// magnet position or the turbulence phase. Watcher reloads the file when it
// changes on disk.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/phanxgames/drift"
)

// Noise field names accepted by TurbulenceSettings.Noise.
const (
	NoiseSine   = "sine"
	NoisePerlin = "perlin"
)

// Settings is the root of a drift configuration file.
type Settings struct {
	Canvas    CanvasSettings    `yaml:"canvas"`
	Physics   PhysicsSettings   `yaml:"physics"`
	Collision CollisionSettings `yaml:"collision"`
	Forces    ForceSettings     `yaml:"forces"`
	Budgets   BudgetSettings    `yaml:"budgets"`
	Recording RecordingSettings `yaml:"recording"`
	Watchdog  WatchdogSettings  `yaml:"watchdog"`
}

// CanvasSettings sizes the simulation bounds.
type CanvasSettings struct {
	Width  float64 `yaml:"width" validate:"gt=0"`
	Height float64 `yaml:"height" validate:"gt=0"`
}

// PhysicsSettings maps to drift.PhysicsConfig.
type PhysicsSettings struct {
	GravityEnabled  bool    `yaml:"gravity_enabled"`
	GravityStrength float64 `yaml:"gravity_strength" validate:"gte=0"`
	FloorEnabled    bool    `yaml:"floor_enabled"`
	FloorY          float64 `yaml:"floor_y"`
	WallsEnabled    bool    `yaml:"walls_enabled"`
	Damping         float64 `yaml:"damping" validate:"gt=0,lte=1"`
}

// CollisionSettings maps to drift.CollisionConfig plus the broadphase switch.
type CollisionSettings struct {
	Iterations         int     `yaml:"iterations" validate:"gte=0,lte=20"`
	Restitution        float64 `yaml:"restitution" validate:"gte=0,lte=1"`
	Slop               float64 `yaml:"slop" validate:"gte=0"`
	PositionCorrection float64 `yaml:"position_correction" validate:"gte=0,lte=1"`
	QuadtreeThreshold  int     `yaml:"quadtree_threshold" validate:"gte=1"`
}

// ForceSettings holds the tuning of every force accumulator.
type ForceSettings struct {
	Magnet     MagnetSettings     `yaml:"magnet"`
	NBody      StrengthSettings   `yaml:"nbody"`
	Sticky     StrengthSettings   `yaml:"sticky"`
	Flow       FlowSettings       `yaml:"flow"`
	Turbulence TurbulenceSettings `yaml:"turbulence"`
}

// MagnetSettings tunes the pointer magnet.
type MagnetSettings struct {
	Radius   float64 `yaml:"radius" validate:"gt=0"`
	Strength float64 `yaml:"strength" validate:"gte=0"`
}

// StrengthSettings tunes a force with a single strength knob.
type StrengthSettings struct {
	Strength float64 `yaml:"strength" validate:"gte=0,lte=10"`
}

// FlowSettings tunes the flow field.
type FlowSettings struct {
	Strength float64 `yaml:"strength" validate:"gte=0"`
	Radius   float64 `yaml:"radius" validate:"gt=0"`
}

// TurbulenceSettings tunes turbulence and picks its noise field.
type TurbulenceSettings struct {
	Enabled   bool    `yaml:"enabled"`
	Strength  float64 `yaml:"strength" validate:"gte=0"`
	Scale     float64 `yaml:"scale" validate:"gt=0"`
	Frequency float64 `yaml:"frequency" validate:"gte=0"`
	Noise     string  `yaml:"noise" validate:"oneof=sine perlin"`
	Seed      int64   `yaml:"seed"`
}

// BudgetSettings sets the soft time budgets. Zero disables a budget.
type BudgetSettings struct {
	Tick     time.Duration `yaml:"tick" validate:"gte=0"`
	Pairwise time.Duration `yaml:"pairwise" validate:"gte=0"`
}

// RecordingSettings tunes the recorder.
type RecordingSettings struct {
	FPS       float64 `yaml:"fps" validate:"gte=1,lte=60"`
	Smoothing float64 `yaml:"smoothing" validate:"gte=0,lte=1"`
}

// WatchdogSettings tunes slow-frame detection.
type WatchdogSettings struct {
	SlowFrame time.Duration `yaml:"slow_frame" validate:"gt=0"`
	Limit     int           `yaml:"limit" validate:"gte=1"`
}

// Default returns settings equal to the engine defaults.
func Default() Settings {
	phys := drift.DefaultPhysicsConfig()
	coll := drift.DefaultCollisionConfig()
	mag := drift.DefaultMagnet()
	turb := drift.DefaultTurbulence()
	sys := drift.NewSystem()
	return Settings{
		Canvas: CanvasSettings{Width: sys.Bounds.Width, Height: sys.Bounds.Height},
		Physics: PhysicsSettings{
			GravityEnabled:  phys.GravityEnabled,
			GravityStrength: phys.GravityStrength,
			FloorEnabled:    phys.FloorEnabled,
			FloorY:          phys.FloorY,
			WallsEnabled:    phys.WallsEnabled,
			Damping:         phys.Damping,
		},
		Collision: CollisionSettings{
			Iterations:         coll.Iterations,
			Restitution:        coll.Restitution,
			Slop:               coll.Slop,
			PositionCorrection: coll.PositionCorrection,
			QuadtreeThreshold:  drift.DefaultQuadtreeThreshold,
		},
		Forces: ForceSettings{
			Magnet: MagnetSettings{Radius: mag.Radius, Strength: mag.Strength},
			NBody:  StrengthSettings{Strength: drift.DefaultNBody().Strength},
			Sticky: StrengthSettings{Strength: drift.DefaultSticky().Strength},
			Flow:   FlowSettings{Strength: sys.FlowStrength, Radius: sys.FlowRadius},
			Turbulence: TurbulenceSettings{
				Strength:  turb.Strength,
				Scale:     turb.Scale,
				Frequency: turb.Frequency,
				Noise:     NoiseSine,
			},
		},
		Budgets: BudgetSettings{
			Tick:     drift.DefaultTickBudget,
			Pairwise: drift.DefaultPairwiseBudget,
		},
		Recording: RecordingSettings{FPS: drift.DefaultRecordFPS, Smoothing: drift.DefaultSmoothing},
		Watchdog:  WatchdogSettings{SlowFrame: drift.DefaultSlowFrame, Limit: drift.DefaultSlowFrameLimit},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field constraint.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("config: invalid %s: failed %q (value %v)", f.Namespace(), f.Tag(), f.Value())
		}
		return fmt.Errorf("config: validation failed: %w", err)
	}
	return nil
}

// Load reads a YAML file over Default and validates the result.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return Settings{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes YAML over Default and validates the result. Unknown keys
// are rejected. An empty document yields Default.
func Parse(data []byte) (Settings, error) {
	s := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Marshal encodes s as YAML.
func (s Settings) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("config: failed to encode YAML: %w", err)
	}
	return data, nil
}

// PhysicsConfig returns the world switches.
func (s Settings) PhysicsConfig() drift.PhysicsConfig {
	p := s.Physics
	return drift.PhysicsConfig{
		GravityEnabled:  p.GravityEnabled,
		GravityStrength: p.GravityStrength,
		FloorEnabled:    p.FloorEnabled,
		FloorY:          p.FloorY,
		WallsEnabled:    p.WallsEnabled,
		Damping:         p.Damping,
	}
}

// CollisionConfig returns the collision tuning.
func (s Settings) CollisionConfig() drift.CollisionConfig {
	c := s.Collision
	return drift.CollisionConfig{
		Iterations:         c.Iterations,
		Restitution:        c.Restitution,
		Slop:               c.Slop,
		PositionCorrection: c.PositionCorrection,
	}
}

// Bounds returns the canvas rectangle.
func (s Settings) Bounds() drift.Rect {
	return drift.Rect{Width: s.Canvas.Width, Height: s.Canvas.Height}
}

// ApplyTo copies the tuning onto sim. Modes, pointer state, flow vectors,
// and the turbulence phase are left alone. The turbulence field is replaced
// only when the configured noise kind differs from the current one.
func (s Settings) ApplyTo(sim *drift.Simulation) {
	sys := sim.System
	sys.Config = s.PhysicsConfig()
	sys.Collision = s.CollisionConfig()
	sys.Bounds = s.Bounds()
	sys.QuadtreeThreshold = s.Collision.QuadtreeThreshold
	sys.TickBudget = s.Budgets.Tick
	sys.FlowStrength = s.Forces.Flow.Strength
	sys.FlowRadius = s.Forces.Flow.Radius

	sim.Magnet.Radius = s.Forces.Magnet.Radius
	sim.Magnet.Strength = s.Forces.Magnet.Strength
	sim.NBody.Strength = s.Forces.NBody.Strength
	sim.NBody.Budget = s.Budgets.Pairwise
	sim.Sticky.Strength = s.Forces.Sticky.Strength
	sim.Sticky.Budget = s.Budgets.Pairwise

	t := s.Forces.Turbulence
	sim.Turbulence.Enabled = t.Enabled
	sim.Turbulence.Strength = t.Strength
	sim.Turbulence.Scale = t.Scale
	sim.Turbulence.Frequency = t.Frequency
	switch t.Noise {
	case NoisePerlin:
		if _, ok := sim.Turbulence.Field.(*drift.PerlinField); !ok {
			sim.Turbulence.Field = drift.NewPerlinField(t.Seed)
		}
	default:
		if _, ok := sim.Turbulence.Field.(drift.SineField); !ok {
			sim.Turbulence.Field = drift.SineField{}
		}
	}

	sim.Watchdog.Threshold = s.Watchdog.SlowFrame
	sim.Watchdog.Limit = s.Watchdog.Limit
}

// ApplyRecorder sets the recorder's capture rate.
func (s Settings) ApplyRecorder(rec *drift.Recorder) {
	rec.SetFPS(s.Recording.FPS)
}

// RecalcOptions returns recalculation options using these settings.
func (s Settings) RecalcOptions() drift.RecalcOptions {
	opts := drift.DefaultRecalcOptions()
	opts.Physics = s.PhysicsConfig()
	opts.Collision = s.CollisionConfig()
	opts.Bounds = s.Bounds()
	opts.FPS = s.Recording.FPS
	return opts
}
