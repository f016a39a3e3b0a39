package drift

import (
	"encoding/json"
	"fmt"
	"time"
)

// ScenarioFrame is the virtual time that passes per scenario tick.
const ScenarioFrame = time.Second / 60

// scenarioStep is a single action in a scenario script.
type scenarioStep struct {
	Action   string  `json:"action"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	R        float64 `json:"r,omitempty"`
	VX       float64 `json:"vx,omitempty"`
	VY       float64 `json:"vy,omitempty"`
	Color    string  `json:"color,omitempty"`
	Layer    string  `json:"layer,omitempty"`
	Locked   bool    `json:"locked,omitempty"`
	Enabled  bool    `json:"enabled,omitempty"`
	Mode     string  `json:"mode,omitempty"`
	Frames   int     `json:"frames,omitempty"`
	Strength float64 `json:"strength,omitempty"`
}

// scenarioScript is the top-level JSON structure for a scenario.
type scenarioScript struct {
	Steps []scenarioStep `json:"steps"`
}

// Scenario is a scripted sequence of simulation actions, for reproducible
// runs and regression tests. Supported actions:
//
//	spawn         add a circle (x, y, r, vx, vy, color, layer, locked)
//	tick          step the simulation (frames, default 1)
//	gravity       toggle gravity (enabled, strength)
//	floor         toggle the floor (enabled, y)
//	walls         toggle the walls (enabled)
//	magnet        set the magnet (mode attract|repel|off, x, y)
//	nbody         set n-body (mode clump|spread|off)
//	sticky        toggle sticky (enabled)
//	record-start  start recording
//	record-stop   stop recording and keep the animation
//	smooth        smooth the recorder's keyframes (strength)
type Scenario struct {
	steps []scenarioStep
}

// ScenarioResult summarizes a scenario run.
type ScenarioResult struct {
	Ticks      int
	Rejected   int // spawns refused because of overlap
	Animations []AnimationData
}

// LoadScenario parses a JSON scenario script.
func LoadScenario(jsonData []byte) (*Scenario, error) {
	var script scenarioScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("drift: parse scenario: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("drift: parse scenario: no steps")
	}
	for i, st := range script.Steps {
		if err := st.validate(); err != nil {
			return nil, fmt.Errorf("drift: parse scenario: step %d: %w", i, err)
		}
	}
	return &Scenario{steps: script.Steps}, nil
}

func (st scenarioStep) validate() error {
	switch st.Action {
	case "spawn":
		if st.R <= 0 {
			return fmt.Errorf("spawn needs a positive r")
		}
	case "magnet":
		if _, ok := parseMagnetMode(st.Mode); !ok {
			return fmt.Errorf("unknown magnet mode %q", st.Mode)
		}
	case "nbody":
		if _, ok := parseNBodyMode(st.Mode); !ok {
			return fmt.Errorf("unknown nbody mode %q", st.Mode)
		}
	case "tick", "gravity", "floor", "walls", "sticky", "record-start", "record-stop", "smooth":
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
	return nil
}

// Run executes every step against sim, set, and rec. It installs a virtual
// clock on sim, its System and pairwise forces, and rec, advancing
// ScenarioFrame per tick, so runs are deterministic. A nil rec is replaced
// by a fresh Recorder.
func (sc *Scenario) Run(sim *Simulation, set *CircleSet, rec *Recorder) ScenarioResult {
	if rec == nil {
		rec = NewRecorder(sim.Logger)
	}
	now := time.Unix(0, 0)
	clock := func() time.Time { return now }
	sim.Clock = clock
	sim.System.Clock = clock
	sim.NBody.Clock = clock
	sim.Sticky.Clock = clock
	rec.Clock = clock

	var res ScenarioResult
	for _, st := range sc.steps {
		switch st.Action {
		case "spawn":
			c := NewCircle(st.X, st.Y, st.R, st.Color, st.Layer)
			c.VX, c.VY = st.VX, st.VY
			c.Locked = st.Locked
			if !set.Add(c) {
				res.Rejected++
			}
		case "tick":
			frames := max(st.Frames, 1)
			for range frames {
				now = now.Add(ScenarioFrame)
				sim.Step(set, Policy{}, ActiveLayer{})
				rec.CaptureFrame(set.Circles())
				res.Ticks++
			}
		case "gravity":
			sim.System.Config.GravityEnabled = st.Enabled
			if st.Strength > 0 {
				sim.System.Config.GravityStrength = st.Strength
			}
		case "floor":
			sim.System.Config.FloorEnabled = st.Enabled
			if st.Y > 0 {
				sim.System.Config.FloorY = st.Y
			}
		case "walls":
			sim.System.Config.WallsEnabled = st.Enabled
		case "magnet":
			mode, _ := parseMagnetMode(st.Mode)
			sim.Magnet.Mode = mode
			sim.Magnet.Active = mode != MagnetOff
			sim.Magnet.X, sim.Magnet.Y = st.X, st.Y
		case "nbody":
			sim.NBody.Mode, _ = parseNBodyMode(st.Mode)
		case "sticky":
			sim.Sticky.Enabled = st.Enabled
		case "record-start":
			rec.StartRecording(set.Circles())
		case "record-stop":
			if a, ok := rec.StopRecording(); ok {
				res.Animations = append(res.Animations, a)
			}
		case "smooth":
			strength := st.Strength
			if strength == 0 {
				strength = DefaultSmoothing
			}
			rec.ApplySmoothing(strength)
		}
	}
	return res
}

func parseMagnetMode(s string) (MagnetMode, bool) {
	switch s {
	case "attract":
		return MagnetAttract, true
	case "repel":
		return MagnetRepel, true
	case "off", "":
		return MagnetOff, true
	}
	return MagnetOff, false
}

func parseNBodyMode(s string) (NBodyMode, bool) {
	switch s {
	case "clump":
		return NBodyClump, true
	case "spread":
		return NBodySpread, true
	case "off", "":
		return NBodyOff, true
	}
	return NBodyOff, false
}
