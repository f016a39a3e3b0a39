package drift

import (
	"math"
	"strings"
	"testing"
)

func TestLoadScenarioErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"malformed", `{`, "parse scenario"},
		{"no steps", `{"steps":[]}`, "no steps"},
		{"unknown action", `{"steps":[{"action":"explode"}]}`, `unknown action "explode"`},
		{"zero radius", `{"steps":[{"action":"spawn","x":1,"y":1}]}`, "positive r"},
		{"bad magnet", `{"steps":[{"action":"magnet","mode":"suck"}]}`, "unknown magnet mode"},
		{"bad nbody", `{"steps":[{"action":"nbody","mode":"orbit"}]}`, "unknown nbody mode"},
	}
	for _, tt := range tests {
		_, err := LoadScenario([]byte(tt.script))
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: err = %v, want containing %q", tt.name, err, tt.want)
		}
	}
}

func TestScenarioBounce(t *testing.T) {
	sc, err := LoadScenario([]byte(`{"steps":[
		{"action":"gravity","enabled":true},
		{"action":"floor","enabled":true,"y":400},
		{"action":"spawn","x":200,"y":100,"r":15},
		{"action":"spawn","x":205,"y":100,"r":15},
		{"action":"spawn","x":500,"y":100,"r":15,"locked":true},
		{"action":"tick","frames":600}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	set := NewCircleSet()
	res := sc.Run(NewSimulation(nil), set, nil)

	if res.Ticks != 600 || res.Rejected != 1 {
		t.Errorf("result = %+v", res)
	}
	cs := set.Circles()
	if len(cs) != 2 {
		t.Fatalf("circles = %d", len(cs))
	}
	assertWithin(t, "resting Y", cs[0].Y, 385, 0.5)
	assertNear(t, "locked Y", cs[1].Y, 100)
}

func TestScenarioMagnet(t *testing.T) {
	sc, err := LoadScenario([]byte(`{"steps":[
		{"action":"spawn","x":300,"y":300,"r":10},
		{"action":"magnet","mode":"attract","x":400,"y":300},
		{"action":"tick","frames":30},
		{"action":"magnet","mode":"off"},
		{"action":"tick"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	set := NewCircleSet()
	sim := NewSimulation(nil)
	res := sc.Run(sim, set, nil)

	if res.Ticks != 31 {
		t.Errorf("Ticks = %d", res.Ticks)
	}
	if sim.Magnet.Active {
		t.Error("magnet off should deactivate")
	}
	if x := set.Circles()[0].X; x <= 300 {
		t.Errorf("X = %v, should move toward the magnet", x)
	}
}

func TestScenarioRecordsAnimations(t *testing.T) {
	sc, err := LoadScenario([]byte(`{"steps":[
		{"action":"spawn","x":300,"y":300,"r":20,"vx":4},
		{"action":"record-start"},
		{"action":"tick","frames":60},
		{"action":"record-stop"},
		{"action":"smooth"},
		{"action":"record-start"},
		{"action":"tick","frames":6},
		{"action":"record-stop"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	rec := NewRecorder(nil)
	res := sc.Run(NewSimulation(nil), NewCircleSet(), rec)

	if len(res.Animations) != 2 {
		t.Fatalf("animations = %d, want 2", len(res.Animations))
	}
	first := res.Animations[0]
	if err := first.Validate(); err != nil {
		t.Fatal(err)
	}
	// At 60 ticks per second and 30 fps, every other tick is captured.
	if n := len(first.Keyframes); n != 31 {
		t.Errorf("keyframes = %d, want 31", n)
	}
	assertWithin(t, "duration", first.Duration, 1000, 1e-3)

	xs := make([]float64, len(first.Keyframes))
	for i, k := range first.Keyframes {
		xs[i] = k.Circles[0].X
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] < xs[i-1] {
			t.Fatalf("circle moved backwards at frame %d", i)
		}
	}
	if math.Abs(xs[len(xs)-1]-xs[0]) < 1 {
		t.Error("circle should have moved")
	}
}

func TestScenarioDeterministic(t *testing.T) {
	script := []byte(`{"steps":[
		{"action":"gravity","enabled":true},
		{"action":"nbody","mode":"clump"},
		{"action":"sticky","enabled":true},
		{"action":"spawn","x":300,"y":300,"r":20},
		{"action":"spawn","x":345,"y":300,"r":20},
		{"action":"spawn","x":390,"y":300,"r":20},
		{"action":"tick","frames":120}
	]}`)
	run := func() []Circle {
		sc, err := LoadScenario(script)
		if err != nil {
			t.Fatal(err)
		}
		set := NewCircleSet()
		sc.Run(NewSimulation(nil), set, nil)
		out := make([]Circle, set.Len())
		copy(out, set.Circles())
		return out
	}
	a, b := run(), run()
	for i := range a {
		if a[i].X != b[i].X || a[i].Y != b[i].Y {
			t.Fatalf("circle %d differs between runs", i)
		}
	}
}
