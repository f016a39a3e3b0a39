package drift

import (
	"time"

	"go.uber.org/zap"
)

// StepReport describes one composed simulation tick.
type StepReport struct {
	Tick       TickStats
	Spawned    int
	NBodyCut   bool // n-body loop hit its budget
	StickyCut  bool // sticky loop hit its budget
	FrameDelta time.Duration
	// PerformanceCritical is set on the frame the watchdog trips.
	PerformanceCritical bool
	Paused              bool
}

// Simulation composes the full tick for a host: every force in a fixed
// order, then the flow field, then System.Update. The host owns the circles
// and passes them in each Step.
type Simulation struct {
	System *System

	Magnet      Magnet
	NBody       NBody
	Sticky      Sticky
	Turbulence  Turbulence
	Scale       UniformScaler
	RandomScale RandomScaler
	Spawn       Spawner
	RandomSpawn Spawner

	// Paused skips all physics; the watchdog still runs.
	Paused   bool
	Watchdog Watchdog

	Logger   *zap.Logger
	Sink     EventSink
	Observer Observer
	Clock    Clock

	mask      []bool
	lastFrame time.Time
}

// NewSimulation creates a Simulation with default tuning. A nil logger is
// replaced by a no-op logger.
func NewSimulation(logger *zap.Logger) *Simulation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulation{
		System:      NewSystem(),
		Magnet:      DefaultMagnet(),
		NBody:       DefaultNBody(),
		Sticky:      DefaultSticky(),
		Turbulence:  DefaultTurbulence(),
		Spawn:       DefaultSpawner(),
		RandomSpawn: DefaultSpawner(),
		Watchdog:    DefaultWatchdog(),
		Logger:      logger,
		Clock:       time.Now,
	}
}

// Step advances the simulation by one frame.
func (s *Simulation) Step(set *CircleSet, pol Policy, layer ActiveLayer) StepReport {
	var report StepReport
	s.observeFrame(&report)

	if s.Paused {
		report.Paused = true
		s.report(report)
		return report
	}

	circles := set.Circles()
	s.mask = pol.Mask(circles, s.mask)

	s.Magnet.Apply(circles, s.mask)
	report.NBodyCut = s.NBody.Apply(circles, s.mask)
	report.StickyCut = s.Sticky.Apply(circles, s.mask)
	s.Turbulence.Apply(circles, s.mask)
	s.Scale.Apply(circles, s.mask)
	s.RandomScale.Apply(circles, s.mask)

	bounds := s.System.Bounds
	report.Spawned += s.Spawn.Spawn(set, layer, bounds)
	report.Spawned += s.RandomSpawn.Spawn(set, layer, bounds)
	if report.Spawned > 0 {
		circles = set.Circles()
		s.mask = pol.Mask(circles, s.mask)
	}

	s.System.ApplyFlowField(circles, s.mask)
	report.Tick = s.System.Update(circles, s.mask)

	s.report(report)
	return report
}

// observeFrame measures the delta since the previous Step and feeds the watchdog.
func (s *Simulation) observeFrame(report *StepReport) {
	now := s.now()
	if !s.lastFrame.IsZero() {
		report.FrameDelta = now.Sub(s.lastFrame)
		if s.Watchdog.Observe(report.FrameDelta) {
			report.PerformanceCritical = true
			s.Logger.Warn("performance critical, consider pausing physics",
				zap.Duration("frame_delta", report.FrameDelta),
			)
			emit(s.Sink, Event{Type: EventPerformanceCritical, Delta: report.FrameDelta})
		}
	}
	s.lastFrame = now
}

func (s *Simulation) report(r StepReport) {
	if s.Observer != nil {
		s.Observer.ObserveStep(r)
	}
}

func (s *Simulation) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}
