package drift

import "time"

// Watchdog defaults.
const (
	DefaultSlowFrame      = 100 * time.Millisecond
	DefaultSlowFrameLimit = 5

	fpsSampleWindow = 500 * time.Millisecond
)

// Watchdog watches frame deltas for sustained slowness. Each slow frame
// raises a counter and each normal frame lowers it; when the counter passes
// Limit, Observe reports a critical condition and the counter resets. It
// never pauses anything itself.
//
// It also keeps a rolling frame-rate estimate refreshed every ~0.5 seconds.
type Watchdog struct {
	Threshold time.Duration
	Limit     int

	slow      int
	fpsFrames int
	fpsAccum  time.Duration
	fps       float64
}

// DefaultWatchdog returns a watchdog tripping after more than 5 net frames
// slower than 100ms.
func DefaultWatchdog() Watchdog {
	return Watchdog{Threshold: DefaultSlowFrame, Limit: DefaultSlowFrameLimit}
}

// Observe records one frame delta and reports whether performance is critical.
func (w *Watchdog) Observe(delta time.Duration) bool {
	w.fpsFrames++
	w.fpsAccum += delta
	if w.fpsAccum >= fpsSampleWindow {
		w.fps = float64(w.fpsFrames) / w.fpsAccum.Seconds()
		w.fpsFrames = 0
		w.fpsAccum = 0
	}

	if delta <= w.Threshold {
		if w.slow > 0 {
			w.slow--
		}
		return false
	}
	w.slow++
	if w.slow > w.Limit {
		w.slow = 0
		return true
	}
	return false
}

// SlowFrames returns the current net slow-frame count.
func (w *Watchdog) SlowFrames() int {
	return w.slow
}

// FPS returns the most recent frame-rate estimate, or 0 before the first window.
func (w *Watchdog) FPS() float64 {
	return w.fps
}

// Reset clears all counters.
func (w *Watchdog) Reset() {
	w.slow = 0
	w.fpsFrames = 0
	w.fpsAccum = 0
	w.fps = 0
}
