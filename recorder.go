package drift

import (
	"context"
	"fmt"
	"time"

	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

// Recorder limits and defaults.
const (
	DefaultRecordFPS = 30
	MinRecordFPS     = 1
	MaxRecordFPS     = 60

	// captureThrottle is the fraction of the nominal frame interval that must
	// pass before another frame is captured.
	captureThrottle = 0.9
)

// Recorder samples circle state into keyframes while recording and plays the
// result back through an internal Player. Recording methods must be called
// from a single goroutine (the host frame loop); playback may additionally
// be driven by RunPlayback on its own goroutine.
type Recorder struct {
	Clock  Clock
	Logger *zap.Logger
	Sink   EventSink

	fps        float64
	keyframes  []Keyframe
	recording  bool
	startTime  time.Time
	onProgress func(duration float64, frames int)
	player     Player
}

// NewRecorder creates a recorder at DefaultRecordFPS. A nil logger is
// replaced by a no-op logger.
func NewRecorder(logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		Clock:  time.Now,
		Logger: logger,
		fps:    DefaultRecordFPS,
	}
}

// SetFPS sets the capture rate, clamped to [MinRecordFPS, MaxRecordFPS].
func (r *Recorder) SetFPS(fps float64) {
	r.fps = clamp(fps, MinRecordFPS, MaxRecordFPS)
}

// FPS returns the capture rate.
func (r *Recorder) FPS() float64 { return r.fps }

// StartRecording discards any keyframes and captures circles as the t=0 frame.
func (r *Recorder) StartRecording(circles []Circle) {
	r.keyframes = nil
	r.player.release()
	r.startTime = r.now()
	r.recording = true
	r.CaptureFrame(circles)

	r.Logger.Info("recording started", zap.Float64("fps", r.fps))
	emit(r.Sink, Event{Type: EventRecordingStarted, Frames: len(r.keyframes)})
}

// CaptureFrame appends a keyframe if recording and at least 90% of the
// nominal frame interval has passed since the previous one. It reports
// whether a frame was captured.
func (r *Recorder) CaptureFrame(circles []Circle) bool {
	if !r.recording {
		return false
	}
	t := 0.0
	if n := len(r.keyframes); n > 0 {
		t = msSince(r.startTime, r.now())
		minInterval := 1000 / r.fps
		if t-r.keyframes[n-1].Time < minInterval*captureThrottle {
			return false
		}
	}
	r.keyframes = append(r.keyframes, Keyframe{Time: t, Circles: snapshotCircles(circles)})

	if r.onProgress != nil {
		r.onProgress(t, len(r.keyframes))
	}
	if len(r.keyframes) > 1 {
		emit(r.Sink, Event{Type: EventRecordingProgress, Frames: len(r.keyframes), Duration: t})
	}
	return true
}

// StopRecording ends recording. It returns the finished animation, or false
// when not recording or nothing was captured. The recorder keeps its own
// copy of the keyframes for playback.
func (r *Recorder) StopRecording() (AnimationData, bool) {
	if !r.recording {
		return AnimationData{}, false
	}
	r.recording = false
	if len(r.keyframes) == 0 {
		r.Logger.Info("recording stopped with no frames")
		return AnimationData{}, false
	}

	duration := r.Duration()
	anim := AnimationData{
		Version:   AnimationVersion,
		Name:      fmt.Sprintf("animation-%d", r.now().UnixMilli()),
		Duration:  duration,
		Keyframes: CloneKeyframes(r.keyframes),
		FPS:       r.fps,
	}
	r.Logger.Info("recording stopped",
		zap.Int("frames", len(r.keyframes)),
		zap.Float64("duration_ms", duration),
	)
	emit(r.Sink, Event{Type: EventRecordingStopped, Frames: len(r.keyframes), Duration: duration})
	return anim, true
}

// IsRecording reports whether a recording is in progress.
func (r *Recorder) IsRecording() bool { return r.recording }

// RecordingDuration returns the time of the latest captured keyframe while
// recording, and 0 otherwise.
func (r *Recorder) RecordingDuration() float64 {
	if !r.recording {
		return 0
	}
	return r.Duration()
}

// FrameCount returns the number of keyframes held.
func (r *Recorder) FrameCount() int { return len(r.keyframes) }

// Load replaces the recorder's keyframes with a deep copy of a after
// validating it. The capture rate is taken from a, defaulting to
// DefaultRecordFPS when unset.
func (r *Recorder) Load(a AnimationData) error {
	if err := a.Validate(); err != nil {
		return err
	}
	r.setKeyframes(CloneKeyframes(a.Keyframes))
	if a.FPS > 0 {
		r.SetFPS(a.FPS)
	} else {
		r.fps = DefaultRecordFPS
	}
	r.Logger.Info("animation loaded",
		zap.String("name", a.Name),
		zap.Int("frames", len(a.Keyframes)),
		zap.Float64("duration_ms", a.Duration),
	)
	return nil
}

// Keyframes returns a deep copy of the held keyframes.
func (r *Recorder) Keyframes() []Keyframe {
	return CloneKeyframes(r.keyframes)
}

// SetKeyframes replaces the held keyframes with a copy of kfs, typically the
// output of external processing.
func (r *Recorder) SetKeyframes(kfs []Keyframe) {
	r.setKeyframes(CloneKeyframes(kfs))
}

// Duration returns the time of the last keyframe, or 0 when empty.
func (r *Recorder) Duration() float64 {
	if len(r.keyframes) == 0 {
		return 0
	}
	return r.keyframes[len(r.keyframes)-1].Time
}

// HasAnimation reports whether any keyframes are held.
func (r *Recorder) HasAnimation() bool { return len(r.keyframes) > 0 }

// Clear stops playback and discards all keyframes.
func (r *Recorder) Clear() {
	r.player.release()
	r.keyframes = nil
}

// ApplySmoothing smooths the held keyframes in place of the originals. It
// is a no-op with fewer than three keyframes.
func (r *Recorder) ApplySmoothing(strength float64) {
	if len(r.keyframes) < 3 {
		return
	}
	r.setKeyframes(SmoothKeyframes(r.keyframes, strength))
	r.Logger.Info("smoothing applied",
		zap.Float64("strength", strength),
		zap.Int("frames", len(r.keyframes)),
	)
}

// SetRecordingCallback registers fn to be called after every capture with
// the frame time and the keyframe count.
func (r *Recorder) SetRecordingCallback(fn func(duration float64, frames int)) {
	r.onProgress = fn
}

// SetEasing sets the playback easing; nil is linear.
func (r *Recorder) SetEasing(fn ease.TweenFunc) {
	r.player.mu.Lock()
	r.player.Easing = fn
	r.player.mu.Unlock()
}

// StartPlayback plays the held keyframes. It returns false when there is
// nothing to play.
func (r *Recorder) StartPlayback(onFrame func([]CircleSnapshot), onEnd func(), loop bool) bool {
	r.player.configure(r.Clock, r.Sink)
	if !r.player.Start(r.keyframes, onFrame, onEnd, loop) {
		r.Logger.Debug("no animation to play")
		return false
	}
	return true
}

// UpdatePlayback advances playback to the current time.
func (r *Recorder) UpdatePlayback() { r.player.Update() }

// RunPlayback drives playback on the calling goroutine; see Player.Run.
func (r *Recorder) RunPlayback(ctx context.Context, interval time.Duration) error {
	return r.player.Run(ctx, interval)
}

// StopPlayback stops playback.
func (r *Recorder) StopPlayback() { r.player.Stop() }

// PausePlayback pauses playback at the current position.
func (r *Recorder) PausePlayback() { r.player.Pause() }

// ResumePlayback resumes from the paused position.
func (r *Recorder) ResumePlayback() { r.player.Resume() }

// IsPlaying reports whether playback is active.
func (r *Recorder) IsPlaying() bool { return r.player.IsPlaying() }

// FrameAt returns the interpolated frame at t (ms) for scrubbing, or nil
// when empty.
func (r *Recorder) FrameAt(t float64) []CircleSnapshot {
	return FrameAt(r.keyframes, t, r.easing())
}

func (r *Recorder) easing() ease.TweenFunc {
	r.player.mu.Lock()
	defer r.player.mu.Unlock()
	return r.player.Easing
}

// setKeyframes swaps the held slice, retargeting an active playback.
func (r *Recorder) setKeyframes(kfs []Keyframe) {
	r.keyframes = kfs
	r.player.retarget(kfs)
}

func (r *Recorder) now() time.Time {
	if r.Clock == nil {
		return time.Now()
	}
	return r.Clock()
}
