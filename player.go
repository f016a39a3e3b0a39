package drift

import (
	"context"
	"sync"
	"time"

	"github.com/tanema/gween/ease"
)

// Player plays keyframes back against wall-clock time. Drive it either by
// calling Update once per host frame, or by calling Run on a goroutine.
// All methods are safe for concurrent use; callbacks are invoked without the
// player's lock held, so they may call back into the player.
//
// Easing, Clock, and Sink may be set directly before the player is shared;
// once Run is active, change them only through the owning Recorder or
// LayerManager, which take the lock.
type Player struct {
	// Easing reshapes the fraction between keyframes; nil is linear.
	Easing ease.TweenFunc
	Clock  Clock
	Sink   EventSink

	mu        sync.Mutex
	keyframes []Keyframe
	playing   bool
	loop      bool
	startTime time.Time
	pausedAt  float64 // ms into the animation at Pause
	onFrame   func([]CircleSnapshot)
	onEnd     func()
	stopCh    chan struct{}
}

// Start begins playback of keyframes from t=0. onFrame receives every
// interpolated frame; onEnd fires when a non-looping playback finishes.
// The player reads keyframes without copying them; callers must not mutate
// the slice while playing. Starting with no keyframes is a no-op that
// returns false.
func (p *Player) Start(keyframes []Keyframe, onFrame func([]CircleSnapshot), onEnd func(), loop bool) bool {
	if len(keyframes) == 0 {
		return false
	}
	p.mu.Lock()
	p.stopLocked()
	p.keyframes = keyframes
	p.playing = true
	p.loop = loop
	p.pausedAt = 0
	p.startTime = p.now()
	p.onFrame = onFrame
	p.onEnd = onEnd
	sink := p.Sink
	p.mu.Unlock()

	emit(sink, Event{Type: EventPlaybackStarted, Frames: len(keyframes), Duration: keyframes[len(keyframes)-1].Time})
	p.Update()
	return true
}

// Update emits the frame for the current wall-clock time. Past the end it
// either wraps to t=0 (loop) or stops and fires onEnd.
func (p *Player) Update() {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	now := p.now()
	elapsed := msSince(p.startTime, now)
	duration := p.keyframes[len(p.keyframes)-1].Time

	if elapsed >= duration {
		if !p.loop {
			onEnd, sink := p.onEnd, p.Sink
			p.stopLocked()
			p.mu.Unlock()
			emit(sink, Event{Type: EventPlaybackEnded, Duration: duration})
			if onEnd != nil {
				onEnd()
			}
			return
		}
		p.startTime = now
		elapsed = 0
	}

	frame := FrameAt(p.keyframes, elapsed, p.Easing)
	onFrame := p.onFrame
	p.mu.Unlock()

	if onFrame != nil {
		onFrame(frame)
	}
}

// Run drives Update every interval until the context is canceled or Stop (or
// Pause) is called. It returns immediately when the player is not playing.
func (p *Player) Run(ctx context.Context, interval time.Duration) error {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return nil
	}
	if p.stopCh != nil {
		close(p.stopCh)
	}
	stop := make(chan struct{})
	p.stopCh = stop
	p.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.Stop()
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
			p.Update()
		}
	}
}

// Stop ends playback. Calling Stop when already stopped is a no-op.
func (p *Player) Stop() {
	p.mu.Lock()
	p.stopLocked()
	p.mu.Unlock()
}

func (p *Player) stopLocked() {
	p.playing = false
	if p.stopCh != nil {
		close(p.stopCh)
		p.stopCh = nil
	}
}

// Pause stops playback, remembering the current position for Resume.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing {
		return
	}
	p.pausedAt = msSince(p.startTime, p.now())
	p.stopLocked()
}

// Resume continues from the paused position. It is a no-op while playing or
// when nothing has been started.
func (p *Player) Resume() {
	p.mu.Lock()
	if p.playing || len(p.keyframes) == 0 {
		p.mu.Unlock()
		return
	}
	p.playing = true
	p.startTime = p.now().Add(-time.Duration(p.pausedAt * float64(time.Millisecond)))
	p.mu.Unlock()
	p.Update()
}

// IsPlaying reports whether playback is active.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// FrameAt returns the interpolated frame at t (ms) of the loaded keyframes,
// for scrubbing. It returns nil when nothing is loaded.
func (p *Player) FrameAt(t float64) []CircleSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return FrameAt(p.keyframes, t, p.Easing)
}

// configure sets the clock and sink under the lock, so a running Run loop
// never observes a torn write.
func (p *Player) configure(clock Clock, sink EventSink) {
	p.mu.Lock()
	p.Clock = clock
	p.Sink = sink
	p.mu.Unlock()
}

// release drops the player's reference to its keyframes after stopping.
func (p *Player) release() {
	p.mu.Lock()
	p.stopLocked()
	p.keyframes = nil
	p.pausedAt = 0
	p.mu.Unlock()
}

// retarget swaps the keyframes under an active or paused playback. An empty
// slice stops playback.
func (p *Player) retarget(keyframes []Keyframe) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(keyframes) == 0 {
		p.stopLocked()
		p.keyframes = nil
		return
	}
	if p.keyframes != nil {
		p.keyframes = keyframes
	}
}

func (p *Player) now() time.Time {
	if p.Clock == nil {
		return time.Now()
	}
	return p.Clock()
}

func msSince(start, now time.Time) float64 {
	return float64(now.Sub(start)) / float64(time.Millisecond)
}
