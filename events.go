package drift

import "time"

// EventType identifies an engine notification.
type EventType uint8

const (
	EventPerformanceCritical EventType = iota // sustained slow frames detected
	EventRecordingStarted                     // recorder captured its t=0 frame
	EventRecordingProgress                    // recorder captured another frame
	EventRecordingStopped                     // recorder finished an animation
	EventPlaybackStarted                      // player began playback
	EventPlaybackEnded                        // non-looping playback reached the end
	EventRecalcProgress                       // layer recalculation advanced
)

// String returns a short name for the event type.
func (t EventType) String() string {
	switch t {
	case EventPerformanceCritical:
		return "performance_critical"
	case EventRecordingStarted:
		return "recording_started"
	case EventRecordingProgress:
		return "recording_progress"
	case EventRecordingStopped:
		return "recording_stopped"
	case EventPlaybackStarted:
		return "playback_started"
	case EventPlaybackEnded:
		return "playback_ended"
	case EventRecalcProgress:
		return "recalc_progress"
	default:
		return "unknown"
	}
}

// Event carries notification data. Only the fields relevant to Type are set.
type Event struct {
	Type EventType
	// Frames is the keyframe count (recording) or current frame (recalc).
	Frames int
	// Total is the total frame count (recalc).
	Total int
	// Duration is the animation time in milliseconds.
	Duration float64
	// Percent is the recalc progress in [0, 100].
	Percent float64
	// Delta is the offending frame delta (performance).
	Delta time.Duration
}

// EventSink receives engine notifications. Implementations must not block;
// see the ecs package for a Donburi-backed sink.
type EventSink interface {
	Emit(event Event)
}

// EventFunc adapts a function to EventSink.
type EventFunc func(Event)

// Emit implements EventSink.
func (f EventFunc) Emit(e Event) { f(e) }

func emit(sink EventSink, e Event) {
	if sink != nil {
		sink.Emit(e)
	}
}

// Observer receives a report after every simulation step. The metrics
// package provides a Prometheus-backed implementation.
type Observer interface {
	ObserveStep(report StepReport)
}
