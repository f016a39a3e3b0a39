package ecs

import (
	"github.com/phanxgames/drift"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// EngineEventType is the Donburi event type for drift engine events.
var EngineEventType = events.NewEventType[drift.Event]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Events are
// queued on EngineEventType and delivered when the world's systems call
// ProcessEvents.
func NewDonburiSink(world donburi.World) drift.EventSink {
	return &donburiSink{world: world}
}

// Emit queues event on the world; subscribers see it on the next
// ProcessEvents call.
func (s *donburiSink) Emit(event drift.Event) {
	EngineEventType.Publish(s.world, event)
}
