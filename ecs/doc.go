// Package ecs bridges drift engine events into ECS worlds.
//
// The primary adapter is [NewDonburiSink], which publishes [drift.Event]
// values (performance warnings, recording, playback, and recalculation
// progress) into a [Donburi] world as typed events. Subscribe to
// [EngineEventType] in your ECS systems to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	sim.Sink = sink
//	recorder.Sink = sink
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
