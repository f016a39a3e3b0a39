// Package drift is a real-time 2D circle physics engine for interactive
// drawing tools, with animation capture, playback, smoothing, and
// multi-layer recalculation.
//
// The host owns the circles. Each frame it passes them to the engine, which
// mutates positions, velocities, and radii in place. There is no global
// simulation state; hosts call Step themselves.
//
// # Quick start
//
//	set := drift.NewCircleSet()
//	set.Add(drift.NewCircle(100, 100, 20, "#ff8800", "layer-1"))
//
//	sim := drift.NewSimulation(logger)
//	sim.System.Config.GravityEnabled = true
//
//	// once per frame:
//	sim.Step(set, drift.Policy{}, drift.ActiveLayer{ID: "layer-1"})
//
// [Simulation.Step] runs the forces in a fixed order (magnet, n-body,
// sticky, turbulence, uniform and random scaling, auto-spawn, flow field)
// and then [System.Update], which applies gravity, resolves collisions,
// integrates, and bounces circles off the floor and walls.
//
// # Affected circles
//
// A [Policy] decides which circles may move this tick. Locked and dragged
// circles are never moved; hidden or locked layers and an active selection
// filter narrow the set further. The policy is evaluated once per tick into
// a mask shared by every force and the collision resolver. Unaffected
// circles take part in collisions as immovable obstacles.
//
// # Collisions
//
// Up to [CollisionConfig.Iterations] passes of impulse resolution with
// restitution and positional correction run each tick. Above
// [System.QuadtreeThreshold] circles, pairs are found with a region
// quadtree; below it a nested loop is used. Both visit every overlapping
// pair exactly once per pass.
//
// # Time budgets
//
// The pairwise forces and the whole tick carry soft time budgets. When a
// budget runs out the loop stops early and the overrun is reported in
// [StepReport] and [TickStats]. A [Watchdog] counts sustained slow frames
// and raises [EventPerformanceCritical].
//
// # Animation
//
// A [Recorder] samples the circles into [Keyframe] values while recording
// and plays them back with a [Player]. Playback is either host-driven, by
// calling Update each frame, or self-driven with Run on a goroutine.
// [SmoothKeyframes] filters trajectories with a zero-lag exponential moving
// average. A [LayerManager] holds several animations as layers and
// [Recalculate] re-simulates them together so circles from different layers
// collide. [Resimulate] instead replays each layer's recorded motion and only
// pushes apart circles that overlap in a frame.
//
// Animations use a JSON interchange format; see [DecodeAnimation].
//
// The config, metrics, and ecs subpackages provide YAML settings with hot
// reload, Prometheus metrics, and a [Donburi] event bridge.
//
// [Donburi]: https://github.com/yohamta/donburi
package drift
