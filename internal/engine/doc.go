// Package engine implements the dual-rate stepping engine.
//
// A call to [Engine.Step] advances a [Body] over a horizon of whole
// collision-check intervals. Two cadences run side by side:
//
//   - collision checks, every [Intervals.CollisionCheck] seconds of simulated
//     time (collision radius / max speed), so the body can never travel more
//     than one radius between checks
//   - sensor samples, every [Intervals.SensorSample] seconds (1 / sensor Hz),
//     placed exactly on their deadlines even when they fall inside a
//     collision slice
//
// A slice that contains a sensor deadline is split at the deadline: motion is
// integrated up to it, collision is checked, the sensor is sampled, and the
// rest of the slice is integrated before the next slice starts. Slice
// boundaries therefore stay on multiples of the collision interval and each
// call ends exactly on its horizon.
//
// The first contact latches the engine into [Halted]. A halted engine
// performs no motion and no sampling until [Engine.Reset].
//
// # Thread Safety
//
// Engine instances are NOT thread-safe. The collider may be shared between
// engines if it is read-only.
package engine
