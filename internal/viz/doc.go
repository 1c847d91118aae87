// Package viz renders sessions in the terminal.
//
//   - [Canvas]: braille pixel canvas, with a [Viewport] mapping world
//     coordinates onto it
//   - [TextRenderer]: a session.Renderer printing one canvas per frame
//   - [Model]: Bubble Tea teleop view with lidar clearance graph
//   - Theme selection with 3 built-in color schemes
//
// # Key Bindings
//
//	Arrows/WASD - Drive
//	X           - Stop
//	Space       - Pause/Resume
//	R           - Reset to start pose (clears a collision)
//	Tab         - Toggle autopilot
//	T           - Cycle color themes
//	?           - Show help overlay
package viz
