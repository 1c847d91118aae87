// Package control provides velocity controllers that drive a session.
//
// A [Controller] turns the current pose and latest lidar scan into a
// [Command] (linear and angular velocity):
//
//   - [Constant]: fixed command
//   - [Goal]: drive to a point, steering with a [PID] on heading error
//   - [Wander]: go straight, turn away from the closer side when blocked
//   - [Manual]: whatever was last set, for teleoperation
//
// # Usage
//
//	ctrl := control.NewGoal(4, 4, 1.0, control.NewPID(2, 0, 0.1))
//	cmd := ctrl.Compute(s.Pose(), scan, s.Time())
//	s.Step(cmd.Linear, cmd.Angular, repeat)
//
// Controllers implementing [Configurable] support live tuning.
package control
