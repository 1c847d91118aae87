// Package session is the entry point the surrounding application drives.
//
// A [Session] owns one robot, one world and one stepping engine:
//
//	s := session.New(robot.New(robot.DefaultConfig()))
//	if err := s.Initialize(""); err != nil { // built-in default map
//		return err
//	}
//	s.SetPose(-8.5, 8.5, 0)
//	res, _ := s.Step(0.5, 0.1, 10)
//	if res.Collided {
//		s.SetPose(-8.5, 8.5, 0) // the only way out of a collision
//	}
//
// Sessions are not safe for concurrent use. Worlds are, so many sessions
// may be initialized with the same [world.World].
package session
