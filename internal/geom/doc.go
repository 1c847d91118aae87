// Package geom provides the 2D value types the simulator is built from.
//
//   - [Vec]: a 2D vector (gonum's r2.Vec)
//   - [Pose]: position and heading of a rigid body in the plane
//   - [Line]: a wall segment between two endpoints
//   - [Circle]: a round obstacle
//
// Line and Circle answer the two questions the world engine needs: how far
// is a point from the obstacle, and where does a ray first hit it.
package geom
