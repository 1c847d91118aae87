package control

import (
	"math"

	"github.com/san-kum/sim2d/internal/geom"
	"github.com/san-kum/sim2d/internal/world"
)

// DefaultGoalTolerance is the distance at which Goal stops.
const DefaultGoalTolerance = 0.1

// Goal drives toward a fixed point. Heading error feeds a PID for the
// angular command; the linear command fades with the heading error and
// slows down inside one meter of the goal.
type Goal struct {
	X, Y      float64
	Speed     float64
	Tolerance float64
	pid       *PID
}

func NewGoal(x, y, speed float64, pid *PID) *Goal {
	return &Goal{X: x, Y: y, Speed: speed, Tolerance: DefaultGoalTolerance, pid: pid}
}

func (g *Goal) Compute(pose geom.Pose, _ *world.Scan, t float64) Command {
	dx, dy := g.X-pose.X, g.Y-pose.Y
	dist := math.Hypot(dx, dy)
	if dist <= g.Tolerance {
		return Command{}
	}

	headingErr := geom.NormalizeAngle(math.Atan2(dy, dx) - pose.Theta)
	angular := g.pid.Update(headingErr, t)

	linear := g.Speed * math.Max(0, math.Cos(headingErr))
	if dist < 1 {
		linear *= dist
	}
	return Command{Linear: linear, Angular: angular}
}

// Reached reports whether pose is within tolerance of the goal.
func (g *Goal) Reached(pose geom.Pose) bool {
	return math.Hypot(g.X-pose.X, g.Y-pose.Y) <= g.Tolerance
}

func (g *Goal) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":    g.pid.Kp,
		"Ki":    g.pid.Ki,
		"Kd":    g.pid.Kd,
		"Speed": g.Speed,
	}
}

func (g *Goal) SetParam(name string, value float64) {
	switch name {
	case "Kp":
		g.pid.Kp = value
	case "Ki":
		g.pid.Ki = value
	case "Kd":
		g.pid.Kd = value
	case "Speed":
		g.Speed = value
	}
}
