package control

import (
	"github.com/san-kum/sim2d/internal/geom"
	"github.com/san-kum/sim2d/internal/world"
)

type Command struct {
	Linear  float64
	Angular float64
}

// Controller computes the next command. scan is nil until the first lidar
// sample has been taken.
type Controller interface {
	Compute(pose geom.Pose, scan *world.Scan, t float64) Command
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64)
}

type Constant struct {
	Cmd Command
}

func NewConstant(linear, angular float64) *Constant {
	return &Constant{Cmd: Command{Linear: linear, Angular: angular}}
}

func (c *Constant) Compute(geom.Pose, *world.Scan, float64) Command { return c.Cmd }

// Manual passes a manually set command through. Used for keyboard teleop.
type Manual struct {
	Cmd Command
}

func NewManual() *Manual { return &Manual{} }

func (m *Manual) Set(linear, angular float64) {
	m.Cmd = Command{Linear: linear, Angular: angular}
}

func (m *Manual) Compute(geom.Pose, *world.Scan, float64) Command { return m.Cmd }
