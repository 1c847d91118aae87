package control

import (
	"math"

	"github.com/san-kum/sim2d/internal/geom"
	"github.com/san-kum/sim2d/internal/world"
)

// Wander drives straight until the lidar sees something inside SafeRange
// within the front sector, then turns in place toward the more open side.
type Wander struct {
	Speed      float64
	TurnRate   float64
	SafeRange  float64
	FrontWidth float64 // half-angle of the front sector, radians
}

func NewWander(speed, turnRate, safeRange float64) *Wander {
	return &Wander{
		Speed:      speed,
		TurnRate:   turnRate,
		SafeRange:  safeRange,
		FrontWidth: math.Pi / 6,
	}
}

func (w *Wander) Compute(_ geom.Pose, scan *world.Scan, _ float64) Command {
	if scan == nil {
		return Command{Linear: w.Speed}
	}

	front := math.Inf(1)
	var left, right float64
	var nl, nr int
	for i, a := range scan.Angles {
		r := scan.Ranges[i]
		if math.Abs(a) <= w.FrontWidth && r < front {
			front = r
		}
		if a > 0 {
			left += r
			nl++
		} else if a < 0 {
			right += r
			nr++
		}
	}

	if front >= w.SafeRange {
		return Command{Linear: w.Speed}
	}
	if nl > 0 {
		left /= float64(nl)
	}
	if nr > 0 {
		right /= float64(nr)
	}
	if left >= right {
		return Command{Angular: w.TurnRate}
	}
	return Command{Angular: -w.TurnRate}
}

func (w *Wander) GetParams() map[string]float64 {
	return map[string]float64{
		"Speed":     w.Speed,
		"TurnRate":  w.TurnRate,
		"SafeRange": w.SafeRange,
	}
}

func (w *Wander) SetParam(name string, value float64) {
	switch name {
	case "Speed":
		w.Speed = value
	case "TurnRate":
		w.TurnRate = value
	case "SafeRange":
		w.SafeRange = value
	}
}
