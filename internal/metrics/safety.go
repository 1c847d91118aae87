package metrics

import (
	"github.com/san-kum/sim2d/internal/geom"
)

// ClearanceSource reports the distance from a pose to the nearest obstacle.
// *world.World satisfies it.
type ClearanceSource interface {
	Clearance(pose geom.Pose) float64
}

// Safety is the fraction of observed poses whose gap to the nearest
// obstacle, after subtracting the robot radius, stays above margin.
type Safety struct {
	name       string
	src        ClearanceSource
	radius     float64
	margin     float64
	violations int
	samples    int
}

func NewSafety(src ClearanceSource, radius, margin float64) *Safety {
	return &Safety{
		name:   "safety",
		src:    src,
		radius: radius,
		margin: margin,
	}
}

func (s *Safety) Name() string { return s.name }

func (s *Safety) Observe(pose geom.Pose, t float64) {
	s.samples++
	if s.src.Clearance(pose)-s.radius < s.margin {
		s.violations++
	}
}

func (s *Safety) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Safety) Reset() {
	s.violations = 0
	s.samples = 0
}
