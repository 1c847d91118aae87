package world

import (
	"math"

	"github.com/san-kum/sim2d/internal/geom"
)

// Scan is one lidar sweep. Angles are relative to the robot heading; a beam
// that hits nothing within range reports the maximum range with Hits false.
type Scan struct {
	Time     float64
	Pose     geom.Pose
	Angles   []float64
	Ranges   []float64
	Hits     []bool
	MaxRange float64
}

// MinRange returns the shortest range in the scan.
func (s Scan) MinRange() float64 {
	if len(s.Ranges) == 0 {
		return s.MaxRange
	}
	m := s.Ranges[0]
	for _, r := range s.Ranges[1:] {
		if r < m {
			m = r
		}
	}
	return m
}

// Endpoints returns the world-frame point each beam ends at.
func (s Scan) Endpoints() []geom.Vec {
	out := make([]geom.Vec, len(s.Ranges))
	for i, r := range s.Ranges {
		a := s.Pose.Theta + s.Angles[i]
		out[i] = geom.V(s.Pose.X+r*math.Cos(a), s.Pose.Y+r*math.Sin(a))
	}
	return out
}

// BeamAngles spreads beams evenly over fov, centred on the heading. A full
// circle does not repeat the first beam at the end.
func BeamAngles(beams int, fov float64) []float64 {
	if beams <= 0 {
		return nil
	}
	angles := make([]float64, beams)
	if beams == 1 {
		return angles
	}
	var step float64
	if fov >= 2*math.Pi {
		step = fov / float64(beams)
	} else {
		step = fov / float64(beams-1)
	}
	start := -fov / 2
	for i := range angles {
		angles[i] = start + float64(i)*step
	}
	return angles
}

// Scan casts beams from pose and returns the nearest hit per beam.
func (w *World) Scan(pose geom.Pose, beams int, fov, maxRange float64) Scan {
	angles := BeamAngles(beams, fov)
	s := Scan{
		Pose:     pose,
		Angles:   angles,
		Ranges:   make([]float64, len(angles)),
		Hits:     make([]bool, len(angles)),
		MaxRange: maxRange,
	}
	origin := pose.Position()
	for i, a := range angles {
		dir := geom.Pose{Theta: pose.Theta + a}.Heading()
		s.Ranges[i], s.Hits[i] = w.cast(origin, dir, maxRange)
	}
	return s
}

func (w *World) cast(origin, dir geom.Vec, maxRange float64) (float64, bool) {
	best := maxRange
	hit := false
	for _, l := range w.lines {
		if d, ok := l.Raycast(origin, dir); ok && d <= best {
			best, hit = d, true
		}
	}
	for _, c := range w.circles {
		if d, ok := c.Raycast(origin, dir); ok && d <= best {
			best, hit = d, true
		}
	}
	return best, hit
}
