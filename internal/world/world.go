package world

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/sim2d/internal/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrMalformedGeometry indicates an obstacle that cannot be collided with
	// or ray cast against (non-finite coordinates, zero-length segment,
	// non-positive radius).
	ErrMalformedGeometry = errors.New("world: malformed geometry")

	// ErrUnknownWorld indicates a world source that is neither a built-in
	// name nor a readable descriptor file.
	ErrUnknownWorld = errors.New("world: unknown world")
)

// World is an immutable set of wall segments and circular obstacles.
// It is safe for concurrent use by multiple sessions.
type World struct {
	name    string
	lines   []geom.Line
	circles []geom.Circle
}

// New validates and copies the obstacles into a World.
func New(name string, lines []geom.Line, circles []geom.Circle) (*World, error) {
	for i, l := range lines {
		if !l.IsValid() {
			return nil, fmt.Errorf("%w: line %d %v", ErrMalformedGeometry, i, l)
		}
	}
	for i, c := range circles {
		if !c.IsValid() {
			return nil, fmt.Errorf("%w: circle %d %v", ErrMalformedGeometry, i, c)
		}
	}
	w := &World{
		name:    name,
		lines:   make([]geom.Line, len(lines)),
		circles: make([]geom.Circle, len(circles)),
	}
	copy(w.lines, lines)
	copy(w.circles, circles)
	return w, nil
}

func (w *World) Name() string { return w.name }

// Lines returns a copy of the wall segments.
func (w *World) Lines() []geom.Line {
	out := make([]geom.Line, len(w.lines))
	copy(out, w.lines)
	return out
}

// Circles returns a copy of the circular obstacles.
func (w *World) Circles() []geom.Circle {
	out := make([]geom.Circle, len(w.circles))
	copy(out, w.circles)
	return out
}

func (w *World) Bounds() r2.Box { return geom.Bounds(w.lines, w.circles) }

// CheckRobotCollision reports whether a disc of the given radius centred at
// pose touches any obstacle.
func (w *World) CheckRobotCollision(pose geom.Pose, radius float64) bool {
	return w.Clearance(pose) <= radius
}

// Clearance returns the distance from the pose's position to the nearest
// obstacle surface, or +Inf in an empty world.
func (w *World) Clearance(pose geom.Pose) float64 {
	p := pose.Position()
	best := math.Inf(1)
	for _, l := range w.lines {
		if d := l.DistanceTo(p); d < best {
			best = d
		}
	}
	for _, c := range w.circles {
		if d := c.DistanceTo(p); d < best {
			best = d
		}
	}
	return best
}
