package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// parallelEps is the cross-product magnitude below which a ray and a
// segment are treated as parallel.
const parallelEps = 1e-12

type Vec = r2.Vec

func V(x, y float64) Vec { return Vec{X: x, Y: y} }

// Pose is a 2D rigid transform: translation (X, Y) and heading Theta in radians.
type Pose struct {
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	Theta float64 `json:"theta" yaml:"theta"`
}

func (p Pose) Position() Vec { return Vec{X: p.X, Y: p.Y} }

// Heading returns the unit vector the pose faces.
func (p Pose) Heading() Vec {
	return Vec{X: math.Cos(p.Theta), Y: math.Sin(p.Theta)}
}

func (p Pose) IsValid() bool {
	return isFinite(p.X) && isFinite(p.Y) && isFinite(p.Theta)
}

// NormalizeAngle wraps a into (-pi, pi].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

type Line struct {
	A, B Vec
}

func NewLine(x1, y1, x2, y2 float64) Line {
	return Line{A: V(x1, y1), B: V(x2, y2)}
}

func (l Line) Length() float64 { return r2.Norm(r2.Sub(l.B, l.A)) }

func (l Line) IsValid() bool {
	return isFinite(l.A.X) && isFinite(l.A.Y) && isFinite(l.B.X) && isFinite(l.B.Y) && l.Length() > 0
}

// DistanceTo returns the distance from p to the closest point of the segment.
func (l Line) DistanceTo(p Vec) float64 {
	e := r2.Sub(l.B, l.A)
	l2 := r2.Norm2(e)
	if l2 == 0 {
		return r2.Norm(r2.Sub(p, l.A))
	}
	t := r2.Dot(r2.Sub(p, l.A), e) / l2
	t = math.Max(0, math.Min(1, t))
	closest := r2.Add(l.A, r2.Scale(t, e))
	return r2.Norm(r2.Sub(p, closest))
}

// Raycast returns the distance along dir (a unit vector) from origin to the
// segment. Rays parallel to the segment never hit it.
func (l Line) Raycast(origin, dir Vec) (float64, bool) {
	e := r2.Sub(l.B, l.A)
	denom := r2.Cross(dir, e)
	if math.Abs(denom) < parallelEps {
		return 0, false
	}
	w := r2.Sub(l.A, origin)
	t := r2.Cross(w, e) / denom
	s := r2.Cross(w, dir) / denom
	if t < 0 || s < 0 || s > 1 {
		return 0, false
	}
	return t, true
}

type Circle struct {
	Center Vec
	Radius float64
}

func NewCircle(x, y, r float64) Circle {
	return Circle{Center: V(x, y), Radius: r}
}

func (c Circle) IsValid() bool {
	return isFinite(c.Center.X) && isFinite(c.Center.Y) && isFinite(c.Radius) && c.Radius > 0
}

// DistanceTo returns the distance from p to the circle's boundary; it is
// negative when p lies inside.
func (c Circle) DistanceTo(p Vec) float64 {
	return r2.Norm(r2.Sub(p, c.Center)) - c.Radius
}

// Raycast returns the distance along dir (a unit vector) from origin to the
// first boundary crossing. An origin inside the circle hits the far side.
func (c Circle) Raycast(origin, dir Vec) (float64, bool) {
	f := r2.Sub(origin, c.Center)
	b := r2.Dot(f, dir)
	k := r2.Dot(f, f) - c.Radius*c.Radius
	disc := b*b - k
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	if t := -b - sq; t >= 0 {
		return t, true
	}
	if t := -b + sq; t >= 0 {
		return t, true
	}
	return 0, false
}

// Bounds returns the axis-aligned box enclosing all lines and circles.
// The zero box is returned when both are empty.
func Bounds(lines []Line, circles []Circle) r2.Box {
	first := true
	var box r2.Box
	grow := func(min, max Vec) {
		if first {
			box = r2.Box{Min: min, Max: max}
			first = false
			return
		}
		box.Min = V(math.Min(box.Min.X, min.X), math.Min(box.Min.Y, min.Y))
		box.Max = V(math.Max(box.Max.X, max.X), math.Max(box.Max.Y, max.Y))
	}
	for _, l := range lines {
		grow(V(math.Min(l.A.X, l.B.X), math.Min(l.A.Y, l.B.Y)),
			V(math.Max(l.A.X, l.B.X), math.Max(l.A.Y, l.B.Y)))
	}
	for _, c := range circles {
		r := V(c.Radius, c.Radius)
		grow(r2.Sub(c.Center, r), r2.Add(c.Center, r))
	}
	return box
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
