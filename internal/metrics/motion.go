package metrics

import (
	"math"

	"github.com/san-kum/sim2d/internal/geom"
)

// PathLength sums the distance travelled between observed poses.
type PathLength struct {
	name  string
	total float64
	last  geom.Pose
	seen  bool
}

func NewPathLength() *PathLength {
	return &PathLength{name: "path_length"}
}

func (p *PathLength) Name() string { return p.name }

func (p *PathLength) Observe(pose geom.Pose, t float64) {
	if p.seen {
		p.total += math.Hypot(pose.X-p.last.X, pose.Y-p.last.Y)
	}
	p.last = pose
	p.seen = true
}

func (p *PathLength) Value() float64 { return p.total }

func (p *PathLength) Reset() {
	p.total = 0
	p.seen = false
}

// Rotation sums the absolute heading change between observed poses.
type Rotation struct {
	name  string
	total float64
	last  float64
	seen  bool
}

func NewRotation() *Rotation {
	return &Rotation{name: "rotation"}
}

func (r *Rotation) Name() string { return r.name }

func (r *Rotation) Observe(pose geom.Pose, t float64) {
	if r.seen {
		r.total += math.Abs(geom.NormalizeAngle(pose.Theta - r.last))
	}
	r.last = pose.Theta
	r.seen = true
}

func (r *Rotation) Value() float64 { return r.total }

func (r *Rotation) Reset() {
	r.total = 0
	r.seen = false
}

// Displacement is the straight-line distance from the first observed pose
// to the latest one.
type Displacement struct {
	name        string
	first, last geom.Pose
	seen        bool
}

func NewDisplacement() *Displacement {
	return &Displacement{name: "displacement"}
}

func (d *Displacement) Name() string { return d.name }

func (d *Displacement) Observe(pose geom.Pose, t float64) {
	if !d.seen {
		d.first = pose
		d.seen = true
	}
	d.last = pose
}

func (d *Displacement) Value() float64 {
	if !d.seen {
		return 0
	}
	return math.Hypot(d.last.X-d.first.X, d.last.Y-d.first.Y)
}

func (d *Displacement) Reset() { d.seen = false }
