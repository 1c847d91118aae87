package viz

import (
	"fmt"
	"io"
	"math"

	"github.com/san-kum/sim2d/internal/geom"
	"github.com/san-kum/sim2d/internal/session"
	"gonum.org/v1/gonum/spatial/r2"
)

const viewMargin = 2

// frameBox is the area to show: the world bounds grown to keep the robot in
// view, or a 10 m square around the robot in an empty world.
func frameBox(f session.Frame) r2.Box {
	p := f.Pose.Position()
	pad := geom.V(f.Radius, f.Radius)
	robotBox := r2.Box{Min: r2.Sub(p, pad), Max: r2.Add(p, pad)}

	var box r2.Box
	if f.World != nil {
		box = f.World.Bounds()
	}
	if box.Max.X <= box.Min.X || box.Max.Y <= box.Min.Y {
		half := geom.V(5, 5)
		return r2.Box{Min: r2.Sub(p, half), Max: r2.Add(p, half)}
	}
	box.Min = geom.V(math.Min(box.Min.X, robotBox.Min.X), math.Min(box.Min.Y, robotBox.Min.Y))
	box.Max = geom.V(math.Max(box.Max.X, robotBox.Max.X), math.Max(box.Max.Y, robotBox.Max.Y))
	return box
}

// DrawFrame draws obstacles, the trail, lidar hits and the robot.
func DrawFrame(c *Canvas, f session.Frame, rays bool) {
	vp := NewViewport(frameBox(f), c, viewMargin)

	if f.World != nil {
		for _, l := range f.World.Lines() {
			x0, y0 := vp.Project(l.A)
			x1, y1 := vp.Project(l.B)
			c.DrawLine(x0, y0, x1, y1)
		}
		for _, circle := range f.World.Circles() {
			cx, cy := vp.Project(circle.Center)
			c.DrawCircle(cx, cy, vp.Scale(circle.Radius))
		}
	}

	for _, p := range f.Trail {
		c.Set(vp.Project(p.Position()))
	}

	if rays && f.Scan != nil {
		for i, end := range f.Scan.Endpoints() {
			if f.Scan.Hits[i] {
				c.Set(vp.Project(end))
			}
		}
	}

	cx, cy := vp.Project(f.Pose.Position())
	r := vp.Scale(f.Radius)
	if r < 1 {
		r = 1
	}
	c.DrawCircle(cx, cy, r)
	nose := r2.Add(f.Pose.Position(), r2.Scale(f.Radius*1.5, f.Pose.Heading()))
	hx, hy := vp.Project(nose)
	c.DrawLine(cx, cy, hx, hy)
}

// TextRenderer prints each frame as a braille canvas.
type TextRenderer struct {
	Out           io.Writer
	Width, Height int
	Rays          bool
}

func NewTextRenderer(out io.Writer, width, height int) *TextRenderer {
	return &TextRenderer{Out: out, Width: width, Height: height, Rays: true}
}

func (r *TextRenderer) Render(f session.Frame) error {
	c := NewCanvas(r.Width, r.Height)
	DrawFrame(c, f, r.Rays)
	status := "ok"
	if f.Collided {
		status = "COLLIDED"
	}
	_, err := fmt.Fprintf(r.Out, "%st=%.2fs x=%.2f y=%.2f θ=%.2f %s\n",
		c.String(), f.Time, f.Pose.X, f.Pose.Y, f.Pose.Theta, status)
	return err
}
