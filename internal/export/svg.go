package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/sim2d/internal/geom"
	"github.com/san-kum/sim2d/internal/session"
	"github.com/san-kum/sim2d/internal/world"
	"gonum.org/v1/gonum/spatial/r2"
)

// Style holds the SVG colours.
type Style struct {
	Background string
	Obstacle   string
	Path       string
	Robot      string
	Collision  string
	Ray        string
}

var DefaultStyle = Style{
	Background: "#0a0a0a",
	Obstacle:   "#cccccc",
	Path:       "#00ff88",
	Robot:      "#00ccff",
	Collision:  "#ff4444",
	Ray:        "#ffcc00",
}

// Scene is everything drawn into one SVG.
type Scene struct {
	World    *world.World
	Path     []geom.Pose
	Radius   float64
	Scan     *world.Scan
	Collided bool
}

// SceneFromFrame converts a session frame.
func SceneFromFrame(f session.Frame) Scene {
	path := append(append([]geom.Pose(nil), f.Trail...), f.Pose)
	return Scene{World: f.World, Path: path, Radius: f.Radius, Scan: f.Scan, Collided: f.Collided}
}

type projection struct {
	minX, maxY, scale float64
	offX, offY        float64
}

func (p projection) point(v geom.Vec) (float64, float64) {
	return p.offX + (v.X-p.minX)*p.scale, p.offY + (p.maxY-v.Y)*p.scale
}

func sceneBox(sc Scene) r2.Box {
	var box r2.Box
	first := true
	grow := func(b r2.Box) {
		if first {
			box, first = b, false
			return
		}
		box.Min = geom.V(math.Min(box.Min.X, b.Min.X), math.Min(box.Min.Y, b.Min.Y))
		box.Max = geom.V(math.Max(box.Max.X, b.Max.X), math.Max(box.Max.Y, b.Max.Y))
	}
	if sc.World != nil && len(sc.World.Lines())+len(sc.World.Circles()) > 0 {
		grow(sc.World.Bounds())
	}
	pad := geom.V(sc.Radius, sc.Radius)
	for _, p := range sc.Path {
		grow(r2.Box{Min: r2.Sub(p.Position(), pad), Max: r2.Add(p.Position(), pad)})
	}
	if first {
		return r2.Box{Min: geom.V(-1, -1), Max: geom.V(1, 1)}
	}
	return box
}

// SceneToSVG draws obstacles, the path, the last scan's hits and the robot
// at its final pose. The drawing keeps the world's aspect ratio.
func SceneToSVG(sc Scene, width, height int, style Style) string {
	box := sceneBox(sc)

	// Add padding
	size := r2.Sub(box.Max, box.Min)
	if size.X == 0 {
		size.X = 1
	}
	if size.Y == 0 {
		size.Y = 1
	}
	box.Min = r2.Sub(box.Min, r2.Scale(0.05, size))
	box.Max = r2.Add(box.Max, r2.Scale(0.05, size))
	size = r2.Sub(box.Max, box.Min)

	scale := math.Min(float64(width)/size.X, float64(height)/size.Y)
	proj := projection{
		minX:  box.Min.X,
		maxY:  box.Max.Y,
		scale: scale,
		offX:  (float64(width) - size.X*scale) / 2,
		offY:  (float64(height) - size.Y*scale) / 2,
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, style.Background))

	if sc.World != nil {
		sb.WriteString(fmt.Sprintf(`<g stroke="%s" stroke-width="2" fill="none">
`, style.Obstacle))
		for _, l := range sc.World.Lines() {
			x1, y1 := proj.point(l.A)
			x2, y2 := proj.point(l.B)
			sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
`, x1, y1, x2, y2))
		}
		for _, c := range sc.World.Circles() {
			cx, cy := proj.point(c.Center)
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, c.Radius*scale))
		}
		sb.WriteString("</g>\n")
	}

	if sc.Scan != nil {
		sb.WriteString(fmt.Sprintf(`<g fill="%s">
`, style.Ray))
		for i, end := range sc.Scan.Endpoints() {
			if !sc.Scan.Hits[i] {
				continue
			}
			x, y := proj.point(end)
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="1.5"/>
`, x, y))
		}
		sb.WriteString("</g>\n")
	}

	if len(sc.Path) > 1 {
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, style.Path))
		for i, p := range sc.Path {
			x, y := proj.point(p.Position())
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString(`"/>
`)
	}

	if len(sc.Path) > 0 {
		last := sc.Path[len(sc.Path)-1]
		color := style.Robot
		if sc.Collided {
			color = style.Collision
		}
		cx, cy := proj.point(last.Position())
		hx, hy := proj.point(r2.Add(last.Position(), r2.Scale(sc.Radius, last.Heading())))
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s" stroke-width="2"/>
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2"/>
`, cx, cy, sc.Radius*scale, color, cx, cy, hx, hy, color))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// SVGRenderer writes each frame as a standalone SVG document.
type SVGRenderer struct {
	Out           io.Writer
	Width, Height int
	Style         Style
}

func NewSVGRenderer(out io.Writer, width, height int) *SVGRenderer {
	return &SVGRenderer{Out: out, Width: width, Height: height, Style: DefaultStyle}
}

func (r *SVGRenderer) Render(f session.Frame) error {
	_, err := io.WriteString(r.Out, SceneToSVG(SceneFromFrame(f), r.Width, r.Height, r.Style))
	return err
}
