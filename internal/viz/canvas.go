package viz

import (
	"math"
	"strings"

	"github.com/san-kum/sim2d/internal/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// blank is the empty braille cell. Each cell packs a 2x4 block of dots
// whose bits are laid out as
//
//	0x01 0x08
//	0x02 0x10
//	0x04 0x20
//	0x40 0x80
const blank rune = 0x2800

var dotBits = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of braille cells addressed in sub-pixels: a canvas of
// Width x Height cells is (2*Width) x (4*Height) dots.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at sub-pixel (x, y). Dots off the canvas are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 || x >= 2*c.Width || y >= 4*c.Height {
		return
	}
	c.Grid[y/4][x/2] |= dotBits[y%4][x%2]
}

func (c *Canvas) Clear() {
	for _, row := range c.Grid {
		for j := range row {
			row[j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawCircle draws a circle outline with the midpoint algorithm.
func (c *Canvas) DrawCircle(cx, cy, r int) {
	if r <= 0 {
		c.Set(cx, cy)
		return
	}
	x, y := r, 0
	err := 1 - r
	for x >= y {
		c.Set(cx+x, cy+y)
		c.Set(cx+y, cy+x)
		c.Set(cx-y, cy+x)
		c.Set(cx-x, cy+y)
		c.Set(cx-x, cy-y)
		c.Set(cx-y, cy-x)
		c.Set(cx+y, cy-x)
		c.Set(cx+x, cy-y)
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Viewport maps world coordinates onto canvas sub-pixels with a uniform
// scale, y pointing up.
type Viewport struct {
	minX, maxY float64
	scale      float64
	offX, offY float64
}

// NewViewport fits box into the canvas, centred, leaving margin sub-pixels
// on every side.
func NewViewport(box r2.Box, c *Canvas, margin int) Viewport {
	w := float64(c.Width*2 - 2*margin)
	h := float64(c.Height*4 - 2*margin)
	size := r2.Sub(box.Max, box.Min)
	if size.X <= 0 {
		size.X = 1
	}
	if size.Y <= 0 {
		size.Y = 1
	}
	scale := math.Min(w/size.X, h/size.Y)
	return Viewport{
		minX:  box.Min.X,
		maxY:  box.Max.Y,
		scale: scale,
		offX:  float64(margin) + (w-size.X*scale)/2,
		offY:  float64(margin) + (h-size.Y*scale)/2,
	}
}

func (v Viewport) Project(p geom.Vec) (int, int) {
	x := v.offX + (p.X-v.minX)*v.scale
	y := v.offY + (v.maxY-p.Y)*v.scale
	return int(math.Round(x)), int(math.Round(y))
}

// Scale converts a world length to sub-pixels.
func (v Viewport) Scale(d float64) int {
	return int(math.Round(d * v.scale))
}
