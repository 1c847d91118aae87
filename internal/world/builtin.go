package world

import (
	"sort"

	"github.com/san-kum/sim2d/internal/geom"
)

// DefaultName is the built-in map used when no world source is given.
const DefaultName = "default"

// Layout is obstacle data in descriptor form: lines as {x1, y1, x2, y2},
// circles as {x, y, r}.
type Layout struct {
	Lines   [][4]float64
	Circles [][3]float64
}

// defaultLayout is a 20x20 m floor with three rooms joined by halls.
var defaultLayout = Layout{
	Lines: [][4]float64{
		// outer walls
		{10, 10, 10, -10}, {10, -10, -10, -10}, {-10, -10, -10, 10}, {-10, 10, 8, 10},
		// room 1
		{-8, -10, -8, -7}, {-6, -7, -5, -10}, {-10, -5, -7, -4}, {-3, -10, -1, -8},
		{-7, -4, -5, -5}, {-5, -5, -4.25, -7.5},
		// hall 1-2
		{-5, -5, -7, 0}, {-5, -5, -3.3, -7.25}, {-7, 0, -10, 0}, {-2, -2, -5, 1},
		// room 2
		{-5, 1, -4, 3}, {-4, 3, -6, 5}, {-6, 5, -4, 6}, {-4, 6, -3, 7}, {-4, 10, -3, 9},
		// hall 2-3
		{-3, 7, -2, 4}, {-2, 4, 0, 0}, {0, 0, -2, -2}, {-2, -2, -2, -6}, {-2, -6, 0, -10},
		{-3, 9, -1, 8}, {-1, 8, 2, 4}, {2, 4, 3, -2},
		// room 3
		{3, -2, 6, -2}, {8, -2, 10, -4},
		{1, -3, 1, -5}, {1, -5, 0, -5}, {0, -5, 1, -3},
		{7, -5, 6.5, -6}, {6.5, -6, 5, -6.5}, {5, -6.5, 7, -6.25}, {7, -6.25, 7, -5},
		// final hall
		{8, -2, 10, 2}, {6, -2, 8, 2}, {8, 2, 3, 2}, {10, 4, 5, 4}, {3, 2, 0, 8}, {0, 8, 2, 10},
		{5, 4, 4, 6}, {4, 6, 5, 7}, {5, 7, 6, 5}, {6, 5, 10, 5},
		{6, 10, 7, 7}, {7, 7, 8, 7}, {8, 7, 8, 10},
	},
	Circles: [][3]float64{
		// room 1
		{-7, -7, 1}, {-3.75, -7.5, 0.5}, {-4, -3, 0.5},
		// room 2
		{-6.75, 2.75, 1}, {-5.75, 7.25, 1},
		// hall 2-3
		{0, 1, 0.3}, {1, 4, 0.4}, {-2, 6, 0.2},
		// room 3
		{4, -4, 1.75}, {2, -7, 0.8}, {5, -9.2, 0.7}, {8.5, -7, 0.2}, {6.5, -3.5, 0.3},
		// final hall
		{3, 7.75, 0.8}, {4, 5, 0.2}, {7, 3.6, 0.15}, {3.7, 2.7, 0.3},
	},
}

var builtins = map[string]Layout{
	DefaultName: defaultLayout,
	"empty":     {},
	"box": {
		Lines: [][4]float64{
			{5, 5, 5, -5}, {5, -5, -5, -5}, {-5, -5, -5, 5}, {-5, 5, 5, 5},
		},
	},
}

// Build converts the layout into a validated World.
func (l Layout) Build(name string) (*World, error) {
	lines := make([]geom.Line, len(l.Lines))
	for i, v := range l.Lines {
		lines[i] = geom.NewLine(v[0], v[1], v[2], v[3])
	}
	circles := make([]geom.Circle, len(l.Circles))
	for i, v := range l.Circles {
		circles[i] = geom.NewCircle(v[0], v[1], v[2])
	}
	return New(name, lines, circles)
}

// Default returns the built-in default map.
func Default() *World {
	w, err := defaultLayout.Build(DefaultName)
	if err != nil {
		panic(err)
	}
	return w
}

// Builtin returns the named built-in map.
func Builtin(name string) (*World, bool) {
	l, ok := builtins[name]
	if !ok {
		return nil, false
	}
	w, err := l.Build(name)
	if err != nil {
		return nil, false
	}
	return w, true
}

// BuiltinNames lists the built-in maps in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
