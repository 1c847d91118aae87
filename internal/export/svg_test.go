package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/sim2d/internal/geom"
	"github.com/san-kum/sim2d/internal/robot"
	"github.com/san-kum/sim2d/internal/session"
	"github.com/san-kum/sim2d/internal/world"
)

func TestSceneToSVG(t *testing.T) {
	w, err := world.New("lab",
		[]geom.Line{geom.NewLine(0, 0, 4, 0), geom.NewLine(4, 0, 4, 4)},
		[]geom.Circle{geom.NewCircle(2, 2, 0.5)})
	if err != nil {
		t.Fatal(err)
	}

	sc := Scene{
		World:  w,
		Path:   []geom.Pose{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1.5}},
		Radius: 0.2,
	}
	svg := SceneToSVG(sc, 400, 300, DefaultStyle)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("not a complete svg document")
	}
	if n := strings.Count(svg, "<line "); n != 3 {
		t.Errorf("expected 2 walls and a heading line, got %d", n)
	}
	if !strings.Contains(svg, `stroke="#00ff88"`) {
		t.Error("missing path")
	}
	if strings.Count(svg, " L") != 2 {
		t.Errorf("expected 2 path segments")
	}
	if strings.Contains(svg, DefaultStyle.Collision) {
		t.Error("robot should not be drawn as collided")
	}

	sc.Collided = true
	if !strings.Contains(SceneToSVG(sc, 400, 300, DefaultStyle), DefaultStyle.Collision) {
		t.Error("collided robot should use the collision colour")
	}
}

func TestSceneToSVGEmpty(t *testing.T) {
	svg := SceneToSVG(Scene{}, 100, 100, DefaultStyle)
	if !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("expected a document even for an empty scene")
	}
	if strings.Contains(svg, "<path") {
		t.Error("no path expected")
	}
}

func TestSVGRenderer(t *testing.T) {
	s := session.New(robot.New(robot.DefaultConfig()))
	if err := s.Initialize("box"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Step(1, 0.5, 5); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := s.Visualize(NewSVGRenderer(&buf, 200, 200)); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	out := buf.String()
	if strings.Count(out, "<line ") != 5 {
		t.Errorf("expected 4 walls and a heading line in %s", out)
	}
	if !strings.Contains(out, `fill="#ffcc00"`) {
		t.Error("expected lidar hits")
	}
}
