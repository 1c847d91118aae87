package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineDistanceTo(t *testing.T) {
	l := NewLine(0, 0, 10, 0)

	tests := []struct {
		name string
		p    Vec
		want float64
	}{
		{"above middle", V(5, 3), 3},
		{"on segment", V(2, 0), 0},
		{"past end", V(13, 4), 5},
		{"before start", V(-3, 0), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, l.DistanceTo(tt.p), 1e-12)
		})
	}
}

func TestLineRaycast(t *testing.T) {
	wall := NewLine(5, -1, 5, 1)

	d, ok := wall.Raycast(V(0, 0), V(1, 0))
	require.True(t, ok)
	assert.InDelta(t, 5.0, d, 1e-12)

	_, ok = wall.Raycast(V(0, 0), V(-1, 0))
	assert.False(t, ok, "ray pointing away must miss")

	_, ok = wall.Raycast(V(0, 3), V(1, 0))
	assert.False(t, ok, "ray passing beyond the endpoint must miss")

	_, ok = wall.Raycast(V(0, 0), V(0, 1))
	assert.False(t, ok, "parallel ray must miss")
}

func TestCircleRaycast(t *testing.T) {
	c := NewCircle(4, 0, 1)

	d, ok := c.Raycast(V(0, 0), V(1, 0))
	require.True(t, ok)
	assert.InDelta(t, 3.0, d, 1e-12)

	d, ok = c.Raycast(V(4, 0), V(1, 0))
	require.True(t, ok)
	assert.InDelta(t, 1.0, d, 1e-12)

	_, ok = c.Raycast(V(0, 2), V(1, 0))
	assert.False(t, ok)

	_, ok = c.Raycast(V(0, 0), V(-1, 0))
	assert.False(t, ok)
}

func TestCircleDistanceTo(t *testing.T) {
	c := NewCircle(0, 0, 2)
	assert.InDelta(t, 1.0, c.DistanceTo(V(3, 0)), 1e-12)
	assert.InDelta(t, -2.0, c.DistanceTo(V(0, 0)), 1e-12)
}

func TestValidity(t *testing.T) {
	assert.True(t, NewLine(0, 0, 1, 1).IsValid())
	assert.False(t, NewLine(1, 1, 1, 1).IsValid())
	assert.False(t, NewLine(0, math.NaN(), 1, 1).IsValid())

	assert.True(t, NewCircle(0, 0, 0.1).IsValid())
	assert.False(t, NewCircle(0, 0, 0).IsValid())
	assert.False(t, NewCircle(math.Inf(1), 0, 1).IsValid())

	assert.True(t, Pose{1, 2, 3}.IsValid())
	assert.False(t, Pose{1, math.NaN(), 3}.IsValid())
}

func TestNormalizeAngle(t *testing.T) {
	assert.InDelta(t, 0.0, NormalizeAngle(2*math.Pi), 1e-12)
	assert.InDelta(t, math.Pi, NormalizeAngle(-math.Pi), 1e-12)
	assert.InDelta(t, -math.Pi/2, NormalizeAngle(3*math.Pi/2), 1e-12)
}

func TestBounds(t *testing.T) {
	box := Bounds(
		[]Line{NewLine(-1, 2, 3, -4)},
		[]Circle{NewCircle(5, 5, 1)},
	)
	assert.Equal(t, V(-1, -4), box.Min)
	assert.Equal(t, V(6, 6), box.Max)

	empty := Bounds(nil, nil)
	assert.Equal(t, V(0, 0), empty.Min)
	assert.Equal(t, V(0, 0), empty.Max)
}

func TestPoseHeading(t *testing.T) {
	h := Pose{Theta: math.Pi / 2}.Heading()
	assert.InDelta(t, 0.0, h.X, 1e-12)
	assert.InDelta(t, 1.0, h.Y, 1e-12)
}
