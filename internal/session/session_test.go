package session

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/san-kum/sim2d/internal/engine"
	"github.com/san-kum/sim2d/internal/geom"
	"github.com/san-kum/sim2d/internal/robot"
	"github.com/san-kum/sim2d/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBoxSession(t *testing.T) *Session {
	t.Helper()
	s := New(robot.New(robot.DefaultConfig()))
	require.NoError(t, s.Initialize("box"))
	return s
}

type scanCounter struct{ scans []world.Scan }

func (c *scanCounter) OnScan(s world.Scan) { c.scans = append(c.scans, s) }

type stepCounter struct {
	n    int
	last float64
}

func (c *stepCounter) OnStep(_ geom.Pose, t float64) { c.n++; c.last = t }

type countMetric struct{ n int }

func (m *countMetric) Name() string               { return "count" }
func (m *countMetric) Observe(geom.Pose, float64) { m.n++ }
func (m *countMetric) Value() float64             { return float64(m.n) }
func (m *countMetric) Reset()                     { m.n = 0 }

type captureRenderer struct{ frames []Frame }

func (r *captureRenderer) Render(f Frame) error { r.frames = append(r.frames, f); return nil }

func TestInitializeDerivesIntervals(t *testing.T) {
	cfg := robot.DefaultConfig()
	cfg.CollisionRadius = 0.3
	cfg.MaxLinearVelocity = 1.5
	cfg.Lidar.Hz = 4
	s := New(robot.New(cfg))

	require.NoError(t, s.Initialize(""))
	assert.Equal(t, world.DefaultName, s.World().Name())
	assert.InDelta(t, 0.2, s.Intervals().CollisionCheck, 1e-12)
	assert.InDelta(t, 0.25, s.Intervals().SensorSample, 1e-12)
	assert.False(t, s.Collided())
}

func TestInitializeRejectsBadRobot(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*robot.Config)
		want   error
	}{
		{"zero speed", func(c *robot.Config) { c.MaxLinearVelocity = 0 }, engine.ErrInvalidConfig},
		{"negative hz", func(c *robot.Config) { c.Lidar.Hz = -1 }, engine.ErrInvalidConfig},
		{"zero radius", func(c *robot.Config) { c.CollisionRadius = 0 }, engine.ErrInvalidConfig},
		{"no beams", func(c *robot.Config) { c.Lidar.Beams = 0 }, robot.ErrInvalidLidar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := robot.DefaultConfig()
			tt.mutate(&cfg)
			s := New(robot.New(cfg))

			err := s.Initialize("box")
			require.ErrorIs(t, err, tt.want)

			_, err = s.Step(1, 0, 1)
			assert.ErrorIs(t, err, engine.ErrNotInitialized)
		})
	}
}

func TestInitializeUnknownWorld(t *testing.T) {
	s := New(robot.New(robot.DefaultConfig()))
	err := s.Initialize(filepath.Join(t.TempDir(), "nowhere.yaml"))
	assert.ErrorIs(t, err, world.ErrUnknownWorld)
	assert.Nil(t, s.World())
}

func TestInitializeNilWorld(t *testing.T) {
	s := New(robot.New(robot.DefaultConfig()))
	assert.ErrorIs(t, s.InitializeWorld(nil), engine.ErrNotInitialized)
}

func TestStepCollidesWithWall(t *testing.T) {
	s := newBoxSession(t)

	res, err := s.Step(1, 0, 100)
	require.NoError(t, err)
	assert.True(t, res.Collided)
	assert.True(t, s.Collided())
	assert.Equal(t, engine.Halted, s.Phase())

	// box wall at x=5, radius 0.2, one radius per slice
	p := s.Pose()
	assert.GreaterOrEqual(t, p.X, 4.8-1e-9)
	assert.Less(t, p.X, 5.0)
	assert.Less(t, res.Elapsed, res.Horizon)
}

func TestCollisionIsStickyUntilSetPose(t *testing.T) {
	s := newBoxSession(t)
	_, err := s.Step(1, 0, 100)
	require.NoError(t, err)

	stuck := s.Pose()
	before := s.Time()
	res, err := s.Step(1, 0, 10)
	require.NoError(t, err)
	assert.True(t, res.Collided)
	assert.Equal(t, stuck, s.Pose())
	assert.Equal(t, before, s.Time())

	s.SetPose(0, 0, math.Pi)
	assert.False(t, s.Collided())

	res, err = s.Step(1, 0, 5)
	require.NoError(t, err)
	assert.False(t, res.Collided)
	assert.InDelta(t, -1.0, s.Pose().X, 1e-9)
}

func TestSetPoseClearsFlagWithoutCollision(t *testing.T) {
	s := newBoxSession(t)
	s.SetPose(1, 2, 0.5)
	assert.False(t, s.Collided())
	assert.Equal(t, geom.Pose{X: 1, Y: 2, Theta: 0.5}, s.Pose())
}

func TestStepPublishesScans(t *testing.T) {
	s := newBoxSession(t)
	counter := &scanCounter{}
	s.AddScanObserver(counter)

	_, ok := s.LastScan()
	assert.False(t, ok)

	// collision interval 0.2, sensor interval 0.1
	res, err := s.Step(0.5, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Samples)
	require.Len(t, counter.scans, 10)

	scan, ok := s.LastScan()
	require.True(t, ok)
	assert.InDelta(t, 1.0, scan.Time, 1e-9)
	assert.Len(t, scan.Ranges, robot.DefaultConfig().Lidar.Beams)
	assert.InDelta(t, 0.1, counter.scans[0].Time, 1e-9)

	// the second call keeps counting session time
	_, err = s.Step(0.5, 0, 5)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, counter.scans[len(counter.scans)-1].Time, 1e-9)
	assert.InDelta(t, 2.0, s.Time(), 1e-9)
}

func TestStepUsesSuppliedVelocities(t *testing.T) {
	// default robot: max 1 m/s and 2 rad/s, collision interval 0.2s
	s := New(robot.New(robot.DefaultConfig()))
	require.NoError(t, s.Initialize("empty"))

	_, err := s.Step(3, 0, 5)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, s.Pose().X, 1e-9)

	s.SetPose(0, 0, 0)
	_, err = s.Step(0, 10, 1)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, s.Pose().Theta, 1e-9)
}

func TestReinitializeFollowsRobotConfig(t *testing.T) {
	s := New(robot.New(robot.DefaultConfig()))
	require.NoError(t, s.Initialize("box"))
	before := s.Intervals()

	cfg := robot.DefaultConfig()
	cfg.CollisionRadius = 0.5
	cfg.MaxLinearVelocity = 2
	cfg.Lidar.Hz = 4
	s.Robot().SetConfig(cfg)

	// intervals only follow the robot once the world is initialized again
	assert.Equal(t, before, s.Intervals())

	require.NoError(t, s.InitializeWorld(s.World()))
	assert.InDelta(t, 0.25, s.Intervals().CollisionCheck, 1e-12)
	assert.InDelta(t, 0.25, s.Intervals().SensorSample, 1e-12)
	assert.NotEqual(t, before, s.Intervals())
	assert.Equal(t, cfg, s.Robot().Config())
}

func TestObserversAndMetrics(t *testing.T) {
	s := newBoxSession(t)
	steps := &stepCounter{}
	m := &countMetric{}
	s.AddObserver(steps)
	s.AddMetric(m)

	_, err := s.Step(0.5, 0, 3)
	require.NoError(t, err)
	assert.Positive(t, steps.n)
	assert.InDelta(t, 0.6, steps.last, 1e-9)
	// metrics also see the starting pose
	assert.Equal(t, float64(steps.n+1), s.Metrics()["count"])

	require.NoError(t, s.Initialize("box"))
	assert.Zero(t, s.Metrics()["count"])
	assert.Zero(t, s.Time())
}

func TestVisualize(t *testing.T) {
	s := New(robot.New(robot.DefaultConfig()))
	r := &captureRenderer{}
	assert.ErrorIs(t, s.Visualize(r), engine.ErrNotInitialized)

	require.NoError(t, s.Initialize("box"))
	_, err := s.Step(0.5, 0, 2)
	require.NoError(t, err)
	require.NoError(t, s.Visualize(r))

	require.Len(t, r.frames, 1)
	f := r.frames[0]
	assert.Equal(t, "box", f.World.Name())
	assert.Equal(t, s.Pose(), f.Pose)
	assert.NotEmpty(t, f.Trail)
	assert.NotNil(t, f.Scan)
	assert.InDelta(t, 0.2, f.Radius, 1e-12)
}

func TestSessionsShareWorld(t *testing.T) {
	w, ok := world.Builtin("box")
	require.True(t, ok)

	a := New(robot.New(robot.DefaultConfig()))
	b := New(robot.New(robot.DefaultConfig()))
	require.NoError(t, a.InitializeWorld(w))
	require.NoError(t, b.InitializeWorld(w))

	b.SetPose(0, 0, math.Pi/2)
	_, err := a.Step(1, 0, 100)
	require.NoError(t, err)
	_, err = b.Step(0.5, 0, 5)
	require.NoError(t, err)

	assert.True(t, a.Collided())
	assert.False(t, b.Collided())
	assert.InDelta(t, 0.5, b.Pose().Y, 1e-9)
}
