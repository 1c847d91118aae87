package experiment

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/sim2d/internal/config"
	"github.com/san-kum/sim2d/internal/geom"
	"github.com/san-kum/sim2d/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wallWorld(t *testing.T) *world.World {
	t.Helper()
	w, err := world.New("wall", []geom.Line{geom.NewLine(2, -5, 2, 5)}, nil)
	require.NoError(t, err)
	return w
}

func builtin(t *testing.T, name string) *world.World {
	t.Helper()
	w, ok := world.Builtin(name)
	require.True(t, ok)
	return w
}

func constantConfig(linear float64, ticks int) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Start = geom.Pose{}
	cfg.Command.Controller = "constant"
	cfg.Command.Linear = linear
	cfg.Command.Angular = 0
	cfg.Command.Ticks = ticks
	return cfg
}

func setup(t *testing.T, cfg *config.Config, w *world.World) *Experiment {
	t.Helper()
	reg := NewRegistry()
	ctrl, err := reg.GetController(cfg.Command.Controller, cfg.GetControllerParams())
	require.NoError(t, err)
	exp := New(cfg)
	require.NoError(t, exp.Setup(w, ctrl, reg.DefaultMetrics(w, cfg.Robot.CollisionRadius)))
	return exp
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	assert.Equal(t, []string{"constant", "goal", "manual", "wander"}, reg.ListControllers())

	_, err := reg.GetController("teleport", nil)
	assert.Error(t, err)

	for _, name := range reg.ListControllers() {
		ctrl, err := reg.GetController(name, config.DefaultConfig().GetControllerParams())
		require.NoError(t, err, name)
		assert.NotNil(t, ctrl, name)
	}
}

func TestRunStopsOnCollision(t *testing.T) {
	cfg := constantConfig(1.0, 10)
	exp := setup(t, cfg, wallWorld(t))

	res, err := exp.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Collided)
	assert.Equal(t, 2, res.Ticks)
	assert.Equal(t, "wall", res.World)

	final := res.Final()
	assert.Greater(t, final.X, 1.5)
	assert.Less(t, final.X, 2.0)

	assert.Len(t, res.Times, len(res.Poses))
	assert.Equal(t, 0.0, res.Times[0])
	assert.NotEmpty(t, res.Scans)
	assert.InDelta(t, final.X, res.Metrics["path_length"], 1e-9)
	assert.Equal(t, float64(len(res.Scans)), res.Metrics["samples"])
}

func TestRunReachesGoal(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Start = geom.Pose{}
	cfg.Command.Controller = "goal"
	cfg.Command.Linear = 1.0
	cfg.Command.GoalX = 1
	cfg.Command.GoalY = 0
	cfg.Command.Ticks = 50
	exp := setup(t, cfg, builtin(t, "empty"))

	res, err := exp.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, res.Reached)
	assert.False(t, res.Collided)
	assert.Equal(t, 1, res.Ticks)
	assert.InDelta(t, 1.0, res.Final().X, 0.1)
}

func TestRunHonoursContext(t *testing.T) {
	exp := setup(t, constantConfig(0.5, 10), builtin(t, "box"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := exp.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, 0, res.Ticks)
	assert.Len(t, res.Poses, 1)
}

func TestRunWithoutSetup(t *testing.T) {
	_, err := New(config.DefaultConfig()).Run(context.Background())
	assert.ErrorIs(t, err, ErrNotSetup)
}

func TestSetupRejectsInvalidConfig(t *testing.T) {
	cfg := constantConfig(0.5, 0)
	err := New(cfg).Setup(builtin(t, "box"), nil, nil)
	assert.Error(t, err)
}

func TestEnsemble(t *testing.T) {
	cfg := constantConfig(1.0, 2)
	starts := []geom.Pose{
		{X: 4, Y: 0, Theta: 0},
		{X: 0, Y: 0, Theta: math.Pi},
		{X: 0, Y: 0, Theta: math.Pi / 2},
	}

	ens := NewEnsemble(cfg, builtin(t, "box"), NewRegistry(), starts)
	results, err := ens.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Collided)
	assert.False(t, results[1].Collided)
	assert.InDelta(t, -2.0, results[1].Final().X, 1e-9)
	assert.InDelta(t, 2.0, results[2].Final().Y, 1e-9)

	sum := Summarize(results)
	assert.Equal(t, 3, sum.Runs)
	assert.Equal(t, 1, sum.Collisions)
	assert.InDelta(t, 1.0/3.0, sum.CollisionRate, 1e-12)
	assert.Greater(t, sum.MeanPath, 0.0)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))

	one := Summarize([]*Result{{Elapsed: 2, Metrics: map[string]float64{"path_length": 3}}})
	assert.Equal(t, 3.0, one.MeanPath)
	assert.Equal(t, 0.0, one.StdPath)
	assert.Equal(t, 2.0, one.MeanElapsed)
}
