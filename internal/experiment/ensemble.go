package experiment

import (
	"context"
	"sync"

	"github.com/san-kum/sim2d/internal/config"
	"github.com/san-kum/sim2d/internal/geom"
	"github.com/san-kum/sim2d/internal/world"
	"gonum.org/v1/gonum/stat"
)

// Ensemble runs the same configuration from several start poses in
// parallel. Every run gets its own robot, session and controller; the world
// is shared read-only.
type Ensemble struct {
	cfg      *config.Config
	world    *world.World
	registry *Registry
	starts   []geom.Pose
}

func NewEnsemble(cfg *config.Config, w *world.World, registry *Registry, starts []geom.Pose) *Ensemble {
	return &Ensemble{cfg: cfg, world: w, registry: registry, starts: starts}
}

func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, len(e.starts))
	errs := make([]error, len(e.starts))

	var wg sync.WaitGroup
	for i := range e.starts {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = e.runOne(ctx, e.starts[idx])
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

func (e *Ensemble) runOne(ctx context.Context, start geom.Pose) (*Result, error) {
	cfgCopy := *e.cfg
	cfgCopy.Start = start

	ctrl, err := e.registry.GetController(cfgCopy.Command.Controller, cfgCopy.GetControllerParams())
	if err != nil {
		return nil, err
	}

	exp := New(&cfgCopy)
	ms := e.registry.DefaultMetrics(e.world, cfgCopy.Robot.CollisionRadius)
	if err := exp.Setup(e.world, ctrl, ms); err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}

// Summary aggregates a batch of results.
type Summary struct {
	Runs          int     `json:"runs"`
	Collisions    int     `json:"collisions"`
	Reached       int     `json:"reached"`
	CollisionRate float64 `json:"collision_rate"`
	MeanPath      float64 `json:"mean_path_length"`
	StdPath       float64 `json:"std_path_length"`
	MeanElapsed   float64 `json:"mean_elapsed"`
	StdElapsed    float64 `json:"std_elapsed"`
}

func Summarize(results []*Result) Summary {
	sum := Summary{Runs: len(results)}
	if len(results) == 0 {
		return sum
	}

	paths := make([]float64, 0, len(results))
	elapsed := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Collided {
			sum.Collisions++
		}
		if r.Reached {
			sum.Reached++
		}
		paths = append(paths, r.Metrics["path_length"])
		elapsed = append(elapsed, r.Elapsed)
	}

	sum.CollisionRate = float64(sum.Collisions) / float64(sum.Runs)
	sum.MeanPath, sum.StdPath = meanStd(paths)
	sum.MeanElapsed, sum.StdElapsed = meanStd(elapsed)
	return sum
}

// meanStd is stat.MeanStdDev with a zero spread for a single sample.
func meanStd(x []float64) (float64, float64) {
	if len(x) == 1 {
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}
