package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/sim2d/internal/config"
	"github.com/san-kum/sim2d/internal/experiment"
	"github.com/san-kum/sim2d/internal/geom"
	"github.com/san-kum/sim2d/internal/world"
	"gonum.org/v1/gonum/spatial/r2"
)

// maxPlacementAttempts bounds the rejection sampling for one start pose.
const maxPlacementAttempts = 1000

var ErrNoFreeSpace = errors.New("no collision-free start pose found")

// MonteCarloConfig defines Monte Carlo simulation parameters. Start poses
// are drawn uniformly from Region (the world bounds when empty) with a
// uniform heading, rejecting poses that already collide.
type MonteCarloConfig struct {
	Trials int
	Seed   int64
	Region r2.Box
}

// MonteCarloResult holds the outcome of one trial.
type MonteCarloResult struct {
	TrialID    int
	Start      geom.Pose
	Final      geom.Pose
	Collided   bool
	Reached    bool
	PathLength float64
	Elapsed    float64
}

// SampleStarts draws n collision-free start poses for a robot of the given
// radius.
func SampleStarts(w *world.World, region r2.Box, radius float64, n int, rng *rand.Rand) ([]geom.Pose, error) {
	if degenerate(region) {
		region = w.Bounds()
	}
	if degenerate(region) {
		return nil, fmt.Errorf("sample starts in %q: %w", w.Name(), ErrNoFreeSpace)
	}

	size := r2.Sub(region.Max, region.Min)
	starts := make([]geom.Pose, 0, n)
	for len(starts) < n {
		placed := false
		for attempt := 0; attempt < maxPlacementAttempts; attempt++ {
			p := geom.Pose{
				X:     region.Min.X + rng.Float64()*size.X,
				Y:     region.Min.Y + rng.Float64()*size.Y,
				Theta: geom.NormalizeAngle((rng.Float64()*2 - 1) * math.Pi),
			}
			if !w.CheckRobotCollision(p, radius) {
				starts = append(starts, p)
				placed = true
				break
			}
		}
		if !placed {
			return starts, fmt.Errorf("sample starts in %q: %w", w.Name(), ErrNoFreeSpace)
		}
	}
	return starts, nil
}

func degenerate(b r2.Box) bool {
	return !(b.Max.X > b.Min.X && b.Max.Y > b.Min.Y)
}

// RunMonteCarlo runs base's controller from random start poses. Trials run
// in parallel as one ensemble over a shared world.
func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig, base *config.Config, registry *experiment.Registry) ([]MonteCarloResult, error) {
	w, err := world.Resolve(base.World)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(mc.Seed))
	if mc.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	starts, err := SampleStarts(w, mc.Region, base.Robot.CollisionRadius, mc.Trials, rng)
	if err != nil {
		return nil, err
	}

	runs, err := experiment.NewEnsemble(base, w, registry, starts).Run(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for i, r := range runs {
		results[i] = MonteCarloResult{
			TrialID:    i,
			Start:      starts[i],
			Final:      r.Final(),
			Collided:   r.Collided,
			Reached:    r.Reached,
			PathLength: r.Metrics["path_length"],
			Elapsed:    r.Elapsed,
		}
	}
	return results, nil
}

// MonteCarloStats counts collided and collision-free trials.
func MonteCarloStats(results []MonteCarloResult) (collided int, clear int) {
	for _, r := range results {
		if r.Collided {
			collided++
		} else {
			clear++
		}
	}
	return
}
