package optim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"

	"github.com/san-kum/sim2d/internal/config"
	"github.com/san-kum/sim2d/internal/experiment"
	"github.com/san-kum/sim2d/internal/world"
)

var ErrNoCandidates = errors.New("grid search: no candidate finished")

// Objective scores a finished run; lower is better.
type Objective func(r *experiment.Result) float64

// MinimizeMetric scores a run by one of its metrics.
func MinimizeMetric(name string) Objective {
	return func(r *experiment.Result) float64 { return r.Metrics[name] }
}

// MaximizeMetric scores a run by the negated metric.
func MaximizeMetric(name string) Objective {
	return func(r *experiment.Result) float64 { return -r.Metrics[name] }
}

// AvoidCollisions wraps obj so that any run ending in a collision scores
// worse than every run that did not.
func AvoidCollisions(obj Objective) Objective {
	return func(r *experiment.Result) float64 {
		if r.Collided {
			return math.Inf(1)
		}
		return obj(r)
	}
}

// GridSearch evaluates every combination of the given controller parameter
// values.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("grid search: %d params but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("grid search: no values for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Candidate is one evaluated point of the grid.
type Candidate struct {
	Params map[string]float64
	Score  float64
	Result *experiment.Result
}

// Build turns a parameter assignment into a ready experiment.
type Build func(params map[string]float64) (*experiment.Experiment, error)

// Search runs every grid point and returns the best candidate along with
// all evaluated ones in grid order. Ties keep the earlier point.
func (g *GridSearch) Search(ctx context.Context, build Build, obj Objective) (*Candidate, []Candidate, error) {
	var all []Candidate
	err := g.searchRecursive(ctx, 0, map[string]float64{}, build, obj, &all)
	if err != nil {
		return nil, all, err
	}

	var best *Candidate
	for i := range all {
		if best == nil || all[i].Score < best.Score {
			best = &all[i]
		}
	}
	if best == nil || math.IsInf(best.Score, 1) {
		return nil, all, ErrNoCandidates
	}
	return best, all, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build Build,
	obj Objective,
	all *[]Candidate,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		exp, err := build(current)
		if err != nil {
			return err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return err
		}
		*all = append(*all, Candidate{Params: current, Score: obj(result), Result: result})
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := maps.Clone(current)
		next[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, next, build, obj, all); err != nil {
			return err
		}
	}
	return nil
}

// ControllerBuild overrides the configured controller's parameters with each
// grid point and sets up a fresh experiment in w.
func ControllerBuild(cfg *config.Config, w *world.World, registry *experiment.Registry) Build {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		merged := cfg.GetControllerParams()
		maps.Copy(merged, params)
		ctrl, err := registry.GetController(cfg.Command.Controller, merged)
		if err != nil {
			return nil, err
		}
		exp := experiment.New(cfg)
		if err := exp.Setup(w, ctrl, registry.DefaultMetrics(w, cfg.Robot.CollisionRadius)); err != nil {
			return nil, err
		}
		return exp, nil
	}
}
