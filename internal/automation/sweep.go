package automation

import (
	"context"
	"fmt"

	"github.com/san-kum/sim2d/internal/config"
	"github.com/san-kum/sim2d/internal/experiment"
	"github.com/san-kum/sim2d/internal/log"
	"github.com/san-kum/sim2d/internal/world"
)

// ParameterSweep runs the configured controller once per value of one
// controller parameter (a key of config.GetControllerParams, or any extra
// key the controller understands such as safe_range).
type ParameterSweep struct {
	Param string
	Min   float64
	Max   float64
	Steps int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	Value      float64
	Collided   bool
	Reached    bool
	Elapsed    float64
	PathLength float64
	Clearance  float64
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, base *config.Config, registry *experiment.Registry) ([]SweepResult, error) {
	if sweep.Steps < 1 {
		return nil, fmt.Errorf("sweep %s: steps must be at least 1", sweep.Param)
	}

	w, err := world.Resolve(base.World)
	if err != nil {
		return nil, err
	}

	paramStep := 0.0
	if sweep.Steps > 1 {
		paramStep = (sweep.Max - sweep.Min) / float64(sweep.Steps-1)
	}

	results := make([]SweepResult, 0, sweep.Steps)
	for i := 0; i < sweep.Steps; i++ {
		value := sweep.Min + float64(i)*paramStep

		params := base.GetControllerParams()
		params[sweep.Param] = value
		ctrl, err := registry.GetController(base.Command.Controller, params)
		if err != nil {
			return nil, err
		}

		exp := experiment.New(base)
		if err := exp.Setup(w, ctrl, registry.DefaultMetrics(w, base.Robot.CollisionRadius)); err != nil {
			return nil, err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			Value:      value,
			Collided:   result.Collided,
			Reached:    result.Reached,
			Elapsed:    result.Elapsed,
			PathLength: result.Metrics["path_length"],
			Clearance:  result.Metrics["min_clearance"],
		})

		log.Debug("sweep", "step", i+1, "of", sweep.Steps, sweep.Param, value)
	}

	return results, nil
}
