package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/sim2d/internal/control"
	"github.com/san-kum/sim2d/internal/metrics"
	"github.com/san-kum/sim2d/internal/session"
	"github.com/san-kum/sim2d/internal/world"
)

// DefaultSafetyMargin is the gap below which a pose counts against the
// safety metric.
const DefaultSafetyMargin = 0.1

type Registry struct {
	controllers map[string]func(map[string]float64) control.Controller
}

func NewRegistry() *Registry {
	r := &Registry{
		controllers: make(map[string]func(map[string]float64) control.Controller),
	}

	r.controllers["constant"] = func(params map[string]float64) control.Controller {
		return control.NewConstant(params["linear"], params["angular"])
	}
	r.controllers["manual"] = func(map[string]float64) control.Controller {
		return control.NewManual()
	}
	r.controllers["goal"] = func(params map[string]float64) control.Controller {
		speed := params["linear"]
		if speed == 0 {
			speed = params["max_v"]
		}
		pid := control.NewPID(params["kp"], params["ki"], params["kd"])
		return control.NewGoal(params["goal_x"], params["goal_y"], speed, pid)
	}
	r.controllers["wander"] = func(params map[string]float64) control.Controller {
		turn := params["max_w"]
		if turn == 0 {
			turn = 1.0
		}
		safe := params["safe_range"]
		if safe == 0 {
			safe = 1.0
		}
		return control.NewWander(params["linear"], turn, safe)
	}

	return r
}

func (r *Registry) GetController(name string, params map[string]float64) (control.Controller, error) {
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", name)
	}
	return fn(params), nil
}

func (r *Registry) ListControllers() []string {
	names := make([]string, 0, len(r.controllers))
	for name := range r.controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns a fresh metric set for one run. Metrics that learn
// from lidar scans also implement session.ScanObserver.
func (r *Registry) DefaultMetrics(w *world.World, radius float64) []session.Metric {
	return []session.Metric{
		metrics.NewPathLength(),
		metrics.NewRotation(),
		metrics.NewDisplacement(),
		metrics.NewSafety(w, radius, DefaultSafetyMargin),
		metrics.NewMinClearance(),
		metrics.NewSampleCount(),
	}
}
