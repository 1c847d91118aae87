package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/san-kum/sim2d/internal/config"
	"github.com/san-kum/sim2d/internal/control"
	"github.com/san-kum/sim2d/internal/experiment"
	"github.com/san-kum/sim2d/internal/geom"
	"github.com/san-kum/sim2d/internal/log"
	"github.com/san-kum/sim2d/internal/world"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted drive: a list of command segments run back to back
// in one session.
type Scenario struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	World       string     `yaml:"world"`
	Start       *geom.Pose `yaml:"start"`
	Segments    []Segment  `yaml:"segments"`
}

// Segment holds one velocity command for Ticks ticks. SetPose, when given,
// teleports the robot first and clears any collision.
type Segment struct {
	Label   string     `yaml:"label"`
	Linear  float64    `yaml:"linear"`
	Angular float64    `yaml:"angular"`
	Repeat  int        `yaml:"repeat"`
	Ticks   int        `yaml:"ticks"`
	SetPose *geom.Pose `yaml:"set_pose"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Segments) == 0 {
		return nil, fmt.Errorf("scenario %q has no segments", scenario.Name)
	}
	return &scenario, nil
}

// RunScenario plays every segment of scenario against base's robot. The
// scenario's world and start pose override base when set. A collision is
// sticky, so segments after one do nothing until a set_pose clears it.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, registry *experiment.Registry) (*experiment.Result, error) {
	cfg := *base
	cfg.Command.Controller = "scenario"
	if scenario.World != "" {
		cfg.World = scenario.World
	}
	if scenario.Start != nil {
		cfg.Start = *scenario.Start
	}

	w, err := world.Resolve(cfg.World)
	if err != nil {
		return nil, err
	}

	exp := experiment.New(&cfg)
	if err := exp.Setup(w, nil, registry.DefaultMetrics(w, cfg.Robot.CollisionRadius)); err != nil {
		return nil, err
	}

	for i, seg := range scenario.Segments {
		log.Debug("scenario segment", "scenario", scenario.Name, "segment", i+1, "label", seg.Label)

		if seg.SetPose != nil {
			exp.Teleport(*seg.SetPose)
		}

		ticks := seg.Ticks
		if ticks == 0 && seg.SetPose == nil {
			ticks = 1
		}
		repeat := seg.Repeat
		if repeat == 0 {
			repeat = cfg.Command.Repeat
		}

		ctrl := control.NewConstant(seg.Linear, seg.Angular)
		if err := exp.Drive(ctx, ctrl, ticks, repeat); err != nil {
			return exp.Result(), fmt.Errorf("segment %d: %w", i+1, err)
		}
	}

	return exp.Result(), nil
}
