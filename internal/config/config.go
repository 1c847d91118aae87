package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/sim2d/internal/geom"
	"github.com/san-kum/sim2d/internal/robot"
	"gopkg.in/yaml.v3"
)

const (
	DefaultController = "constant"
	DefaultLinear     = 0.5
	DefaultRepeat     = 5
	DefaultTicks      = 200
	DefaultStartX     = -8.5
	DefaultStartY     = 8.5
	DefaultKp         = 2.0
	DefaultKd         = 0.1
)

var ErrUnknownPreset = errors.New("config: unknown preset")

type Config struct {
	World   string        `yaml:"world"`
	Robot   robot.Config  `yaml:"robot"`
	Start   geom.Pose     `yaml:"start"`
	Command CommandConfig `yaml:"command"`
	Seed    int64         `yaml:"seed"`
}

// CommandConfig describes how the robot is driven: each tick the controller
// produces a velocity command that is held for Repeat collision intervals.
type CommandConfig struct {
	Controller string  `yaml:"controller"`
	Linear     float64 `yaml:"linear"`
	Angular    float64 `yaml:"angular"`
	Repeat     int     `yaml:"repeat"`
	Ticks      int     `yaml:"ticks"`
	GoalX      float64 `yaml:"goal_x"`
	GoalY      float64 `yaml:"goal_y"`
	Kp         float64 `yaml:"kp"`
	Ki         float64 `yaml:"ki"`
	Kd         float64 `yaml:"kd"`
}

func DefaultConfig() *Config {
	return &Config{
		World: "default",
		Robot: robot.DefaultConfig(),
		Start: geom.Pose{X: DefaultStartX, Y: DefaultStartY},
		Command: CommandConfig{
			Controller: DefaultController,
			Linear:     DefaultLinear,
			Repeat:     DefaultRepeat,
			Ticks:      DefaultTicks,
			Kp:         DefaultKp,
			Kd:         DefaultKd,
		},
	}
}

// Load reads a YAML file over the defaults, so a file only needs the keys
// it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the run-level settings. Robot limits that feed the
// stepping intervals are checked when the session is initialized.
func (c *Config) Validate() error {
	if c.Command.Ticks < 1 {
		return fmt.Errorf("config: ticks must be at least 1, got %d", c.Command.Ticks)
	}
	if !c.Start.IsValid() {
		return fmt.Errorf("config: start pose must be finite, got %+v", c.Start)
	}
	return c.Robot.Validate()
}

// GetControllerParams returns the tuning map handed to the controller registry.
func (c *Config) GetControllerParams() map[string]float64 {
	return map[string]float64{
		"linear":  c.Command.Linear,
		"angular": c.Command.Angular,
		"goal_x":  c.Command.GoalX,
		"goal_y":  c.Command.GoalY,
		"kp":      c.Command.Kp,
		"ki":      c.Command.Ki,
		"kd":      c.Command.Kd,
		"max_v":   c.Robot.MaxLinearVelocity,
		"max_w":   c.Robot.MaxAngularVelocity,
	}
}
