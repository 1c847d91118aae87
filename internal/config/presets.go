package config

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/sim2d/internal/geom"
	"github.com/san-kum/sim2d/internal/robot"
)

var Presets = map[string]*Config{
	// slow, small robot crossing room 2 with a wide scan
	"turtle": {
		World: "default",
		Robot: robot.Config{
			CollisionRadius: 0.15, MaxLinearVelocity: 0.3, MaxAngularVelocity: 1.0,
			Lidar: robot.Lidar{Hz: 5, Beams: 180, FOV: 2 * math.Pi, MaxRange: 6},
		},
		Start:   geom.Pose{X: -8.5, Y: 8.5, Theta: -math.Pi / 2},
		Command: CommandConfig{Controller: "wander", Linear: 0.3, Repeat: 4, Ticks: 400, Kp: 1.5},
	},
	// fast robot whose lidar rate does not divide the collision interval
	"sprinter": {
		World: "default",
		Robot: robot.Config{
			CollisionRadius: 0.3, MaxLinearVelocity: 2.0, MaxAngularVelocity: 3.0,
			Lidar: robot.Lidar{Hz: 7, Beams: 60, FOV: math.Pi, MaxRange: 10},
		},
		Start:   geom.Pose{X: -8.5, Y: 8.5},
		Command: CommandConfig{Controller: "constant", Linear: 2.0, Angular: -0.2, Repeat: 10, Ticks: 100},
	},
	// go-to-goal across the open box
	"scanner": {
		World: "box",
		Robot: robot.Config{
			CollisionRadius: 0.25, MaxLinearVelocity: 1.0, MaxAngularVelocity: 2.0,
			Lidar: robot.Lidar{Hz: 20, Beams: 360, FOV: 2 * math.Pi, MaxRange: 12},
		},
		Start: geom.Pose{X: -4, Y: -4},
		Command: CommandConfig{
			Controller: "goal", Linear: 1.0, Repeat: 2, Ticks: 300,
			GoalX: 4, GoalY: 4, Kp: 2.0, Kd: 0.1,
		},
	},
}

// GetPreset returns a copy of the named preset.
func GetPreset(name string) (*Config, error) {
	p, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownPreset, name, ListPresets())
	}
	cfg := *p
	return &cfg, nil
}

// ListPresets returns preset names in sorted order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
