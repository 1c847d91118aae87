package engine

import (
	"fmt"
	"math"
)

// Intervals are the two cadences derived from the robot configuration.
type Intervals struct {
	// CollisionCheck is the longest time the body can move at top speed
	// before it may have covered its own radius.
	CollisionCheck float64
	// SensorSample is the sensor's native sampling period.
	SensorSample float64
}

// DeriveIntervals computes the stepping intervals. Zero, negative or
// non-finite inputs are rejected.
func DeriveIntervals(radius, maxLinearVelocity, sensorHz float64) (Intervals, error) {
	if err := positive("collision radius", radius); err != nil {
		return Intervals{}, err
	}
	if err := positive("max linear velocity", maxLinearVelocity); err != nil {
		return Intervals{}, err
	}
	if err := positive("sensor frequency", sensorHz); err != nil {
		return Intervals{}, err
	}

	iv := Intervals{
		CollisionCheck: radius / maxLinearVelocity,
		SensorSample:   1 / sensorHz,
	}
	if err := positive("collision check interval", iv.CollisionCheck); err != nil {
		return Intervals{}, err
	}
	if err := positive("sensor sample interval", iv.SensorSample); err != nil {
		return Intervals{}, err
	}
	return iv, nil
}

func (iv Intervals) Valid() bool {
	return positive("", iv.CollisionCheck) == nil && positive("", iv.SensorSample) == nil
}

func positive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %s must be positive and finite, got %v", ErrInvalidConfig, name, v)
	}
	return nil
}
