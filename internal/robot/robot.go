package robot

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/sim2d/internal/geom"
)

// straightEps is the heading change below which Move integrates a straight line.
const straightEps = 1e-9

var ErrInvalidLidar = errors.New("robot: invalid lidar configuration")

// Lidar describes a planar range sensor mounted at the robot center.
type Lidar struct {
	Hz       float64 `yaml:"hz" json:"hz"`
	Beams    int     `yaml:"beams" json:"beams"`
	FOV      float64 `yaml:"fov" json:"fov"`
	MaxRange float64 `yaml:"max_range" json:"max_range"`
}

type Config struct {
	CollisionRadius    float64 `yaml:"radius" json:"radius"`
	MaxLinearVelocity  float64 `yaml:"max_velocity" json:"max_velocity"`
	MaxAngularVelocity float64 `yaml:"max_angular_velocity" json:"max_angular_velocity"`
	Lidar              Lidar   `yaml:"lidar" json:"lidar"`
}

func DefaultConfig() Config {
	return Config{
		CollisionRadius:    0.2,
		MaxLinearVelocity:  1.0,
		MaxAngularVelocity: 2.0,
		Lidar: Lidar{
			Hz:       10,
			Beams:    90,
			FOV:      2 * math.Pi,
			MaxRange: 8,
		},
	}
}

// Validate checks the parts of the configuration the stepping engine does
// not derive intervals from. Radius, speed and sensor rate are checked when
// the engine is initialized.
func (c Config) Validate() error {
	if c.Lidar.Beams < 1 {
		return fmt.Errorf("%w: beams must be at least 1, got %d", ErrInvalidLidar, c.Lidar.Beams)
	}
	if !(c.Lidar.FOV > 0) || c.Lidar.FOV > 2*math.Pi {
		return fmt.Errorf("%w: fov must be in (0, 2pi], got %f", ErrInvalidLidar, c.Lidar.FOV)
	}
	if !(c.Lidar.MaxRange > 0) || math.IsInf(c.Lidar.MaxRange, 0) {
		return fmt.Errorf("%w: max range must be positive and finite, got %f", ErrInvalidLidar, c.Lidar.MaxRange)
	}
	if c.MaxAngularVelocity < 0 || math.IsNaN(c.MaxAngularVelocity) {
		return fmt.Errorf("robot: max angular velocity must be non-negative, got %f", c.MaxAngularVelocity)
	}
	return nil
}

// Robot is a differential-drive body with a circular footprint.
type Robot struct {
	cfg  Config
	pose geom.Pose
}

func New(cfg Config) *Robot {
	return &Robot{cfg: cfg}
}

func (r *Robot) Pose() geom.Pose { return r.pose }

func (r *Robot) SetPose(x, y, theta float64) {
	r.pose = geom.Pose{X: x, Y: y, Theta: geom.NormalizeAngle(theta)}
}

// Move integrates a constant-curvature arc of the given length that turns
// the heading by angularDelta.
func (r *Robot) Move(linearDistance, angularDelta float64) {
	p := r.pose
	if math.Abs(angularDelta) < straightEps {
		p.X += linearDistance * math.Cos(p.Theta)
		p.Y += linearDistance * math.Sin(p.Theta)
		p.Theta += angularDelta
	} else {
		radius := linearDistance / angularDelta
		next := p.Theta + angularDelta
		p.X += radius * (math.Sin(next) - math.Sin(p.Theta))
		p.Y -= radius * (math.Cos(next) - math.Cos(p.Theta))
		p.Theta = next
	}
	p.Theta = geom.NormalizeAngle(p.Theta)
	r.pose = p
}

func (r *Robot) Config() Config { return r.cfg }

// SetConfig replaces the physical configuration. The owning session must be
// re-initialized afterwards so the stepping intervals follow.
func (r *Robot) SetConfig(cfg Config) { r.cfg = cfg }

func (r *Robot) CollisionRadius() float64    { return r.cfg.CollisionRadius }
func (r *Robot) MaxLinearVelocity() float64  { return r.cfg.MaxLinearVelocity }
func (r *Robot) MaxAngularVelocity() float64 { return r.cfg.MaxAngularVelocity }
func (r *Robot) SensorHz() float64           { return r.cfg.Lidar.Hz }
func (r *Robot) Lidar() Lidar                { return r.cfg.Lidar }
