package session

import (
	"fmt"
	"log/slog"

	"github.com/san-kum/sim2d/internal/engine"
	"github.com/san-kum/sim2d/internal/geom"
	"github.com/san-kum/sim2d/internal/log"
	"github.com/san-kum/sim2d/internal/robot"
	"github.com/san-kum/sim2d/internal/world"
)

const trailCapacity = 500

// Observer is notified with the robot pose after every motion segment.
// t is the session's simulated time.
type Observer interface {
	OnStep(pose geom.Pose, t float64)
}

// ScanObserver receives every lidar scan as it is taken.
type ScanObserver interface {
	OnScan(scan world.Scan)
}

type Metric interface {
	Name() string
	Observe(pose geom.Pose, t float64)
	Value() float64
	Reset()
}

// Frame is what a renderer needs to draw the current state.
type Frame struct {
	World    *world.World
	Pose     geom.Pose
	Radius   float64
	Scan     *world.Scan
	Trail    []geom.Pose
	Time     float64
	Collided bool
}

type Renderer interface {
	Render(f Frame) error
}

type Session struct {
	robot  *robot.Robot
	world  *world.World
	engine *engine.Engine

	time      float64
	stepStart float64
	lastScan  *world.Scan
	trail     []geom.Pose
	primed    bool // metrics have seen the pose the current run started from

	observers     []Observer
	scanObservers []ScanObserver
	metrics       []Metric

	log *slog.Logger
}

func New(r *robot.Robot) *Session {
	s := &Session{
		robot:         r,
		trail:         make([]geom.Pose, 0, trailCapacity),
		observers:     make([]Observer, 0),
		scanObservers: make([]ScanObserver, 0),
		metrics:       make([]Metric, 0),
		log:           log.With("component", "session"),
	}
	s.engine = engine.New(r, lidarSampler{s})
	s.engine.AddObserver(tracker{s})
	return s
}

func (s *Session) AddObserver(o Observer)         { s.observers = append(s.observers, o) }
func (s *Session) AddScanObserver(o ScanObserver) { s.scanObservers = append(s.scanObservers, o) }
func (s *Session) AddMetric(m Metric)             { s.metrics = append(s.metrics, m) }

// Initialize loads the world named by source (see world.Resolve) and
// prepares the engine. An empty source selects the built-in default map.
func (s *Session) Initialize(source string) error {
	w, err := world.Resolve(source)
	if err != nil {
		return fmt.Errorf("session: load world %q: %w", source, err)
	}
	return s.InitializeWorld(w)
}

// InitializeWorld prepares the session against an already built world. It
// clears the collision latch and re-derives the stepping intervals from the
// robot's current configuration.
func (s *Session) InitializeWorld(w *world.World) error {
	if w == nil {
		return fmt.Errorf("session: nil world: %w", engine.ErrNotInitialized)
	}
	if err := s.robot.Config().Validate(); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if err := s.engine.Initialize(w); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	s.world = w
	s.time = 0
	s.lastScan = nil
	s.trail = s.trail[:0]
	s.primed = false
	for _, m := range s.metrics {
		m.Reset()
	}

	iv := s.engine.Intervals()
	s.log.Debug("initialized",
		"world", w.Name(),
		"collision_interval", iv.CollisionCheck,
		"sensor_interval", iv.SensorSample,
	)
	return nil
}

// Step drives the robot at the given velocities for repeat collision
// intervals, or until it collides.
func (s *Session) Step(linearVelocity, angularVelocity float64, repeat int) (engine.Result, error) {
	if !s.primed {
		start := s.robot.Pose()
		for _, m := range s.metrics {
			m.Observe(start, s.time)
		}
		s.primed = true
	}

	wasHalted := s.engine.Halted()
	s.stepStart = s.time
	res, err := s.engine.Step(linearVelocity, angularVelocity, repeat)
	if err != nil {
		return res, err
	}
	s.time += res.Elapsed

	if res.Collided && !wasHalted {
		p := s.robot.Pose()
		s.log.Info("collision", "t", s.time, "x", p.X, "y", p.Y, "theta", p.Theta)
	}
	return res, nil
}

func (s *Session) Pose() geom.Pose { return s.robot.Pose() }

// SetPose teleports the robot and clears the collision latch, whether or
// not a collision was active.
func (s *Session) SetPose(x, y, theta float64) {
	s.robot.SetPose(x, y, theta)
	s.engine.Reset()
	s.trail = s.trail[:0]
	s.primed = false
}

func (s *Session) Collided() bool              { return s.engine.Halted() }
func (s *Session) Phase() engine.Phase         { return s.engine.Phase() }
func (s *Session) Intervals() engine.Intervals { return s.engine.Intervals() }
func (s *Session) Time() float64               { return s.time }
func (s *Session) Robot() *robot.Robot         { return s.robot }
func (s *Session) World() *world.World         { return s.world }

// LastScan returns the most recent lidar scan, if any was taken since
// Initialize.
func (s *Session) LastScan() (world.Scan, bool) {
	if s.lastScan == nil {
		return world.Scan{}, false
	}
	return *s.lastScan, true
}

// Metrics returns the current value of every registered metric.
func (s *Session) Metrics() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Frame snapshots the state for rendering.
func (s *Session) Frame() Frame {
	f := Frame{
		World:    s.world,
		Pose:     s.robot.Pose(),
		Radius:   s.robot.CollisionRadius(),
		Trail:    append([]geom.Pose(nil), s.trail...),
		Time:     s.time,
		Collided: s.engine.Halted(),
	}
	if s.lastScan != nil {
		scan := *s.lastScan
		f.Scan = &scan
	}
	return f
}

// Visualize hands the current frame to r.
func (s *Session) Visualize(r Renderer) error {
	if s.world == nil {
		return engine.ErrNotInitialized
	}
	return r.Render(s.Frame())
}

// lidarSampler takes a scan for the engine and publishes it.
type lidarSampler struct{ s *Session }

func (l lidarSampler) Sample(pose geom.Pose, t float64) {
	s := l.s
	lidar := s.robot.Lidar()
	scan := s.world.Scan(pose, lidar.Beams, lidar.FOV, lidar.MaxRange)
	scan.Time = s.stepStart + t
	s.lastScan = &scan
	for _, o := range s.scanObservers {
		o.OnScan(scan)
	}
}

// tracker forwards engine segments to observers and metrics in session time.
type tracker struct{ s *Session }

func (tr tracker) OnSlice(pose geom.Pose, t float64) {
	s := tr.s
	now := s.stepStart + t
	if len(s.trail) == trailCapacity {
		copy(s.trail, s.trail[1:])
		s.trail = s.trail[:trailCapacity-1]
	}
	s.trail = append(s.trail, pose)
	for _, m := range s.metrics {
		m.Observe(pose, now)
	}
	for _, o := range s.observers {
		o.OnStep(pose, now)
	}
}
