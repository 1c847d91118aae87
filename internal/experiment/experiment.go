package experiment

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/sim2d/internal/config"
	"github.com/san-kum/sim2d/internal/control"
	"github.com/san-kum/sim2d/internal/geom"
	"github.com/san-kum/sim2d/internal/robot"
	"github.com/san-kum/sim2d/internal/session"
	"github.com/san-kum/sim2d/internal/world"
)

var ErrNotSetup = errors.New("experiment not setup")

// Result is the recorded outcome of one run. Times and Poses hold one entry
// per motion segment, starting with the pose the run began from.
type Result struct {
	World      string             `json:"world"`
	Controller string             `json:"controller"`
	Times      []float64          `json:"times"`
	Poses      []geom.Pose        `json:"poses"`
	Scans      []world.Scan       `json:"-"`
	Metrics    map[string]float64 `json:"metrics"`
	Ticks      int                `json:"ticks"`
	Elapsed    float64            `json:"elapsed"`
	Collided   bool               `json:"collided"`
	Reached    bool               `json:"reached"`
}

// Final returns the last recorded pose.
func (r *Result) Final() geom.Pose {
	if len(r.Poses) == 0 {
		return geom.Pose{}
	}
	return r.Poses[len(r.Poses)-1]
}

// Goal is implemented by controllers that know when they are done.
type Goal interface {
	Reached(pose geom.Pose) bool
}

type Experiment struct {
	cfg        *config.Config
	session    *session.Session
	controller control.Controller
	recorder   *recorder

	ticks   int
	reached bool
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup builds a session for w, places the robot at the configured start
// pose and wires the metrics in. ctrl may be nil when the caller drives the
// run itself through Drive.
func (e *Experiment) Setup(w *world.World, ctrl control.Controller, ms []session.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	s := session.New(robot.New(e.cfg.Robot))
	e.recorder = &recorder{}
	s.AddObserver(e.recorder)
	s.AddScanObserver(e.recorder)
	for _, m := range ms {
		s.AddMetric(m)
		if so, ok := m.(session.ScanObserver); ok {
			s.AddScanObserver(so)
		}
	}

	if err := s.InitializeWorld(w); err != nil {
		return err
	}
	start := e.cfg.Start
	s.SetPose(start.X, start.Y, start.Theta)

	e.session = s
	e.controller = ctrl
	e.Begin()
	return nil
}

// Run drives the configured controller for Command.Ticks ticks, holding
// each command for Command.Repeat collision intervals.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.session == nil || e.controller == nil {
		return nil, ErrNotSetup
	}
	e.Begin()
	err := e.Drive(ctx, e.controller, e.cfg.Command.Ticks, e.cfg.Command.Repeat)
	return e.Result(), err
}

// Begin starts a fresh recording from the current pose.
func (e *Experiment) Begin() {
	e.recorder.reset(e.session.Time(), e.session.Pose())
	e.ticks = 0
	e.reached = false
}

// Drive runs ctrl for up to ticks ticks. Each tick the controller sees the
// latest pose and scan. It stops early on collision or when a goal
// controller reports arrival. ctx is checked between ticks.
func (e *Experiment) Drive(ctx context.Context, ctrl control.Controller, ticks, repeat int) error {
	if e.session == nil {
		return ErrNotSetup
	}
	s := e.session
	goal, _ := ctrl.(Goal)

	for tick := 0; tick < ticks; tick++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		var scan *world.Scan
		if last, ok := s.LastScan(); ok {
			scan = &last
		}
		cmd := ctrl.Compute(s.Pose(), scan, s.Time())

		step, err := s.Step(cmd.Linear, cmd.Angular, repeat)
		if err != nil {
			return fmt.Errorf("tick %d: %w", e.ticks, err)
		}
		e.ticks++
		if step.Collided {
			return nil
		}
		if goal != nil && goal.Reached(s.Pose()) {
			e.reached = true
			return nil
		}
	}
	return nil
}

// Teleport moves the robot, clearing any collision, and records the jump.
func (e *Experiment) Teleport(pose geom.Pose) {
	e.session.SetPose(pose.X, pose.Y, pose.Theta)
	e.recorder.OnStep(e.session.Pose(), e.session.Time())
}

// Result snapshots what has been recorded since Begin.
func (e *Experiment) Result() *Result {
	rec := e.recorder
	return &Result{
		World:      e.session.World().Name(),
		Controller: e.cfg.Command.Controller,
		Times:      append([]float64(nil), rec.times...),
		Poses:      append([]geom.Pose(nil), rec.poses...),
		Scans:      append([]world.Scan(nil), rec.scans...),
		Metrics:    e.session.Metrics(),
		Ticks:      e.ticks,
		Elapsed:    e.session.Time(),
		Collided:   e.session.Collided(),
		Reached:    e.reached,
	}
}

// Session returns the underlying session for adding observers.
func (e *Experiment) Session() *session.Session {
	return e.session
}

type recorder struct {
	times []float64
	poses []geom.Pose
	scans []world.Scan
}

func (r *recorder) reset(t float64, start geom.Pose) {
	r.times = []float64{t}
	r.poses = []geom.Pose{start}
	r.scans = nil
}

func (r *recorder) OnStep(pose geom.Pose, t float64) {
	r.times = append(r.times, t)
	r.poses = append(r.poses, pose)
}

func (r *recorder) OnScan(scan world.Scan) {
	r.scans = append(r.scans, scan)
}
