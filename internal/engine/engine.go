package engine

import "github.com/san-kum/sim2d/internal/geom"

// Body is the robot as seen by the engine.
type Body interface {
	Pose() geom.Pose
	// Move advances the pose by a travelled distance and a heading change.
	Move(linearDistance, angularDelta float64)
	CollisionRadius() float64
	MaxLinearVelocity() float64
	SensorHz() float64
}

// Collider answers whether a disc at pose touches an obstacle.
type Collider interface {
	CheckRobotCollision(pose geom.Pose, radius float64) bool
}

// Sampler takes a sensor reading at pose. t is the time since the start of
// the current Step call.
type Sampler interface {
	Sample(pose geom.Pose, t float64)
}

// Observer is notified after every motion segment, before the collision
// check result is acted on.
type Observer interface {
	OnSlice(pose geom.Pose, t float64)
}

// Result describes one Step call.
type Result struct {
	Horizon  float64 // requested simulated time
	Elapsed  float64 // simulated time actually integrated
	Slices   int     // completed collision slices
	Samples  int     // sensor samples taken
	Collided bool    // the engine is halted after the call
}

type Engine struct {
	body      Body
	collider  Collider
	sampler   Sampler
	intervals Intervals
	ready     bool
	latch     Latch
	observers []Observer
}

func New(body Body, sampler Sampler) *Engine {
	return &Engine{
		body:      body,
		sampler:   sampler,
		observers: make([]Observer, 0),
	}
}

func (e *Engine) AddObserver(o Observer) { e.observers = append(e.observers, o) }

// Initialize binds the collider, clears the collision latch and derives the
// stepping intervals from the body's current configuration. It must be
// called again whenever the body's radius, speed limit or sensor rate
// changes. On error the engine refuses to step.
func (e *Engine) Initialize(collider Collider) error {
	e.ready = false
	e.latch.Reset()
	iv, err := DeriveIntervals(e.body.CollisionRadius(), e.body.MaxLinearVelocity(), e.body.SensorHz())
	if err != nil {
		return err
	}
	e.collider = collider
	e.intervals = iv
	e.ready = collider != nil
	if !e.ready {
		return ErrNotInitialized
	}
	return nil
}

func (e *Engine) Intervals() Intervals { return e.intervals }
func (e *Engine) Phase() Phase         { return e.latch.Phase() }
func (e *Engine) Halted() bool         { return e.latch.Halted() }

// Reset returns a halted engine to Running.
func (e *Engine) Reset() { e.latch.Reset() }

// Step advances the body for repeat collision intervals (at least one) at
// the given velocities, stopping at the first contact. Velocities are
// integrated as supplied; the collision interval assumes the caller stays
// within the body's maximum linear velocity.
func (e *Engine) Step(linearVelocity, angularVelocity float64, repeat int) (Result, error) {
	if !e.ready {
		return Result{}, ErrNotInitialized
	}
	if repeat < 1 {
		repeat = 1
	}

	c := newClock(e.intervals, repeat)
	res := Result{Horizon: c.horizon()}
	if e.latch.Halted() {
		res.Collided = true
		return res, nil
	}

	radius := e.body.CollisionRadius()

	for {
		seg, ok := c.next()
		if !ok {
			break
		}
		if seg.dt > 0 {
			e.body.Move(linearVelocity*seg.dt, angularVelocity*seg.dt)
		}
		pose := e.body.Pose()
		for _, o := range e.observers {
			o.OnSlice(pose, seg.end)
		}
		if e.collider.CheckRobotCollision(pose, radius) {
			e.latch.Halt()
			break
		}
		if seg.sample {
			if e.sampler != nil {
				e.sampler.Sample(pose, seg.end)
			}
			res.Samples++
		}
	}

	res.Elapsed = c.elapsed
	res.Slices = c.slice
	res.Collided = e.latch.Halted()
	return res, nil
}
