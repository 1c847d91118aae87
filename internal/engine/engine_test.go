package engine

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sim2d/internal/geom"
)

// lineBody drives along +X and records every integrated distance.
type lineBody struct {
	pose      geom.Pose
	radius    float64
	maxV      float64
	hz        float64
	distances []float64
	turns     []float64
}

func (b *lineBody) Pose() geom.Pose { return b.pose }
func (b *lineBody) Move(d, a float64) {
	b.pose.X += d
	b.pose.Theta += a
	b.distances = append(b.distances, d)
	b.turns = append(b.turns, a)
}
func (b *lineBody) CollisionRadius() float64   { return b.radius }
func (b *lineBody) MaxLinearVelocity() float64 { return b.maxV }
func (b *lineBody) SensorHz() float64          { return b.hz }

func (b *lineBody) travelled() float64 {
	sum := 0.0
	for _, d := range b.distances {
		sum += d
	}
	return sum
}

// wallAt is a vertical wall; a nil wall never collides.
type wallAt struct {
	x      *float64
	checks int
}

func (w *wallAt) CheckRobotCollision(pose geom.Pose, radius float64) bool {
	w.checks++
	return w.x != nil && pose.X+radius >= *w.x
}

type recordingSampler struct {
	times []float64
	poses []geom.Pose
}

func (s *recordingSampler) Sample(pose geom.Pose, t float64) {
	s.times = append(s.times, t)
	s.poses = append(s.poses, pose)
}

type sliceCounter struct{ n int }

func (c *sliceCounter) OnSlice(geom.Pose, float64) { c.n++ }

func wall(x float64) *wallAt { return &wallAt{x: &x} }

var _ = Describe("DeriveIntervals", func() {
	It("divides radius by speed and inverts the sensor rate", func() {
		iv, err := DeriveIntervals(0.3, 1.5, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(iv.CollisionCheck).To(BeNumerically("~", 0.2, 1e-12))
		Expect(iv.SensorSample).To(Equal(0.25))
		Expect(iv.Valid()).To(BeTrue())
	})

	DescribeTable("rejects configurations that cannot produce finite positive intervals",
		func(radius, speed, hz float64) {
			_, err := DeriveIntervals(radius, speed, hz)
			Expect(err).To(MatchError(ErrInvalidConfig))
		},
		Entry("zero speed", 0.2, 0.0, 10.0),
		Entry("negative speed", 0.2, -1.0, 10.0),
		Entry("infinite speed", 0.2, math.Inf(1), 10.0),
		Entry("zero frequency", 0.2, 1.0, 0.0),
		Entry("negative frequency", 0.2, 1.0, -5.0),
		Entry("NaN frequency", 0.2, 1.0, math.NaN()),
		Entry("zero radius", 0.0, 1.0, 10.0),
		Entry("negative radius", -0.2, 1.0, 10.0),
		Entry("tiny radius over huge speed", 1e-300, 1e300, 10.0),
	)

	It("reports the zero value as invalid", func() {
		Expect(Intervals{}.Valid()).To(BeFalse())
	})
})

var _ = Describe("Latch", func() {
	It("moves Running to Halted and back only through Halt and Reset", func() {
		var l Latch
		Expect(l.Phase()).To(Equal(Running))
		l.Halt()
		Expect(l.Halted()).To(BeTrue())
		l.Halt()
		Expect(l.Phase()).To(Equal(Halted))
		l.Reset()
		Expect(l.Phase()).To(Equal(Running))
		Expect(Halted.String()).To(Equal("halted"))
	})
})

var _ = Describe("Engine", func() {
	var (
		body    *lineBody
		sampler *recordingSampler
		eng     *Engine
	)

	BeforeEach(func() {
		// collision interval 0.3, sensor interval 0.5
		body = &lineBody{radius: 0.3, maxV: 1.0, hz: 2}
		sampler = &recordingSampler{}
		eng = New(body, sampler)
	})

	It("refuses to step before Initialize", func() {
		_, err := eng.Step(1, 0, 1)
		Expect(err).To(MatchError(ErrNotInitialized))
		Expect(body.distances).To(BeEmpty())
	})

	It("refuses to step after a failed Initialize", func() {
		body.hz = 0
		Expect(eng.Initialize(&wallAt{})).To(MatchError(ErrInvalidConfig))
		_, err := eng.Step(1, 0, 1)
		Expect(err).To(MatchError(ErrNotInitialized))
	})

	It("rejects a nil collider", func() {
		Expect(eng.Initialize(nil)).To(MatchError(ErrNotInitialized))
	})

	Context("in free space", func() {
		var collider *wallAt

		BeforeEach(func() {
			collider = &wallAt{}
			Expect(eng.Initialize(collider)).To(Succeed())
		})

		It("derives intervals from the body", func() {
			Expect(eng.Intervals().CollisionCheck).To(BeNumerically("~", 0.3, 1e-12))
			Expect(eng.Intervals().SensorSample).To(Equal(0.5))
		})

		It("advances exactly repeat collision intervals", func() {
			res, err := eng.Step(1, 0, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Collided).To(BeFalse())
			Expect(res.Slices).To(Equal(4))
			Expect(res.Elapsed).To(Equal(res.Horizon))
			Expect(body.travelled()).To(BeNumerically("~", 1.2, 1e-12))
		})

		It("samples at the sensor period independently of the slice length", func() {
			res, err := eng.Step(1, 0, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Samples).To(Equal(2))
			Expect(sampler.times).To(HaveLen(2))
			Expect(sampler.times[0]).To(BeNumerically("~", 0.5, 1e-12))
			Expect(sampler.times[1]).To(BeNumerically("~", 1.0, 1e-12))
			Expect(sampler.poses[0].X).To(BeNumerically("~", 0.5, 1e-12))
			Expect(sampler.poses[1].X).To(BeNumerically("~", 1.0, 1e-12))
		})

		It("splits a slice at the deadline and integrates the rest of it", func() {
			_, err := eng.Step(1, 0, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(body.distances).To(HaveLen(3))
			Expect(body.distances[0]).To(BeNumerically("~", 0.3, 1e-12))
			Expect(body.distances[1]).To(BeNumerically("~", 0.2, 1e-12))
			Expect(body.distances[2]).To(BeNumerically("~", 0.1, 1e-12))
		})

		It("checks collision after every motion segment", func() {
			_, err := eng.Step(1, 0, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(collider.checks).To(Equal(len(body.distances)))
		})

		It("notifies observers after every motion segment", func() {
			counter := &sliceCounter{}
			eng.AddObserver(counter)
			_, err := eng.Step(1, 0, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(counter.n).To(Equal(len(body.distances)))
		})

		It("restarts the sensor phase on every call", func() {
			_, err := eng.Step(1, 0, 1)
			Expect(err).NotTo(HaveOccurred())
			_, err = eng.Step(1, 0, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(sampler.times).To(BeEmpty())
		})

		DescribeTable("clamps repeat counts below one to one",
			func(repeat int) {
				res, err := eng.Step(1, 0.5, repeat)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Slices).To(Equal(1))
				Expect(body.distances).To(Equal([]float64{0.3}))
				Expect(body.turns[0]).To(BeNumerically("~", 0.15, 1e-12))
			},
			Entry("one", 1),
			Entry("zero", 0),
			Entry("negative", -5),
		)

		It("integrates the supplied linear velocity even above the body's maximum", func() {
			_, err := eng.Step(5, 0, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(body.travelled()).To(BeNumerically("~", 3.0, 1e-12))

			body.distances = nil
			_, err = eng.Step(-5, 0, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(body.travelled()).To(BeNumerically("~", -3.0, 1e-12))
		})

		It("passes angular velocity through unchanged", func() {
			_, err := eng.Step(0, 2, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(body.pose.Theta).To(BeNumerically("~", 1.8, 1e-12))
		})
	})

	Context("driving into a wall", func() {
		BeforeEach(func() {
			// contact once X reaches 0.7
			Expect(eng.Initialize(wall(1.0))).To(Succeed())
		})

		It("halts at the contact slice instead of the full horizon", func() {
			res, err := eng.Step(1, 0, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Collided).To(BeTrue())
			Expect(eng.Phase()).To(Equal(Halted))
			Expect(body.pose.X).To(BeNumerically("~", 0.9, 1e-12))
			Expect(res.Elapsed).To(BeNumerically("~", 0.9, 1e-12))
			Expect(res.Elapsed).To(BeNumerically("<", res.Horizon))
			Expect(res.Samples).To(Equal(1))
		})

		It("stays halted: no motion and no samples until reset", func() {
			_, err := eng.Step(1, 0, 10)
			Expect(err).NotTo(HaveOccurred())
			moves, samples := len(body.distances), len(sampler.times)

			res, err := eng.Step(1, 0, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Collided).To(BeTrue())
			Expect(res.Elapsed).To(BeZero())
			Expect(body.distances).To(HaveLen(moves))
			Expect(sampler.times).To(HaveLen(samples))

			eng.Reset()
			body.pose = geom.Pose{}
			res, err = eng.Step(1, 0, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Collided).To(BeFalse())
			Expect(body.distances).To(HaveLen(moves + 1))
		})

		It("clears the latch on Initialize", func() {
			_, err := eng.Step(1, 0, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.Initialize(&wallAt{})).To(Succeed())
			Expect(eng.Halted()).To(BeFalse())
		})
	})

	It("never samples at a pose that collided", func() {
		// contact once X reaches 0.5, which is also the first deadline
		Expect(eng.Initialize(wall(0.8))).To(Succeed())
		res, err := eng.Step(1, 0, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Collided).To(BeTrue())
		Expect(res.Samples).To(BeZero())
		Expect(sampler.times).To(BeEmpty())
		Expect(body.pose.X).To(BeNumerically("~", 0.5, 1e-12))
	})
})

var _ = Describe("split-slice timing", func() {
	DescribeTable("lands on the horizon with one sample per elapsed sensor period",
		func(radius, hz float64, repeat, wantSamples int) {
			body := &lineBody{radius: radius, maxV: 1, hz: hz}
			sampler := &recordingSampler{}
			eng := New(body, sampler)
			Expect(eng.Initialize(&wallAt{})).To(Succeed())

			res, err := eng.Step(1, 0, repeat)
			Expect(err).NotTo(HaveOccurred())

			horizon := radius * float64(repeat)
			Expect(res.Elapsed).To(BeNumerically("~", horizon, 1e-9))
			Expect(body.travelled()).To(BeNumerically("~", horizon, 1e-9))
			Expect(res.Slices).To(Equal(repeat))
			Expect(res.Samples).To(Equal(wantSamples))

			for i, t := range sampler.times {
				Expect(t).To(BeNumerically("~", float64(i+1)/hz, 1e-9))
			}
			for _, d := range body.distances {
				Expect(d).To(BeNumerically(">", 0))
			}
		},
		Entry("sensor slower than slices", 0.3, 2.0, 4, 2),
		Entry("sensor faster than slices", 0.3, 10.0, 2, 6),
		Entry("sensor equal to slices", 0.25, 4.0, 8, 8),
		Entry("deadline on a rounded boundary", 0.1, 1.0/0.3, 10, 3),
		Entry("long horizon", 0.07, 3.0, 1000, 210),
		Entry("no deadline reached", 0.1, 1.0, 5, 0),
	)
})

var _ = Describe("clock", func() {
	It("yields segments that tile the horizon", func() {
		c := newClock(Intervals{CollisionCheck: 0.3, SensorSample: 0.5}, 4)
		var ends []float64
		total := 0.0
		for {
			seg, ok := c.next()
			if !ok {
				break
			}
			total += seg.dt
			ends = append(ends, seg.end)
		}
		Expect(c.done()).To(BeTrue())
		Expect(total).To(BeNumerically("~", 1.2, 1e-12))
		Expect(ends).To(HaveLen(6))
		Expect(ends[len(ends)-1]).To(Equal(c.horizon()))
	})
})
