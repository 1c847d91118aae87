package engine

// phaseTolerance, as a fraction of the collision interval, below which a
// sensor deadline is considered to coincide with a slice boundary.
const phaseTolerance = 1e-9

// segment is one motion sub-interval of a slice.
type segment struct {
	dt     float64 // duration to integrate
	end    float64 // time since the start of the call at the segment end
	sample bool    // a sensor deadline falls on end
}

// clock walks the horizon of one Step call slice by slice, cutting slices
// at sensor deadlines. Slice ends and deadlines are computed from integer
// counters so no error accumulates across a long horizon.
type clock struct {
	check, sensor float64
	slices        int // slices in the horizon
	slice         int // completed slices
	samples       int // deadlines consumed
	elapsed       float64
}

func newClock(iv Intervals, repeat int) *clock {
	return &clock{
		check:  iv.CollisionCheck,
		sensor: iv.SensorSample,
		slices: repeat,
	}
}

func (c *clock) horizon() float64 { return float64(c.slices) * c.check }

func (c *clock) done() bool { return c.slice >= c.slices }

func (c *clock) sliceEnd() float64 { return float64(c.slice+1) * c.check }

func (c *clock) deadline() float64 { return float64(c.samples+1) * c.sensor }

// next returns the following segment and advances the clock past it.
func (c *clock) next() (segment, bool) {
	if c.done() {
		return segment{}, false
	}
	end := c.sliceEnd()
	dl := c.deadline()
	tol := c.check * phaseTolerance

	switch {
	case dl > end+tol:
		// no deadline in this slice
		seg := segment{dt: end - c.elapsed, end: end}
		c.elapsed = end
		c.slice++
		return seg, true
	case dl >= end-tol:
		// deadline on the slice boundary
		seg := segment{dt: end - c.elapsed, end: end, sample: true}
		c.elapsed = end
		c.slice++
		c.samples++
		return seg, true
	default:
		// deadline inside the slice; the remainder follows as its own segment
		seg := segment{dt: dl - c.elapsed, end: dl, sample: true}
		c.elapsed = dl
		c.samples++
		return seg, true
	}
}
