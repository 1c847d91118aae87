package metrics

import (
	"github.com/san-kum/sim2d/internal/geom"
	"github.com/san-kum/sim2d/internal/world"
)

// MinClearance tracks the shortest lidar range seen. It learns from scans,
// so register it as a scan observer as well as a metric.
type MinClearance struct {
	name string
	min  float64
	seen bool
}

func NewMinClearance() *MinClearance {
	return &MinClearance{name: "min_clearance"}
}

func (c *MinClearance) Name() string { return c.name }

func (c *MinClearance) Observe(geom.Pose, float64) {}

func (c *MinClearance) OnScan(scan world.Scan) {
	r := scan.MinRange()
	if !c.seen || r < c.min {
		c.min = r
	}
	c.seen = true
}

// Value is 0 until the first scan arrives.
func (c *MinClearance) Value() float64 {
	if !c.seen {
		return 0
	}
	return c.min
}

func (c *MinClearance) Reset() { c.seen = false }

// SampleCount counts lidar scans.
type SampleCount struct {
	name  string
	count int
}

func NewSampleCount() *SampleCount {
	return &SampleCount{name: "samples"}
}

func (s *SampleCount) Name() string               { return s.name }
func (s *SampleCount) Observe(geom.Pose, float64) {}
func (s *SampleCount) OnScan(world.Scan)          { s.count++ }
func (s *SampleCount) Value() float64             { return float64(s.count) }
func (s *SampleCount) Reset()                     { s.count = 0 }
