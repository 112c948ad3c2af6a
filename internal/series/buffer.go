// Package series holds the fixed-size chart windows behind each counter.
package series

import (
	"time"

	"LiveCounters/internal/format"
	"LiveCounters/internal/model"
)

// DefaultCapacity is the number of samples kept per chart.
const DefaultCapacity = 60

// Series is a FIFO window of labeled samples, oldest first.
// It is not safe for concurrent use; the owner serializes access.
type Series struct {
	capacity int
	points   []model.Point
}

// New returns a full window of capacity points holding initial, labeled one
// second apart and ending at now.
func New(capacity int, initial float64, now time.Time) *Series {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	s := &Series{
		capacity: capacity,
		points:   make([]model.Point, capacity),
	}
	for i := range s.points {
		at := now.Add(-time.Duration(capacity-1-i) * time.Second)
		s.points[i] = model.Point{Label: format.TimeLabel(at), Value: initial}
	}
	return s
}

// Push appends a sample, evicting the oldest one when the window is full.
func (s *Series) Push(label string, value float64) {
	p := model.Point{Label: label, Value: value}
	if len(s.points) < s.capacity {
		s.points = append(s.points, p)
		return
	}
	copy(s.points, s.points[1:])
	s.points[len(s.points)-1] = p
}

// Len returns the number of samples held.
func (s *Series) Len() int { return len(s.points) }

// Cap returns the window size.
func (s *Series) Cap() int { return s.capacity }

// Last returns the newest sample.
func (s *Series) Last() (model.Point, bool) {
	if len(s.points) == 0 {
		return model.Point{}, false
	}
	return s.points[len(s.points)-1], true
}

// Points returns a copy of the window in chronological order.
func (s *Series) Points() []model.Point {
	out := make([]model.Point, len(s.points))
	copy(out, s.points)
	return out
}

// Values returns the sample values in chronological order.
func (s *Series) Values() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Value
	}
	return out
}
