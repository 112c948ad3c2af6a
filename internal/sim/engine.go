// Package sim owns the live counter state and the per-tick update.
package sim

import (
	"fmt"
	"sync"
	"time"

	"LiveCounters/internal/format"
	"LiveCounters/internal/generator"
	"LiveCounters/internal/model"
	"LiveCounters/internal/series"
)

// Formatter turns a generator's display value into text.
type Formatter func(float64) string

type counter struct {
	gen    generator.Generator
	fmt    Formatter
	window *series.Series
}

// Engine holds every generator and its chart window. Tick is the only
// mutator; all methods are safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	counters []*counter
	cards    []model.InfoCard
	tick     uint64
	last     *model.Snapshot
}

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	shock  generator.ShockFunc
	window int
	now    time.Time
}

// WithShock injects the price shock source.
func WithShock(shock generator.ShockFunc) Option {
	return func(c *engineConfig) { c.shock = shock }
}

// WithWindow overrides the chart window size.
func WithWindow(n int) Option {
	return func(c *engineConfig) { c.window = n }
}

// WithStart sets the time the initial windows are labeled against.
func WithStart(t time.Time) Option {
	return func(c *engineConfig) { c.now = t }
}

// NewEngine builds the default births, price and population counters.
func NewEngine(opts ...Option) *Engine {
	cfg := engineConfig{window: generator.WindowSize, now: time.Now()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return NewEngineWith(cfg.window, cfg.now, generator.Defaults(cfg.shock)...)
}

// NewEngineWith builds an engine over arbitrary generators, ticked in the
// order given.
func NewEngineWith(window int, now time.Time, gens ...generator.Generator) *Engine {
	e := &Engine{cards: BuildCards()}
	for _, g := range gens {
		e.counters = append(e.counters, &counter{
			gen:    g,
			fmt:    format.ForMetric(g.Metric()),
			window: series.New(window, g.Display(), now),
		})
	}
	e.last = e.snapshotLocked(now)
	return e
}

// Tick advances every generator once, pushes the new values into their
// windows and returns a copy of the result.
func (e *Engine) Tick(now time.Time) *model.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	values := make([]float64, len(e.counters))
	for i, c := range e.counters {
		values[i] = c.gen.Tick()
	}
	label := format.TimeLabel(now)
	for i, c := range e.counters {
		c.window.Push(label, values[i])
	}
	e.tick++
	e.last = e.snapshotLocked(now)
	return cloneSnapshot(e.last)
}

// Snapshot returns a copy of the most recent tick result.
func (e *Engine) Snapshot() *model.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneSnapshot(e.last)
}

// Cards returns the static info cards.
func (e *Engine) Cards() []model.InfoCard {
	out := make([]model.InfoCard, len(e.cards))
	copy(out, e.cards)
	return out
}

// Metrics lists the engine's counters in tick order.
func (e *Engine) Metrics() []model.Metric {
	out := make([]model.Metric, len(e.counters))
	for i, c := range e.counters {
		out[i] = c.gen.Metric()
	}
	return out
}

// Value returns the raw generator state for m.
func (e *Engine) Value(m model.Metric) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range e.counters {
		if c.gen.Metric() == m {
			return c.gen.Value(), nil
		}
	}
	return 0, fmt.Errorf("unknown metric %q", m)
}

func (e *Engine) snapshotLocked(now time.Time) *model.Snapshot {
	snap := &model.Snapshot{
		Tick:     e.tick,
		At:       now,
		Readings: make([]model.Reading, 0, len(e.counters)),
	}
	for _, c := range e.counters {
		v := c.gen.Display()
		snap.Readings = append(snap.Readings, model.Reading{
			Metric:  c.gen.Metric(),
			Value:   v,
			Display: c.fmt(v),
			Series:  c.window.Points(),
		})
	}
	return snap
}

func cloneSnapshot(s *model.Snapshot) *model.Snapshot {
	out := *s
	out.Readings = make([]model.Reading, len(s.Readings))
	for i, r := range s.Readings {
		r.Series = append([]model.Point(nil), r.Series...)
		out.Readings[i] = r
	}
	return &out
}
