// Package display renders tick snapshots to the outside world.
package display

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"LiveCounters/internal/model"
)

var (
	// ErrNoSinks is returned when a hub is built without any sink.
	ErrNoSinks = errors.New("no display sinks configured")
	// ErrMissingHandle is returned when a metric has no counter or chart handle.
	ErrMissingHandle = errors.New("missing display handle")
)

// Sink receives a copy of every tick's result.
type Sink interface {
	Name() string
	Update(ctx context.Context, snap *model.Snapshot) error
}

// Redrawer is implemented by sinks that can repaint their last snapshot.
type Redrawer interface {
	Redraw() error
}

// Handles names the elements a metric is rendered into.
type Handles struct {
	Title     string
	CounterID string
	ChartID   string
}

// Layout binds each metric to its display handles.
type Layout map[model.Metric]Handles

// DefaultLayout returns the handles for the three built-in counters.
func DefaultLayout() Layout {
	return Layout{
		model.MetricBirths:     {Title: "Births", CounterID: "birthsCounter", ChartID: "birthsChart"},
		model.MetricPrice:      {Title: "Price", CounterID: "priceCounter", ChartID: "priceChart"},
		model.MetricPopulation: {Title: "Women", CounterID: "populationCounter", ChartID: "populationChart"},
	}
}

// Validate checks that every metric has both handles.
func (l Layout) Validate(metrics []model.Metric) error {
	var missing []string
	for _, m := range metrics {
		h, ok := l[m]
		switch {
		case !ok:
			missing = append(missing, fmt.Sprintf("%s (counter, chart)", m))
		case h.CounterID == "" && h.ChartID == "":
			missing = append(missing, fmt.Sprintf("%s (counter, chart)", m))
		case h.CounterID == "":
			missing = append(missing, fmt.Sprintf("%s (counter)", m))
		case h.ChartID == "":
			missing = append(missing, fmt.Sprintf("%s (chart)", m))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingHandle, strings.Join(missing, ", "))
	}
	return nil
}

// Title returns the human label for m.
func (l Layout) Title(m model.Metric) string {
	if h, ok := l[m]; ok && h.Title != "" {
		return h.Title
	}
	return string(m)
}

// Hub fans snapshots out to every sink.
type Hub struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewHub requires at least one sink.
func NewHub(logger *slog.Logger, sinks ...Sink) (*Hub, error) {
	if len(sinks) == 0 {
		return nil, ErrNoSinks
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{sinks: sinks, logger: logger}, nil
}

// Sinks returns the registered sinks.
func (h *Hub) Sinks() []Sink { return h.sinks }

// Update hands snap to every sink. A failing sink does not stop the others.
func (h *Hub) Update(ctx context.Context, snap *model.Snapshot) error {
	var errs []error
	for _, s := range h.sinks {
		if err := s.Update(ctx, snap); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Redraw asks every sink that supports it to repaint.
func (h *Hub) Redraw() {
	for _, s := range h.sinks {
		r, ok := s.(Redrawer)
		if !ok {
			continue
		}
		if err := r.Redraw(); err != nil {
			h.logger.Warn("redraw failed", "sink", s.Name(), "err", err)
		}
	}
}
