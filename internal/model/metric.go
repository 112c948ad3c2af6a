package model

import "time"

// Metric identifies one of the simulated counters.
type Metric string

const (
	MetricBirths     Metric = "births"
	MetricPrice      Metric = "price"
	MetricPopulation Metric = "population"
)

// Metrics lists every counter in tick order.
var Metrics = []Metric{MetricBirths, MetricPrice, MetricPopulation}

// Point is a single labeled sample in a chart window.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Reading is one metric's state as handed to the display surface.
type Reading struct {
	Metric  Metric  `json:"metric"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
	Series  []Point `json:"series"`
}

// Snapshot holds the copies produced by a single tick.
type Snapshot struct {
	Tick     uint64    `json:"tick"`
	At       time.Time `json:"at"`
	Readings []Reading `json:"readings"`
}

// Reading returns the reading for m, if present.
func (s *Snapshot) Reading(m Metric) (Reading, bool) {
	for _, r := range s.Readings {
		if r.Metric == m {
			return r, true
		}
	}
	return Reading{}, false
}
