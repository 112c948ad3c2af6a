package model

import "time"

// WindowStats summarizes one metric's chart window.
type WindowStats struct {
	Metric Metric
	SMA    float64
	High   float64
	Low    float64
	Rate   float64 // average change per tick
	// Position is where the newest value sits in [Low, High] (0.0~1.0).
	Position float64
}

// Summary is the periodic run report.
type Summary struct {
	Snapshot *Snapshot
	Windows  []WindowStats
	PriceRSI float64
	// PriceQuantiles holds run-wide p5, p50 and p95 of the price.
	PriceQuantiles []float64
	TickP50        time.Duration
	TickP99        time.Duration
	TickMax        time.Duration
}
