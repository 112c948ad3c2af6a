package calculator

import (
	"errors"

	"LiveCounters/internal/model"
)

// CalculateSMA computes the simple moving average of the last period values.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// WindowSMA averages the whole chart window.
func WindowSMA(points []model.Point) (float64, error) {
	return CalculateSMA(extractValues(points), len(points))
}

// CalculateRate returns the average per-sample change over the window.
func CalculateRate(points []model.Point) (float64, error) {
	if len(points) < 2 {
		return 0, errors.New("need at least two points for rate")
	}
	first, last := points[0].Value, points[len(points)-1].Value
	return (last - first) / float64(len(points)-1), nil
}

func extractValues(points []model.Point) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return values
}
