// Package format turns raw counter values into display strings.
package format

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"LiveCounters/internal/model"
)

// LabelLayout is the clock format used for series point labels.
const LabelLayout = "15:04:05"

// Scaled renders n with a K/M/B suffix.
// Billions and millions keep two decimals, thousands none.
func Scaled(n float64) string {
	switch {
	case n >= 1e9:
		return fmt.Sprintf("%.2f B", n/1e9)
	case n >= 1e6:
		return fmt.Sprintf("%.2f M", n/1e6)
	case n >= 1e3:
		return fmt.Sprintf("%.0f K", n/1e3)
	default:
		return strconv.FormatFloat(math.Round(n), 'f', 0, 64)
	}
}

// Currency renders n as dollars with exactly two decimals.
func Currency(n float64) string {
	return "$" + decimal.NewFromFloat(n).StringFixed(2)
}

// Count renders the floor of n with thousands separators.
func Count(n float64) string {
	return humanize.Comma(int64(math.Floor(n)))
}

// TimeLabel formats t as a series point label.
func TimeLabel(t time.Time) string {
	return t.Format(LabelLayout)
}

// ForMetric returns the display formatter for m: dollars for the price,
// scaled counts for everything else.
func ForMetric(m model.Metric) func(float64) string {
	if m == model.MetricPrice {
		return Currency
	}
	return Scaled
}
