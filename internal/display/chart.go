package display

import (
	"errors"
	"io"

	"github.com/wcharczuk/go-chart/v2"

	"LiveCounters/internal/calculator"
	"LiveCounters/internal/model"
)

const (
	chartWidth  = 640
	chartHeight = 240
)

// RenderChart draws a window as a PNG line chart. valueFmt labels the Y axis.
func RenderChart(w io.Writer, title string, points []model.Point, valueFmt func(float64) string) error {
	if len(points) < 2 {
		return errors.New("need at least two points to chart")
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(i)
		ys[i] = p.Value
	}

	high, low, err := calculator.WindowRange(points)
	if err != nil {
		return err
	}
	// go-chart rejects a zero-height range.
	pad := (high - low) * 0.1
	if pad == 0 {
		pad = 1
		if high != 0 {
			pad = high * 0.01
			if pad < 0 {
				pad = -pad
			}
		}
	}

	ch := chart.Chart{
		Title:      title,
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 30, Left: 16, Right: 12, Bottom: 10}},
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				f, ok := v.(float64)
				if !ok {
					return ""
				}
				i := int(f)
				if i < 0 || i >= len(points) {
					return ""
				}
				return points[i].Label
			},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: low - pad, Max: high + pad},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return valueFmt(f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    title,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
				},
			},
		},
	}
	return ch.Render(chart.PNG, w)
}
