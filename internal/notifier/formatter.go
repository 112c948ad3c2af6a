package notifier

import (
	"fmt"
	"strings"

	"LiveCounters/internal/format"
	"LiveCounters/internal/model"
)

var metricLabels = map[model.Metric]string{
	model.MetricBirths:     "👶 Births",
	model.MetricPrice:      "💲 Price",
	model.MetricPopulation: "👩 Women",
}

func label(m model.Metric) string {
	if l, ok := metricLabels[m]; ok {
		return l
	}
	return string(m)
}

// FormatReading renders one counter as a single line.
func FormatReading(r model.Reading) string {
	if r.Metric == model.MetricPrice {
		return fmt.Sprintf("%s: %s", label(r.Metric), r.Display)
	}
	return fmt.Sprintf("%s: %s (%s)", label(r.Metric), format.Count(r.Value), r.Display)
}

// FormatStatus formats the current counters for a chat message.
func FormatStatus(snap *model.Snapshot) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Live Counters</b> | %s\n\n", format.TimeLabel(snap.At)))
	for _, r := range snap.Readings {
		b.WriteString(FormatReading(r))
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("\nTick #%s", format.Count(float64(snap.Tick))))
	return b.String()
}

// FormatCards lists the static info cards.
func FormatCards(cards []model.InfoCard) string {
	var b strings.Builder
	b.WriteString("📌 <b>Facts</b>\n\n")
	for _, c := range cards {
		b.WriteString(fmt.Sprintf("%s: <b>%s</b> (%s)\n", c.Title, c.DisplayValue, c.Note))
	}
	return b.String()
}

// FormatSummary formats the periodic run report.
func FormatSummary(s *model.Summary) string {
	var b strings.Builder
	b.WriteString(FormatStatus(s.Snapshot))
	b.WriteString("\n\n📈 <b>Last window</b>\n")
	for _, w := range s.Windows {
		f := format.ForMetric(w.Metric)
		b.WriteString(fmt.Sprintf("  %s: avg %s, range %s ~ %s (at %.0f%%), %+.4f/tick\n",
			label(w.Metric), f(w.SMA), f(w.Low), f(w.High), w.Position*100, w.Rate))
	}
	b.WriteString(fmt.Sprintf("  Price RSI: %.0f\n", s.PriceRSI))
	if len(s.PriceQuantiles) == 3 {
		b.WriteString(fmt.Sprintf("  Price p5/p50/p95: %s / %s / %s\n",
			format.Currency(s.PriceQuantiles[0]), format.Currency(s.PriceQuantiles[1]), format.Currency(s.PriceQuantiles[2])))
	}
	b.WriteString(fmt.Sprintf("\n⏱ Tick body p50 %v | p99 %v | max %v", s.TickP50, s.TickP99, s.TickMax))
	return b.String()
}
