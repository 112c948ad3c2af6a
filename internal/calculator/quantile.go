package calculator

import (
	"fmt"
	"sync"

	"github.com/DataDog/sketches-go/ddsketch"
)

// Distribution tracks run-wide quantiles of a metric with bounded memory.
type Distribution struct {
	mu     sync.Mutex
	sketch *ddsketch.DDSketch
}

// NewDistribution creates a sketch with the given relative accuracy.
func NewDistribution(relativeAccuracy float64) (*Distribution, error) {
	sk, err := ddsketch.NewDefaultDDSketch(relativeAccuracy)
	if err != nil {
		return nil, fmt.Errorf("create sketch: %w", err)
	}
	return &Distribution{sketch: sk}, nil
}

// Add records one sample. Non-positive values are ignored.
func (d *Distribution) Add(v float64) error {
	if v <= 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sketch.Add(v)
}

// Count returns the number of recorded samples.
func (d *Distribution) Count() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sketch.GetCount()
}

// Quantiles returns the values at each q in qs.
func (d *Distribution) Quantiles(qs ...float64) ([]float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sketch.IsEmpty() {
		return nil, fmt.Errorf("no samples recorded")
	}
	return d.sketch.GetValuesAtQuantiles(qs)
}
