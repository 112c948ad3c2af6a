// Package generator holds the per-second update rules of the live counters.
package generator

import (
	"math"

	"LiveCounters/internal/model"
)

// Generator advances one counter. Implementations are not safe for
// concurrent use; the engine serializes ticks.
type Generator interface {
	Metric() model.Metric
	// Value returns the raw state.
	Value() float64
	// Display returns the value shown to users.
	Display() float64
	// Tick advances the state once and returns the new display value.
	Tick() float64
}

// Births accumulates a constant number of births per tick.
type Births struct {
	total float64
	rate  float64
}

// NewBirths starts the accumulator at total.
func NewBirths(total, ratePerSecond float64) *Births {
	return &Births{total: total, rate: ratePerSecond}
}

func (b *Births) Metric() model.Metric { return model.MetricBirths }
func (b *Births) Value() float64       { return b.total }
func (b *Births) Display() float64     { return math.Floor(b.total) }

func (b *Births) Tick() float64 {
	b.total += b.rate
	return b.Display()
}

// Population grows by a fixed increment derived once from the starting total.
// The increment is not recompounded as the total grows.
type Population struct {
	total  float64
	growth float64
}

// NewPopulation derives the per-second growth from total and annualRate.
func NewPopulation(total, annualRate float64) *Population {
	return &Population{
		total:  total,
		growth: total * annualRate / SecondsPerYear,
	}
}

// InitialFemalePopulation is the starting total for the population counter.
func InitialFemalePopulation() float64 {
	return math.Round(WorldPopulation * FemaleShare)
}

func (p *Population) Metric() model.Metric { return model.MetricPopulation }
func (p *Population) Value() float64       { return p.total }
func (p *Population) Display() float64     { return math.Floor(p.total) }

// GrowthPerSecond returns the fixed per-tick increment.
func (p *Population) GrowthPerSecond() float64 { return p.growth }

func (p *Population) Tick() float64 {
	p.total += p.growth
	return p.Display()
}

// Defaults builds the three counters in tick order.
func Defaults(shock ShockFunc) []Generator {
	return []Generator{
		NewBirths(0, BirthsPerSecond),
		NewPrice(StartingPrice, PriceVolatility, PriceFloor, shock),
		NewPopulation(InitialFemalePopulation(), AnnualGrowthRate),
	}
}
