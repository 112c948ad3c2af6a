package generator

import (
	"math"
	"math/rand/v2"
	"time"

	"LiveCounters/internal/model"
)

// ShockFunc returns a multiplicative shock in [-volatility, +volatility].
type ShockFunc func(volatility float64) float64

// NewUniformShock draws shocks from a PCG source. A zero seed picks one
// from the clock.
func NewUniformShock(seed uint64) ShockFunc {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return func(volatility float64) float64 {
		return (r.Float64()*2 - 1) * volatility
	}
}

// Price is a bounded multiplicative random walk.
type Price struct {
	value      float64
	volatility float64
	floor      float64
	shock      ShockFunc
}

// NewPrice starts the walk at value. A nil shock uses a clock-seeded source.
func NewPrice(value, volatility, floor float64, shock ShockFunc) *Price {
	if shock == nil {
		shock = NewUniformShock(0)
	}
	return &Price{value: value, volatility: volatility, floor: floor, shock: shock}
}

func (p *Price) Metric() model.Metric { return model.MetricPrice }
func (p *Price) Value() float64       { return p.value }
func (p *Price) Display() float64     { return p.value }

// Volatility returns the shock bound.
func (p *Price) Volatility() float64 { return p.volatility }

func (p *Price) Tick() float64 {
	p.value = math.Max(p.floor, p.value*(1+p.shock(p.volatility)))
	return p.value
}
