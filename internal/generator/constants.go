package generator

// Real-world figures the simulation is seeded with.
const (
	BirthsPerSecond     = 4.189189
	GlobalFertilityRate = 2.25
	WorldPopulation     = 8.2e9
	FemaleShare         = 0.4972
	CondomMarketLow     = 11.2e9
	CondomMarketHigh    = 13.5e9

	StartingPrice    = 0.80
	PriceVolatility  = 0.005
	PriceFloor       = 0.05
	AnnualGrowthRate = 0.008
	SecondsPerYear   = 365 * 24 * 3600

	WindowSize = 60
)
