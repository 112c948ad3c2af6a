package sim

import (
	"fmt"

	"LiveCounters/internal/format"
	"LiveCounters/internal/generator"
	"LiveCounters/internal/model"
)

// BuildCards computes the static info cards from the seed constants.
func BuildCards() []model.InfoCard {
	women := generator.InitialFemalePopulation()
	birthsPerDay := generator.BirthsPerSecond * 24 * 3600
	return []model.InfoCard{
		{
			Title:        "Births per day",
			DisplayValue: format.Scaled(birthsPerDay),
			Note:         fmt.Sprintf("%.2f births every second", generator.BirthsPerSecond),
		},
		{
			Title:        "Global fertility rate",
			DisplayValue: fmt.Sprintf("%.2f", generator.GlobalFertilityRate),
			Note:         "children per woman",
		},
		{
			Title:        "Women worldwide",
			DisplayValue: format.Scaled(women),
			Note: fmt.Sprintf("%.2f%% of %s people",
				generator.FemaleShare*100, format.Scaled(generator.WorldPopulation)),
		},
		{
			Title: "Condom market",
			DisplayValue: fmt.Sprintf("%s - %s",
				format.Scaled(generator.CondomMarketLow), format.Scaled(generator.CondomMarketHigh)),
			Note: "estimated annual revenue, USD",
		},
	}
}
