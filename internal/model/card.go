package model

// InfoCard is a static fact shown next to the live counters.
type InfoCard struct {
	Title        string `json:"title"`
	DisplayValue string `json:"display_value"`
	Note         string `json:"note"`
}
