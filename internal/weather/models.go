package weather

import (
	"encoding/json"
)

// Report is the reshaped current-weather view returned to clients.
type Report struct {
	City     string `json:"city"`
	Temp     string `json:"temp"`
	Desc     string `json:"desc"`
	Humidity string `json:"humidity"`
}

// Reading is a single provider's normalized answer. Numbers keep the text
// the provider sent so that 12.5 is rendered as "12.5" and 12 as "12".
type Reading struct {
	ProviderName string
	City         string
	TemperatureC json.Number
	HumidityPct  json.Number
	Description  string
}

// Report formats the reading: temperature gets a "°C" suffix and humidity a "%".
func (r Reading) Report() Report {
	return Report{
		City:     r.City,
		Temp:     r.TemperatureC.String() + "°C",
		Desc:     r.Description,
		Humidity: r.HumidityPct.String() + "%",
	}
}
