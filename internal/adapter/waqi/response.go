package waqi

import (
	"encoding/json"

	"github.com/couchcryptid/urban-policy-engine/internal/domain"
)

// WAQI feed response types.

// envelope wraps every feed response. Data is an object when Status is "ok"
// and an error string otherwise.
type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type feedData struct {
	City struct {
		Name string `json:"name"`
	} `json:"city"`
	IAQI map[string]iaqiValue `json:"iaqi"`
}

type iaqiValue struct {
	V *float64 `json:"v"`
}

func (f feedData) value(key string) *float64 {
	if v, ok := f.IAQI[key]; ok {
		return v.V
	}
	return nil
}

// airQuality normalizes a feed. Values outside the trusted ranges are dropped.
func (f feedData) airQuality() domain.AirQuality {
	aq := domain.AirQuality{Station: f.City.Name}
	if v := f.value("no2"); v != nil && domain.ValidPollutant(*v) {
		aq.NO2 = v
	}
	if v := f.value("co"); v != nil && domain.ValidPollutant(*v) {
		aq.CO = v
	}
	if v := f.value("pm25"); v != nil && domain.ValidPM25(*v) {
		aq.PM25 = v
	}
	if v := f.value("pm10"); v != nil && domain.ValidPM10(*v) {
		aq.PM10 = v
	}
	if idx, ok := domain.TrafficIndexFromPollutants(aq.NO2, aq.CO); ok {
		aq.TrafficIndex = &idx
	}
	return aq
}
