package bmkg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// ErrMissingRegionCode is returned when a point forecast is requested for a
// location whose adm4 regional code has not been resolved. This is a
// precondition failure, not a fetch error.
var ErrMissingRegionCode = errors.New("regional code not resolved")

// ForecastEntry is one time-stamped entry from the point-forecast API.
type ForecastEntry struct {
	DateTime    string  `json:"datetime"`
	Temperature float64 `json:"t"`  // celsius
	Humidity    float64 `json:"hu"` // percent
	WindSpeed   float64 `json:"ws"` // m/s
	WeatherCode int     `json:"weather"`
	WeatherDesc string  `json:"weather_desc"`
	Precip      float64 `json:"tp"` // mm, point amount
}

type forecastResponse struct {
	Data []struct {
		Cuaca [][]ForecastEntry `json:"cuaca"`
	} `json:"data"`
}

// FetchPointForecast retrieves the forecast entries for an adm4 regional
// code, flattened in feed order.
func (c *Client) FetchPointForecast(ctx context.Context, regionCode string) ([]ForecastEntry, error) {
	if regionCode == "" {
		return nil, ErrMissingRegionCode
	}

	params := url.Values{"adm4": {regionCode}}
	body, err := c.get(ctx, c.forecastURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp forecastResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode forecast response: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("forecast response has no data for code %s", regionCode)
	}

	var entries []ForecastEntry
	for _, day := range resp.Data[0].Cuaca {
		entries = append(entries, day...)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("forecast response has no entries for code %s", regionCode)
	}
	return entries, nil
}

// weatherTexts maps BMKG weather codes to Indonesian description text.
var weatherTexts = map[int]string{
	0:  "Cerah",
	1:  "Cerah Berawan",
	2:  "Cerah Berawan",
	3:  "Berawan",
	4:  "Berawan Tebal",
	5:  "Udara Kabur",
	10: "Asap",
	45: "Kabut",
	60: "Hujan Ringan",
	61: "Hujan Sedang",
	63: "Hujan Lebat",
	80: "Hujan Lokal",
	95: "Hujan Petir",
	97: "Hujan Petir",
}

// WeatherText returns the description for a BMKG weather code, defaulting to
// "Berawan" for unknown codes.
func WeatherText(code int) string {
	if text, ok := weatherTexts[code]; ok {
		return text
	}
	return "Berawan"
}
