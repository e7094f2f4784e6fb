// Package windy provides a client for the Windy point-forecast API.
package windy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"
)

// Client fetches gridded-model forecasts from the Windy point-forecast API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates a Windy client using the GFS model. Requests carry the
// given timeout and are never retried internally.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   "gfs",
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Reading is the normalized current conditions at a point. Missing model
// values stay nil.
type Reading struct {
	Timestamp   time.Time
	WindSpeed   *float64 // m/s, from u/v components
	WindDirDeg  *float64
	Gust        *float64 // m/s
	Temperature *float64
	Humidity    *float64 // percent
	Pressure    *float64 // hPa
	Precip3h    *float64 // trailing 3-hour accumulation, mm
	CloudAvg    *float64 // percent, mean of low/mid/high cover
}

type forecastRequest struct {
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	Model      string   `json:"model"`
	Parameters []string `json:"parameters"`
	Levels     []string `json:"levels"`
	Key        string   `json:"key"`
}

// The response carries parallel time-indexed arrays keyed by parameter name.
type forecastResponse struct {
	TS       []int64    `json:"ts"` // unix milliseconds
	WindU    []*float64 `json:"wind_u-surface"`
	WindV    []*float64 `json:"wind_v-surface"`
	Gust     []*float64 `json:"gust-surface"`
	Temp     []*float64 `json:"temp-surface"`
	RH       []*float64 `json:"rh-surface"`
	Pressure []*float64 `json:"pressure-surface"` // Pa
	Precip3h []*float64 `json:"past3hprecip-surface"`
	LClouds  []*float64 `json:"lclouds-surface"`
	MClouds  []*float64 `json:"mclouds-surface"`
	HClouds  []*float64 `json:"hclouds-surface"`
}

// Current fetches the forecast for a point and returns the first time slice,
// which the API defines as the current conditions.
func (c *Client) Current(ctx context.Context, lat, lon float64) (*Reading, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("windy API key not configured")
	}

	payload := forecastRequest{
		Lat:        lat,
		Lon:        lon,
		Model:      c.model,
		Parameters: []string{"wind", "windGust", "temp", "precip", "lclouds", "mclouds", "hclouds", "rh", "pressure"},
		Levels:     []string{"surface"},
		Key:        c.apiKey,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("windy request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("windy API error: status %d", resp.StatusCode)
	}

	var fc forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(fc.TS) == 0 {
		return nil, fmt.Errorf("windy response has no time slices")
	}

	return fc.currentSlice(), nil
}

func (fc *forecastResponse) currentSlice() *Reading {
	r := &Reading{
		Timestamp:   time.UnixMilli(fc.TS[0]).UTC(),
		Gust:        first(fc.Gust),
		Temperature: first(fc.Temp),
		Humidity:    first(fc.RH),
		Precip3h:    first(fc.Precip3h),
	}

	if u, v := first(fc.WindU), first(fc.WindV); u != nil && v != nil {
		speed := math.Sqrt(*u**u + *v**v)
		dir := math.Mod(math.Atan2(*u, *v)*180/math.Pi+360, 360)
		r.WindSpeed = &speed
		r.WindDirDeg = &dir
	}

	// The model reports pressure in Pa; the classifier thresholds are hPa.
	if p := first(fc.Pressure); p != nil {
		hpa := *p / 100
		r.Pressure = &hpa
	}

	var cloudSum float64
	var cloudCount int
	for _, clouds := range [][]*float64{fc.LClouds, fc.MClouds, fc.HClouds} {
		if v := first(clouds); v != nil {
			cloudSum += *v
			cloudCount++
		}
	}
	if cloudCount > 0 {
		avg := cloudSum / float64(cloudCount)
		r.CloudAvg = &avg
	}

	return r
}

func first(arr []*float64) *float64 {
	if len(arr) == 0 {
		return nil
	}
	return arr[0]
}
