// Package bmkg provides typed clients for the BMKG hazard data feeds.
package bmkg

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client fetches BMKG seismic, nowcast, and point-forecast data.
type Client struct {
	seismicURL  string
	nowcastURL  string
	forecastURL string
	userAgent   string
	httpClient  *http.Client
}

// NewClient creates a BMKG client. Every request carries the given timeout;
// retries are left to the caller's polling cadence.
func NewClient(seismicURL, nowcastURL, forecastURL, userAgent string, timeout time.Duration) *Client {
	return &Client{
		seismicURL:  seismicURL,
		nowcastURL:  nowcastURL,
		forecastURL: forecastURL,
		userAgent:   userAgent,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Quake is one normalized earthquake report.
type Quake struct {
	DateTime  string // report timestamp, the natural dedup key
	Region    string
	Magnitude float64
	Depth     string
	Potential string
	Lat       float64
	Lon       float64
}

// autogempa response shape: one nested object, no pagination.
type quakeResponse struct {
	Infogempa struct {
		Gempa struct {
			DateTime    string `json:"DateTime"`
			Coordinates string `json:"Coordinates"` // "lat,lon"
			Magnitude   string `json:"Magnitude"`
			Kedalaman   string `json:"Kedalaman"`
			Wilayah     string `json:"Wilayah"`
			Potensi     string `json:"Potensi"`
		} `json:"gempa"`
	} `json:"Infogempa"`
}

// FetchQuake retrieves the latest earthquake report.
func (c *Client) FetchQuake(ctx context.Context) (*Quake, error) {
	body, err := c.get(ctx, c.seismicURL)
	if err != nil {
		return nil, err
	}

	var resp quakeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode quake response: %w", err)
	}

	g := resp.Infogempa.Gempa
	if g.DateTime == "" {
		return nil, fmt.Errorf("quake response missing DateTime")
	}

	magnitude, err := strconv.ParseFloat(strings.TrimSpace(g.Magnitude), 64)
	if err != nil {
		return nil, fmt.Errorf("parse magnitude %q: %w", g.Magnitude, err)
	}

	lat, lon := parseCoordinates(g.Coordinates)

	return &Quake{
		DateTime:  g.DateTime,
		Region:    g.Wilayah,
		Magnitude: magnitude,
		Depth:     g.Kedalaman,
		Potential: g.Potensi,
		Lat:       lat,
		Lon:       lon,
	}, nil
}

// parseCoordinates splits the BMKG "lat,lon" string. Malformed input yields
// zero coordinates rather than a fetch error; the report is still usable.
func parseCoordinates(s string) (float64, float64) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0
	}
	return lat, lon
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, application/xml, text/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bmkg request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("bmkg API error: status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
