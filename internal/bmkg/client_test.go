package bmkg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(seismicURL, nowcastURL, forecastURL string) *Client {
	return NewClient(seismicURL, nowcastURL, forecastURL, "test-agent", 5*time.Second)
}

const quakeBody = `{
	"Infogempa": {
		"gempa": {
			"DateTime": "2026-08-30T05:23:07+00:00",
			"Coordinates": "5.21,95.12",
			"Magnitude": "5.4",
			"Kedalaman": "10 km",
			"Wilayah": "28 km BaratDaya KOTA-BANDA-ACEH",
			"Potensi": "Tidak berpotensi tsunami"
		}
	}
}`

func TestFetchQuake(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte(quakeBody))
	}))
	defer srv.Close()

	c := testClient(srv.URL, "", "")
	quake, err := c.FetchQuake(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2026-08-30T05:23:07+00:00", quake.DateTime)
	assert.Equal(t, 5.4, quake.Magnitude)
	assert.Equal(t, "10 km", quake.Depth)
	assert.Equal(t, "28 km BaratDaya KOTA-BANDA-ACEH", quake.Region)
	assert.InDelta(t, 5.21, quake.Lat, 1e-9)
	assert.InDelta(t, 95.12, quake.Lon, 1e-9)
}

func TestFetchQuakeMissingDateTime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Infogempa":{"gempa":{}}}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL, "", "")
	_, err := c.FetchQuake(context.Background())
	assert.ErrorContains(t, err, "DateTime")
}

func TestFetchQuakeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := testClient(srv.URL, "", "")
	_, err := c.FetchQuake(context.Background())
	assert.ErrorContains(t, err, "status 503")
}

func TestParseCoordinatesMalformed(t *testing.T) {
	lat, lon := parseCoordinates("garbage")
	assert.Zero(t, lat)
	assert.Zero(t, lon)

	lat, lon = parseCoordinates("5.21,not-a-number")
	assert.Zero(t, lat)
	assert.Zero(t, lon)

	lat, lon = parseCoordinates(" 5.21 , 95.12 ")
	assert.InDelta(t, 5.21, lat, 1e-9)
	assert.InDelta(t, 95.12, lon, 1e-9)
}

const nowcastBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>BMKG Nowcast</title>
    <item>
      <title> Peringatan Dini Hujan Lebat Wilayah Banda Aceh </title>
      <link>https://www.bmkg.go.id/nowcast/1</link>
      <description>Berpotensi hujan lebat disertai petir</description>
      <pubDate>Sun, 30 Aug 2026 10:00:00 +0700</pubDate>
    </item>
    <item>
      <title>Peringatan Dini Wilayah Pidie</title>
      <link>https://www.bmkg.go.id/nowcast/2</link>
      <description>Hujan sedang</description>
      <pubDate>Sun, 30 Aug 2026 09:00:00 +0700</pubDate>
    </item>
  </channel>
</rss>`

func TestFetchNowcast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(nowcastBody))
	}))
	defer srv.Close()

	c := testClient("", srv.URL, "")
	items, err := c.FetchNowcast(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Peringatan Dini Hujan Lebat Wilayah Banda Aceh", items[0].Title, "fields are trimmed")
	assert.Equal(t, "https://www.bmkg.go.id/nowcast/1", items[0].Link)
	assert.Equal(t, "Peringatan Dini Wilayah Pidie", items[1].Title)
}

func TestFetchNowcastMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`this is not xml`))
	}))
	defer srv.Close()

	c := testClient("", srv.URL, "")
	_, err := c.FetchNowcast(context.Background())
	assert.ErrorContains(t, err, "decode nowcast feed")
}

const forecastBody = `{
	"data": [
		{
			"cuaca": [
				[
					{"datetime": "2026-08-30T12:00:00Z", "t": 27.5, "hu": 85, "ws": 4.2, "weather": 61, "weather_desc": "Hujan Sedang", "tp": 2.4},
					{"datetime": "2026-08-30T15:00:00Z", "t": 26.0, "hu": 90, "ws": 3.8, "weather": 60, "weather_desc": "", "tp": 1.1}
				],
				[
					{"datetime": "2026-08-31T12:00:00Z", "t": 28.0, "hu": 80, "ws": 5.0, "weather": 3, "weather_desc": "Berawan", "tp": 0}
				]
			]
		}
	]
}`

func TestFetchPointForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "11.71.01.1001", r.URL.Query().Get("adm4"))
		w.Write([]byte(forecastBody))
	}))
	defer srv.Close()

	c := testClient("", "", srv.URL)
	entries, err := c.FetchPointForecast(context.Background(), "11.71.01.1001")
	require.NoError(t, err)
	require.Len(t, entries, 3, "nested day groups are flattened in feed order")

	assert.Equal(t, 27.5, entries[0].Temperature)
	assert.Equal(t, "Hujan Sedang", entries[0].WeatherDesc)
	assert.Equal(t, 2.4, entries[0].Precip)
	assert.Equal(t, 3, entries[2].WeatherCode)
}

func TestFetchPointForecastMissingCode(t *testing.T) {
	c := testClient("", "", "http://unused.test")
	_, err := c.FetchPointForecast(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingRegionCode)
}

func TestFetchPointForecastEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	c := testClient("", "", srv.URL)
	_, err := c.FetchPointForecast(context.Background(), "11.71.01.1001")
	assert.ErrorContains(t, err, "no data")
}

func TestWeatherText(t *testing.T) {
	assert.Equal(t, "Hujan Petir", WeatherText(95))
	assert.Equal(t, "Hujan Ringan", WeatherText(60))
	assert.Equal(t, "Berawan", WeatherText(9999), "unknown codes default")
}
