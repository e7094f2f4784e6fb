package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilhammtg/mhew-backend/internal/engine"
	"github.com/ilhammtg/mhew-backend/internal/geo"
	"github.com/ilhammtg/mhew-backend/internal/hazard"
	"github.com/ilhammtg/mhew-backend/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.Store) {
	t.Helper()

	db, err := storage.NewDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := storage.NewStore(db)

	resolver := geo.NewResolver(geo.NewDataset(filepath.Join(t.TempDir(), "missing.csv")), nil)
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
	service := engine.NewService(store, resolver, hazard.Aggregator{RollingDivisor: 3}, clock, storage.ModeBoth)

	return NewServer(service), store
}

func doGet(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func seedQuake(t *testing.T, store *storage.Store, reportedAt, level string) {
	t.Helper()
	_, err := store.UpsertSeismicEvent(&storage.SeismicEvent{
		ReportedAt: reportedAt,
		Region:     "Barat Daya Banda Aceh",
		Magnitude:  5.4,
		Depth:      "10 km",
		Potential:  "Tidak berpotensi tsunami",
		AlertLevel: level,
		ReceivedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doGet(t, srv, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestQuakeLatest(t *testing.T) {
	srv, store := newTestServer(t)

	rec := doGet(t, srv, "/api/v1/quake/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	seedQuake(t, store, "2026-08-30T11:00:00", "SAFE")
	seedQuake(t, store, "2026-08-30T12:00:00", "DANGER")

	rec = doGet(t, srv, "/api/v1/quake/latest")
	require.Equal(t, http.StatusOK, rec.Code)

	var ev storage.SeismicEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ev))
	assert.Equal(t, "2026-08-30T12:00:00", ev.ReportedAt)
	assert.Equal(t, "DANGER", ev.AlertLevel)
}

func TestQuakeHistory(t *testing.T) {
	srv, store := newTestServer(t)

	rec := doGet(t, srv, "/api/v1/quake/history")
	require.Equal(t, http.StatusOK, rec.Code)

	var empty struct {
		Count  int                    `json:"count"`
		Events []storage.SeismicEvent `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &empty))
	assert.Zero(t, empty.Count)
	assert.NotNil(t, empty.Events, "empty history is an array, not null")

	for i := 0; i < 12; i++ {
		seedQuake(t, store, time.Date(2026, 8, 1+i, 0, 0, 0, 0, time.UTC).Format(time.RFC3339), "SAFE")
	}

	rec = doGet(t, srv, "/api/v1/quake/history?limit=3")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count  int                    `json:"count"`
		Events []storage.SeismicEvent `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Count)
	require.Len(t, resp.Events, 3)
	assert.Greater(t, resp.Events[0].ReportedAt, resp.Events[1].ReportedAt, "newest first")
}

func TestSirenEndpoint(t *testing.T) {
	srv, store := newTestServer(t)

	rec := doGet(t, srv, "/api/v1/siren")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp["trigger"])

	seedQuake(t, store, "2026-08-30T12:00:00", "DANGER")

	rec = doGet(t, srv, "/api/v1/siren")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp["trigger"])
}

func TestPrecipitationEndpoint(t *testing.T) {
	srv, store := newTestServer(t)

	require.NoError(t, store.UpsertSubscriber("123", "private", ""))
	locID, err := store.SaveLocation(&storage.Location{
		SubscriberID: "123", Name: "Banda Aceh", NameNorm: "banda aceh",
		Lat: 5.55, Lon: 95.32,
	})
	require.NoError(t, err)

	precip := 450.0
	_, err = store.InsertWeatherReading(&storage.WeatherReading{
		SubscriberID: "123", LocationID: locID, Source: storage.SourceWindy,
		SampledAt: time.Date(2026, 8, 30, 11, 0, 0, 0, time.UTC), Precip: &precip,
	})
	require.NoError(t, err)

	rec := doGet(t, srv, "/api/v1/precipitation")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count     int                   `json:"count"`
		Locations []engine.PrecipStatus `json:"locations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.InDelta(t, 150.0, resp.Locations[0].Total24h, 1e-9)
	assert.Equal(t, "WARNING", resp.Locations[0].Level)
}

func TestForecastEndpoint(t *testing.T) {
	srv, store := newTestServer(t)

	require.NoError(t, store.UpsertSubscriber("123", "private", ""))
	locID, err := store.SaveLocation(&storage.Location{
		SubscriberID: "123", Name: "Banda Aceh", NameNorm: "banda aceh",
		Lat: 5.55, Lon: 95.32,
	})
	require.NoError(t, err)

	_, err = store.InsertWeatherReading(&storage.WeatherReading{
		SubscriberID: "123", LocationID: locID, Source: storage.SourceBMKG,
		SampledAt: time.Date(2026, 8, 30, 11, 0, 0, 0, time.UTC), WeatherText: "Hujan Ringan", Score: 50,
	})
	require.NoError(t, err)

	rec := doGet(t, srv, "/api/v1/forecast")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count     int                       `json:"count"`
		Forecasts []engine.LocationForecast `json:"forecasts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	require.NotNil(t, resp.Forecasts[0].Latest)
	assert.Equal(t, "Hujan Ringan", resp.Forecasts[0].Latest.WeatherText)

	rec = doGet(t, srv, "/api/v1/forecast?location_id=9999")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doGet(t, srv, "/api/v1/forecast?location_id=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doGet(t, srv, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
