// Package api exposes the read-only HTTP query surface: latest hazard data,
// precipitation standings, and the siren trigger state.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ilhammtg/mhew-backend/internal/engine"
	"github.com/ilhammtg/mhew-backend/internal/storage"
	"github.com/ilhammtg/mhew-backend/pkg/logger"
)

// Server wraps the chi router over the engine service.
type Server struct {
	service *engine.Service
	router  chi.Router
}

// NewServer builds the router with all query routes mounted.
func NewServer(service *engine.Service) *Server {
	s := &Server{service: service}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/quake/latest", s.handleQuakeLatest)
		r.Get("/quake/history", s.handleQuakeHistory)
		r.Get("/precipitation", s.handlePrecipitation)
		r.Get("/forecast", s.handleForecast)
		r.Get("/siren", s.handleSiren)
	})

	s.router = r
	return s
}

// Router returns the underlying HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleQuakeLatest returns the newest ingested earthquake report.
func (s *Server) handleQuakeLatest(w http.ResponseWriter, r *http.Request) {
	ev, err := s.service.LatestSeismicEvent()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to read seismic data")
		return
	}
	if ev == nil {
		s.writeError(w, http.StatusNotFound, "no seismic events recorded")
		return
	}
	s.writeJSON(w, http.StatusOK, ev)
}

// handleQuakeHistory returns recent events, newest first. The limit query
// parameter is clamped by the service.
func (s *Server) handleQuakeHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	events, err := s.service.RecentSeismicHistory(limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to read seismic history")
		return
	}
	if events == nil {
		events = []storage.SeismicEvent{}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(events),
		"events": events,
	})
}

// handlePrecipitation returns the corrected 24-hour totals per location.
func (s *Server) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.service.PrecipitationStatus()
	if err != nil {
		logger.Error().Err(err).Msg("Precipitation query failed")
		s.writeError(w, http.StatusInternalServerError, "failed to aggregate precipitation")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(statuses),
		"locations": statuses,
	})
}

// handleForecast returns the latest reading per location, optionally filtered
// by location_id.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	var locationID int64
	if raw := r.URL.Query().Get("location_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid location_id")
			return
		}
		locationID = id
	}

	forecasts, err := s.service.PointForecast(locationID)
	if err != nil {
		logger.Error().Err(err).Msg("Forecast query failed")
		s.writeError(w, http.StatusInternalServerError, "failed to read forecasts")
		return
	}
	if locationID > 0 && len(forecasts) == 0 {
		s.writeError(w, http.StatusNotFound, "location not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(forecasts),
		"forecasts": forecasts,
	})
}

// handleSiren reports whether the newest seismic event warrants the physical
// siren.
func (s *Server) handleSiren(w http.ResponseWriter, r *http.Request) {
	trigger, err := s.service.SirenTriggerState()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to read siren state")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"trigger": trigger})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
