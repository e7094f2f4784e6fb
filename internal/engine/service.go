package engine

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/ilhammtg/mhew-backend/internal/geo"
	"github.com/ilhammtg/mhew-backend/internal/hazard"
	"github.com/ilhammtg/mhew-backend/internal/storage"
	"github.com/ilhammtg/mhew-backend/pkg/logger"
)

// Service exposes the engine operations consumed by the Telegram front end
// and the HTTP query API.
type Service struct {
	store    *storage.Store
	resolver *geo.Resolver
	agg      hazard.Aggregator
	clock    clockwork.Clock

	defaultMode string
}

// NewService wires the service operations.
func NewService(store *storage.Store, resolver *geo.Resolver, agg hazard.Aggregator, clock clockwork.Clock, defaultMode string) *Service {
	return &Service{
		store:       store,
		resolver:    resolver,
		agg:         agg,
		clock:       clock,
		defaultMode: defaultMode,
	}
}

// EnsureSubscriber records a subscriber on first interaction and seeds the
// default weather mode when no preference exists yet.
func (s *Service) EnsureSubscriber(id, kind, title string) error {
	if err := s.store.UpsertSubscriber(id, kind, title); err != nil {
		return fmt.Errorf("upsert subscriber: %w", err)
	}

	hasMode, err := s.store.HasSetting(id, storage.SettingWeatherMode)
	if err != nil {
		return fmt.Errorf("check weather mode: %w", err)
	}
	if !hasMode {
		if err := s.store.SetSetting(id, storage.SettingWeatherMode, s.defaultMode); err != nil {
			return fmt.Errorf("seed weather mode: %w", err)
		}
	}
	return nil
}

// WeatherMode returns the subscriber's weather mode preference.
func (s *Service) WeatherMode(subscriberID string) (string, error) {
	return s.store.GetSetting(subscriberID, storage.SettingWeatherMode, s.defaultMode)
}

// SetWeatherMode updates the subscriber's weather mode preference.
func (s *Service) SetWeatherMode(subscriberID, mode string) error {
	switch mode {
	case storage.ModeBMKG, storage.ModeWindy, storage.ModeBoth:
	default:
		return fmt.Errorf("invalid weather mode %q", mode)
	}
	return s.store.SetSetting(subscriberID, storage.SettingWeatherMode, mode)
}

// RegisterLocation resolves a human-entered place name and stores it for the
// subscriber. Returns geo.ErrNotFound when no coordinates could be resolved.
func (s *Service) RegisterLocation(ctx context.Context, subscriberID, createdBy, name string) (*storage.Location, error) {
	resolved, err := s.resolver.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	loc := &storage.Location{
		SubscriberID: subscriberID,
		Name:         resolved.DisplayName,
		NameNorm:     geo.NormalizeName(resolved.DisplayName),
		Lat:          resolved.Lat,
		Lon:          resolved.Lon,
		CreatedBy:    createdBy,
	}
	if resolved.RegionCode != "" {
		loc.RegionCode = &resolved.RegionCode
	}

	id, err := s.store.SaveLocation(loc)
	if err != nil {
		return nil, fmt.Errorf("save location: %w", err)
	}
	loc.ID = id

	logger.Info().
		Str("subscriber", subscriberID).
		Str("location", loc.Name).
		Bool("region_code", loc.RegionCode != nil).
		Msg("Location registered")
	return loc, nil
}

// RemoveLocation deletes a location owned by the subscriber.
func (s *Service) RemoveLocation(subscriberID string, locationID int64) error {
	return s.store.DeleteLocation(subscriberID, locationID)
}

// Locations lists the subscriber's monitored locations.
func (s *Service) Locations(subscriberID string) ([]storage.Location, error) {
	return s.store.ListLocations(subscriberID)
}

// LatestSeismicEvent returns the newest seismic event, or nil.
func (s *Service) LatestSeismicEvent() (*storage.SeismicEvent, error) {
	return s.store.LatestSeismicEvent()
}

// RecentSeismicHistory returns up to limit events, newest first.
func (s *Service) RecentSeismicHistory(limit int) ([]storage.SeismicEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.store.RecentSeismicEvents(limit)
}

// SirenTriggerState reports whether the latest seismic event carries a
// DANGER level.
func (s *Service) SirenTriggerState() (bool, error) {
	latest, err := s.store.LatestSeismicEvent()
	if err != nil {
		return false, err
	}
	if latest == nil {
		return false, nil
	}
	return hazard.ParseLevel(latest.AlertLevel) == hazard.Danger, nil
}

// PrecipStatus is the corrected 24-hour precipitation standing for one
// location.
type PrecipStatus struct {
	LocationID  int64   `json:"location_id"`
	Name        string  `json:"name"`
	Total24h    float64 `json:"total_precip_24h"`
	Level       string  `json:"status"`
	Description string  `json:"description"`
}

// PrecipitationStatus computes the corrected 24-hour total and level for
// every monitored location.
func (s *Service) PrecipitationStatus() ([]PrecipStatus, error) {
	locs, err := s.store.ListAllLocations()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	statuses := make([]PrecipStatus, 0, len(locs))
	for _, loc := range locs {
		total, err := precip24h(s.store, s.agg, loc.ID, now)
		if err != nil {
			return nil, fmt.Errorf("aggregate precipitation for %s: %w", loc.Name, err)
		}
		level := hazard.ClassifyPrecipitation(total)
		statuses = append(statuses, PrecipStatus{
			LocationID:  loc.ID,
			Name:        loc.Name,
			Total24h:    total,
			Level:       level.String(),
			Description: fmt.Sprintf("Curah hujan 24 jam terakhir %.2f mm", total),
		})
	}
	return statuses, nil
}

// LocationForecast pairs a location with its newest reading, which may be nil
// when the location has never been polled.
type LocationForecast struct {
	Location storage.Location        `json:"location"`
	Latest   *storage.WeatherReading `json:"latest"`
}

// PointForecast returns the latest reading per location. When locationID is
// positive only that location is returned.
func (s *Service) PointForecast(locationID int64) ([]LocationForecast, error) {
	locs, err := s.store.ListAllLocations()
	if err != nil {
		return nil, err
	}

	forecasts := make([]LocationForecast, 0, len(locs))
	for _, loc := range locs {
		if locationID > 0 && loc.ID != locationID {
			continue
		}
		latest, err := s.store.LatestWeatherReading(loc.ID)
		if err != nil {
			return nil, fmt.Errorf("latest reading for %s: %w", loc.Name, err)
		}
		forecasts = append(forecasts, LocationForecast{Location: loc, Latest: latest})
	}
	return forecasts, nil
}

// SeedSystemDefaults guarantees the SYSTEM subscriber exists and monitors the
// configured default settlements, so baseline data accrues with zero active
// subscribers. Individual resolution failures are logged and skipped.
func (s *Service) SeedSystemDefaults(ctx context.Context, names []string) error {
	if err := s.EnsureSubscriber(storage.SystemSubscriber, "system", "System baseline"); err != nil {
		return err
	}

	count, err := s.store.CountLocations(storage.SystemSubscriber)
	if err != nil {
		return fmt.Errorf("count system locations: %w", err)
	}
	if count > 0 {
		return nil
	}

	logger.Info().Msg("No system locations found, seeding defaults")
	for _, name := range names {
		if _, err := s.RegisterLocation(ctx, storage.SystemSubscriber, storage.SystemSubscriber, name); err != nil {
			logger.Warn().Err(err).Str("name", name).Msg("Failed to seed system location")
		}
	}
	return nil
}
