package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ilhammtg/mhew-backend/internal/bmkg"
	"github.com/ilhammtg/mhew-backend/internal/geo"
	"github.com/ilhammtg/mhew-backend/internal/hazard"
	"github.com/ilhammtg/mhew-backend/internal/notifier"
	"github.com/ilhammtg/mhew-backend/internal/observability"
	"github.com/ilhammtg/mhew-backend/internal/storage"
	"github.com/ilhammtg/mhew-backend/internal/windy"
	"github.com/ilhammtg/mhew-backend/pkg/logger"
)

// WindySource fetches current conditions from the gridded-model provider.
type WindySource interface {
	Current(ctx context.Context, lat, lon float64) (*windy.Reading, error)
}

// BMKGSource fetches the BMKG feeds.
type BMKGSource interface {
	FetchQuake(ctx context.Context) (*bmkg.Quake, error)
	FetchNowcast(ctx context.Context) ([]bmkg.NowcastItem, error)
	FetchPointForecast(ctx context.Context, regionCode string) ([]bmkg.ForecastEntry, error)
}

// Pipeline runs the ingestion, aggregation, classification, and notification
// stages for one tick. All methods are safe for concurrent use across
// subscribers; the store is the only shared mutable state.
type Pipeline struct {
	store   *storage.Store
	bmkg    BMKGSource
	windy   WindySource
	notify  *notifier.Notifier
	agg     hazard.Aggregator
	metrics *observability.Metrics
	clock   clockwork.Clock

	defaultMode     string
	defaultKeywords []string
}

// NewPipeline wires the pipeline stages.
func NewPipeline(store *storage.Store, bmkgSrc BMKGSource, windySrc WindySource, notify *notifier.Notifier,
	agg hazard.Aggregator, metrics *observability.Metrics, clock clockwork.Clock,
	defaultMode string, defaultKeywords []string) *Pipeline {
	return &Pipeline{
		store:           store,
		bmkg:            bmkgSrc,
		windy:           windySrc,
		notify:          notify,
		agg:             agg,
		metrics:         metrics,
		clock:           clock,
		defaultMode:     defaultMode,
		defaultKeywords: defaultKeywords,
	}
}

// CheckSeismic ingests the latest earthquake report, persists it under its
// report timestamp, and notifies the subscriber once per occurrence when the
// derived level is WARNING or above.
func (p *Pipeline) CheckSeismic(ctx context.Context, subscriberID string) error {
	quake, err := p.bmkg.FetchQuake(ctx)
	if err != nil {
		p.metrics.FetchErrors.WithLabelValues("seismic").Inc()
		return fmt.Errorf("fetch quake: %w", err)
	}

	level := hazard.ClassifySeismic(quake.Potential)
	ev := &storage.SeismicEvent{
		ReportedAt: quake.DateTime,
		Region:     quake.Region,
		Magnitude:  quake.Magnitude,
		Depth:      quake.Depth,
		Potential:  quake.Potential,
		Lat:        quake.Lat,
		Lon:        quake.Lon,
		AlertLevel: level.String(),
		ReceivedAt: p.clock.Now().UTC(),
	}

	if _, err := p.store.UpsertSeismicEvent(ev); err != nil {
		return fmt.Errorf("persist quake: %w", err)
	}

	if level < hazard.Warning {
		return nil
	}

	// The dispatch record insert is the dedup commit point.
	committed, err := p.store.RecordDispatch(subscriberID, storage.DispatchSeismic, quake.DateTime)
	if err != nil {
		return fmt.Errorf("record dispatch: %w", err)
	}
	if !committed {
		p.metrics.NoticesSuppressed.WithLabelValues("seismic").Inc()
		return nil
	}

	p.notify.Notify(subscriberID, "seismic", notifier.SeismicNotice(ev, level))
	return nil
}

// CheckNowcast scans the nowcast warning feed for items matching the
// subscriber's location names and notifies the first new match. The saved
// nowcast row is the dedup record; a known link refreshes metadata only.
func (p *Pipeline) CheckNowcast(ctx context.Context, subscriberID string) error {
	items, err := p.bmkg.FetchNowcast(ctx)
	if err != nil {
		p.metrics.FetchErrors.WithLabelValues("nowcast").Inc()
		return fmt.Errorf("fetch nowcast: %w", err)
	}

	locs, err := p.store.ListLocations(subscriberID)
	if err != nil {
		return fmt.Errorf("list locations: %w", err)
	}

	keywords := make([]string, 0, len(locs))
	for _, loc := range locs {
		if loc.Name != "" {
			keywords = append(keywords, loc.Name)
		}
	}
	if len(keywords) == 0 {
		keywords = p.defaultKeywords
	}

	for _, item := range items {
		if item.Link == "" {
			continue
		}

		haystack := geo.NormalizeName(item.Title + " " + item.Description)
		var matched []string
		for _, keyword := range keywords {
			if norm := geo.NormalizeName(keyword); norm != "" && strings.Contains(haystack, norm) {
				matched = append(matched, keyword)
			}
		}
		if len(matched) == 0 {
			continue
		}

		keywordsJSON, err := json.Marshal(matched)
		if err != nil {
			return fmt.Errorf("marshal keywords: %w", err)
		}

		isNew, err := p.store.SaveNowcastAlert(&storage.NowcastAlert{
			SubscriberID: subscriberID,
			Link:         item.Link,
			Title:        item.Title,
			Description:  item.Description,
			PubDate:      item.PubDate,
			Keywords:     string(keywordsJSON),
			SavedAt:      p.clock.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("save nowcast alert: %w", err)
		}
		if !isNew {
			p.metrics.NoticesSuppressed.WithLabelValues("nowcast").Inc()
			continue
		}

		p.notify.Notify(subscriberID, "nowcast", notifier.NowcastNotice(item))
		// The feed is newest-first; one notice per tick is enough.
		break
	}

	return nil
}

// LogWeather polls current conditions for every location the subscriber
// monitors, persists the readings, and evaluates flood and storm alerts.
// One location's failure never blocks the rest.
func (p *Pipeline) LogWeather(ctx context.Context, subscriberID string) error {
	mode, err := p.store.GetSetting(subscriberID, storage.SettingWeatherMode, p.defaultMode)
	if err != nil {
		return fmt.Errorf("read weather mode: %w", err)
	}

	locs, err := p.store.ListLocations(subscriberID)
	if err != nil {
		return fmt.Errorf("list locations: %w", err)
	}
	if len(locs) == 0 {
		return nil
	}

	now := p.clock.Now().UTC()
	for i := range locs {
		if err := p.logLocation(ctx, subscriberID, &locs[i], mode, now); err != nil {
			logger.Error().
				Err(err).
				Str("subscriber", subscriberID).
				Str("location", locs[i].Name).
				Msg("Weather logging failed for location, continuing")
		}
	}
	return nil
}

func (p *Pipeline) logLocation(ctx context.Context, subscriberID string, loc *storage.Location, mode string, now time.Time) error {
	var windyReading *windy.Reading

	if mode == storage.ModeWindy || mode == storage.ModeBoth {
		reading, err := p.windy.Current(ctx, loc.Lat, loc.Lon)
		if err != nil {
			p.metrics.FetchErrors.WithLabelValues("windy").Inc()
			logger.Warn().Err(err).Str("location", loc.Name).Msg("Windy fetch failed")
		} else {
			windyReading = reading
			_, err = p.store.InsertWeatherReading(&storage.WeatherReading{
				SubscriberID: subscriberID,
				LocationID:   loc.ID,
				Source:       storage.SourceWindy,
				SampledAt:    now,
				Temperature:  reading.Temperature,
				Humidity:     reading.Humidity,
				WindSpeed:    reading.WindSpeed,
				WindGust:     reading.Gust,
				Pressure:     reading.Pressure,
				Precip:       reading.Precip3h,
			})
			if err != nil {
				return fmt.Errorf("persist windy reading: %w", err)
			}
		}
	}

	if mode == storage.ModeBMKG || mode == storage.ModeBoth {
		if err := p.logBMKGReading(ctx, subscriberID, loc, now); err != nil {
			return err
		}
	}

	// Readings are persisted above before severity is evaluated, so the 24h
	// window includes this tick's samples.
	total, err := precip24h(p.store, p.agg, loc.ID, now)
	if err != nil {
		return fmt.Errorf("aggregate precipitation: %w", err)
	}

	if level := hazard.ClassifyPrecipitation(total); level >= hazard.Warning {
		p.notify.Notify(subscriberID, "flood", notifier.FloodNotice(loc.Name, total, level))
	}

	if windyReading != nil && hazard.StormSignal(windyReading.Gust, windyReading.Pressure) {
		p.notify.Notify(subscriberID, "storm", notifier.StormNotice(loc.Name, windyReading.Gust, windyReading.Pressure))
	}

	return nil
}

// logBMKGReading polls the point-forecast API for a location. A missing
// regional code short-circuits this location for the tick only.
func (p *Pipeline) logBMKGReading(ctx context.Context, subscriberID string, loc *storage.Location, now time.Time) error {
	if loc.RegionCode == nil || *loc.RegionCode == "" {
		logger.Warn().
			Str("location", loc.Name).
			Msg("Regional code unresolved, skipping BMKG forecast this tick")
		return nil
	}

	entries, err := p.bmkg.FetchPointForecast(ctx, *loc.RegionCode)
	if err != nil {
		p.metrics.FetchErrors.WithLabelValues("forecast").Inc()
		logger.Warn().Err(err).Str("location", loc.Name).Msg("BMKG forecast fetch failed")
		return nil
	}

	entry := entries[0]
	text := entry.WeatherDesc
	if text == "" {
		text = bmkg.WeatherText(entry.WeatherCode)
	}

	temperature := entry.Temperature
	humidity := entry.Humidity
	windSpeed := entry.WindSpeed
	precip := entry.Precip

	_, err = p.store.InsertWeatherReading(&storage.WeatherReading{
		SubscriberID: subscriberID,
		LocationID:   loc.ID,
		Source:       storage.SourceBMKG,
		SampledAt:    now,
		Temperature:  &temperature,
		Humidity:     &humidity,
		WindSpeed:    &windSpeed,
		Precip:       &precip,
		WeatherText:  text,
		Score:        hazard.WeatherScore(text),
	})
	if err != nil {
		return fmt.Errorf("persist bmkg reading: %w", err)
	}
	return nil
}

// precip24h returns the corrected 24-hour precipitation total for a location.
func precip24h(store *storage.Store, agg hazard.Aggregator, locationID int64, now time.Time) (float64, error) {
	sums, err := store.PrecipSumsBySource(locationID, now.Add(-24*time.Hour))
	if err != nil {
		return 0, err
	}
	return agg.Total24h(sums[storage.SourceBMKG], sums[storage.SourceWindy]), nil
}
