package storage

import (
	"database/sql"
	"errors"
	"time"
)

// UpsertSeismicEvent writes a seismic event keyed by its report timestamp.
// Re-ingesting the same timestamp overwrites the row. Returns true when the
// timestamp was not seen before.
func (s *Store) UpsertSeismicEvent(ev *SeismicEvent) (bool, error) {
	var count int
	if err := s.db.Get(&count, `SELECT COUNT(*) FROM seismic_events WHERE reported_at = ?`, ev.ReportedAt); err != nil {
		return false, err
	}

	query := `
		INSERT INTO seismic_events (reported_at, region, magnitude, depth, potential, lat, lon, alert_level, received_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(reported_at) DO UPDATE SET
			region = excluded.region,
			magnitude = excluded.magnitude,
			depth = excluded.depth,
			potential = excluded.potential,
			lat = excluded.lat,
			lon = excluded.lon,
			alert_level = excluded.alert_level,
			received_at = excluded.received_at
	`
	_, err := s.db.Exec(query, ev.ReportedAt, ev.Region, ev.Magnitude, ev.Depth, ev.Potential, ev.Lat, ev.Lon, ev.AlertLevel, ev.ReceivedAt)
	return count == 0, err
}

// LatestSeismicEvent returns the most recent seismic event, or nil when none
// has been ingested yet.
func (s *Store) LatestSeismicEvent() (*SeismicEvent, error) {
	var ev SeismicEvent
	query := `SELECT * FROM seismic_events ORDER BY reported_at DESC LIMIT 1`
	err := s.db.Get(&ev, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// RecentSeismicEvents returns up to limit events, newest first.
func (s *Store) RecentSeismicEvents(limit int) ([]SeismicEvent, error) {
	var evs []SeismicEvent
	query := `SELECT * FROM seismic_events ORDER BY reported_at DESC LIMIT ?`
	err := s.db.Select(&evs, query, limit)
	return evs, err
}

// InsertWeatherReading appends one weather sample for a location.
func (s *Store) InsertWeatherReading(r *WeatherReading) (int64, error) {
	query := `
		INSERT INTO weather_readings
			(subscriber_id, location_id, source, sampled_at, temperature, humidity,
			 wind_speed, wind_gust, pressure, precip, weather_text, score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.Exec(query,
		r.SubscriberID, r.LocationID, r.Source, r.SampledAt, r.Temperature, r.Humidity,
		r.WindSpeed, r.WindGust, r.Pressure, r.Precip, r.WeatherText, r.Score)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// PrecipSumsBySource returns the raw precipitation sum per source for one
// location over readings sampled at or after since. The caller applies the
// per-source overlap correction.
func (s *Store) PrecipSumsBySource(locationID int64, since time.Time) (map[string]float64, error) {
	var rows []struct {
		Source string  `db:"source"`
		Total  float64 `db:"total"`
	}
	query := `
		SELECT source, COALESCE(SUM(precip), 0) AS total
		FROM weather_readings
		WHERE location_id = ? AND sampled_at >= ?
		GROUP BY source
	`
	if err := s.db.Select(&rows, query, locationID, since); err != nil {
		return nil, err
	}

	sums := make(map[string]float64, len(rows))
	for _, row := range rows {
		sums[row.Source] = row.Total
	}
	return sums, nil
}

// LatestWeatherReading returns the newest sample for a location, or nil when
// the location has never been polled.
func (s *Store) LatestWeatherReading(locationID int64) (*WeatherReading, error) {
	var r WeatherReading
	query := `SELECT * FROM weather_readings WHERE location_id = ? ORDER BY sampled_at DESC, id DESC LIMIT 1`
	err := s.db.Get(&r, query, locationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// SaveNowcastAlert stores a matched nowcast item. The insert is the
// deduplication commit point: a first write returns true, later writes for
// the same (subscriber, link) refresh the metadata and return false.
func (s *Store) SaveNowcastAlert(a *NowcastAlert) (bool, error) {
	insert := `
		INSERT OR IGNORE INTO nowcast_alerts (subscriber_id, link, title, description, pub_date, keywords, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.Exec(insert, a.SubscriberID, a.Link, a.Title, a.Description, a.PubDate, a.Keywords, a.SavedAt)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rowsAffected > 0 {
		return true, nil
	}

	// Key already committed: refresh metadata only.
	update := `
		UPDATE nowcast_alerts SET title = ?, description = ?, pub_date = ?, keywords = ?
		WHERE subscriber_id = ? AND link = ?
	`
	_, err = s.db.Exec(update, a.Title, a.Description, a.PubDate, a.Keywords, a.SubscriberID, a.Link)
	return false, err
}

// RecentNowcastAlerts returns up to limit saved nowcast items, newest first.
func (s *Store) RecentNowcastAlerts(limit int) ([]NowcastAlert, error) {
	var alerts []NowcastAlert
	query := `SELECT * FROM nowcast_alerts ORDER BY saved_at DESC LIMIT ?`
	err := s.db.Select(&alerts, query, limit)
	return alerts, err
}

// RecordDispatch marks an occurrence as notified for a subscriber. Returns
// true when this call committed the record, false when it already existed.
func (s *Store) RecordDispatch(subscriberID, kind, occurrenceKey string) (bool, error) {
	query := `
		INSERT OR IGNORE INTO dispatch_records (subscriber_id, kind, occurrence_key)
		VALUES (?, ?, ?)
	`
	result, err := s.db.Exec(query, subscriberID, kind, occurrenceKey)
	if err != nil {
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

// WasDispatched checks whether an occurrence was already notified.
func (s *Store) WasDispatched(subscriberID, kind, occurrenceKey string) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM dispatch_records
		WHERE subscriber_id = ? AND kind = ? AND occurrence_key = ?
	`
	err := s.db.Get(&count, query, subscriberID, kind, occurrenceKey)
	return count > 0, err
}

// CleanupOldDispatches removes old dispatch records to prevent database bloat.
func (s *Store) CleanupOldDispatches(daysToKeep int) (int64, error) {
	query := `DELETE FROM dispatch_records WHERE created_at < datetime('now', '-' || ? || ' days')`
	result, err := s.db.Exec(query, daysToKeep)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
