package storage

import (
	"database/sql"
	"errors"
)

// ErrLocationNotFound is returned when a location delete or lookup misses.
var ErrLocationNotFound = errors.New("location not found")

// Store handles all database operations for the engine.
type Store struct {
	db *Database
}

// NewStore creates a new store.
func NewStore(db *Database) *Store {
	return &Store{db: db}
}

// UpsertSubscriber creates or updates a subscriber record.
func (s *Store) UpsertSubscriber(id, kind, title string) error {
	query := `
		INSERT INTO subscribers (id, kind, title)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			title = excluded.title
	`
	_, err := s.db.Exec(query, id, kind, title)
	return err
}

// ListSubscribers returns all known subscribers.
func (s *Store) ListSubscribers() ([]Subscriber, error) {
	var subs []Subscriber
	query := `SELECT * FROM subscribers ORDER BY created_at`
	err := s.db.Select(&subs, query)
	return subs, err
}

// GetSetting returns a subscriber setting, or fallback when unset.
func (s *Store) GetSetting(subscriberID, name, fallback string) (string, error) {
	var value string
	query := `SELECT value FROM settings WHERE subscriber_id = ? AND name = ?`
	err := s.db.Get(&value, query, subscriberID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// HasSetting reports whether a subscriber setting exists.
func (s *Store) HasSetting(subscriberID, name string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM settings WHERE subscriber_id = ? AND name = ?`
	err := s.db.Get(&count, query, subscriberID, name)
	return count > 0, err
}

// SetSetting upserts a subscriber setting.
func (s *Store) SetSetting(subscriberID, name, value string) error {
	query := `
		INSERT INTO settings (subscriber_id, name, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(subscriber_id, name) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`
	_, err := s.db.Exec(query, subscriberID, name, value)
	return err
}

// SaveLocation creates a location, or refreshes name and coordinates when the
// subscriber already monitors the same normalized name. Returns the location id.
func (s *Store) SaveLocation(loc *Location) (int64, error) {
	query := `
		INSERT INTO locations (subscriber_id, name, name_norm, lat, lon, region_code, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(subscriber_id, name_norm) DO UPDATE SET
			name = excluded.name,
			lat = excluded.lat,
			lon = excluded.lon,
			region_code = COALESCE(excluded.region_code, locations.region_code)
	`
	if _, err := s.db.Exec(query, loc.SubscriberID, loc.Name, loc.NameNorm, loc.Lat, loc.Lon, loc.RegionCode, loc.CreatedBy); err != nil {
		return 0, err
	}

	var id int64
	err := s.db.Get(&id, `SELECT id FROM locations WHERE subscriber_id = ? AND name_norm = ?`, loc.SubscriberID, loc.NameNorm)
	return id, err
}

// SetLocationRegionCode records a later-resolved regional code in place.
func (s *Store) SetLocationRegionCode(locationID int64, code string) error {
	_, err := s.db.Exec(`UPDATE locations SET region_code = ? WHERE id = ?`, code, locationID)
	return err
}

// GetLocation returns one location owned by the subscriber.
func (s *Store) GetLocation(subscriberID string, locationID int64) (*Location, error) {
	var loc Location
	query := `SELECT * FROM locations WHERE id = ? AND subscriber_id = ?`
	err := s.db.Get(&loc, query, locationID, subscriberID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLocationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// ListLocations returns all locations owned by a subscriber, oldest first.
func (s *Store) ListLocations(subscriberID string) ([]Location, error) {
	var locs []Location
	query := `SELECT * FROM locations WHERE subscriber_id = ? ORDER BY created_at, id`
	err := s.db.Select(&locs, query, subscriberID)
	return locs, err
}

// ListAllLocations returns every monitored location across subscribers.
func (s *Store) ListAllLocations() ([]Location, error) {
	var locs []Location
	query := `SELECT * FROM locations ORDER BY subscriber_id, created_at, id`
	err := s.db.Select(&locs, query)
	return locs, err
}

// CountLocations returns the number of locations a subscriber owns.
func (s *Store) CountLocations(subscriberID string) (int, error) {
	var count int
	err := s.db.Get(&count, `SELECT COUNT(*) FROM locations WHERE subscriber_id = ?`, subscriberID)
	return count, err
}

// DeleteLocation removes a location owned by the subscriber.
func (s *Store) DeleteLocation(subscriberID string, locationID int64) error {
	result, err := s.db.Exec(`DELETE FROM locations WHERE id = ? AND subscriber_id = ?`, locationID, subscriberID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrLocationNotFound
	}
	return nil
}
