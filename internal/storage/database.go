package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Database wraps the sqlx.DB connection.
type Database struct {
	*sqlx.DB
}

// schema defines the database tables.
const schema = `
CREATE TABLE IF NOT EXISTS subscribers (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    title TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS locations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    subscriber_id TEXT NOT NULL,
    name TEXT NOT NULL,
    name_norm TEXT NOT NULL,
    lat REAL NOT NULL,
    lon REAL NOT NULL,
    region_code TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    created_by TEXT,
    UNIQUE(subscriber_id, name_norm),
    FOREIGN KEY (subscriber_id) REFERENCES subscribers(id)
);

CREATE TABLE IF NOT EXISTS settings (
    subscriber_id TEXT NOT NULL,
    name TEXT NOT NULL,
    value TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (subscriber_id, name)
);

CREATE TABLE IF NOT EXISTS seismic_events (
    reported_at TEXT PRIMARY KEY,
    region TEXT NOT NULL,
    magnitude REAL NOT NULL,
    depth TEXT,
    potential TEXT,
    lat REAL,
    lon REAL,
    alert_level TEXT NOT NULL,
    received_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS weather_readings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    subscriber_id TEXT NOT NULL,
    location_id INTEGER NOT NULL,
    source TEXT NOT NULL,
    sampled_at DATETIME NOT NULL,
    temperature REAL,
    humidity REAL,
    wind_speed REAL,
    wind_gust REAL,
    pressure REAL,
    precip REAL,
    weather_text TEXT,
    score INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS nowcast_alerts (
    subscriber_id TEXT NOT NULL,
    link TEXT NOT NULL,
    title TEXT,
    description TEXT,
    pub_date TEXT,
    keywords TEXT,
    saved_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (subscriber_id, link)
);

CREATE TABLE IF NOT EXISTS dispatch_records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    subscriber_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    occurrence_key TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(subscriber_id, kind, occurrence_key)
);

CREATE INDEX IF NOT EXISTS idx_locations_subscriber ON locations(subscriber_id);
CREATE INDEX IF NOT EXISTS idx_weather_readings_location ON weather_readings(location_id, sampled_at);
CREATE INDEX IF NOT EXISTS idx_seismic_events_received ON seismic_events(received_at);
CREATE INDEX IF NOT EXISTS idx_nowcast_alerts_saved ON nowcast_alerts(saved_at);
`

// NewDatabase creates a new database connection and initializes the schema.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure directory exists
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Database{DB: db}, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.DB.Close()
}
