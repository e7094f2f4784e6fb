// Package storage provides database operations and data models.
package storage

import "time"

// SystemSubscriber is the sentinel subscriber id used for baseline monitoring
// when no chat is registered.
const SystemSubscriber = "SYSTEM"

// Weather reading sources. Windy reports a rolling 3-hour precipitation
// accumulation; BMKG reports a point amount.
const (
	SourceWindy = "windy"
	SourceBMKG  = "bmkg"
)

// Weather mode setting values.
const (
	ModeBMKG  = "bmkg"
	ModeWindy = "windy"
	ModeBoth  = "both"
)

// SettingWeatherMode is the per-subscriber weather mode preference key.
const SettingWeatherMode = "weather_mode"

// Subscriber represents an alert recipient (a Telegram chat or SYSTEM).
type Subscriber struct {
	ID        string    `db:"id"`
	Kind      string    `db:"kind"` // private, group, supergroup, channel, system
	Title     string    `db:"title"`
	CreatedAt time.Time `db:"created_at"`
}

// Location is a monitored place owned by a subscriber.
type Location struct {
	ID           int64     `db:"id" json:"id"`
	SubscriberID string    `db:"subscriber_id" json:"-"`
	Name         string    `db:"name" json:"name"`
	NameNorm     string    `db:"name_norm" json:"-"`
	Lat          float64   `db:"lat" json:"lat"`
	Lon          float64   `db:"lon" json:"lon"`
	RegionCode   *string   `db:"region_code" json:"region_code,omitempty"` // adm4 code, nil until resolved
	CreatedAt    time.Time `db:"created_at" json:"-"`
	CreatedBy    string    `db:"created_by" json:"-"`
}

// SeismicEvent is one earthquake report, keyed by its report timestamp.
type SeismicEvent struct {
	ReportedAt string    `db:"reported_at" json:"reported_at"`
	Region     string    `db:"region" json:"region"`
	Magnitude  float64   `db:"magnitude" json:"magnitude"`
	Depth      string    `db:"depth" json:"depth"`
	Potential  string    `db:"potential" json:"potential"`
	Lat        float64   `db:"lat" json:"lat"`
	Lon        float64   `db:"lon" json:"lon"`
	AlertLevel string    `db:"alert_level" json:"alert_level"`
	ReceivedAt time.Time `db:"received_at" json:"received_at"`
}

// WeatherReading is one polled sample for a location. Append-only.
type WeatherReading struct {
	ID           int64     `db:"id" json:"id"`
	SubscriberID string    `db:"subscriber_id" json:"-"`
	LocationID   int64     `db:"location_id" json:"location_id"`
	Source       string    `db:"source" json:"source"`
	SampledAt    time.Time `db:"sampled_at" json:"sampled_at"`
	Temperature  *float64  `db:"temperature" json:"temperature,omitempty"`
	Humidity     *float64  `db:"humidity" json:"humidity,omitempty"`
	WindSpeed    *float64  `db:"wind_speed" json:"wind_speed,omitempty"`
	WindGust     *float64  `db:"wind_gust" json:"wind_gust,omitempty"`
	Pressure     *float64  `db:"pressure" json:"pressure,omitempty"`
	Precip       *float64  `db:"precip" json:"precip,omitempty"`
	WeatherText  string    `db:"weather_text" json:"weather_text,omitempty"`
	Score        int       `db:"score" json:"score"`
}

// NowcastAlert is a matched nowcast feed item, write-once per
// (subscriber, link).
type NowcastAlert struct {
	SubscriberID string    `db:"subscriber_id"`
	Link         string    `db:"link"`
	Title        string    `db:"title"`
	Description  string    `db:"description"`
	PubDate      string    `db:"pub_date"`
	Keywords     string    `db:"keywords"` // JSON array of matched keywords
	SavedAt      time.Time `db:"saved_at"`
}

// DispatchRecord marks a (subscriber, occurrence) pair as notified.
type DispatchRecord struct {
	ID            int64     `db:"id"`
	SubscriberID  string    `db:"subscriber_id"`
	Kind          string    `db:"kind"`
	OccurrenceKey string    `db:"occurrence_key"`
	CreatedAt     time.Time `db:"created_at"`
}

// Dispatch record kinds.
const (
	DispatchSeismic = "seismic"
	DispatchNowcast = "nowcast"
)
