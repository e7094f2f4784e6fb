package geo

import (
	"context"
	"errors"

	"github.com/ilhammtg/mhew-backend/pkg/logger"
)

// ErrNotFound means no stage of the cascade produced coordinates for the
// input. It is terminal for that input, unlike a transient fetch error.
var ErrNotFound = errors.New("place not found")

// Resolved is the outcome of a successful resolution. RegionCode is empty
// when no stage could supply one.
type Resolved struct {
	DisplayName string
	Lat         float64
	Lon         float64
	RegionCode  string
}

// Resolver maps place names to coordinates and regional codes using a
// cascade: static settlement table, then the bulk code dataset, then the
// remote geocoder. The static table is consulted exactly once, before the
// dataset; a name it knows never reaches the geocoder.
type Resolver struct {
	dataset  *Dataset
	geocoder *Geocoder
}

// NewResolver creates a resolver over the given dataset and geocoder.
func NewResolver(dataset *Dataset, geocoder *Geocoder) *Resolver {
	return &Resolver{dataset: dataset, geocoder: geocoder}
}

// Resolve runs the cascade for a human-entered name.
func (r *Resolver) Resolve(ctx context.Context, name string) (*Resolved, error) {
	norm := NormalizeName(name)
	if norm == "" {
		return nil, ErrNotFound
	}

	// Stage 1: static table, coordinates and code in one hit.
	if place, ok := lookupStatic(norm); ok {
		return &Resolved{
			DisplayName: place.Name,
			Lat:         place.Lat,
			Lon:         place.Lon,
			RegionCode:  place.RegionCode,
		}, nil
	}

	// Stage 2: bulk dataset, code only (the CSV carries no coordinates).
	// A dataset failure degrades to an unresolved code, not a lost location.
	regionCode := ""
	if code, ok, err := r.dataset.FindCode(norm); err != nil {
		logger.Warn().Err(err).Str("name", norm).Msg("Region dataset unavailable, code stays unresolved")
	} else if ok {
		regionCode = code
	}

	// Stage 3: remote geocoder for coordinates.
	candidate, err := r.geocoder.Geocode(ctx, name)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, ErrNotFound
	}

	return &Resolved{
		DisplayName: candidate.DisplayName,
		Lat:         candidate.Lat,
		Lon:         candidate.Lon,
		RegionCode:  regionCode,
	}, nil
}
