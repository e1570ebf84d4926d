// Package geo resolves place mentions to map markers.
package geo

import (
	"context"

	"github.com/codingsince1985/geo-golang"
	"github.com/codingsince1985/geo-golang/openstreetmap"
	"go.uber.org/zap"

	"github.com/newspulse/newspulse/internal/news"
)

// Marker is one renderable map point derived from place mentions.
type Marker struct {
	Location    string  `json:"location"`
	Count       int     `json:"count"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Placeholder bool    `json:"placeholder"`
}

// NominatimGeocoder implements news.Geocoder against OpenStreetMap's
// Nominatim service.
type NominatimGeocoder struct {
	geocoder geo.Geocoder
}

// NewNominatim constructs a geocoder with the default OSM endpoint.
func NewNominatim() *NominatimGeocoder {
	return &NominatimGeocoder{geocoder: openstreetmap.Geocoder()}
}

// Geocode resolves one place name. ok is false when the service found no
// match; err covers transport failures.
func (g *NominatimGeocoder) Geocode(ctx context.Context, location string) (float64, float64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, false, err
	}
	loc, err := g.geocoder.Geocode(location)
	if err != nil {
		return 0, 0, false, err
	}
	if loc == nil {
		return 0, 0, false, nil
	}
	return loc.Lat, loc.Lng, true, nil
}

// Mapper turns place frequency counts into markers.
type Mapper struct {
	geocoder news.Geocoder
	logger   *zap.Logger
}

// NewMapper constructs a Mapper.
func NewMapper(geocoder news.Geocoder, logger *zap.Logger) *Mapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mapper{geocoder: geocoder, logger: logger}
}

// Markers resolves each GPE entity count to a marker. Lookups that fail or
// miss yield a placeholder marker at the origin instead of dropping the
// place; rendering decides what to do with placeholders.
func (m *Mapper) Markers(ctx context.Context, counts []news.EntityCount) []Marker {
	markers := make([]Marker, 0, len(counts))
	for _, c := range counts {
		if c.Type != news.EntityGPE {
			continue
		}
		marker := Marker{Location: c.Text, Count: c.Count}
		lat, lng, ok, err := m.geocoder.Geocode(ctx, c.Text)
		switch {
		case err != nil:
			m.logger.Warn("geocode failed", zap.String("location", c.Text), zap.Error(err))
			marker.Placeholder = true
		case !ok:
			marker.Placeholder = true
		default:
			marker.Lat = lat
			marker.Lng = lng
		}
		markers = append(markers, marker)
	}
	return markers
}
