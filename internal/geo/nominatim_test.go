package geo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/newspulse/newspulse/internal/news"
)

type fakeGeocoder struct {
	coords map[string][2]float64
	errs   map[string]error
}

func (f *fakeGeocoder) Geocode(_ context.Context, location string) (float64, float64, bool, error) {
	if err, bad := f.errs[location]; bad {
		return 0, 0, false, err
	}
	if c, ok := f.coords[location]; ok {
		return c[0], c[1], true, nil
	}
	return 0, 0, false, nil
}

func TestMarkersResolvesPlaces(t *testing.T) {
	t.Parallel()

	m := NewMapper(&fakeGeocoder{coords: map[string][2]float64{
		"Mumbai": {19.076, 72.8777},
	}}, nil)

	markers := m.Markers(context.Background(), []news.EntityCount{
		{Text: "Mumbai", Type: news.EntityGPE, Count: 7},
	})
	require.Len(t, markers, 1)
	require.Equal(t, "Mumbai", markers[0].Location)
	require.Equal(t, 7, markers[0].Count)
	require.InDelta(t, 19.076, markers[0].Lat, 1e-9)
	require.False(t, markers[0].Placeholder)
}

func TestMarkersSkipsNonPlaceEntities(t *testing.T) {
	t.Parallel()

	m := NewMapper(&fakeGeocoder{}, nil)
	markers := m.Markers(context.Background(), []news.EntityCount{
		{Text: "RBI", Type: news.EntityOrg, Count: 5},
	})
	require.Empty(t, markers)
}

func TestMarkersDegradeToPlaceholder(t *testing.T) {
	t.Parallel()

	m := NewMapper(&fakeGeocoder{errs: map[string]error{
		"Atlantis": errors.New("service unavailable"),
	}}, nil)

	markers := m.Markers(context.Background(), []news.EntityCount{
		{Text: "Atlantis", Type: news.EntityGPE, Count: 2},
		{Text: "Nowhereville", Type: news.EntityGPE, Count: 1},
	})
	require.Len(t, markers, 2)
	require.True(t, markers[0].Placeholder)
	require.True(t, markers[1].Placeholder)
}
