package stations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"point-weather/internal/geo"
)

func elev(v float64) *float64 { return &v }

func testIndex() *Index {
	return NewIndex([]Station{
		{ID: "10637", Name: "Frankfurt Airport", Country: "DE", Latitude: 50.05, Longitude: 8.6, Elevation: elev(111)},
		{ID: "10635", Name: "Kleiner Feldberg", Country: "DE", Latitude: 50.2167, Longitude: 8.45, Elevation: elev(826)},
		{ID: "10382", Name: "Berlin Tegel", Country: "DE", Latitude: 52.5667, Longitude: 13.3167, Elevation: elev(36)},
	})
}

func TestNearbyOrdering(t *testing.T) {
	ix := testIndex()
	p, err := geo.NewPoint(50.1155, 8.6842)
	require.NoError(t, err)

	got := ix.Nearby(p, 0, 0)
	require.Len(t, got, 3)
	assert.Equal(t, "10637", got[0].ID)
	assert.Equal(t, "10635", got[1].ID)
	assert.Equal(t, "10382", got[2].ID)

	// Ascending distance.
	assert.Less(t, got[0].Distance, got[1].Distance)
	assert.Less(t, got[1].Distance, got[2].Distance)
}

func TestNearbyLimitAndRadius(t *testing.T) {
	ix := testIndex()
	p, err := geo.NewPoint(50.1155, 8.6842)
	require.NoError(t, err)

	got := ix.Nearby(p, 1, 0)
	require.Len(t, got, 1)
	assert.Equal(t, "10637", got[0].ID)

	// Berlin is ~420 km away and falls outside a 100 km radius.
	got = ix.Nearby(p, 0, 100000)
	require.Len(t, got, 2)
	for _, s := range got {
		assert.NotEqual(t, "10382", s.ID)
	}
}

func TestNearbyDeterministicTieBreak(t *testing.T) {
	ix := NewIndex([]Station{
		{ID: "B", Latitude: 50.0, Longitude: 8.0},
		{ID: "A", Latitude: 50.0, Longitude: 8.0},
	})
	p, err := geo.NewPoint(50.0, 8.0)
	require.NoError(t, err)

	got := ix.Nearby(p, 0, 0)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].ID)
	assert.Equal(t, "B", got[1].ID)
}

func TestGet(t *testing.T) {
	ix := testIndex()

	s, ok := ix.Get("10637")
	require.True(t, ok)
	assert.Equal(t, "Frankfurt Airport", s.Name)

	_, ok = ix.Get("nope")
	assert.False(t, ok)
}
