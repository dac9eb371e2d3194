package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	t.Run("same point is zero", func(t *testing.T) {
		assert.Zero(t, Distance(50.0, 8.0, 50.0, 8.0))
	})

	t.Run("frankfurt to berlin", func(t *testing.T) {
		// Approximate great-circle distance is 424 km.
		d := Distance(50.1109, 8.6821, 52.5200, 13.4050)
		assert.InDelta(t, 424000, d, 5000)
	})

	t.Run("one degree at equator", func(t *testing.T) {
		d := Distance(0.0, 0.0, 1.0, 0.0)
		assert.InDelta(t, 111000, d, 1000)
	})
}

func TestNewPoint(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		p, err := NewPoint(-45.0, -90.0)
		require.NoError(t, err)
		assert.Equal(t, -45.0, p.Latitude)
		assert.Equal(t, -90.0, p.Longitude)
		assert.Nil(t, p.Elevation)
	})

	t.Run("latitude out of range", func(t *testing.T) {
		_, err := NewPoint(-91.0, 90.0)
		assert.ErrorIs(t, err, ErrInvalidCoordinates)
		_, err = NewPoint(91.0, 90.0)
		assert.ErrorIs(t, err, ErrInvalidCoordinates)
	})

	t.Run("longitude out of range", func(t *testing.T) {
		_, err := NewPoint(45.0, 181.0)
		assert.ErrorIs(t, err, ErrInvalidCoordinates)
	})
}

func TestNewPointWithElevation(t *testing.T) {
	t.Run("sea level is a known elevation", func(t *testing.T) {
		p, err := NewPointWithElevation(52.3676, 4.9041, 0)
		require.NoError(t, err)
		require.NotNil(t, p.Elevation)
		assert.Equal(t, 0.0, *p.Elevation)
	})

	t.Run("negative elevation is valid", func(t *testing.T) {
		p, err := NewPointWithElevation(29.95, -90.07, -2)
		require.NoError(t, err)
		require.NotNil(t, p.Elevation)
		assert.Equal(t, -2.0, *p.Elevation)
	})
}
