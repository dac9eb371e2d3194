// Package geo holds the geographic primitives shared by the station catalog
// and the interpolation engine.
package geo

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidCoordinates = errors.New("invalid coordinates")

// Point is a query target: a coordinate pair plus an optional elevation.
// A nil Elevation means the elevation is unknown; zero is a valid elevation
// (sea level), so the distinction matters for lapse-rate handling.
type Point struct {
	Latitude  float64
	Longitude float64
	Elevation *float64 // meters, nil when unknown
}

// NewPoint validates the coordinates and returns a Point without elevation.
func NewPoint(lat, lon float64) (Point, error) {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return Point{}, fmt.Errorf("%w: latitude must be between -90 and 90", ErrInvalidCoordinates)
	}
	if math.IsNaN(lon) || math.IsInf(lon, 0) || lon < -180 || lon > 180 {
		return Point{}, fmt.Errorf("%w: longitude must be between -180 and 180", ErrInvalidCoordinates)
	}
	return Point{Latitude: lat, Longitude: lon}, nil
}

// NewPointWithElevation validates the coordinates and attaches a known elevation.
func NewPointWithElevation(lat, lon, elevation float64) (Point, error) {
	p, err := NewPoint(lat, lon)
	if err != nil {
		return Point{}, err
	}
	if math.IsNaN(elevation) || math.IsInf(elevation, 0) {
		return Point{}, fmt.Errorf("%w: elevation must be finite", ErrInvalidCoordinates)
	}
	p.Elevation = &elevation
	return p, nil
}

const earthRadiusM = 6371000.0

// Distance returns the great-circle distance in meters between two coordinate
// pairs using the haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}
