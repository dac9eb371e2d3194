// Package stations provides the weather station catalog and proximity lookup.
package stations

import (
	"sort"

	"point-weather/internal/geo"
)

// Station is read-only reference data describing one weather station.
// Distance is only populated on stations returned by Nearby and holds the
// great-circle distance in meters to the queried point.
type Station struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Country   string   `json:"country,omitempty"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Elevation *float64 `json:"elevation,omitempty"` // meters, nil when unknown
	Timezone  string   `json:"timezone,omitempty"`

	Distance float64 `json:"distance,omitempty"` // meters to query point
}

// Index is an immutable in-memory station catalog. It is built once at startup
// and shared freely across requests.
type Index struct {
	byID  map[string]Station
	items []Station
}

// NewIndex builds an Index from the given stations.
func NewIndex(items []Station) *Index {
	byID := make(map[string]Station, len(items))
	for _, s := range items {
		byID[s.ID] = s
	}
	return &Index{byID: byID, items: items}
}

// Len returns the number of stations in the catalog.
func (ix *Index) Len() int {
	return len(ix.items)
}

// Get looks up a station by id.
func (ix *Index) Get(id string) (Station, bool) {
	s, ok := ix.byID[id]
	return s, ok
}

// Nearby returns up to limit stations ordered by ascending great-circle
// distance from the point. A radius > 0 restricts results to stations within
// that many meters. Equal distances tie-break on station id so the ordering
// is deterministic.
func (ix *Index) Nearby(p geo.Point, limit int, radius float64) []Station {
	var result []Station
	for _, s := range ix.items {
		d := geo.Distance(p.Latitude, p.Longitude, s.Latitude, s.Longitude)
		if radius > 0 && d > radius {
			continue
		}
		s.Distance = d
		result = append(result, s)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Distance != result[j].Distance {
			return result[i].Distance < result[j].Distance
		}
		return result[i].ID < result[j].ID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}
