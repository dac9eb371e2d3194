package store

import (
	"errors"
	"sync"
	"time"

	"point-weather/internal/timeseries"
)

var (
	// ErrNotFound is returned when no cached series covers the request.
	ErrNotFound = errors.New("no cached series for station")
)

// entry holds one station's fetched series for one granularity.
type entry struct {
	params    map[timeseries.Parameter]timeseries.Series
	start     time.Time
	end       time.Time
	fetchedAt time.Time
}

type cacheKey struct {
	station     string
	granularity timeseries.Granularity
}

// MemoryStore is a concurrency-safe in-memory cache of fetched station series,
// keyed by station id and granularity. A cache hit requires the stored entry
// to fully cover the requested time range and to be younger than maxAge.
type MemoryStore struct {
	mu sync.RWMutex

	data map[cacheKey]entry

	maxAge time.Duration // 0 = entries never expire
}

// NewMemoryStore creates a MemoryStore with the given max entry age.
func NewMemoryStore(maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:   make(map[cacheKey]entry),
		maxAge: maxAge,
	}
}

// Put stores the fetched series for a station, replacing any previous entry
// for the same station and granularity.
func (s *MemoryStore) Put(stationID string, gran timeseries.Granularity, start, end time.Time, params map[timeseries.Parameter]timeseries.Series) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[cacheKey{station: stationID, granularity: gran}] = entry{
		params:    params,
		start:     start,
		end:       end,
		fetchedAt: time.Now(),
	}
}

// Get returns the cached series for a station if the entry covers [start, end]
// and has not expired.
func (s *MemoryStore) Get(stationID string, gran timeseries.Granularity, start, end time.Time) (map[timeseries.Parameter]timeseries.Series, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[cacheKey{station: stationID, granularity: gran}]
	if !ok {
		return nil, ErrNotFound
	}
	if s.maxAge > 0 && time.Since(e.fetchedAt) > s.maxAge {
		return nil, ErrNotFound
	}
	if start.Before(e.start) || end.After(e.end) {
		return nil, ErrNotFound
	}
	return e.params, nil
}

// Purge drops expired entries. The scheduler calls this between prefetch runs.
func (s *MemoryStore) Purge() {
	if s.maxAge <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.maxAge)
	for k, e := range s.data {
		if e.fetchedAt.Before(cutoff) {
			delete(s.data, k)
		}
	}
}
