package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"point-weather/internal/timeseries"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func sampleParams() map[timeseries.Parameter]timeseries.Series {
	s := timeseries.NewSeries()
	s.Set(day(1), timeseries.Observation{Value: 3.4, Source: "bulk"})
	return map[timeseries.Parameter]timeseries.Series{timeseries.ParamTemp: s}
}

func TestMemoryStoreHit(t *testing.T) {
	ms := NewMemoryStore(time.Hour)
	ms.Put("10637", timeseries.Daily, day(1), day(10), sampleParams())

	got, err := ms.Get("10637", timeseries.Daily, day(2), day(5))
	require.NoError(t, err)
	assert.Contains(t, got, timeseries.ParamTemp)
}

func TestMemoryStoreMissOnRange(t *testing.T) {
	ms := NewMemoryStore(time.Hour)
	ms.Put("10637", timeseries.Daily, day(1), day(10), sampleParams())

	// Requested range extends past the cached entry.
	_, err := ms.Get("10637", timeseries.Daily, day(2), day(15))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreMissOnGranularity(t *testing.T) {
	ms := NewMemoryStore(time.Hour)
	ms.Put("10637", timeseries.Daily, day(1), day(10), sampleParams())

	_, err := ms.Get("10637", timeseries.Hourly, day(2), day(5))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreMissOnUnknownStation(t *testing.T) {
	ms := NewMemoryStore(time.Hour)

	_, err := ms.Get("nope", timeseries.Daily, day(1), day(2))
	assert.ErrorIs(t, err, ErrNotFound)
}
