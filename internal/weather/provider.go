package weather

import (
	"context"
	"time"

	"point-weather/internal/stations"
	"point-weather/internal/timeseries"
)

// Provider abstracts a station-data source (e.g. Open-Meteo, WeatherAPI,
// Meteostat bulk). It fetches the raw per-parameter series one station
// reported over a time range. Unit normalization happens inside the provider;
// the engine only ever sees normalized values.
type Provider interface {
	Name() string
	Supports(gran timeseries.Granularity) bool
	Fetch(ctx context.Context, station stations.Station, gran timeseries.Granularity, start, end time.Time) (map[timeseries.Parameter]timeseries.Series, error)
}

// Store is the contract the series cache must satisfy.
type Store interface {
	Put(stationID string, gran timeseries.Granularity, start, end time.Time, params map[timeseries.Parameter]timeseries.Series)
	Get(stationID string, gran timeseries.Granularity, start, end time.Time) (map[timeseries.Parameter]timeseries.Series, error)
}
