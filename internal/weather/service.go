package weather

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"point-weather/internal/geo"
	"point-weather/internal/interp"
	"point-weather/internal/stations"
	"point-weather/internal/store"
	"point-weather/internal/timeseries"
)

// DefaultParameters lists the parameters requested per granularity when the
// caller does not name any.
func DefaultParameters(gran timeseries.Granularity) []timeseries.Parameter {
	switch gran {
	case timeseries.Hourly:
		return []timeseries.Parameter{
			timeseries.ParamTemp,
			timeseries.ParamDewPoint,
			timeseries.ParamHumidity,
			timeseries.ParamPrecip,
			timeseries.ParamWindDir,
			timeseries.ParamWindSpd,
			timeseries.ParamPressure,
			timeseries.ParamCondCode,
		}
	case timeseries.Daily:
		return []timeseries.Parameter{
			timeseries.ParamTemp,
			timeseries.ParamTempMin,
			timeseries.ParamTempMax,
			timeseries.ParamPrecip,
			timeseries.ParamSnowDpth,
			timeseries.ParamWindDir,
			timeseries.ParamWindSpd,
			timeseries.ParamPressure,
		}
	default:
		return []timeseries.Parameter{
			timeseries.ParamTemp,
			timeseries.ParamTempMin,
			timeseries.ParamTempMax,
			timeseries.ParamPrecip,
			timeseries.ParamWindSpd,
			timeseries.ParamPressure,
		}
	}
}

// PointService answers point-location weather queries: it discovers nearby
// stations, fetches (or reuses cached) station series and hands everything to
// the interpolation engine.
type PointService struct {
	index     *stations.Index
	providers []Provider
	store     Store
	engine    *interp.Engine

	nearbyLimit  int
	nearbyRadius float64 // meters, 0 = unlimited
}

// NewPointService creates a PointService. nearbyLimit and nearbyRadius are the
// defaults applied when a request does not override them.
func NewPointService(index *stations.Index, providers []Provider, st Store, engine *interp.Engine, nearbyLimit int, nearbyRadius float64) *PointService {
	return &PointService{
		index:        index,
		providers:    providers,
		store:        st,
		engine:       engine,
		nearbyLimit:  nearbyLimit,
		nearbyRadius: nearbyRadius,
	}
}

// Nearby returns the stations closest to the point, ascending by distance.
// Zero limit or radius fall back to the service defaults.
func (s *PointService) Nearby(p geo.Point, limit int, radius float64) []stations.Station {
	if limit <= 0 {
		limit = s.nearbyLimit
	}
	if radius <= 0 {
		radius = s.nearbyRadius
	}
	return s.index.Nearby(p, limit, radius)
}

// Interpolated produces the merged series for a point. Individual station
// fetch failures are tolerated and logged; the engine degrades to whatever
// data density the surviving stations provide. When no station yields any
// data the result is empty and interp.ErrInsufficientData is returned.
func (s *PointService) Interpolated(
	ctx context.Context,
	point geo.Point,
	gran timeseries.Granularity,
	start, end time.Time,
	params []timeseries.Parameter,
	method interp.Method,
	limit int,
	radius float64,
) (timeseries.MergedSeries, error) {
	if len(params) == 0 {
		params = DefaultParameters(gran)
	}

	candidates := s.Nearby(point, limit, radius)
	if len(candidates) == 0 {
		return timeseries.MergedSeries{Granularity: gran}, interp.ErrInsufficientData
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		series = make(map[string]map[timeseries.Parameter]timeseries.Series)
	)
	for _, st := range candidates {
		st := st
		wg.Add(1)
		go func() {
			defer wg.Done()

			data, err := s.stationSeries(ctx, st, gran, start, end)
			if err != nil {
				log.Printf("fetch failed for station %s: %v", st.ID, err)
				return
			}
			if len(data) == 0 {
				return
			}

			mu.Lock()
			series[st.ID] = data
			mu.Unlock()
		}()
	}
	wg.Wait()

	return s.engine.Interpolate(ctx, interp.Request{
		Point:       point,
		Stations:    candidates,
		Series:      series,
		Parameters:  params,
		Method:      method,
		Granularity: gran,
	})
}

// Prefetch warms the cache for a point so interactive queries avoid provider
// round-trips. Used by the scheduler.
func (s *PointService) Prefetch(ctx context.Context, point geo.Point, gran timeseries.Granularity, start, end time.Time) {
	for _, st := range s.Nearby(point, 0, 0) {
		if _, err := s.stationSeries(ctx, st, gran, start, end); err != nil {
			log.Printf("prefetch failed for station %s: %v", st.ID, err)
		}
	}
}

// stationSeries returns the series for one station, from cache when the
// cached entry covers the range, otherwise from the first provider that
// succeeds for the granularity.
func (s *PointService) stationSeries(ctx context.Context, st stations.Station, gran timeseries.Granularity, start, end time.Time) (map[timeseries.Parameter]timeseries.Series, error) {
	if cached, err := s.store.Get(st.ID, gran, start, end); err == nil {
		return cached, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	var lastErr error
	for _, p := range s.providers {
		if !p.Supports(gran) {
			continue
		}
		data, err := p.Fetch(ctx, st, gran, start, end)
		if err != nil {
			log.Printf("provider %s failed for station %s: %v", p.Name(), st.ID, err)
			lastErr = err
			continue
		}
		s.store.Put(st.ID, gran, start, end, data)
		return data, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("no provider supports the requested granularity")
}
