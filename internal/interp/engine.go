package interp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"point-weather/internal/geo"
	"point-weather/internal/stations"
	"point-weather/internal/timeseries"
)

var (
	// ErrInvalidInput marks a malformed request contract: series data for an
	// unknown station, or a malformed point. Fatal to the request, surfaced
	// immediately, never retried.
	ErrInvalidInput = errors.New("invalid interpolation input")

	// ErrInsufficientData signals that no station reported any requested
	// parameter. It is returned together with an empty MergedSeries so callers
	// can decide to broaden the search radius and retry at a higher layer.
	ErrInsufficientData = errors.New("insufficient station data")
)

// Request carries the immutable inputs of one interpolation run. The engine
// never mutates any of them.
type Request struct {
	Point       geo.Point
	Stations    []stations.Station // with Distance populated by the catalog
	Series      map[string]map[timeseries.Parameter]timeseries.Series
	Parameters  []timeseries.Parameter
	Method      Method
	Granularity timeseries.Granularity
}

// Engine combines multiple stations' series into one merged series for a
// point. It holds no state between calls; concurrent requests need no
// coordination.
type Engine struct {
	cfg Config
}

// New returns an Engine using the given parameter configuration.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Interpolate is the sole entry point. Given identical inputs it produces
// bit-for-bit identical output: all iteration runs in sorted order and
// per-parameter results are assembled by parameter index regardless of
// goroutine completion order.
func (e *Engine) Interpolate(ctx context.Context, req Request) (timeseries.MergedSeries, error) {
	if err := validate(req); err != nil {
		return timeseries.MergedSeries{}, err
	}

	out := timeseries.MergedSeries{Granularity: req.Granularity}
	if len(req.Stations) == 0 {
		return out, ErrInsufficientData
	}

	strategy, err := NewStrategy(req.Method, e.cfg.Power)
	if err != nil {
		return timeseries.MergedSeries{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	// Categorical parameters are selected, not averaged.
	nearestOnly := nearestStrategy{}

	byID := make(map[string]stations.Station, len(req.Stations))
	for _, s := range req.Stations {
		byID[s.ID] = s
	}

	// One slot per parameter; parameters never interact, so each goroutine
	// writes only its own index.
	results := make([]paramResult, len(req.Parameters))

	g, ctx := errgroup.WithContext(ctx)
	for i, param := range req.Parameters {
		i, param := i, param
		g.Go(func() error {
			strat := strategy
			if e.cfg.Spec(param).Categorical {
				strat = nearestOnly
			}
			r, err := e.interpolateParameter(ctx, req, byID, param, strat)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return timeseries.MergedSeries{}, err
	}

	out.Rows = assemble(req.Parameters, results)
	if len(out.Rows) == 0 {
		return out, ErrInsufficientData
	}
	return out, nil
}

// paramResult holds one parameter's merged values as arrays parallel to the
// aligned timestamp axis, so the combination loop stays allocation-free.
type paramResult struct {
	times   []int64 // unix seconds, ascending
	values  []float64
	sources [][]timeseries.SourceWeight
}

func (e *Engine) interpolateParameter(
	ctx context.Context,
	req Request,
	byID map[string]stations.Station,
	param timeseries.Parameter,
	strategy Strategy,
) (paramResult, error) {
	perStation := make(map[string]timeseries.Series)
	for id, params := range req.Series {
		if s, ok := params[param]; ok && s.Len() > 0 {
			perStation[id] = s
		}
	}

	aligned := timeseries.Align(perStation)

	var r paramResult
	r.times = make([]int64, 0, len(aligned.Times))
	r.values = make([]float64, 0, len(aligned.Times))
	r.sources = make([][]timeseries.SourceWeight, 0, len(aligned.Times))

	for _, t := range aligned.Times {
		if err := ctx.Err(); err != nil {
			return paramResult{}, err
		}

		ids, obs := aligned.At(t)
		if len(ids) == 0 {
			// Union axis only holds timestamps with at least one report.
			continue
		}

		candidates := make([]Candidate, len(ids))
		for i, id := range ids {
			st := byID[id]
			candidates[i] = Candidate{StationID: id, Distance: st.Distance}
		}

		weights := strategy.Weights(candidates)
		if len(weights) == 0 {
			continue
		}

		// Combine in the sorted station order so float summation is
		// deterministic.
		var value float64
		contributors := make([]timeseries.SourceWeight, 0, len(ids))
		for i, id := range ids {
			w, ok := weights[id]
			if !ok || w == 0 {
				continue
			}
			st := byID[id]
			adjusted := e.cfg.AdjustElevation(obs[i].Value, st.Elevation, req.Point.Elevation, param)
			value += w * adjusted
			contributors = append(contributors, timeseries.SourceWeight{
				StationID: id,
				Weight:    w,
				Source:    obs[i].Source,
			})
		}
		if len(contributors) == 0 {
			continue
		}

		sort.SliceStable(contributors, func(i, j int) bool {
			if contributors[i].Weight != contributors[j].Weight {
				return contributors[i].Weight > contributors[j].Weight
			}
			return contributors[i].StationID < contributors[j].StationID
		})

		r.times = append(r.times, t.Unix())
		r.values = append(r.values, value)
		r.sources = append(r.sources, contributors)
	}

	return r, nil
}

func validate(req Request) error {
	p := req.Point
	if math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) || p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrInvalidInput)
	}
	if math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) || p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrInvalidInput)
	}
	if p.Elevation != nil && (math.IsNaN(*p.Elevation) || math.IsInf(*p.Elevation, 0)) {
		return fmt.Errorf("%w: elevation must be finite", ErrInvalidInput)
	}

	known := make(map[string]struct{}, len(req.Stations))
	for _, s := range req.Stations {
		known[s.ID] = struct{}{}
	}
	for id := range req.Series {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: series data references unknown station %q", ErrInvalidInput, id)
		}
	}
	return nil
}
