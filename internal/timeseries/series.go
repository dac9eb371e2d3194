// Package timeseries defines the time-indexed data model shared by providers,
// the station-series cache and the interpolation engine: per-station parameter
// series, their alignment onto a common timestamp axis, and the merged output
// with per-value provenance.
package timeseries

import (
	"sort"
	"time"
)

// Granularity is the time-bucket size of a series. It is orthogonal to the
// interpolation algorithm; it only decides which provider endpoint serves the
// data and which parameter set applies.
type Granularity string

const (
	Hourly  Granularity = "hourly"
	Daily   Granularity = "daily"
	Monthly Granularity = "monthly"
)

// Parameter identifies a meteorological parameter. The identifiers follow the
// usual station-data column names (temp, prcp, wspd, ...).
type Parameter string

const (
	ParamTemp     Parameter = "temp"
	ParamTempMin  Parameter = "tmin"
	ParamTempMax  Parameter = "tmax"
	ParamDewPoint Parameter = "dwpt"
	ParamHumidity Parameter = "rhum"
	ParamPrecip   Parameter = "prcp"
	ParamSnowDpth Parameter = "snwd"
	ParamWindDir  Parameter = "wdir"
	ParamWindSpd  Parameter = "wspd"
	ParamPressure Parameter = "pres"
	ParamCondCode Parameter = "coco"
)

// Observation is a single reported value for one (station, parameter, timestamp)
// triple. Source names the originating provider and is passed through untouched
// into provenance.
type Observation struct {
	Value  float64
	Source string
}

// Series is an ordered mapping from timestamp to Observation, scoped to one
// station and one parameter. Absence of a timestamp means the station did not
// report; absence is expected, never an error.
type Series struct {
	obs map[int64]Observation // keyed by unix seconds, UTC
}

// NewSeries returns an empty Series.
func NewSeries() Series {
	return Series{obs: make(map[int64]Observation)}
}

// Set records an observation at the given timestamp, replacing any previous one.
func (s Series) Set(t time.Time, o Observation) {
	s.obs[t.UTC().Unix()] = o
}

// At returns the observation at the given timestamp, if any.
func (s Series) At(t time.Time) (Observation, bool) {
	o, ok := s.obs[t.UTC().Unix()]
	return o, ok
}

// Len returns the number of observations in the series.
func (s Series) Len() int {
	return len(s.obs)
}

// Times returns the timestamps of the series in ascending order.
func (s Series) Times() []time.Time {
	keys := make([]int64, 0, len(s.obs))
	for k := range s.obs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	times := make([]time.Time, len(keys))
	for i, k := range keys {
		times[i] = time.Unix(k, 0).UTC()
	}
	return times
}

// Aligned is the result of merging multiple stations' series for one parameter
// onto a shared, sorted timestamp axis. For each timestamp it exposes exactly
// the stations that reported there.
type Aligned struct {
	// Times is the sorted union of all timestamps across the input series.
	Times []time.Time

	byStation map[string]Series
	stations  []string
}

// Align builds the sorted union axis over the given per-station series.
// An input with zero stations or zero observations yields an empty result.
func Align(perStation map[string]Series) Aligned {
	union := make(map[int64]struct{})
	stations := make([]string, 0, len(perStation))
	for id, s := range perStation {
		stations = append(stations, id)
		for k := range s.obs {
			union[k] = struct{}{}
		}
	}
	sort.Strings(stations)

	keys := make([]int64, 0, len(union))
	for k := range union {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	times := make([]time.Time, len(keys))
	for i, k := range keys {
		times[i] = time.Unix(k, 0).UTC()
	}

	return Aligned{Times: times, byStation: perStation, stations: stations}
}

// Stations returns the station ids of the aligned input in ascending order.
func (a Aligned) Stations() []string {
	return a.stations
}

// At returns the station id and observation of every station reporting at the
// given timestamp, following the sorted station order. Stations without data
// at the timestamp are simply absent, never represented as zero.
func (a Aligned) At(t time.Time) ([]string, []Observation) {
	var ids []string
	var obs []Observation
	for _, id := range a.stations {
		if o, ok := a.byStation[id].At(t); ok {
			ids = append(ids, id)
			obs = append(obs, o)
		}
	}
	return ids, obs
}
