// Package interp implements the spatial interpolation engine: it combines the
// series of multiple nearby stations into a single synthesized series for a
// geographic point, with per-timestamp, per-parameter provenance.
package interp

import (
	"point-weather/internal/timeseries"
)

// ParameterSpec holds the static properties of a parameter the engine consumes.
type ParameterSpec struct {
	// ElevationSensitive marks parameters subject to lapse-rate correction.
	ElevationSensitive bool

	// LapseRate is the signed rate of change per meter of elevation gain.
	// Only meaningful when ElevationSensitive is true.
	LapseRate float64

	// Categorical parameters (wind direction, condition code) are never
	// averaged; they always use nearest-neighbor selection so outputs stay
	// valid category values.
	Categorical bool

	// Precision is the number of decimals used when presenting merged values.
	// The engine itself never rounds.
	Precision int
}

// Config is the immutable configuration injected into the engine: the
// parameter table plus the IDW exponent. It replaces any notion of a global
// registry.
type Config struct {
	// Power is the IDW distance exponent.
	Power float64

	params map[timeseries.Parameter]ParameterSpec
}

// Standard-atmosphere temperature lapse rate. The sign follows the correction
// formula value + rate*(stationElev - targetElev): a station below the target
// reads warmer than the target would, so the rate is negative.
const tempLapseRate = -0.0065 // °C per meter

// DefaultConfig returns the stock parameter table: the temperature family is
// elevation-sensitive at the standard-atmosphere lapse rate, wind direction
// and condition code are categorical, everything else is combined as-is.
func DefaultConfig() Config {
	return Config{
		Power: 2.0,
		params: map[timeseries.Parameter]ParameterSpec{
			timeseries.ParamTemp:     {ElevationSensitive: true, LapseRate: tempLapseRate, Precision: 1},
			timeseries.ParamTempMin:  {ElevationSensitive: true, LapseRate: tempLapseRate, Precision: 1},
			timeseries.ParamTempMax:  {ElevationSensitive: true, LapseRate: tempLapseRate, Precision: 1},
			timeseries.ParamDewPoint: {ElevationSensitive: true, LapseRate: tempLapseRate, Precision: 1},
			timeseries.ParamHumidity: {Precision: 0},
			timeseries.ParamPrecip:   {Precision: 1},
			timeseries.ParamSnowDpth: {Precision: 0},
			timeseries.ParamWindDir:  {Categorical: true, Precision: 0},
			timeseries.ParamWindSpd:  {Precision: 1},
			timeseries.ParamPressure: {Precision: 1},
			timeseries.ParamCondCode: {Categorical: true, Precision: 0},
		},
	}
}

// Spec returns the spec for a parameter. Unknown parameters get the zero spec:
// not elevation-sensitive, not categorical, one decimal of precision.
func (c Config) Spec(p timeseries.Parameter) ParameterSpec {
	if s, ok := c.params[p]; ok {
		return s
	}
	return ParameterSpec{Precision: 1}
}
