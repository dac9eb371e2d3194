package interp

import "point-weather/internal/timeseries"

// AdjustElevation corrects an elevation-sensitive value from the station's
// elevation to the target elevation using the parameter's lapse rate:
//
//	adjusted = value + rate * (stationElev - targetElev)
//
// It is a pure function and never fails: when the parameter is not
// elevation-sensitive, or either elevation is unknown, the value is returned
// unchanged. Correcting first keeps the weighting model elevation-agnostic.
func (c Config) AdjustElevation(value float64, stationElev, targetElev *float64, param timeseries.Parameter) float64 {
	spec := c.Spec(param)
	if !spec.ElevationSensitive || stationElev == nil || targetElev == nil {
		return value
	}
	return value + spec.LapseRate*(*stationElev-*targetElev)
}
