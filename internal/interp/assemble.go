package interp

import (
	"math"
	"sort"
	"time"

	"point-weather/internal/timeseries"
)

// assemble unions the per-parameter results into time-ordered rows. A
// timestamp with data for one parameter but not another still appears, with
// the other parameter absent from that row. Pure assembly, no side effects.
func assemble(params []timeseries.Parameter, results []paramResult) []timeseries.Row {
	union := make(map[int64]struct{})
	for _, r := range results {
		for _, t := range r.times {
			union[t] = struct{}{}
		}
	}
	if len(union) == 0 {
		return nil
	}

	keys := make([]int64, 0, len(union))
	for k := range union {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	rowIdx := make(map[int64]int, len(keys))
	rows := make([]timeseries.Row, len(keys))
	for i, k := range keys {
		rowIdx[k] = i
		rows[i] = timeseries.Row{
			Time:    time.Unix(k, 0).UTC(),
			Values:  make(map[timeseries.Parameter]float64),
			Sources: make(map[timeseries.Parameter][]timeseries.SourceWeight),
		}
	}

	for pi, r := range results {
		param := params[pi]
		for i, t := range r.times {
			row := &rows[rowIdx[t]]
			row.Values[param] = r.values[i]
			row.Sources[param] = r.sources[i]
		}
	}

	return rows
}

// Round rounds a merged value to the parameter's display precision. The
// engine keeps exact values; presentation layers call this before emitting.
func (c Config) Round(value float64, param timeseries.Parameter) float64 {
	shift := math.Pow(10, float64(c.Spec(param).Precision))
	return math.Round(value*shift) / shift
}
