package timeseries

import "time"

// SourceWeight records one station's contribution to a merged value: its id,
// its normalized combination weight and the provider the observation came from.
type SourceWeight struct {
	StationID string  `json:"station"`
	Weight    float64 `json:"weight"`
	Source    string  `json:"source"`
}

// Row is one timestamp of a MergedSeries. A parameter missing from Values was
// not reported by any station at that time; it is absent, not zero.
type Row struct {
	Time    time.Time                    `json:"time"`
	Values  map[Parameter]float64        `json:"values"`
	Sources map[Parameter][]SourceWeight `json:"sources,omitempty"`
}

// MergedSeries is the engine's output: time-ordered rows, one merged value per
// parameter per timestamp, plus per-value provenance. Immutable once produced.
type MergedSeries struct {
	Granularity Granularity `json:"granularity"`
	Rows        []Row       `json:"rows"`
}

// Empty reports whether the series holds no rows at all.
func (m MergedSeries) Empty() bool {
	return len(m.Rows) == 0
}
