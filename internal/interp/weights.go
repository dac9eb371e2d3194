package interp

import (
	"fmt"
	"math"
)

// Method selects the weighting strategy for a request.
type Method string

const (
	MethodNearest Method = "nearest"
	MethodIDW     Method = "idw"
)

// ParseMethod validates a method string.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodNearest:
		return MethodNearest, nil
	case MethodIDW:
		return MethodIDW, nil
	}
	return "", fmt.Errorf("unknown interpolation method %q", s)
}

// Candidate is one station available at a timestamp, with its precomputed
// distance to the target point.
type Candidate struct {
	StationID string
	Distance  float64 // meters
}

// Strategy turns the stations available at a timestamp into normalized
// combination weights. Returned weights are in [0,1] and sum to 1; an empty
// input yields an empty map, signalling "no value" rather than zero.
type Strategy interface {
	Weights(available []Candidate) map[string]float64
}

// NewStrategy returns the strategy for a method. The power exponent only
// applies to IDW.
func NewStrategy(method Method, power float64) (Strategy, error) {
	switch method {
	case MethodNearest:
		return nearestStrategy{}, nil
	case MethodIDW:
		if power <= 0 {
			power = 2.0
		}
		return idwStrategy{power: power}, nil
	}
	return nil, fmt.Errorf("unknown interpolation method %q", method)
}

// nearestStrategy gives full weight to the closest available station.
type nearestStrategy struct{}

func (nearestStrategy) Weights(available []Candidate) map[string]float64 {
	best, ok := nearest(available)
	if !ok {
		return map[string]float64{}
	}
	return map[string]float64{best.StationID: 1}
}

// nearest selects the available candidate with the smallest distance,
// tie-breaking on the lower station id so selection is deterministic.
func nearest(available []Candidate) (Candidate, bool) {
	if len(available) == 0 {
		return Candidate{}, false
	}
	best := available[0]
	for _, c := range available[1:] {
		if c.Distance < best.Distance || (c.Distance == best.Distance && c.StationID < best.StationID) {
			best = c
		}
	}
	return best, true
}

// idwStrategy weights each available station by 1/distance^power, normalized
// to sum to 1.
type idwStrategy struct {
	power float64
}

func (s idwStrategy) Weights(available []Candidate) map[string]float64 {
	if len(available) == 0 {
		return map[string]float64{}
	}

	// A station at distance zero coincides with the point; inverse-distance
	// math would divide by zero, so the timestamp degenerates to
	// nearest-neighbor selection.
	for _, c := range available {
		if c.Distance == 0 {
			best, _ := nearest(available)
			return map[string]float64{best.StationID: 1}
		}
	}

	raw := make(map[string]float64, len(available))
	var total float64
	for _, c := range available {
		w := 1.0 / math.Pow(c.Distance, s.power)
		raw[c.StationID] = w
		total += w
	}

	// If every weight underflowed to zero the normalization below would turn
	// the merged value into 0/0; fall back to the nearest station instead.
	if total == 0 || math.IsInf(total, 0) || math.IsNaN(total) {
		best, _ := nearest(available)
		return map[string]float64{best.StationID: 1}
	}

	for id := range raw {
		raw[id] /= total
	}
	return raw
}
