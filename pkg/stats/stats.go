// Package stats provides the numeric summaries used by the analyzers and
// the corpus statistics tool.
package stats

import "sort"

// Percentile returns the value at rank p*n/100 of an ascending slice,
// clamped to the last element. An empty slice yields 0.
func Percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

// Mean returns the arithmetic mean, or 0 for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Distribution describes a set of values.
type Distribution struct {
	Count  int     `json:"count" toon:"count"`
	Min    float64 `json:"min" toon:"min"`
	Max    float64 `json:"max" toon:"max"`
	Mean   float64 `json:"mean" toon:"mean"`
	Median float64 `json:"median" toon:"median"`
	P90    float64 `json:"p90" toon:"p90"`
}

// Describe summarizes values without modifying them.
func Describe(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return Distribution{
		Count:  len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Mean:   Mean(sorted),
		Median: Percentile(sorted, 50),
		P90:    Percentile(sorted, 90),
	}
}
