// Package optimizer picks the best flight, the best hotel and a greedy set of
// daily activities for a trip under a user-tunable cost/time trade-off.
//
// Everything here is pure and synchronous: callers hand over fully
// materialized candidate lists and get back a complete itinerary or an error.
// Identical inputs always produce an identical itinerary.
package optimizer

import "math"

// Direction tells Normalize which end of the range is desirable.
type Direction int

const (
	// Minimize scores the smallest value 1.0 (prices, durations).
	Minimize Direction = iota
	// Maximize scores the largest value 1.0 (ratings).
	Maximize
)

func (d Direction) String() string {
	if d == Maximize {
		return "maximize"
	}
	return "minimize"
}

// Normalize maps values onto [0,1] so that the most desirable value scores 1.0.
// The output is parallel to the input. A list without spread maps to all 1.0.
//
// Non-finite values are the "missing field" sentinel: they score 0.0 and do
// not stretch the range of the finite values.
func Normalize(values []float64, dir Direction) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	finite := 0
	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		finite++
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	for i, v := range values {
		switch {
		case finite == 0:
			// every value is the sentinel: nothing to tell them apart
			out[i] = 1
		case !isFinite(v):
			out[i] = 0
		case hi == lo:
			out[i] = 1
		case dir == Maximize:
			out[i] = (v - lo) / (hi - lo)
		default:
			out[i] = 1 - (v-lo)/(hi-lo)
		}
	}
	return out
}

// Combine is the weighted sum of two normalized scores.
func Combine(primary, secondary, primaryWeight, secondaryWeight float64) float64 {
	return primaryWeight*primary + secondaryWeight*secondary
}

// bestIndex returns the argmax of the combined scores. Strict comparison
// keeps the first of several equal scores.
func bestIndex(primary, secondary []float64, primaryWeight, secondaryWeight float64) int {
	best, bestScore := 0, math.Inf(-1)
	for i := range primary {
		score := Combine(primary[i], secondary[i], primaryWeight, secondaryWeight)
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
