package indicators

import (
	"math"
	"sort"
)

// Percentile computes the empirical percentile (0-100) of value within
// series, ignoring NaNs: the fraction of non-NaN observations at or below
// value, expressed as a percentage. Used to bucket ATR and MA-spread values
// against their own history (spec.md §4.5, §4.6).
func Percentile(series []float64, value float64) float64 {
	clean := make([]float64, 0, len(series))
	for _, v := range series {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return 0
	}
	sort.Float64s(clean)
	idx := sort.SearchFloat64s(clean, value)
	// idx is the count of elements strictly less than value; include ties.
	count := idx
	for count < len(clean) && clean[count] <= value {
		count++
	}
	return 100 * float64(count) / float64(len(clean))
}
