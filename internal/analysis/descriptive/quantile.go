package descriptive

import (
	"math"
	"sort"
)

// Quantile returns the p-quantile of sorted data by linear interpolation
// between order statistics at h = (n-1)p. sorted must be ascending and
// non-empty; p is clamped to [0, 1].
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	h := float64(n-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i >= n-1 {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Sturges returns the histogram bin count ceil(1 + 3.322*log10(n)), or 10
// when there is no data.
func Sturges(n int) int {
	if n <= 0 {
		return 10
	}
	return int(math.Ceil(1 + 3.322*math.Log10(float64(n))))
}

func sortedCopy(xs []float64) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	sort.Float64s(out)
	return out
}

// fence returns the 1.5*IQR outlier bounds
func fence(sorted []float64) (lower, upper float64) {
	q1 := Quantile(sorted, 0.25)
	q3 := Quantile(sorted, 0.75)
	iqr := q3 - q1
	return q1 - 1.5*iqr, q3 + 1.5*iqr
}
