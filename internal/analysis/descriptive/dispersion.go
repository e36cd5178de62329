package descriptive

import (
	"math"

	"statdesc/domain/stats"
	"statdesc/domain/table"

	"gonum.org/v1/gonum/floats"
	gstat "gonum.org/v1/gonum/stat"
)

// Dispersion computes range, sample variance and standard deviation, IQR
// and the coefficient of variation in percent.
//
// Variance and standard deviation need at least two values. The coefficient
// of variation is nil when the mean is zero.
func Dispersion(col table.Column) stats.Dispersion {
	var result stats.Dispersion
	if !col.IsNumeric() {
		return result
	}

	xs := col.Floats()
	sorted := sortedCopy(xs)
	result.Range = stats.Float(floats.Max(xs) - floats.Min(xs))
	result.IQR = stats.Float(Quantile(sorted, 0.75) - Quantile(sorted, 0.25))

	if len(xs) < 2 {
		return result
	}

	mean, variance := gstat.MeanVariance(xs, nil)
	std := math.Sqrt(variance)
	result.Variance = stats.Float(variance)
	result.StdDev = stats.Float(std)
	if mean != 0 {
		result.CoefficientOfVariation = stats.Float(std / mean * 100)
	}
	return result
}
