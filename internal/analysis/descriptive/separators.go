package descriptive

import (
	"fmt"

	"statdesc/domain/stats"
	"statdesc/domain/table"
)

// Separators computes quartiles, deciles and percentiles (10th to 90th in
// steps of 10). Non-numeric or empty columns yield empty maps.
func Separators(col table.Column) stats.Separators {
	result := stats.Separators{
		Quartiles:   map[string]float64{},
		Deciles:     map[string]float64{},
		Percentiles: map[string]float64{},
	}
	if !col.IsNumeric() {
		return result
	}

	sorted := sortedCopy(col.Floats())
	result.Quartiles["Q1"] = Quantile(sorted, 0.25)
	result.Quartiles["Q2"] = Quantile(sorted, 0.50)
	result.Quartiles["Q3"] = Quantile(sorted, 0.75)

	for i := 1; i <= 9; i++ {
		result.Deciles[fmt.Sprintf("D%d", i)] = Quantile(sorted, float64(i)/10)
	}
	for i := 10; i < 100; i += 10 {
		result.Percentiles[fmt.Sprintf("P%d", i)] = Quantile(sorted, float64(i)/100)
	}
	return result
}
