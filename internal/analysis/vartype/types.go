package vartype

import (
	"fmt"
	"math"

	"statdesc/domain/stats"
	"statdesc/domain/table"
	"statdesc/internal/analysis/descriptive"
)

// BinaryType is a variable with exactly two categories
type BinaryType struct{}

func (BinaryType) Kind() Kind   { return Binary }
func (BinaryType) Name() string { return "Binary" }

func (BinaryType) IsApplicable(col table.Column) bool {
	return col.Distinct() == 2
}

// Analyze reports frequencies, mode and the share of each value as a
// percentage string
func (BinaryType) Analyze(col table.Column) stats.AnalysisResult {
	freq := descriptive.Frequencies(col)
	proportions := make(map[string]string, len(freq.Rows))
	for _, row := range freq.Rows {
		proportions[row.Label] = fmt.Sprintf("%.2f%%", row.Relative*100)
	}
	return stats.AnalysisResult{
		Frequencies: &freq,
		Mode:        descriptive.Mode(col),
		Proportions: proportions,
	}
}

// DiscreteType is a numeric variable taking integral values (counts)
type DiscreteType struct{}

func (DiscreteType) Kind() Kind   { return Discrete }
func (DiscreteType) Name() string { return "Discrete" }

func (DiscreteType) IsApplicable(col table.Column) bool {
	return col.IsNumeric() && allIntegral(col.Floats())
}

func (DiscreteType) Analyze(col table.Column) stats.AnalysisResult {
	return numericResult(col, descriptive.Frequencies(col, descriptive.WithoutBinning()))
}

// ContinuousType is a numeric variable over an interval
type ContinuousType struct{}

func (ContinuousType) Kind() Kind   { return Continuous }
func (ContinuousType) Name() string { return "Continuous" }

func (ContinuousType) IsApplicable(col table.Column) bool {
	return col.IsNumeric()
}

// Analyze bins frequencies with Sturges' rule
func (ContinuousType) Analyze(col table.Column) stats.AnalysisResult {
	bins := descriptive.Sturges(len(col.Present()))
	return numericResult(col, descriptive.Frequencies(col, descriptive.WithBins(bins)))
}

func numericResult(col table.Column, freq stats.FrequencyTable) stats.AnalysisResult {
	central := descriptive.CentralTendency(col)
	separators := descriptive.Separators(col)
	dispersion := descriptive.Dispersion(col)
	return stats.AnalysisResult{
		Frequencies:     &freq,
		CentralTendency: &central,
		Separators:      &separators,
		Dispersion:      &dispersion,
	}
}

// NominalType is a categorical variable without intrinsic order
type NominalType struct{}

func (NominalType) Kind() Kind   { return Nominal }
func (NominalType) Name() string { return "Nominal" }

func (NominalType) IsApplicable(col table.Column) bool {
	return !col.IsNumeric()
}

func (NominalType) Analyze(col table.Column) stats.AnalysisResult {
	freq := descriptive.Frequencies(col)
	return stats.AnalysisResult{
		Frequencies: &freq,
		Mode:        descriptive.Mode(col),
	}
}

func allIntegral(xs []float64) bool {
	for _, x := range xs {
		if math.Mod(x, 1) != 0 {
			return false
		}
	}
	return len(xs) > 0
}
