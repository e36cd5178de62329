package heuristics

import (
	"math"

	"statdesc/domain/table"
	"statdesc/internal/analysis/vartype"
)

// Infer classifies a column. Rules apply in strict priority order:
//
//  1. no present values: Nominal
//  2. exactly two distinct values: Binary
//  3. numeric and all integral: Discrete; numeric otherwise: Continuous
//  4. anything else: Nominal
//
// Ordinal is never inferred because it needs a caller-supplied ordering.
func Infer(col table.Column) vartype.Kind {
	cleaned := col.DropMissing()
	if cleaned.Len() == 0 {
		return vartype.Nominal
	}

	if cleaned.Distinct() == 2 {
		return vartype.Binary
	}

	if cleaned.IsNumeric() {
		for _, x := range cleaned.Floats() {
			if math.Mod(x, 1) != 0 {
				return vartype.Continuous
			}
		}
		return vartype.Discrete
	}

	return vartype.Nominal
}

// InferStrategy returns the strategy for the inferred kind
func InferStrategy(col table.Column) vartype.Strategy {
	return vartype.MustStrategy(Infer(col))
}
