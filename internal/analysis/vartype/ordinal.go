package vartype

import (
	"sort"

	"statdesc/domain/stats"
	"statdesc/domain/table"
	"statdesc/internal/analysis/descriptive"
)

// OrdinalType is a categorical variable with an explicit category order.
// Without an order it analyzes exactly like NominalType.
type OrdinalType struct {
	order []string
}

// NewOrdinalType copies the ordering; nil or empty means no ordering
func NewOrdinalType(order []string) OrdinalType {
	if len(order) == 0 {
		return OrdinalType{}
	}
	cp := make([]string, len(order))
	copy(cp, order)
	return OrdinalType{order: cp}
}

func (OrdinalType) Kind() Kind   { return Ordinal }
func (OrdinalType) Name() string { return "Ordinal" }

// Order returns a copy of the category ordering
func (o OrdinalType) Order() []string {
	if o.order == nil {
		return nil
	}
	cp := make([]string, len(o.order))
	copy(cp, o.order)
	return cp
}

// IsApplicable is true once an ordering was supplied
func (o OrdinalType) IsApplicable(table.Column) bool {
	return o.order != nil
}

// Analyze reports frequencies in category order, the mode and the median
// category. Values outside the ordering are left out of every metric.
func (o OrdinalType) Analyze(col table.Column) stats.AnalysisResult {
	if o.order == nil {
		return NominalType{}.Analyze(col)
	}

	codes := o.codes(col)
	inOrder := make([]table.Value, len(codes))
	for i, c := range codes {
		inOrder[i] = table.Text(o.order[c])
	}
	filtered := table.NewColumn(col.Name(), inOrder)

	freq := descriptive.Frequencies(col, descriptive.WithCategoryOrder(o.order))
	result := stats.AnalysisResult{
		Frequencies: &freq,
		Mode:        descriptive.Mode(filtered),
	}
	if median, ok := o.median(codes); ok {
		result.Median = &median
	}
	return result
}

// codes maps present values to their position in the ordering
func (o OrdinalType) codes(col table.Column) []int {
	position := make(map[string]int, len(o.order))
	for i, label := range o.order {
		if _, dup := position[label]; !dup {
			position[label] = i
		}
	}
	var codes []int
	for _, v := range col.Present() {
		if i, ok := position[v.String()]; ok {
			codes = append(codes, i)
		}
	}
	return codes
}

// median takes the median of the integer codes, truncates it to a rank and
// maps it back to its label
func (o OrdinalType) median(codes []int) (table.Value, bool) {
	if len(codes) == 0 {
		return table.Value{}, false
	}
	sorted := make([]float64, len(codes))
	for i, c := range codes {
		sorted[i] = float64(c)
	}
	sort.Float64s(sorted)
	rank := int(descriptive.Quantile(sorted, 0.5))
	return table.Text(o.order[rank]), true
}
