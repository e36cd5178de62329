package stats

import (
	"encoding/json"

	"statdesc/domain/table"
)

// Metric names are the stable keys consumed by chart and report generators
const (
	MetricFrequencies     = "frequencies"
	MetricCentralTendency = "central_tendency"
	MetricSeparators      = "separators"
	MetricDispersion      = "dispersion"
	MetricMode            = "mode"
	MetricProportions     = "proportions"
	MetricMedian          = "median"
)

// FrequencyColumns names the columns of every frequency table, empty or not
var FrequencyColumns = []string{"value", "absolute", "relative", "cumulative"}

// FrequencyRow is one bucket of a frequency table. Value is set for
// distinct-value rows; Lower/Upper are set for binned rows.
type FrequencyRow struct {
	Label      string       `json:"value"`
	Value      *table.Value `json:"-"`
	Lower      *float64     `json:"lower,omitempty"`
	Upper      *float64     `json:"upper,omitempty"`
	Absolute   int          `json:"absolute"`
	Relative   float64      `json:"relative"`
	Cumulative float64      `json:"cumulative"`
}

// FrequencyTable holds absolute, relative and cumulative frequencies
type FrequencyTable struct {
	Columns []string       `json:"columns"`
	Binned  bool           `json:"binned"`
	Total   int            `json:"total"`
	Rows    []FrequencyRow `json:"rows"`
}

// NewFrequencyTable returns an empty table with the standard columns
func NewFrequencyTable() FrequencyTable {
	cols := make([]string, len(FrequencyColumns))
	copy(cols, FrequencyColumns)
	return FrequencyTable{Columns: cols, Rows: []FrequencyRow{}}
}

// IsEmpty reports whether the table has no rows
func (t FrequencyTable) IsEmpty() bool { return len(t.Rows) == 0 }

// CentralTendency holds mean, median and the (possibly multi-valued) mode.
// Mean and Median are nil for non-numeric or empty input.
type CentralTendency struct {
	Mean   *float64      `json:"mean"`
	Median *float64      `json:"median"`
	Mode   []table.Value `json:"mode"`
}

// Separators holds quantile cut points keyed Q1..Q3, D1..D9 and P10..P90
type Separators struct {
	Quartiles   map[string]float64 `json:"quartiles"`
	Deciles     map[string]float64 `json:"deciles"`
	Percentiles map[string]float64 `json:"percentiles"`
}

// IsEmpty reports whether no separator was computed
func (s Separators) IsEmpty() bool {
	return len(s.Quartiles) == 0 && len(s.Deciles) == 0 && len(s.Percentiles) == 0
}

// Dispersion holds spread measures; every member is nil when undefined
type Dispersion struct {
	Range                  *float64 `json:"range"`
	Variance               *float64 `json:"variance"`
	StdDev                 *float64 `json:"std_dev"`
	IQR                    *float64 `json:"iqr"`
	CoefficientOfVariation *float64 `json:"coefficient_of_variation"`
}

// AnalysisResult maps metric names to computed values. A nil member was not
// computed by the strategy that produced the result.
type AnalysisResult struct {
	Frequencies     *FrequencyTable   `json:"frequencies,omitempty"`
	CentralTendency *CentralTendency  `json:"central_tendency,omitempty"`
	Separators      *Separators       `json:"separators,omitempty"`
	Dispersion      *Dispersion       `json:"dispersion,omitempty"`
	Mode            []table.Value     `json:"mode,omitempty"`
	Proportions     map[string]string `json:"proportions,omitempty"`
	Median          *table.Value      `json:"median,omitempty"`
}

// Metrics lists the metric names present in the result, in key order
func (r AnalysisResult) Metrics() []string {
	var out []string
	if r.Frequencies != nil {
		out = append(out, MetricFrequencies)
	}
	if r.CentralTendency != nil {
		out = append(out, MetricCentralTendency)
	}
	if r.Separators != nil {
		out = append(out, MetricSeparators)
	}
	if r.Dispersion != nil {
		out = append(out, MetricDispersion)
	}
	if r.Mode != nil {
		out = append(out, MetricMode)
	}
	if r.Proportions != nil {
		out = append(out, MetricProportions)
	}
	if r.Median != nil {
		out = append(out, MetricMedian)
	}
	return out
}

// Has reports whether the named metric was computed
func (r AnalysisResult) Has(metric string) bool {
	for _, m := range r.Metrics() {
		if m == metric {
			return true
		}
	}
	return false
}

// Clone returns a deep copy that shares no maps, slices or pointers with r.
// Nil members stay nil and empty ones stay empty.
func (r AnalysisResult) Clone() AnalysisResult {
	out := AnalysisResult{
		Mode:        cloneSlice(r.Mode),
		Median:      cloneValue(r.Median),
		Proportions: cloneMap(r.Proportions),
	}
	if r.Frequencies != nil {
		ft := *r.Frequencies
		ft.Columns = cloneSlice(ft.Columns)
		ft.Rows = cloneSlice(ft.Rows)
		for i := range ft.Rows {
			ft.Rows[i].Value = cloneValue(ft.Rows[i].Value)
			ft.Rows[i].Lower = cloneFloat(ft.Rows[i].Lower)
			ft.Rows[i].Upper = cloneFloat(ft.Rows[i].Upper)
		}
		out.Frequencies = &ft
	}
	if r.CentralTendency != nil {
		out.CentralTendency = &CentralTendency{
			Mean:   cloneFloat(r.CentralTendency.Mean),
			Median: cloneFloat(r.CentralTendency.Median),
			Mode:   cloneSlice(r.CentralTendency.Mode),
		}
	}
	if r.Separators != nil {
		out.Separators = &Separators{
			Quartiles:   cloneMap(r.Separators.Quartiles),
			Deciles:     cloneMap(r.Separators.Deciles),
			Percentiles: cloneMap(r.Separators.Percentiles),
		}
	}
	if r.Dispersion != nil {
		out.Dispersion = &Dispersion{
			Range:                  cloneFloat(r.Dispersion.Range),
			Variance:               cloneFloat(r.Dispersion.Variance),
			StdDev:                 cloneFloat(r.Dispersion.StdDev),
			IQR:                    cloneFloat(r.Dispersion.IQR),
			CoefficientOfVariation: cloneFloat(r.Dispersion.CoefficientOfVariation),
		}
	}
	return out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	return Float(*f)
}

func cloneValue(v *table.Value) *table.Value {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// MarshalJSON emits only computed metrics. An empty mode computed on an
// empty column is kept as [] rather than dropped.
func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{})
	if r.Frequencies != nil {
		out[MetricFrequencies] = r.Frequencies
	}
	if r.CentralTendency != nil {
		out[MetricCentralTendency] = r.CentralTendency
	}
	if r.Separators != nil {
		out[MetricSeparators] = r.Separators
	}
	if r.Dispersion != nil {
		out[MetricDispersion] = r.Dispersion
	}
	if r.Mode != nil {
		out[MetricMode] = r.Mode
	}
	if r.Proportions != nil {
		out[MetricProportions] = r.Proportions
	}
	if r.Median != nil {
		out[MetricMedian] = r.Median
	}
	return json.Marshal(out)
}

// VariableSummary describes one variable of a dataset
type VariableSummary struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Total    int    `json:"total"`
	Missing  int    `json:"missing"`
	Distinct int    `json:"distinct"`
}

// DatasetSummary aggregates per-variable summaries
type DatasetSummary struct {
	Name          string            `json:"name"`
	VariableCount int               `json:"variable_count"`
	RecordCount   int               `json:"record_count"`
	Variables     []VariableSummary `json:"variables"`
}

// Float returns a pointer to f, for optional metric members
func Float(f float64) *float64 {
	return &f
}
