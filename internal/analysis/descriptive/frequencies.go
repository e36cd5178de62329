package descriptive

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"statdesc/domain/stats"
	"statdesc/domain/table"

	"gonum.org/v1/gonum/floats"
)

const (
	// AutoBinThreshold is the distinct-value count above which a numeric
	// column is binned when no explicit bin count is given
	AutoBinThreshold = 20
	// DefaultBins is the bin count used by automatic binning
	DefaultBins = 10
)

type frequencyConfig struct {
	bins      int
	noBinning bool
	order     []string
}

// FrequencyOption customizes Frequencies
type FrequencyOption func(*frequencyConfig)

// WithBins groups numeric data into k equal-width bins
func WithBins(k int) FrequencyOption {
	return func(c *frequencyConfig) { c.bins = k }
}

// WithoutBinning keeps one row per distinct value regardless of cardinality
func WithoutBinning() FrequencyOption {
	return func(c *frequencyConfig) { c.noBinning = true }
}

// WithCategoryOrder lays rows out in the given label order, including
// categories that never occur. Values outside the order are ignored.
func WithCategoryOrder(labels []string) FrequencyOption {
	return func(c *frequencyConfig) { c.order = labels }
}

// Frequencies builds the absolute/relative/cumulative frequency table of
// the cleaned column.
//
// Rows are ascending by value for numeric and binned output, by descending
// count (ties by ascending label) for categorical output, and in the given
// order when WithCategoryOrder is used.
func Frequencies(col table.Column, opts ...FrequencyOption) stats.FrequencyTable {
	cfg := frequencyConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.order != nil {
		return orderedFrequencies(col, cfg.order)
	}

	present := col.Present()
	if len(present) == 0 {
		return stats.NewFrequencyTable()
	}

	if col.IsNumeric() && !cfg.noBinning {
		bins := cfg.bins
		if bins <= 0 && col.Distinct() > AutoBinThreshold {
			bins = DefaultBins
		}
		if bins > 0 {
			return binnedFrequencies(col.Floats(), bins)
		}
	}

	return valueFrequencies(present, col.IsNumeric())
}

type valueCount struct {
	value table.Value
	count int
}

func countValues(present []table.Value) []valueCount {
	index := make(map[string]int)
	var counts []valueCount
	for _, v := range present {
		if i, ok := index[v.Key()]; ok {
			counts[i].count++
			continue
		}
		index[v.Key()] = len(counts)
		counts = append(counts, valueCount{value: v, count: 1})
	}
	return counts
}

func valueFrequencies(present []table.Value, numeric bool) stats.FrequencyTable {
	counts := countValues(present)
	if numeric {
		sort.Slice(counts, func(i, j int) bool {
			return counts[i].value.Less(counts[j].value)
		})
	} else {
		sort.Slice(counts, func(i, j int) bool {
			if counts[i].count != counts[j].count {
				return counts[i].count > counts[j].count
			}
			return counts[i].value.Less(counts[j].value)
		})
	}

	t := stats.NewFrequencyTable()
	t.Total = len(present)
	for _, c := range counts {
		v := c.value
		t.Rows = append(t.Rows, stats.FrequencyRow{
			Label:    v.String(),
			Value:    &v,
			Absolute: c.count,
		})
	}
	fillRelative(&t)
	return t
}

func orderedFrequencies(col table.Column, order []string) stats.FrequencyTable {
	position := make(map[string]int, len(order))
	for i, label := range order {
		if _, dup := position[label]; !dup {
			position[label] = i
		}
	}

	counts := make([]int, len(order))
	total := 0
	for _, v := range col.Present() {
		if i, ok := position[v.String()]; ok {
			counts[i]++
			total++
		}
	}

	t := stats.NewFrequencyTable()
	if total == 0 {
		return t
	}
	t.Total = total
	for i, label := range order {
		if position[label] != i {
			continue
		}
		v := table.Text(label)
		t.Rows = append(t.Rows, stats.FrequencyRow{
			Label:    label,
			Value:    &v,
			Absolute: counts[i],
		})
	}
	fillRelative(&t)
	return t
}

// binnedFrequencies uses right-closed (lo, hi] intervals over [min, max];
// the lowest edge is pulled down by 0.1% of the range so min falls in the
// first bin. A constant column gets a 0.1% span on both sides.
func binnedFrequencies(xs []float64, k int) stats.FrequencyTable {
	edges := binEdges(floats.Min(xs), floats.Max(xs), k)
	counts := make([]int, k)
	for _, x := range xs {
		i := sort.SearchFloat64s(edges, x) - 1
		if i < 0 {
			i = 0
		}
		if i >= k {
			i = k - 1
		}
		counts[i]++
	}

	t := stats.NewFrequencyTable()
	t.Binned = true
	t.Total = len(xs)
	decimals := edgeDecimals((edges[k] - edges[0]) / float64(k))
	for i := 0; i < k; i++ {
		lo, hi := edges[i], edges[i+1]
		t.Rows = append(t.Rows, stats.FrequencyRow{
			Label:    fmt.Sprintf("(%s, %s]", formatEdge(lo, decimals), formatEdge(hi, decimals)),
			Lower:    stats.Float(lo),
			Upper:    stats.Float(hi),
			Absolute: counts[i],
		})
	}
	fillRelative(&t)
	return t
}

func binEdges(mn, mx float64, k int) []float64 {
	if mn == mx {
		pad := 0.001
		if mn != 0 {
			pad = 0.001 * math.Abs(mn)
		}
		mn, mx = mn-pad, mx+pad
	}
	edges := make([]float64, k+1)
	floats.Span(edges, mn, mx)
	if mn != mx {
		edges[0] -= (mx - mn) * 0.001
	}
	return edges
}

// edgeDecimals keeps four significant digits of the bin width, and at
// least three decimals, so neighbouring edges never print alike
func edgeDecimals(width float64) int {
	if width <= 0 || math.IsNaN(width) || math.IsInf(width, 0) {
		return 3
	}
	d := 3 - int(math.Floor(math.Log10(width)))
	if d < 3 {
		d = 3
	}
	if d > 15 {
		d = 15
	}
	return d
}

func formatEdge(f float64, decimals int) string {
	p := math.Pow(10, float64(decimals))
	return strconv.FormatFloat(math.Round(f*p)/p, 'f', -1, 64)
}

// fillRelative divides by the table total and accumulates in row order.
// The last cumulative value is pinned to 1 to absorb rounding drift.
func fillRelative(t *stats.FrequencyTable) {
	if t.Total == 0 {
		return
	}
	running := 0.0
	for i := range t.Rows {
		rel := float64(t.Rows[i].Absolute) / float64(t.Total)
		running += rel
		t.Rows[i].Relative = rel
		t.Rows[i].Cumulative = running
	}
	t.Rows[len(t.Rows)-1].Cumulative = 1
}
