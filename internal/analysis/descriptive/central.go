package descriptive

import (
	"sort"

	"statdesc/domain/stats"
	"statdesc/domain/table"

	mstats "github.com/montanaflynn/stats"
	gstat "gonum.org/v1/gonum/stat"
)

// CentralTendency computes mean, median and mode of the cleaned column.
// Mean and median are only defined for numeric columns.
func CentralTendency(col table.Column) stats.CentralTendency {
	result := stats.CentralTendency{Mode: Mode(col)}
	if !col.IsNumeric() {
		return result
	}

	xs := col.Floats()
	result.Mean = stats.Float(gstat.Mean(xs, nil))
	if median, err := mstats.Median(xs); err == nil {
		result.Median = stats.Float(median)
	}
	return result
}

// Mode returns every value tied for the highest count, ascending. An empty
// column yields an empty, non-nil slice.
func Mode(col table.Column) []table.Value {
	counts := countValues(col.Present())
	best := 0
	for _, c := range counts {
		if c.count > best {
			best = c.count
		}
	}

	modes := make([]table.Value, 0, 1)
	for _, c := range counts {
		if c.count == best {
			modes = append(modes, c.value)
		}
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i].Less(modes[j]) })
	return modes
}
