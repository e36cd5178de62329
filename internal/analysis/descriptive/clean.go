package descriptive

import (
	"statdesc/domain/table"
)

// CleanOptions selects the optional cleaning steps
type CleanOptions struct {
	RemoveDuplicates bool `json:"remove_duplicates" mapstructure:"remove_duplicates" yaml:"remove_duplicates"`
	RemoveOutliers   bool `json:"remove_outliers" mapstructure:"remove_outliers" yaml:"remove_outliers"`
}

// Clean drops missing values, then optionally exact duplicates (first
// occurrence kept), then optionally numeric values outside the 1.5*IQR
// fence. The fence is computed after duplicates are removed.
func Clean(col table.Column, opts CleanOptions) table.Column {
	values := col.Present()

	if opts.RemoveDuplicates {
		seen := make(map[string]struct{}, len(values))
		unique := values[:0]
		for _, v := range values {
			if _, ok := seen[v.Key()]; ok {
				continue
			}
			seen[v.Key()] = struct{}{}
			unique = append(unique, v)
		}
		values = unique
	}

	out := table.NewColumn(col.Name(), values)
	if !opts.RemoveOutliers || !out.IsNumeric() {
		return out
	}

	lower, upper := fence(sortedCopy(out.Floats()))
	kept := make([]table.Value, 0, len(values))
	for _, v := range values {
		if v.Num >= lower && v.Num <= upper {
			kept = append(kept, v)
		}
	}
	return table.NewColumn(col.Name(), kept)
}
