package dataset

import (
	"sync"

	"statdesc/domain/stats"
	"statdesc/domain/table"
	"statdesc/internal/analysis/heuristics"
	"statdesc/internal/analysis/vartype"
)

// Variable is one column of a dataset together with the strategy that
// analyzes it. The last analysis result is cached until the type changes.
type Variable struct {
	name    string
	raw     table.Column
	cleaned table.Column

	mu       sync.Mutex
	strategy vartype.Strategy
	cache    *stats.AnalysisResult
}

// NewVariable builds a variable over an already cleaned column. A nil
// strategy is replaced by the inferred one.
func NewVariable(raw, cleaned table.Column, strategy vartype.Strategy) *Variable {
	if strategy == nil {
		strategy = heuristics.InferStrategy(cleaned)
	}
	return &Variable{
		name:     raw.Name(),
		raw:      raw,
		cleaned:  cleaned,
		strategy: strategy,
	}
}

func (v *Variable) Name() string { return v.name }

// Column returns the column as loaded, missing values included
func (v *Variable) Column() table.Column { return v.raw }

// Cleaned returns the column the strategy analyzes
func (v *Variable) Cleaned() table.Column { return v.cleaned }

// Type returns the current strategy
func (v *Variable) Type() vartype.Strategy {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.strategy
}

// SetType swaps the strategy and drops any cached result
func (v *Variable) SetType(strategy vartype.Strategy) {
	if strategy == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.strategy = strategy
	v.cache = nil
}

// Analyze returns the cached result unless force is set or nothing has been
// computed yet. The lock is held during computation so a concurrent SetType
// can never be overwritten by a stale result.
func (v *Variable) Analyze(force bool) stats.AnalysisResult {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cache != nil && !force {
		return v.cache.Clone()
	}
	result := v.strategy.Analyze(v.cleaned)
	v.cache = &result
	return result.Clone()
}

// Summary reports counts over the loaded column
func (v *Variable) Summary() stats.VariableSummary {
	return stats.VariableSummary{
		Name:     v.name,
		Type:     v.Type().Name(),
		Total:    v.raw.Len(),
		Missing:  v.raw.MissingCount(),
		Distinct: v.raw.Distinct(),
	}
}
