// Package dataset binds a loaded table to one analyzable Variable per
// column and runs analyses over them.
package dataset

import (
	"context"
	"fmt"
	"sort"

	"statdesc/domain/stats"
	"statdesc/domain/table"
	"statdesc/internal"
	"statdesc/internal/analysis/descriptive"
	"statdesc/internal/analysis/vartype"
	"statdesc/internal/errors"
	"statdesc/ports"

	"golang.org/x/sync/errgroup"
)

// Dataset is an ordered collection of variables over a source table
type Dataset struct {
	name      string
	source    *table.Table
	variables []*Variable
	logger    *internal.Logger
}

type options struct {
	types     map[string]vartype.Kind
	orderings map[string][]string
	cleaning  descriptive.CleanOptions
	logger    *internal.Logger
}

// Option configures New
type Option func(*options)

// WithTypeOverrides forces the kind of the named columns
func WithTypeOverrides(types map[string]vartype.Kind) Option {
	return func(o *options) {
		for name, k := range types {
			o.types[name] = k
		}
	}
}

// WithOrderings supplies category orderings. A column with an ordering and
// no explicit type is treated as ordinal.
func WithOrderings(orderings map[string][]string) Option {
	return func(o *options) {
		for name, order := range orderings {
			o.orderings[name] = order
		}
	}
}

// WithCleaning enables duplicate and outlier removal before analysis
func WithCleaning(opts descriptive.CleanOptions) Option {
	return func(o *options) { o.cleaning = opts }
}

// WithLogger sets the logger; the default discards output
func WithLogger(logger *internal.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New creates one variable per column, in column order. Types are inferred
// unless overridden. Overrides or orderings naming unknown columns are
// rejected with a configuration error.
func New(name string, tbl *table.Table, opts ...Option) (*Dataset, error) {
	if tbl == nil {
		return nil, errors.InvalidInput("dataset has no table")
	}
	o := options{
		types:     make(map[string]vartype.Kind),
		orderings: make(map[string][]string),
		logger:    internal.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := checkColumns(tbl, o); err != nil {
		return nil, err
	}

	ds := &Dataset{name: name, source: tbl, logger: o.logger}
	for _, col := range tbl.Columns {
		cleaned := descriptive.Clean(col, o.cleaning)

		strategy, err := resolveStrategy(col.Name(), o)
		if err != nil {
			return nil, err
		}
		v := NewVariable(col, cleaned, strategy)
		o.logger.Debug("[Dataset] %s: column %q typed as %s (%d values, %d missing)",
			name, col.Name(), v.Type().Name(), col.Len(), col.MissingCount())
		ds.variables = append(ds.variables, v)
	}

	o.logger.Info("[Dataset] %s: loaded %d variables over %d records", name, len(ds.variables), tbl.Rows())
	return ds, nil
}

// Load reads a table from the provider and builds a dataset over it
func Load(ctx context.Context, name string, provider ports.TableProvider, opts ...Option) (*Dataset, error) {
	tbl, err := provider.ReadTable(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read table")
	}
	return New(name, tbl, opts...)
}

func checkColumns(tbl *table.Table, o options) error {
	known := make(map[string]struct{}, len(tbl.Columns))
	for _, c := range tbl.Columns {
		known[c.Name()] = struct{}{}
	}
	var unknown []string
	for name := range o.types {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	for name := range o.orderings {
		if _, ok := known[name]; !ok {
			if _, dup := o.types[name]; !dup {
				unknown = append(unknown, name)
			}
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return errors.ConfigInvalid(fmt.Sprintf("unknown columns in type configuration: %v", unknown))
	}
	return nil
}

// resolveStrategy returns nil when the column type should be inferred
func resolveStrategy(column string, o options) (vartype.Strategy, error) {
	order, hasOrder := o.orderings[column]
	kind, hasKind := o.types[column]
	switch {
	case hasKind:
		strategy, err := vartype.StrategyFor(kind, order)
		if err != nil {
			return nil, err
		}
		if hasOrder && kind != vartype.Ordinal {
			return nil, errors.ConfigInvalid(fmt.Sprintf("column %q: a category order needs type %s, not %s", column, vartype.Ordinal, kind))
		}
		return strategy, nil
	case hasOrder:
		return vartype.NewOrdinalType(order), nil
	default:
		return nil, nil
	}
}

func (d *Dataset) Name() string { return d.name }

// Source returns the table the dataset was built from
func (d *Dataset) Source() *table.Table { return d.source }

// Variables returns the variables in column order
func (d *Dataset) Variables() []*Variable {
	out := make([]*Variable, len(d.variables))
	copy(out, d.variables)
	return out
}

// Variable returns the first variable with the given name
func (d *Dataset) Variable(name string) (*Variable, bool) {
	for _, v := range d.variables {
		if v.Name() == name {
			return v, true
		}
	}
	return nil, false
}

// Analyze runs (or reuses) the analysis of the named variable
func (d *Dataset) Analyze(name string) (stats.AnalysisResult, error) {
	v, ok := d.Variable(name)
	if !ok {
		return stats.AnalysisResult{}, errors.NotFound(fmt.Sprintf("variable %q", name))
	}
	return v.Analyze(false), nil
}

// Summary describes every variable and the record count
func (d *Dataset) Summary() stats.DatasetSummary {
	summary := stats.DatasetSummary{
		Name:          d.name,
		VariableCount: len(d.variables),
		RecordCount:   d.source.Rows(),
		Variables:     make([]stats.VariableSummary, 0, len(d.variables)),
	}
	for _, v := range d.variables {
		summary.Variables = append(summary.Variables, v.Summary())
	}
	return summary
}

// Analysis is the result of one variable inside AnalyzeAll
type Analysis struct {
	Name     string               `json:"name"`
	Kind     vartype.Kind         `json:"kind"`
	TypeName string               `json:"type"`
	Result   stats.AnalysisResult `json:"result"`
}

// AnalyzeAll analyzes every variable with at most workers goroutines and
// returns the results in column order. workers <= 0 means one per variable.
func (d *Dataset) AnalyzeAll(ctx context.Context, workers int) ([]Analysis, error) {
	results := make([]Analysis, len(d.variables))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, v := range d.variables {
		i, v := i, v
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			strategy := v.Type()
			results[i] = Analysis{
				Name:     v.Name(),
				Kind:     strategy.Kind(),
				TypeName: strategy.Name(),
				Result:   v.Analyze(false),
			}
			d.logger.Trace("[Dataset] analyzed %q as %s", v.Name(), strategy.Name())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "dataset analysis interrupted")
	}
	return results, nil
}
