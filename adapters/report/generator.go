// Package report renders analysis results as Markdown and HTML documents.
package report

import (
	"fmt"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"statdesc/domain/stats"
	"statdesc/domain/table"
	"statdesc/internal"
	"statdesc/internal/analysis/vartype"
)

const (
	// DefaultMaxTableRows caps the frequency rows printed per report
	DefaultMaxTableRows = 20
	// DatasetReportName is the file name of the dataset overview
	DatasetReportName = "DATASET_REPORT.md"

	dateLayout = "02/01/2006 15:04"
)

// VariableInput is everything a variable report shows
type VariableInput struct {
	Name     string
	Kind     vartype.Kind
	TypeName string
	Result   stats.AnalysisResult
	// Workbook and Sheet locate the variable's charts; both optional
	Workbook string
	Sheet    string
}

// Generator writes Markdown reports into one output directory
type Generator struct {
	outputDir    string
	maxTableRows int
	now          func() time.Time
	logger       *internal.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithMaxTableRows sets how many frequency rows are printed
func WithMaxTableRows(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxTableRows = n
		}
	}
}

// WithClock replaces time.Now for the report timestamp
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithLogger sets the generator logger
func WithLogger(logger *internal.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// NewGenerator creates a generator writing into outputDir
func NewGenerator(outputDir string, opts ...Option) *Generator {
	g := &Generator{
		outputDir:    outputDir,
		maxTableRows: DefaultMaxTableRows,
		now:          time.Now,
		logger:       internal.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// VariableReportName is the file name of a variable's report
func VariableReportName(variable string) string {
	return SafeFileName(variable) + "_report.md"
}

// SafeFileName replaces characters that are unsafe in file names
func SafeFileName(name string) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>|`, r) || r < 32 {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if clean == "" || clean == "." || clean == ".." {
		return "variable"
	}
	return clean
}

// WriteVariableReport writes <variable>_report.md and returns its path
func (g *Generator) WriteVariableReport(in VariableInput) (string, error) {
	path := filepath.Join(g.outputDir, VariableReportName(in.Name))
	if err := g.write(path, g.VariableReport(in)); err != nil {
		return "", err
	}
	g.logger.Debug("[ReportGenerator] wrote %s", path)
	return path, nil
}

// WriteDatasetReport writes DATASET_REPORT.md and returns its path
func (g *Generator) WriteDatasetReport(summary stats.DatasetSummary, workbook string) (string, error) {
	path := filepath.Join(g.outputDir, DatasetReportName)
	if err := g.write(path, g.DatasetReport(summary, workbook)); err != nil {
		return "", err
	}
	g.logger.Debug("[ReportGenerator] wrote %s", path)
	return path, nil
}

func (g *Generator) write(path, content string) error {
	if err := os.MkdirAll(g.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", filepath.Base(path), err)
	}
	return nil
}

// VariableReport renders the Markdown report of one variable
func (g *Generator) VariableReport(in VariableInput) string {
	var b strings.Builder
	r := in.Result

	fmt.Fprintf(&b, "# Analysis report: %s\n\n", in.Name)
	fmt.Fprintf(&b, "**Variable type:** %s\n\n", in.TypeName)
	fmt.Fprintf(&b, "**Analyzed at:** %s\n\n", g.now().Format(dateLayout))
	b.WriteString("---\n\n")

	if r.Frequencies != nil {
		g.writeFrequencies(&b, r.Frequencies)
	}

	if r.Mode != nil && r.CentralTendency == nil {
		b.WriteString("## Central tendency\n\n")
		fmt.Fprintf(&b, "**Mode:** %s\n\n", joinValues(r.Mode, false))
	}

	if r.Median != nil {
		fmt.Fprintf(&b, "**Median category:** %s\n\n", r.Median.String())
	}

	if r.Proportions != nil {
		b.WriteString("## Proportions\n\n")
		for _, key := range sortedKeys(r.Proportions) {
			fmt.Fprintf(&b, "- **%s:** %s\n", key, r.Proportions[key])
		}
		b.WriteString("\n")
	}

	if ct := r.CentralTendency; ct != nil {
		b.WriteString("## Central tendency\n\n")
		b.WriteString("| Measure | Value |\n")
		b.WriteString("|---------|-------|\n")
		if ct.Mean != nil {
			fmt.Fprintf(&b, "| **Mean** | %.4f |\n", *ct.Mean)
		}
		if ct.Median != nil {
			fmt.Fprintf(&b, "| **Median** | %.4f |\n", *ct.Median)
		}
		if ct.Mode != nil {
			fmt.Fprintf(&b, "| **Mode** | %s |\n", escapeCell(joinValues(ct.Mode, true)))
		}
		b.WriteString("\n")
	}

	if sep := r.Separators; sep != nil && len(sep.Quartiles) > 0 {
		q1, q2, q3 := sep.Quartiles["Q1"], sep.Quartiles["Q2"], sep.Quartiles["Q3"]
		b.WriteString("## Separators\n\n")
		b.WriteString("### Quartiles\n\n")
		b.WriteString("| Quartile | Value | Interpretation |\n")
		b.WriteString("|----------|-------|----------------|\n")
		fmt.Fprintf(&b, "| Q1 (25%%) | %.4f | 25%% of values are below %.4f |\n", q1, q1)
		fmt.Fprintf(&b, "| Q2 (50%%) | %.4f | 50%% of values are below %.4f (median) |\n", q2, q2)
		fmt.Fprintf(&b, "| Q3 (75%%) | %.4f | 75%% of values are below %.4f |\n", q3, q3)
		b.WriteString("\n")
	}

	if d := r.Dispersion; d != nil {
		b.WriteString("## Dispersion\n\n")
		b.WriteString("| Measure | Value | Interpretation |\n")
		b.WriteString("|---------|-------|----------------|\n")
		if d.Range != nil {
			fmt.Fprintf(&b, "| **Range** | %.4f | Difference between maximum and minimum |\n", *d.Range)
		}
		if d.Variance != nil {
			fmt.Fprintf(&b, "| **Variance** | %.4f | Mean squared deviation (sample) |\n", *d.Variance)
		}
		if d.StdDev != nil {
			fmt.Fprintf(&b, "| **Standard deviation** | %.4f | Typical distance from the mean |\n", *d.StdDev)
		}
		if d.IQR != nil {
			fmt.Fprintf(&b, "| **IQR (Q3-Q1)** | %.4f | Spread of the central 50%% |\n", *d.IQR)
		}
		if d.CoefficientOfVariation != nil {
			cv := *d.CoefficientOfVariation
			fmt.Fprintf(&b, "| **Coefficient of variation** | %.2f%% | %s |\n", cv, Homogeneity(cv))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Interpretation\n\n")
	b.WriteString(Interpret(in.Kind, r))
	b.WriteString("\n")

	if in.Workbook != "" {
		b.WriteString("\n## Charts\n\n")
		if in.Sheet != "" {
			fmt.Fprintf(&b, "See sheet `%s` of %s.\n", in.Sheet, link(in.Workbook, in.Workbook))
		} else {
			fmt.Fprintf(&b, "See %s.\n", link(in.Workbook, in.Workbook))
		}
	}

	return b.String()
}

func (g *Generator) writeFrequencies(b *strings.Builder, freq *stats.FrequencyTable) {
	b.WriteString("## Frequency distribution\n\n")
	if freq.IsEmpty() {
		b.WriteString("*No present values.*\n\n")
		return
	}
	b.WriteString("| Value | Absolute | Relative | Cumulative |\n")
	b.WriteString("|-------|----------|----------|------------|\n")
	rows := freq.Rows
	if len(rows) > g.maxTableRows {
		rows = rows[:g.maxTableRows]
	}
	for _, row := range rows {
		fmt.Fprintf(b, "| %s | %d | %.4f (%.2f%%) | %.4f |\n",
			escapeCell(row.Label), row.Absolute, row.Relative, row.Relative*100, row.Cumulative)
	}
	if len(freq.Rows) > g.maxTableRows {
		fmt.Fprintf(b, "\n*Showing the first %d of %d rows*\n", g.maxTableRows, len(freq.Rows))
	}
	b.WriteString("\n")
}

// Homogeneity classifies a coefficient of variation given in percent
func Homogeneity(cv float64) string {
	switch {
	case cv < 15:
		return "Very homogeneous data"
	case cv < 30:
		return "Moderately homogeneous data"
	default:
		return "Heterogeneous data"
	}
}

// Interpret writes the automatic reading of a result as Markdown bullets
func Interpret(kind vartype.Kind, r stats.AnalysisResult) string {
	var lines []string

	switch {
	case kind == vartype.Nominal || kind == vartype.Ordinal:
		switch len(r.Mode) {
		case 0:
		case 1:
			lines = append(lines, fmt.Sprintf("- The most frequent category is **%s**.", r.Mode[0].String()))
		default:
			lines = append(lines, fmt.Sprintf("- The most frequent categories are **%s**.", joinValues(r.Mode, false)))
		}
		if r.Median != nil {
			lines = append(lines, fmt.Sprintf("- Half of the ranked observations fall at or below **%s**.", r.Median.String()))
		}

	case kind == vartype.Binary:
		for _, key := range sortedKeys(r.Proportions) {
			lines = append(lines, fmt.Sprintf("- **%s** accounts for %s of the data.", key, r.Proportions[key]))
		}

	case kind.IsNumeric():
		var mean, median, cv, iqr *float64
		if r.CentralTendency != nil {
			mean, median = r.CentralTendency.Mean, r.CentralTendency.Median
		}
		if r.Dispersion != nil {
			cv, iqr = r.Dispersion.CoefficientOfVariation, r.Dispersion.IQR
		}

		if mean != nil && median != nil && *mean != 0 {
			switch {
			case math.Abs(*mean-*median)/math.Abs(*mean) < 0.05:
				lines = append(lines, "- The **mean and median** are very close, suggesting a **roughly symmetric distribution**.")
			case *mean > *median:
				lines = append(lines, "- The **mean is above the median**, suggesting **positive skew** (longer right tail).")
			default:
				lines = append(lines, "- The **median is above the mean**, suggesting **negative skew** (longer left tail).")
			}
		}
		if cv != nil {
			lines = append(lines, fmt.Sprintf("- With **CV = %.2f%%**, the data is %s.", *cv, strings.ToLower(Homogeneity(*cv))))
		}
		if iqr != nil && median != nil {
			lines = append(lines, fmt.Sprintf("- The **central 50%%** of the data spans **%.2f** around the median (%.2f).", *iqr, *median))
		}
	}

	if len(lines) == 0 {
		return "Analysis completed.\n"
	}
	return strings.Join(lines, "\n") + "\n"
}

// DatasetReport renders the dataset overview with links to every variable
// report
func (g *Generator) DatasetReport(summary stats.DatasetSummary, workbook string) string {
	var b strings.Builder

	b.WriteString("# Descriptive statistics report\n\n")
	fmt.Fprintf(&b, "## Dataset: %s\n\n", summary.Name)
	fmt.Fprintf(&b, "**Analyzed at:** %s\n\n", g.now().Format(dateLayout))
	b.WriteString("---\n\n")

	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "- **Variables:** %d\n", summary.VariableCount)
	fmt.Fprintf(&b, "- **Records:** %d\n\n", summary.RecordCount)

	if len(summary.Variables) > 0 {
		counts := make(map[string]int)
		for _, v := range summary.Variables {
			counts[v.Type]++
		}
		b.WriteString("### Variables by type\n\n")
		b.WriteString("| Type | Count |\n")
		b.WriteString("|------|-------|\n")
		for _, name := range sortedCountKeys(counts) {
			fmt.Fprintf(&b, "| %s | %d |\n", name, counts[name])
		}
		b.WriteString("\n")
	}

	b.WriteString("## Variables\n\n")
	b.WriteString("| Variable | Type | Total | Distinct | Missing |\n")
	b.WriteString("|----------|------|-------|----------|---------|\n")
	for _, v := range summary.Variables {
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %d |\n", escapeCell(v.Name), v.Type, v.Total, v.Distinct, v.Missing)
	}
	b.WriteString("\n")

	if workbook != "" {
		b.WriteString("## Charts\n\n")
		fmt.Fprintf(&b, "All charts are in %s; the `Summary` sheet holds the overview.\n\n", link(workbook, workbook))
	}

	b.WriteString("## Variable reports\n\n")
	for _, v := range summary.Variables {
		fmt.Fprintf(&b, "- %s\n", link(v.Name, VariableReportName(v.Name)))
	}
	b.WriteString("\n---\n\n")
	b.WriteString("*Generated automatically by statdesc*\n")

	return b.String()
}

// joinValues lists mode values; asDecimal prints numbers with four decimals
func joinValues(values []table.Value, asDecimal bool) string {
	if len(values) == 0 {
		return "none"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		if asDecimal && v.IsNumeric() {
			parts[i] = fmt.Sprintf("%.4f", v.Num)
		} else {
			parts[i] = v.String()
		}
	}
	return strings.Join(parts, ", ")
}

// link renders a Markdown link to a sibling file. Targets come out with
// no raw parentheses or brackets and the text with its brackets escaped.
func link(text, target string) string {
	return "[" + linkText.Replace(text) + "](" + url.PathEscape(target) + ")"
}

var linkText = strings.NewReplacer(`\`, `\\`, "[", `\[`, "]", `\]`)

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedCountKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
