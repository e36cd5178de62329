package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"statdesc/domain/stats"
	"statdesc/domain/table"
	"statdesc/internal/analysis/vartype"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
}

func numericInput() VariableInput {
	col := table.NumericColumn("age", 10, 12, 15, 18, 20, 25, 30, 35, 40)
	return VariableInput{
		Name:     "age",
		Kind:     vartype.Discrete,
		TypeName: "Discrete",
		Result:   vartype.DiscreteType{}.Analyze(col),
		Workbook: "charts.xlsx",
		Sheet:    "age",
	}
}

func TestVariableReport_Numeric(t *testing.T) {
	g := NewGenerator(t.TempDir(), WithClock(fixedClock))

	md := g.VariableReport(numericInput())

	assert.Contains(t, md, "# Analysis report: age")
	assert.Contains(t, md, "**Variable type:** Discrete")
	assert.Contains(t, md, "**Analyzed at:** 14/03/2026 09:30")
	assert.Contains(t, md, "| 10 | 1 | 0.1111 (11.11%) | 0.1111 |")
	assert.Contains(t, md, "| **Median** | 20.0000 |")
	assert.Contains(t, md, "| Q1 (25%) | 15.0000 |")
	assert.Contains(t, md, "| **Range** | 30.0000 |")
	assert.Contains(t, md, "| **IQR (Q3-Q1)** | 15.0000 |")
	assert.Contains(t, md, "Heterogeneous data")
	assert.Contains(t, md, "positive skew")
	assert.Contains(t, md, "See sheet `age` of [charts.xlsx](charts.xlsx).")
	assert.NotContains(t, md, "## Proportions")
}

func TestVariableReport_Binary(t *testing.T) {
	col := table.NumericColumn("flag", 1, 0, 1, 1, 0)
	g := NewGenerator(t.TempDir(), WithClock(fixedClock))

	md := g.VariableReport(VariableInput{
		Name: "flag", Kind: vartype.Binary, TypeName: "Binary",
		Result: vartype.BinaryType{}.Analyze(col),
	})

	assert.Contains(t, md, "**Mode:** 1")
	assert.Contains(t, md, "- **0:** 40.00%")
	assert.Contains(t, md, "- **1:** 60.00%")
	assert.Contains(t, md, "**1** accounts for 60.00% of the data.")
	assert.NotContains(t, md, "## Charts")
}

func TestVariableReport_TruncatesFrequencyTable(t *testing.T) {
	labels := make([]string, 30)
	for i := range labels {
		labels[i] = fmt.Sprintf("c%02d|x", i)
	}
	col := table.TextColumn("code", labels...)
	g := NewGenerator(t.TempDir(), WithMaxTableRows(5))

	md := g.VariableReport(VariableInput{
		Name: "code", Kind: vartype.Nominal, TypeName: "Nominal",
		Result: vartype.NominalType{}.Analyze(col),
	})

	assert.Contains(t, md, "*Showing the first 5 of 30 rows*")
	assert.Contains(t, md, `| c00\|x |`)
	assert.NotContains(t, md, `| c05\|x |`)
	assert.Contains(t, md, "The most frequent categories are")
}

func TestVariableReport_Ordinal(t *testing.T) {
	col := table.TextColumn("level", "low", "high", "medium", "low")
	g := NewGenerator(t.TempDir())

	md := g.VariableReport(VariableInput{
		Name: "level", Kind: vartype.Ordinal, TypeName: "Ordinal",
		Result: vartype.NewOrdinalType([]string{"low", "medium", "high"}).Analyze(col),
	})

	assert.Contains(t, md, "**Median category:** low")
	assert.Contains(t, md, "The most frequent category is **low**.")
}

func TestVariableReport_Empty(t *testing.T) {
	g := NewGenerator(t.TempDir())

	md := g.VariableReport(VariableInput{
		Name: "x", Kind: vartype.Nominal, TypeName: "Nominal",
		Result: vartype.NominalType{}.Analyze(table.TextColumn("x")),
	})

	assert.Contains(t, md, "*No present values.*")
	assert.Contains(t, md, "**Mode:** none")
	assert.Contains(t, md, "Analysis completed.")
}

func TestHomogeneity(t *testing.T) {
	assert.Equal(t, "Very homogeneous data", Homogeneity(14.99))
	assert.Equal(t, "Moderately homogeneous data", Homogeneity(15))
	assert.Equal(t, "Moderately homogeneous data", Homogeneity(29.9))
	assert.Equal(t, "Heterogeneous data", Homogeneity(30))
}

func TestInterpret_Symmetric(t *testing.T) {
	r := stats.AnalysisResult{
		CentralTendency: &stats.CentralTendency{Mean: stats.Float(100), Median: stats.Float(102)},
		Dispersion:      &stats.Dispersion{CoefficientOfVariation: stats.Float(10)},
	}

	text := Interpret(vartype.Continuous, r)

	assert.Contains(t, text, "roughly symmetric")
	assert.Contains(t, text, "very homogeneous data")
}

func TestInterpret_NegativeSkewAndZeroMean(t *testing.T) {
	r := stats.AnalysisResult{CentralTendency: &stats.CentralTendency{Mean: stats.Float(10), Median: stats.Float(20)}}
	assert.Contains(t, Interpret(vartype.Continuous, r), "negative skew")

	zero := stats.AnalysisResult{CentralTendency: &stats.CentralTendency{Mean: stats.Float(0), Median: stats.Float(1)}}
	assert.Equal(t, "Analysis completed.\n", Interpret(vartype.Continuous, zero))
}

func TestDatasetReport(t *testing.T) {
	g := NewGenerator(t.TempDir(), WithClock(fixedClock))
	summary := stats.DatasetSummary{
		Name:          "survey",
		VariableCount: 3,
		RecordCount:   5,
		Variables: []stats.VariableSummary{
			{Name: "age", Type: "Discrete", Total: 5, Missing: 1, Distinct: 4},
			{Name: "pet", Type: "Nominal", Total: 5, Missing: 0, Distinct: 3},
			{Name: "my var", Type: "Nominal", Total: 5, Missing: 0, Distinct: 2},
		},
	}

	md := g.DatasetReport(summary, "charts.xlsx")

	assert.Contains(t, md, "## Dataset: survey")
	assert.Contains(t, md, "- **Variables:** 3")
	assert.Contains(t, md, "- **Records:** 5")
	assert.Contains(t, md, "| Discrete | 1 |")
	assert.Contains(t, md, "| Nominal | 2 |")
	assert.Contains(t, md, "| age | Discrete | 5 | 4 | 1 |")
	assert.Contains(t, md, "- [age](age_report.md)")
	assert.Contains(t, md, "- [my var](my%20var_report.md)")
	assert.Contains(t, md, "[charts.xlsx](charts.xlsx)")
}

func TestWriteReportsAndHTML(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir)

	path, err := g.WriteVariableReport(numericInput())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "age_report.md"), path)

	datasetPath, err := g.WriteDatasetReport(stats.DatasetSummary{
		Name:      "survey",
		Variables: []stats.VariableSummary{{Name: "age", Type: "Discrete"}},
	}, "")
	require.NoError(t, err)

	htmlPath, err := WriteHTML(datasetPath, "survey")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "DATASET_REPORT.html"), htmlPath)

	page, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	content := string(page)
	assert.True(t, strings.HasPrefix(content, "<!DOCTYPE html>"))
	assert.Contains(t, content, "<title>survey</title>")
	assert.Contains(t, content, `href="age_report.html"`)
	assert.Contains(t, content, "<table>")
}

func TestDatasetReport_LinksSurviveParensAndBrackets(t *testing.T) {
	g := NewGenerator(t.TempDir(), WithClock(fixedClock))
	summary := stats.DatasetSummary{
		Name:      "survey",
		Variables: []stats.VariableSummary{{Name: "weight (kg) [raw]", Type: "Continuous"}},
	}

	md := g.DatasetReport(summary, "")
	assert.Contains(t, md, `- [weight (kg) \[raw\]](weight%20%28kg%29%20%5Braw%5D_report.md)`)

	page := string(RenderHTML([]byte(md), "survey"))
	assert.Contains(t, page, `href="weight%20%28kg%29%20%5Braw%5D_report.html"`)
	assert.Contains(t, page, ">weight (kg) [raw]</a>")
}

func TestRenderHTML_EscapesTitle(t *testing.T) {
	page := string(RenderHTML([]byte("# Hi\n"), "<b>x</b>"))

	assert.Contains(t, page, "<title>&lt;b&gt;x&lt;/b&gt;</title>")
	assert.Contains(t, page, "<h1 id=\"hi\">Hi</h1>")
}

func TestSafeFileName(t *testing.T) {
	assert.Equal(t, "a_b", SafeFileName("a/b"))
	assert.Equal(t, "variable", SafeFileName(".."))
	assert.Equal(t, "x_report.md", VariableReportName(" x "))
}
