package excel

import (
	"fmt"
	"strings"

	"statdesc/domain/stats"
	"statdesc/internal"
	"statdesc/internal/analysis/vartype"

	"github.com/xuri/excelize/v2"
)

const (
	// MaxChartCategories caps the categories plotted in bar charts
	MaxChartCategories = 15

	summarySheet  = "Summary"
	freqHeaderRow = 4
	maxSheetName  = 31
)

// VariableChart is the input for one variable sheet
type VariableChart struct {
	Name     string
	Kind     vartype.Kind
	TypeName string
	Result   stats.AnalysisResult
	// Min and Max feed the box summary of numeric variables
	Min, Max *float64
}

// ChartWriter renders analysis results into an XLSX workbook with native
// charts: one sheet per variable plus a Summary sheet
type ChartWriter struct {
	logger *internal.Logger
}

// NewChartWriter creates a chart writer; a nil logger discards output
func NewChartWriter(logger *internal.Logger) *ChartWriter {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &ChartWriter{logger: logger}
}

// Write builds the workbook and saves it to path. It returns the sheet name
// used for each variable, in input order.
func (w *ChartWriter) Write(path string, summary stats.DatasetSummary, vars []VariableChart) ([]string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	styles, err := newStyles(f)
	if err != nil {
		return nil, err
	}
	if err := w.writeSummary(f, styles, summary); err != nil {
		return nil, err
	}

	used := map[string]bool{strings.ToLower(summarySheet): true}
	sheets := make([]string, len(vars))
	for i, v := range vars {
		sheet := uniqueSheetName(v.Name, used)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("failed to create sheet for %s: %w", v.Name, err)
		}
		if err := w.writeVariable(f, styles, sheet, v); err != nil {
			return nil, fmt.Errorf("failed to write sheet for %s: %w", v.Name, err)
		}
		sheets[i] = sheet
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("failed to save workbook: %w", err)
	}
	w.logger.Info("[ChartWriter] wrote %d variable sheets to %s", len(vars), path)
	return sheets, nil
}

type sheetStyles struct {
	header  int
	percent int
	decimal int
}

func newStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	}); err != nil {
		return s, fmt.Errorf("failed to create header style: %w", err)
	}
	if s.percent, err = f.NewStyle(&excelize.Style{NumFmt: 10}); err != nil {
		return s, fmt.Errorf("failed to create percent style: %w", err)
	}
	decimalFmt := "0.0000"
	if s.decimal, err = f.NewStyle(&excelize.Style{CustomNumFmt: &decimalFmt}); err != nil {
		return s, fmt.Errorf("failed to create decimal style: %w", err)
	}
	return s, nil
}

func (w *ChartWriter) writeSummary(f *excelize.File, styles sheetStyles, summary stats.DatasetSummary) error {
	sheet := summarySheet
	rows := [][]interface{}{
		{"Dataset", summary.Name},
		{"Variables", summary.VariableCount},
		{"Records", summary.RecordCount},
		{},
		{"Variable", "Type", "Total", "Missing", "Distinct"},
	}
	for _, v := range summary.Variables {
		rows = append(rows, []interface{}{v.Name, v.Type, v.Total, v.Missing, v.Distinct})
	}
	if err := setRows(f, sheet, 1, rows); err != nil {
		return err
	}
	if err := styleRow(f, sheet, 5, 5, styles.header); err != nil {
		return err
	}

	// kind counts in display order, only kinds that occur
	counts := make(map[string]int)
	for _, v := range summary.Variables {
		counts[v.Type]++
	}
	var kindRows [][]interface{}
	for _, k := range vartype.Kinds {
		name := vartype.MustStrategy(k).Name()
		if n := counts[name]; n > 0 {
			kindRows = append(kindRows, []interface{}{name, n})
		}
	}
	if err := setRows(f, sheet, 1, [][]interface{}{{"Type", "Count"}}, "G"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "G1", "H1", styles.header); err != nil {
		return err
	}
	if err := setRows(f, sheet, 2, kindRows, "G"); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 24); err != nil {
		return err
	}
	if len(kindRows) == 0 {
		return nil
	}

	last := 1 + len(kindRows)
	return f.AddChart(sheet, "J2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       "Variables",
			Categories: cellRange(sheet, "G", 2, last),
			Values:     cellRange(sheet, "H", 2, last),
		}},
		Title:     []excelize.RichTextRun{{Text: "Variables by type"}},
		Legend:    excelize.ChartLegend{Position: "none"},
		PlotArea:  excelize.ChartPlotArea{ShowVal: true},
		Dimension: excelize.ChartDimension{Width: 480, Height: 290},
	})
}

func (w *ChartWriter) writeVariable(f *excelize.File, styles sheetStyles, sheet string, v VariableChart) error {
	if err := setRows(f, sheet, 1, [][]interface{}{
		{"Variable", v.Name},
		{"Type", v.TypeName},
	}); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}

	freq := v.Result.Frequencies
	if freq == nil || freq.IsEmpty() {
		w.logger.Debug("[ChartWriter] %s has no frequency rows, skipping chart", v.Name)
		return f.SetCellValue(sheet, fmt.Sprintf("A%d", freqHeaderRow), "No present values")
	}

	header := []interface{}{"Value", "Absolute", "Relative", "Cumulative"}
	rows := [][]interface{}{header}
	for _, row := range freq.Rows {
		rows = append(rows, []interface{}{row.Label, row.Absolute, row.Relative, row.Cumulative})
	}
	if err := setRows(f, sheet, freqHeaderRow, rows); err != nil {
		return err
	}
	if err := styleRow(f, sheet, freqHeaderRow, 4, styles.header); err != nil {
		return err
	}
	first, last := freqHeaderRow+1, freqHeaderRow+len(freq.Rows)
	if err := f.SetCellStyle(sheet, fmt.Sprintf("C%d", first), fmt.Sprintf("D%d", last), styles.percent); err != nil {
		return err
	}

	switch {
	case v.Kind == vartype.Binary:
		return w.binaryCharts(f, sheet, v.Name, first, last)
	case v.Kind.IsNumeric():
		if err := f.AddChart(sheet, "F2", histogram(sheet, v.Name, first, last)); err != nil {
			return err
		}
		return writeBoxSummary(f, styles, sheet, last+2, v)
	default:
		plotted := last
		if len(freq.Rows) > MaxChartCategories {
			plotted = first + MaxChartCategories - 1
		}
		return f.AddChart(sheet, "F2", &excelize.Chart{
			Type: excelize.Bar,
			Series: []excelize.ChartSeries{{
				Name:       "Frequency",
				Categories: cellRange(sheet, "A", first, plotted),
				Values:     cellRange(sheet, "B", first, plotted),
			}},
			Title:     []excelize.RichTextRun{{Text: fmt.Sprintf("Frequency of %s", v.Name)}},
			Legend:    excelize.ChartLegend{Position: "none"},
			PlotArea:  excelize.ChartPlotArea{ShowVal: true},
			Dimension: excelize.ChartDimension{Width: 560, Height: 360},
		})
	}
}

func (w *ChartWriter) binaryCharts(f *excelize.File, sheet, name string, first, last int) error {
	if err := f.AddChart(sheet, "F2", &excelize.Chart{
		Type: excelize.Pie,
		Series: []excelize.ChartSeries{{
			Name:       "Proportion",
			Categories: cellRange(sheet, "A", first, last),
			Values:     cellRange(sheet, "B", first, last),
		}},
		Title:     []excelize.RichTextRun{{Text: fmt.Sprintf("Proportions of %s", name)}},
		Legend:    excelize.ChartLegend{Position: "right"},
		PlotArea:  excelize.ChartPlotArea{ShowPercent: true},
		Dimension: excelize.ChartDimension{Width: 400, Height: 290},
	}); err != nil {
		return err
	}
	return f.AddChart(sheet, "F20", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       "Frequency",
			Categories: cellRange(sheet, "A", first, last),
			Values:     cellRange(sheet, "B", first, last),
		}},
		Title:     []excelize.RichTextRun{{Text: fmt.Sprintf("Frequency of %s", name)}},
		Legend:    excelize.ChartLegend{Position: "none"},
		PlotArea:  excelize.ChartPlotArea{ShowVal: true},
		Dimension: excelize.ChartDimension{Width: 400, Height: 290},
	})
}

func histogram(sheet, name string, first, last int) *excelize.Chart {
	return &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       "Frequency",
			Categories: cellRange(sheet, "A", first, last),
			Values:     cellRange(sheet, "B", first, last),
		}},
		Title:     []excelize.RichTextRun{{Text: fmt.Sprintf("Distribution of %s", name)}},
		Legend:    excelize.ChartLegend{Position: "none"},
		Dimension: excelize.ChartDimension{Width: 560, Height: 360},
	}
}

// writeBoxSummary writes the five-number summary and fences beneath the
// frequency table
func writeBoxSummary(f *excelize.File, styles sheetStyles, sheet string, row int, v VariableChart) error {
	sep := v.Result.Separators
	if sep == nil || sep.IsEmpty() {
		return nil
	}
	q1, q2, q3 := sep.Quartiles["Q1"], sep.Quartiles["Q2"], sep.Quartiles["Q3"]
	iqr := q3 - q1
	entries := [][]interface{}{{"Box summary", ""}}
	if v.Min != nil {
		entries = append(entries, []interface{}{"Min", *v.Min})
	}
	entries = append(entries,
		[]interface{}{"Q1", q1},
		[]interface{}{"Median", q2},
		[]interface{}{"Q3", q3},
	)
	if v.Max != nil {
		entries = append(entries, []interface{}{"Max", *v.Max})
	}
	entries = append(entries,
		[]interface{}{"Lower fence", q1 - 1.5*iqr},
		[]interface{}{"Upper fence", q3 + 1.5*iqr},
	)
	if err := setRows(f, sheet, row, entries); err != nil {
		return err
	}
	if err := styleRow(f, sheet, row, 2, styles.header); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, fmt.Sprintf("B%d", row+1), fmt.Sprintf("B%d", row+len(entries)-1), styles.decimal)
}

func setRows(f *excelize.File, sheet string, startRow int, rows [][]interface{}, startCol ...string) error {
	col := "A"
	if len(startCol) > 0 {
		col = startCol[0]
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		values := row
		if err := f.SetSheetRow(sheet, fmt.Sprintf("%s%d", col, startRow+i), &values); err != nil {
			return err
		}
	}
	return nil
}

func styleRow(f *excelize.File, sheet string, row, width, style int) error {
	end, err := excelize.CoordinatesToCellName(width, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), end, style)
}

func cellRange(sheet, col string, first, last int) string {
	quoted := strings.ReplaceAll(sheet, "'", "''")
	return fmt.Sprintf("'%s'!$%s$%d:$%s$%d", quoted, col, first, col, last)
}

// uniqueSheetName strips characters Excel forbids, truncates to 31 runes
// and appends a counter on case-insensitive collisions
func uniqueSheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, name)
	clean = strings.Trim(clean, "' ")
	if clean == "" {
		clean = "Variable"
	}
	clean = truncateRunes(clean, maxSheetName)

	candidate := clean
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf("_%d", n)
		candidate = truncateRunes(clean, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
