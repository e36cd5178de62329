package app

import (
	"context"
	stderrors "errors"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"statdesc/adapters/excel"
	"statdesc/adapters/report"
	"statdesc/domain/core"
	"statdesc/domain/stats"
	"statdesc/internal"
	"statdesc/internal/dataset"
	"statdesc/internal/errors"

	"gonum.org/v1/gonum/floats"
)

const (
	// ResultsFileName holds the machine-readable export
	ResultsFileName = "results.json"
	// WorkbookFileName holds the chart workbook
	WorkbookFileName = "charts.xlsx"
)

// ExportRequest selects what an export run writes
type ExportRequest struct {
	OutputDir string
	// SourcePath, when set, is fingerprinted into the manifest
	SourcePath   string
	Charts       bool
	HTML         bool
	Workers      int
	MaxTableRows int
}

// Manifest records where an export came from and what it produced
type Manifest struct {
	RunID      core.RunID `json:"run_id"`
	Dataset    string     `json:"dataset"`
	Source     string     `json:"source,omitempty"`
	SourceHash core.Hash  `json:"source_hash,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	RuntimeMs  int64      `json:"runtime_ms"`
	Files      []string   `json:"files"`
}

// ExportResult is the outcome of one export run
type ExportResult struct {
	Manifest `json:"manifest"`
	Dir      string               `json:"-"`
	Summary  stats.DatasetSummary `json:"summary"`
	Results  []dataset.Analysis   `json:"results"`
}

// ExportService analyzes a dataset and writes its artifacts into a fresh
// run directory
type ExportService struct {
	charts *excel.ChartWriter
	logger *internal.Logger
	now    func() time.Time
	newID  func() core.RunID
}

// NewExportService creates an export service; a nil logger discards output
func NewExportService(logger *internal.Logger) *ExportService {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &ExportService{
		charts: excel.NewChartWriter(logger),
		logger: logger,
		now:    time.Now,
		newID:  core.NewRunID,
	}
}

// RunDir is the directory an export of dataset name writes into
func RunDir(outputDir, name string, runID core.RunID) string {
	return filepath.Join(outputDir, report.SafeFileName(name)+"_"+runID.Short())
}

// Export runs the full analysis of ds and writes results.json, the
// Markdown reports and, when requested, their HTML renditions and the chart
// workbook
func (s *ExportService) Export(ctx context.Context, ds *dataset.Dataset, req ExportRequest) (*ExportResult, error) {
	if ds == nil {
		return nil, errors.InvalidInput("dataset is required")
	}
	if req.OutputDir == "" {
		return nil, errors.ConfigInvalid("output directory is required")
	}
	startTime := s.now()

	runID := s.newID()
	dir := RunDir(req.OutputDir, ds.Name(), runID)
	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	// an existing directory belongs to another run and is never reused
	if err := os.Mkdir(dir, 0755); err != nil {
		if stderrors.Is(err, os.ErrExist) {
			return nil, errors.InternalError(fmt.Sprintf("run directory %s already exists", dir))
		}
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}
	s.logger.Info("[ExportService] run %s for dataset %q into %s", runID.Short(), ds.Name(), dir)

	result := &ExportResult{
		Manifest: Manifest{RunID: runID, Dataset: ds.Name(), CreatedAt: startTime.UTC()},
		Dir:      dir,
		Summary:  ds.Summary(),
	}

	if req.SourcePath != "" {
		hash, err := core.HashFile(req.SourcePath)
		if err != nil {
			return nil, errors.Wrap(err, "failed to fingerprint source")
		}
		result.Source = filepath.Base(req.SourcePath)
		result.SourceHash = hash
	}

	analyses, err := ds.AnalyzeAll(ctx, req.Workers)
	if err != nil {
		return nil, err
	}
	result.Results = analyses

	sheets := make([]string, len(analyses))
	workbook := ""
	if req.Charts {
		sheets, err = s.writeCharts(filepath.Join(dir, WorkbookFileName), ds, result.Summary, analyses)
		if err != nil {
			return nil, errors.Wrap(err, "chart export failed")
		}
		workbook = WorkbookFileName
		result.Files = append(result.Files, WorkbookFileName)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "export interrupted")
	}

	reports, err := s.writeReports(dir, req, result.Summary, analyses, workbook, sheets)
	if err != nil {
		return nil, errors.Wrap(err, "report export failed")
	}
	result.Files = append(result.Files, reports...)
	result.Files = append(result.Files, ResultsFileName)

	result.RuntimeMs = s.now().Sub(startTime).Milliseconds()
	if err := writeJSON(filepath.Join(dir, ResultsFileName), result); err != nil {
		return nil, err
	}

	s.logger.Info("[ExportService] run %s wrote %d files", runID.Short(), len(result.Files))
	return result, nil
}

func (s *ExportService) writeCharts(path string, ds *dataset.Dataset, summary stats.DatasetSummary, analyses []dataset.Analysis) ([]string, error) {
	vars := ds.Variables()
	charts := make([]excel.VariableChart, len(analyses))
	for i, a := range analyses {
		charts[i] = excel.VariableChart{
			Name:     a.Name,
			Kind:     a.Kind,
			TypeName: a.TypeName,
			Result:   a.Result,
		}
		if a.Kind.IsNumeric() {
			if values := vars[i].Cleaned().Floats(); len(values) > 0 {
				charts[i].Min = stats.Float(floats.Min(values))
				charts[i].Max = stats.Float(floats.Max(values))
			}
		}
	}
	return s.charts.Write(path, summary, charts)
}

// writeReports returns the written file names relative to dir
func (s *ExportService) writeReports(dir string, req ExportRequest, summary stats.DatasetSummary,
	analyses []dataset.Analysis, workbook string, sheets []string) ([]string, error) {

	opts := []report.Option{report.WithLogger(s.logger), report.WithClock(s.now)}
	if req.MaxTableRows > 0 {
		opts = append(opts, report.WithMaxTableRows(req.MaxTableRows))
	}
	gen := report.NewGenerator(dir, opts...)

	var files []string
	add := func(path, title string) error {
		files = append(files, filepath.Base(path))
		if !req.HTML {
			return nil
		}
		htmlPath, err := report.WriteHTML(path, title)
		if err != nil {
			return err
		}
		files = append(files, filepath.Base(htmlPath))
		return nil
	}

	for i, a := range analyses {
		in := report.VariableInput{
			Name:     a.Name,
			Kind:     a.Kind,
			TypeName: a.TypeName,
			Result:   a.Result,
		}
		if workbook != "" {
			in.Workbook, in.Sheet = workbook, sheets[i]
		}
		path, err := gen.WriteVariableReport(in)
		if err != nil {
			return nil, err
		}
		if err := add(path, a.Name); err != nil {
			return nil, err
		}
	}

	path, err := gen.WriteDatasetReport(summary, workbook)
	if err != nil {
		return nil, err
	}
	if err := add(path, summary.Name); err != nil {
		return nil, err
	}
	return files, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
