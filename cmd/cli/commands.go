package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"statdesc/adapters/excel"
	"statdesc/app"
	"statdesc/internal"
	"statdesc/internal/analysis/descriptive"
	"statdesc/internal/analysis/vartype"
	"statdesc/internal/config"
	"statdesc/internal/dataset"
	"statdesc/internal/errors"

	"github.com/spf13/cobra"
)

// loadOptions are the flags shared by every command that reads a file
type loadOptions struct {
	sheet          string
	profile        string
	types          []string
	ordinals       []string
	dropDuplicates bool
	dropOutliers   bool
}

func (o *loadOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.sheet, "sheet", "", "Excel worksheet to read (default: first sheet)")
	cmd.Flags().StringVar(&o.profile, "profile", "", "YAML/JSON/TOML profile with column types and orders")
	cmd.Flags().StringArrayVar(&o.types, "type", nil, "Override a column type: col=kind (repeatable)")
	cmd.Flags().StringArrayVar(&o.ordinals, "ordinal", nil, "Ordinal category order: col=a,b,c (repeatable)")
	cmd.Flags().BoolVar(&o.dropDuplicates, "drop-duplicates", false, "Remove duplicate values before analysis")
	cmd.Flags().BoolVar(&o.dropOutliers, "drop-outliers", false, "Remove values outside the 1.5 IQR fences")
}

func newAnalyzeCmd() *cobra.Command {
	var load loadOptions
	var output string
	var noCharts, noHTML bool
	var workers int

	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze every column and export reports, charts and JSON",
		Long: `Analyze every column of a CSV or XLSX file, print the results and export
them into a new run directory under the output directory.

Example: statdesc analyze survey.csv --ordinal level=low,medium,high --type age=continuous`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()
			req := app.ExportRequest{
				OutputDir:    cfg.Output.Dir,
				SourcePath:   args[0],
				Charts:       cfg.Output.Charts && !noCharts,
				HTML:         cfg.Output.HTML && !noHTML,
				Workers:      cfg.Analysis.Workers,
				MaxTableRows: cfg.Output.MaxTableRows,
			}
			if output != "" {
				req.OutputDir = output
			}
			if workers > 0 {
				req.Workers = workers
			}
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), args[0], load, req, logger)
		},
	}

	load.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default: STATDESC_OUTPUT_DIR)")
	cmd.Flags().BoolVar(&noCharts, "no-charts", false, "Skip the chart workbook")
	cmd.Flags().BoolVar(&noHTML, "no-html", false, "Skip HTML renditions of the reports")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel analysis workers (default: STATDESC_WORKERS)")

	return cmd
}

func newSummaryCmd() *cobra.Command {
	var load loadOptions

	cmd := &cobra.Command{
		Use:   "summary [file]",
		Short: "Print the dataset summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()
			ds, err := loadDataset(cmd.Context(), args[0], load, logger)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), ds)
			return nil
		},
	}

	load.register(cmd)
	return cmd
}

func newInferCmd() *cobra.Command {
	var sheet, writeProfile string

	cmd := &cobra.Command{
		Use:   "infer [file]",
		Short: "Print the inferred type of every column",
		Long: `Print the inferred type of every column. With --write-profile the result is
saved as a profile that can be edited and passed back with --profile.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return runInfer(cmd.Context(), cmd.OutOrStdout(), args[0], sheet, writeProfile, logger)
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Excel worksheet to read (default: first sheet)")
	cmd.Flags().StringVar(&writeProfile, "write-profile", "", "Save the inferred types as a YAML profile")

	return cmd
}

func setup() (*config.Config, *internal.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel)), nil
}

func runAnalyze(ctx context.Context, out io.Writer, path string, load loadOptions, req app.ExportRequest, logger *internal.Logger) error {
	ds, err := loadDataset(ctx, path, load, logger)
	if err != nil {
		return err
	}

	printSummary(out, ds)

	res, err := app.NewExportService(logger).Export(ctx, ds, req)
	if err != nil {
		return err
	}

	for _, a := range res.Results {
		data, err := json.MarshalIndent(a.Result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", a.Name, err)
		}
		fmt.Fprintf(out, "\n== %s (%s) ==\n%s\n", a.Name, a.TypeName, data)
	}
	fmt.Fprintf(out, "\nExported %d files to %s\n", len(res.Files), res.Dir)
	return nil
}

func runInfer(ctx context.Context, out io.Writer, path, sheet, writeProfile string, logger *internal.Logger) error {
	ds, err := loadDataset(ctx, path, loadOptions{sheet: sheet}, logger)
	if err != nil {
		return err
	}

	profile := &config.Profile{Sheet: sheet}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COLUMN\tTYPE")
	for _, v := range ds.Variables() {
		kind := v.Type().Kind()
		fmt.Fprintf(w, "%s\t%s\n", v.Name(), v.Type().Name())
		profile.Columns = append(profile.Columns, config.ColumnProfile{Name: v.Name(), Type: string(kind)})
	}
	w.Flush()

	if writeProfile != "" {
		if err := config.SaveProfile(profile, writeProfile); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nProfile written to %s\n", writeProfile)
	}
	return nil
}

// loadDataset applies the profile first, then the flags on top of it
func loadDataset(ctx context.Context, path string, load loadOptions, logger *internal.Logger) (*dataset.Dataset, error) {
	types := map[string]vartype.Kind{}
	orderings := map[string][]string{}
	cleaning := descriptive.CleanOptions{
		RemoveDuplicates: load.dropDuplicates,
		RemoveOutliers:   load.dropOutliers,
	}
	sheet := load.sheet

	if load.profile != "" {
		p, err := config.LoadProfile(load.profile)
		if err != nil {
			return nil, err
		}
		if types, orderings, err = p.Resolve(); err != nil {
			return nil, err
		}
		cleaning.RemoveDuplicates = cleaning.RemoveDuplicates || p.Cleaning.RemoveDuplicates
		cleaning.RemoveOutliers = cleaning.RemoveOutliers || p.Cleaning.RemoveOutliers
		if sheet == "" {
			sheet = p.Sheet
		}
	}

	for _, assignment := range load.types {
		col, name, err := splitFlag(assignment, "--type")
		if err != nil {
			return nil, err
		}
		kind, err := vartype.ParseKind(name)
		if err != nil {
			return nil, errors.Wrapf(err, "--type %s", col)
		}
		types[col] = kind
	}
	for _, assignment := range load.ordinals {
		col, list, err := splitFlag(assignment, "--ordinal")
		if err != nil {
			return nil, err
		}
		var labels []string
		for _, label := range strings.Split(list, ",") {
			if label = strings.TrimSpace(label); label != "" {
				labels = append(labels, label)
			}
		}
		if len(labels) == 0 {
			return nil, errors.ConfigInvalid(fmt.Sprintf("--ordinal %s lists no categories", col))
		}
		orderings[col] = labels
	}

	reader, err := excel.NewDataReader(path, excel.WithSheet(sheet), excel.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return dataset.Load(ctx, name, reader,
		dataset.WithTypeOverrides(types),
		dataset.WithOrderings(orderings),
		dataset.WithCleaning(cleaning),
		dataset.WithLogger(logger),
	)
}

func splitFlag(v, flag string) (string, string, error) {
	col, value, ok := strings.Cut(v, "=")
	col, value = strings.TrimSpace(col), strings.TrimSpace(value)
	if !ok || col == "" || value == "" {
		return "", "", errors.ConfigInvalid(fmt.Sprintf("%s %q must look like column=value", flag, v))
	}
	return col, value, nil
}

func printSummary(out io.Writer, ds *dataset.Dataset) {
	summary := ds.Summary()
	fmt.Fprintf(out, "Dataset: %s\nVariables: %d\nRecords: %d\n\n", summary.Name, summary.VariableCount, summary.RecordCount)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VARIABLE\tTYPE\tTOTAL\tMISSING\tDISTINCT")
	for _, v := range summary.Variables {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", v.Name, v.Type, v.Total, v.Missing, v.Distinct)
	}
	w.Flush()
}
