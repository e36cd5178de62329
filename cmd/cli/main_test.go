package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"statdesc/internal/analysis/vartype"
	"statdesc/internal/config"
	"statdesc/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const surveyCSV = "flag,age,pet,level\n1,23,cat,low\n0,35,dog,high\n1,41,cat,medium\n1,35,fish,low\n0,52,cat,high\n"

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "survey.csv")
	require.NoError(t, os.WriteFile(path, []byte(surveyCSV), 0644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STATDESC_OUTPUT_DIR", t.TempDir())
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSummaryCommand(t *testing.T) {
	out, err := execute(t, "summary", writeCSV(t))
	require.NoError(t, err)

	assert.Contains(t, out, "Dataset: survey")
	assert.Contains(t, out, "Variables: 4")
	assert.Contains(t, out, "Records: 5")
	assert.Regexp(t, `age\s+Discrete\s+5\s+0\s+4`, out)
}

func TestAnalyzeCommand(t *testing.T) {
	outDir := t.TempDir()
	out, err := execute(t, "analyze", writeCSV(t),
		"--output", outDir,
		"--ordinal", "level=low,medium,high",
		"--type", "age=continuous",
		"--no-charts",
		"--workers", "2",
	)
	require.NoError(t, err)

	assert.Contains(t, out, "== level (Ordinal) ==")
	assert.Contains(t, out, "== age (Continuous) ==")
	assert.Contains(t, out, `"median": "medium"`)
	assert.Contains(t, out, "Exported")

	runs, err := filepath.Glob(filepath.Join(outDir, "survey_*"))
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.FileExists(t, filepath.Join(runs[0], "results.json"))
	assert.FileExists(t, filepath.Join(runs[0], "DATASET_REPORT.html"))
	assert.NoFileExists(t, filepath.Join(runs[0], "charts.xlsx"))
}

func TestAnalyzeCommand_BadFlags(t *testing.T) {
	path := writeCSV(t)

	_, err := execute(t, "analyze", path, "--type", "age")
	assert.True(t, errors.IsConfigurationError(err))

	_, err = execute(t, "analyze", path, "--type", "age=ratio")
	assert.True(t, errors.IsConfigurationError(err))

	_, err = execute(t, "analyze", path, "--type", "weight=discrete")
	assert.True(t, errors.IsConfigurationError(err))

	_, err = execute(t, "analyze", path, "--type", "level=nominal", "--ordinal", "level=low,medium,high")
	assert.True(t, errors.IsConfigurationError(err))

	_, err = execute(t, "analyze", filepath.Join(t.TempDir(), "absent.csv"))
	assert.True(t, errors.IsInputError(err))
}

func TestInferCommand_WritesProfile(t *testing.T) {
	profilePath := filepath.Join(t.TempDir(), "profile.yaml")

	out, err := execute(t, "infer", writeCSV(t), "--write-profile", profilePath)
	require.NoError(t, err)
	assert.Regexp(t, `flag\s+Binary`, out)
	assert.Regexp(t, `pet\s+Nominal`, out)

	p, err := config.LoadProfile(profilePath)
	require.NoError(t, err)
	types, _, err := p.Resolve()
	require.NoError(t, err)
	assert.Equal(t, map[string]vartype.Kind{
		"flag":  vartype.Binary,
		"age":   vartype.Discrete,
		"pet":   vartype.Nominal,
		"level": vartype.Nominal,
	}, types)
}

func TestAnalyzeCommand_Profile(t *testing.T) {
	profile := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(profile, []byte("columns:\n  - name: level\n    order: [low, medium, high]\n"), 0644))

	out, err := execute(t, "summary", writeCSV(t), "--profile", profile)
	require.NoError(t, err)
	assert.Regexp(t, `level\s+Ordinal`, out)
}
