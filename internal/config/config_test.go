package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"statdesc/internal/analysis/vartype"
	"statdesc/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{"STATDESC_OUTPUT_DIR", "STATDESC_WORKERS", "STATDESC_CHARTS", "STATDESC_HTML",
		"STATDESC_MAX_TABLE_ROWS", "STATDESC_API_PORT", "STATDESC_MAX_UPLOAD_MB", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "./output", cfg.Output.Dir)
	assert.True(t, cfg.Output.Charts)
	assert.True(t, cfg.Output.HTML)
	assert.Equal(t, 20, cfg.Output.MaxTableRows)
	assert.Equal(t, runtime.NumCPU(), cfg.Analysis.Workers)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int64(50<<20), cfg.Server.MaxUploadBytes())
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("STATDESC_OUTPUT_DIR", "/tmp/out")
	t.Setenv("STATDESC_WORKERS", "3")
	t.Setenv("STATDESC_CHARTS", "false")
	t.Setenv("STATDESC_MAX_TABLE_ROWS", "5")
	t.Setenv("STATDESC_API_PORT", "9090")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/out", cfg.Output.Dir)
	assert.Equal(t, 3, cfg.Analysis.Workers)
	assert.False(t, cfg.Output.Charts)
	assert.Equal(t, 5, cfg.Output.MaxTableRows)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero workers", "STATDESC_WORKERS", "0"},
		{"negative rows", "STATDESC_MAX_TABLE_ROWS", "-1"},
		{"port out of range", "STATDESC_API_PORT", "70000"},
		{"port not numeric", "STATDESC_API_PORT", "http"},
		{"zero upload", "STATDESC_MAX_UPLOAD_MB", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			require.Error(t, err)
			assert.True(t, errors.IsConfigurationError(err))
		})
	}
}

func writeProfile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadProfile_YAML(t *testing.T) {
	path := writeProfile(t, "profile.yaml", `
sheet: Data
cleaning:
  remove_duplicates: true
columns:
  - name: Age
    type: Continuous
  - name: Level
    order: [low, medium, high]
  - name: Grade
    type: ordinal
    order: [C, B, A]
`)

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "Data", p.Sheet)
	assert.True(t, p.Cleaning.RemoveDuplicates)
	assert.False(t, p.Cleaning.RemoveOutliers)

	types, orderings, err := p.Resolve()
	require.NoError(t, err)
	assert.Equal(t, map[string]vartype.Kind{"Age": vartype.Continuous, "Grade": vartype.Ordinal}, types)
	assert.Equal(t, map[string][]string{
		"Level": {"low", "medium", "high"},
		"Grade": {"C", "B", "A"},
	}, orderings)
}

func TestLoadProfile_JSON(t *testing.T) {
	path := writeProfile(t, "profile.json", `{"columns":[{"name":"flag","type":"binary"}]}`)

	p, err := LoadProfile(path)
	require.NoError(t, err)
	types, _, err := p.Resolve()
	require.NoError(t, err)
	assert.Equal(t, vartype.Binary, types["flag"])
}

func TestLoadProfile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown kind", "columns:\n  - name: x\n    type: interval\n"},
		{"order on non ordinal", "columns:\n  - name: x\n    type: nominal\n    order: [a, b]\n"},
		{"missing name", "columns:\n  - type: nominal\n"},
		{"duplicate column", "columns:\n  - name: x\n  - name: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadProfile(writeProfile(t, "p.yaml", tt.content))
			require.Error(t, err)
			assert.True(t, errors.IsConfigurationError(err))
		})
	}

	_, err := LoadProfile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
}

func TestSaveProfile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	p := &Profile{Columns: []ColumnProfile{
		{Name: "Age", Type: "discrete"},
		{Name: "Level", Type: "ordinal", Order: []string{"low", "high"}},
	}}

	require.NoError(t, SaveProfile(p, path))

	loaded, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, p.Columns, loaded.Columns)
}
