package coercer

import (
	"testing"

	"statdesc/domain/table"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		ok    bool
	}{
		{"integer", "42", 42, true},
		{"point decimal", "3.14", 3.14, true},
		{"comma decimal", "3,14", 3.14, true},
		{"european thousands", "1.234,56", 1234.56, true},
		{"french thousands", "1 234,5", 1234.5, true},
		{"us thousands", "1,234.56", 1234.56, true},
		{"repeated comma thousands", "1,234,567", 1234567, true},
		{"parentheses negative", "(12.5)", -12.5, true},
		{"currency", "$ 99.90", 99.9, true},
		{"percent", "45%", 45, true},
		{"scientific", "1e3", 1000, true},
		{"padded", "  7 ", 7, true},
		{"text", "abc", 0, false},
		{"empty", "", 0, false},
		{"infinity", "Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestIsMissing(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	for _, raw := range []string{"", " ", "NA", "n/a", "NaN", "NULL", "None"} {
		assert.True(t, c.IsMissing(raw), raw)
	}
	assert.False(t, c.IsMissing("0"))
	assert.False(t, c.IsMissing("nothing"))
}

func TestCoerceColumn_Numeric(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	col := c.CoerceColumn("price", []string{"1,5", "2,25", "NA", "oops", "3"})

	require.Equal(t, 5, col.Len())
	assert.True(t, col.IsNumeric())
	assert.Equal(t, []float64{1.5, 2.25, 3}, col.Floats())
	assert.Equal(t, 2, col.MissingCount())
}

func TestCoerceColumn_MostlyTextStaysText(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	col := c.CoerceColumn("pet", []string{"cat", "dog", "3", " bird  house "})

	assert.False(t, col.IsNumeric())
	assert.Equal(t, table.Text("3"), col.At(2))
	assert.Equal(t, table.Text("bird house"), col.At(3))
}

func TestCoerceColumn_HalfNumericIsNumeric(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	col := c.CoerceColumn("x", []string{"1", "a", "2", "b"})

	assert.True(t, col.IsNumeric())
	assert.Equal(t, 2, col.MissingCount())
}

func TestCoerceColumn_AllMissing(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	col := c.CoerceColumn("x", []string{"", "NA"})

	assert.Equal(t, 2, col.MissingCount())
	assert.False(t, col.IsNumeric())
}

func TestAnalyzeColumn(t *testing.T) {
	c := NewTypeCoercer(CoercionConfig{NumericThreshold: 0.8, MissingMarkers: DefaultMissingMarkers})

	analysis := c.AnalyzeColumn([]string{"1", "2", "x", "", "4"})

	assert.Equal(t, 5, analysis.TotalCount)
	assert.Equal(t, 4, analysis.ValidCount)
	assert.Equal(t, 3, analysis.NumericCount)
	assert.InDelta(t, 0.75, analysis.NumericRatio, 1e-12)
	assert.False(t, analysis.Numeric)
}
