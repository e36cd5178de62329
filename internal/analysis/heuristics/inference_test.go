package heuristics

import (
	"math"
	"testing"

	"statdesc/domain/table"
	"statdesc/internal/analysis/vartype"

	"github.com/stretchr/testify/assert"
)

func TestInfer(t *testing.T) {
	nan := math.NaN()

	tests := []struct {
		name string
		col  table.Column
		want vartype.Kind
	}{
		{"binary integers beat discrete", table.NumericColumn("x", 1, 0, 1, 1, 0), vartype.Binary},
		{"binary text", table.TextColumn("x", "yes", "no", "yes"), vartype.Binary},
		{"binary ignores missing", table.NumericColumn("x", 1, nan, 2, nan, 1), vartype.Binary},
		{"integral numbers", table.NumericColumn("x", 10, 12, 15, 18, 20, 25, 30, 35, 40), vartype.Discrete},
		{"integral floats", table.NumericColumn("x", 1.0, 2.0, 3.0, nan), vartype.Discrete},
		{"fractional numbers", table.NumericColumn("x", 1.5, 2.25, 3.0), vartype.Continuous},
		{"single value is discrete", table.NumericColumn("x", 4, 4, 4), vartype.Discrete},
		{"text", table.TextColumn("x", "cat", "dog", "cat", "bird", "cat"), vartype.Nominal},
		{"all missing", table.NumericColumn("x", nan, nan), vartype.Nominal},
		{"empty", table.NumericColumn("x"), vartype.Nominal},
		{
			name: "mixed numbers and text",
			col:  table.NewColumn("x", []table.Value{table.Number(1), table.Text("a"), table.Number(2)}),
			want: vartype.Nominal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Infer(tt.col))
		})
	}
}

func TestInfer_Deterministic(t *testing.T) {
	col := table.NumericColumn("x", 0.5, 1.5, math.NaN(), 2.5, 0.5)

	first := Infer(col)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Infer(col))
	}
}

func TestInferStrategy_ReturnsMatchingKind(t *testing.T) {
	col := table.NumericColumn("x", 1.5, 2.5, 3.5)

	s := InferStrategy(col)

	assert.Equal(t, vartype.Continuous, s.Kind())
	assert.Equal(t, "Continuous", s.Name())
	assert.True(t, s.IsApplicable(col))
}
