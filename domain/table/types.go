package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ValueKind defines the storage kind for a cell
type ValueKind string

const (
	KindNumeric ValueKind = "numeric"
	KindText    ValueKind = "text"
	KindMissing ValueKind = "missing"
)

// Value is a single typed cell. The zero value is missing.
type Value struct {
	Kind ValueKind `json:"kind"`
	Num  float64   `json:"num,omitempty"`
	Str  string    `json:"str,omitempty"`
}

// Number creates a numeric value. NaN and infinities are stored as missing.
func Number(n float64) Value {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Missing()
	}
	return Value{Kind: KindNumeric, Num: n}
}

// Text creates a text value, empty strings are missing
func Text(s string) Value {
	if s == "" {
		return Missing()
	}
	return Value{Kind: KindText, Str: s}
}

// Missing creates the typed missing marker
func Missing() Value {
	return Value{Kind: KindMissing}
}

// IsMissing reports whether the value is the missing marker
func (v Value) IsMissing() bool {
	return v.Kind == KindMissing || v.Kind == ""
}

// IsNumeric reports whether the value holds a number
func (v Value) IsNumeric() bool {
	return v.Kind == KindNumeric
}

// IsText reports whether the value holds text
func (v Value) IsText() bool {
	return v.Kind == KindText
}

// String renders numbers in their shortest form so that 1.0 prints as "1"
func (v Value) String() string {
	switch v.Kind {
	case KindNumeric:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindText:
		return v.Str
	default:
		return "<missing>"
	}
}

// Key returns a map key that distinguishes the number 1 from the text "1"
func (v Value) Key() string {
	switch v.Kind {
	case KindNumeric:
		return "n:" + strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindText:
		return "s:" + v.Str
	default:
		return "missing"
	}
}

// Less orders numbers before text, numbers ascending and text lexically
func (v Value) Less(o Value) bool {
	if v.Kind != o.Kind {
		return v.Kind == KindNumeric
	}
	if v.Kind == KindNumeric {
		return v.Num < o.Num
	}
	return v.Str < o.Str
}

// MarshalJSON renders a number, a string or null
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumeric:
		return json.Marshal(v.Num)
	case KindText:
		return json.Marshal(v.Str)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a number, a string or null
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = Missing()
	case float64:
		*v = Number(x)
	case string:
		*v = Text(x)
	default:
		return fmt.Errorf("unsupported cell value %s", string(data))
	}
	return nil
}

// Column is an ordered, immutable sequence of values
type Column struct {
	name   string
	values []Value
}

// NewColumn copies values into a new column
func NewColumn(name string, values []Value) Column {
	cp := make([]Value, len(values))
	copy(cp, values)
	return Column{name: name, values: cp}
}

// NumericColumn builds a column from floats; NaN marks a missing entry
func NumericColumn(name string, values ...float64) Column {
	out := make([]Value, len(values))
	for i, x := range values {
		out[i] = Number(x)
	}
	return Column{name: name, values: out}
}

// TextColumn builds a column from strings; "" marks a missing entry
func TextColumn(name string, values ...string) Column {
	out := make([]Value, len(values))
	for i, s := range values {
		out[i] = Text(s)
	}
	return Column{name: name, values: out}
}

// Name returns the column header
func (c Column) Name() string { return c.name }

// Len returns the number of entries including missing ones
func (c Column) Len() int { return len(c.values) }

// At returns the value at index i
func (c Column) At(i int) Value { return c.values[i] }

// Values returns a copy of all entries
func (c Column) Values() []Value {
	cp := make([]Value, len(c.values))
	copy(cp, c.values)
	return cp
}

// MissingCount counts missing entries
func (c Column) MissingCount() int {
	n := 0
	for _, v := range c.values {
		if v.IsMissing() {
			n++
		}
	}
	return n
}

// Present returns the non-missing entries in order
func (c Column) Present() []Value {
	out := make([]Value, 0, len(c.values))
	for _, v := range c.values {
		if !v.IsMissing() {
			out = append(out, v)
		}
	}
	return out
}

// DropMissing returns a cleaned column
func (c Column) DropMissing() Column {
	return Column{name: c.name, values: c.Present()}
}

// Distinct counts distinct non-missing values
func (c Column) Distinct() int {
	seen := make(map[string]struct{})
	for _, v := range c.values {
		if !v.IsMissing() {
			seen[v.Key()] = struct{}{}
		}
	}
	return len(seen)
}

// IsNumeric reports whether every non-missing entry is a number.
// A column with no present values is not numeric.
func (c Column) IsNumeric() bool {
	present := 0
	for _, v := range c.values {
		if v.IsMissing() {
			continue
		}
		if !v.IsNumeric() {
			return false
		}
		present++
	}
	return present > 0
}

// Floats returns the numeric entries, skipping everything else
func (c Column) Floats() []float64 {
	out := make([]float64, 0, len(c.values))
	for _, v := range c.values {
		if v.IsNumeric() {
			out = append(out, v.Num)
		}
	}
	return out
}

// Table is the ingestion shape: ordered headers plus one column each
type Table struct {
	Name    string
	Columns []Column
}

// Headers returns column names in order
func (t *Table) Headers() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name()
	}
	return out
}

// Rows returns the record count, the length of the longest column
func (t *Table) Rows() int {
	n := 0
	for _, c := range t.Columns {
		if c.Len() > n {
			n = c.Len()
		}
	}
	return n
}
