package coercer

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"statdesc/domain/table"
)

// TypeCoercer turns raw text cells into typed column values
type TypeCoercer struct {
	config  CoercionConfig
	missing map[string]struct{}
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	NumericThreshold float64  `json:"numeric_threshold" mapstructure:"numeric_threshold"` // share of present cells that must parse as numbers
	MissingMarkers   []string `json:"missing_markers" mapstructure:"missing_markers"`     // compared case-insensitively
	NormalizeStrings bool     `json:"normalize_strings" mapstructure:"normalize_strings"` // collapse inner whitespace
}

// DefaultMissingMarkers are the cell spellings read as missing
var DefaultMissingMarkers = []string{"", "na", "n/a", "nan", "null", "none"}

// DefaultCoercionConfig returns sensible defaults
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold: 0.5,
		MissingMarkers:   DefaultMissingMarkers,
		NormalizeStrings: true,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	missing := make(map[string]struct{}, len(config.MissingMarkers))
	for _, m := range config.MissingMarkers {
		missing[strings.ToLower(strings.TrimSpace(m))] = struct{}{}
	}
	return &TypeCoercer{config: config, missing: missing}
}

// IsMissing reports whether a raw cell is a missing marker
func (c *TypeCoercer) IsMissing(raw string) bool {
	_, ok := c.missing[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// CoerceColumn builds a numeric column when enough present cells parse as
// numbers (unparseable cells become missing), and a text column otherwise
func (c *TypeCoercer) CoerceColumn(name string, cells []string) table.Column {
	analysis := c.AnalyzeColumn(cells)
	values := make([]table.Value, len(cells))
	for i, raw := range cells {
		switch {
		case c.IsMissing(raw):
			values[i] = table.Missing()
		case analysis.Numeric:
			if n, ok := ParseNumber(raw); ok {
				values[i] = table.Number(n)
			} else {
				values[i] = table.Missing()
			}
		default:
			values[i] = table.Text(c.normalizeString(raw))
		}
	}
	return table.NewColumn(name, values)
}

// AnalyzeColumn counts how many present cells parse as numbers
func (c *TypeCoercer) AnalyzeColumn(cells []string) ColumnAnalysis {
	analysis := ColumnAnalysis{TotalCount: len(cells)}
	for _, raw := range cells {
		if c.IsMissing(raw) {
			continue
		}
		analysis.ValidCount++
		if _, ok := ParseNumber(raw); ok {
			analysis.NumericCount++
		}
	}
	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
	}
	analysis.Numeric = analysis.ValidCount > 0 && analysis.NumericRatio >= c.config.NumericThreshold
	return analysis
}

// ColumnAnalysis contains the results of type distribution analysis
type ColumnAnalysis struct {
	TotalCount   int     `json:"total_count"`
	ValidCount   int     `json:"valid_count"`
	NumericCount int     `json:"numeric_count"`
	NumericRatio float64 `json:"numeric_ratio"`
	Numeric      bool    `json:"numeric"`
}

// ParseNumber parses a number written with point or comma decimals.
// Handles parentheses for negatives, thousands separators, currency
// symbols and a trailing percent sign.
func ParseNumber(raw string) (float64, bool) {
	cleanVal := strings.TrimSpace(raw)
	if cleanVal == "" {
		return 0, false
	}

	// (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	for _, symbol := range []string{"$", "€", "£", "¥", "USD", "EUR", "GBP", "JPY", "%"} {
		cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
	}
	cleanVal = strings.TrimSpace(cleanVal)
	cleanVal = strings.ReplaceAll(cleanVal, "\u00a0", " ")

	hasComma := strings.Contains(cleanVal, ",")
	hasPeriod := strings.Contains(cleanVal, ".")
	hasSpace := strings.Contains(cleanVal, " ")

	switch {
	case hasComma && (hasPeriod || hasSpace):
		// 1.234,56 or 1 234,56 use the comma as decimal mark; 1,234.56 does not
		commaIdx := strings.LastIndex(cleanVal, ",")
		afterComma := cleanVal[commaIdx+1:]
		if len(afterComma) <= 3 && allDigits(afterComma) {
			cleanVal = strings.ReplaceAll(cleanVal, ".", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
			cleanVal = strings.ReplaceAll(cleanVal, " ", "")
		}
	case hasComma:
		if strings.Count(cleanVal, ",") > 1 {
			cleanVal = strings.ReplaceAll(cleanVal, ",", "")
		} else {
			cleanVal = strings.ReplaceAll(cleanVal, ",", ".")
		}
	default:
		cleanVal = strings.ReplaceAll(cleanVal, " ", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	val, err := strconv.ParseFloat(cleanVal, 64)
	if err != nil || math.IsInf(val, 0) || math.IsNaN(val) {
		return 0, false
	}
	return val, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var whitespace = regexp.MustCompile(`\s+`)

// normalizeString trims, collapses whitespace and strips control characters.
// Case is kept: category labels are compared verbatim.
func (c *TypeCoercer) normalizeString(s string) string {
	s = strings.TrimSpace(s)
	if !c.config.NormalizeStrings {
		return s
	}
	s = whitespace.ReplaceAllString(s, " ")
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}
