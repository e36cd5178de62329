package vartype

import (
	"fmt"
	"strings"

	"statdesc/domain/stats"
	"statdesc/domain/table"
	"statdesc/internal/errors"
)

// Kind is the closed enumeration of statistical variable types
type Kind string

const (
	Binary     Kind = "binary"
	Discrete   Kind = "discrete"
	Continuous Kind = "continuous"
	Nominal    Kind = "nominal"
	Ordinal    Kind = "ordinal"
)

// Kinds lists every variant in display order
var Kinds = []Kind{Binary, Discrete, Continuous, Nominal, Ordinal}

// Valid reports whether k is one of the five variants
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// IsNumeric reports whether the kind computes numeric summaries
func (k Kind) IsNumeric() bool {
	return k == Discrete || k == Continuous
}

// ParseKind resolves a kind name case-insensitively
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	if !k.Valid() {
		return "", errors.ConfigInvalid(fmt.Sprintf("unknown variable type %q (want one of %s)", name, kindList()))
	}
	return k, nil
}

func kindList() string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// Strategy owns the policy of which statistics apply to a variant
type Strategy interface {
	// Kind identifies the variant
	Kind() Kind
	// Name is the display label
	Name() string
	// IsApplicable describes whether the data fits the variant. It is
	// informational; inference does not consult it.
	IsApplicable(col table.Column) bool
	// Analyze computes the variant's metrics over the cleaned column
	Analyze(col table.Column) stats.AnalysisResult
}

// StrategyFor is the dispatch table from kind to strategy. ordering is only
// used by Ordinal and may be nil.
func StrategyFor(kind Kind, ordering []string) (Strategy, error) {
	switch kind {
	case Binary:
		return BinaryType{}, nil
	case Discrete:
		return DiscreteType{}, nil
	case Continuous:
		return ContinuousType{}, nil
	case Nominal:
		return NominalType{}, nil
	case Ordinal:
		return NewOrdinalType(ordering), nil
	default:
		return nil, errors.ConfigInvalid(fmt.Sprintf("unsupported variable type %q", string(kind)))
	}
}

// MustStrategy is StrategyFor for kinds known to be valid
func MustStrategy(kind Kind) Strategy {
	s, err := StrategyFor(kind, nil)
	if err != nil {
		panic(err)
	}
	return s
}
