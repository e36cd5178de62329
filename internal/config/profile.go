package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"statdesc/internal/analysis/descriptive"
	"statdesc/internal/analysis/vartype"
	"statdesc/internal/errors"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Profile fixes per-column analysis settings that inference cannot guess.
// Columns are a list rather than a map so names keep their case.
type Profile struct {
	Sheet    string                   `mapstructure:"sheet" yaml:"sheet,omitempty"`
	Cleaning descriptive.CleanOptions `mapstructure:"cleaning" yaml:"cleaning"`
	Columns  []ColumnProfile          `mapstructure:"columns" yaml:"columns"`
}

// ColumnProfile sets the type of one column and, for ordinal columns, the
// category order
type ColumnProfile struct {
	Name  string   `mapstructure:"name" yaml:"name"`
	Type  string   `mapstructure:"type" yaml:"type,omitempty"`
	Order []string `mapstructure:"order" yaml:"order,omitempty,flow"`
}

// LoadProfile reads a YAML, JSON or TOML profile; the format follows the
// file extension
func LoadProfile(path string) (*Profile, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("read profile %s: %w", filepath.Base(path), err))
	}

	var p Profile
	if err := v.Unmarshal(&p); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("unmarshal profile: %w", err))
	}
	if _, _, err := p.Resolve(); err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProfile writes the profile as YAML
func SaveProfile(p *Profile, path string) error {
	b, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

// Resolve validates the column entries and splits them into type overrides
// and orderings. A column with an order and no type is ordinal.
func (p *Profile) Resolve() (map[string]vartype.Kind, map[string][]string, error) {
	types := make(map[string]vartype.Kind)
	orderings := make(map[string][]string)
	seen := make(map[string]bool)

	for i, c := range p.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, nil, errors.ConfigInvalid(fmt.Sprintf("profile column #%d has no name", i+1))
		}
		if seen[name] {
			return nil, nil, errors.ConfigInvalid(fmt.Sprintf("profile lists column %q twice", name))
		}
		seen[name] = true

		if c.Type != "" {
			k, err := vartype.ParseKind(c.Type)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "profile column %q", name)
			}
			types[name] = k
			if len(c.Order) > 0 && k != vartype.Ordinal {
				return nil, nil, errors.ConfigInvalid(fmt.Sprintf("profile column %q: order is only valid for ordinal columns", name))
			}
		}
		if len(c.Order) > 0 {
			orderings[name] = c.Order
		}
	}
	return types, orderings, nil
}
