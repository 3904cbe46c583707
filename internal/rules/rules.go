// Package rules loads the keyword, series, and type tables, either the
// built-in ones or an override file in YAML.
package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/toozej/precureplaylist/internal/keyword"
	"github.com/toozej/precureplaylist/internal/series"
)

// Tables is the full set of inference tables.
type Tables struct {
	Keywords []string      `yaml:"keywords"`
	Series   []series.Rule `yaml:"series"`
	Types    []series.Rule `yaml:"types"`
}

// Default returns the built-in tables.
func Default() Tables {
	return Tables{
		Keywords: keyword.DefaultWords(),
		Series:   series.DefaultSeriesRules(),
		Types:    series.DefaultTypeRules(),
	}
}

// Load reads tables from a YAML file. Sections missing from the file keep
// their built-in values. An empty path returns Default.
func Load(path string) (Tables, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator config
	if err != nil {
		return Tables{}, fmt.Errorf("failed to read rules file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML table data.
func Parse(data []byte) (Tables, error) {
	var file Tables
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Tables{}, fmt.Errorf("failed to parse rules file: %w", err)
	}

	t := Default()
	if file.Keywords != nil {
		t.Keywords = file.Keywords
	}
	if file.Series != nil {
		t.Series = file.Series
	}
	if file.Types != nil {
		t.Types = file.Types
	}
	return t, nil
}

// KeywordSet builds the keyword filter set.
func (t Tables) KeywordSet() keyword.Set {
	return keyword.NewSet(t.Keywords...)
}

// Classifier builds the series and type classifier.
func (t Tables) Classifier() series.Classifier {
	return series.Classifier{Series: t.Series, Types: t.Types}
}
