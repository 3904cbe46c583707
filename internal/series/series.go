// Package series guesses which Precure series a track comes from and what
// role it plays (opening, ending, insert song).
//
// Both guesses use ordered (substring, label) tables. Rules are evaluated in
// declaration order and the first rule whose substring occurs in any scanned
// field wins, so reordering a table changes the statistics it produces.
package series

import (
	"strings"

	"github.com/toozej/precureplaylist/internal/types"
)

// Labels produced when no rule matches.
const (
	SeriesUnknown = "unknown"
	TypeUnknown   = "unknown"
)

// Track type labels.
const (
	TypeOpening    = "opening"
	TypeEnding     = "ending"
	TypeInsertSong = "insert_song"
)

// Rule maps a lower-cased substring to a label.
type Rule struct {
	Match string `json:"match" yaml:"match"`
	Label string `json:"label" yaml:"label"`
}

// Info is the inferred annotation attached to a track in detailed exports.
type Info struct {
	Series     string  `json:"series"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// FirstMatch scans rules in order and returns the label of the first rule
// whose substring occurs in any of fields. Fields are compared lower-cased.
func FirstMatch(rules []Rule, fields ...string) (string, bool) {
	lowered := make([]string, len(fields))
	for i, f := range fields {
		lowered[i] = strings.ToLower(f)
	}

	for _, r := range rules {
		needle := strings.ToLower(r.Match)
		if needle == "" {
			continue
		}
		for _, f := range lowered {
			if strings.Contains(f, needle) {
				return r.Label, true
			}
		}
	}
	return "", false
}

// Classifier holds the series and type tables used for inference.
type Classifier struct {
	Series []Rule
	Types  []Rule
}

// DefaultClassifier returns a Classifier over the built-in tables.
func DefaultClassifier() Classifier {
	return Classifier{
		Series: DefaultSeriesRules(),
		Types:  DefaultTypeRules(),
	}
}

// InferSeries returns the inferred series label for t.
func (c Classifier) InferSeries(t types.Track) (string, bool) {
	if label, ok := FirstMatch(c.Series, t.Name, t.Album.Name); ok {
		return label, true
	}
	return SeriesUnknown, false
}

// InferType returns the inferred type label for t.
func (c Classifier) InferType(t types.Track) (string, bool) {
	if label, ok := FirstMatch(c.Types, t.Name, t.Album.Name); ok {
		return label, true
	}
	return TypeUnknown, false
}

// Classify infers both labels and a rough confidence for t.
func (c Classifier) Classify(t types.Track) Info {
	seriesLabel, seriesHit := c.InferSeries(t)
	typeLabel, typeHit := c.InferType(t)

	return Info{
		Series:     seriesLabel,
		Type:       typeLabel,
		Confidence: confidence(seriesHit, typeHit),
	}
}

func confidence(seriesHit, typeHit bool) float64 {
	switch {
	case seriesHit && typeHit:
		return 0.9
	case seriesHit:
		return 0.6
	case typeHit:
		return 0.3
	default:
		return 0.1
	}
}
