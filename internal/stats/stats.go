// Package stats summarizes a track list for embedding in detailed exports.
package stats

import (
	"github.com/toozej/precureplaylist/internal/series"
	"github.com/toozej/precureplaylist/internal/types"
)

// Statistics is the summary block of a detailed playlist document.
type Statistics struct {
	SeriesBreakdown      map[string]int `json:"series_breakdown"`
	TypeBreakdown        map[string]int `json:"type_breakdown"`
	TotalDurationMinutes int            `json:"total_duration_minutes"`
	ArtistCount          int            `json:"artist_count"`
}

// Aggregate computes Statistics over tracks using c for series and type
// inference. Only the first artist of each track counts toward ArtistCount.
func Aggregate(tracks []types.Track, c series.Classifier) Statistics {
	s := Statistics{
		SeriesBreakdown: make(map[string]int),
		TypeBreakdown:   make(map[string]int),
	}

	artists := make(map[string]struct{})
	totalMS := 0

	for _, t := range tracks {
		totalMS += t.DurationMS

		if name := t.FirstArtist(); name != "" {
			artists[name] = struct{}{}
		}

		info := c.Classify(t)
		s.SeriesBreakdown[info.Series]++
		s.TypeBreakdown[info.Type]++
	}

	s.TotalDurationMinutes = totalMS / 60000
	s.ArtistCount = len(artists)
	return s
}
