package search

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/sirupsen/logrus"

	"github.com/toozej/precureplaylist/internal/types"
)

// DefaultMinConfidence drops tracks that only matched by chance.
const DefaultMinConfidence = 0.4

// TrackSearcher ranks the tracks of a playlist against a free-text query
type TrackSearcher struct {
	logger        *logrus.Logger
	minConfidence float64
}

// NewTrackSearcher creates a new track searcher. A minConfidence of zero or
// less uses DefaultMinConfidence.
func NewTrackSearcher(logger *logrus.Logger, minConfidence float64) *TrackSearcher {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	return &TrackSearcher{
		logger:        logger,
		minConfidence: minConfidence,
	}
}

// TrackMatch represents a search result with confidence scores for song, artist, and album
type TrackMatch struct {
	Track            types.Track `json:"track"`
	Index            int         `json:"index"`
	SongConfidence   float64     `json:"song_confidence"`
	ArtistConfidence float64     `json:"artist_confidence"`
	AlbumConfidence  float64     `json:"album_confidence"`
	Confidence       float64     `json:"confidence"`
}

// IsHighConfidence returns true if the match confidence is at least 0.8
func (m TrackMatch) IsHighConfidence() bool {
	return m.Confidence >= 0.8
}

// ParseQuery splits an "artist - song" query. A query without the separator
// is returned as song only.
func ParseQuery(query string) (artist, song string) {
	if before, after, ok := strings.Cut(query, " - "); ok {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return "", strings.TrimSpace(query)
}

// Search scores every track and returns those at or above the minimum
// confidence, best first. Ties keep playlist order.
//
// A plain query is compared with the track name, first artist, and album,
// and the best of the three wins. An "artist - song" query weights artist
// 50%, song 35%, and album 15% (the album scoring neutral).
func (s *TrackSearcher) Search(tracks []types.Track, query string) []TrackMatch {
	matches := []TrackMatch{}
	artistQuery, songQuery := ParseQuery(query)
	if songQuery == "" {
		return matches
	}

	for i := range tracks {
		t := &tracks[i]
		m := TrackMatch{
			Track:            *t,
			Index:            i,
			SongConfidence:   calculateMatchConfidence(songQuery, t.Name),
			ArtistConfidence: calculateMatchConfidence(songQuery, t.FirstArtist()),
			AlbumConfidence:  calculateMatchConfidence(songQuery, t.Album.Name),
		}

		if artistQuery != "" {
			m.ArtistConfidence = calculateMatchConfidence(artistQuery, t.FirstArtist())
			m.AlbumConfidence = 0.5
			m.Confidence = (m.ArtistConfidence * 0.5) + (m.SongConfidence * 0.35) + (m.AlbumConfidence * 0.15)
		} else {
			m.Confidence = max(m.SongConfidence, m.ArtistConfidence, m.AlbumConfidence)
		}

		if m.Confidence >= s.minConfidence {
			matches = append(matches, m)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})

	fields := logrus.Fields{
		"component":     "track_searcher",
		"operation":     "search",
		"query":         query,
		"tracks_total":  len(tracks),
		"matches_found": len(matches),
	}
	if len(matches) > 0 {
		fields["best_match"] = matches[0].Track.Name
		fields["best_confidence"] = matches[0].Confidence
	}
	s.logger.WithFields(fields).Debug("Track search completed")

	return matches
}

// calculateMatchConfidence calculates a confidence score between 0.1 and 1.0
// for how well the found item matches the search query
func calculateMatchConfidence(query, itemName string) float64 {
	normalizedQuery := strings.ToLower(strings.TrimSpace(query))
	normalizedItem := strings.ToLower(strings.TrimSpace(itemName))

	if normalizedQuery == "" || normalizedItem == "" {
		return 0.1
	}

	// Exact match gets perfect score
	if normalizedQuery == normalizedItem {
		return 1.0
	}

	// Check if query is contained in item name
	if strings.Contains(normalizedItem, normalizedQuery) {
		ratio := float64(len(normalizedQuery)) / float64(len(normalizedItem))
		return 0.8 + (ratio * 0.2) // Score between 0.8 and 1.0
	}

	// Check if item name is contained in query
	if strings.Contains(normalizedQuery, normalizedItem) {
		ratio := float64(len(normalizedItem)) / float64(len(normalizedQuery))
		return 0.7 + (ratio * 0.2) // Score between 0.7 and 0.9
	}

	matches := fuzzy.Find(normalizedQuery, []string{normalizedItem})
	if len(matches) > 0 {
		// Fuzzy scores grow with consecutive and word-boundary hits, so
		// normalize against a rough ceiling and keep them below contains hits
		fuzzyScore := float64(matches[0].Score)
		maxExpectedScore := float64(len(normalizedQuery) * 2)
		confidence := (fuzzyScore / maxExpectedScore) * 0.7

		if confidence > 0.7 {
			confidence = 0.7
		}
		if confidence < 0.1 {
			confidence = 0.1
		}
		return confidence
	}

	return 0.1
}
