// Package keyword decides whether a track belongs to the Precure franchise.
//
// Matching is a case-insensitive substring test of every keyword against the
// track name, the space-joined artist names, and the album name. A single hit
// anywhere qualifies the track.
package keyword

import (
	"strings"

	"github.com/toozej/precureplaylist/internal/types"
)

// Set is an ordered, lower-cased keyword list. The zero value is empty and
// matches nothing.
type Set struct {
	words []string
}

// NewSet builds a Set from words. Words are trimmed and lower-cased; empty
// words and repeats are dropped.
func NewSet(words ...string) Set {
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return Set{words: out}
}

// Default returns the built-in franchise keyword set.
func Default() Set {
	return NewSet(defaultKeywords...)
}

// DefaultWords returns a copy of the built-in keyword table.
func DefaultWords() []string {
	out := make([]string, len(defaultKeywords))
	copy(out, defaultKeywords)
	return out
}

// Len returns the number of keywords.
func (s Set) Len() int {
	return len(s.words)
}

// Words returns a copy of the keywords in declaration order.
func (s Set) Words() []string {
	out := make([]string, len(s.words))
	copy(out, s.words)
	return out
}

// Match reports whether any keyword occurs in the track's name, artists, or album.
func (s Set) Match(t types.Track) bool {
	if len(s.words) == 0 {
		return false
	}

	fields := [...]string{
		strings.ToLower(t.Name),
		strings.ToLower(strings.Join(t.ArtistNames(), " ")),
		strings.ToLower(t.Album.Name),
	}

	for _, w := range s.words {
		for _, f := range fields {
			if strings.Contains(f, w) {
				return true
			}
		}
	}
	return false
}

// Filter returns the tracks matched by set, in their original order.
// An empty set or an empty track list yields an empty result.
func Filter(tracks []types.Track, set Set) []types.Track {
	matched := make([]types.Track, 0)
	if len(tracks) == 0 || set.Len() == 0 {
		return matched
	}

	for _, t := range tracks {
		if set.Match(t) {
			matched = append(matched, t)
		}
	}
	return matched
}
