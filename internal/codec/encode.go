// Package codec converts between canonical playlists and the versioned
// playlist document used for export and import.
package codec

import (
	"fmt"
	"strings"
	"time"

	"github.com/toozej/precureplaylist/internal/series"
	"github.com/toozej/precureplaylist/internal/stats"
	"github.com/toozej/precureplaylist/internal/types"
)

// Format is the export verbosity level.
type Format string

const (
	FormatDetailed Format = "detailed"
	FormatSimple   Format = "simple"
)

// DefaultFormatVersion is written to meta.format_version.
const DefaultFormatVersion = "1.0"

// DefaultAppName is written to and expected in meta.app_name unless
// overridden.
const DefaultAppName = "PrecureProfileMaker"

// ParseFormat converts a user-supplied mode name to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatDetailed:
		return FormatDetailed, nil
	case FormatSimple:
		return FormatSimple, nil
	}
	return "", fmt.Errorf("%w: %q (want %q or %q)", ErrUnknownFormat, s, FormatDetailed, FormatSimple)
}

// Document is a playlist document ready for JSON serialization.
type Document struct {
	Meta       Meta              `json:"meta"`
	Playlist   PlaylistInfo      `json:"playlist"`
	Tracks     []any             `json:"tracks"`
	Statistics *stats.Statistics `json:"statistics,omitempty"`
}

// Meta describes how and when the document was produced.
type Meta struct {
	FormatVersion string `json:"format_version"`
	ExportDate    string `json:"export_date"`
	FormatType    Format `json:"format_type"`
	AppName       string `json:"app_name,omitempty"`
}

// PlaylistInfo is the playlist header of a document.
type PlaylistInfo struct {
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	IsPublic        bool          `json:"is_public"`
	TrackCount      int           `json:"track_count"`
	TotalDurationMS int           `json:"total_duration_ms"`
	Creator         types.Creator `json:"creator"`
}

// DetailedTrack is a full track plus its inferred series annotation.
type DetailedTrack struct {
	SpotifyID    string            `json:"spotify_id"`
	Name         string            `json:"name"`
	Artists      []types.Artist    `json:"artists"`
	Album        types.Album       `json:"album"`
	DurationMS   int               `json:"duration_ms"`
	PreviewURL   string            `json:"preview_url,omitempty"`
	ExternalURLs map[string]string `json:"external_urls"`
	AddedAt      string            `json:"added_at"`
	PrecureInfo  series.Info       `json:"precure_info"`
}

// SimpleTrack is the reduced track schema used for lightweight sharing.
type SimpleTrack struct {
	SpotifyID  string   `json:"spotify_id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	AlbumName  string   `json:"album_name"`
	DurationMS int      `json:"duration_ms"`
	SpotifyURL string   `json:"spotify_url"`
	AddedAt    string   `json:"added_at"`
}

// Encoder builds documents. The zero value is not usable; use NewEncoder.
type Encoder struct {
	appName       string
	formatVersion string
	classifier    series.Classifier
	now           func() time.Time
}

// EncoderOption configures an Encoder.
type EncoderOption func(*Encoder)

// WithAppName sets the identifier written to meta.app_name.
func WithAppName(name string) EncoderOption {
	return func(e *Encoder) {
		e.appName = name
	}
}

// WithFormatVersion overrides meta.format_version.
func WithFormatVersion(v string) EncoderOption {
	return func(e *Encoder) {
		if v != "" {
			e.formatVersion = v
		}
	}
}

// WithClassifier sets the series and type tables used in detailed mode.
func WithClassifier(c series.Classifier) EncoderOption {
	return func(e *Encoder) {
		e.classifier = c
	}
}

// WithEncoderClock sets the time source for meta.export_date.
func WithEncoderClock(now func() time.Time) EncoderOption {
	return func(e *Encoder) {
		e.now = now
	}
}

// NewEncoder creates an Encoder using the built-in tables.
func NewEncoder(opts ...EncoderOption) *Encoder {
	e := &Encoder{
		appName:       DefaultAppName,
		formatVersion: DefaultFormatVersion,
		classifier:    series.DefaultClassifier(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode builds a document for meta and tracks in the given format. It does
// not filter; callers pass tracks that already went through the keyword filter.
func (e *Encoder) Encode(meta types.PlaylistMeta, tracks []types.Track, format Format) (*Document, error) {
	if format != FormatDetailed && format != FormatSimple {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	doc := &Document{
		Meta: Meta{
			FormatVersion: e.formatVersion,
			ExportDate:    types.FormatTime(e.now()),
			FormatType:    format,
			AppName:       e.appName,
		},
		Playlist: PlaylistInfo{
			Name:            meta.Name,
			Description:     meta.Description,
			IsPublic:        meta.IsPublic,
			TrackCount:      len(tracks),
			TotalDurationMS: types.TotalDurationMS(tracks),
			Creator:         meta.Creator,
		},
		Tracks: make([]any, 0, len(tracks)),
	}

	for _, t := range tracks {
		if format == FormatSimple {
			doc.Tracks = append(doc.Tracks, simpleTrack(t))
			continue
		}
		doc.Tracks = append(doc.Tracks, e.detailedTrack(t))
	}

	if format == FormatDetailed {
		s := stats.Aggregate(tracks, e.classifier)
		doc.Statistics = &s
	}

	return doc, nil
}

func (e *Encoder) detailedTrack(t types.Track) DetailedTrack {
	artists := t.Artists
	if artists == nil {
		artists = []types.Artist{}
	}
	album := t.Album
	if album.Images == nil {
		album.Images = []types.Image{}
	}
	urls := t.ExternalURLs
	if urls == nil {
		urls = map[string]string{}
	}

	return DetailedTrack{
		SpotifyID:    t.ID,
		Name:         t.Name,
		Artists:      artists,
		Album:        album,
		DurationMS:   t.DurationMS,
		PreviewURL:   t.PreviewURL,
		ExternalURLs: urls,
		AddedAt:      t.AddedAt,
		PrecureInfo:  e.classifier.Classify(t),
	}
}

func simpleTrack(t types.Track) SimpleTrack {
	return SimpleTrack{
		SpotifyID:  t.ID,
		Name:       t.Name,
		Artists:    t.ArtistNames(),
		AlbumName:  t.Album.Name,
		DurationMS: t.DurationMS,
		SpotifyURL: t.SpotifyURL(),
		AddedAt:    t.AddedAt,
	}
}
