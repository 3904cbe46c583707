package types

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the ISO-8601 layout used for every timestamp string in
// playlist documents and canonical tracks.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTime renders t in TimeLayout, always in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// SpotifyService defines the interface for Spotify API operations
type SpotifyService interface {
	FetchPlaylist(playlistID string) (any, error)
	SearchTracks(query string, limit int) (any, error)
	CreatePlaylist(name, description string, public bool) (*Playlist, error)
	AddTracksToPlaylist(playlistID string, trackIDs []string) error
	CheckTracksInPlaylist(playlistID string, trackIDs []string) ([]bool, error)
	GetAuthURL() string
	IsAuthenticated() bool
	CompleteAuth(code, state string) error
}

// DuplicateDetector defines the interface for duplicate detection
type DuplicateDetector interface {
	CheckDuplicates(playlistID string, tracks []Track) (*DuplicateResult, error)
}

// PlaylistStore persists imported playlists.
type PlaylistStore interface {
	Save(ctx context.Context, row *PlaylistRow) error
	Get(ctx context.Context, id string) (*PlaylistRow, error)
	List(ctx context.Context, userID string) ([]PlaylistRow, error)
	Delete(ctx context.Context, id string) error
}

// Core data models

// Artist is a credited performer of a track.
type Artist struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Image is one rendition of album artwork.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Album is the release a track belongs to.
type Album struct {
	ID     string  `json:"id,omitempty"`
	Name   string  `json:"name"`
	Images []Image `json:"images"`
}

// Track is the canonical, shape-independent track record.
type Track struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Artists      []Artist          `json:"artists"`
	Album        Album             `json:"album"`
	DurationMS   int               `json:"duration_ms"`
	ExternalURLs map[string]string `json:"external_urls,omitempty"`
	PreviewURL   string            `json:"preview_url,omitempty"`
	AddedAt      string            `json:"added_at"`
}

// ArtistNames returns the artist names in credit order.
func (t *Track) ArtistNames() []string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return names
}

// FirstArtist returns the first credited artist name, or "" when there is none.
func (t *Track) FirstArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].Name
}

// SpotifyURL returns the Spotify link for the track, if known.
func (t *Track) SpotifyURL() string {
	return t.ExternalURLs["spotify"]
}

// String returns a string representation of the track
func (t *Track) String() string {
	artists := strings.Join(t.ArtistNames(), ", ")
	if t.Album.Name != "" {
		return fmt.Sprintf("%s - %s (%s)", artists, t.Name, t.Album.Name)
	}
	return fmt.Sprintf("%s - %s", artists, t.Name)
}

// Creator identifies who built a playlist.
type Creator struct {
	DisplayName string `json:"display_name"`
}

// PlaylistMeta is the descriptive part of a playlist, independent of its tracks.
type PlaylistMeta struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	IsPublic    bool    `json:"is_public"`
	Creator     Creator `json:"creator"`
}

// TotalDurationMS sums the durations of tracks.
func TotalDurationMS(tracks []Track) int {
	total := 0
	for _, t := range tracks {
		total += t.DurationMS
	}
	return total
}

// PlaylistRow is a persisted playlist as the relational store sees it.
type PlaylistRow struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsPublic    bool      `json:"is_public"`
	Tracks      []Track   `json:"tracks"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Meta returns the row's playlist metadata.
func (r *PlaylistRow) Meta() PlaylistMeta {
	return PlaylistMeta{
		Name:        r.Name,
		Description: r.Description,
		IsPublic:    r.IsPublic,
	}
}

// Playlist represents a Spotify playlist
type Playlist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	URI        string `json:"uri"`
	TrackCount int    `json:"track_count"`
	EmbedURL   string `json:"embed_url"`
}

// DuplicateResult represents the result of duplicate detection
type DuplicateResult struct {
	HasDuplicates   bool    `json:"has_duplicates"`
	DuplicateTracks []Track `json:"duplicate_tracks"`
	NewTracks       []Track `json:"new_tracks"`
	Message         string  `json:"message"`
}

// API request/response models

// APIResponse represents a generic API response
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}
