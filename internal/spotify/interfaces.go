package spotify

import "github.com/toozej/precureplaylist/internal/types"

// api is the subset of Client that Service depends on.
type api interface {
	GetAuthURL() string
	IsAuthenticated() bool
	CompleteAuth(code, state string) error
	FetchPlaylist(playlistID string) (map[string]any, error)
	SearchTracks(query string, limit int) ([]any, error)
	CreatePlaylist(name, description string, public bool) (*types.Playlist, error)
	AddTracksToPlaylist(playlistID string, trackIDs []string) error
	CheckTracksInPlaylist(playlistID string, trackIDs []string) ([]bool, error)
}
