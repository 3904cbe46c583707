package spotify

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/toozej/precureplaylist/internal/types"
	"github.com/toozej/precureplaylist/pkg/config"
)

// ErrClientUnavailable is returned when the service was built without a client.
var ErrClientUnavailable = errors.New("spotify client not available")

// Service implements the types.SpotifyService interface
type Service struct {
	client api
	logger *logrus.Logger
}

var _ types.SpotifyService = (*Service)(nil)

// NewService creates a new Spotify service that implements types.SpotifyService.
// A client that cannot be created (missing credentials) leaves the service
// usable for local-only work; every remote call then returns ErrClientUnavailable.
func NewService(cfg config.SpotifyConfig, logger *logrus.Logger) *Service {
	logger.WithFields(logrus.Fields{
		"client_id":     cfg.ClientID,
		"client_secret": cfg.ClientSecret != "",
		"redirect_url":  cfg.RedirectURL,
	}).Debug("Creating Spotify service with config")

	client, err := NewClient(cfg, logger)
	if err != nil {
		logger.WithError(err).Debug("Spotify client not created, remote operations disabled")
		return &Service{logger: logger}
	}

	return &Service{client: client, logger: logger}
}

func (s *Service) log(operation string) *logrus.Entry {
	return s.logger.WithFields(logrus.Fields{
		"component": "spotify_service",
		"operation": operation,
	})
}

// Available reports whether a client was configured.
func (s *Service) Available() bool {
	return s.client != nil
}

// GetAuthURL returns the URL for user authentication
func (s *Service) GetAuthURL() string {
	if s.client == nil {
		return ""
	}
	return s.client.GetAuthURL()
}

// IsAuthenticated returns whether the user is authenticated
func (s *Service) IsAuthenticated() bool {
	if s.client == nil {
		return false
	}
	return s.client.IsAuthenticated()
}

// CompleteAuth completes the authentication process
func (s *Service) CompleteAuth(code, state string) error {
	if s.client == nil {
		return ErrClientUnavailable
	}
	return s.client.CompleteAuth(code, state)
}

// FetchPlaylist returns the playlist as a decoded platform API response.
func (s *Service) FetchPlaylist(playlistID string) (any, error) {
	if s.client == nil {
		return nil, ErrClientUnavailable
	}

	logger := s.log("fetch_playlist").WithField("playlist_id", playlistID)
	logger.Debug("Fetching playlist")

	doc, err := s.client.FetchPlaylist(playlistID)
	if err != nil {
		logger.WithError(err).Error("Failed to fetch playlist")
		return nil, err
	}

	logger.WithField("playlist_name", doc["name"]).Info("Fetched playlist")
	return doc, nil
}

// SearchTracks returns catalog matches as a decoded array of track objects.
func (s *Service) SearchTracks(query string, limit int) (any, error) {
	if s.client == nil {
		return nil, ErrClientUnavailable
	}

	logger := s.log("search_tracks").WithField("query", query)
	logger.Debug("Searching for tracks")

	tracks, err := s.client.SearchTracks(query, limit)
	if err != nil {
		logger.WithError(err).Error("Failed to search for tracks")
		return nil, err
	}

	logger.WithField("tracks_found", len(tracks)).Info("Track search completed successfully")
	return tracks, nil
}

// AddTracksToPlaylist adds tracks to a specified playlist
func (s *Service) AddTracksToPlaylist(playlistID string, trackIDs []string) error {
	if s.client == nil {
		return ErrClientUnavailable
	}

	logger := s.log("add_tracks").WithFields(logrus.Fields{
		"playlist_id": playlistID,
		"track_count": len(trackIDs),
	})
	logger.WithField("track_ids", trackIDs).Debug("Adding tracks to playlist")

	if err := s.client.AddTracksToPlaylist(playlistID, trackIDs); err != nil {
		logger.WithError(err).Error("Failed to add tracks to playlist")
		return err
	}

	logger.Info("Successfully added tracks to playlist")
	return nil
}

// CheckTracksInPlaylist checks if tracks already exist in a playlist
func (s *Service) CheckTracksInPlaylist(playlistID string, trackIDs []string) ([]bool, error) {
	if s.client == nil {
		return nil, ErrClientUnavailable
	}

	logger := s.log("check_tracks").WithFields(logrus.Fields{
		"playlist_id": playlistID,
		"track_count": len(trackIDs),
	})
	logger.Debug("Checking for duplicate tracks in playlist")

	results, err := s.client.CheckTracksInPlaylist(playlistID, trackIDs)
	if err != nil {
		logger.WithError(err).Error("Failed to check tracks in playlist")
		return nil, err
	}

	duplicateCount := 0
	for _, isDuplicate := range results {
		if isDuplicate {
			duplicateCount++
		}
	}

	logger.WithField("duplicate_count", duplicateCount).Info("Completed duplicate track check")
	return results, nil
}

// CreatePlaylist creates a new playlist with the given name and description
func (s *Service) CreatePlaylist(name, description string, public bool) (*types.Playlist, error) {
	if s.client == nil {
		return nil, ErrClientUnavailable
	}

	logger := s.log("create_playlist").WithField("playlist_name", name)
	logger.WithFields(logrus.Fields{
		"description": description,
		"public":      public,
	}).Debug("Creating new playlist")

	playlist, err := s.client.CreatePlaylist(name, description, public)
	if err != nil {
		logger.WithError(err).Error("Failed to create playlist")
		return nil, err
	}

	logger.WithField("playlist_id", playlist.ID).Info("Successfully created playlist")
	return playlist, nil
}
