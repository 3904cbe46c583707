package duplicate

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/toozej/precureplaylist/internal/normalize"
	"github.com/toozej/precureplaylist/internal/types"
)

// DuplicateService implements the DuplicateDetector interface
type DuplicateService struct {
	spotify types.SpotifyService
	logger  *log.Logger
}

var _ types.DuplicateDetector = (*DuplicateService)(nil)

// NewDuplicateService creates a new duplicate detection service
func NewDuplicateService(spotify types.SpotifyService, logger *log.Logger) *DuplicateService {
	return &DuplicateService{
		spotify: spotify,
		logger:  logger,
	}
}

// Publishable reports whether a track carries a real catalog id.
func Publishable(t types.Track) bool {
	return t.ID != "" && !normalize.IsPlaceholderID(t.ID)
}

// CheckDuplicates splits tracks into those already in the playlist and those
// still to add. Tracks without a catalog id land in neither list, and a
// repeated id counts as a duplicate of its first occurrence.
func (d *DuplicateService) CheckDuplicates(playlistID string, tracks []types.Track) (*types.DuplicateResult, error) {
	logger := d.logger.WithFields(log.Fields{
		"component":   "duplicate_service",
		"operation":   "check_duplicates",
		"playlist_id": playlistID,
	})

	candidates := make([]types.Track, 0, len(tracks))
	for _, track := range tracks {
		if Publishable(track) {
			candidates = append(candidates, track)
		}
	}
	skipped := len(tracks) - len(candidates)

	if len(candidates) == 0 {
		logger.WithField("skipped_count", skipped).Debug("No publishable tracks provided for duplicate check")
		return &types.DuplicateResult{
			DuplicateTracks: []types.Track{},
			NewTracks:       []types.Track{},
			Message:         "No tracks to check",
		}, nil
	}

	logger.WithField("track_count", len(candidates)).Debug("Checking for duplicate tracks in playlist")

	trackIDs := make([]string, len(candidates))
	for i, track := range candidates {
		trackIDs[i] = track.ID
	}

	existsResults, err := d.spotify.CheckTracksInPlaylist(playlistID, trackIDs)
	if err != nil {
		logger.WithError(err).WithField("track_count", len(candidates)).Error("Failed to check tracks in playlist")
		return nil, fmt.Errorf("failed to check tracks in playlist: %w", err)
	}

	result := &types.DuplicateResult{
		DuplicateTracks: []types.Track{},
		NewTracks:       []types.Track{},
	}
	var duplicateTrackNames []string
	seen := make(map[string]bool, len(candidates))
	for i, track := range candidates {
		exists := i < len(existsResults) && existsResults[i]
		if exists || seen[track.ID] {
			result.DuplicateTracks = append(result.DuplicateTracks, track)
			duplicateTrackNames = append(duplicateTrackNames, track.Name)
			continue
		}
		seen[track.ID] = true
		result.NewTracks = append(result.NewTracks, track)
	}
	result.HasDuplicates = len(result.DuplicateTracks) > 0

	if result.HasDuplicates {
		result.Message = fmt.Sprintf("Found %d duplicate track(s): %s",
			len(result.DuplicateTracks), strings.Join(duplicateTrackNames, ", "))

		logger.WithFields(log.Fields{
			"duplicate_count":      len(result.DuplicateTracks),
			"duplicate_tracks":     duplicateTrackNames,
			"total_tracks_checked": len(candidates),
		}).Info("Duplicate tracks detected")
	} else {
		result.Message = "No duplicate tracks found"
		logger.WithField("total_tracks_checked", len(candidates)).Debug("No duplicate tracks found")
	}
	if skipped > 0 {
		result.Message += fmt.Sprintf(" (%d track(s) without a Spotify id skipped)", skipped)
	}

	return result, nil
}
