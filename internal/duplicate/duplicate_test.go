package duplicate

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toozej/precureplaylist/internal/types"
)

// fakeCatalog answers membership checks; every other SpotifyService method
// is left to the nil embedded interface.
type fakeCatalog struct {
	types.SpotifyService
	check func(playlistID string, trackIDs []string) ([]bool, error)
}

func (f *fakeCatalog) CheckTracksInPlaylist(playlistID string, trackIDs []string) ([]bool, error) {
	return f.check(playlistID, trackIDs)
}

func track(id, name string) types.Track {
	return types.Track{ID: id, Name: name, Album: types.Album{Name: "Album"}}
}

func TestNewDuplicateService(t *testing.T) {
	logger := logrus.New()
	catalog := &fakeCatalog{}

	svc := NewDuplicateService(catalog, logger)

	require.NotNil(t, svc)
	assert.Same(t, catalog, svc.spotify)
	assert.Same(t, logger, svc.logger)
}

func TestPublishable(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"4uLU6hMCjMI75M1A2tKUQC", true},
		{"local_1707039000000_abcdef123", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, Publishable(types.Track{ID: tt.id}))
		})
	}
}

func TestDuplicateService_CheckDuplicates(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	tests := []struct {
		name          string
		tracks        []types.Track
		wantIDs       []string
		mockExists    []bool
		mockError     error
		expectedError bool
		checkResult   func(*testing.T, *types.DuplicateResult)
	}{
		{
			name:   "no tracks provided",
			tracks: []types.Track{},
			checkResult: func(t *testing.T, result *types.DuplicateResult) {
				assert.False(t, result.HasDuplicates)
				assert.Equal(t, "No tracks to check", result.Message)
				assert.Empty(t, result.DuplicateTracks)
				assert.Empty(t, result.NewTracks)
			},
		},
		{
			name:   "only placeholder ids",
			tracks: []types.Track{track("local_1_aaaaaaaaa", "Local 1"), track("", "Unknown")},
			checkResult: func(t *testing.T, result *types.DuplicateResult) {
				assert.False(t, result.HasDuplicates)
				assert.Equal(t, "No tracks to check", result.Message)
			},
		},
		{
			name:       "no duplicates found",
			tracks:     []types.Track{track("track1", "Song 1"), track("track2", "Song 2")},
			wantIDs:    []string{"track1", "track2"},
			mockExists: []bool{false, false},
			checkResult: func(t *testing.T, result *types.DuplicateResult) {
				assert.False(t, result.HasDuplicates)
				assert.Equal(t, "No duplicate tracks found", result.Message)
				assert.Empty(t, result.DuplicateTracks)
				assert.Len(t, result.NewTracks, 2)
			},
		},
		{
			name:       "some duplicates found",
			tracks:     []types.Track{track("track1", "Song 1"), track("track2", "Song 2"), track("track3", "Song 3")},
			wantIDs:    []string{"track1", "track2", "track3"},
			mockExists: []bool{true, false, true},
			checkResult: func(t *testing.T, result *types.DuplicateResult) {
				assert.True(t, result.HasDuplicates)
				assert.Equal(t, "Found 2 duplicate track(s): Song 1, Song 3", result.Message)
				require.Len(t, result.DuplicateTracks, 2)
				assert.Equal(t, "track1", result.DuplicateTracks[0].ID)
				assert.Equal(t, "track3", result.DuplicateTracks[1].ID)
				require.Len(t, result.NewTracks, 1)
				assert.Equal(t, "track2", result.NewTracks[0].ID)
			},
		},
		{
			name:       "placeholders skipped",
			tracks:     []types.Track{track("local_1_aaaaaaaaa", "Local"), track("track1", "Song 1")},
			wantIDs:    []string{"track1"},
			mockExists: []bool{false},
			checkResult: func(t *testing.T, result *types.DuplicateResult) {
				assert.False(t, result.HasDuplicates)
				assert.Equal(t, "No duplicate tracks found (1 track(s) without a Spotify id skipped)", result.Message)
				require.Len(t, result.NewTracks, 1)
				assert.Equal(t, "track1", result.NewTracks[0].ID)
			},
		},
		{
			name:       "repeated id within the batch",
			tracks:     []types.Track{track("track1", "Song 1"), track("track1", "Song 1 again")},
			wantIDs:    []string{"track1", "track1"},
			mockExists: []bool{false, false},
			checkResult: func(t *testing.T, result *types.DuplicateResult) {
				assert.True(t, result.HasDuplicates)
				require.Len(t, result.NewTracks, 1)
				require.Len(t, result.DuplicateTracks, 1)
				assert.Equal(t, "Song 1 again", result.DuplicateTracks[0].Name)
			},
		},
		{
			name:          "spotify api error",
			tracks:        []types.Track{track("track1", "Song 1")},
			wantIDs:       []string{"track1"},
			mockError:     errors.New("spotify API error"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			catalog := &fakeCatalog{check: func(playlistID string, trackIDs []string) ([]bool, error) {
				calls++
				assert.Equal(t, "cure-mix", playlistID)
				assert.Equal(t, tt.wantIDs, trackIDs)
				return tt.mockExists, tt.mockError
			}}

			result, err := NewDuplicateService(catalog, logger).CheckDuplicates("cure-mix", tt.tracks)
			if tt.wantIDs == nil {
				assert.Zero(t, calls, "catalog must not be queried without publishable ids")
			}

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, result)
			tt.checkResult(t, result)
		})
	}
}
