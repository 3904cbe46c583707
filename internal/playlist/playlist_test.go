package playlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toozej/precureplaylist/internal/codec"
	"github.com/toozej/precureplaylist/internal/duplicate"
	"github.com/toozej/precureplaylist/internal/store"
	"github.com/toozej/precureplaylist/internal/types"
)

// MockSpotifyService is a mock implementation of SpotifyService
type MockSpotifyService struct {
	authenticated bool

	fetchPlaylistFunc func(playlistID string) (any, error)
	searchTracksFunc  func(query string, limit int) (any, error)
	checkFunc         func(playlistID string, trackIDs []string) ([]bool, error)
	addErrAfter       int
	addErr            error

	created []string
	batches [][]string
}

func (m *MockSpotifyService) FetchPlaylist(playlistID string) (any, error) {
	return m.fetchPlaylistFunc(playlistID)
}

func (m *MockSpotifyService) SearchTracks(query string, limit int) (any, error) {
	return m.searchTracksFunc(query, limit)
}

func (m *MockSpotifyService) AddTracksToPlaylist(playlistID string, trackIDs []string) error {
	if m.addErr != nil && len(m.batches) >= m.addErrAfter {
		return m.addErr
	}
	m.batches = append(m.batches, trackIDs)
	return nil
}

func (m *MockSpotifyService) CheckTracksInPlaylist(playlistID string, trackIDs []string) ([]bool, error) {
	if m.checkFunc != nil {
		return m.checkFunc(playlistID, trackIDs)
	}
	return make([]bool, len(trackIDs)), nil
}

func (m *MockSpotifyService) GetAuthURL() string {
	return "mock-auth-url"
}

func (m *MockSpotifyService) IsAuthenticated() bool {
	return m.authenticated
}

func (m *MockSpotifyService) CompleteAuth(code, state string) error {
	return nil
}

func (m *MockSpotifyService) CreatePlaylist(name, description string, public bool) (*types.Playlist, error) {
	m.created = append(m.created, name)
	return &types.Playlist{
		ID:       "created-playlist-id",
		Name:     name,
		URI:      "spotify:playlist:created-playlist-id",
		EmbedURL: "https://open.spotify.com/embed/playlist/created-playlist-id",
	}, nil
}

var fixedNow = time.Date(2024, 2, 4, 9, 30, 0, 0, time.UTC)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce log noise in tests
	return logger
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(store.MemoryPath, store.WithLogger(quietLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestService(t *testing.T, spotify *MockSpotifyService, opts ...Option) *PlaylistService {
	t.Helper()
	logger := quietLogger()
	base := []Option{
		WithCodec(codec.NewEncoder(
			codec.WithAppName("PrecureProfileMaker"),
			codec.WithEncoderClock(func() time.Time { return fixedNow }),
		), nil),
	}
	if spotify != nil {
		base = append(base, WithSpotify(spotify, duplicate.NewDuplicateService(spotify, logger)))
	}
	return NewPlaylistService(logger, append(base, opts...)...)
}

func parse(t *testing.T, doc string) any {
	t.Helper()
	raw, err := codec.Parse([]byte(doc))
	require.NoError(t, err)
	return raw
}

const genericInput = `[
	{"id": "t1", "name": "DANZEN! ふたりはプリキュア", "artists": ["五條真由美"], "album": "主題歌", "duration_ms": 90000},
	{"id": "t2", "name": "Unrelated Song", "artists": ["Someone"], "album": "Other", "duration_ms": 120000},
	{"id": "t3", "name": "キラキラkawaii", "artists": ["駒形友梨"], "album": "キラキラ☆プリキュアアラモード", "duration_ms": 100000}
]`

func precureTracks(n int) []types.Track {
	tracks := make([]types.Track, n)
	for i := range tracks {
		tracks[i] = types.Track{
			ID:      fmt.Sprintf("t%03d", i),
			Name:    fmt.Sprintf("プリキュア Song %d", i),
			Artists: []types.Artist{{Name: "Singer"}},
		}
	}
	return tracks
}

func TestPlaylistService_Export(t *testing.T) {
	service := newTestService(t, nil)

	tests := []struct {
		name         string
		req          ExportRequest
		wantErr      error
		wantCount    int
		wantOriginal int
		wantName     string
	}{
		{
			name:         "generic input filtered",
			req:          ExportRequest{Raw: parse(t, genericInput), Format: codec.FormatDetailed},
			wantCount:    2,
			wantOriginal: 3,
		},
		{
			name: "meta override",
			req: ExportRequest{
				Raw:    parse(t, genericInput),
				Meta:   &types.PlaylistMeta{Name: "My Precure"},
				Format: codec.FormatSimple,
			},
			wantCount:    2,
			wantOriginal: 3,
			wantName:     "My Precure",
		},
		{
			name:    "nothing matches",
			req:     ExportRequest{Raw: parse(t, `[{"id": "x", "name": "Other"}]`), Format: codec.FormatDetailed},
			wantErr: ErrNothingToExport,
		},
		{
			name:         "nothing matches but empty allowed",
			req:          ExportRequest{Raw: parse(t, `[{"id": "x", "name": "Other"}]`), Format: codec.FormatDetailed, AllowEmpty: true},
			wantCount:    0,
			wantOriginal: 1,
		},
		{
			name:    "no source",
			req:     ExportRequest{Format: codec.FormatDetailed},
			wantErr: ErrNoSource,
		},
		{
			name:    "stored playlist without store",
			req:     ExportRequest{PlaylistID: "abc", Format: codec.FormatDetailed},
			wantErr: ErrStoreUnavailable,
		},
		{
			name:    "unknown format",
			req:     ExportRequest{Raw: parse(t, genericInput), Format: "verbose"},
			wantErr: codec.ErrUnknownFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := service.Export(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "generic", result.Source)
			assert.Equal(t, tt.wantCount, result.ExportedCount)
			assert.Equal(t, tt.wantOriginal, result.OriginalCount)
			assert.Equal(t, tt.wantCount, result.Document.Playlist.TrackCount)
			assert.Len(t, result.Document.Tracks, tt.wantCount)
			assert.Equal(t, tt.wantName, result.Document.Playlist.Name)
			assert.Equal(t, tt.req.Format, result.Document.Meta.FormatType)
		})
	}
}

func TestPlaylistService_DefaultCodec(t *testing.T) {
	svc := NewPlaylistService(quietLogger())

	var raw any
	require.NoError(t, json.Unmarshal([]byte(genericInput), &raw))

	result, err := svc.Export(context.Background(), ExportRequest{Raw: raw, Format: codec.FormatSimple})
	require.NoError(t, err)
	assert.Equal(t, codec.DefaultAppName, result.Document.Meta.AppName)
}

func TestPlaylistService_ExportStored(t *testing.T) {
	st := newTestStore(t)
	service := newTestService(t, nil, WithStore(st))

	row := &types.PlaylistRow{UserID: "u1", Name: "Saved", Description: "d", Tracks: precureTracks(3)}
	require.NoError(t, st.Save(context.Background(), row))

	result, err := service.Export(context.Background(), ExportRequest{PlaylistID: row.ID, Format: codec.FormatDetailed})
	require.NoError(t, err)
	assert.Equal(t, SourceStore, result.Source)
	assert.Equal(t, "Saved", result.Document.Playlist.Name)
	assert.Equal(t, "d", result.Document.Playlist.Description)
	assert.Equal(t, 3, result.ExportedCount)

	_, err = service.Export(context.Background(), ExportRequest{PlaylistID: "missing", Format: codec.FormatDetailed})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPlaylistService_ExportFromSpotify(t *testing.T) {
	spotify := &MockSpotifyService{
		authenticated: true,
		fetchPlaylistFunc: func(id string) (any, error) {
			if id != "sp1" {
				return nil, errors.New("not found")
			}
			return map[string]any{
				"name":   "Spotify List",
				"public": true,
				"owner":  map[string]any{"display_name": "fan"},
				"tracks": map[string]any{"items": []any{
					map[string]any{"added_at": "2024-01-01T00:00:00Z", "track": map[string]any{"id": "a", "name": "プリキュア OP"}},
					map[string]any{"track": map[string]any{"id": "b", "name": "Other"}},
				}},
			}, nil
		},
	}
	service := newTestService(t, spotify)

	result, err := service.ExportFromSpotify(context.Background(), "sp1", codec.FormatSimple, false)
	require.NoError(t, err)
	assert.Equal(t, "platform_api", result.Source)
	assert.Equal(t, 1, result.ExportedCount)
	assert.Equal(t, 2, result.OriginalCount)
	assert.Equal(t, "Spotify List", result.Document.Playlist.Name)
	assert.Equal(t, "fan", result.Document.Playlist.Creator.DisplayName)

	_, err = service.ExportFromSpotify(context.Background(), "nope", codec.FormatSimple, false)
	assert.Error(t, err)

	spotify.authenticated = false
	_, err = service.ExportFromSpotify(context.Background(), "sp1", codec.FormatSimple, false)
	assert.ErrorIs(t, err, ErrSpotifyUnavailable)

	_, err = newTestService(t, nil).ExportFromSpotify(context.Background(), "sp1", codec.FormatSimple, false)
	assert.ErrorIs(t, err, ErrSpotifyUnavailable)
}

func TestPlaylistService_SearchCatalog(t *testing.T) {
	spotify := &MockSpotifyService{
		authenticated: true,
		searchTracksFunc: func(query string, limit int) (any, error) {
			assert.Equal(t, "キュアップ・ラパパ", query)
			assert.Equal(t, 10, limit)
			return []any{
				map[string]any{"id": "1", "name": "Dokkin♢魔法つかいプリキュア!"},
				map[string]any{"id": "2", "name": "Unrelated"},
			}, nil
		},
	}
	service := newTestService(t, spotify)

	tracks, err := service.SearchCatalog(context.Background(), "キュアップ・ラパパ", 10)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "1", tracks[0].ID)
}

func TestPlaylistService_ImportAndSave(t *testing.T) {
	st := newTestStore(t)
	service := newTestService(t, nil, WithStore(st))

	exported, err := service.Export(context.Background(), ExportRequest{
		Raw:    parse(t, genericInput),
		Meta:   &types.PlaylistMeta{Name: "Round Trip", IsPublic: true},
		Format: codec.FormatDetailed,
	})
	require.NoError(t, err)

	data, err := json.Marshal(exported.Document)
	require.NoError(t, err)

	result, err := service.Import(context.Background(), parse(t, string(data)), ImportOptions{Save: true, UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Decoded.FilteredCount)
	assert.Empty(t, result.Decoded.Warnings)
	require.NotNil(t, result.Saved)
	assert.Nil(t, result.Published)

	rows, err := service.ListPlaylists(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Round Trip", rows[0].Name)
	assert.True(t, rows[0].IsPublic)
	require.Len(t, rows[0].Tracks, 2)
	assert.Equal(t, "t1", rows[0].Tracks[0].ID)
	assert.Equal(t, "t3", rows[0].Tracks[1].ID)
}

func TestPlaylistService_ImportRejected(t *testing.T) {
	service := newTestService(t, nil)

	_, err := service.Import(context.Background(), parse(t, `{"playlist": {"name": "x"}, "tracks": []}`), ImportOptions{})
	require.Error(t, err)

	de, ok := codec.IsDecodeError(err)
	require.True(t, ok)
	assert.ErrorIs(t, de, codec.ErrEmptyTrackList)

	_, err = service.Import(context.Background(), parse(t, genericInput), ImportOptions{Save: true})
	assert.ErrorIs(t, err, ErrStoreUnavailable)

	_, err = service.Import(context.Background(), parse(t, genericInput), ImportOptions{Publish: true})
	assert.ErrorIs(t, err, ErrSpotifyUnavailable)
}

func TestPlaylistService_ImportAndPublish(t *testing.T) {
	spotify := &MockSpotifyService{authenticated: true}
	service := newTestService(t, spotify)

	result, err := service.Import(context.Background(), parse(t, genericInput), ImportOptions{Publish: true})
	require.NoError(t, err)
	require.NotNil(t, result.Published)
	assert.Equal(t, "created-playlist-id", result.Published.Playlist.ID)
	assert.Equal(t, 2, result.Published.Added)
	assert.Equal(t, [][]string{{"t1", "t3"}}, spotify.batches)
}

func TestPlaylistService_Publish(t *testing.T) {
	tracks := precureTracks(250)
	tracks = append(tracks, types.Track{ID: "local_1707039000000_abcdef123", Name: "ローカル プリキュア"})

	spotify := &MockSpotifyService{
		authenticated: true,
		checkFunc: func(playlistID string, trackIDs []string) ([]bool, error) {
			assert.Equal(t, "created-playlist-id", playlistID)
			assert.Len(t, trackIDs, 250)
			exists := make([]bool, len(trackIDs))
			exists[0] = true
			return exists, nil
		},
	}
	service := newTestService(t, spotify)

	result, err := service.Publish(context.Background(), types.PlaylistMeta{Name: "Big"}, tracks, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"Big"}, spotify.created)
	assert.Equal(t, 249, result.Added)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 1, result.Skipped)

	require.Len(t, spotify.batches, 3)
	assert.Len(t, spotify.batches[0], BatchSize)
	assert.Len(t, spotify.batches[1], BatchSize)
	assert.Len(t, spotify.batches[2], 49)
	assert.Equal(t, "t001", spotify.batches[0][0])
}

func TestPlaylistService_PublishToExisting(t *testing.T) {
	spotify := &MockSpotifyService{authenticated: true}
	service := newTestService(t, spotify)

	result, err := service.Publish(context.Background(), types.PlaylistMeta{Name: "Existing"}, precureTracks(2), "existing-id")
	require.NoError(t, err)
	assert.Empty(t, spotify.created)
	assert.Equal(t, "existing-id", result.Playlist.ID)
	assert.Equal(t, 2, result.Added)
}

func TestPlaylistService_PublishDuplicateCheckFails(t *testing.T) {
	spotify := &MockSpotifyService{
		authenticated: true,
		checkFunc: func(string, []string) ([]bool, error) {
			return nil, errors.New("spotify API error")
		},
	}
	service := newTestService(t, spotify)

	result, err := service.Publish(context.Background(), types.PlaylistMeta{Name: "x"}, precureTracks(3), "")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Added)
	assert.Equal(t, 0, result.Duplicates)
}

func TestPlaylistService_PublishErrors(t *testing.T) {
	tests := []struct {
		name      string
		addErr    error
		wantErr   error
		wantAdded int
	}{
		{
			name:      "rate limited on second batch",
			addErr:    errors.New("spotify: 429 Too Many Requests"),
			wantErr:   ErrRateLimited,
			wantAdded: BatchSize,
		},
		{
			name:      "generic failure on second batch",
			addErr:    errors.New("boom"),
			wantAdded: BatchSize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spotify := &MockSpotifyService{authenticated: true, addErr: tt.addErr, addErrAfter: 1}
			service := newTestService(t, spotify)

			result, err := service.Publish(context.Background(), types.PlaylistMeta{Name: "x"}, precureTracks(150), "")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			require.NotNil(t, result)
			assert.Equal(t, tt.wantAdded, result.Added)
		})
	}
}

func TestPlaylistService_PublishCancelled(t *testing.T) {
	spotify := &MockSpotifyService{authenticated: true}
	service := newTestService(t, spotify)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.Publish(ctx, types.PlaylistMeta{Name: "x"}, precureTracks(2), "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, spotify.batches)
}

func TestPlaylistService_FilterPlaylistsBySearch(t *testing.T) {
	tests := []struct {
		name           string
		playlists      []types.PlaylistRow
		searchTerm     string
		expectedResult []types.PlaylistRow
	}{
		{
			name: "filter by partial name match",
			playlists: []types.PlaylistRow{
				{ID: "1", Name: "Precure Openings"},
				{ID: "2", Name: "Morning Commute"},
				{ID: "3", Name: "Precure Endings"},
			},
			searchTerm: "precure",
			expectedResult: []types.PlaylistRow{
				{ID: "1", Name: "Precure Openings"},
				{ID: "3", Name: "Precure Endings"},
			},
		},
		{
			name: "case insensitive search",
			playlists: []types.PlaylistRow{
				{ID: "1", Name: "HEARTCATCH MIX"},
				{ID: "2", Name: "smile mix"},
			},
			searchTerm: "heartcatch",
			expectedResult: []types.PlaylistRow{
				{ID: "1", Name: "HEARTCATCH MIX"},
			},
		},
		{
			name: "no matches found",
			playlists: []types.PlaylistRow{
				{ID: "1", Name: "Precure Openings"},
			},
			searchTerm:     "electronic",
			expectedResult: []types.PlaylistRow{},
		},
		{
			name: "empty search term returns all playlists",
			playlists: []types.PlaylistRow{
				{ID: "1", Name: "Precure Openings"},
				{ID: "2", Name: "Morning Commute"},
			},
			searchTerm: "",
			expectedResult: []types.PlaylistRow{
				{ID: "1", Name: "Precure Openings"},
				{ID: "2", Name: "Morning Commute"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newTestService(t, nil)
			result := service.FilterPlaylistsBySearch(tt.playlists, tt.searchTerm)
			assert.Equal(t, tt.expectedResult, result)
		})
	}
}

func TestPlaylistService_ListWithoutStore(t *testing.T) {
	_, err := newTestService(t, nil).ListPlaylists(context.Background(), "")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
