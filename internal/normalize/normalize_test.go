package normalize

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toozej/precureplaylist/internal/types"
)

var fixedNow = time.Date(2024, 2, 4, 9, 30, 0, 0, time.UTC)

func newTestNormalizer() *Normalizer {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	seq := 0
	return New(
		WithLogger(logger),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func(time.Time) string {
			seq++
			return PlaceholderPrefix + "test_" + string(rune('0'+seq))
		}),
	)
}

func mustParse(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestDetectShape(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Shape
		wantErr bool
	}{
		{"own format", `{"playlist": {}, "tracks": []}`, ShapeOwnFormat, false},
		{"own format wins over platform", `{"playlist": {}, "tracks": {"items": []}}`, ShapeOwnFormat, false},
		{"platform api", `{"name": "x", "tracks": {"items": []}}`, ShapePlatformAPI, false},
		{"generic array", `[{"name": "a"}]`, ShapeGeneric, false},
		{"empty array", `[]`, ShapeGeneric, false},
		{"null playlist is not own format", `{"playlist": null, "tracks": []}`, ShapeUnknown, true},
		{"tracks object without items", `{"tracks": {"total": 3}}`, ShapeUnknown, true},
		{"string", `"hello"`, ShapeUnknown, true},
		{"number", `42`, ShapeUnknown, true},
		{"null", `null`, ShapeUnknown, true},
		{"object without tracks", `{"name": "x"}`, ShapeUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectShape(mustParse(t, tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedDocument))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "own_format", ShapeOwnFormat.String())
	assert.Equal(t, "platform_api", ShapePlatformAPI.String())
	assert.Equal(t, "generic", ShapeGeneric.String())
	assert.Equal(t, "unknown", ShapeUnknown.String())

	b, err := json.Marshal(map[string]Shape{"kind": ShapePlatformAPI})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind": "platform_api"}`, string(b))
}

func TestNormalize_PlatformAPI(t *testing.T) {
	input := mustParse(t, `{
		"tracks": {
			"items": [
				{"track": {"id": "1", "name": "プリキュア オープニング", "artists": [{"name": "歌手A"}], "album": {"name": "OP集"}, "duration_ms": 90000}},
				{"track": null}
			]
		}
	}`)

	res, err := newTestNormalizer().Normalize(input)
	require.NoError(t, err)

	assert.Equal(t, ShapePlatformAPI, res.Source)
	assert.Equal(t, 2, res.OriginalCount)
	require.Len(t, res.Tracks, 1)

	track := res.Tracks[0]
	assert.Equal(t, "1", track.ID)
	assert.Equal(t, "プリキュア オープニング", track.Name)
	assert.Equal(t, 90000, track.DurationMS)
	assert.Equal(t, []types.Artist{{Name: "歌手A"}}, track.Artists)
	assert.Equal(t, "OP集", track.Album.Name)
	assert.NotNil(t, track.Album.Images)
	assert.Equal(t, types.FormatTime(fixedNow), track.AddedAt)
}

func TestNormalize_PlatformAPIAddedAtFromWrapper(t *testing.T) {
	input := mustParse(t, `{
		"tracks": {
			"items": [
				{"added_at": "2023-05-01T00:00:00Z", "track": {"id": "a", "name": "x"}},
				{"added_at": "2023-05-01T00:00:00Z", "track": {"id": "b", "name": "y", "added_at": "2020-01-01T00:00:00Z"}}
			]
		}
	}`)

	res, err := newTestNormalizer().Normalize(input)
	require.NoError(t, err)
	require.Len(t, res.Tracks, 2)
	assert.Equal(t, "2023-05-01T00:00:00Z", res.Tracks[0].AddedAt)
	assert.Equal(t, "2020-01-01T00:00:00Z", res.Tracks[1].AddedAt)
}

func TestNormalize_Generic(t *testing.T) {
	input := mustParse(t, `[{"name": "Unrelated Song", "artists": ["X"], "duration_ms": 200000}]`)

	res, err := newTestNormalizer().Normalize(input)
	require.NoError(t, err)

	assert.Equal(t, ShapeGeneric, res.Source)
	require.Len(t, res.Tracks, 1)
	assert.Equal(t, []types.Artist{{Name: "X"}}, res.Tracks[0].Artists)
	assert.Equal(t, 200000, res.Tracks[0].DurationMS)
	assert.True(t, IsPlaceholderID(res.Tracks[0].ID))
}

func TestNormalize_OwnFormatSimpleTracks(t *testing.T) {
	input := mustParse(t, `{
		"meta": {"format_version": "1.0", "format_type": "simple"},
		"playlist": {"name": "p"},
		"tracks": [
			{"spotify_id": "s1", "name": "ハートキャッチ", "artists": ["Singer"], "album_name": "Best",
			 "duration_ms": 1000, "spotify_url": "https://open.spotify.com/track/s1", "added_at": "2024-01-01T00:00:00.000Z"}
		]
	}`)

	res, err := newTestNormalizer().Normalize(input)
	require.NoError(t, err)
	assert.Equal(t, ShapeOwnFormat, res.Source)
	require.Len(t, res.Tracks, 1)

	track := res.Tracks[0]
	assert.Equal(t, "s1", track.ID)
	assert.Equal(t, "Best", track.Album.Name)
	assert.Equal(t, "https://open.spotify.com/track/s1", track.SpotifyURL())
	assert.Equal(t, "2024-01-01T00:00:00.000Z", track.AddedAt)
}

func TestNormalize_MalformedTracks(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"own format tracks is object", `{"playlist": {}, "tracks": {"a": 1}}`},
		{"platform items is string", `{"tracks": {"items": "nope"}}`},
		{"scalar", `true`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestNormalizer().Normalize(mustParse(t, tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedDocument)
		})
	}
}

func TestNormalize_Coverage(t *testing.T) {
	// Track count must equal the number of non-null entries for every shape.
	tests := []struct {
		name    string
		input   string
		nonNull int
	}{
		{"own format", `{"playlist": {}, "tracks": [{"name": "a"}, null, {"name": "b"}]}`, 2},
		{"platform", `{"tracks": {"items": [{"track": {"name": "a"}}, {"track": null}, {"track": {"name": "c"}}, {"track": {}}]}}`, 3},
		{"generic", `[null, {"name": "a"}, {}]`, 2},
		{"empty generic", `[]`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newTestNormalizer().Normalize(mustParse(t, tt.input))
			require.NoError(t, err)
			assert.Len(t, res.Tracks, tt.nonNull)
			for _, track := range res.Tracks {
				assert.NotNil(t, track.Artists)
				assert.NotNil(t, track.Album.Images)
				assert.GreaterOrEqual(t, track.DurationMS, 0)
				assert.NotEmpty(t, track.ID)
			}
		})
	}
}

func TestTrackCoercion(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name  string
		input string
		check func(t *testing.T, track types.Track)
	}{
		{
			name:  "empty object gets defaults",
			input: `{}`,
			check: func(t *testing.T, track types.Track) {
				assert.Equal(t, "", track.Name)
				assert.Equal(t, []types.Artist{}, track.Artists)
				assert.Equal(t, types.Album{Name: "", Images: []types.Image{}}, track.Album)
				assert.Equal(t, 0, track.DurationMS)
				assert.Nil(t, track.ExternalURLs)
				assert.Equal(t, types.FormatTime(fixedNow), track.AddedAt)
				assert.True(t, strings.HasPrefix(track.ID, PlaceholderPrefix))
			},
		},
		{
			name:  "negative duration clamps",
			input: `{"duration_ms": -5}`,
			check: func(t *testing.T, track types.Track) {
				assert.Equal(t, 0, track.DurationMS)
			},
		},
		{
			name:  "numeric id",
			input: `{"id": 12345}`,
			check: func(t *testing.T, track types.Track) {
				assert.Equal(t, "12345", track.ID)
			},
		},
		{
			name:  "title and single artist",
			input: `{"title": "Song", "artist": "Solo"}`,
			check: func(t *testing.T, track types.Track) {
				assert.Equal(t, "Song", track.Name)
				assert.Equal(t, []types.Artist{{Name: "Solo"}}, track.Artists)
			},
		},
		{
			name:  "mixed artist entries",
			input: `{"artists": ["A", {"id": "b1", "name": "B"}, 7]}`,
			check: func(t *testing.T, track types.Track) {
				assert.Equal(t, []types.Artist{{Name: "A"}, {ID: "b1", Name: "B"}}, track.Artists)
			},
		},
		{
			name:  "album string",
			input: `{"album": "Vocal Best"}`,
			check: func(t *testing.T, track types.Track) {
				assert.Equal(t, "Vocal Best", track.Album.Name)
				assert.Empty(t, track.Album.Images)
			},
		},
		{
			name:  "album images keep only entries with url",
			input: `{"album": {"id": "al", "name": "n", "images": [{"url": "u", "width": 64, "height": 64}, {"width": 1}, "x"]}}`,
			check: func(t *testing.T, track types.Track) {
				assert.Equal(t, types.Album{
					ID:     "al",
					Name:   "n",
					Images: []types.Image{{URL: "u", Width: 64, Height: 64}},
				}, track.Album)
			},
		},
		{
			name:  "external urls map",
			input: `{"external_urls": {"spotify": "https://s", "other": 3}, "preview_url": "https://p"}`,
			check: func(t *testing.T, track types.Track) {
				assert.Equal(t, map[string]string{"spotify": "https://s"}, track.ExternalURLs)
				assert.Equal(t, "https://p", track.PreviewURL)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, ok := mustParse(t, tt.input).(map[string]any)
			require.True(t, ok)
			tt.check(t, n.Track(obj, fixedNow))
		})
	}
}

func TestPlaceholderID(t *testing.T) {
	id := PlaceholderID(fixedNow)

	assert.True(t, IsPlaceholderID(id))
	parts := strings.Split(id, "_")
	require.Len(t, parts, 3)
	assert.Equal(t, "1707039000000", parts[1])
	assert.Len(t, parts[2], 9)

	assert.False(t, IsPlaceholderID("4uLU6hMCjMI75M1A2tKUQC"))
}
