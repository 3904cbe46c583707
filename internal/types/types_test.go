package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrack_String(t *testing.T) {
	tests := []struct {
		name     string
		track    Track
		expected string
	}{
		{
			name: "with album",
			track: Track{
				Name:    "DANZEN! ふたりはプリキュア",
				Artists: []Artist{{Name: "五條真由美"}},
				Album:   Album{Name: "ふたりはプリキュア 主題歌"},
			},
			expected: "五條真由美 - DANZEN! ふたりはプリキュア (ふたりはプリキュア 主題歌)",
		},
		{
			name: "without album",
			track: Track{
				Name:    "Yes! プリキュア5 GoGo!",
				Artists: []Artist{{Name: "工藤真由"}},
			},
			expected: "工藤真由 - Yes! プリキュア5 GoGo!",
		},
		{
			name: "multiple artists",
			track: Track{
				Name:    "キラキラ☆プリキュアアラモード",
				Artists: []Artist{{Name: "駒形友梨"}, {Name: "美山加恋"}},
			},
			expected: "駒形友梨, 美山加恋 - キラキラ☆プリキュアアラモード",
		},
		{
			name:     "no artists",
			track:    Track{Name: "Untitled"},
			expected: " - Untitled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.track.String())
		})
	}
}

func TestTrack_Accessors(t *testing.T) {
	track := Track{
		Artists:      []Artist{{ID: "a1", Name: "五條真由美"}, {Name: "Backing Choir"}},
		ExternalURLs: map[string]string{"spotify": "https://open.spotify.com/track/abc"},
	}

	assert.Equal(t, []string{"五條真由美", "Backing Choir"}, track.ArtistNames())
	assert.Equal(t, "五條真由美", track.FirstArtist())
	assert.Equal(t, "https://open.spotify.com/track/abc", track.SpotifyURL())

	empty := Track{}
	assert.Empty(t, empty.ArtistNames())
	assert.Equal(t, "", empty.FirstArtist())
	assert.Equal(t, "", empty.SpotifyURL())
}

func TestTotalDurationMS(t *testing.T) {
	assert.Equal(t, 0, TotalDurationMS(nil))
	assert.Equal(t, 450000, TotalDurationMS([]Track{{DurationMS: 250000}, {DurationMS: 200000}, {}}))
}

func TestFormatTime(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)

	tests := []struct {
		name     string
		in       time.Time
		expected string
	}{
		{
			name:     "utc with millis",
			in:       time.Date(2024, 3, 1, 12, 30, 45, 123000000, time.UTC),
			expected: "2024-03-01T12:30:45.123Z",
		},
		{
			name:     "converted to utc",
			in:       time.Date(2024, 3, 1, 9, 0, 0, 0, jst),
			expected: "2024-03-01T00:00:00.000Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatTime(tt.in))
		})
	}
}

func TestPlaylistRow_Meta(t *testing.T) {
	row := PlaylistRow{
		ID:          "row-1",
		Name:        "Cure Mix",
		Description: "favorites",
		IsPublic:    true,
		Tracks:      []Track{{ID: "t1"}},
	}

	assert.Equal(t, PlaylistMeta{
		Name:        "Cure Mix",
		Description: "favorites",
		IsPublic:    true,
	}, row.Meta())
}
