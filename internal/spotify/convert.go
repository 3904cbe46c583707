package spotify

import (
	"encoding/json"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// platformPlaylist lays out a playlist and its items the way the Web API's
// playlist endpoint does, so the normalizer can treat live data and saved
// API responses alike. Items whose track is missing (removed or episodes)
// keep a null track.
func platformPlaylist(p *spotify.FullPlaylist, items []spotify.PlaylistItem) (map[string]any, error) {
	entries := make([]map[string]any, 0, len(items))
	for _, item := range items {
		entries = append(entries, map[string]any{
			"added_at": item.AddedAt,
			"track":    item.Track.Track,
		})
	}

	doc := map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"public":      p.IsPublic,
		"owner":       map[string]any{"display_name": p.Owner.DisplayName},
		"tracks":      map[string]any{"items": entries},
	}

	var out map[string]any
	if err := roundTrip(doc, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// trackArray converts catalog tracks to a plain JSON array.
func trackArray(tracks []spotify.FullTrack) ([]any, error) {
	out := []any{}
	if len(tracks) == 0 {
		return out, nil
	}
	if err := roundTrip(tracks, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// containsTracks reports, for each id, whether items contain that track.
func containsTracks(items []spotify.PlaylistItem, trackIDs []string) []bool {
	existing := make(map[string]bool, len(items))
	for _, item := range items {
		if item.Track.Track != nil && item.Track.Track.ID != "" {
			existing[string(item.Track.Track.ID)] = true
		}
	}

	results := make([]bool, len(trackIDs))
	for i, id := range trackIDs {
		results[i] = existing[id]
	}
	return results
}

func roundTrip(in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode Spotify response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode Spotify response: %w", err)
	}
	return nil
}
