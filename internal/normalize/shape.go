package normalize

import (
	"errors"
	"fmt"
)

// ErrMalformedDocument is returned when input matches none of the known
// source shapes, or when its track list is not an array.
var ErrMalformedDocument = errors.New("malformed document")

// Shape identifies which of the known source layouts an input uses.
type Shape int

const (
	// ShapeUnknown is the zero value; it never comes back with a nil error.
	ShapeUnknown Shape = iota
	// ShapeOwnFormat is this application's export document: {playlist, tracks}.
	ShapeOwnFormat
	// ShapePlatformAPI is a raw streaming-platform playlist: {tracks: {items: [{track}]}}.
	ShapePlatformAPI
	// ShapeGeneric is a bare array of track-like objects.
	ShapeGeneric
)

// String returns the source kind name used in logs and API responses.
func (s Shape) String() string {
	switch s {
	case ShapeOwnFormat:
		return "own_format"
	case ShapePlatformAPI:
		return "platform_api"
	case ShapeGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// MarshalText encodes the shape as its source kind name.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// DetectShape classifies raw. Own format is checked first, then the platform
// API layout, then a bare array.
func DetectShape(raw any) (Shape, error) {
	switch v := raw.(type) {
	case map[string]any:
		if v["playlist"] != nil && v["tracks"] != nil {
			return ShapeOwnFormat, nil
		}
		if tracks, ok := v["tracks"].(map[string]any); ok {
			if _, ok := tracks["items"]; ok {
				return ShapePlatformAPI, nil
			}
		}
	case []any:
		return ShapeGeneric, nil
	}
	return ShapeUnknown, fmt.Errorf("%w: expected a playlist export, a platform API response, or a track array", ErrMalformedDocument)
}

// Entries returns the raw track entries of an input already classified as
// shape. Entries may contain nulls and non-objects; Normalizer drops them.
func Entries(raw any, shape Shape) ([]any, error) {
	switch shape {
	case ShapeOwnFormat:
		obj, _ := raw.(map[string]any)
		tracks, ok := obj["tracks"].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: \"tracks\" is not an array", ErrMalformedDocument)
		}
		return tracks, nil
	case ShapePlatformAPI:
		obj, _ := raw.(map[string]any)
		page, _ := obj["tracks"].(map[string]any)
		items, ok := page["items"].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: \"tracks.items\" is not an array", ErrMalformedDocument)
		}
		return items, nil
	case ShapeGeneric:
		arr, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: input is not an array", ErrMalformedDocument)
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("%w: unknown shape", ErrMalformedDocument)
	}
}

// unwrap turns one raw entry into a track object. Platform API items carry
// the track under "track" and the timestamp on the wrapper.
func unwrap(shape Shape, entry any) (map[string]any, bool) {
	obj, ok := entry.(map[string]any)
	if !ok {
		return nil, false
	}
	if shape != ShapePlatformAPI {
		return obj, true
	}

	inner, ok := obj["track"].(map[string]any)
	if !ok {
		return nil, false
	}
	if addedAt, ok := obj["added_at"].(string); ok && addedAt != "" {
		if existing, _ := inner["added_at"].(string); existing == "" {
			merged := make(map[string]any, len(inner)+1)
			for k, v := range inner {
				merged[k] = v
			}
			merged["added_at"] = addedAt
			return merged, true
		}
	}
	return inner, true
}
