// Package normalize maps heterogeneous playlist inputs onto the canonical
// track model.
//
// Three source shapes are understood: this application's own export
// document, a raw streaming-platform playlist response, and a bare array of
// track-like objects. Coercion is defensive: every field that is missing or
// of the wrong type falls back to an empty value rather than failing.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/toozej/precureplaylist/internal/types"
)

// PlaceholderPrefix starts every generated track id.
const PlaceholderPrefix = "local_"

// Result is the outcome of normalizing one input.
type Result struct {
	Tracks        []types.Track `json:"tracks"`
	Source        Shape         `json:"source_kind"`
	OriginalCount int           `json:"original_count"`
}

// Normalizer converts raw JSON values into canonical tracks.
type Normalizer struct {
	now    func() time.Time
	newID  func(time.Time) string
	logger *logrus.Entry
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock sets the time source used for added_at defaults and placeholder ids.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = now
	}
}

// WithIDGenerator replaces the placeholder id generator.
func WithIDGenerator(fn func(time.Time) string) Option {
	return func(n *Normalizer) {
		n.newID = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(n *Normalizer) {
		n.logger = logger.WithField("component", "normalizer")
	}
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		now:    time.Now,
		newID:  PlaceholderID,
		logger: logrus.StandardLogger().WithField("component", "normalizer"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// PlaceholderID builds an id for a track that arrived without one. It joins
// the millisecond timestamp with a random component; collisions are unlikely
// but possible, so these ids are not stable keys.
func PlaceholderID(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s%d_%s", PlaceholderPrefix, now.UnixMilli(), random)
}

// IsPlaceholderID reports whether id was generated by PlaceholderID.
func IsPlaceholderID(id string) bool {
	return strings.HasPrefix(id, PlaceholderPrefix)
}

// Normalize detects the shape of raw and converts its entries to tracks.
func (n *Normalizer) Normalize(raw any) (*Result, error) {
	shape, err := DetectShape(raw)
	if err != nil {
		n.logger.WithError(err).Debug("Input shape not recognized")
		return nil, err
	}

	entries, err := Entries(raw, shape)
	if err != nil {
		n.logger.WithError(err).WithField("source_kind", shape.String()).Debug("Track entries not usable")
		return nil, err
	}

	tracks := n.Tracks(shape, entries)

	n.logger.WithFields(logrus.Fields{
		"source_kind":    shape.String(),
		"original_count": len(entries),
		"track_count":    len(tracks),
	}).Debug("Normalized input")

	return &Result{
		Tracks:        tracks,
		Source:        shape,
		OriginalCount: len(entries),
	}, nil
}

// Tracks converts entries taken from an input of the given shape. Null
// entries, non-objects, and platform items without a track are dropped.
func (n *Normalizer) Tracks(shape Shape, entries []any) []types.Track {
	now := n.now()
	tracks := make([]types.Track, 0, len(entries))
	for i, entry := range entries {
		obj, ok := unwrap(shape, entry)
		if !ok {
			n.logger.WithField("index", i).Debug("Skipping empty or non-object track entry")
			continue
		}
		tracks = append(tracks, n.Track(obj, now))
	}
	return tracks
}

// Track coerces a single track-like object.
func (n *Normalizer) Track(obj map[string]any, now time.Time) types.Track {
	t := types.Track{
		ID:           firstString(obj, "id", "spotify_id"),
		Name:         firstString(obj, "name", "title"),
		Artists:      artists(obj),
		Album:        album(obj),
		DurationMS:   duration(obj["duration_ms"]),
		ExternalURLs: externalURLs(obj),
		PreviewURL:   stringValue(obj["preview_url"]),
		AddedAt:      stringValue(obj["added_at"]),
	}

	if t.ID == "" {
		t.ID = n.newID(now)
	}
	if t.AddedAt == "" {
		t.AddedAt = types.FormatTime(now)
	}
	return t
}

func artists(obj map[string]any) []types.Artist {
	out := make([]types.Artist, 0)

	switch v := obj["artists"].(type) {
	case []any:
		for _, a := range v {
			switch artist := a.(type) {
			case string:
				out = append(out, types.Artist{Name: artist})
			case map[string]any:
				out = append(out, types.Artist{
					ID:   stringValue(artist["id"]),
					Name: stringValue(artist["name"]),
				})
			}
		}
	case string:
		if v != "" {
			out = append(out, types.Artist{Name: v})
		}
	case nil:
		if name := stringValue(obj["artist"]); name != "" {
			out = append(out, types.Artist{Name: name})
		}
	}
	return out
}

func album(obj map[string]any) types.Album {
	switch v := obj["album"].(type) {
	case map[string]any:
		return types.Album{
			ID:     stringValue(v["id"]),
			Name:   stringValue(v["name"]),
			Images: images(v["images"]),
		}
	case string:
		return types.Album{Name: v, Images: []types.Image{}}
	}
	return types.Album{
		Name:   stringValue(obj["album_name"]),
		Images: []types.Image{},
	}
}

func images(raw any) []types.Image {
	out := make([]types.Image, 0)
	list, _ := raw.([]any)
	for _, entry := range list {
		img, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		url := stringValue(img["url"])
		if url == "" {
			continue
		}
		out = append(out, types.Image{
			URL:    url,
			Width:  intValue(img["width"]),
			Height: intValue(img["height"]),
		})
	}
	return out
}

func externalURLs(obj map[string]any) map[string]string {
	if raw, ok := obj["external_urls"].(map[string]any); ok {
		urls := make(map[string]string, len(raw))
		for platform, v := range raw {
			if s, ok := v.(string); ok && s != "" {
				urls[platform] = s
			}
		}
		if len(urls) > 0 {
			return urls
		}
	}
	if s := stringValue(obj["spotify_url"]); s != "" {
		return map[string]string{"spotify": s}
	}
	return nil
}

func duration(raw any) int {
	d := intValue(raw)
	if d < 0 {
		return 0
	}
	return d
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringValue(obj[k]); s != "" {
			return s
		}
	}
	return ""
}

// stringValue accepts strings and numbers; numeric ids are common in
// hand-written track lists.
func stringValue(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return ""
}

func intValue(raw any) int {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
		if f, err := v.Float64(); err == nil {
			return int(f)
		}
	case int:
		return v
	case int64:
		return int(v)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return 0
}
