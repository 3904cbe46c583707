package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/toozej/precureplaylist/internal/keyword"
	"github.com/toozej/precureplaylist/internal/normalize"
	"github.com/toozej/precureplaylist/internal/types"
)

// Result is an accepted decode.
type Result struct {
	Playlist      types.PlaylistMeta `json:"playlist"`
	Tracks        []types.Track      `json:"tracks"`
	FilteredCount int                `json:"filtered_count"`
	OriginalCount int                `json:"original_count"`
	Source        normalize.Shape    `json:"source_kind"`
	Warnings      []Warning          `json:"warnings,omitempty"`
}

// Decoder validates documents and reduces them to filtered track lists.
type Decoder struct {
	appName    string
	keywords   keyword.Set
	normalizer *normalize.Normalizer
	observe    func(Stage)
	logger     *logrus.Logger
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithExpectedAppName sets the identifier compared against meta.app_name.
// An empty name turns the check off.
func WithExpectedAppName(name string) DecoderOption {
	return func(d *Decoder) {
		d.appName = name
	}
}

// WithKeywords replaces the keyword set used for filtering.
func WithKeywords(set keyword.Set) DecoderOption {
	return func(d *Decoder) {
		d.keywords = set
	}
}

// WithNormalizer replaces the normalizer.
func WithNormalizer(n *normalize.Normalizer) DecoderOption {
	return func(d *Decoder) {
		d.normalizer = n
	}
}

// WithStageObserver registers fn to be called on every state transition.
func WithStageObserver(fn func(Stage)) DecoderOption {
	return func(d *Decoder) {
		d.observe = fn
	}
}

// WithDecoderLogger sets the logger.
func WithDecoderLogger(logger *logrus.Logger) DecoderOption {
	return func(d *Decoder) {
		d.logger = logger
	}
}

// NewDecoder creates a Decoder with the built-in keyword set.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		appName:  DefaultAppName,
		keywords: keyword.Default(),
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.normalizer == nil {
		d.normalizer = normalize.New(normalize.WithLogger(d.logger))
	}
	return d
}

// Parse turns document text into the raw JSON value Decode accepts.
func Parse(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: document is empty", ErrMalformedDocument)
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return raw, nil
}

// Decode runs Start -> ShapeDetected -> Normalized -> Filtered and either
// accepts the input or rejects it with a *DecodeError.
func (d *Decoder) Decode(raw any) (*Result, error) {
	d.enter(StageStart)

	shape, err := normalize.DetectShape(raw)
	if err != nil {
		if _, ok := raw.(map[string]any); ok {
			return nil, d.reject(StageStart, ErrInvalidStructure, "document must contain both \"playlist\" and \"tracks\"")
		}
		return nil, d.reject(StageStart, ErrMalformedDocument, "document is not a playlist export, a platform API response, or a track array")
	}
	d.enter(StageShapeDetected)

	res := &Result{Source: shape}
	res.Playlist = playlistMeta(raw, shape)

	if w, ok := d.foreignSource(raw, shape); ok {
		d.logger.WithFields(logrus.Fields{
			"component": "decoder",
			"operation": "decode",
		}).Warn(w.Message)
		res.Warnings = append(res.Warnings, w)
	}

	entries, err := normalize.Entries(raw, shape)
	if err != nil {
		return nil, d.reject(StageShapeDetected, ErrEmptyTrackList, "tracks must be a non-empty array")
	}

	tracks := d.normalizer.Tracks(shape, entries)
	if len(tracks) == 0 {
		return nil, d.reject(StageShapeDetected, ErrEmptyTrackList, "document contains no tracks")
	}
	d.enter(StageNormalized)

	filtered := keyword.Filter(tracks, d.keywords)
	d.enter(StageFiltered)

	if len(filtered) == 0 {
		return nil, d.reject(StageFiltered, ErrNoDomainTracksFound,
			fmt.Sprintf("none of the %d tracks matched a Precure keyword", len(tracks)))
	}

	res.Tracks = filtered
	res.FilteredCount = len(filtered)
	res.OriginalCount = len(tracks)

	d.enter(StageAccepted)
	d.logger.WithFields(logrus.Fields{
		"component":      "decoder",
		"operation":      "decode",
		"source_kind":    shape.String(),
		"original_count": res.OriginalCount,
		"filtered_count": res.FilteredCount,
	}).Debug("Document accepted")

	return res, nil
}

func (d *Decoder) enter(s Stage) {
	if d.observe != nil {
		d.observe(s)
	}
}

func (d *Decoder) reject(at Stage, kind error, reason string) error {
	d.enter(StageRejected)
	d.logger.WithFields(logrus.Fields{
		"component": "decoder",
		"operation": "decode",
		"stage":     string(at),
		"kind":      kind.Error(),
	}).Debug("Document rejected: " + reason)
	return &DecodeError{Stage: at, Kind: kind, Reason: reason}
}

func (d *Decoder) foreignSource(raw any, shape Shape) (Warning, bool) {
	if shape != normalize.ShapeOwnFormat || d.appName == "" {
		return Warning{}, false
	}
	obj, _ := raw.(map[string]any)
	meta, _ := obj["meta"].(map[string]any)
	app, ok := meta["app_name"].(string)
	if !ok || app == d.appName {
		return Warning{}, false
	}
	return Warning{
		Kind:    WarningForeignSource,
		Message: fmt.Sprintf("document was exported by %q, not %q", app, d.appName),
	}, true
}

// Shape is re-exported so callers of this package need not import normalize.
type Shape = normalize.Shape

// ExtractMeta returns the playlist header carried by raw. Generic arrays and
// unrecognized input have none and yield the zero value.
func ExtractMeta(raw any) types.PlaylistMeta {
	shape, err := normalize.DetectShape(raw)
	if err != nil {
		return types.PlaylistMeta{}
	}
	return playlistMeta(raw, shape)
}

func playlistMeta(raw any, shape Shape) types.PlaylistMeta {
	obj, _ := raw.(map[string]any)

	switch shape {
	case normalize.ShapeOwnFormat:
		p, _ := obj["playlist"].(map[string]any)
		creator, _ := p["creator"].(map[string]any)
		return types.PlaylistMeta{
			Name:        str(p["name"]),
			Description: str(p["description"]),
			IsPublic:    p["is_public"] == true,
			Creator:     types.Creator{DisplayName: str(creator["display_name"])},
		}
	case normalize.ShapePlatformAPI:
		owner, _ := obj["owner"].(map[string]any)
		return types.PlaylistMeta{
			Name:        str(obj["name"]),
			Description: str(obj["description"]),
			IsPublic:    obj["public"] == true,
			Creator:     types.Creator{DisplayName: str(owner["display_name"])},
		}
	}
	return types.PlaylistMeta{}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

// IsDecodeError reports whether err is a *DecodeError and returns it.
func IsDecodeError(err error) (*DecodeError, bool) {
	var de *DecodeError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
