package playlist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"

	"github.com/toozej/precureplaylist/internal/codec"
	"github.com/toozej/precureplaylist/internal/duplicate"
	"github.com/toozej/precureplaylist/internal/keyword"
	"github.com/toozej/precureplaylist/internal/normalize"
	"github.com/toozej/precureplaylist/internal/types"
)

// BatchSize is the most track ids sent to Spotify in one add call.
const BatchSize = 100

var (
	// ErrNothingToExport is returned when no track survives the keyword filter.
	ErrNothingToExport = errors.New("no Precure tracks to export")
	// ErrNoSource is returned for an export request naming neither input nor stored playlist.
	ErrNoSource = errors.New("export request has no source")
	// ErrStoreUnavailable is returned when a store operation is requested without a store.
	ErrStoreUnavailable = errors.New("playlist store not configured")
	// ErrSpotifyUnavailable is returned when Spotify is not configured or not authenticated.
	ErrSpotifyUnavailable = errors.New("spotify not configured or not authenticated")
	// ErrRateLimited is returned when Spotify rejected a call for rate limiting.
	ErrRateLimited = errors.New("rate limited by Spotify API, please try again later")
)

// PlaylistService exports playlists to documents and imports documents back
type PlaylistService struct {
	spotify    types.SpotifyService
	duplicate  types.DuplicateDetector
	store      types.PlaylistStore
	normalizer *normalize.Normalizer
	encoder    *codec.Encoder
	decoder    *codec.Decoder
	keywords   keyword.Set
	progress   io.Writer
	logger     *log.Logger
}

// Option configures a PlaylistService.
type Option func(*PlaylistService)

// WithSpotify enables Spotify sources and publishing.
func WithSpotify(spotify types.SpotifyService, detector types.DuplicateDetector) Option {
	return func(p *PlaylistService) {
		p.spotify = spotify
		p.duplicate = detector
	}
}

// WithStore enables saving and exporting stored playlists.
func WithStore(store types.PlaylistStore) Option {
	return func(p *PlaylistService) {
		p.store = store
	}
}

// WithCodec replaces the encoder and decoder.
func WithCodec(encoder *codec.Encoder, decoder *codec.Decoder) Option {
	return func(p *PlaylistService) {
		if encoder != nil {
			p.encoder = encoder
		}
		if decoder != nil {
			p.decoder = decoder
		}
	}
}

// WithNormalizer replaces the normalizer used on export input.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(p *PlaylistService) {
		p.normalizer = n
	}
}

// WithKeywords replaces the keyword set used on export input.
func WithKeywords(set keyword.Set) Option {
	return func(p *PlaylistService) {
		p.keywords = set
	}
}

// WithProgressOutput sets where the publish progress bar is drawn.
func WithProgressOutput(w io.Writer) Option {
	return func(p *PlaylistService) {
		p.progress = w
	}
}

// NewPlaylistService creates a new playlist service
func NewPlaylistService(logger *log.Logger, opts ...Option) *PlaylistService {
	p := &PlaylistService{
		keywords: keyword.Default(),
		progress: io.Discard,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.normalizer == nil {
		p.normalizer = normalize.New(normalize.WithLogger(logger))
	}
	if p.encoder == nil {
		p.encoder = codec.NewEncoder()
	}
	if p.decoder == nil {
		p.decoder = codec.NewDecoder(codec.WithDecoderLogger(logger), codec.WithNormalizer(p.normalizer))
	}
	return p
}

// ExportRequest names what to export. Exactly one of Raw or PlaylistID is used,
// Raw first.
type ExportRequest struct {
	// Raw is parsed JSON in any supported shape.
	Raw any
	// PlaylistID is the id of a stored playlist.
	PlaylistID string
	// Meta overrides the playlist header found in Raw.
	Meta       *types.PlaylistMeta
	Format     codec.Format
	AllowEmpty bool
}

// ExportResult is a built document plus what went into it.
type ExportResult struct {
	Document      *codec.Document `json:"document"`
	Source        string          `json:"source_kind"`
	OriginalCount int             `json:"original_count"`
	ExportedCount int             `json:"exported_count"`
}

// SourceStore is the ExportResult.Source of stored playlists.
const SourceStore = "store"

// Export builds a document from raw input or a stored playlist.
func (p *PlaylistService) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	logger := p.logger.WithFields(log.Fields{
		"component": "playlist_service",
		"operation": "export",
		"format":    string(req.Format),
	})

	if req.Raw == nil && req.PlaylistID == "" {
		return nil, ErrNoSource
	}

	var (
		meta     types.PlaylistMeta
		tracks   []types.Track
		source   string
		original int
	)

	if req.Raw != nil {
		norm, err := p.normalizer.Normalize(req.Raw)
		if err != nil {
			logger.WithError(err).Warn("Failed to normalize export input")
			return nil, err
		}
		meta = codec.ExtractMeta(req.Raw)
		tracks = keyword.Filter(norm.Tracks, p.keywords)
		source = norm.Source.String()
		original = len(norm.Tracks)
	} else {
		if p.store == nil {
			return nil, ErrStoreUnavailable
		}
		row, err := p.store.Get(ctx, req.PlaylistID)
		if err != nil {
			logger.WithError(err).WithField("playlist_id", req.PlaylistID).Warn("Failed to load stored playlist")
			return nil, err
		}
		meta = row.Meta()
		tracks = row.Tracks
		source = SourceStore
		original = len(row.Tracks)
	}

	if req.Meta != nil {
		meta = *req.Meta
	}

	if len(tracks) == 0 && !req.AllowEmpty {
		logger.WithFields(log.Fields{
			"source_kind":    source,
			"original_count": original,
		}).Info("No Precure tracks found to export")
		return nil, ErrNothingToExport
	}

	doc, err := p.encoder.Encode(meta, tracks, req.Format)
	if err != nil {
		return nil, err
	}

	logger.WithFields(log.Fields{
		"source_kind":    source,
		"original_count": original,
		"exported_count": len(tracks),
		"playlist_name":  meta.Name,
	}).Info("Exported playlist")

	return &ExportResult{
		Document:      doc,
		Source:        source,
		OriginalCount: original,
		ExportedCount: len(tracks),
	}, nil
}

// ExportFromSpotify fetches a Spotify playlist and exports its Precure tracks.
func (p *PlaylistService) ExportFromSpotify(ctx context.Context, playlistID string, format codec.Format, allowEmpty bool) (*ExportResult, error) {
	if err := p.requireSpotify(); err != nil {
		return nil, err
	}

	raw, err := p.spotify.FetchPlaylist(playlistID)
	if err != nil {
		p.logger.WithError(err).WithFields(log.Fields{
			"component":   "playlist_service",
			"operation":   "export_from_spotify",
			"playlist_id": playlistID,
		}).Error("Failed to fetch playlist from Spotify")
		return nil, fmt.Errorf("failed to fetch playlist %s: %w", playlistID, err)
	}

	return p.Export(ctx, ExportRequest{Raw: raw, Format: format, AllowEmpty: allowEmpty})
}

// SearchCatalog searches Spotify and keeps the Precure tracks.
func (p *PlaylistService) SearchCatalog(_ context.Context, query string, limit int) ([]types.Track, error) {
	if err := p.requireSpotify(); err != nil {
		return nil, err
	}

	raw, err := p.spotify.SearchTracks(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search Spotify: %w", err)
	}

	norm, err := p.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}
	return keyword.Filter(norm.Tracks, p.keywords), nil
}

// ImportOptions controls what Import does with an accepted document.
type ImportOptions struct {
	// Save persists the playlist for UserID.
	Save   bool
	UserID string
	// Publish creates a Spotify playlist, or appends to TargetPlaylistID when set.
	Publish          bool
	TargetPlaylistID string
}

// ImportResult is an accepted document plus what was done with it.
type ImportResult struct {
	Decoded   *codec.Result      `json:"decoded"`
	Saved     *types.PlaylistRow `json:"saved,omitempty"`
	Published *PublishResult     `json:"published,omitempty"`
}

// PublishResult summarizes a publish to Spotify.
type PublishResult struct {
	Playlist   *types.Playlist `json:"playlist"`
	Added      int             `json:"added"`
	Duplicates int             `json:"duplicates"`
	Skipped    int             `json:"skipped"`
}

// Import decodes raw and optionally saves and publishes the result.
// Decode failures come back as *codec.DecodeError.
func (p *PlaylistService) Import(ctx context.Context, raw any, opts ImportOptions) (*ImportResult, error) {
	logger := p.logger.WithFields(log.Fields{
		"component": "playlist_service",
		"operation": "import",
	})

	if opts.Save && p.store == nil {
		return nil, ErrStoreUnavailable
	}
	if opts.Publish {
		if err := p.requireSpotify(); err != nil {
			return nil, err
		}
	}

	decoded, err := p.decoder.Decode(raw)
	if err != nil {
		logger.WithError(err).Info("Document rejected")
		return nil, err
	}

	result := &ImportResult{Decoded: decoded}

	if opts.Save {
		row := &types.PlaylistRow{
			UserID:      opts.UserID,
			Name:        decoded.Playlist.Name,
			Description: decoded.Playlist.Description,
			IsPublic:    decoded.Playlist.IsPublic,
			Tracks:      decoded.Tracks,
		}
		if err := p.store.Save(ctx, row); err != nil {
			logger.WithError(err).Error("Failed to save imported playlist")
			return nil, fmt.Errorf("failed to save playlist: %w", err)
		}
		result.Saved = row
	}

	if opts.Publish {
		published, err := p.Publish(ctx, decoded.Playlist, decoded.Tracks, opts.TargetPlaylistID)
		if err != nil {
			return result, err
		}
		result.Published = published
	}

	logger.WithFields(log.Fields{
		"source_kind":    decoded.Source.String(),
		"original_count": decoded.OriginalCount,
		"filtered_count": decoded.FilteredCount,
		"saved":          result.Saved != nil,
		"published":      result.Published != nil,
	}).Info("Imported playlist")

	return result, nil
}

// Publish adds tracks to a Spotify playlist, creating one from meta when
// targetID is empty. Tracks already in the playlist and tracks without a
// Spotify id are skipped.
func (p *PlaylistService) Publish(ctx context.Context, meta types.PlaylistMeta, tracks []types.Track, targetID string) (*PublishResult, error) {
	if err := p.requireSpotify(); err != nil {
		return nil, err
	}

	logger := p.logger.WithFields(log.Fields{
		"component": "playlist_service",
		"operation": "publish",
	})

	result := &PublishResult{}
	for _, t := range tracks {
		if !duplicate.Publishable(t) {
			result.Skipped++
		}
	}

	if targetID == "" {
		created, err := p.spotify.CreatePlaylist(meta.Name, meta.Description, meta.IsPublic)
		if err != nil {
			logger.WithError(err).WithField("playlist_name", meta.Name).Error("Failed to create playlist")
			return nil, fmt.Errorf("failed to create playlist: %w", err)
		}
		result.Playlist = created
		targetID = created.ID
	} else {
		result.Playlist = &types.Playlist{ID: targetID, Name: meta.Name}
	}

	toAdd := tracks
	if p.duplicate != nil {
		dup, err := p.duplicate.CheckDuplicates(targetID, tracks)
		if err != nil {
			logger.WithError(err).WithField("playlist_id", targetID).Warn("Failed to check for duplicates, proceeding anyway")
		} else {
			toAdd = dup.NewTracks
			result.Duplicates = len(dup.DuplicateTracks)
		}
	}

	ids := make([]string, 0, len(toAdd))
	for _, t := range toAdd {
		if duplicate.Publishable(t) {
			ids = append(ids, t.ID)
		}
	}

	added, err := p.addInBatches(ctx, targetID, ids)
	result.Added = added
	if err != nil {
		return result, err
	}

	logger.WithFields(log.Fields{
		"playlist_id": targetID,
		"added":       result.Added,
		"duplicates":  result.Duplicates,
		"skipped":     result.Skipped,
	}).Info("Published playlist to Spotify")

	return result, nil
}

func (p *PlaylistService) addInBatches(ctx context.Context, playlistID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	bar := progressbar.NewOptions(
		len(ids),
		progressbar.OptionSetWriter(p.progress),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Publishing tracks..."),
	)

	added := 0
	for start := 0; start < len(ids); start += BatchSize {
		if err := ctx.Err(); err != nil {
			return added, err
		}

		end := min(start+BatchSize, len(ids))
		batch := ids[start:end]

		if err := p.spotify.AddTracksToPlaylist(playlistID, batch); err != nil {
			p.logger.WithError(err).WithFields(log.Fields{
				"component":   "playlist_service",
				"operation":   "add_tracks",
				"playlist_id": playlistID,
				"batch_start": start,
				"track_count": len(batch),
			}).Error("Failed to add tracks to playlist")

			if isRateLimit(err) {
				return added, fmt.Errorf("%w: %v", ErrRateLimited, err)
			}
			return added, fmt.Errorf("failed to add tracks to playlist: %w", err)
		}

		added += len(batch)
		_ = bar.Add(len(batch))
	}
	_ = bar.Finish()

	return added, nil
}

func isRateLimit(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") || strings.Contains(msg, "429")
}

func (p *PlaylistService) requireSpotify() error {
	if p.spotify == nil || !p.spotify.IsAuthenticated() {
		return ErrSpotifyUnavailable
	}
	return nil
}

// ListPlaylists returns the stored playlists of userID, all users when empty.
func (p *PlaylistService) ListPlaylists(ctx context.Context, userID string) ([]types.PlaylistRow, error) {
	if p.store == nil {
		return nil, ErrStoreUnavailable
	}
	return p.store.List(ctx, userID)
}

// DeletePlaylist removes a stored playlist.
func (p *PlaylistService) DeletePlaylist(ctx context.Context, id string) error {
	if p.store == nil {
		return ErrStoreUnavailable
	}
	if err := p.store.Delete(ctx, id); err != nil {
		return err
	}
	p.logger.WithFields(log.Fields{
		"component":   "playlist_service",
		"operation":   "delete",
		"playlist_id": id,
	}).Info("Deleted stored playlist")
	return nil
}

// FilterPlaylistsBySearch filters stored playlists by a case-insensitive name search
func (p *PlaylistService) FilterPlaylistsBySearch(playlists []types.PlaylistRow, searchTerm string) []types.PlaylistRow {
	if searchTerm == "" {
		return playlists
	}

	filtered := make([]types.PlaylistRow, 0)
	searchLower := strings.ToLower(searchTerm)

	for _, playlist := range playlists {
		if strings.Contains(strings.ToLower(playlist.Name), searchLower) {
			filtered = append(filtered, playlist)
		}
	}

	p.logger.WithFields(log.Fields{
		"component":      "playlist_service",
		"operation":      "filter_playlists",
		"search_term":    searchTerm,
		"original_count": len(playlists),
		"filtered_count": len(filtered),
	}).Debug("Playlist filtering completed")

	return filtered
}
