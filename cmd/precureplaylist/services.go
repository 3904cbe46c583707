package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/toozej/precureplaylist/internal/api"
	"github.com/toozej/precureplaylist/internal/codec"
	"github.com/toozej/precureplaylist/internal/duplicate"
	"github.com/toozej/precureplaylist/internal/normalize"
	"github.com/toozej/precureplaylist/internal/playlist"
	"github.com/toozej/precureplaylist/internal/rules"
	"github.com/toozej/precureplaylist/internal/search"
	"github.com/toozej/precureplaylist/internal/series"
	"github.com/toozej/precureplaylist/internal/spotify"
	"github.com/toozej/precureplaylist/internal/storage"
	"github.com/toozej/precureplaylist/internal/store"
	"github.com/toozej/precureplaylist/internal/types"
	"github.com/toozej/precureplaylist/pkg/config"
)

// services is everything a command needs, built once from configuration.
type services struct {
	playlists     *playlist.PlaylistService
	io            *storage.Router
	spotify       types.SpotifyService
	searcher      *search.TrackSearcher
	classifier    series.Classifier
	store         *store.Store
	defaultFormat codec.Format
	userID        string
	callbackAddr  string
	logger        *log.Logger
}

// Close releases document storage and the playlist store.
func (s *services) Close() {
	if s.io != nil {
		if err := s.io.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close document storage")
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close playlist store")
		}
	}
}

// initializeServices creates and wires all services from configuration.
// withStore opens the local playlist database.
func initializeServices(cfg config.Config, withStore bool) (*services, error) {
	logger := log.StandardLogger()

	defaultFormat, err := codec.ParseFormat(cfg.Playlist.DefaultFormat)
	if err != nil {
		return nil, err
	}

	tables, err := rules.Load(cfg.Playlist.RulesFile)
	if err != nil {
		return nil, err
	}
	keywords := tables.KeywordSet()

	normalizer := normalize.New(normalize.WithLogger(logger))
	encoder := codec.NewEncoder(
		codec.WithAppName(cfg.Playlist.AppName),
		codec.WithFormatVersion(cfg.Playlist.FormatVersion),
		codec.WithClassifier(tables.Classifier()),
	)
	decoder := codec.NewDecoder(
		codec.WithExpectedAppName(cfg.Playlist.AppName),
		codec.WithKeywords(keywords),
		codec.WithNormalizer(normalizer),
		codec.WithDecoderLogger(logger),
	)

	opts := []playlist.Option{
		playlist.WithCodec(encoder, decoder),
		playlist.WithNormalizer(normalizer),
		playlist.WithKeywords(keywords),
		playlist.WithProgressOutput(os.Stderr),
	}

	s := &services{
		io: storage.NewRouter(
			storage.WithFetcher(api.NewDocumentClient(cfg.Fetch)),
			storage.WithObjectStore(storage.GCSOpener(cfg.GCS.CredentialsFile)),
			storage.WithClipboard(storage.SystemClipboard()),
			storage.WithLogger(logger),
		),
		searcher:      search.NewTrackSearcher(logger, search.DefaultMinConfidence),
		classifier:    tables.Classifier(),
		defaultFormat: defaultFormat,
		userID:        cfg.Store.UserID,
		callbackAddr:  cfg.Server.Address(),
		logger:        logger,
	}

	spotifyService := spotify.NewService(cfg.Spotify, logger)
	if spotifyService.Available() {
		s.spotify = spotifyService
		opts = append(opts, playlist.WithSpotify(spotifyService, duplicate.NewDuplicateService(spotifyService, logger)))
	}

	if withStore {
		path, err := cfg.Store.GetPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve store path: %w", err)
		}
		st, err := store.Open(path, store.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		s.store = st
		opts = append(opts, playlist.WithStore(st))
	}

	s.playlists = playlist.NewPlaylistService(logger, opts...)
	return s, nil
}

// ensureSpotify runs the OAuth flow when Spotify is configured but not yet
// authenticated.
func (s *services) ensureSpotify() error {
	if s.spotify == nil {
		return playlist.ErrSpotifyUnavailable
	}
	if s.spotify.IsAuthenticated() {
		return nil
	}

	log.Info("Spotify authentication required. Starting authentication flow...")
	if err := authenticateSpotify(s.spotify, s.callbackAddr, authTimeout); err != nil {
		return err
	}
	log.Info("Spotify authentication completed successfully")
	return nil
}
