package spotify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/toozej/precureplaylist/internal/types"
	"github.com/toozej/precureplaylist/pkg/config"
)

const (
	// pageSize is the largest page the playlist items endpoint returns.
	pageSize = 100
	// maxSearchLimit is the largest page the search endpoint returns.
	maxSearchLimit = 50
	// refreshWindow is how close to expiry a token gets refreshed.
	refreshWindow = 5 * time.Minute
)

var (
	// ErrNotAuthenticated is returned by API calls made before authentication.
	ErrNotAuthenticated = errors.New("user not authenticated to Spotify")
	// ErrInvalidState is returned when the OAuth callback state does not match.
	ErrInvalidState = errors.New("invalid state parameter")
)

var scopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopePlaylistModifyPublic,
}

// Client is an authorization-code Spotify session. A token persisted by a
// previous session is resumed when it still works.
type Client struct {
	client     *spotify.Client
	config     config.SpotifyConfig
	logger     *logrus.Logger
	token      *oauth2.Token
	tokenMu    sync.RWMutex
	ctx        context.Context
	auth       *spotifyauth.Authenticator
	isUserAuth bool
	authURL    string
	state      string
	tokenFile  string
}

// NewClient validates cfg and prepares the OAuth flow.
func NewClient(cfg config.SpotifyConfig, logger *logrus.Logger) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("spotify client ID and secret are required")
	}
	if cfg.RedirectURL == "" {
		return nil, fmt.Errorf("redirect URL is required but not configured (set SPOTIFY_REDIRECT_URI)")
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
		spotifyauth.WithRedirectURL(cfg.RedirectURL),
		spotifyauth.WithScopes(scopes...),
	)
	state := "precureplaylist-" + uuid.NewString()

	c := &Client{
		config:  cfg,
		logger:  logger,
		ctx:     context.Background(),
		auth:    auth,
		authURL: auth.AuthURL(state),
		state:   state,
	}

	path, err := cfg.GetTokenFilePath()
	if err != nil {
		logger.WithError(err).Warn("No token file available, Spotify login will not be remembered")
	}
	c.tokenFile = path

	if c.resume() {
		logger.Info("Resumed Spotify session from stored token")
	} else {
		logger.WithField("redirect_url", cfg.RedirectURL).Debug("Spotify login required")
	}
	return c, nil
}

// resume loads the persisted token and keeps it if the API accepts it.
func (c *Client) resume() bool {
	if !c.loadToken() {
		return false
	}
	if !c.validateStoredToken() {
		c.logger.WithField("token_file", c.tokenFile).Info("Stored Spotify token rejected, login required")
		return false
	}
	return true
}

// GetAuthURL returns the URL the user visits to grant access.
func (c *Client) GetAuthURL() string {
	return c.authURL
}

// IsAuthenticated reports whether API calls can be made.
func (c *Client) IsAuthenticated() bool {
	c.tokenMu.RLock()
	defer c.tokenMu.RUnlock()
	return c.isUserAuth && c.client != nil
}

// CompleteAuth exchanges the callback code for a token, verifies it and
// persists it.
func (c *Client) CompleteAuth(code, state string) error {
	if state != c.state {
		return ErrInvalidState
	}

	token, err := c.auth.Exchange(c.ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange code for token: %w", err)
	}

	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	user, err := c.bind(token)
	if err != nil {
		return fmt.Errorf("authentication verification failed: %w", err)
	}
	c.logger.WithFields(logrus.Fields{
		"user_id":      user.ID,
		"display_name": user.DisplayName,
	}).Info("Logged in to Spotify")

	c.persist()
	return nil
}

// RefreshToken renews the access token once it is inside the refresh window.
func (c *Client) RefreshToken() error {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if !c.isUserAuth {
		return ErrNotAuthenticated
	}
	if c.token == nil || time.Until(c.token.Expiry) > refreshWindow {
		return nil
	}

	fresh, err := c.auth.RefreshToken(c.ctx, c.token)
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}
	c.token = fresh
	c.client = spotify.New(c.auth.Client(c.ctx, fresh))
	c.logger.WithField("expiry", fresh.Expiry).Debug("Refreshed Spotify token")

	c.persist()
	return nil
}

// validateStoredToken binds the loaded token if the API accepts it.
func (c *Client) validateStoredToken() bool {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.token == nil {
		return false
	}
	if _, err := c.bind(c.token); err != nil {
		c.logger.WithError(err).Debug("Stored token did not authenticate")
		return false
	}
	return true
}

// bind makes token the session token after a CurrentUser round trip
// succeeds with it. The caller must hold tokenMu.
func (c *Client) bind(token *oauth2.Token) (*spotify.PrivateUser, error) {
	candidate := spotify.New(c.auth.Client(c.ctx, token))
	user, err := candidate.CurrentUser(c.ctx)
	if err != nil {
		return nil, err
	}
	c.token = token
	c.client = candidate
	c.isUserAuth = true
	return user, nil
}

// persist writes the session token. The caller must hold tokenMu.
func (c *Client) persist() {
	if err := c.saveTokenUnsafe(); err != nil {
		c.logger.WithError(err).Warn("Could not store Spotify token, next run will ask to log in again")
		return
	}
	if c.tokenFile != "" {
		c.logger.WithField("token_file", c.tokenFile).Debug("Stored Spotify token")
	}
}

// session returns the API client after making sure its token is fresh.
func (c *Client) session() (*spotify.Client, error) {
	if !c.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	if err := c.RefreshToken(); err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	c.tokenMu.RLock()
	defer c.tokenMu.RUnlock()
	return c.client, nil
}

// FetchPlaylist returns a playlist in the platform API layout
// ({name, description, public, owner, tracks: {items: [{added_at, track}]}}),
// with every page of items merged into one list.
func (c *Client) FetchPlaylist(playlistID string) (map[string]any, error) {
	sp, err := c.session()
	if err != nil {
		return nil, err
	}

	full, err := sp.GetPlaylist(c.ctx, spotify.ID(playlistID))
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist %s: %w", playlistID, err)
	}
	items, err := playlistItems(c.ctx, sp, playlistID)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"playlist_id": playlistID,
		"name":        full.Name,
		"items":       len(items),
	}).Debug("Fetched playlist")
	return platformPlaylist(full, items)
}

// SearchTracks returns catalog search results as an array of track objects.
// Limits outside 1..50 fall back to 20.
func (c *Client) SearchTracks(query string, limit int) ([]any, error) {
	sp, err := c.session()
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxSearchLimit {
		limit = 20
	}

	res, err := sp.Search(c.ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to search for tracks: %w", err)
	}
	if res.Tracks == nil {
		return []any{}, nil
	}

	c.logger.WithFields(logrus.Fields{
		"query":   query,
		"results": len(res.Tracks.Tracks),
	}).Debug("Searched catalog")
	return trackArray(res.Tracks.Tracks)
}

// AddTracksToPlaylist appends up to 100 tracks in one request.
func (c *Client) AddTracksToPlaylist(playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return fmt.Errorf("no tracks provided to add")
	}
	sp, err := c.session()
	if err != nil {
		return err
	}

	ids := make([]spotify.ID, 0, len(trackIDs))
	for _, id := range trackIDs {
		ids = append(ids, spotify.ID(id))
	}
	if _, err := sp.AddTracksToPlaylist(c.ctx, spotify.ID(playlistID), ids...); err != nil {
		return fmt.Errorf("failed to add tracks to playlist %s: %w", playlistID, err)
	}

	c.logger.WithFields(logrus.Fields{
		"playlist_id": playlistID,
		"added":       len(ids),
	}).Debug("Added tracks")
	return nil
}

// CheckTracksInPlaylist reports, for each id, whether the playlist already
// contains that track.
func (c *Client) CheckTracksInPlaylist(playlistID string, trackIDs []string) ([]bool, error) {
	if len(trackIDs) == 0 {
		return []bool{}, nil
	}
	sp, err := c.session()
	if err != nil {
		return nil, err
	}

	items, err := playlistItems(c.ctx, sp, playlistID)
	if err != nil {
		return nil, err
	}
	return containsTracks(items, trackIDs), nil
}

// CreatePlaylist creates a playlist owned by the logged-in user.
func (c *Client) CreatePlaylist(name, description string, public bool) (*types.Playlist, error) {
	sp, err := c.session()
	if err != nil {
		return nil, err
	}

	me, err := sp.CurrentUser(c.ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	created, err := sp.CreatePlaylistForUser(c.ctx, me.ID, name, description, public, false)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist %s: %w", name, err)
	}

	c.logger.WithFields(logrus.Fields{
		"playlist_id": created.ID,
		"name":        created.Name,
		"owner":       me.ID,
	}).Info("Created Spotify playlist")

	return &types.Playlist{
		ID:         string(created.ID),
		Name:       created.Name,
		URI:        string(created.URI),
		TrackCount: int(created.Tracks.Total),
		EmbedURL:   "https://open.spotify.com/embed/playlist/" + string(created.ID),
	}, nil
}

// playlistItems pages through every item of a playlist.
func playlistItems(ctx context.Context, sp *spotify.Client, playlistID string) ([]spotify.PlaylistItem, error) {
	var items []spotify.PlaylistItem
	for offset := 0; ; offset += pageSize {
		page, err := sp.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(pageSize), spotify.Offset(offset))
		if err != nil {
			return nil, fmt.Errorf("failed to get playlist items: %w", err)
		}
		items = append(items, page.Items...)
		if len(page.Items) < pageSize {
			return items, nil
		}
	}
}
