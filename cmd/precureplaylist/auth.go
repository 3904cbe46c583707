package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/toozej/precureplaylist/internal/playlist"
	"github.com/toozej/precureplaylist/internal/types"
)

// authTimeout bounds how long the callback server waits for the browser.
const authTimeout = 5 * time.Minute

// newAuthCmd creates the auth command for authorizing Spotify access.
func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with Spotify",
		Long: `Authenticate with Spotify and store the token for later exports and publishes.
A temporary server on SERVER_HOST:SERVER_PORT receives the OAuth callback.`,
		Args: cobra.NoArgs,
		Run:  runAuth,
	}
}

func runAuth(cmd *cobra.Command, args []string) {
	svc, err := initializeServices(conf, false)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize services")
		return
	}
	defer svc.Close()

	if svc.spotify == nil {
		log.WithError(playlist.ErrSpotifyUnavailable).Fatal("Set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET to authenticate")
		return
	}
	if svc.spotify.IsAuthenticated() {
		fmt.Println("✅ Already authenticated with Spotify")
		return
	}

	if err := svc.ensureSpotify(); err != nil {
		log.WithError(err).Fatal("Failed to authenticate with Spotify")
	}
	fmt.Println("✅ Authenticated with Spotify")
}

// authenticateSpotify handles the OAuth authentication flow by starting a temporary server
func authenticateSpotify(spotifyService types.SpotifyService, addr string, timeout time.Duration) error {
	authURL := spotifyService.GetAuthURL()

	log.WithField("auth_url", authURL).Info("Please visit this URL to authenticate with Spotify")
	fmt.Printf("\n🔐 Spotify Authentication Required\n")
	fmt.Printf("Please visit this URL to authenticate:\n%s\n\n", authURL)
	fmt.Printf("Waiting for authentication... (Press Ctrl+C to cancel)\n")

	authComplete := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		handleSpotifyCallback(w, r, spotifyService, authComplete)
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("address", addr).Info("Starting temporary server for OAuth callback")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			reportAuth(authComplete, fmt.Errorf("server error: %w", err))
		}
	}()

	shutdown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("Error shutting down authentication server")
		}
	}

	select {
	case err := <-authComplete:
		shutdown()
		if err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}
		return nil

	case <-time.After(timeout):
		shutdown()
		return fmt.Errorf("authentication timeout after %s", timeout)
	}
}

// reportAuth delivers the first outcome only. Later callbacks, such as a
// browser reload, must not block their handler.
func reportAuth(authComplete chan<- error, err error) {
	select {
	case authComplete <- err:
	default:
	}
}

// handleSpotifyCallback handles the OAuth callback from Spotify
func handleSpotifyCallback(w http.ResponseWriter, r *http.Request, spotifyService types.SpotifyService, authComplete chan<- error) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	errorParam := r.URL.Query().Get("error")

	if errorParam != "" {
		log.WithField("error", errorParam).Error("Spotify authentication error")
		http.Error(w, "Authentication failed: "+errorParam, http.StatusBadRequest)
		reportAuth(authComplete, fmt.Errorf("spotify authentication error: %s", errorParam))
		return
	}

	if code == "" {
		log.Error("No authorization code received")
		http.Error(w, "No authorization code received", http.StatusBadRequest)
		reportAuth(authComplete, errors.New("no authorization code received"))
		return
	}

	if err := spotifyService.CompleteAuth(code, state); err != nil {
		log.WithError(err).Error("Failed to complete Spotify authentication")
		http.Error(w, "Authentication failed", http.StatusInternalServerError)
		reportAuth(authComplete, fmt.Errorf("failed to complete authentication: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)

	successHTML := `
		<!DOCTYPE html>
		<html>
		<head>
			<title>Authentication Successful</title>
			<style>
				body { font-family: Arial, sans-serif; text-align: center; padding: 50px; }
				.success { color: #e4007f; font-size: 24px; margin-bottom: 20px; }
				.message { color: #6c757d; font-size: 16px; }
			</style>
		</head>
		<body>
			<div class="success">✅ Authentication Successful!</div>
			<div class="message">You can now close this window and return to the terminal.</div>
		</body>
		</html>
	`

	if _, err := w.Write([]byte(successHTML)); err != nil {
		log.WithError(err).Warn("Failed to write success response")
	}

	log.Info("Spotify authentication completed successfully via callback")
	reportAuth(authComplete, nil)
}
