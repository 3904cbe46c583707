// Package config provides secure configuration management for the precureplaylist application.
//
// This package handles loading configuration from environment variables and .env files
// with built-in security measures to prevent path traversal attacks. It uses the
// github.com/caarlos0/env library for environment variable parsing and
// github.com/joho/godotenv for .env file loading.
//
// The configuration loading follows a priority order:
//  1. Environment variables (highest priority)
//  2. .env file in current working directory
//  3. Default values (if any)
//
// Example usage:
//
//	import "github.com/toozej/precureplaylist/pkg/config"
//
//	func main() {
//		conf := config.GetEnvVars()
//		fmt.Printf("App name: %s\n", conf.Playlist.AppName)
//	}
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config represents the main application configuration with nested service configurations.
type Config struct {
	Spotify  SpotifyConfig  `envPrefix:"SPOTIFY_"`
	Playlist PlaylistConfig `envPrefix:"PLAYLIST_"`
	Fetch    FetchConfig    `envPrefix:"FETCH_"`
	Store    StoreConfig    `envPrefix:"STORE_"`
	GCS      GCSConfig      `envPrefix:"GCS_"`
	Server   ServerConfig   `envPrefix:"SERVER_"`
}

// SpotifyConfig represents the configuration for Spotify API integration.
type SpotifyConfig struct {
	// ClientID is the Spotify application client ID.
	ClientID string `env:"CLIENT_ID"`

	// ClientSecret is the Spotify application client secret.
	ClientSecret string `env:"CLIENT_SECRET"` // #nosec G117 -- OAuth client secret, expected in config

	// RedirectURL is the callback URL for OAuth authentication.
	RedirectURL string `env:"REDIRECT_URI" envDefault:"http://127.0.0.1:8080/callback"`

	// TokenFilePath is the path where the Spotify authentication token is stored.
	TokenFilePath string `env:"TOKEN_FILE_PATH" envDefault:"~/.config/precureplaylist/spotify_token.json"`
}

// PlaylistConfig controls how playlist documents are written and checked.
type PlaylistConfig struct {
	// AppName is written to meta.app_name on export and compared on import.
	AppName string `env:"APP_NAME" envDefault:"PrecureProfileMaker"`

	// FormatVersion is written to meta.format_version.
	FormatVersion string `env:"FORMAT_VERSION" envDefault:"1.0"`

	// DefaultFormat is the export mode used when none is requested.
	DefaultFormat string `env:"DEFAULT_FORMAT" envDefault:"detailed"`

	// RulesFile optionally overrides the keyword, series, and type tables.
	RulesFile string `env:"RULES_FILE"`
}

// FetchConfig configures the HTTP client used to download shared documents.
type FetchConfig struct {
	// HTTPTimeout is the timeout for HTTP requests in seconds.
	HTTPTimeout int `env:"HTTP_TIMEOUT" envDefault:"30"`

	// MaxRetries is the number of attempts made on 502 and 504 responses.
	MaxRetries int `env:"MAX_RETRIES" envDefault:"3"`
}

// Timeout returns HTTPTimeout as a duration.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.HTTPTimeout) * time.Second
}

// StoreConfig locates the local playlist database.
type StoreConfig struct {
	Path   string `env:"PATH" envDefault:"~/.local/share/precureplaylist/playlists.db"`
	UserID string `env:"USER_ID" envDefault:"local"`
}

// GCSConfig configures Google Cloud Storage access for gs:// locations.
type GCSConfig struct {
	// CredentialsFile is a service account key; empty means application default credentials.
	CredentialsFile string `env:"CREDENTIALS_FILE"`
}

// ServerConfig represents the server configuration.
type ServerConfig struct {
	Host string `env:"HOST" envDefault:"127.0.0.1"`
	Port int    `env:"PORT" envDefault:"8080"`
}

// GetEnvVars returns Load's configuration and exits the process with status 1
// when it fails.
func GetEnvVars() Config {
	conf, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %s\n", err)
		fmt.Fprintln(os.Stderr, "Please check your configuration and try again.")
		os.Exit(1)
	}
	return conf
}

// Load reads the .env file in the current directory, if any, parses the
// environment, and validates the result.
func Load() (Config, error) {
	if err := loadDotenv(); err != nil {
		return Config{}, err
	}

	var conf Config
	if err := env.Parse(&conf); err != nil {
		return Config{}, fmt.Errorf("error parsing configuration from environment: %w", err)
	}
	if err := validateConfig(&conf); err != nil {
		return Config{}, err
	}
	return conf, nil
}

// loadDotenv loads ./.env when present. Variables already set in the
// environment win over the file.
func loadDotenv() error {
	path, err := dotenvPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

// dotenvPath resolves .env inside the working directory and refuses any
// result that escapes it.
func dotenvPath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("error getting current working directory: %w", err)
	}
	base, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("error resolving current directory: %w", err)
	}
	path := filepath.Join(base, ".env")
	if rel, err := filepath.Rel(base, path); err != nil || strings.HasPrefix(rel, "..") {
		return "", ErrPathTraversal
	}
	return path, nil
}

// Address returns host:port, filling unset parts with 127.0.0.1 and 8080.
func (s ServerConfig) Address() string {
	host, port := s.Host, s.Port
	if host == "" {
		host = "127.0.0.1"
	}
	if port == 0 {
		port = 8080
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// GetTokenFilePath returns the resolved token file path, handling tilde expansion
// and ensuring the directory exists.
func (s SpotifyConfig) GetTokenFilePath() (string, error) {
	return resolvePath(s.TokenFilePath)
}

// HasCredentials reports whether both client credentials are set.
func (s SpotifyConfig) HasCredentials() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// GetPath returns the resolved database path, creating its directory.
func (s StoreConfig) GetPath() (string, error) {
	return resolvePath(s.Path)
}

// resolvePath expands a leading ~/ and creates the parent directory.
func resolvePath(p string) (string, error) {
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		p = filepath.Join(home, rest)
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o700); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", abs, err)
	}
	return abs, nil
}

// validateConfig collects every invalid setting into one joined error.
func validateConfig(conf *Config) error {
	var errs []error

	if conf.Server.Port < 1 || conf.Server.Port > 65535 {
		errs = append(errs, ErrInvalidServerPort)
	}

	// Spotify is optional; only export --spotify and publishing need it.
	if !conf.Spotify.HasCredentials() {
		fmt.Fprintln(os.Stderr, "Warning: SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET are not both set. Spotify export and publishing are disabled.")
	}

	if strings.TrimSpace(conf.Playlist.AppName) == "" {
		errs = append(errs, ErrMissingAppName)
	}
	if strings.TrimSpace(conf.Playlist.FormatVersion) == "" {
		errs = append(errs, ErrMissingFormatVersion)
	}
	switch strings.ToLower(conf.Playlist.DefaultFormat) {
	case "detailed", "simple":
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidDefaultFormat, conf.Playlist.DefaultFormat))
	}

	if conf.Fetch.HTTPTimeout <= 0 {
		errs = append(errs, ErrInvalidHTTPTimeout)
	}
	if conf.Fetch.MaxRetries < 1 {
		errs = append(errs, ErrInvalidMaxRetries)
	}

	if conf.Store.Path == "" {
		errs = append(errs, ErrMissingStorePath)
	}

	return errors.Join(errs...)
}
