// Package config provides error definitions for configuration-related errors.
package config

import "errors"

// Configuration validation errors
var (
	// ErrPathTraversal is returned when the .env path escapes the working directory
	ErrPathTraversal = errors.New(".env file path traversal detected")

	// ErrInvalidServerPort is returned when the server port is out of range
	ErrInvalidServerPort = errors.New("server port must be between 1 and 65535")

	// ErrMissingAppName is returned when no application identifier is configured
	ErrMissingAppName = errors.New("playlist app name is required")

	// ErrMissingFormatVersion is returned when the document format version is empty
	ErrMissingFormatVersion = errors.New("playlist format version is required")

	// ErrInvalidDefaultFormat is returned when the default export format is not detailed or simple
	ErrInvalidDefaultFormat = errors.New("default format must be detailed or simple")

	// ErrInvalidHTTPTimeout is returned when the fetch timeout is not positive
	ErrInvalidHTTPTimeout = errors.New("fetch HTTP timeout must be greater than 0")

	// ErrInvalidMaxRetries is returned when fewer than one fetch attempt is allowed
	ErrInvalidMaxRetries = errors.New("fetch max retries must be at least 1")

	// ErrMissingStorePath is returned when the playlist database path is empty
	ErrMissingStorePath = errors.New("store path is required")
)
