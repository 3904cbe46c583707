// Package storage reads and writes playlist documents at user-supplied
// locations: local files, standard streams, the clipboard, Google Cloud
// Storage objects, and (read-only) HTTP URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Location kinds.
const (
	KindStdio     = "stdio"
	KindLocal     = "local"
	KindGCS       = "gcs"
	KindClipboard = "clipboard"
	KindHTTP      = "http"
)

// StdioLocation reads from stdin and writes to stdout.
const StdioLocation = "-"

// ClipboardLocation reads from and writes to the system clipboard.
const ClipboardLocation = "clipboard:"

var (
	// ErrReadOnly is returned when writing to a location that only supports reads.
	ErrReadOnly = errors.New("location is read-only")
	// ErrEmptyLocation is returned for a blank location.
	ErrEmptyLocation = errors.New("location is empty")
	// ErrNotConfigured is returned when a location kind has no backend.
	ErrNotConfigured = errors.New("storage backend not configured")
)

// Fetcher downloads documents over HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ObjectStore reads and writes whole objects in a bucket.
type ObjectStore interface {
	ReadObject(ctx context.Context, bucket, object string) ([]byte, error)
	WriteObject(ctx context.Context, bucket, object string, data []byte) error
}

// Router dispatches reads and writes to the backend for a location.
type Router struct {
	stdin     io.Reader
	stdout    io.Writer
	clipboard Clipboard
	fetcher   Fetcher
	openGCS   func(ctx context.Context) (ObjectStore, error)
	logger    *log.Logger

	gcsOnce sync.Once
	gcs     ObjectStore
	gcsErr  error
}

// Option configures a Router.
type Option func(*Router)

// WithStdio replaces the standard streams.
func WithStdio(in io.Reader, out io.Writer) Option {
	return func(r *Router) {
		r.stdin = in
		r.stdout = out
	}
}

// WithClipboard replaces the clipboard backend.
func WithClipboard(c Clipboard) Option {
	return func(r *Router) {
		r.clipboard = c
	}
}

// WithFetcher enables http(s) locations.
func WithFetcher(f Fetcher) Option {
	return func(r *Router) {
		r.fetcher = f
	}
}

// WithObjectStore enables gs:// locations. open is called once, on first use.
func WithObjectStore(open func(ctx context.Context) (ObjectStore, error)) Option {
	return func(r *Router) {
		r.openGCS = open
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// NewRouter creates a Router over the process streams and system clipboard.
func NewRouter(opts ...Option) *Router {
	r := &Router{
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		clipboard: SystemClipboard(),
		logger:    log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Kind classifies a location string.
func Kind(location string) string {
	switch {
	case location == StdioLocation:
		return KindStdio
	case location == ClipboardLocation:
		return KindClipboard
	case strings.HasPrefix(location, "gs://"):
		return KindGCS
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return KindHTTP
	default:
		return KindLocal
	}
}

// Read returns the contents at location.
func (r *Router) Read(ctx context.Context, location string) ([]byte, error) {
	if strings.TrimSpace(location) == "" {
		return nil, ErrEmptyLocation
	}
	kind := Kind(location)
	r.logger.WithFields(log.Fields{
		"component": "storage",
		"operation": "read",
		"kind":      kind,
		"location":  location,
	}).Debug("Reading document")

	switch kind {
	case KindStdio:
		data, err := io.ReadAll(r.stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	case KindClipboard:
		return r.clipboard.Read()
	case KindHTTP:
		if r.fetcher == nil {
			return nil, fmt.Errorf("%w: http", ErrNotConfigured)
		}
		return r.fetcher.Fetch(ctx, location)
	case KindGCS:
		store, bucket, object, err := r.object(ctx, location)
		if err != nil {
			return nil, err
		}
		return store.ReadObject(ctx, bucket, object)
	default:
		return ReadFile(location)
	}
}

// Write stores data at location.
func (r *Router) Write(ctx context.Context, location string, data []byte) error {
	if strings.TrimSpace(location) == "" {
		return ErrEmptyLocation
	}
	kind := Kind(location)
	r.logger.WithFields(log.Fields{
		"component": "storage",
		"operation": "write",
		"kind":      kind,
		"location":  location,
		"bytes":     len(data),
	}).Debug("Writing document")

	switch kind {
	case KindStdio:
		if _, err := r.stdout.Write(data); err != nil {
			return fmt.Errorf("failed to write stdout: %w", err)
		}
		return nil
	case KindClipboard:
		return r.clipboard.Write(data)
	case KindHTTP:
		return fmt.Errorf("%w: %s", ErrReadOnly, location)
	case KindGCS:
		store, bucket, object, err := r.object(ctx, location)
		if err != nil {
			return err
		}
		return store.WriteObject(ctx, bucket, object, data)
	default:
		return WriteFile(location, data)
	}
}

func (r *Router) object(ctx context.Context, location string) (ObjectStore, string, string, error) {
	bucket, object, err := ParseGCSLocation(location)
	if err != nil {
		return nil, "", "", err
	}
	if r.openGCS == nil {
		return nil, "", "", fmt.Errorf("%w: gcs", ErrNotConfigured)
	}
	r.gcsOnce.Do(func() {
		r.gcs, r.gcsErr = r.openGCS(ctx)
	})
	if r.gcsErr != nil {
		return nil, "", "", r.gcsErr
	}
	return r.gcs, bucket, object, nil
}

// Close releases the object store client, if one was opened.
func (r *Router) Close() error {
	if closer, ok := r.gcs.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
