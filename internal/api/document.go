// Package api provides the HTTP client used to download shared playlist
// documents.
//
// DocumentClient fetches a document URL, retrying on gateway errors, and
// returns the raw body for the codec to parse.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/toozej/precureplaylist/pkg/config"
	"github.com/toozej/precureplaylist/pkg/useragent"
)

// MaxDocumentSize bounds how much of a response body is read.
const MaxDocumentSize = 16 << 20

// ErrDocumentTooLarge is returned when a response exceeds MaxDocumentSize.
var ErrDocumentTooLarge = errors.New("document exceeds maximum size")

// StatusError is returned for a final non-200 response.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Status)
}

// DocumentClient handles fetching playlist documents over HTTP.
type DocumentClient struct {
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	userAgent  string
	logger     *log.Entry
}

// NewDocumentClient creates a new document client from the fetch configuration.
func NewDocumentClient(cfg config.FetchConfig) *DocumentClient {
	timeout := cfg.Timeout()
	if cfg.HTTPTimeout <= 0 {
		timeout = 30 * time.Second
	}
	retries := cfg.MaxRetries
	if retries < 1 {
		retries = 3
	}

	return &DocumentClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxRetries: retries,
		backoff:    2 * time.Second,
		sleep:      sleepContext,
		userAgent:  useragent.Get(),
		logger:     log.WithField("component", "document_client"),
	}
}

// Fetch downloads the document at url. 502 and 504 responses and transport
// errors are retried with a linearly growing wait.
func (c *DocumentClient) Fetch(ctx context.Context, url string) ([]byte, error) {
	logger := c.logger.WithField("url", url)
	logger.Debug("Fetching document")

	var (
		resp    *http.Response
		err     error
		elapsed time.Duration
	)

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if reqErr != nil {
			logger.WithError(reqErr).Error("Failed to create HTTP request")
			return nil, fmt.Errorf("failed to create HTTP request: %w", reqErr)
		}
		req.Header.Set("Accept", "application/json, text/plain, */*")
		req.Header.Set("User-Agent", c.userAgent)

		start := time.Now()
		resp, err = c.httpClient.Do(req) // #nosec G107 -- URL is supplied by the operator
		elapsed = time.Since(start)

		if err == nil && !retryable(resp.StatusCode) {
			break
		}
		if ctx.Err() != nil {
			if resp != nil {
				_ = resp.Body.Close()
			}
			return nil, fmt.Errorf("fetch cancelled: %w", ctx.Err())
		}

		status := 0
		if resp != nil {
			status = resp.StatusCode
			if attempt < c.maxRetries {
				_ = resp.Body.Close()
			}
		}

		if attempt < c.maxRetries {
			wait := time.Duration(attempt) * c.backoff
			logger.WithFields(log.Fields{
				"attempt":     attempt,
				"max_retries": c.maxRetries,
				"wait_time":   wait,
				"error":       err,
				"status_code": status,
			}).Warn("Document request failed, retrying...")
			if sleepErr := c.sleep(ctx, wait); sleepErr != nil {
				return nil, fmt.Errorf("fetch cancelled: %w", sleepErr)
			}
		}
	}

	if err != nil {
		logger.WithFields(log.Fields{
			"duration_ms": elapsed.Milliseconds(),
			"attempts":    c.maxRetries,
		}).WithError(err).Error("Document request failed after all retries")
		return nil, fmt.Errorf("failed to fetch document after %d attempts: %w", c.maxRetries, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.WithFields(log.Fields{
			"status_code": resp.StatusCode,
			"duration_ms": elapsed.Milliseconds(),
		}).Error("Document server returned non-200 status code")
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > MaxDocumentSize {
		return nil, ErrDocumentTooLarge
	}

	logger.WithFields(log.Fields{
		"bytes":       len(body),
		"duration_ms": elapsed.Milliseconds(),
	}).Info("Document downloaded")
	return body, nil
}

func retryable(status int) bool {
	return status == http.StatusBadGateway || status == http.StatusGatewayTimeout
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
