package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore implements ObjectStore for Google Cloud Storage.
type GCSStore struct {
	client *storage.Client
}

// NewGCSStore creates a GCS client. An empty credentialsFile uses application
// default credentials.
func NewGCSStore(ctx context.Context, credentialsFile string) (*GCSStore, error) {
	var (
		client *storage.Client
		err    error
	)
	if credentialsFile != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	} else {
		client, err = storage.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCSStore{client: client}, nil
}

// GCSOpener returns a Router option factory bound to credentialsFile.
func GCSOpener(credentialsFile string) func(ctx context.Context) (ObjectStore, error) {
	return func(ctx context.Context) (ObjectStore, error) {
		return NewGCSStore(ctx, credentialsFile)
	}
}

// ReadObject downloads an object.
func (s *GCSStore) ReadObject(ctx context.Context, bucket, object string) ([]byte, error) {
	reader, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", bucket, object, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", bucket, object, err)
	}
	return data, nil
}

// WriteObject uploads data as a JSON object.
func (s *GCSStore) WriteObject(ctx context.Context, bucket, object string, data []byte) error {
	writer := s.client.Bucket(bucket).Object(object).NewWriter(ctx)
	writer.ContentType = "application/json"

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to upload gs://%s/%s: %w", bucket, object, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize gs://%s/%s: %w", bucket, object, err)
	}
	return nil
}

// Close releases the client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

// ParseGCSLocation splits gs://bucket/object into its parts.
func ParseGCSLocation(location string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(location, "gs://")
	if !ok {
		return "", "", fmt.Errorf("not a gs:// location: %q", location)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("gs:// location must name a bucket and an object: %q", location)
	}
	return bucket, object, nil
}
