package imagestore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore writes images to a Google Cloud Storage bucket
type GCSStore struct {
	client     *storage.Client
	bucket     string
	publicBase string
}

// NewGCSStore creates a client for bucket. An empty credentialsFile uses
// application default credentials.
func NewGCSStore(ctx context.Context, bucket, credentialsFile, publicBase string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}

	if publicBase == "" {
		publicBase = "https://storage.googleapis.com/" + bucket
	}

	return &GCSStore{client: client, bucket: bucket, publicBase: publicBase}, nil
}

func (s *GCSStore) Upload(ctx context.Context, upload Upload) (string, error) {
	obj, err := prepare(upload, time.Now())
	if err != nil {
		return "", err
	}

	writer := s.client.Bucket(s.bucket).Object(obj.Name).NewWriter(ctx)
	writer.ContentType = obj.ContentType
	writer.CacheControl = "public, max-age=31536000, immutable"

	if _, err := io.Copy(writer, bytes.NewReader(upload.Data)); err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("failed to write GCS object %s: %w", obj.Name, err)
	}

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer for %s: %w", obj.Name, err)
	}

	return s.publicBase + "/" + obj.Name, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
