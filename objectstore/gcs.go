package objectstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stockroom-backend/config"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore writes public objects into one Google Cloud Storage bucket
type GCSStore struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
}

// NewGCSStore opens a client with explicit JSON credentials when configured and
// application default credentials otherwise
func NewGCSStore(ctx context.Context, cfg config.StorageConfig) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("GCS_BUCKET is required")
	}

	var opts []option.ClientOption
	if creds := strings.TrimSpace(cfg.CredentialsJSON); creds != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}

	return &GCSStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: cfg.PublicBaseURL,
	}, nil
}

// Put uploads data to key, overwriting any previous object, and returns its public URL
func (s *GCSStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	wc := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = "no-cache"

	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("finish upload %s: %w", key, err)
	}
	return s.PublicURL(key), nil
}

// PublicURL is the address the object is served from
func (s *GCSStore) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, strings.TrimLeft(key, "/"))
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
