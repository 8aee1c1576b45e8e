package upload

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"sheetdrop/internal/config"
)

// MinioStore persists uploads as objects in a single bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore builds an object-storage backend from the S3 section of
// the configuration.
func NewMinioStore(cfg config.S3) (*MinioStore, error) {
	endpoint, secure, err := normaliseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, err
	}

	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

// Put streams the upload into the bucket, replacing any object of the
// same name.
func (s *MinioStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	if size <= 0 {
		size = -1 // unknown length, let the client chunk it
	}
	_, err := s.client.PutObject(ctx, s.bucket, name, r, size,
		minio.PutObjectOptions{ContentType: contentType})
	return err
}

// normaliseEndpoint accepts either "minio:9000" or a full
// "http(s)://minio:9000" URL and returns the host plus the TLS flag.
func normaliseEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, fmt.Errorf("endpoint must not contain a path")
		}
		return u.Host, u.Scheme == "https", nil
	}

	// No scheme provided, treat as host:port (insecure by default for local MinIO).
	return raw, false, nil
}
