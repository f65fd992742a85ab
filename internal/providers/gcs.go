package providers

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/artifact"
)

// GCSArchive writes artifacts to a Cloud Storage bucket
type GCSArchive struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSArchive creates a GCS archive. credentialsJSON is a service account
// key; when empty application default credentials are used.
func NewGCSArchive(ctx context.Context, bucket, prefix, credentialsJSON string) (*GCSArchive, error) {
	var opts []option.ClientOption
	if credentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSArchive{client: client, bucket: bucket, prefix: prefix}, nil
}

// Put implements artifact.Archive
func (a *GCSArchive) Put(ctx context.Context, art *artifact.Artifact) (string, error) {
	body, err := encodeArtifact(art)
	if err != nil {
		return "", err
	}

	key := ObjectKey(a.prefix, art)
	w := a.client.Bucket(a.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "application/json"
	w.Metadata = map[string]string{
		"account-id": art.AccountID,
		"kind":       string(art.Kind),
	}
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("gcs write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("gcs close %s: %w", key, err)
	}
	return "gs://" + a.bucket + "/" + key, nil
}

// Close releases the storage client
func (a *GCSArchive) Close() error {
	return a.client.Close()
}
