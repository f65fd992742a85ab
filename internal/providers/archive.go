package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/config"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/artifact"
)

// Archive is an artifact archive backed by object storage
type Archive interface {
	artifact.Archive
	Close() error
}

// NewArchive builds the archive selected by cfg.Driver. The "none" driver
// returns an archive that stores nothing.
func NewArchive(ctx context.Context, cfg config.ArchiveConfig) (Archive, error) {
	switch cfg.Driver {
	case "", "none":
		return NoopArchive{}, nil
	case "s3":
		return NewS3Archive(ctx, S3Options{
			Bucket:          cfg.Bucket,
			Prefix:          cfg.Prefix,
			Region:          cfg.Region,
			Endpoint:        cfg.Endpoint,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
		})
	case "gcs":
		return NewGCSArchive(ctx, cfg.Bucket, cfg.Prefix, cfg.GCSCredentials)
	default:
		return nil, fmt.Errorf("unsupported archive driver: %s", cfg.Driver)
	}
}

// NoopArchive discards artifacts
type NoopArchive struct{}

// Put implements artifact.Archive
func (NoopArchive) Put(context.Context, *artifact.Artifact) (string, error) { return "", nil }

// Close implements Archive
func (NoopArchive) Close() error { return nil }

// ObjectKey is the storage key of an artifact:
// <prefix>/<account>/<kind>/<yyyy>/<mm>/<id>.json
func ObjectKey(prefix string, a *artifact.Artifact) string {
	t := a.CreatedAt.UTC()
	return path.Join(prefix, a.AccountID, string(a.Kind),
		fmt.Sprintf("%04d", t.Year()), fmt.Sprintf("%02d", int(t.Month())), a.ID+".json")
}

type archivedArtifact struct {
	*artifact.Artifact
	ReservationID string `json:"reservation_id"`
}

func encodeArtifact(a *artifact.Artifact) ([]byte, error) {
	return json.MarshalIndent(archivedArtifact{Artifact: a, ReservationID: a.ReservationID}, "", "  ")
}
